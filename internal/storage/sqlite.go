package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jwebster45206/riddle-rooms/pkg/story"
)

// SQLiteStorage implements Storage on a local SQLite file. Entities are
// stored as JSON documents with the indexed columns broken out, so the
// two backends stay behaviorally identical.
type SQLiteStorage struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ Storage = (*SQLiteStorage)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS stories (
	id TEXT PRIMARY KEY,
	data TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS rooms (
	id TEXT PRIMARY KEY,
	story_id TEXT NOT NULL,
	room_number INTEGER NOT NULL,
	data TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS rooms_by_story ON rooms(story_id, room_number);
CREATE TABLE IF NOT EXISTS blobs (
	handle TEXT PRIMARY KEY,
	mime_type TEXT NOT NULL,
	data BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS assets (
	name TEXT PRIMARY KEY,
	handle TEXT NOT NULL,
	type TEXT NOT NULL,
	mime_type TEXT NOT NULL
);`

// NewSQLiteStorage opens (and if needed initializes) the database file.
func NewSQLiteStorage(path string, logger *slog.Logger) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("failed to initialize sqlite schema: %w", err)
	}
	return &SQLiteStorage{db: db, logger: logger}, nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Story operations

func (s *SQLiteStorage) CreateStory(ctx context.Context, st *story.Story) error {
	st.CreatedAt = time.Now()
	st.UpdatedAt = st.CreatedAt
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal story: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO stories (id, data, created_at) VALUES (?, ?, ?)`,
		st.ID.String(), string(data), st.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save story: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) UpdateStory(ctx context.Context, st *story.Story) error {
	st.UpdatedAt = time.Now()
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal story: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE stories SET data = ? WHERE id = ?`,
		string(data), st.ID.String())
	if err != nil {
		return fmt.Errorf("failed to update story: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) GetStory(ctx context.Context, id uuid.UUID) (*story.Story, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM stories WHERE id = ?`, id.String()).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load story: %w", err)
	}
	var st story.Story
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return nil, fmt.Errorf("failed to unmarshal story: %w", err)
	}
	return &st, nil
}

func (s *SQLiteStorage) ListStories(ctx context.Context) ([]*story.Story, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM stories ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stories []*story.Story
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan story row: %w", err)
		}
		var st story.Story
		if err := json.Unmarshal([]byte(data), &st); err != nil {
			return nil, fmt.Errorf("failed to unmarshal story: %w", err)
		}
		stories = append(stories, &st)
	}
	return stories, rows.Err()
}

// Room operations

func (s *SQLiteStorage) CreateRoom(ctx context.Context, rec *story.RoomRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rooms (id, story_id, room_number, data) VALUES (?, ?, ?, ?)`,
		rec.ID.String(), rec.StoryID.String(), rec.RoomNumber, string(data))
	if err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) UpdateRoom(ctx context.Context, rec *story.RoomRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE rooms SET data = ? WHERE id = ?`,
		string(data), rec.ID.String())
	if err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) GetRoom(ctx context.Context, id uuid.UUID) (*story.RoomRecord, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM rooms WHERE id = ?`, id.String()).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	var rec story.RoomRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}
	return &rec, nil
}

func (s *SQLiteStorage) ListRooms(ctx context.Context, storyID uuid.UUID) ([]*story.RoomRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM rooms WHERE story_id = ? ORDER BY room_number ASC`,
		storyID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rooms []*story.RoomRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan room row: %w", err)
		}
		var rec story.RoomRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal room: %w", err)
		}
		rooms = append(rooms, &rec)
	}
	return rooms, rows.Err()
}

// Blob operations

func (s *SQLiteStorage) NewUploadHandle(ctx context.Context) (string, error) {
	return uuid.New().String(), nil
}

func (s *SQLiteStorage) PutBlob(ctx context.Context, handle string, mimeType string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO blobs (handle, mime_type, data) VALUES (?, ?, ?)`,
		handle, mimeType, data)
	if err != nil {
		return fmt.Errorf("failed to store blob: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) RegisterAsset(ctx context.Context, name, handle, assetType, mimeType string) (string, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM blobs WHERE handle = ?`, handle).Scan(&exists)
	if err != nil {
		return "", fmt.Errorf("failed to check blob handle: %w", err)
	}
	if exists == 0 {
		return "", fmt.Errorf("blob handle %q has no uploaded bytes", handle)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO assets (name, handle, type, mime_type) VALUES (?, ?, ?, ?)`,
		name, handle, assetType, mimeType)
	if err != nil {
		return "", fmt.Errorf("failed to register asset: %w", err)
	}
	return "/v1/assets/" + name, nil
}

func (s *SQLiteStorage) GetAsset(ctx context.Context, name string) (string, []byte, error) {
	var mimeType string
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT a.mime_type, b.data FROM assets a JOIN blobs b ON a.handle = b.handle WHERE a.name = ?`,
		name).Scan(&mimeType, &data)
	if err == sql.ErrNoRows {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to load asset: %w", err)
	}
	return mimeType, data, nil
}
