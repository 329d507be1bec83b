package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	veoBaseURL      = "https://generativelanguage.googleapis.com/v1beta"
	DefaultVeoModel = "veo-3.1-fast-generate-preview"

	veoPollInterval = 10 * time.Second
)

// VeoService implements VideoGenerator on Google's Veo REST API. Veo is a
// long-running operation: the initial call returns an operation name that
// must be polled until done. Generate hides the poll loop so callers see a
// single blocking call.
type VeoService struct {
	apiKey     string
	modelName  string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ VideoGenerator = (*VeoService)(nil)

type veoImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

type veoRequest struct {
	Instances []struct {
		Prompt string    `json:"prompt"`
		Image  *veoImage `json:"image,omitempty"`
	} `json:"instances"`
	Parameters struct {
		AspectRatio string    `json:"aspectRatio,omitempty"`
		LastFrame   *veoImage `json:"lastFrame,omitempty"`
	} `json:"parameters"`
}

type veoOperation struct {
	Name     string `json:"name"`
	Done     bool   `json:"done"`
	Error    *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Response *struct {
		GenerateVideoResponse struct {
			GeneratedSamples []struct {
				Video struct {
					BytesBase64Encoded string `json:"bytesBase64Encoded"`
					URI                string `json:"uri"`
				} `json:"video"`
			} `json:"generatedSamples"`
		} `json:"generateVideoResponse"`
	} `json:"response,omitempty"`
}

// NewVeoService creates a Veo video generator.
func NewVeoService(apiKey string, modelName string, logger *slog.Logger) *VeoService {
	if modelName == "" {
		modelName = DefaultVeoModel
	}
	return &VeoService{
		apiKey:    apiKey,
		modelName: modelName,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

func (s *VeoService) Generate(ctx context.Context, req VideoRequest) ([]byte, error) {
	op, err := s.startOperation(ctx, req)
	if err != nil {
		return nil, err
	}

	for !op.Done {
		select {
		case <-ctx.Done():
			return nil, externalErr("veo", fmt.Errorf("context cancelled while polling: %w", ctx.Err()))
		case <-time.After(veoPollInterval):
		}
		op, err = s.pollOperation(ctx, op.Name)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("Veo operation polled", "operation", op.Name, "done", op.Done)
	}

	if op.Error != nil {
		return nil, externalErr("veo", fmt.Errorf("operation failed with code %d: %s", op.Error.Code, op.Error.Message))
	}
	if op.Response == nil || len(op.Response.GenerateVideoResponse.GeneratedSamples) == 0 {
		return nil, externalErr("veo", fmt.Errorf("no video generated in response"))
	}

	video := op.Response.GenerateVideoResponse.GeneratedSamples[0].Video
	if video.BytesBase64Encoded != "" {
		data, err := base64.StdEncoding.DecodeString(video.BytesBase64Encoded)
		if err != nil {
			return nil, externalErr("veo", fmt.Errorf("failed to decode video bytes: %w", err))
		}
		return data, nil
	}
	return s.downloadVideo(ctx, video.URI)
}

func (s *VeoService) startOperation(ctx context.Context, req VideoRequest) (*veoOperation, error) {
	var body veoRequest
	body.Instances = append(body.Instances, struct {
		Prompt string    `json:"prompt"`
		Image  *veoImage `json:"image,omitempty"`
	}{
		Prompt: req.Prompt,
		Image: &veoImage{
			BytesBase64Encoded: base64.StdEncoding.EncodeToString(req.FirstFrame),
			MimeType:           "image/png",
		},
	})
	body.Parameters.AspectRatio = string(req.AspectRatio)
	body.Parameters.LastFrame = &veoImage{
		BytesBase64Encoded: base64.StdEncoding.EncodeToString(req.LastFrame),
		MimeType:           "image/png",
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:predictLongRunning", veoBaseURL, s.modelName)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", s.apiKey)

	return s.doOperationRequest(httpReq)
}

func (s *VeoService) pollOperation(ctx context.Context, name string) (*veoOperation, error) {
	url := fmt.Sprintf("%s/%s", veoBaseURL, name)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create poll request: %w", err)
	}
	httpReq.Header.Set("x-goog-api-key", s.apiKey)

	return s.doOperationRequest(httpReq)
}

func (s *VeoService) doOperationRequest(httpReq *http.Request) (*veoOperation, error) {
	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, externalErr("veo", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, externalErr("veo", fmt.Errorf("failed to read response body: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, externalErr("veo", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody)))
	}

	var op veoOperation
	if err := json.Unmarshal(respBody, &op); err != nil {
		return nil, externalErr("veo", fmt.Errorf("failed to parse operation: %w", err))
	}
	return &op, nil
}

func (s *VeoService) downloadVideo(ctx context.Context, uri string) ([]byte, error) {
	if uri == "" {
		return nil, externalErr("veo", fmt.Errorf("video has neither inline bytes nor a download URI"))
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}
	httpReq.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, externalErr("veo", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, externalErr("veo", fmt.Errorf("video download failed with status %d", resp.StatusCode))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, externalErr("veo", fmt.Errorf("failed to read video bytes: %w", err))
	}
	return data, nil
}
