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
	imagenBaseURL      = "https://generativelanguage.googleapis.com/v1beta"
	DefaultImagenModel = "imagen-3.0-generate-002"
)

// ImagenService implements ImageGenerator on Google's Imagen REST API.
type ImagenService struct {
	apiKey     string
	modelName  string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ImageGenerator = (*ImagenService)(nil)

type imagenInstance struct {
	Prompt string       `json:"prompt"`
	Image  *imagenImage `json:"image,omitempty"`
}

type imagenImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
}

type imagenParameters struct {
	SampleCount     int    `json:"sampleCount"`
	AspectRatio     string `json:"aspectRatio,omitempty"`
	SampleImageSize string `json:"sampleImageSize,omitempty"`
}

type imagenRequest struct {
	Instances  []imagenInstance `json:"instances"`
	Parameters imagenParameters `json:"parameters"`
}

type imagenResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewImagenService creates an Imagen image generator.
func NewImagenService(apiKey string, modelName string, logger *slog.Logger) *ImagenService {
	if modelName == "" {
		modelName = DefaultImagenModel
	}
	return &ImagenService{
		apiKey:    apiKey,
		modelName: modelName,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

func (s *ImagenService) Generate(ctx context.Context, req ImageRequest) ([]byte, error) {
	instance := imagenInstance{Prompt: req.Prompt}
	if len(req.ReferenceImage) > 0 {
		instance.Image = &imagenImage{
			BytesBase64Encoded: base64.StdEncoding.EncodeToString(req.ReferenceImage),
		}
	}
	body := imagenRequest{
		Instances: []imagenInstance{instance},
		Parameters: imagenParameters{
			SampleCount:     1,
			AspectRatio:     string(req.AspectRatio),
			SampleImageSize: string(req.Size),
		},
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:predict", imagenBaseURL, s.modelName)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, externalErr("imagen", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, externalErr("imagen", fmt.Errorf("failed to read response body: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, externalErr("imagen", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody)))
	}

	var imagenResp imagenResponse
	if err := json.Unmarshal(respBody, &imagenResp); err != nil {
		return nil, externalErr("imagen", fmt.Errorf("failed to parse response: %w", err))
	}
	if imagenResp.Error != nil {
		return nil, externalErr("imagen", fmt.Errorf("API error %d: %s", imagenResp.Error.Code, imagenResp.Error.Message))
	}
	if len(imagenResp.Predictions) == 0 {
		return nil, externalErr("imagen", fmt.Errorf("no predictions in response"))
	}

	data, err := base64.StdEncoding.DecodeString(imagenResp.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return nil, externalErr("imagen", fmt.Errorf("failed to decode image bytes: %w", err))
	}
	return data, nil
}
