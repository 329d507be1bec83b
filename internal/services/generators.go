// Package services wraps the external generation providers behind small
// interfaces so the orchestrator and tests can swap them freely. Providers
// are constructed explicitly and injected; nothing here is a process-wide
// singleton.
package services

import (
	"context"
	"fmt"
)

// AspectRatio for generated media.
type AspectRatio string

const (
	Aspect1x1  AspectRatio = "1:1"
	Aspect16x9 AspectRatio = "16:9"
	Aspect9x16 AspectRatio = "9:16"
	Aspect4x3  AspectRatio = "4:3"
	Aspect3x4  AspectRatio = "3:4"
)

// SizeHint for generated images.
type SizeHint string

const (
	Size1K SizeHint = "1K"
	Size2K SizeHint = "2K"
)

// TextGenerator produces free-form text from an instruction. Replies are
// untrusted: they may be malformed and must be validated downstream.
type TextGenerator interface {
	Generate(ctx context.Context, instruction string, modelHint string) (string, error)
}

// ImageRequest describes one image generation call.
type ImageRequest struct {
	Prompt         string
	AspectRatio    AspectRatio
	Size           SizeHint
	ReferenceImage []byte // optional style reference
}

// ImageGenerator produces image bytes from a prompt.
type ImageGenerator interface {
	Generate(ctx context.Context, req ImageRequest) ([]byte, error)
}

// VideoRequest describes one video generation call. First and last frame
// anchor the clip.
type VideoRequest struct {
	Prompt      string
	FirstFrame  []byte
	LastFrame   []byte
	AspectRatio AspectRatio
}

// VideoGenerator produces video bytes from a prompt and two anchor frames.
// Implementations hide their provider's polling behind a blocking call.
type VideoGenerator interface {
	Generate(ctx context.Context, req VideoRequest) ([]byte, error)
}

// ExternalError marks a provider or network failure on an outbound call,
// distinct from validation failures on the content itself.
type ExternalError struct {
	Provider string
	Err      error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s call failed: %v", e.Provider, e.Err)
}

func (e *ExternalError) Unwrap() error {
	return e.Err
}

func externalErr(provider string, err error) error {
	return &ExternalError{Provider: provider, Err: err}
}
