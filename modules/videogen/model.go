package videogen

import (
	"fmt"
	"strings"
)

// Generation modes
const (
	ModeText  = "text"  // prompt only
	ModeImage = "image" // prompt + starting frame image
)

// GenerationRequest - one video generation request as the driver sees it.
// In text mode any stray image bytes never reach the submitted payload.
type GenerationRequest struct {
	Prompt      string
	Mode        string
	Image       []byte // starting frame, image mode only
	Duration    int    // seconds: 4, 5 or 8
	AspectRatio string // "16:9" or "9:16"
	Quality     string // "Standard" or "High"
}

// VideoArtifact - the MP4 payload of a successful job. Ownership passes to
// the caller; the driver keeps no reference after returning it.
type VideoArtifact struct {
	Data []byte
	Size int64
}

// Validate - preconditions checked before any remote call is made.
// A request that fails here is never submitted.
func (r *GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("prompt is required")
	}

	switch r.Mode {
	case ModeText:
		// image bytes, if any, are ignored at submission
	case ModeImage:
		if len(r.Image) == 0 {
			return fmt.Errorf("image mode requires a non-empty image")
		}
	default:
		return fmt.Errorf("invalid mode: %q", r.Mode)
	}

	switch r.Duration {
	case 4, 5, 8:
	default:
		return fmt.Errorf("duration must be 4, 5 or 8 seconds, got %d", r.Duration)
	}

	switch r.AspectRatio {
	case "16:9", "9:16":
	default:
		return fmt.Errorf("aspect ratio must be 16:9 or 9:16, got %q", r.AspectRatio)
	}

	switch r.Quality {
	case "Standard", "High":
	default:
		return fmt.Errorf("quality must be Standard or High, got %q", r.Quality)
	}

	return nil
}

// EnqueueVideoRequest - POST /generate-video body
type EnqueueVideoRequest struct {
	UserID         string `json:"userId"`
	Prompt         string `json:"prompt"`
	Mode           string `json:"mode,omitempty"`
	ImageBase64    string `json:"imageBase64,omitempty"`
	SourceAttachID int    `json:"sourceAttachId,omitempty"`
	Duration       int    `json:"duration"`
	AspectRatio    string `json:"aspectRatio"`
	Quality        string `json:"quality,omitempty"`
}

// EnqueueVideoResponse - POST /generate-video reply
type EnqueueVideoResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
	JobID         string `json:"job_id,omitempty"`
	Queue         string `json:"queue,omitempty"`
	QueuePosition int64  `json:"queuePosition,omitempty"`
}

// CancelJobRequest - POST /cancel-job body
type CancelJobRequest struct {
	JobID string `json:"job_id"`
}
