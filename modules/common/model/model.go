package model

import "time"

// VideoJob - veo_video_jobs table structure
type VideoJob struct {
	JobID          string     `json:"job_id"`
	UserID         string     `json:"user_id"`
	Prompt         string     `json:"prompt"`
	EnhancedPrompt *string    `json:"enhanced_prompt"`
	Mode           string     `json:"mode"` // "text" or "image"
	SourceAttachID *int       `json:"source_attach_id"`
	Duration       int        `json:"duration"`
	AspectRatio    string     `json:"aspect_ratio"`
	Quality        string     `json:"quality"`
	JobStatus      string     `json:"job_status"`
	VideoAttachID  *int       `json:"video_attach_id"`
	VideoSize      *int64     `json:"video_size"`
	ErrorCategory  *string    `json:"error_category"`
	ErrorMessage   *string    `json:"error_message"`
	Guidance       *string    `json:"guidance"`
	CreatedAt      time.Time  `json:"created_at"`
	StartedAt      *time.Time `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Attach - veo_attach table structure
type Attach struct {
	AttachID           int64     `json:"attach_id"`
	CreatedAt          time.Time `json:"created_at"`
	AttachOriginalName *string   `json:"attach_original_name"`
	AttachFileName     *string   `json:"attach_file_name"`
	AttachFilePath     *string   `json:"attach_file_path"`
	AttachFileSize     *int64    `json:"attach_file_size"`
	AttachFileType     *string   `json:"attach_file_type"`
	AttachStorageType  *string   `json:"attach_storage_type"`
}

const (
	StatusPending       = "pending"
	StatusProcessing    = "processing"
	StatusCompleted     = "completed"
	StatusFailed        = "failed"
	StatusUserCancelled = "user_cancelled"
)
