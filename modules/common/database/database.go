package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/supabase-community/supabase-go"
	"veo-studio-server/modules/common/config"
	"veo-studio-server/modules/common/model"
)

type Client struct {
	supabase *supabase.Client
	rdb      *goredis.Client
}

// NewClient - create the Supabase-backed job store
func NewClient(rdb *goredis.Client) *Client {
	cfg := config.GetConfig()

	supabaseClient, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &supabase.ClientOptions{})
	if err != nil {
		log.Printf("❌ Failed to create Supabase client: %v", err)
		return nil
	}

	return &Client{
		supabase: supabaseClient,
		rdb:      rdb,
	}
}

// InsertJob - create a new video job row
func (c *Client) InsertJob(ctx context.Context, job *model.VideoJob) error {
	log.Printf("💾 Creating video job: %s", job.JobID)

	insertData := map[string]interface{}{
		"job_id":       job.JobID,
		"user_id":      job.UserID,
		"prompt":       job.Prompt,
		"mode":         job.Mode,
		"duration":     job.Duration,
		"aspect_ratio": job.AspectRatio,
		"quality":      job.Quality,
		"job_status":   model.StatusPending,
	}
	if job.SourceAttachID != nil {
		insertData["source_attach_id"] = *job.SourceAttachID
	}

	_, _, err := c.supabase.From("veo_video_jobs").
		Insert(insertData, false, "", "", "").
		Execute()

	if err != nil {
		return fmt.Errorf("failed to insert video job: %w", err)
	}

	log.Printf("✅ Video job created: %s", job.JobID)
	return nil
}

// FetchJob - load a video job row by id
func (c *Client) FetchJob(jobID string) (*model.VideoJob, error) {
	log.Printf("🔍 Fetching video job: %s", jobID)

	var jobs []model.VideoJob

	data, _, err := c.supabase.From("veo_video_jobs").
		Select("*", "exact", false).
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return nil, fmt.Errorf("failed to query veo_video_jobs: %w", err)
	}

	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to parse job response: %w", err)
	}

	if len(jobs) == 0 {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	job := &jobs[0]
	log.Printf("✅ Job fetched: %s (status: %s, mode: %s)", job.JobID, job.JobStatus, job.Mode)

	return job, nil
}

// UpdateJobStatus - transition a job row to a new status
func (c *Client) UpdateJobStatus(ctx context.Context, jobID string, status string) error {
	log.Printf("📝 Updating job %s status to: %s", jobID, status)

	updateData := map[string]interface{}{
		"job_status": status,
		"updated_at": "now()",
	}

	if status == model.StatusProcessing {
		updateData["started_at"] = "now()"
	} else if status == model.StatusCompleted || status == model.StatusFailed {
		updateData["completed_at"] = "now()"
	}

	_, _, err := c.supabase.From("veo_video_jobs").
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	log.Printf("✅ Job %s status updated to: %s", jobID, status)
	return nil
}

// UpdateJobEnhancedPrompt - record the rewritten prompt used for submission
func (c *Client) UpdateJobEnhancedPrompt(ctx context.Context, jobID, enhanced string) error {
	updateData := map[string]interface{}{
		"enhanced_prompt": enhanced,
		"updated_at":      "now()",
	}

	_, _, err := c.supabase.From("veo_video_jobs").
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to update enhanced prompt: %w", err)
	}
	return nil
}

// UpdateJobCompleted - store the result attach id and video size, mark completed
func (c *Client) UpdateJobCompleted(ctx context.Context, jobID string, attachID int, videoSize int64) error {
	log.Printf("📝 Completing job %s (attach: %d, size: %d bytes)", jobID, attachID, videoSize)

	updateData := map[string]interface{}{
		"job_status":      model.StatusCompleted,
		"video_attach_id": attachID,
		"video_size":      videoSize,
		"completed_at":    "now()",
		"updated_at":      "now()",
	}

	_, _, err := c.supabase.From("veo_video_jobs").
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	log.Printf("✅ Job %s completed", jobID)
	return nil
}

// UpdateJobFailed - record the failure diagnostic on the job row
func (c *Client) UpdateJobFailed(ctx context.Context, jobID, category, message, guidance string) error {
	log.Printf("📝 Failing job %s (%s): %s", jobID, category, message)

	updateData := map[string]interface{}{
		"job_status":     model.StatusFailed,
		"error_category": category,
		"error_message":  message,
		"guidance":       guidance,
		"completed_at":   "now()",
		"updated_at":     "now()",
	}

	_, _, err := c.supabase.From("veo_video_jobs").
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}

	return nil
}

// FetchAttachInfo - veo_attach lookup for a staged source image
func (c *Client) FetchAttachInfo(attachID int) (*model.Attach, error) {
	log.Printf("🔍 Fetching attach info: %d", attachID)

	var attaches []model.Attach

	data, _, err := c.supabase.From("veo_attach").
		Select("*", "exact", false).
		Eq("attach_id", fmt.Sprintf("%d", attachID)).
		Execute()

	if err != nil {
		return nil, fmt.Errorf("failed to query veo_attach: %w", err)
	}

	if err := json.Unmarshal(data, &attaches); err != nil {
		return nil, fmt.Errorf("failed to parse attach response: %w", err)
	}

	if len(attaches) == 0 {
		return nil, fmt.Errorf("attach not found: %d", attachID)
	}

	return &attaches[0], nil
}

// CreateAttachRecord - register an uploaded file in veo_attach
func (c *Client) CreateAttachRecord(ctx context.Context, filePath, fileType string, fileSize int64) (int, error) {
	log.Printf("💾 Creating attach record for: %s", filePath)

	fileName := path.Base(filePath)

	insertData := map[string]interface{}{
		"attach_original_name": fileName,
		"attach_file_name":     fileName,
		"attach_file_path":     filePath,
		"attach_file_size":     fileSize,
		"attach_file_type":     fileType,
		"attach_storage_type":  "supabase",
	}

	data, _, err := c.supabase.From("veo_attach").
		Insert(insertData, false, "", "", "").
		Execute()

	if err != nil {
		return 0, fmt.Errorf("failed to insert attach record: %w", err)
	}

	var attaches []model.Attach
	if err := json.Unmarshal(data, &attaches); err != nil {
		return 0, fmt.Errorf("failed to parse attach response: %w", err)
	}

	if len(attaches) == 0 {
		return 0, fmt.Errorf("no attach record returned")
	}

	attachID := int(attaches[0].AttachID)
	log.Printf("✅ Attach record created: ID=%d", attachID)

	return attachID, nil
}

// MarkJobCancelled - set the Redis cancel flag checked by the worker
func (c *Client) MarkJobCancelled(ctx context.Context, jobID string) error {
	return c.rdb.Set(ctx, "jobs:cancel:"+jobID, "1", 24*time.Hour).Err()
}

// IsJobCancelled - worker-side cancel flag check; the remote operation itself
// keeps running, only local persistence stops
func (c *Client) IsJobCancelled(jobID string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	val, err := c.rdb.Get(ctx, "jobs:cancel:"+jobID).Result()
	if err != nil {
		return false
	}
	return val == "1"
}
