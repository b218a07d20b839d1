package videogen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"veo-studio-server/modules/common/database"
	"veo-studio-server/modules/common/model"
	"veo-studio-server/modules/common/storage"
	"veo-studio-server/modules/common/utils"
)

const videoQueue = "jobs:video"

type Handler struct {
	rdb     *goredis.Client
	db      *database.Client
	storage *storage.Client
}

func NewHandler(rdb *goredis.Client, db *database.Client, st *storage.Client) *Handler {
	return &Handler{
		rdb:     rdb,
		db:      db,
		storage: st,
	}
}

// EnqueueVideo handles POST /generate-video.
// Validates the request, persists the job row and pushes the job id onto the
// Redis queue for the worker.
func (h *Handler) EnqueueVideo(w http.ResponseWriter, r *http.Request) {
	var req EnqueueVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnqueueError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.UserID == "" {
		writeEnqueueError(w, http.StatusBadRequest, "Missing userId")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeEnqueueError(w, http.StatusBadRequest, "Prompt must not be empty")
		return
	}

	mode := req.Mode
	if mode == "" {
		if req.ImageBase64 != "" || req.SourceAttachID != 0 {
			mode = ModeImage
		} else {
			mode = ModeText
		}
	}
	if mode == ModeText && (req.ImageBase64 != "" || req.SourceAttachID != 0) {
		writeEnqueueError(w, http.StatusBadRequest, "Text mode must not include an image")
		return
	}
	if mode == ModeImage && req.ImageBase64 == "" && req.SourceAttachID == 0 {
		writeEnqueueError(w, http.StatusBadRequest, "Image mode requires an image")
		return
	}

	quality := req.Quality
	if quality == "" {
		quality = "Standard"
	}

	// validate settings with the same rules the driver enforces
	probe := GenerationRequest{
		Prompt:      req.Prompt,
		Mode:        mode,
		Image:       []byte{0x01}, // placeholder, the real bytes are staged below
		Duration:    req.Duration,
		AspectRatio: req.AspectRatio,
		Quality:     quality,
	}
	if err := probe.Validate(); err != nil {
		writeEnqueueError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	jobID := uuid.New().String()

	job := &model.VideoJob{
		JobID:       jobID,
		UserID:      req.UserID,
		Prompt:      req.Prompt,
		Mode:        mode,
		Duration:    req.Duration,
		AspectRatio: req.AspectRatio,
		Quality:     quality,
	}

	// inline image: archive it to storage and reference it by attach id
	if req.ImageBase64 != "" {
		imageData, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil || len(imageData) == 0 {
			writeEnqueueError(w, http.StatusBadRequest, "Invalid imageBase64")
			return
		}

		attachID, err := h.stageSourceImage(ctx, imageData, req.UserID)
		if err != nil {
			log.Printf("❌ Failed to stage source image: %v", err)
			writeEnqueueError(w, http.StatusInternalServerError, "Failed to store source image")
			return
		}
		job.SourceAttachID = &attachID
	} else if req.SourceAttachID != 0 {
		attachID := req.SourceAttachID
		job.SourceAttachID = &attachID
	}

	if err := h.db.InsertJob(ctx, job); err != nil {
		log.Printf("❌ Failed to insert job: %v", err)
		writeEnqueueError(w, http.StatusInternalServerError, "Failed to create job")
		return
	}

	position, err := h.rdb.LPush(ctx, videoQueue, jobID).Result()
	if err != nil {
		log.Printf("❌ Failed to enqueue job %s: %v", jobID, err)
		writeEnqueueError(w, http.StatusInternalServerError, "Failed to enqueue job")
		return
	}

	log.Printf("🎯 Enqueued video job %s (queue position: %d)", jobID, position)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(EnqueueVideoResponse{
		Success:       true,
		Message:       "Job queued",
		JobID:         jobID,
		Queue:         videoQueue,
		QueuePosition: position,
	})
}

// stageSourceImage - convert to WebP, upload and register an attach record
func (h *Handler) stageSourceImage(ctx context.Context, imageData []byte, userID string) (int, error) {
	filePath, size, err := h.storage.UploadImageToStorage(ctx, imageData, userID, utils.ConvertImageToWebP)
	if err != nil {
		return 0, err
	}
	return h.db.CreateAttachRecord(ctx, filePath, "image/webp", size)
}

// GetJobStatus handles GET /video-job?jobId=
func (h *Handler) GetJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("jobId")
	if jobID == "" {
		http.Error(w, "Missing jobId parameter", http.StatusBadRequest)
		return
	}

	job, err := h.db.FetchJob(jobID)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}

// CancelJob handles POST /cancel-job.
// Sets the local cancel flag only; an in-flight remote operation is not
// cancellable and keeps running orphaned.
func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	var req CancelJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JobID == "" {
		http.Error(w, "Missing job_id", http.StatusBadRequest)
		return
	}

	if err := h.db.MarkJobCancelled(r.Context(), req.JobID); err != nil {
		log.Printf("❌ Failed to mark job %s cancelled: %v", req.JobID, err)
		http.Error(w, "Failed to cancel job", http.StatusInternalServerError)
		return
	}

	log.Printf("🛑 Cancel requested for job %s", req.JobID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"job_id": req.JobID,
		"status": "cancel_requested",
	})
}

func writeEnqueueError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(EnqueueVideoResponse{
		Success: false,
		Error:   message,
	})
}
