package videogen

import (
	"context"
	"log"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	appconfig "veo-studio-server/modules/common/config"
	"veo-studio-server/modules/common/database"
	"veo-studio-server/modules/common/model"
	"veo-studio-server/modules/common/prompt"
	"veo-studio-server/modules/common/storage"
	"veo-studio-server/modules/progress"
)

// WorkerStats - counters exposed on /metrics
type WorkerStats struct {
	Processed int `json:"processed"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// Worker - drains the video queue and runs one driver job at a time.
// Video generation is slow; jobs are processed strictly sequentially so no
// two polls are ever in flight.
type Worker struct {
	rdb      *goredis.Client
	dbClient *database.Client
	storage  *storage.Client
	driver   *Driver
	hub      *progress.Hub

	mutex sync.RWMutex
	stats WorkerStats
}

// NewWorker - wire the worker against Redis, Supabase and the Veo API
func NewWorker(rdb *goredis.Client, hub *progress.Hub) *Worker {
	cfg := appconfig.GetConfig()

	dbClient := database.NewClient(rdb)
	if dbClient == nil {
		log.Println("❌ [Veo Worker] Failed to initialize database client")
		return nil
	}

	api, err := NewGenAIVideoAPI(context.Background(), cfg.GeminiAPIKey)
	if err != nil {
		log.Printf("❌ [Veo Worker] Failed to initialize GenAI client: %v", err)
		return nil
	}

	veoCfg := GetConfig()
	driver := NewDriver(api, veoCfg.Model)
	driver.PollInterval = veoCfg.PollInterval
	driver.Timeout = veoCfg.Timeout
	driver.ExpectedDuration = veoCfg.ExpectedDuration

	log.Println("✅ [Veo Worker] Initialized successfully")
	return &Worker{
		rdb:      rdb,
		dbClient: dbClient,
		storage:  storage.NewClient(dbClient),
		driver:   driver,
		hub:      hub,
	}
}

// Stats - snapshot of the worker counters
func (w *Worker) Stats() WorkerStats {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.stats
}

func (w *Worker) bump(update func(*WorkerStats)) {
	w.mutex.Lock()
	update(&w.stats)
	w.mutex.Unlock()
}

// StartWorker - block on the Redis queue and process jobs
func (w *Worker) StartWorker() {
	log.Println("🔄 [Veo Worker] Starting video queue worker...")
	log.Printf("👀 [Veo Worker] Watching queue: %s", videoQueue)

	ctx := context.Background()

	for {
		result, err := w.rdb.BRPop(ctx, 0, videoQueue).Result()
		if err != nil {
			log.Printf("❌ [Veo Worker] Redis BRPOP error: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		// result[0] is the queue name, result[1] is the job id
		jobID := result[1]
		log.Printf("🎯 [Veo Worker] Received video job: %s", jobID)

		w.processVideoJob(ctx, jobID)
	}
}

// processVideoJob - run one job end to end
func (w *Worker) processVideoJob(ctx context.Context, jobID string) {
	log.Printf("🚀 [Veo Worker] Processing video job: %s", jobID)
	w.bump(func(s *WorkerStats) { s.Processed++ })

	job, err := w.dbClient.FetchJob(jobID)
	if err != nil {
		log.Printf("❌ [Veo Worker] Failed to fetch job %s: %v", jobID, err)
		w.bump(func(s *WorkerStats) { s.Failed++ })
		return
	}

	if w.dbClient.IsJobCancelled(jobID) {
		log.Printf("🛑 [Veo Worker] Job %s cancelled before processing", jobID)
		w.dbClient.UpdateJobStatus(ctx, jobID, model.StatusUserCancelled)
		w.bump(func(s *WorkerStats) { s.Cancelled++ })
		return
	}

	if err := w.dbClient.UpdateJobStatus(ctx, jobID, model.StatusProcessing); err != nil {
		log.Printf("⚠️ [Veo Worker] Failed to update job status: %v", err)
	}

	req, failed := w.buildRequest(ctx, job)
	if failed {
		w.bump(func(s *WorkerStats) { s.Failed++ })
		return
	}

	onProgress := func(fraction float64, status string) {
		w.hub.Publish(progress.Frame{
			JobID:    jobID,
			Fraction: fraction,
			Status:   status,
		})
	}

	artifact, failure := w.driver.Run(ctx, req, onProgress)
	if failure != nil {
		log.Printf("❌ [Veo Worker] Job %s failed (%s/%s): %s", jobID, failure.Code, failure.Category, failure.Message)
		w.dbClient.UpdateJobFailed(ctx, jobID, string(failure.Category), failure.Message, failure.Guidance)
		w.hub.Publish(progress.Frame{JobID: jobID, Fraction: 0, Status: "Failed: " + failure.Guidance})
		w.bump(func(s *WorkerStats) { s.Failed++ })
		return
	}

	// cancelled mid-generation: keep user_cancelled, discard the artifact.
	// The remote operation already completed; only local persistence stops.
	if w.dbClient.IsJobCancelled(jobID) {
		log.Printf("🛑 [Veo Worker] Job %s cancelled during generation, discarding %d bytes", jobID, artifact.Size)
		w.dbClient.UpdateJobStatus(ctx, jobID, model.StatusUserCancelled)
		w.bump(func(s *WorkerStats) { s.Cancelled++ })
		return
	}

	filePath, size, err := w.storage.UploadVideoToStorage(ctx, artifact.Data, jobID)
	if err != nil {
		log.Printf("❌ [Veo Worker] Failed to upload video for job %s: %v", jobID, err)
		w.dbClient.UpdateJobFailed(ctx, jobID, string(CategoryGeneral), err.Error(), GuidanceFor(CategoryGeneral))
		w.bump(func(s *WorkerStats) { s.Failed++ })
		return
	}

	attachID, err := w.dbClient.CreateAttachRecord(ctx, filePath, "video/mp4", size)
	if err != nil {
		log.Printf("❌ [Veo Worker] Failed to create attach record for job %s: %v", jobID, err)
		w.dbClient.UpdateJobFailed(ctx, jobID, string(CategoryGeneral), err.Error(), GuidanceFor(CategoryGeneral))
		w.bump(func(s *WorkerStats) { s.Failed++ })
		return
	}

	if err := w.dbClient.UpdateJobCompleted(ctx, jobID, attachID, artifact.Size); err != nil {
		log.Printf("⚠️ [Veo Worker] Failed to mark job %s completed: %v", jobID, err)
	}

	w.hub.Publish(progress.Frame{JobID: jobID, Fraction: 1.0, Status: "Video ready"})
	w.bump(func(s *WorkerStats) { s.Completed++ })
	log.Printf("✅ [Veo Worker] Video job %s completed successfully (%d bytes)", jobID, artifact.Size)
}

// buildRequest - assemble the driver request from the job row: optional
// prompt enhancement, then source image download for image mode
func (w *Worker) buildRequest(ctx context.Context, job *model.VideoJob) (*GenerationRequest, bool) {
	cfg := appconfig.GetConfig()

	finalPrompt := job.Prompt
	if cfg.EnhancePrompts {
		enhanced, err := prompt.EnhanceWithRetry(ctx, cfg.AllAPIKeys(), cfg.PromptModel, job.Prompt)
		if err != nil {
			// enhancement is best-effort, the original prompt still works
			log.Printf("⚠️ [Veo Worker] Prompt enhancement failed for job %s: %v", job.JobID, err)
		} else {
			finalPrompt = enhanced
			if err := w.dbClient.UpdateJobEnhancedPrompt(ctx, job.JobID, enhanced); err != nil {
				log.Printf("⚠️ [Veo Worker] Failed to store enhanced prompt: %v", err)
			}
		}
	}

	req := &GenerationRequest{
		Prompt:      finalPrompt,
		Mode:        job.Mode,
		Duration:    job.Duration,
		AspectRatio: job.AspectRatio,
		Quality:     job.Quality,
	}

	if job.Mode == ModeImage {
		if job.SourceAttachID == nil {
			log.Printf("❌ [Veo Worker] Image job %s has no source attach id", job.JobID)
			w.dbClient.UpdateJobFailed(ctx, job.JobID, string(CategoryInvalidInput), "missing source image", GuidanceFor(CategoryInvalidInput))
			return nil, true
		}

		imageData, err := w.storage.DownloadImageFromStorage(*job.SourceAttachID)
		if err != nil {
			log.Printf("❌ [Veo Worker] Failed to download source image for job %s: %v", job.JobID, err)
			w.dbClient.UpdateJobFailed(ctx, job.JobID, string(CategoryGeneral), err.Error(), GuidanceFor(CategoryGeneral))
			return nil, true
		}
		req.Image = imageData
	}

	return req, false
}
