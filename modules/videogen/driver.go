package videogen

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"google.golang.org/genai"

	"veo-studio-server/modules/common/utils"
)

// soft ceiling while the operation is pending; 1.0 only on confirmed done
const progressCeiling = 0.95

// ProgressFunc - receives (fraction 0.0-1.0, status text). The driver reports
// monotonically non-decreasing fractions; how they are displayed is the
// caller's concern.
type ProgressFunc func(fraction float64, status string)

// VideoAPI - the slice of the GenAI client the driver needs. Injectable so
// the poll loop is testable against a fake.
type VideoAPI interface {
	GenerateVideos(ctx context.Context, model, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error)
	GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error)
	DownloadVideo(ctx context.Context, video *genai.Video) ([]byte, error)
}

// Driver - drives one generation request to completion or a classified
// failure. Submission and polling are strictly sequential blocking calls;
// no two polls for the same operation are ever in flight at once.
type Driver struct {
	api   VideoAPI
	model string

	PollInterval     time.Duration
	Timeout          time.Duration
	ExpectedDuration time.Duration
}

// NewDriver - driver with reference timings (10s poll, 300s timeout, 180s expected)
func NewDriver(api VideoAPI, model string) *Driver {
	return &Driver{
		api:              api,
		model:            model,
		PollInterval:     10 * time.Second,
		Timeout:          300 * time.Second,
		ExpectedDuration: 180 * time.Second,
	}
}

// Submit - send the generation request, returns the not-yet-done operation.
// Text mode omits the image field entirely; image mode attaches the bytes
// with their detected MIME type.
func (d *Driver) Submit(ctx context.Context, req *GenerationRequest) (*genai.GenerateVideosOperation, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	config := &genai.GenerateVideosConfig{
		AspectRatio:      req.AspectRatio,
		NumberOfVideos:   1,
		DurationSeconds:  genai.Ptr(int32(req.Duration)),
		PersonGeneration: "allow_all",
	}

	var image *genai.Image
	if req.Mode == ModeImage {
		image = &genai.Image{
			ImageBytes: req.Image,
			MIMEType:   utils.DetectMimeType(req.Image),
		}
	}

	log.Printf("📤 [Veo] Submitting %s generation (duration: %ds, aspect: %s)", req.Mode, req.Duration, req.AspectRatio)

	op, err := d.api.GenerateVideos(ctx, d.model, req.Prompt, image, config)
	if err != nil {
		if isBillingError(err) {
			return nil, fmt.Errorf("%w: %v", ErrBillingRequired, err)
		}
		return nil, fmt.Errorf("video submission failed: %w", err)
	}

	log.Printf("✅ [Veo] Operation submitted")
	return op, nil
}

// AwaitCompletion - poll the operation at a fixed interval until done or the
// timeout elapses. Each poll re-fetches a fresh operation snapshot; the prior
// one is never mutated. On timeout the remote job is abandoned, not cancelled.
func (d *Driver) AwaitCompletion(ctx context.Context, op *genai.GenerateVideosOperation, onProgress ProgressFunc) (*VideoArtifact, error) {
	if onProgress == nil {
		onProgress = func(float64, string) {}
	}

	start := time.Now()
	lastFraction := 0.0
	polls := 0

	for !op.Done {
		elapsed := time.Since(start)
		if elapsed > d.Timeout {
			return nil, fmt.Errorf("%w after %d polls (%v elapsed)", ErrTimeout, polls, elapsed.Round(time.Second))
		}

		fraction := math.Min(elapsed.Seconds()/d.ExpectedDuration.Seconds(), progressCeiling)
		if fraction < lastFraction {
			fraction = lastFraction
		}
		lastFraction = fraction
		onProgress(fraction, fmt.Sprintf("Generating... %ds elapsed", int(elapsed.Seconds())))

		time.Sleep(d.PollInterval)

		next, err := d.api.GetVideosOperation(ctx, op)
		if err != nil {
			return nil, fmt.Errorf("failed to poll operation: %w", err)
		}
		op = next
		polls++
	}

	onProgress(1.0, "Video generation complete!")

	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 {
		return nil, ErrEmptyResult
	}

	generated := op.Response.GeneratedVideos[0]
	if generated.Video == nil {
		return nil, ErrEmptyResult
	}

	videoBytes, err := d.api.DownloadVideo(ctx, generated.Video)
	if err != nil {
		return nil, fmt.Errorf("failed to download video: %w", err)
	}

	log.Printf("🎬 [Veo] Video ready: %d bytes after %d polls", len(videoBytes), polls)

	return &VideoArtifact{
		Data: videoBytes,
		Size: int64(len(videoBytes)),
	}, nil
}

// Run - the job boundary. Drives submit + await and converts every failure
// into a Failure diagnostic; no error escapes to the caller.
func (d *Driver) Run(ctx context.Context, req *GenerationRequest, onProgress ProgressFunc) (*VideoArtifact, *Failure) {
	op, err := d.Submit(ctx, req)
	if err != nil {
		if errors.Is(err, ErrBillingRequired) {
			log.Printf("🚨 [Veo] BILLING REQUIRED: %v", err)
			return nil, newBillingFailure(err)
		}
		return nil, newFailure(CodeSubmitFailed, err)
	}

	artifact, err := d.AwaitCompletion(ctx, op, onProgress)
	if err != nil {
		switch {
		case errors.Is(err, ErrTimeout):
			return nil, newFailure(CodeTimeout, err)
		case errors.Is(err, ErrEmptyResult):
			return nil, newFailure(CodeEmptyResult, err)
		default:
			return nil, newFailure(CodeGenerationFailed, err)
		}
	}

	return artifact, nil
}
