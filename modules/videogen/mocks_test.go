package videogen

import (
	"context"
	"time"

	"google.golang.org/genai"
)

// --- Mocks ---

// fakeVideoAPI - scriptable VideoAPI: fails submission, stays pending for a
// number of polls, then completes with the configured response.
type fakeVideoAPI struct {
	submitErr   error
	submitCalls int
	lastModel   string
	lastPrompt  string
	lastImage   *genai.Image
	lastConfig  *genai.GenerateVideosConfig

	getErr       error
	getCalls     int
	pendingPolls int // polls that return done=false before completing
	neverDone    bool
	result       *genai.GenerateVideosResponse

	downloadErr   error
	downloadCalls int
	videoBytes    []byte
}

func (f *fakeVideoAPI) GenerateVideos(ctx context.Context, model, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error) {
	f.submitCalls++
	f.lastModel = model
	f.lastPrompt = prompt
	f.lastImage = image
	f.lastConfig = config

	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &genai.GenerateVideosOperation{}, nil
}

func (f *fakeVideoAPI) GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	f.getCalls++

	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.neverDone || f.getCalls <= f.pendingPolls {
		return &genai.GenerateVideosOperation{}, nil
	}
	return &genai.GenerateVideosOperation{
		Done:     true,
		Response: f.result,
	}, nil
}

func (f *fakeVideoAPI) DownloadVideo(ctx context.Context, video *genai.Video) ([]byte, error) {
	f.downloadCalls++

	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	if len(video.VideoBytes) > 0 {
		return video.VideoBytes, nil
	}
	return f.videoBytes, nil
}

// newTestDriver - driver with millisecond timings so tests finish quickly
func newTestDriver(api VideoAPI) *Driver {
	d := NewDriver(api, "veo-2.0-generate-001")
	d.PollInterval = time.Millisecond
	d.Timeout = 250 * time.Millisecond
	d.ExpectedDuration = 100 * time.Millisecond
	return d
}

// textRequest / imageRequest - valid baseline requests for tests
func textRequest() *GenerationRequest {
	return &GenerationRequest{
		Prompt:      "ocean sunset",
		Mode:        ModeText,
		Duration:    8,
		AspectRatio: "16:9",
		Quality:     "Standard",
	}
}

var pngMagic = []byte("\x89PNG\r\n\x1a\ntiny")

func imageRequest() *GenerationRequest {
	req := textRequest()
	req.Mode = ModeImage
	req.Image = pngMagic
	return req
}
