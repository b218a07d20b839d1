package videogen

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// genaiAPI - VideoAPI backed by the real GenAI client
type genaiAPI struct {
	client *genai.Client
}

// NewGenAIVideoAPI - authenticated client handle for the Gemini API backend
func NewGenAIVideoAPI(ctx context.Context, apiKey string) (VideoAPI, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &genaiAPI{client: client}, nil
}

func (a *genaiAPI) GenerateVideos(ctx context.Context, model, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error) {
	return a.client.Models.GenerateVideos(ctx, model, prompt, image, config)
}

func (a *genaiAPI) GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	return a.client.Operations.GetVideosOperation(ctx, op, nil)
}

// DownloadVideo - resolve a generated video into raw MP4 bytes. The Gemini
// API backend fills VideoBytes through the Files download call.
func (a *genaiAPI) DownloadVideo(ctx context.Context, video *genai.Video) ([]byte, error) {
	if len(video.VideoBytes) == 0 {
		a.client.Files.Download(ctx, video, nil)
	}
	if len(video.VideoBytes) == 0 {
		return nil, fmt.Errorf("no video bytes returned (uri: %s)", video.URI)
	}
	return video.VideoBytes, nil
}
