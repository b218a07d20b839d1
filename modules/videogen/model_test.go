package videogen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validRequest() GenerationRequest {
	return GenerationRequest{
		Prompt:      "a red fox running through snow",
		Mode:        ModeText,
		Duration:    8,
		AspectRatio: "16:9",
		Quality:     "Standard",
	}
}

func TestGenerationRequest_Validate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*GenerationRequest)
		wantErr string
	}{
		{"valid text", func(r *GenerationRequest) {}, ""},
		{"valid image", func(r *GenerationRequest) {
			r.Mode = ModeImage
			r.Image = pngMagic
		}, ""},
		{"empty prompt", func(r *GenerationRequest) { r.Prompt = "" }, "prompt is required"},
		{"whitespace prompt", func(r *GenerationRequest) { r.Prompt = "   \t\n" }, "prompt is required"},
		{"text mode tolerates stray image", func(r *GenerationRequest) { r.Image = pngMagic }, ""},
		{"image mode without image", func(r *GenerationRequest) { r.Mode = ModeImage }, "image mode requires a non-empty image"},
		{"unknown mode", func(r *GenerationRequest) { r.Mode = "audio" }, "invalid mode"},
		{"duration 5 ok", func(r *GenerationRequest) { r.Duration = 5 }, ""},
		{"duration 4 ok", func(r *GenerationRequest) { r.Duration = 4 }, ""},
		{"duration 6 rejected", func(r *GenerationRequest) { r.Duration = 6 }, "duration must be 4, 5 or 8"},
		{"duration zero rejected", func(r *GenerationRequest) { r.Duration = 0 }, "duration must be 4, 5 or 8"},
		{"portrait ok", func(r *GenerationRequest) { r.AspectRatio = "9:16" }, ""},
		{"square rejected", func(r *GenerationRequest) { r.AspectRatio = "1:1" }, "aspect ratio must be 16:9 or 9:16"},
		{"quality high ok", func(r *GenerationRequest) { r.Quality = "High" }, ""},
		{"quality lowercase rejected", func(r *GenerationRequest) { r.Quality = "high" }, "quality must be Standard or High"},
		{"quality empty rejected", func(r *GenerationRequest) { r.Quality = "" }, "quality must be Standard or High"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)

			err := req.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tc.wantErr)
			}
		})
	}
}
