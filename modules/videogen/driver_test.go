package videogen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func oneVideoResponse(size int) *genai.GenerateVideosResponse {
	return &genai.GenerateVideosResponse{
		GeneratedVideos: []*genai.GeneratedVideo{
			{Video: &genai.Video{VideoBytes: make([]byte, size), MIMEType: "video/mp4"}},
		},
	}
}

func TestSubmit_EmptyPromptNeverReachesAPI(t *testing.T) {
	api := &fakeVideoAPI{}
	driver := newTestDriver(api)

	req := textRequest()
	req.Prompt = "   \t "

	_, err := driver.Submit(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, 0, api.submitCalls, "no submission should be attempted for an empty prompt")
}

func TestSubmit_TextModeOmitsImage(t *testing.T) {
	api := &fakeVideoAPI{}
	driver := newTestDriver(api)

	// stray image bytes on a text request must never reach the payload
	req := textRequest()
	req.Image = pngMagic

	_, err := driver.Submit(context.Background(), req)

	require.NoError(t, err)
	require.Equal(t, 1, api.submitCalls)
	assert.Nil(t, api.lastImage)
	assert.Equal(t, "ocean sunset", api.lastPrompt)
}

func TestSubmit_ImageModeAttachesDetectedMime(t *testing.T) {
	api := &fakeVideoAPI{}
	driver := newTestDriver(api)

	_, err := driver.Submit(context.Background(), imageRequest())

	require.NoError(t, err)
	require.NotNil(t, api.lastImage)
	assert.Equal(t, pngMagic, api.lastImage.ImageBytes)
	assert.Equal(t, "image/png", api.lastImage.MIMEType)
}

func TestSubmit_GenerationConfig(t *testing.T) {
	api := &fakeVideoAPI{}
	driver := newTestDriver(api)

	_, err := driver.Submit(context.Background(), textRequest())

	require.NoError(t, err)
	require.NotNil(t, api.lastConfig)
	assert.Equal(t, "16:9", api.lastConfig.AspectRatio)
	assert.Equal(t, int32(1), api.lastConfig.NumberOfVideos)
	require.NotNil(t, api.lastConfig.DurationSeconds)
	assert.Equal(t, int32(8), *api.lastConfig.DurationSeconds)
	assert.Equal(t, "veo-2.0-generate-001", api.lastModel)
}

func TestSubmit_BillingPrecondition(t *testing.T) {
	api := &fakeVideoAPI{submitErr: errors.New("FAILED_PRECONDITION, billing required for veo")}
	driver := newTestDriver(api)

	_, err := driver.Submit(context.Background(), textRequest())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBillingRequired))
}

func TestRun_BillingFailureWithoutPolling(t *testing.T) {
	api := &fakeVideoAPI{submitErr: errors.New("FAILED_PRECONDITION, billing")}
	driver := newTestDriver(api)

	artifact, failure := driver.Run(context.Background(), textRequest(), nil)

	assert.Nil(t, artifact)
	require.NotNil(t, failure)
	assert.Equal(t, CodeSubmitBillingRequired, failure.Code)
	assert.Equal(t, BillingGuidance, failure.Guidance)
	assert.Equal(t, 0, api.getCalls, "billing failures must not be polled")
}

func TestRun_OtherSubmitErrorsAreGeneric(t *testing.T) {
	api := &fakeVideoAPI{submitErr: errors.New("connection reset by peer")}
	driver := newTestDriver(api)

	artifact, failure := driver.Run(context.Background(), textRequest(), nil)

	assert.Nil(t, artifact)
	require.NotNil(t, failure)
	assert.Equal(t, CodeSubmitFailed, failure.Code)
	assert.Equal(t, CategoryGeneral, failure.Category)
}

func TestAwaitCompletion_SuccessAfterThreePolls(t *testing.T) {
	api := &fakeVideoAPI{
		pendingPolls: 2,
		result:       oneVideoResponse(2400000),
	}
	driver := newTestDriver(api)

	op, err := driver.Submit(context.Background(), textRequest())
	require.NoError(t, err)

	artifact, err := driver.AwaitCompletion(context.Background(), op, nil)

	require.NoError(t, err)
	require.NotNil(t, artifact)
	assert.Equal(t, int64(2400000), artifact.Size)
	assert.Len(t, artifact.Data, 2400000)
	assert.Equal(t, 3, api.getCalls, "done=false twice then done=true means exactly 3 polls")
}

func TestAwaitCompletion_TimeoutStopsPolling(t *testing.T) {
	api := &fakeVideoAPI{neverDone: true}
	driver := newTestDriver(api)
	driver.Timeout = 20 * time.Millisecond
	driver.PollInterval = 2 * time.Millisecond

	op, err := driver.Submit(context.Background(), textRequest())
	require.NoError(t, err)

	_, err = driver.AwaitCompletion(context.Background(), op, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))

	pollsAtReturn := api.getCalls
	time.Sleep(10 * driver.PollInterval)
	assert.Equal(t, pollsAtReturn, api.getCalls, "no further polls after timeout")
}

func TestAwaitCompletion_EmptyResult(t *testing.T) {
	cases := []struct {
		name   string
		result *genai.GenerateVideosResponse
	}{
		{"nil response", nil},
		{"empty video list", &genai.GenerateVideosResponse{}},
		{"nil video entry", &genai.GenerateVideosResponse{GeneratedVideos: []*genai.GeneratedVideo{{}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeVideoAPI{result: tc.result}
			driver := newTestDriver(api)

			op, err := driver.Submit(context.Background(), textRequest())
			require.NoError(t, err)

			artifact, err := driver.AwaitCompletion(context.Background(), op, nil)

			assert.Nil(t, artifact)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrEmptyResult))
		})
	}
}

func TestAwaitCompletion_ProgressMonotonic(t *testing.T) {
	api := &fakeVideoAPI{
		pendingPolls: 5,
		result:       oneVideoResponse(1024),
	}
	driver := newTestDriver(api)

	var fractions []float64
	onProgress := func(fraction float64, status string) {
		fractions = append(fractions, fraction)
	}

	op, err := driver.Submit(context.Background(), textRequest())
	require.NoError(t, err)

	_, err = driver.AwaitCompletion(context.Background(), op, onProgress)
	require.NoError(t, err)

	require.NotEmpty(t, fractions)
	for i := 1; i < len(fractions); i++ {
		assert.GreaterOrEqual(t, fractions[i], fractions[i-1], "progress must never decrease")
	}
	for _, f := range fractions[:len(fractions)-1] {
		assert.LessOrEqual(t, f, 0.95, "progress stays under the ceiling until done")
	}
	assert.Equal(t, 1.0, fractions[len(fractions)-1], "progress reaches 1.0 only on confirmed completion")
}

func TestRun_TimeoutFailure(t *testing.T) {
	api := &fakeVideoAPI{neverDone: true}
	driver := newTestDriver(api)
	driver.Timeout = 15 * time.Millisecond
	driver.PollInterval = 2 * time.Millisecond

	artifact, failure := driver.Run(context.Background(), textRequest(), nil)

	assert.Nil(t, artifact)
	require.NotNil(t, failure)
	assert.Equal(t, CodeTimeout, failure.Code)
	assert.Equal(t, CategoryTimeout, failure.Category)
}

func TestRun_EmptyResultFailure(t *testing.T) {
	api := &fakeVideoAPI{result: &genai.GenerateVideosResponse{}}
	driver := newTestDriver(api)

	artifact, failure := driver.Run(context.Background(), textRequest(), nil)

	assert.Nil(t, artifact)
	require.NotNil(t, failure)
	assert.Equal(t, CodeEmptyResult, failure.Code)
}

func TestRun_PollErrorIsClassified(t *testing.T) {
	api := &fakeVideoAPI{getErr: errors.New("503 Service Unavailable")}
	driver := newTestDriver(api)

	artifact, failure := driver.Run(context.Background(), textRequest(), nil)

	assert.Nil(t, artifact)
	require.NotNil(t, failure)
	assert.Equal(t, CodeGenerationFailed, failure.Code)
	assert.Equal(t, CategoryServiceUnavailable, failure.Category)
}

func TestRun_EndToEndImageJob(t *testing.T) {
	api := &fakeVideoAPI{
		pendingPolls: 1,
		result:       oneVideoResponse(2048),
	}
	driver := newTestDriver(api)

	artifact, failure := driver.Run(context.Background(), imageRequest(), nil)

	require.Nil(t, failure)
	require.NotNil(t, artifact)
	assert.Equal(t, int64(2048), artifact.Size)
	require.NotNil(t, api.lastImage)
	assert.Equal(t, "image/png", api.lastImage.MIMEType)
}
