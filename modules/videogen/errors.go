package videogen

import (
	"errors"
	"strings"
)

// Category - classification of an error message, used to pick user guidance.
// The remote API exposes no structured codes, so this is substring matching
// over the raw text, first match wins.
type Category string

const (
	CategoryQuota              Category = "QUOTA"
	CategoryAuth               Category = "AUTH"
	CategoryInvalidInput       Category = "INVALID_INPUT"
	CategoryModelUnavailable   Category = "MODEL_UNAVAILABLE"
	CategoryTimeout            Category = "TIMEOUT"
	CategoryServiceUnavailable Category = "SERVICE_UNAVAILABLE"
	CategoryGeneral            Category = "GENERAL"
)

// Failure codes surfaced on the job row
const (
	CodeSubmitBillingRequired = "SUBMIT_BILLING_REQUIRED"
	CodeSubmitFailed          = "SUBMIT_FAILED"
	CodeTimeout               = "TIMEOUT"
	CodeEmptyResult           = "EMPTY_RESULT"
	CodeGenerationFailed      = "GENERATION_FAILED"
)

var (
	// ErrBillingRequired - the account lacks billing for the Veo model.
	// Not retryable; fixing it requires account action, not another attempt.
	ErrBillingRequired = errors.New("billing required for video generation")

	// ErrTimeout - local wait gave up; the remote operation keeps running orphaned
	ErrTimeout = errors.New("video generation timeout")

	// ErrEmptyResult - operation finished but produced no videos
	ErrEmptyResult = errors.New("no videos were generated")
)

// Failure - the diagnostic a job resolves to when it does not produce a video.
// Nothing else crosses the driver boundary: callers get (artifact, nil) or (nil, failure).
type Failure struct {
	Code     string   `json:"code"`
	Category Category `json:"category"`
	Message  string   `json:"message"`
	Guidance string   `json:"guidance"`
}

func (f *Failure) Error() string {
	return f.Code + ": " + f.Message
}

// ClassifyError - map raw error text to a Category.
// The order is a deliberate priority list: a message containing both "quota"
// and "unavailable" classifies as QUOTA, never SERVICE_UNAVAILABLE.
func ClassifyError(raw string) Category {
	msg := strings.ToLower(raw)

	switch {
	case strings.Contains(msg, "quota") || strings.Contains(msg, "exceeded"):
		return CategoryQuota
	case strings.Contains(msg, "authentication") || strings.Contains(msg, "unauthorized"):
		return CategoryAuth
	case strings.Contains(msg, "invalid_argument"):
		return CategoryInvalidInput
	case strings.Contains(msg, "model") && strings.Contains(msg, "not found"):
		return CategoryModelUnavailable
	case strings.Contains(msg, "timeout"):
		return CategoryTimeout
	case strings.Contains(msg, "unavailable") || strings.Contains(raw, "503"):
		return CategoryServiceUnavailable
	default:
		return CategoryGeneral
	}
}

// GuidanceFor - one actionable hint per category
func GuidanceFor(category Category) string {
	switch category {
	case CategoryQuota:
		return "You've exceeded your API limits. Please check your Google AI API quota and billing."
	case CategoryAuth:
		return "Please verify your API key has access to Veo video generation."
	case CategoryInvalidInput:
		return "Please check your image format and prompt. Try a different image or shorter prompt."
	case CategoryModelUnavailable:
		return "The Veo model may not be available in your region or requires special access."
	case CategoryTimeout:
		return "The request timed out. Please try again with a shorter prompt or different image."
	case CategoryServiceUnavailable:
		return "The Veo service is temporarily unavailable. Please try again later."
	default:
		return "Please check your internet connection and try again. If the issue persists, verify your API key and quota."
	}
}

// BillingGuidance - the one failure class caused by account configuration,
// so it gets more detailed instructions than the category hints
const BillingGuidance = "Veo requires Google Cloud billing to be enabled. " +
	"Go to https://console.cloud.google.com/, enable billing in your account, " +
	"link a payment method, wait a few minutes and try again."

// isBillingError - FAILED_PRECONDITION on submission means the account lacks
// billing/entitlement for the model
func isBillingError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(strings.ToLower(msg), "billing") ||
		strings.Contains(msg, "FAILED_PRECONDITION")
}

// newFailure - classify an error and attach its guidance
func newFailure(code string, err error) *Failure {
	category := ClassifyError(err.Error())
	return &Failure{
		Code:     code,
		Category: category,
		Message:  err.Error(),
		Guidance: GuidanceFor(category),
	}
}

// newBillingFailure - distinct non-retryable diagnostic for the billing precondition
func newBillingFailure(err error) *Failure {
	return &Failure{
		Code:     CodeSubmitBillingRequired,
		Category: CategoryGeneral,
		Message:  err.Error(),
		Guidance: BillingGuidance,
	}
}
