package prompt

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const enhanceInstruction = "Rewrite the following video generation prompt to be more cinematic and specific about motion, lighting and camera work. Keep it under 120 words and return only the rewritten prompt.\n\n"

// EnhanceWithRetry - rewrite a user prompt with Gemini before Veo submission.
// Rotates through the provided API keys on 429, up to 3 attempts per key.
func EnhanceWithRetry(ctx context.Context, apiKeys []string, model, userPrompt string) (string, error) {
	if len(apiKeys) == 0 {
		return "", fmt.Errorf("no API keys provided")
	}

	const maxRetriesPerKey = 3
	var lastErr error

	for keyIndex, apiKey := range apiKeys {
		log.Printf("🔑 [Prompt Retry] Trying API key #%d/%d", keyIndex+1, len(apiKeys))

		for attempt := 1; attempt <= maxRetriesPerKey; attempt++ {
			if attempt > 1 {
				log.Printf("   🔄 Retry attempt %d/%d for key #%d", attempt, maxRetriesPerKey, keyIndex+1)
			}

			client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
			if err != nil {
				log.Printf("⚠️  [Prompt Retry] Failed to create client with key #%d (attempt %d): %v", keyIndex+1, attempt, err)
				lastErr = err
				continue
			}

			resp, err := client.GenerativeModel(model).GenerateContent(ctx, genai.Text(enhanceInstruction+userPrompt))
			client.Close()

			if err == nil {
				enhanced := extractText(resp)
				if enhanced == "" {
					return "", fmt.Errorf("empty enhancement response")
				}
				log.Printf("✅ [Prompt Retry] Success with API key #%d (attempt %d/%d)", keyIndex+1, attempt, maxRetriesPerKey)
				return enhanced, nil
			}

			lastErr = err

			if !IsRateLimitError(err) {
				log.Printf("❌ [Prompt Retry] Key #%d failed with non-429 error: %v", keyIndex+1, err)
				return "", err
			}

			log.Printf("⚠️  [Prompt Retry] Key #%d hit rate limit (429) on attempt %d/%d", keyIndex+1, attempt, maxRetriesPerKey)

			if attempt < maxRetriesPerKey {
				log.Printf("   ⏳ Waiting 2 seconds before retry...")
				time.Sleep(time.Second * 2)
				continue
			}
		}

		log.Printf("⚠️  [Prompt Retry] Key #%d exhausted all %d attempts, trying next key...", keyIndex+1, maxRetriesPerKey)
	}

	return "", fmt.Errorf("all %d API keys exhausted (3 attempts each), last error: %w", len(apiKeys), lastErr)
}

// extractText - first text part of the first candidate
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return strings.TrimSpace(string(txt))
		}
	}
	return ""
}

// IsRateLimitError - 429 / quota style errors that justify key rotation
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(strings.ToLower(errStr), "rate limit") ||
		strings.Contains(strings.ToLower(errStr), "quota")
}
