package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"log"

	_ "github.com/kolesa-team/go-webp/decoder" // register WebP decoder
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// DetectMimeType - resolve the image MIME type from magic bytes.
// Unknown formats fall back to image/jpeg.
func DetectMimeType(imageData []byte) string {
	if bytes.HasPrefix(imageData, []byte{0xff, 0xd8, 0xff}) {
		return "image/jpeg"
	}
	if bytes.HasPrefix(imageData, []byte("\x89PNG\r\n\x1a\n")) {
		return "image/png"
	}
	if bytes.HasPrefix(imageData, []byte("RIFF")) && len(imageData) >= 12 && bytes.Contains(imageData[:12], []byte("WEBP")) {
		return "image/webp"
	}
	return "image/jpeg"
}

// ConvertImageToBase64 - encode image binary as base64
func ConvertImageToBase64(imageData []byte) string {
	return base64.StdEncoding.EncodeToString(imageData)
}

// ConvertImageToWebP - re-encode an image (PNG/JPEG/WebP) as lossy WebP
func ConvertImageToWebP(imageData []byte, quality float32) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return nil, fmt.Errorf("failed to create WebP encoder options: %w", err)
	}

	var webpBuffer bytes.Buffer
	if err := webp.Encode(&webpBuffer, img, options); err != nil {
		return nil, fmt.Errorf("failed to encode WebP: %w", err)
	}

	webpData := webpBuffer.Bytes()

	log.Printf("✅ %s converted to WebP: %d bytes → %d bytes", format, len(imageData), len(webpData))

	return webpData, nil
}
