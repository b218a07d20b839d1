package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"time"

	"veo-studio-server/modules/common/config"
	"veo-studio-server/modules/common/database"
)

type Client struct {
	dbClient *database.Client
}

// NewClient - storage client over the Supabase Storage REST API
func NewClient(dbClient *database.Client) *Client {
	return &Client{
		dbClient: dbClient,
	}
}

// DownloadImageFromStorage - fetch a staged source image by attach id
func (c *Client) DownloadImageFromStorage(attachID int) ([]byte, error) {
	cfg := config.GetConfig()

	attach, err := c.dbClient.FetchAttachInfo(attachID)
	if err != nil {
		return nil, err
	}

	if attach.AttachFilePath == nil || *attach.AttachFilePath == "" {
		return nil, fmt.Errorf("no file path found for attach_id: %d", attachID)
	}
	filePath := *attach.AttachFilePath

	fullURL := cfg.SupabaseStorageBaseURL + filePath
	log.Printf("📥 Downloading source image from: %s", fullURL)

	httpResp, err := http.Get(fullURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		log.Printf("❌ Download failed - Status: %d, URL: %s", httpResp.StatusCode, fullURL)
		return nil, fmt.Errorf("failed to download image: status %d, body: %s", httpResp.StatusCode, string(body))
	}

	imageData, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	log.Printf("✅ Image downloaded successfully: %d bytes", len(imageData))
	return imageData, nil
}

// UploadVideoToStorage - upload generated MP4 bytes, returns the storage path
func (c *Client) UploadVideoToStorage(ctx context.Context, videoData []byte, jobID string) (string, int64, error) {
	fileName := fmt.Sprintf("veo_%s.mp4", jobID)
	filePath := fmt.Sprintf("generated-videos/%s", fileName)

	if err := c.upload(ctx, filePath, "video/mp4", videoData); err != nil {
		return "", 0, err
	}

	size := int64(len(videoData))
	log.Printf("✅ Video uploaded successfully: %s (%d bytes)", filePath, size)
	return filePath, size, nil
}

// UploadImageToStorage - archive the source image as WebP, returns the storage path
func (c *Client) UploadImageToStorage(ctx context.Context, imageData []byte, userID string, convertToWebP func([]byte, float32) ([]byte, error)) (string, int64, error) {
	webpData, err := convertToWebP(imageData, 90.0)
	if err != nil {
		return "", 0, fmt.Errorf("failed to convert image to WebP: %w", err)
	}

	timestamp := time.Now().UnixNano() / int64(time.Millisecond)
	randomID := rand.Intn(999999)
	fileName := fmt.Sprintf("source_%d_%d.webp", timestamp, randomID)
	filePath := fmt.Sprintf("source-images/user-%s/%s", userID, fileName)

	if err := c.upload(ctx, filePath, "image/webp", webpData); err != nil {
		return "", 0, err
	}

	webpSize := int64(len(webpData))
	log.Printf("✅ WebP image uploaded successfully: %s (%d bytes)", filePath, webpSize)
	return filePath, webpSize, nil
}

// upload - POST bytes to the Supabase Storage object endpoint
func (c *Client) upload(ctx context.Context, filePath, contentType string, data []byte) error {
	cfg := config.GetConfig()

	log.Printf("📤 Uploading to storage: %s (%s)", filePath, contentType)

	uploadURL := fmt.Sprintf("%s/storage/v1/object/attachments/%s", cfg.SupabaseURL, filePath)

	req, err := http.NewRequestWithContext(ctx, "POST", uploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+cfg.SupabaseServiceKey)
	req.Header.Set("Content-Type", contentType)

	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
