package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// MaxPhotoSize is the upload limit for medication label photos
const MaxPhotoSize = 5 << 20 // 5 MB

type ImageService struct {
	cld *cloudinary.Cloudinary
}

func NewImageService() (*ImageService, error) {
	// Get Cloudinary configuration from environment
	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("missing Cloudinary configuration")
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &ImageService{cld: cld}, nil
}

// UploadLabelPhoto uploads a photo of a medication's label and returns its URL.
// Re-uploading for the same medication overwrites the previous photo.
func (s *ImageService) UploadLabelPhoto(file multipart.File, filename string, medicationID string) (string, error) {
	allowedTypes := map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedTypes[ext] {
		return "", fmt.Errorf("invalid file type: %s. Allowed types: jpg, jpeg, png, webp", ext)
	}

	if err := s.validatePhotoSize(file, MaxPhotoSize); err != nil {
		return "", err
	}

	overwrite := true
	uploadParams := uploader.UploadParams{
		PublicID:       fmt.Sprintf("labels/med_%s", medicationID),
		Folder:         "kinnect/labels",
		Overwrite:      &overwrite,
		ResourceType:   "image",
		Transformation: "c_limit,h_1200,w_1200/q_auto,f_auto",
	}

	result, err := s.cld.Upload.Upload(context.Background(), file, uploadParams)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return result.SecureURL, nil
}

// DeleteLabelPhoto removes a medication's label photo from Cloudinary
func (s *ImageService) DeleteLabelPhoto(medicationID string) error {
	_, err := s.cld.Upload.Destroy(context.Background(), uploader.DestroyParams{
		PublicID: fmt.Sprintf("kinnect/labels/labels/med_%s", medicationID),
	})
	return err
}

// validatePhotoSize reads the file to enforce the size limit, then rewinds it
func (s *ImageService) validatePhotoSize(file multipart.File, maxSize int64) error {
	file.Seek(0, 0)

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if int64(len(data)) > maxSize {
		return fmt.Errorf("file too large: %d bytes (max %d bytes)", len(data), maxSize)
	}

	file.Seek(0, 0)
	return nil
}
