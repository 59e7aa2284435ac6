package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"boykot-backend/internal/config"
)

// CloudinaryService hosts user avatars. The avatar id stored on profile,
// settings and leaderboard records is the Cloudinary public id; the settings
// record additionally carries the delivery URL.
type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryService(cfg *config.Config) (*CloudinaryService, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("cloudinary configuration is missing")
	}

	cld, err := cloudinary.NewFromParams(
		cfg.CloudinaryCloudName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryService{cld: cld}, nil
}

// UploadAvatar uploads an avatar image, overwriting the user's previous one,
// and returns the public id and delivery URL.
func (s *CloudinaryService) UploadAvatar(ctx context.Context, file multipart.File, userID string) (string, string, error) {
	publicID := fmt.Sprintf("avatars/%s", userID)
	overwrite := true

	uploadResult, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         "boykot/avatars",
		Overwrite:      &overwrite,
		ResourceType:   "image",
		Format:         "jpg",
		Transformation: "c_fill,g_face,h_500,w_500",
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}

	return publicID, uploadResult.SecureURL, nil
}

// DeleteAvatar removes a user's avatar image.
func (s *CloudinaryService) DeleteAvatar(ctx context.Context, userID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     fmt.Sprintf("avatars/%s", userID),
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete avatar: %w", err)
	}
	return nil
}
