package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/thunderstudio021/fitly/internal/config"
)

type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(cfg config.StorageConfig) (*Cloudinary, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("configuration cloudinary manquante")
	}

	cld, err := cloudinary.NewFromParams(
		cfg.CloudinaryCloudName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	)
	if err != nil {
		return nil, fmt.Errorf("initialisation cloudinary: %w", err)
	}

	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, file io.Reader, filename, contentType, folder string) (string, error) {
	overwrite := true

	result, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:     strings.TrimSuffix(filename, path.Ext(filename)),
		Folder:       "fitly/" + folder,
		Overwrite:    &overwrite,
		ResourceType: resourceType(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload cloudinary: %w", err)
	}

	return result.SecureURL, nil
}

func (c *Cloudinary) Delete(ctx context.Context, fileURL string) error {
	publicID, ok := publicIDFromURL(fileURL)
	if !ok {
		return fmt.Errorf("URL cloudinary invalide: %s", fileURL)
	}

	_, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("suppression cloudinary: %w", err)
	}
	return nil
}

func resourceType(contentType string) string {
	if strings.HasPrefix(contentType, "video/") {
		return "video"
	}
	if strings.HasPrefix(contentType, "image/") {
		return "image"
	}
	return "auto"
}

// publicIDFromURL extrait "fitly/<folder>/<nom>" d'une URL .../upload/v123/fitly/<folder>/<nom>.ext
func publicIDFromURL(fileURL string) (string, bool) {
	idx := strings.Index(fileURL, "/upload/")
	if idx < 0 {
		return "", false
	}
	rest := fileURL[idx+len("/upload/"):]
	if slash := strings.Index(rest, "/"); slash > 0 && strings.HasPrefix(rest, "v") {
		rest = rest[slash+1:]
	}
	rest = strings.TrimSuffix(rest, path.Ext(rest))
	if rest == "" {
		return "", false
	}
	return rest, true
}
