package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/thunderstudio021/fitly/internal/config"
	"github.com/thunderstudio021/fitly/internal/logs"
)

var ErrInvalidExtension = errors.New("extension de fichier invalide")

// Provider est implémenté par S3 et Cloudinary
type Provider interface {
	Upload(ctx context.Context, file io.Reader, filename, contentType, folder string) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

var provider Provider

func Init(ctx context.Context, cfg config.StorageConfig) error {
	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case "cloudinary":
		p, err = NewCloudinary(cfg)
	default:
		p, err = NewS3(ctx, cfg)
	}
	if err != nil {
		return err
	}
	provider = p
	return nil
}

// SetProvider remplace le fournisseur courant et renvoie une fonction de restauration
func SetProvider(p Provider) func() {
	previous := provider
	provider = p
	return func() { provider = previous }
}

func Upload(ctx context.Context, file io.Reader, filename, contentType, folder string) (string, error) {
	if provider == nil {
		return "", fmt.Errorf("stockage non initialisé")
	}
	return provider.Upload(ctx, file, filename, contentType, folder)
}

func Delete(ctx context.Context, fileURL string) error {
	if provider == nil {
		return fmt.Errorf("stockage non initialisé")
	}
	return provider.Delete(ctx, fileURL)
}

// Discard supprime un fichier resté orphelin après un échec, sans remonter d'erreur
func Discard(ctx context.Context, fileURL string) {
	if fileURL == "" {
		return
	}
	if err := Delete(ctx, fileURL); err != nil {
		logs.LogJSON("WARN", "Orphan upload could not be deleted", map[string]interface{}{
			"error": err,
			"extra": fileURL,
		})
	}
}

var (
	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".heic": true}
	videoExtensions = map[string]bool{".mp4": true, ".mov": true, ".avi": true, ".mkv": true, ".webm": true}
)

// Kind restreint les extensions acceptées pour un upload
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindAny   Kind = "any"
)

// CheckExtension retourne l'extension normalisée si elle est acceptée pour ce type
func CheckExtension(filename string, kind Kind) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	ok := false
	switch kind {
	case KindImage:
		ok = imageExtensions[ext]
	case KindVideo:
		ok = videoExtensions[ext]
	case KindAny:
		ok = imageExtensions[ext] || videoExtensions[ext]
	}
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
	}
	return ext, nil
}
