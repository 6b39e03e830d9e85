package video

import (
	"errors"
	"time"
)

type Category string

const (
	CategoryStretch  Category = "alongamento"
	CategoryCardio   Category = "cardio"
	CategoryStrength Category = "forca"
	CategoryYoga     Category = "yoga"
	CategoryDance    Category = "danca"
	CategoryOther    Category = "outro"
)

var categoryLabels = map[Category]string{
	CategoryStretch:  "Alongamento",
	CategoryCardio:   "Cardio",
	CategoryStrength: "Força",
	CategoryYoga:     "Yoga",
	CategoryDance:    "Dança",
	CategoryOther:    "Exercício",
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return categoryLabels[CategoryOther]
}

// Types de source tels que stockés en base
const (
	TypeYouTube = "youtube"
	TypeUpload  = "upload"
)

var ErrInvalidSource = errors.New("source de vidéo invalide")

// Source est soit un ExternalLink, soit un UploadedMedia
type Source interface {
	sourceType() string
	URL() string
}

type ExternalLink struct{ Link string }

type UploadedMedia struct{ MediaURL string }

func (ExternalLink) sourceType() string  { return TypeYouTube }
func (s ExternalLink) URL() string       { return s.Link }
func (UploadedMedia) sourceType() string { return TypeUpload }
func (s UploadedMedia) URL() string      { return s.MediaURL }

type Video struct {
	ID           string `gorm:"primaryKey"`
	CreatedAt    time.Time
	CreatedBy    string `gorm:"index"`
	Title        string
	Description  string
	Duration     string
	Category     Category `gorm:"index;default:outro"`
	Type         string
	YoutubeURL   string
	VideoURL     string
	ThumbnailURL string
}

// Source reconstruit la variante à partir des colonnes
func (v Video) Source() (Source, error) {
	switch v.Type {
	case TypeYouTube:
		if v.YoutubeURL == "" {
			return nil, ErrInvalidSource
		}
		return ExternalLink{Link: v.YoutubeURL}, nil
	case TypeUpload:
		if v.VideoURL == "" {
			return nil, ErrInvalidSource
		}
		return UploadedMedia{MediaURL: v.VideoURL}, nil
	}
	return nil, ErrInvalidSource
}

// SetSource écrit la variante dans les colonnes, en vidant l'autre
func (v *Video) SetSource(s Source) {
	v.Type = s.sourceType()
	v.YoutubeURL, v.VideoURL = "", ""
	switch src := s.(type) {
	case ExternalLink:
		v.YoutubeURL = src.Link
	case UploadedMedia:
		v.VideoURL = src.MediaURL
	}
}
