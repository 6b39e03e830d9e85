package video

import (
	"fmt"
	"regexp"
)

const FallbackThumbnail = "https://images.unsplash.com/photo-1571019613454-1cb2f99b2d8b?w=800&q=80"

var youtubePattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&]+)`)

// ExtractYouTubeID retourne l'identifiant d'un lien youtube.com/watch?v= ou youtu.be/
func ExtractYouTubeID(link string) (string, bool) {
	m := youtubePattern.FindStringSubmatch(link)
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// Thumbnail : miniature explicite, sinon miniature YouTube, sinon image par défaut
func Thumbnail(v Video) string {
	if v.ThumbnailURL != "" {
		return v.ThumbnailURL
	}

	src, err := v.Source()
	if err != nil {
		return FallbackThumbnail
	}

	switch s := src.(type) {
	case ExternalLink:
		if id, ok := ExtractYouTubeID(s.Link); ok {
			return fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", id)
		}
	case UploadedMedia:
	}
	return FallbackThumbnail
}

// Playback décrit comment le lecteur doit jouer la vidéo
type Playback struct {
	Kind     string `json:"kind"` // "embed" ou "file"
	EmbedURL string `json:"embed_url,omitempty"`
	FileURL  string `json:"file_url,omitempty"`
}

func ResolvePlayback(v Video) (Playback, error) {
	src, err := v.Source()
	if err != nil {
		return Playback{}, err
	}

	switch s := src.(type) {
	case ExternalLink:
		id, ok := ExtractYouTubeID(s.Link)
		if !ok {
			return Playback{}, fmt.Errorf("%w: lien youtube sans identifiant", ErrInvalidSource)
		}
		return Playback{Kind: "embed", EmbedURL: EmbedURL(id)}, nil
	case UploadedMedia:
		return Playback{Kind: "file", FileURL: s.MediaURL}, nil
	}
	return Playback{}, ErrInvalidSource
}

func EmbedURL(youtubeID string) string {
	return fmt.Sprintf("https://www.youtube.com/embed/%s?autoplay=1", youtubeID)
}
