package video

import (
	"errors"

	"gorm.io/gorm"

	"github.com/thunderstudio021/fitly/internal/database"
)

var ErrNotFound = errors.New("vidéo introuvable")

// List retourne les vidéos, les plus récentes d'abord
func List(category Category) ([]Video, error) {
	query := database.DB.Order("created_at DESC")
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var videos []Video
	if err := query.Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

func FindByID(id string) (*Video, error) {
	var v Video
	if err := database.DB.First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func Create(v *Video) error {
	return database.DB.Create(v).Error
}
