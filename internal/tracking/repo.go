package tracking

import (
	"github.com/thunderstudio021/fitly/internal/database"
)

// ListByUser retourne les registres de l'utilisateur, les plus récents d'abord
func ListByUser(userID string) ([]Entry, error) {
	var entries []Entry
	err := database.DB.
		Where("user_id = ?", userID).
		Order("data DESC").
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Create n'insère que les colonnes renseignées
func Create(e *Entry) error {
	return database.DB.Select(e.RecordedFields()).Create(e).Error
}
