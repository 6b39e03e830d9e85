package user

import (
	"errors"

	"gorm.io/gorm"

	"github.com/thunderstudio021/fitly/internal/database"
)

var ErrNotFound = errors.New("utilisateur introuvable")

func FindByID(userID string) (*User, error) {
	var u User
	if err := database.DB.First(&u, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func ExistsByEmail(email string) bool {
	var count int64
	database.DB.Model(&User{}).Where("email = ?", email).Count(&count)
	return count > 0
}

func Create(u *User) error {
	return database.DB.Create(u).Error
}

// Save ne touche jamais à l'email : il est immuable depuis l'API
func Save(u *User) error {
	return database.DB.Model(u).Select("full_name", "foto_perfil").Updates(u).Error
}

// Search cherche par nom ou email, limité à limit résultats
func Search(query string, limit int) ([]User, error) {
	var users []User
	pattern := "%" + query + "%"
	err := database.DB.
		Where("full_name ILIKE ? OR email ILIKE ?", pattern, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func UpdateRole(userID, role string) error {
	res := database.DB.Model(&User{}).Where("id = ?", userID).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
