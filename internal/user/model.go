package user

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID         string `gorm:"primaryKey"` // UUID venant de auth.users
	CreatedAt  time.Time
	FullName   string
	Email      string `gorm:"uniqueIndex"`
	FotoPerfil string
	Role       string `gorm:"default:user"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Public retourne la représentation JSON de l'utilisateur
func (u User) Public() map[string]interface{} {
	response := map[string]interface{}{
		"id":          u.ID,
		"email":       u.Email,
		"full_name":   u.FullName,
		"foto_perfil": u.FotoPerfil,
		"role":        u.Role,
		"created_at":  u.CreatedAt,
	}
	return response
}
