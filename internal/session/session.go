// Package session porte l'utilisateur courant, résolu une seule fois par
// requête et partagé par tous les handlers de la chaîne.
package session

import (
	"github.com/gin-gonic/gin"

	"github.com/thunderstudio021/fitly/internal/logs"
	"github.com/thunderstudio021/fitly/internal/user"
)

const contextKey = "session"

type Session struct {
	User        *user.User
	AccessToken string
}

// Anonymous est vrai quand aucun utilisateur n'a pu être résolu
func (s *Session) Anonymous() bool {
	return s == nil || s.User == nil
}

func (s *Session) IsAdmin() bool {
	return !s.Anonymous() && s.User.IsAdmin()
}

func (s *Session) UserID() string {
	if s.Anonymous() {
		return ""
	}
	return s.User.ID
}

// Finder résout un utilisateur à partir de son ID (user.FindByID en production)
type Finder func(userID string) (*user.User, error)

// Load charge la session à partir du user_id posé par le middleware d'auth.
// Un échec de résolution donne une session anonyme, jamais une erreur.
func Load(find Finder) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := &Session{AccessToken: c.GetString("access_token")}

		if userID := c.GetString("user_id"); userID != "" {
			u, err := find(userID)
			if err != nil {
				logs.LogJSON("WARN", "Session user could not be resolved", map[string]interface{}{
					"error":  err.Error(),
					"route":  c.FullPath(),
					"userID": userID,
				})
			} else {
				s.User = u
			}
		}

		c.Set(contextKey, s)
		c.Next()
	}
}

// Current retourne la session de la requête (anonyme si Load n'a pas tourné)
func Current(c *gin.Context) *Session {
	if v, ok := c.Get(contextKey); ok {
		if s, ok := v.(*Session); ok {
			return s
		}
	}
	return &Session{}
}

// Refresh remplace l'utilisateur de la session après une mise à jour du profil
func Refresh(c *gin.Context, u *user.User) {
	s := Current(c)
	s.User = u
	c.Set(contextKey, s)
}
