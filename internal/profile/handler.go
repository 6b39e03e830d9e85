// Package profile gère le profil de l'utilisateur connecté (GET/PATCH /api/me, logout).
package profile

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/thunderstudio021/fitly/internal/logs"
	"github.com/thunderstudio021/fitly/internal/session"
	"github.com/thunderstudio021/fitly/internal/storage"
	"github.com/thunderstudio021/fitly/internal/user"
)

var ErrPasswordMismatch = errors.New("as senhas não coincidem")

// Updater regroupe les écritures du profil
type Updater interface {
	SaveUser(u *user.User) error
	UpdatePassword(accessToken, password string) error
	Logout(accessToken string) error
}

// AuthClient est le sous-ensemble de supabase.Client utilisé ici
type AuthClient interface {
	UpdatePassword(accessToken, password string) error
	Logout(accessToken string) error
}

type store struct {
	auth AuthClient
}

func (s store) SaveUser(u *user.User) error { return user.Save(u) }

func (s store) UpdatePassword(accessToken, password string) error {
	return s.auth.UpdatePassword(accessToken, password)
}

func (s store) Logout(accessToken string) error { return s.auth.Logout(accessToken) }

type Handler struct {
	updater Updater
}

func NewHandler(auth AuthClient) *Handler {
	return &Handler{updater: store{auth: auth}}
}

func newHandlerWith(u Updater) *Handler {
	return &Handler{updater: u}
}

type UpdateInput struct {
	FullName       *string `json:"full_name"`
	FotoPerfil     *string `json:"foto_perfil"`
	NovaSenha      string  `json:"nova_senha"`
	ConfirmarSenha string  `json:"confirmar_senha"`
}

// CheckPassword refuse un nouveau mot de passe non confirmé
func (in UpdateInput) CheckPassword() error {
	if in.NovaSenha != "" && in.NovaSenha != in.ConfirmarSenha {
		return ErrPasswordMismatch
	}
	return nil
}

// Apply copie les champs fournis. L'email n'est jamais modifié.
func (in UpdateInput) Apply(u *user.User) {
	if in.FullName != nil {
		u.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.FotoPerfil != nil {
		u.FotoPerfil = strings.TrimSpace(*in.FotoPerfil)
	}
}

func bindForm(c *gin.Context) UpdateInput {
	in := UpdateInput{
		NovaSenha:      c.PostForm("nova_senha"),
		ConfirmarSenha: c.PostForm("confirmar_senha"),
	}
	if v, ok := c.GetPostForm("full_name"); ok {
		in.FullName = &v
	}
	if v, ok := c.GetPostForm("foto_perfil"); ok {
		in.FotoPerfil = &v
	}
	return in
}

// GetMe GET /api/me
func (h *Handler) GetMe(c *gin.Context) {
	s := session.Current(c)
	if s.Anonymous() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuário não autenticado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": s.User.Public()})
}

// UpdateMe PATCH /api/me (JSON ou multipart avec "foto")
func (h *Handler) UpdateMe(c *gin.Context) {
	route := c.FullPath()
	s := session.Current(c)
	if s.Anonymous() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuário não autenticado"})
		return
	}
	userID := s.UserID()

	multipartForm := strings.HasPrefix(c.ContentType(), "multipart/")

	var input UpdateInput
	if multipartForm {
		input = bindForm(c)
	} else if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requisição inválida"})
		return
	}

	// Aucune écriture tant que la confirmation ne correspond pas
	if err := input.CheckPassword(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "As senhas não coincidem", "code": "password_mismatch"})
		logs.LogJSON("WARN", "Password confirmation mismatch", map[string]interface{}{
			"route":  route,
			"userID": userID,
		})
		return
	}

	var uploaded string
	if multipartForm {
		file, header, err := c.Request.FormFile("foto")
		if err == nil {
			defer file.Close()
			url, err := storage.SaveMultipart(c, file, header, storage.KindImage, "perfil")
			if err != nil {
				h.fail(c, err, "Profile photo upload error")
				return
			}
			uploaded = url
			input.FotoPerfil = &url
		}
	}

	updated := *s.User
	input.Apply(&updated)
	if err := h.updater.SaveUser(&updated); err != nil {
		storage.Discard(c.Request.Context(), uploaded)
		h.fail(c, err, "Profile update error")
		return
	}
	session.Refresh(c, &updated)

	// Le profil est déjà enregistré : l'échec du mot de passe est signalé à part
	if input.NovaSenha != "" {
		if err := h.updater.UpdatePassword(s.AccessToken, input.NovaSenha); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Perfil atualizado, mas a senha não foi alterada",
				"code":  "password_update_failed",
				"user":  updated.Public(),
			})
			logs.LogJSON("ERROR", "Password update error", map[string]interface{}{
				"error":  err,
				"route":  route,
				"userID": userID,
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"user": updated.Public()})
	logs.LogJSON("INFO", "Profile updated", map[string]interface{}{
		"route":  route,
		"userID": userID,
	})
}

// Logout POST /api/logout
func (h *Handler) Logout(c *gin.Context) {
	s := session.Current(c)

	if s.AccessToken != "" {
		if err := h.updater.Logout(s.AccessToken); err != nil {
			// La déconnexion côté client se fait quand même
			logs.LogJSON("WARN", "Supabase logout error", map[string]interface{}{
				"error":  err,
				"route":  c.FullPath(),
				"userID": s.UserID(),
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Sessão encerrada"})
}

func (h *Handler) fail(c *gin.Context, err error, message string) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar perfil"})
	logs.LogJSON("ERROR", message, map[string]interface{}{
		"error":  err,
		"route":  c.FullPath(),
		"userID": c.GetString("user_id"),
	})
}
