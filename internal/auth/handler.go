package auth

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thunderstudio021/fitly/internal/logs"
	"github.com/thunderstudio021/fitly/internal/supabase"
	"github.com/thunderstudio021/fitly/internal/user"
)

// Provider est le sous-ensemble de Supabase Auth utilisé pour l'inscription et la connexion
type Provider interface {
	Signup(email, password string) (*supabase.SignupResult, error)
	Login(email, password string) (int, []byte, error)
}

// Users persiste la fiche utilisateur applicative
type Users interface {
	ExistsByEmail(email string) bool
	Create(u *user.User) error
}

type userRepo struct{}

func (userRepo) ExistsByEmail(email string) bool { return user.ExistsByEmail(email) }
func (userRepo) Create(u *user.User) error       { return user.Create(u) }

type Handler struct {
	provider Provider
	users    Users
}

func NewHandler(provider Provider) *Handler {
	return &Handler{provider: provider, users: userRepo{}}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup : Inscription
func (h *Handler) Signup(c *gin.Context) {
	route := c.FullPath()

	var input struct {
		credentials
		FullName string `json:"full_name"`
	}
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requisição inválida"})
		return
	}

	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Campos obrigatórios ausentes"})
		return
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email inválido"})
		return
	}

	if h.users.ExistsByEmail(input.Email) {
		c.JSON(http.StatusConflict, gin.H{"error": "Email já cadastrado"})
		return
	}

	// Étape 1 – Supabase Auth
	result, err := h.provider.Signup(input.Email, input.Password)
	if err != nil {
		var authErr *supabase.AuthError
		if errors.As(err, &authErr) {
			c.JSON(authErr.StatusCode, gin.H{"error": "Erro de autenticação", "details": authErr.Body})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro Supabase Auth"})
		}
		logs.LogJSON("ERROR", "Supabase signup error", map[string]interface{}{
			"error": err,
			"route": route,
		})
		return
	}

	// Étape 2 – Fiche utilisateur applicative
	newUser := user.User{
		ID:        result.UserID,
		CreatedAt: time.Now(),
		FullName:  strings.TrimSpace(input.FullName),
		Email:     input.Email,
		Role:      user.RoleUser,
	}
	if err := h.users.Create(&newUser); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar usuário"})
		logs.LogJSON("ERROR", "User insert error", map[string]interface{}{
			"error":  err,
			"route":  route,
			"userID": result.UserID,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Usuário cadastrado 🎉",
		"user":    newUser.Public(),
	})
	logs.LogJSON("INFO", "User signed up", map[string]interface{}{
		"route":  route,
		"userID": newUser.ID,
	})
}

// Login renvoie tel quel le corps de Supabase (access_token, refresh_token, ...)
func (h *Handler) Login(c *gin.Context) {
	var input credentials
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requisição inválida"})
		return
	}

	status, body, err := h.provider.Login(strings.TrimSpace(input.Email), input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro de conexão com Supabase"})
		logs.LogJSON("ERROR", "Supabase login error", map[string]interface{}{
			"error": err,
			"route": c.FullPath(),
		})
		return
	}

	c.Data(status, "application/json", body)
}
