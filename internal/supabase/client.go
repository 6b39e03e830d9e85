// Package supabase regroupe les appels à Supabase Auth (inscription, connexion,
// déconnexion, changement de mot de passe).
package supabase

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrAuth = errors.New("erreur Supabase Auth")

// AuthError porte le statut et le corps renvoyés par Supabase
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("supabase auth: statut %d: %s", e.StatusCode, e.Body)
}

func (e *AuthError) Unwrap() error {
	return ErrAuth
}

type Client struct {
	http *resty.Client
}

func New(baseURL, anonKey string) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15*time.Second).
		SetHeader("apikey", anonKey).
		SetHeader("Content-Type", "application/json")

	return &Client{http: client}
}

type SignupResult struct {
	UserID string
}

// Signup crée le compte dans Supabase Auth et renvoie l'id généré
func (c *Client) Signup(email, password string) (*SignupResult, error) {
	var authResp struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}

	resp, err := c.http.R().
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&authResp).
		Post("/auth/v1/signup")
	if err != nil {
		return nil, fmt.Errorf("appel signup: %w", err)
	}
	if resp.IsError() {
		return nil, &AuthError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	if authResp.User.ID == "" {
		return nil, fmt.Errorf("aucun ID utilisateur renvoyé: %w", ErrAuth)
	}

	return &SignupResult{UserID: authResp.User.ID}, nil
}

// Login renvoie le corps brut de Supabase (access_token, refresh_token, ...)
func (c *Client) Login(email, password string) (int, []byte, error) {
	resp, err := c.http.R().
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		Post("/auth/v1/token")
	if err != nil {
		return 0, nil, fmt.Errorf("appel login: %w", err)
	}
	return resp.StatusCode(), resp.Body(), nil
}

func (c *Client) Logout(accessToken string) error {
	resp, err := c.http.R().
		SetAuthToken(accessToken).
		Post("/auth/v1/logout")
	if err != nil {
		return fmt.Errorf("appel logout: %w", err)
	}
	// 401 : session déjà invalide, rien à faire
	if resp.IsError() && resp.StatusCode() != http.StatusUnauthorized {
		return &AuthError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}

// UpdatePassword change le mot de passe de l'utilisateur porteur du token
func (c *Client) UpdatePassword(accessToken, password string) error {
	resp, err := c.http.R().
		SetAuthToken(accessToken).
		SetBody(map[string]string{"password": password}).
		Put("/auth/v1/user")
	if err != nil {
		return fmt.Errorf("appel update user: %w", err)
	}
	if resp.IsError() {
		return &AuthError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}
