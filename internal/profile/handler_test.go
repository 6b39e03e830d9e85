package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thunderstudio021/fitly/internal/session"
	"github.com/thunderstudio021/fitly/internal/storage"
	"github.com/thunderstudio021/fitly/internal/user"
)

type fakeUpdater struct {
	saved       *user.User
	passwords   []string
	logouts     int
	saveErr     error
	passwordErr error
}

func (f *fakeUpdater) SaveUser(u *user.User) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	saved := *u
	f.saved = &saved
	return nil
}

func (f *fakeUpdater) UpdatePassword(_, password string) error {
	f.passwords = append(f.passwords, password)
	return f.passwordErr
}

func (f *fakeUpdater) Logout(string) error {
	f.logouts++
	return nil
}

func newRouter(h *Handler, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
			c.Set("access_token", "token-123")
		}
		c.Next()
	})
	r.Use(session.Load(func(id string) (*user.User, error) {
		return &user.User{ID: id, Email: "ana@fitly.test", FullName: "Ana", Role: user.RoleUser}, nil
	}))
	r.GET("/me", h.GetMe)
	r.PATCH("/me", h.UpdateMe)
	r.POST("/logout", h.Logout)
	return r
}

func patch(t *testing.T, r *gin.Engine, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPatch, "/me", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpdateMePasswordMismatchBlocksUpdate(t *testing.T) {
	updater := &fakeUpdater{}
	r := newRouter(newHandlerWith(updater), "user-1")

	w := patch(t, r, map[string]interface{}{
		"full_name":       "Ana Souza",
		"nova_senha":      "segredo1",
		"confirmar_senha": "segredo2",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "password_mismatch")
	assert.Contains(t, w.Body.String(), "As senhas não coincidem")
	assert.Nil(t, updater.saved)
	assert.Empty(t, updater.passwords)
}

func TestUpdateMe(t *testing.T) {
	tests := []struct {
		name              string
		body              map[string]interface{}
		updater           *fakeUpdater
		expectedStatus    int
		expectedBody      string
		expectedName      string
		expectedPasswords int
	}{
		{
			name:           "Name updated, email untouched",
			body:           map[string]interface{}{"full_name": "Ana Souza", "email": "outra@fitly.test"},
			updater:        &fakeUpdater{},
			expectedStatus: http.StatusOK,
			expectedName:   "Ana Souza",
		},
		{
			name:              "Password changed",
			body:              map[string]interface{}{"nova_senha": "segredo1", "confirmar_senha": "segredo1"},
			updater:           &fakeUpdater{},
			expectedStatus:    http.StatusOK,
			expectedName:      "Ana",
			expectedPasswords: 1,
		},
		{
			name:           "Save failure leaves the password unchanged",
			body:           map[string]interface{}{"full_name": "Ana Souza", "nova_senha": "x", "confirmar_senha": "x"},
			updater:        &fakeUpdater{saveErr: errors.New("db down")},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "Erro ao atualizar perfil",
		},
		{
			name:              "Password failure after the profile is saved",
			body:              map[string]interface{}{"full_name": "Ana Souza", "nova_senha": "x", "confirmar_senha": "x"},
			updater:           &fakeUpdater{passwordErr: errors.New("weak password")},
			expectedStatus:    http.StatusBadGateway,
			expectedBody:      "password_update_failed",
			expectedName:      "Ana Souza",
			expectedPasswords: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(newHandlerWith(tt.updater), "user-1")
			w := patch(t, r, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Len(t, tt.updater.passwords, tt.expectedPasswords)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
			if tt.expectedName == "" {
				assert.Nil(t, tt.updater.saved)
				return
			}
			require.NotNil(t, tt.updater.saved)
			assert.Equal(t, tt.expectedName, tt.updater.saved.FullName)
			assert.Equal(t, "ana@fitly.test", tt.updater.saved.Email)
		})
	}
}

type fakeProvider struct {
	uploads []string
	deletes []string
}

func (f *fakeProvider) Upload(_ context.Context, file io.Reader, filename, _, folder string) (string, error) {
	_, _ = io.ReadAll(file)
	url := "https://cdn.fitly.test/" + folder + "/" + filename
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeProvider) Delete(_ context.Context, fileURL string) error {
	f.deletes = append(f.deletes, fileURL)
	return nil
}

func TestUpdateMePhoto(t *testing.T) {
	tests := []struct {
		name            string
		updater         *fakeUpdater
		expectedStatus  int
		expectedDeletes int
	}{
		{name: "Photo saved on the profile", updater: &fakeUpdater{}, expectedStatus: http.StatusOK},
		{name: "Photo discarded when the save fails", updater: &fakeUpdater{saveErr: errors.New("db down")}, expectedStatus: http.StatusInternalServerError, expectedDeletes: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeProvider{}
			t.Cleanup(storage.SetProvider(fake))

			var body bytes.Buffer
			mw := multipart.NewWriter(&body)
			require.NoError(t, mw.WriteField("full_name", "Ana Souza"))
			part, err := mw.CreateFormFile("foto", "perfil.jpg")
			require.NoError(t, err)
			_, err = part.Write([]byte("jpeg"))
			require.NoError(t, err)
			require.NoError(t, mw.Close())

			req := httptest.NewRequest(http.MethodPatch, "/me", &body)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			w := httptest.NewRecorder()
			newRouter(newHandlerWith(tt.updater), "user-1").ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			require.Len(t, fake.uploads, 1)
			assert.Len(t, fake.deletes, tt.expectedDeletes)
			if tt.expectedDeletes == 0 {
				require.NotNil(t, tt.updater.saved)
				assert.Equal(t, fake.uploads[0], tt.updater.saved.FotoPerfil)
			}
		})
	}
}

func TestGetMe(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(newHandlerWith(&fakeUpdater{}), "user-1").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ana@fitly.test")

	w = httptest.NewRecorder()
	newRouter(newHandlerWith(&fakeUpdater{}), "").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout(t *testing.T) {
	updater := &fakeUpdater{}
	w := httptest.NewRecorder()
	newRouter(newHandlerWith(updater), "user-1").ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logout", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, updater.logouts)
}
