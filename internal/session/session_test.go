package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/thunderstudio021/fitly/internal/user"
)

func TestLoad(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name            string
		userID          string
		find            Finder
		expectedAnon    bool
		expectedAdmin   bool
		expectedLookups int
	}{
		{
			name:            "No token gives anonymous session",
			userID:          "",
			expectedAnon:    true,
			expectedLookups: 0,
		},
		{
			name:   "Admin user",
			userID: "admin-id",
			find: func(id string) (*user.User, error) {
				return &user.User{ID: id, Role: user.RoleAdmin}, nil
			},
			expectedAdmin:   true,
			expectedLookups: 1,
		},
		{
			name:   "Lookup failure is treated as no user",
			userID: "broken-id",
			find: func(id string) (*user.User, error) {
				return nil, errors.New("db down")
			},
			expectedAnon:    true,
			expectedLookups: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookups := 0
			find := func(id string) (*user.User, error) {
				lookups++
				return tt.find(id)
			}

			r := gin.New()
			r.Use(func(c *gin.Context) {
				if tt.userID != "" {
					c.Set("user_id", tt.userID)
				}
				c.Next()
			})
			r.Use(Load(find))

			var got *Session
			// Deux lectures dans la même requête : une seule résolution
			r.GET("/", func(c *gin.Context) {
				_ = Current(c)
				got = Current(c)
				c.Status(http.StatusNoContent)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, tt.expectedAnon, got.Anonymous())
			assert.Equal(t, tt.expectedAdmin, got.IsAdmin())
			assert.Equal(t, tt.expectedLookups, lookups)
		})
	}
}

func TestCurrentWithoutLoad(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	s := Current(c)
	assert.True(t, s.Anonymous())
	assert.False(t, s.IsAdmin())
	assert.Equal(t, "", s.UserID())
}
