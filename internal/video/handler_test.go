package video

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/thunderstudio021/fitly/internal/database"
)

func setupMockDB(t *testing.T) sqlmock.Sqlmock {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:                 mockDB,
		DriverName:           "postgres",
		PreferSimpleProtocol: true,
	})
	db, err := gorm.Open(dialector, &gorm.Config{})
	require.NoError(t, err)

	originalDB := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = originalDB })

	return mock
}

func TestCreateVideoInput(t *testing.T) {
	tests := []struct {
		name          string
		input         CreateVideoInput
		expectedType  string
		expectedError bool
	}{
		{
			name:         "Youtube video",
			input:        CreateVideoInput{Title: "Alongamento Matinal", Type: TypeYouTube, YoutubeURL: "https://youtu.be/ABC123", Category: CategoryStretch},
			expectedType: TypeYouTube,
		},
		{
			name:         "Uploaded video defaults category",
			input:        CreateVideoInput{Title: "Cardio", Type: TypeUpload, VideoURL: "https://cdn.fitly.test/videos/a.mp4"},
			expectedType: TypeUpload,
		},
		{
			name:          "Youtube without link",
			input:         CreateVideoInput{Title: "X", Type: TypeYouTube},
			expectedError: true,
		},
		{
			name:          "Upload without file",
			input:         CreateVideoInput{Title: "X", Type: TypeUpload},
			expectedError: true,
		},
		{
			name:          "Missing title",
			input:         CreateVideoInput{Title: "   ", Type: TypeYouTube, YoutubeURL: "https://youtu.be/A"},
			expectedError: true,
		},
		{
			name:          "Unknown category",
			input:         CreateVideoInput{Title: "X", Type: TypeYouTube, YoutubeURL: "https://youtu.be/A", Category: "pilates"},
			expectedError: true,
		},
		{
			name:          "Unknown type",
			input:         CreateVideoInput{Title: "X", Type: "vimeo", YoutubeURL: "https://youtu.be/A"},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := tt.input.toVideo("admin-id")
			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedType, v.Type)
			assert.True(t, v.Category.Valid())
			assert.Equal(t, "admin-id", v.CreatedBy)
			// Une seule des deux sources est renseignée
			assert.True(t, (v.YoutubeURL == "") != (v.VideoURL == ""))
		})
	}
}

func TestListVideos(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := setupMockDB(t)

	columns := []string{"id", "created_at", "created_by", "title", "description", "duration", "category", "type", "youtube_url", "video_url", "thumbnail_url"}
	rows := sqlmock.NewRows(columns).
		AddRow("v2", time.Now(), "admin", "Yoga", "", "15 min", "yoga", "youtube", "https://youtu.be/ABC123", "", "").
		AddRow("v1", time.Now().Add(-time.Hour), "admin", "Dança", "", "", "danca", "upload", "", "https://cdn/d.mp4", "")
	mock.ExpectQuery(`SELECT`).WillReturnRows(rows)

	r := gin.New()
	r.GET("/videos", ListVideos)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/videos", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Videos []Response `json:"videos"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Videos, 2)
	assert.Equal(t, "https://img.youtube.com/vi/ABC123/maxresdefault.jpg", resp.Videos[0].Thumbnail)
	assert.Equal(t, "https://www.youtube.com/embed/ABC123?autoplay=1", resp.Videos[0].Playback.EmbedURL)
	assert.Equal(t, FallbackThumbnail, resp.Videos[1].Thumbnail)
	assert.Equal(t, "Dança", resp.Videos[1].CategoryLabel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListVideosInvalidCategory(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/videos", ListVideos)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/videos?category=pilates", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVideoNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	r := gin.New()
	r.GET("/videos/:id", GetVideo)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/videos/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateVideoRejectsInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/videos", CreateVideo)

	body, _ := json.Marshal(map[string]string{"title": "Sem fonte", "type": "youtube"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/videos", bytes.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
