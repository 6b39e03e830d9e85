package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

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

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/stats", GetDashboardStats)
	r.GET("/charts/:type", GetChartData)
	return r
}

func TestGetDashboardStats(t *testing.T) {
	mock := setupMockDB(t)

	for _, table := range []string{"users", "videos", "acompanhamentos", "conversations", "conversation_messages"} {
		mock.ExpectQuery(`SELECT count\(\*\) FROM "` + table + `"$`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "` + table + `" WHERE created_at >= \$1 AND created_at < \$2`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	}

	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats?start_date=2024-01-01&end_date=2024-01-31", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Stats map[string]interface{} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(10), resp.Stats["total_tracking_entries"])
	assert.Equal(t, float64(2), resp.Stats["new_messages"])
	assert.Equal(t, map[string]interface{}{"start": "2024-01-01", "end": "2024-01-31"}, resp.Stats["date_range"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetChartData(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setup          func(mock sqlmock.Sqlmock)
		expectedStatus int
		expectedPoints int
	}{
		{
			name: "Evolution over two days",
			path: "/charts/evolution?start_date=2024-01-01&end_date=2024-01-02",
			setup: func(mock sqlmock.Sqlmock) {
				// 2 jours x 4 tables (les vidéos ne font pas partie de l'évolution)
				for i := 0; i < 8; i++ {
					mock.ExpectQuery(`SELECT count\(\*\)`).
						WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
				}
			},
			expectedStatus: http.StatusOK,
			expectedPoints: 2,
		},
		{
			name: "Distribution by category",
			path: "/charts/distribution",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT category, COUNT\(\*\) AS total FROM "videos"`).
					WillReturnRows(sqlmock.NewRows([]string{"category", "total"}).
						AddRow("yoga", 4).
						AddRow("cardio", 1))
			},
			expectedStatus: http.StatusOK,
			expectedPoints: 6,
		},
		{
			name:           "Unknown chart",
			path:           "/charts/pie",
			setup:          func(sqlmock.Sqlmock) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid date",
			path:           "/charts/evolution?start_date=01-01-2024",
			setup:          func(sqlmock.Sqlmock) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Inverted range",
			path:           "/charts/evolution?start_date=2024-02-01&end_date=2024-01-01",
			setup:          func(sqlmock.Sqlmock) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := setupMockDB(t)
			tt.setup(mock)

			w := httptest.NewRecorder()
			newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp struct {
				Data []map[string]interface{} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Len(t, resp.Data, tt.expectedPoints)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
