package admin

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thunderstudio021/fitly/internal/database"
	"github.com/thunderstudio021/fitly/internal/logs"
	"github.com/thunderstudio021/fitly/internal/video"
)

const dateLayout = "2006-01-02"

// Tables comptées par le tableau de bord
var countedTables = []struct {
	key   string
	table string
}{
	{"users", "users"},
	{"videos", "videos"},
	{"tracking_entries", "acompanhamentos"},
	{"conversations", "conversations"},
	{"messages", "conversation_messages"},
}

var categoryColors = map[video.Category]string{
	video.CategoryStretch:  "#10B981",
	video.CategoryCardio:   "#EF4444",
	video.CategoryStrength: "#F59E0B",
	video.CategoryYoga:     "#8B5CF6",
	video.CategoryDance:    "#EC4899",
	video.CategoryOther:    "#6B7280",
}

// parseRange lit start_date/end_date (30 derniers jours par défaut).
// La fin est exclusive : end_date est inclus en entier.
func parseRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -30)
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if s := c.Query("start_date"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return start, end, fmt.Errorf("start_date: %w", err)
		}
		start = t
	}
	if s := c.Query("end_date"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return start, end, fmt.Errorf("end_date: %w", err)
		}
		end = t
	}
	if end.Before(start) {
		return start, end, fmt.Errorf("end_date antérieure à start_date")
	}
	return start, end.AddDate(0, 0, 1), nil
}

func countBetween(table string, start, end time.Time) (int64, error) {
	var count int64
	err := database.DB.Table(table).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, err
}

// GetDashboardStats GET /api/admin/stats
func GetDashboardStats(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")

	startDate, endDate, err := parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Formato de data inválido"})
		return
	}

	stats := gin.H{}
	for _, t := range countedTables {
		var total int64
		if err := database.DB.Table(t.table).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao calcular estatísticas"})
			logs.LogJSON("ERROR", "Admin stats error", map[string]interface{}{
				"error":  err.Error(),
				"route":  route,
				"userID": userID,
				"extra":  t.table,
			})
			return
		}
		inRange, err := countBetween(t.table, startDate, endDate)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao calcular estatísticas"})
			logs.LogJSON("ERROR", "Admin stats error", map[string]interface{}{
				"error":  err.Error(),
				"route":  route,
				"userID": userID,
				"extra":  t.table,
			})
			return
		}
		stats["total_"+t.key] = total
		stats["new_"+t.key] = inRange
	}
	stats["date_range"] = gin.H{
		"start": startDate.Format(dateLayout),
		"end":   endDate.AddDate(0, 0, -1).Format(dateLayout),
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
	logs.LogJSON("INFO", "Admin stats retrieved successfully", map[string]interface{}{
		"route":  route,
		"userID": userID,
	})
}

// GetChartData GET /api/admin/charts/:type
func GetChartData(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")
	chartType := c.Param("type")

	startDate, endDate, err := parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Formato de data inválido"})
		return
	}

	var data []gin.H
	switch chartType {
	case "evolution":
		data, err = getEvolutionData(startDate, endDate)
	case "distribution":
		data, err = getDistributionData(startDate, endDate)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tipo de gráfico não suportado"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao carregar o gráfico"})
		logs.LogJSON("ERROR", "Chart data error", map[string]interface{}{
			"error":     err.Error(),
			"route":     route,
			"userID":    userID,
			"chartType": chartType,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": data})
	logs.LogJSON("INFO", "Chart data retrieved successfully", map[string]interface{}{
		"route":     route,
		"userID":    userID,
		"chartType": chartType,
		"startDate": startDate.Format(dateLayout),
		"endDate":   endDate.Format(dateLayout),
	})
}

// getEvolutionData compte les créations jour par jour sur [start, end)
func getEvolutionData(start, end time.Time) ([]gin.H, error) {
	results := []gin.H{}

	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		point := gin.H{"date": d.Format(dateLayout)}
		for _, t := range countedTables {
			if t.table == "videos" {
				continue
			}
			count, err := countBetween(t.table, d, d.AddDate(0, 0, 1))
			if err != nil {
				return nil, err
			}
			point[t.key] = count
		}
		results = append(results, point)
	}

	return results, nil
}

// getDistributionData répartit les vidéos publiées par catégorie
func getDistributionData(start, end time.Time) ([]gin.H, error) {
	var rows []struct {
		Category video.Category
		Total    int64
	}
	err := database.DB.Model(&video.Video{}).
		Select("category, COUNT(*) AS total").
		Where("created_at >= ? AND created_at < ?", start, end).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[video.Category]int64, len(rows))
	for _, r := range rows {
		totals[r.Category] += r.Total
	}

	results := []gin.H{}
	for _, cat := range []video.Category{
		video.CategoryStretch, video.CategoryCardio, video.CategoryStrength,
		video.CategoryYoga, video.CategoryDance, video.CategoryOther,
	} {
		results = append(results, gin.H{
			"name":  cat.Label(),
			"value": totals[cat],
			"color": categoryColors[cat],
		})
	}
	return results, nil
}

// GetTopUsers GET /api/admin/top-users : utilisateurs les plus assidus du journal
func GetTopUsers(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")

	limit := 10
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	var topByEntries []struct {
		UserID     string `json:"user_id"`
		FullName   string `json:"full_name"`
		EntryCount int64  `json:"entry_count"`
	}
	err := database.DB.Table("acompanhamentos").
		Select("acompanhamentos.user_id, users.full_name, COUNT(acompanhamentos.id) as entry_count").
		Joins("LEFT JOIN users ON acompanhamentos.user_id = users.id").
		Group("acompanhamentos.user_id, users.full_name").
		Order("entry_count DESC").
		Limit(limit).
		Scan(&topByEntries).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao carregar ranking"})
		logs.LogJSON("ERROR", "Top users error", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	var topByMessages []struct {
		UserID       string `json:"user_id"`
		FullName     string `json:"full_name"`
		MessageCount int64  `json:"message_count"`
	}
	err = database.DB.Table("conversation_messages").
		Select("conversations.created_by as user_id, users.full_name, COUNT(conversation_messages.id) as message_count").
		Joins("JOIN conversations ON conversation_messages.conversation_id = conversations.id").
		Joins("LEFT JOIN users ON conversations.created_by = users.id").
		Where("conversation_messages.role = ?", "user").
		Group("conversations.created_by, users.full_name").
		Order("message_count DESC").
		Limit(limit).
		Scan(&topByMessages).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao carregar ranking"})
		logs.LogJSON("ERROR", "Top users error", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"top_by_entries":  topByEntries,
		"top_by_messages": topByMessages,
	})

	logs.LogJSON("INFO", "Top users retrieved successfully", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"limit":  limit,
	})
}
