package tracking

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/thunderstudio021/fitly/internal/logs"
	"github.com/thunderstudio021/fitly/internal/storage"
)

var validate = validator.New()

var (
	ErrInvalidDate   = errors.New("data inválida")
	ErrInvalidNumber = errors.New("número inválido")
)

var dateLayouts = []string{"2006-01-02", "2006-01-02T15:04:05", time.RFC3339}

type CreateEntryInput struct {
	Data          string   `json:"data" validate:"required"`
	Peso          *float64 `json:"peso" validate:"omitempty,gt=0"`
	MedidaCintura *float64 `json:"medida_cintura" validate:"omitempty,gte=0"`
	MedidaQuadril *float64 `json:"medida_quadril" validate:"omitempty,gte=0"`
	MedidaBraco   *float64 `json:"medida_braco" validate:"omitempty,gte=0"`
	MedidaCoxa    *float64 `json:"medida_coxa" validate:"omitempty,gte=0"`
	Anotacoes     *string  `json:"anotacoes" validate:"omitempty,max=2000"`
	FotoURL       *string  `json:"foto_url" validate:"omitempty,url"`
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return NormalizeDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// optionalString : une chaîne vide vaut "non renseigné"
func optionalString(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func optionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return &v, nil
}

// toEntry valide l'entrée et construit le registre de l'utilisateur
func (in CreateEntryInput) toEntry(userID string) (*Entry, error) {
	in.Anotacoes = optionalString(in.Anotacoes)
	in.FotoURL = optionalString(in.FotoURL)

	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	date, err := parseDate(in.Data)
	if err != nil {
		return nil, err
	}

	return &Entry{
		ID:            uuid.New().String(),
		UserID:        userID,
		CreatedAt:     time.Now(),
		Data:          date,
		Peso:          in.Peso,
		MedidaCintura: in.MedidaCintura,
		MedidaQuadril: in.MedidaQuadril,
		MedidaBraco:   in.MedidaBraco,
		MedidaCoxa:    in.MedidaCoxa,
		Anotacoes:     in.Anotacoes,
		FotoURL:       in.FotoURL,
	}, nil
}

// bindMultipart lit le formulaire et envoie la photo de progrès si présente.
// L'URL envoyée est renvoyée pour pouvoir la supprimer si le registre n'est pas créé.
func bindMultipart(c *gin.Context) (CreateEntryInput, string, error) {
	in := CreateEntryInput{Data: c.PostForm("data")}

	numeric := map[string]**float64{
		"peso":           &in.Peso,
		"medida_cintura": &in.MedidaCintura,
		"medida_quadril": &in.MedidaQuadril,
		"medida_braco":   &in.MedidaBraco,
		"medida_coxa":    &in.MedidaCoxa,
	}
	for key, dst := range numeric {
		v, err := optionalFloat(c.PostForm(key))
		if err != nil {
			return in, "", fmt.Errorf("%s: %w", key, err)
		}
		*dst = v
	}

	notes := c.PostForm("anotacoes")
	in.Anotacoes = &notes
	photoURL := c.PostForm("foto_url")
	in.FotoURL = &photoURL

	file, header, err := c.Request.FormFile("foto")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return in, "", nil
		}
		return in, "", err
	}
	defer file.Close()

	url, err := storage.SaveMultipart(c, file, header, storage.KindImage, "acompanhamento")
	if err != nil {
		return in, "", err
	}
	in.FotoURL = &url
	return in, url, nil
}

// ListEntries GET /api/tracking : registres + progrès dérivé
func ListEntries(c *gin.Context) {
	userID := c.GetString("user_id")

	entries, err := ListByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao carregar os registros"})
		logs.LogJSON("ERROR", "Tracking list error", map[string]interface{}{
			"error":  err.Error(),
			"route":  c.FullPath(),
			"userID": userID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries":  entries,
		"progress": ComputeProgress(entries),
	})
}

// GetProgress GET /api/tracking/progress
func GetProgress(c *gin.Context) {
	userID := c.GetString("user_id")

	entries, err := ListByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao calcular o progresso"})
		logs.LogJSON("ERROR", "Tracking progress error", map[string]interface{}{
			"error":  err.Error(),
			"route":  c.FullPath(),
			"userID": userID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": ComputeProgress(entries)})
}

// CreateEntry POST /api/tracking (JSON ou multipart avec "foto")
func CreateEntry(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")

	var (
		input    CreateEntryInput
		uploaded string
		err      error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		input, uploaded, err = bindMultipart(c)
	} else {
		err = c.ShouldBindJSON(&input)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requisição inválida"})
		logs.LogJSON("WARN", "Tracking input rejected", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	entry, err := input.toEntry(userID)
	if err != nil {
		storage.Discard(c.Request.Context(), uploaded)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados do registro inválidos", "details": err.Error()})
		return
	}

	if err := Create(entry); err != nil {
		storage.Discard(c.Request.Context(), uploaded)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao salvar registro"})
		logs.LogJSON("ERROR", "Tracking entry creation error", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"entry": entry})
	logs.LogJSON("INFO", "Tracking entry created", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"extra":  entry.ID,
	})
}
