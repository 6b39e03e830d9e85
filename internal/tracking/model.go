package tracking

import (
	"time"
)

// Entry est un registre du journal "Meu Acompanhamento"
type Entry struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	UserID        string    `gorm:"index;not null" json:"user_id"`
	CreatedAt     time.Time `json:"created_date"`
	Data          time.Time `gorm:"index;not null" json:"data"`
	Peso          *float64  `json:"peso,omitempty"`
	MedidaCintura *float64  `json:"medida_cintura,omitempty"`
	MedidaQuadril *float64  `json:"medida_quadril,omitempty"`
	MedidaBraco   *float64  `json:"medida_braco,omitempty"`
	MedidaCoxa    *float64  `json:"medida_coxa,omitempty"`
	Anotacoes     *string   `json:"anotacoes,omitempty"`
	FotoURL       *string   `json:"foto_url,omitempty"`
}

func (Entry) TableName() string {
	return "acompanhamentos"
}

// RecordedFields liste les colonnes renseignées, les champs optionnels absents n'en font pas partie
func (e Entry) RecordedFields() []string {
	fields := []string{"id", "user_id", "created_at", "data"}

	optional := []struct {
		column string
		set    bool
	}{
		{"peso", e.Peso != nil},
		{"medida_cintura", e.MedidaCintura != nil},
		{"medida_quadril", e.MedidaQuadril != nil},
		{"medida_braco", e.MedidaBraco != nil},
		{"medida_coxa", e.MedidaCoxa != nil},
		{"anotacoes", e.Anotacoes != nil},
		{"foto_url", e.FotoURL != nil},
	}
	for _, o := range optional {
		if o.set {
			fields = append(fields, o.column)
		}
	}
	return fields
}

// NormalizeDate place la date à midi UTC pour éviter les décalages de fuseau
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}
