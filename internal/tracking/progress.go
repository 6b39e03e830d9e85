package tracking

import (
	"fmt"
	"math"
)

const (
	TrendLost       = "lost"
	TrendGained     = "gained"
	TrendMaintained = "maintained"
)

var Tips = []string{
	"Use os vídeos interativos diariamente para manter a constância",
	"Converse com a Assistente de Nutrição para sugestões de refeições práticas",
	"Registre seu progresso regularmente, mesmo nos dias mais difíceis",
}

type Progress struct {
	Visible       bool     `json:"visible"`
	TotalEntries  int      `json:"total_entries"`
	InitialWeight float64  `json:"initial_weight,omitempty"`
	CurrentWeight float64  `json:"current_weight,omitempty"`
	Delta         float64  `json:"delta"`
	Trend         string   `json:"trend,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	Tips          []string `json:"tips,omitempty"`
}

// ComputeProgress attend les registres du plus récent au plus ancien.
// Les registres sans poids comptent dans le total mais pas dans l'écart.
func ComputeProgress(entries []Entry) Progress {
	p := Progress{TotalEntries: len(entries)}

	var weights []float64
	for _, e := range entries {
		if e.Peso != nil {
			weights = append(weights, *e.Peso)
		}
	}
	if len(weights) == 0 {
		return p
	}

	p.Visible = true
	p.CurrentWeight = weights[0]
	p.InitialWeight = weights[len(weights)-1]
	p.Delta = round1(p.InitialWeight - p.CurrentWeight)
	p.Tips = Tips

	switch {
	case p.Delta > 0:
		p.Trend = TrendLost
		p.Summary = fmt.Sprintf("lost %.1f kg", p.Delta)
	case p.Delta < 0:
		p.Trend = TrendGained
		p.Summary = fmt.Sprintf("gained %.1f kg", -p.Delta)
	default:
		p.Trend = TrendMaintained
		p.Summary = TrendMaintained
	}
	return p
}

// round1 arrondit au dixième
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
