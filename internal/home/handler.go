// Package home sert le contenu de la page d'accueil et la navigation commune.
package home

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thunderstudio021/fitly/internal/session"
)

type Feature struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Page        string `json:"page"`
}

type CallToAction struct {
	Label string `json:"label"`
	Page  string `json:"page"`
}

type MenuItem struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Path  string `json:"path"`
}

var Features = []Feature{
	{
		Icon:        "video",
		Title:       "Vídeos Interativos",
		Description: "Exercícios simples para fazer em casa, no seu tempo. Sem equipamentos, sem complicação.",
		Page:        "Videos",
	},
	{
		Icon:        "salad",
		Title:       "Assistente de Nutrição",
		Description: "Sugestões de refeições práticas e saudáveis com ajuda de inteligência artificial.",
		Page:        "AssistenteNutricao",
	},
	{
		Icon:        "calendar-check",
		Title:       "Acompanhamento Leve",
		Description: "Registre sua rotina de forma simples. Sem cobranças, apenas organização.",
		Page:        "MeuAcompanhamento",
	},
}

var CallsToAction = []CallToAction{
	{Label: "Fazer exercícios com vídeos imersivos", Page: "Videos"},
	{Label: "Conversar com a assistente", Page: "AssistenteNutricao"},
}

var Menu = []MenuItem{
	{Name: "Home", Label: "Home", Icon: "home", Path: "/Home"},
	{Name: "Videos", Label: "Videos", Icon: "video", Path: "/Videos"},
	{Name: "AssistenteNutricao", Label: "Nutrição", Icon: "salad", Path: "/AssistenteNutricao"},
	{Name: "MeuAcompanhamento", Label: "Acompanhamento", Icon: "file-text", Path: "/MeuAcompanhamento"},
}

// GetHome GET /api/home
func GetHome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"headline": "Cuidar de você pode ser mais simples do que parece.",
		"subtitle": "Converse com uma assistente de nutrição por IA, receba receitas simples e se movimente em casa com vídeos interativos feitos para copiar, não para complicar.",
		"features": Features,
		"actions":  CallsToAction,
	})
}

// GetShell GET /api/shell : menu + résumé de l'utilisateur courant (null si anonyme)
func GetShell(c *gin.Context) {
	s := session.Current(c)

	var current interface{}
	if !s.Anonymous() {
		current = gin.H{
			"id":          s.User.ID,
			"full_name":   s.User.FullName,
			"foto_perfil": s.User.FotoPerfil,
			"is_admin":    s.IsAdmin(),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"menu": Menu,
		"user": current,
	})
}
