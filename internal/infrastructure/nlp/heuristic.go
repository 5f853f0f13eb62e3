package nlp

import (
	"strings"

	"github.com/vigiamx/mediawatch/internal/domain"
)

const heuristicSummaryLimit = 280

// Fixed vocabulary for the deterministic fallback. The lists cover the
// political-news phrasing the feeds actually use, with unaccented variants
// because headlines are not consistent about diacritics.
var positiveKeywords = []string{
	"avanza",
	"logra",
	"inaugura",
	"impulsa",
	"mejora",
	"beneficio",
	"apoyo",
	"acuerdo",
	"inversión",
	"inversion",
	"crecimiento",
	"éxito",
	"exito",
	"fortalece",
	"reconocimiento",
	"entrega",
	"gana",
}

var negativeKeywords = []string{
	"crisis",
	"violencia",
	"corrupción",
	"corrupcion",
	"escándalo",
	"escandalo",
	"fraude",
	"denuncia",
	"acusa",
	"acusación",
	"acusacion",
	"renuncia",
	"protesta",
	"inseguridad",
	"balacera",
	"desvío",
	"desvio",
	"detenido",
}

// heuristicAnalysis is the deterministic tier: sentiment by keyword majority,
// no topics, summary clipped to the first 280 characters.
func heuristicAnalysis(text string) domain.Analysis {
	lowered := strings.ToLower(text)

	var positive, negative int
	for _, keyword := range positiveKeywords {
		if strings.Contains(lowered, keyword) {
			positive++
		}
	}
	for _, keyword := range negativeKeywords {
		if strings.Contains(lowered, keyword) {
			negative++
		}
	}

	sentiment := domain.SentimentNeutral
	switch {
	case positive > negative:
		sentiment = domain.SentimentPositive
	case negative > positive:
		sentiment = domain.SentimentNegative
	}

	return domain.Analysis{
		Sentiment: sentiment,
		Summary:   truncateRunes(text, heuristicSummaryLimit),
	}
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
