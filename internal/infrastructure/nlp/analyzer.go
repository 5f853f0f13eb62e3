package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/vigiamx/mediawatch/internal/config"
	"github.com/vigiamx/mediawatch/internal/domain"
	"github.com/vigiamx/mediawatch/internal/ports"
)

const (
	externalInputLimit   = 4000
	externalSummaryLimit = 1000
	maxTopics            = 10
)

const systemPrompt = "Eres un analista de noticias políticas en español. " +
	"Analiza el texto recibido y responde únicamente con un objeto JSON con las llaves " +
	`"sentiment" (-1, 0 o 1), "topics" (lista de máximo 10 temas) y "summary" ` +
	"(resumen breve en 2-3 frases). Sin texto fuera del JSON."

// Analyzer produces sentiment/topics/summary for a piece of text. When an API
// key is configured it calls the external model and coerces the reply into a
// typed Analysis; on any failure, or with no key at all, it falls back to the
// deterministic keyword heuristic. Analyze never fails.
type Analyzer struct {
	client  *openai.Client
	model   string
	enabled bool
	logger  *slog.Logger
}

var _ ports.Analyzer = (*Analyzer)(nil)

// New builds the analyzer from configuration.
func New(cfg config.OpenAIConfig, logger *slog.Logger) *Analyzer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	// A stalled endpoint must fall back to the heuristic, not hang the batch.
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout()}

	return &Analyzer{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		enabled: cfg.APIKey != "",
		logger:  logger,
	}
}

// Analyze returns a well-formed Analysis for the given text.
func (a *Analyzer) Analyze(ctx context.Context, text string) domain.Analysis {
	if !a.enabled {
		return heuristicAnalysis(text)
	}

	analysis, err := a.analyzeExternal(ctx, text)
	if err != nil {
		a.warn("external analysis failed, using heuristic", "error", err)
		return heuristicAnalysis(text)
	}

	return analysis
}

func (a *Analyzer) analyzeExternal(ctx context.Context, text string) (domain.Analysis, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: truncateRunes(text, externalInputLimit)},
		},
		MaxTokens:   512,
		Temperature: 0.2,
	})
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.Analysis{}, fmt.Errorf("completion returned no choices")
	}

	return parseAnalysis(resp.Choices[0].Message.Content)
}

// parseAnalysis decodes the model reply and coerces it into the Analysis
// shape. A reply that is not a JSON object at all is an error (the caller
// falls back); individual malformed fields are coerced, not rejected.
func parseAnalysis(content string) (domain.Analysis, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(extractJSONObject(content)), &raw); err != nil {
		return domain.Analysis{}, fmt.Errorf("decode analysis reply: %w", err)
	}

	analysis := domain.Analysis{}

	if value, ok := raw["sentiment"].(float64); ok {
		analysis.Sentiment = clampSentiment(value)
	}

	if list, ok := raw["topics"].([]any); ok {
		for _, entry := range list {
			topic, ok := entry.(string)
			if !ok {
				continue
			}
			analysis.Topics = append(analysis.Topics, topic)
			if len(analysis.Topics) == maxTopics {
				break
			}
		}
	}

	if summary, ok := raw["summary"].(string); ok {
		analysis.Summary = truncateRunes(summary, externalSummaryLimit)
	}

	return analysis, nil
}

// clampSentiment coerces any numeric score into the three-way label.
func clampSentiment(value float64) domain.Sentiment {
	rounded := math.Round(value)
	if rounded > 1 {
		return domain.SentimentPositive
	}
	if rounded < -1 {
		return domain.SentimentNegative
	}
	return domain.Sentiment(int(rounded))
}

// extractJSONObject trims surrounding prose or markdown fences the model may
// wrap around the object.
func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return content
	}
	return content[start : end+1]
}

func (a *Analyzer) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
