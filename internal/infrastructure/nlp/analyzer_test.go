package nlp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vigiamx/mediawatch/internal/config"
	"github.com/vigiamx/mediawatch/internal/domain"
)

func TestHeuristicSentiment(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		want domain.Sentiment
	}{
		{"positive", "Olga Sosa avanza con nuevo acuerdo de inversión", domain.SentimentPositive},
		{"negative", "Crisis de violencia y protesta en el municipio", domain.SentimentNegative},
		{"neutral", "El congreso sesiona este martes", domain.SentimentNeutral},
		{"tie", "Avanza la agenda pese a la crisis", domain.SentimentNeutral},
		{"case insensitive", "AVANZA EL PROYECTO", domain.SentimentPositive},
		{"empty", "", domain.SentimentNeutral},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := heuristicAnalysis(tc.text)
			if got.Sentiment != tc.want {
				t.Fatalf("sentiment = %d, want %d", got.Sentiment, tc.want)
			}
			if len(got.Topics) != 0 {
				t.Fatalf("expected no topics, got %v", got.Topics)
			}
		})
	}
}

func TestHeuristicSummary(t *testing.T) {
	t.Parallel()

	short := "texto corto"
	if got := heuristicAnalysis(short).Summary; got != short {
		t.Fatalf("short summary = %q, want %q", got, short)
	}

	// 300 accented runes; the cut must count characters, not bytes.
	long := strings.Repeat("ó", 300)
	got := heuristicAnalysis(long).Summary
	if runes := []rune(got); len(runes) != heuristicSummaryLimit {
		t.Fatalf("summary length = %d runes, want %d", len(runes), heuristicSummaryLimit)
	}
}

func TestClampSentiment(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value float64
		want  domain.Sentiment
	}{
		{5, domain.SentimentPositive},
		{1, domain.SentimentPositive},
		{0.6, domain.SentimentPositive},
		{0.4, domain.SentimentNeutral},
		{0, domain.SentimentNeutral},
		{-0.4, domain.SentimentNeutral},
		{-0.6, domain.SentimentNegative},
		{-1, domain.SentimentNegative},
		{-12, domain.SentimentNegative},
	}

	for _, tc := range cases {
		if got := clampSentiment(tc.value); got != tc.want {
			t.Fatalf("clampSentiment(%v) = %d, want %d", tc.value, got, tc.want)
		}
	}
}

func TestParseAnalysisCoercion(t *testing.T) {
	t.Parallel()

	t.Run("fenced reply", func(t *testing.T) {
		t.Parallel()

		analysis, err := parseAnalysis("```json\n{\"sentiment\": 1, \"topics\": [\"seguridad\"], \"summary\": \"ok\"}\n```")
		if err != nil {
			t.Fatalf("parseAnalysis error: %v", err)
		}
		if analysis.Sentiment != domain.SentimentPositive || analysis.Summary != "ok" {
			t.Fatalf("unexpected analysis: %+v", analysis)
		}
	})

	t.Run("non-numeric sentiment", func(t *testing.T) {
		t.Parallel()

		analysis, err := parseAnalysis(`{"sentiment": "positivo", "topics": [], "summary": "s"}`)
		if err != nil {
			t.Fatalf("parseAnalysis error: %v", err)
		}
		if analysis.Sentiment != domain.SentimentNeutral {
			t.Fatalf("sentiment = %d, want 0", analysis.Sentiment)
		}
	})

	t.Run("topics truncated to ten", func(t *testing.T) {
		t.Parallel()

		topics := make([]string, 0, 14)
		for i := 0; i < 14; i++ {
			topics = append(topics, fmt.Sprintf("\"t%d\"", i))
		}
		analysis, err := parseAnalysis(`{"sentiment": 0, "topics": [` + strings.Join(topics, ",") + `], "summary": ""}`)
		if err != nil {
			t.Fatalf("parseAnalysis error: %v", err)
		}
		if len(analysis.Topics) != 10 {
			t.Fatalf("topics length = %d, want 10", len(analysis.Topics))
		}
		if analysis.Topics[0] != "t0" || analysis.Topics[9] != "t9" {
			t.Fatalf("topic order lost: %v", analysis.Topics)
		}
	})

	t.Run("non-array topics", func(t *testing.T) {
		t.Parallel()

		analysis, err := parseAnalysis(`{"sentiment": -1, "topics": "tema", "summary": "s"}`)
		if err != nil {
			t.Fatalf("parseAnalysis error: %v", err)
		}
		if len(analysis.Topics) != 0 {
			t.Fatalf("expected empty topics, got %v", analysis.Topics)
		}
	})

	t.Run("non-string summary", func(t *testing.T) {
		t.Parallel()

		analysis, err := parseAnalysis(`{"sentiment": 1, "topics": [], "summary": 42}`)
		if err != nil {
			t.Fatalf("parseAnalysis error: %v", err)
		}
		if analysis.Summary != "" {
			t.Fatalf("summary = %q, want empty", analysis.Summary)
		}
	})

	t.Run("not an object", func(t *testing.T) {
		t.Parallel()

		if _, err := parseAnalysis("lo siento, no puedo"); err == nil {
			t.Fatal("expected error for non-JSON reply")
		}
	})
}

func TestAnalyzeWithoutKeyUsesHeuristic(t *testing.T) {
	t.Parallel()

	analyzer := New(config.OpenAIConfig{}, nil)
	got := analyzer.Analyze(context.Background(), "el alcalde avanza con la obra")
	if got.Sentiment != domain.SentimentPositive {
		t.Fatalf("sentiment = %d, want 1", got.Sentiment)
	}
}

func TestAnalyzeExternal(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{
			"id": "cmpl-1",
			"object": "chat.completion",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "{\"sentiment\": -1, \"topics\": [\"inseguridad\"], \"summary\": \"Nota crítica.\"}"},
				"finish_reason": "stop"
			}]
		}`)
	}))
	defer server.Close()

	analyzer := New(config.OpenAIConfig{APIKey: "test", Model: "gpt-4o-mini", BaseURL: server.URL + "/v1"}, nil)

	got := analyzer.Analyze(context.Background(), "texto de prueba")
	if got.Sentiment != domain.SentimentNegative {
		t.Fatalf("sentiment = %d, want -1", got.Sentiment)
	}
	if len(got.Topics) != 1 || got.Topics[0] != "inseguridad" {
		t.Fatalf("unexpected topics: %v", got.Topics)
	}
	if got.Summary != "Nota crítica." {
		t.Fatalf("unexpected summary: %q", got.Summary)
	}
}

func TestAnalyzeFailsOpen(t *testing.T) {
	t.Parallel()

	t.Run("call failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream down", http.StatusInternalServerError)
		}))
		defer server.Close()

		analyzer := New(config.OpenAIConfig{APIKey: "test", Model: "gpt-4o-mini", BaseURL: server.URL + "/v1"}, nil)

		got := analyzer.Analyze(context.Background(), "la denuncia por fraude crece")
		if got.Sentiment != domain.SentimentNegative {
			t.Fatalf("fallback sentiment = %d, want -1", got.Sentiment)
		}
	})

	t.Run("stalled endpoint", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		analyzer := New(config.OpenAIConfig{
			APIKey:         "test",
			Model:          "gpt-4o-mini",
			BaseURL:        server.URL + "/v1",
			TimeoutSeconds: 1,
		}, nil)

		start := time.Now()
		got := analyzer.Analyze(context.Background(), "la denuncia por fraude crece")
		if elapsed := time.Since(start); elapsed > 5*time.Second {
			t.Fatalf("Analyze blocked for %v on a stalled endpoint", elapsed)
		}
		if got.Sentiment != domain.SentimentNegative {
			t.Fatalf("fallback sentiment = %d, want -1", got.Sentiment)
		}
	})

	t.Run("unparsable reply", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprint(w, `{
				"id": "cmpl-2",
				"object": "chat.completion",
				"choices": [{
					"index": 0,
					"message": {"role": "assistant", "content": "ningún JSON aquí"},
					"finish_reason": "stop"
				}]
			}`)
		}))
		defer server.Close()

		analyzer := New(config.OpenAIConfig{APIKey: "test", Model: "gpt-4o-mini", BaseURL: server.URL + "/v1"}, nil)

		got := analyzer.Analyze(context.Background(), "el gobernador avanza en el ranking")
		if got.Sentiment != domain.SentimentPositive {
			t.Fatalf("fallback sentiment = %d, want 1", got.Sentiment)
		}
		if len(got.Topics) != 0 {
			t.Fatalf("fallback topics should be empty, got %v", got.Topics)
		}
	})
}
