package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vigiamx/mediawatch/internal/domain"
	"github.com/vigiamx/mediawatch/internal/ports"
	"github.com/vigiamx/mediawatch/internal/usecase"
)

const maxLinkBatch = 50

// Ingestor is the slice of the enrichment orchestrator the handlers trigger.
type Ingestor interface {
	IngestNews(ctx context.Context, campaign domain.Campaign) (usecase.NewsReport, error)
	IngestLinks(ctx context.Context, campaign domain.Campaign, urls []string) []usecase.LinkResult
}

// Handler exposes the trigger surface over HTTP.
type Handler struct {
	campaigns ports.CampaignRepository
	articles  ports.ArticleRepository
	links     ports.SocialLinkRepository
	ingestor  Ingestor
	logger    *slog.Logger
}

// NewHandler wires the repositories and the orchestrator.
func NewHandler(
	campaigns ports.CampaignRepository,
	articles ports.ArticleRepository,
	links ports.SocialLinkRepository,
	ingestor Ingestor,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		campaigns: campaigns,
		articles:  articles,
		links:     links,
		ingestor:  ingestor,
		logger:    logger,
	}
}

// Router builds the chi route tree.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Route("/campaigns", func(r chi.Router) {
		r.Get("/", h.listCampaigns)
		r.Post("/", h.createCampaign)
		r.Route("/{campaignID}", func(r chi.Router) {
			r.Get("/", h.getCampaign)
			r.Delete("/", h.deleteCampaign)
			r.Post("/refresh", h.refreshCampaign)
			r.Post("/links", h.addLinks)
			r.Get("/articles", h.listArticles)
			r.Get("/links", h.listLinks)
		})
	})

	return r
}

type createCampaignRequest struct {
	Name       string `json:"name"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
	WindowDays int    `json:"window_days"`
	Lang       string `json:"lang"`
	Country    string `json:"country"`
}

func (h *Handler) createCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	campaign := domain.Campaign{
		Name:       req.Name,
		Query:      req.Query,
		MaxResults: req.MaxResults,
		WindowDays: req.WindowDays,
		Lang:       req.Lang,
		Country:    req.Country,
	}
	if err := campaign.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.campaigns.Create(r.Context(), campaign)
	if err != nil {
		h.serverError(w, "create campaign", err)
		return
	}

	// Campaign creation triggers the news path. A feed failure does not undo
	// the creation; it just yields an empty first report.
	report, err := h.ingestor.IngestNews(r.Context(), created)
	if err != nil {
		h.logger.Warn("initial ingestion failed", "campaign_id", created.ID, "error", err)
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"campaign": toCampaignJSON(created),
		"news":     report,
	})
}

func (h *Handler) listCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.campaigns.List(r.Context())
	if err != nil {
		h.serverError(w, "list campaigns", err)
		return
	}

	out := make([]campaignJSON, 0, len(campaigns))
	for _, c := range campaigns {
		out = append(out, toCampaignJSON(c))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) getCampaign(w http.ResponseWriter, r *http.Request) {
	campaign, ok := h.findCampaign(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, toCampaignJSON(campaign))
}

func (h *Handler) deleteCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "campaignID")
	if err := h.campaigns.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrCampaignNotFound) {
			respondError(w, http.StatusNotFound, "campaign not found")
			return
		}
		h.serverError(w, "delete campaign", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) refreshCampaign(w http.ResponseWriter, r *http.Request) {
	campaign, ok := h.findCampaign(w, r)
	if !ok {
		return
	}

	report, err := h.ingestor.IngestNews(r.Context(), campaign)
	if err != nil {
		respondError(w, http.StatusBadGateway, "feed fetch failed")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

type addLinksRequest struct {
	URLs []string `json:"urls"`
}

func (h *Handler) addLinks(w http.ResponseWriter, r *http.Request) {
	campaign, ok := h.findCampaign(w, r)
	if !ok {
		return
	}

	var req addLinksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if len(req.URLs) == 0 {
		respondError(w, http.StatusBadRequest, "urls must not be empty")
		return
	}
	if len(req.URLs) > maxLinkBatch {
		respondError(w, http.StatusBadRequest, "at most 50 urls per batch")
		return
	}

	results := h.ingestor.IngestLinks(r.Context(), campaign, req.URLs)

	added := 0
	out := make([]linkResultJSON, 0, len(results))
	for _, res := range results {
		if res.Err == "" {
			added++
		}
		out = append(out, toLinkResultJSON(res))
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"attempted": len(results),
		"added":     added,
		"results":   out,
	})
}

func (h *Handler) listArticles(w http.ResponseWriter, r *http.Request) {
	campaign, ok := h.findCampaign(w, r)
	if !ok {
		return
	}

	limit, offset := pagination(r)
	articles, err := h.articles.ListByCampaign(r.Context(), campaign.ID, limit, offset)
	if err != nil {
		h.serverError(w, "list articles", err)
		return
	}

	out := make([]articleJSON, 0, len(articles))
	for _, a := range articles {
		out = append(out, toArticleJSON(a))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) listLinks(w http.ResponseWriter, r *http.Request) {
	campaign, ok := h.findCampaign(w, r)
	if !ok {
		return
	}

	limit, offset := pagination(r)
	links, err := h.links.ListByCampaign(r.Context(), campaign.ID, limit, offset)
	if err != nil {
		h.serverError(w, "list links", err)
		return
	}

	out := make([]socialLinkJSON, 0, len(links))
	for _, l := range links {
		out = append(out, toSocialLinkJSON(l))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) findCampaign(w http.ResponseWriter, r *http.Request) (domain.Campaign, bool) {
	id := chi.URLParam(r, "campaignID")
	campaign, err := h.campaigns.Find(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrCampaignNotFound) {
			respondError(w, http.StatusNotFound, "campaign not found")
			return domain.Campaign{}, false
		}
		h.serverError(w, "find campaign", err)
		return domain.Campaign{}, false
	}
	return campaign, true
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, "error", err)
	respondError(w, http.StatusInternalServerError, "internal error")
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
