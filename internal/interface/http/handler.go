package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/helpdeskhq/smartfaq/internal/domain/retrieval"
	"github.com/helpdeskhq/smartfaq/internal/infra/session"
	apperrors "github.com/helpdeskhq/smartfaq/pkg/errors"
	"github.com/helpdeskhq/smartfaq/pkg/metrics"
)

// AnswerMatcher is the slice of the matcher the transport consumes.
type AnswerMatcher interface {
	FindBestMatch(query string, rows []retrieval.Row, opts retrieval.MatchOptions) *retrieval.MatchResult
	ContactIntent(query string) bool
	ContactThreshold() float64
}

// Handler wires the HTTP transport to the retrieval domain.
type Handler struct {
	retriever retrieval.Service
	matcher   AnswerMatcher
	repo      retrieval.CandidateRepository
	sessions  *session.Store
	logger    *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(retriever retrieval.Service, matcher AnswerMatcher, repo retrieval.CandidateRepository, sessions *session.Store, logger *slog.Logger) *Handler {
	return &Handler{
		retriever: retriever,
		matcher:   matcher,
		repo:      repo,
		sessions:  sessions,
		logger:    logger.With("component", "http.handler"),
	}
}

// SearchRequest is the chat widget's question payload.
type SearchRequest struct {
	Query      string `json:"query" binding:"required"`
	SessionID  string `json:"sessionId"`
	Language   string `json:"language"`
	Category   string `json:"category"`
	ProductRef string `json:"productRef"`
}

// RelatedFaq summarizes a secondary candidate stitched into the reply.
type RelatedFaq struct {
	FaqID int64   `json:"faqId"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// SearchResponse is returned to the chat widget.
type SearchResponse struct {
	SessionID  string                 `json:"sessionId"`
	Found      bool                   `json:"found"`
	Answer     *retrieval.MatchResult `json:"answer,omitempty"`
	AlsoUseful []RelatedFaq           `json:"alsoUseful,omitempty"`
	Usage      metrics.SearchUsage    `json:"usage"`
}

// Search runs the retrieval pipeline and picks the best answer.
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	sess := h.sessions.Resolve(req.SessionID, retrieval.SessionContext{
		Language:   req.Language,
		Category:   retrieval.Category(req.Category),
		ProductRef: req.ProductRef,
	})

	result, err := h.retriever.Retrieve(c.Request.Context(), req.Query, sess)
	if err != nil {
		status := http.StatusInternalServerError
		code := "search_failed"
		if apperrors.IsCode(err, "invalid_input") {
			status = http.StatusBadRequest
			code = "invalid_request"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	resp := SearchResponse{SessionID: sess.SessionID}
	if result == nil {
		c.JSON(http.StatusOK, resp)
		return
	}
	resp.Usage = result.Usage

	var opts retrieval.MatchOptions
	opts.Language = sess.Language
	// contact-support intents accept weaker matches
	if h.matcher.ContactIntent(req.Query) {
		opts.Threshold = h.matcher.ContactThreshold()
	}

	rows := make([]retrieval.Row, 0, len(result.TopCandidates))
	for _, candidate := range result.TopCandidates {
		rows = append(rows, candidate.Row)
	}
	match := h.matcher.FindBestMatch(req.Query, rows, opts)

	for _, candidate := range result.TopCandidates {
		if match != nil && candidate.FaqID == match.FaqID {
			continue
		}
		resp.AlsoUseful = append(resp.AlsoUseful, RelatedFaq{
			FaqID: candidate.FaqID,
			Title: candidate.Row.Title,
			Score: candidate.Score,
		})
	}
	if match != nil {
		resp.Found = true
		resp.Answer = match
	}

	c.JSON(http.StatusOK, resp)
}

// ListFaqs exposes the direct filtered lookup.
func (h *Handler) ListFaqs(c *gin.Context) {
	filters := retrieval.SearchFilters{
		Language:   c.Query("language"),
		Category:   retrieval.Category(c.Query("category")),
		ProductRef: c.Query("productRef"),
		Limit:      10,
	}
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be between 1 and 100", err))
			return
		}
		filters.Limit = parsed
	}

	rows, err := h.repo.GetFaqs(c.Request.Context(), filters)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "faq_lookup_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"faqs": rows})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
