package handlers

import (
	"net/http"
	"strconv"

	"github.com/avelkov/stride/internal/models"
	"github.com/avelkov/stride/internal/services"
	"github.com/avelkov/stride/pkg/middleware"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HighlightHandler handles HTTP requests for personal-best leaderboards.
type HighlightHandler struct {
	Service *services.HighlightService
}

func NewHighlightHandler(service *services.HighlightService) *HighlightHandler {
	return &HighlightHandler{Service: service}
}

// ListHighlightsHandler returns stored leaderboard rows for the logged-in
// user. Scope defaults to lifetime; metric and year narrow the listing.
func (h *HighlightHandler) ListHighlightsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	scope := models.ScopeLifetime
	if scopeParam := r.URL.Query().Get("scope"); scopeParam != "" {
		scope = models.HighlightScope(scopeParam)
	}

	var metric *models.HighlightMetric
	if metricParam := r.URL.Query().Get("metric"); metricParam != "" {
		m := models.HighlightMetric(metricParam)
		metric = &m
	}

	var year *int
	if yearParam := r.URL.Query().Get("year"); yearParam != "" {
		parsed, err := strconv.Atoi(yearParam)
		if err != nil {
			http.Error(w, "Invalid year", http.StatusBadRequest)
			return
		}
		year = &parsed
	}

	highlights, err := h.Service.ListHighlights(r.Context(), userID, metric, scope, year)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	public := make([]models.PublicHighlight, 0, len(highlights))
	for i := range highlights {
		public = append(public, highlights[i].ToPublic())
	}

	logrus.WithFields(logrus.Fields{
		"userID": claims.UserID,
		"scope":  scope,
		"count":  len(public),
	}).Info("Highlights fetched")

	respondJSON(w, http.StatusOK, public)
}
