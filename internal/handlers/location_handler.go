package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/avelkov/stride/internal/models"
	"github.com/avelkov/stride/internal/services"
	"github.com/avelkov/stride/pkg/middleware"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LocationHandler handles HTTP requests for saved locations.
type LocationHandler struct {
	Service *services.LocationService
}

func NewLocationHandler(service *services.LocationService) *LocationHandler {
	return &LocationHandler{Service: service}
}

func (h *LocationHandler) CreateLocationHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Name      string  `json:"name"`
		Longitude float64 `json:"longitude"`
		Latitude  float64 `json:"latitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	location := models.Location{
		UserID: userID,
		Name:   req.Name,
		Point:  models.NewGeoPoint(req.Longitude, req.Latitude),
	}

	created, err := h.Service.CreateLocation(r.Context(), &location)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"userID":     claims.UserID,
		"locationID": created.ID.Hex(),
	}).Info("Location created")

	respondJSON(w, http.StatusCreated, created)
}

func (h *LocationHandler) ListLocationsHandler(w http.ResponseWriter, r *http.Request) {
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

	locations, err := h.Service.ListLocations(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, locations)
}
