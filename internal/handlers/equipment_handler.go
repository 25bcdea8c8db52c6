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

// EquipmentHandler handles HTTP requests for user equipment.
type EquipmentHandler struct {
	Service *services.EquipmentService
}

func NewEquipmentHandler(service *services.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{Service: service}
}

func (h *EquipmentHandler) CreateEquipmentHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var equipment models.Equipment
	if err := json.NewDecoder(r.Body).Decode(&equipment); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}
	equipment.UserID = userID

	created, err := h.Service.CreateEquipment(r.Context(), &equipment)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"userID":      claims.UserID,
		"equipmentID": created.ID.Hex(),
	}).Info("Equipment created")

	respondJSON(w, http.StatusCreated, created)
}

func (h *EquipmentHandler) ListEquipmentHandler(w http.ResponseWriter, r *http.Request) {
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

	equipment, err := h.Service.ListEquipment(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, equipment)
}
