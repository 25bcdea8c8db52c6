package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/avelkov/stride/internal/models"
	"github.com/avelkov/stride/internal/services"
	"github.com/avelkov/stride/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GoalHandler handles HTTP requests related to goals.
type GoalHandler struct {
	Service *services.GoalService
}

// NewGoalHandler creates a new instance of GoalHandler.
func NewGoalHandler(goalService *services.GoalService) *GoalHandler {
	return &GoalHandler{
		Service: goalService,
	}
}

// CreateGoalHandler handles the creation of a new goal.
func (h *GoalHandler) CreateGoalHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		logrus.Warn("Unauthorized access attempt during goal creation")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var goal models.Goal
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during goal creation")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		logrus.WithError(err).Error("Failed to convert user ID")
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}
	goal.UserID = userID

	createdGoal, err := h.Service.CreateGoal(r.Context(), &goal)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"userID": claims.UserID,
		"goalID": createdGoal.ID.Hex(),
	}).Info("Goal successfully created")

	respondJSON(w, http.StatusCreated, createdGoal.ToPublic())
}

// GetGoalHandler fetches a single goal with freshly derived progress.
func (h *GoalHandler) GetGoalHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	log := logrus.WithField("goalID", vars["id"])

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		log.Warn("Unauthorized goal fetch attempt")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	goalID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid goal ID", http.StatusBadRequest)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	goal, err := h.Service.GetGoal(r.Context(), goalID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, goal.ToPublic())
}

// GetGoalsHandler lists the user's goals for a year and optional month, each
// with freshly derived progress.
func (h *GoalHandler) GetGoalsHandler(w http.ResponseWriter, r *http.Request) {
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

	year := time.Now().Year()
	if yearParam := r.URL.Query().Get("year"); yearParam != "" {
		parsed, err := strconv.Atoi(yearParam)
		if err != nil {
			http.Error(w, "Invalid year", http.StatusBadRequest)
			return
		}
		year = parsed
	}

	var month *int
	if monthParam := r.URL.Query().Get("month"); monthParam != "" {
		parsed, err := strconv.Atoi(monthParam)
		if err != nil || parsed < 1 || parsed > 12 {
			http.Error(w, "Invalid month", http.StatusBadRequest)
			return
		}
		month = &parsed
	}

	goals, err := h.Service.ListGoals(r.Context(), userID, year, month)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	public := make([]models.PublicGoal, 0, len(goals))
	for i := range goals {
		public = append(public, goals[i].ToPublic())
	}

	logrus.WithFields(logrus.Fields{
		"userID":    claims.UserID,
		"goalCount": len(public),
	}).Info("User goals fetched successfully")

	respondJSON(w, http.StatusOK, public)
}

// UpdateGoalHandler applies the mutable fields of a goal.
func (h *GoalHandler) UpdateGoalHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	log := logrus.WithField("goalID", vars["id"])

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		log.Warn("Unauthorized update attempt")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	goalID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid goal ID", http.StatusBadRequest)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	var update services.GoalUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.WithError(err).Warn("Invalid update payload")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	updatedGoal, err := h.Service.UpdateGoal(r.Context(), goalID, userID, update)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	log.Info("Goal successfully updated")
	respondJSON(w, http.StatusOK, updatedGoal.ToPublic())
}

// AdjustGoalHandler shifts a manual goal's current value by a delta.
func (h *GoalHandler) AdjustGoalHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	log := logrus.WithField("goalID", vars["id"])

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		log.Warn("Unauthorized adjust attempt")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	goalID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid goal ID", http.StatusBadRequest)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	var req struct {
		Delta float64 `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	goal, err := h.Service.AdjustManualGoal(r.Context(), goalID, userID, req.Delta)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	log.WithField("delta", req.Delta).Info("Goal adjusted")
	respondJSON(w, http.StatusOK, goal.ToPublic())
}

// DeleteGoalHandler handles deleting a goal by its ID.
func (h *GoalHandler) DeleteGoalHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	log := logrus.WithField("goalID", vars["id"])

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		log.Warn("Unauthorized access attempt")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	goalID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid goal ID", http.StatusBadRequest)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	if err := h.Service.DeleteGoal(r.Context(), goalID, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	log.Info("Goal deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}
