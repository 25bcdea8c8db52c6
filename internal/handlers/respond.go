package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avelkov/stride/internal/services"
	"github.com/sirupsen/logrus"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// writeServiceError maps service failures onto HTTP statuses. Validation
// failures are the caller's fault and return 422; domain failures mean the
// request referenced something in a bad state and return 400.
func writeServiceError(w http.ResponseWriter, err error) {
	var vErr *services.ValidationError
	if errors.As(err, &vErr) {
		status := http.StatusBadRequest
		if vErr.Kind == services.ErrorKindValidation {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, vErr.Message, status)
		return
	}

	switch {
	case errors.Is(err, services.ErrGoalNotFound):
		http.Error(w, "Goal not found", http.StatusNotFound)
	case errors.Is(err, services.ErrActivityNotFound):
		http.Error(w, "Activity not found", http.StatusNotFound)
	case errors.Is(err, services.ErrNotManualGoal):
		http.Error(w, "Only manual goals can be adjusted", http.StatusBadRequest)
	default:
		logrus.WithError(err).Error("Request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
