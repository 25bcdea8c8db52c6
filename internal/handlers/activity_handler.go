package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/avelkov/stride/internal/jobs"
	"github.com/avelkov/stride/internal/models"
	"github.com/avelkov/stride/internal/services"
	"github.com/avelkov/stride/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityHandler handles HTTP requests related to recorded activities.
type ActivityHandler struct {
	Service          *services.ActivityService
	HighlightService *services.HighlightService
	Worker           *jobs.HighlightWorker
}

func NewActivityHandler(service *services.ActivityService, highlightService *services.HighlightService, worker *jobs.HighlightWorker) *ActivityHandler {
	return &ActivityHandler{
		Service:          service,
		HighlightService: highlightService,
		Worker:           worker,
	}
}

// CreateActivityHandler stores a new activity and schedules highlight
// processing for it. With ?sync=true the highlights are computed before the
// response is written.
func (h *ActivityHandler) CreateActivityHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		logrus.Warn("Unauthorized access attempt during activity creation")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var activity models.Activity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during activity creation")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}
	activity.UserID = userID
	if activity.Start.IsZero() {
		activity.Start = time.Now()
	}

	created, err := h.Service.CreateActivity(r.Context(), &activity)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.scheduleHighlights(r, created.ID, userID)

	logrus.WithFields(logrus.Fields{
		"userID":     claims.UserID,
		"activityID": created.ID.Hex(),
	}).Info("Activity successfully created")

	respondJSON(w, http.StatusCreated, created)
}

// GetActivityHandler fetches a single activity by its ID.
func (h *ActivityHandler) GetActivityHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	activityID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid activity ID", http.StatusBadRequest)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	activity, err := h.Service.GetActivity(r.Context(), activityID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, activity)
}

// AddSamplesHandler attaches a recorded sample series to an activity and
// reschedules highlight processing so the windowed metrics pick it up.
func (h *ActivityHandler) AddSamplesHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	log := logrus.WithField("activityID", vars["id"])

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		log.Warn("Unauthorized sample upload attempt")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	activityID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid activity ID", http.StatusBadRequest)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	var req struct {
		Metric  string               `json:"metric"`
		Samples []models.TrackSample `json:"samples"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.WithError(err).Warn("Invalid sample payload")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.Service.AddSampleSeries(r.Context(), activityID, userID, req.Metric, req.Samples); err != nil {
		writeServiceError(w, err)
		return
	}

	h.scheduleHighlights(r, activityID, userID)

	log.WithField("samples", len(req.Samples)).Info("Sample series uploaded")
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// RecomputeHighlightsHandler forces a synchronous highlight run for one
// activity.
func (h *ActivityHandler) RecomputeHighlightsHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	activityID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid activity ID", http.StatusBadRequest)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	if err := h.HighlightService.ProcessActivityHighlights(r.Context(), activityID, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}

func (h *ActivityHandler) scheduleHighlights(r *http.Request, activityID, userID primitive.ObjectID) {
	if r.URL.Query().Get("sync") == "true" {
		if err := h.HighlightService.ProcessActivityHighlights(r.Context(), activityID, userID); err != nil {
			logrus.WithError(err).WithField("activityID", activityID.Hex()).Error("Synchronous highlight processing failed")
		}
		return
	}

	job := jobs.HighlightJob{ActivityID: activityID, UserID: userID}
	if err := h.Worker.Enqueue(job); err != nil {
		logrus.WithError(err).WithField("activityID", activityID.Hex()).Error("Failed to enqueue highlight job")
	}
}
