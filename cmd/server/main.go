package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/avelkov/stride/internal/config"
	"github.com/avelkov/stride/internal/database"
	"github.com/avelkov/stride/internal/handlers"
	"github.com/avelkov/stride/internal/jobs"
	"github.com/avelkov/stride/internal/repository"
	cronjobs "github.com/avelkov/stride/internal/scheduler"
	"github.com/avelkov/stride/internal/services"
	"github.com/avelkov/stride/pkg/logger"
	"github.com/avelkov/stride/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	typeRepo := repository.NewActivityTypeRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	trackRepo := repository.NewTrackRepository(db)
	highlightRepo := repository.NewHighlightRepository(db)

	// --- Services ---
	userService := services.NewUserService(userRepo)
	goalValidator := services.NewGoalValidator(typeRepo, equipmentRepo, locationRepo)
	progressService := services.NewGoalProgressService(activityRepo, goalRepo, locationRepo, cfg.LocationMatchRadiusMeters)
	goalService := services.NewGoalService(goalRepo, goalValidator, progressService)
	activityService := services.NewActivityService(activityRepo, trackRepo, typeRepo)
	equipmentService := services.NewEquipmentService(equipmentRepo)
	locationService := services.NewLocationService(locationRepo)

	registry := services.NewCalculatorRegistry()
	if err := services.RegisterStandardCalculators(registry, trackRepo); err != nil {
		log.Fatalf("Calculator registration error: %v", err)
	}
	highlightService := services.NewHighlightService(activityRepo, highlightRepo, registry, cfg.HighlightTopN)

	// --- Background processing ---
	worker := jobs.NewHighlightWorker(highlightService, 256)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	worker.Start(workerCtx)

	refreshCron := cronjobs.StartGoalRefreshCron(goalRepo, progressService)
	defer refreshCron.Stop()

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	goalHandler := handlers.NewGoalHandler(goalService)
	activityHandler := handlers.NewActivityHandler(activityService, highlightService, worker)
	highlightHandler := handlers.NewHighlightHandler(highlightService)
	equipmentHandler := handlers.NewEquipmentHandler(equipmentService)
	locationHandler := handlers.NewLocationHandler(locationService)

	router := mux.NewRouter()

	// Goal routes
	goalRoutes := router.PathPrefix("/goals").Subrouter()
	goalRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	goalRoutes.HandleFunc("", goalHandler.CreateGoalHandler).Methods("POST")
	goalRoutes.HandleFunc("", goalHandler.GetGoalsHandler).Methods("GET")
	goalRoutes.HandleFunc("/{id}", goalHandler.GetGoalHandler).Methods("GET")
	goalRoutes.HandleFunc("/{id}", goalHandler.UpdateGoalHandler).Methods("PATCH")
	goalRoutes.HandleFunc("/{id}", goalHandler.DeleteGoalHandler).Methods("DELETE")
	goalRoutes.HandleFunc("/{id}/adjust", goalHandler.AdjustGoalHandler).Methods("POST")

	// Activity routes
	activityRoutes := router.PathPrefix("/activities").Subrouter()
	activityRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	activityRoutes.HandleFunc("", activityHandler.CreateActivityHandler).Methods("POST")
	activityRoutes.HandleFunc("/{id}", activityHandler.GetActivityHandler).Methods("GET")
	activityRoutes.HandleFunc("/{id}/samples", activityHandler.AddSamplesHandler).Methods("POST")
	activityRoutes.HandleFunc("/{id}/highlights/recompute", activityHandler.RecomputeHighlightsHandler).Methods("POST")

	// Highlight routes
	highlightRoutes := router.PathPrefix("/highlights").Subrouter()
	highlightRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	highlightRoutes.HandleFunc("", highlightHandler.ListHighlightsHandler).Methods("GET")

	// Equipment routes
	equipmentRoutes := router.PathPrefix("/equipment").Subrouter()
	equipmentRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	equipmentRoutes.HandleFunc("", equipmentHandler.CreateEquipmentHandler).Methods("POST")
	equipmentRoutes.HandleFunc("", equipmentHandler.ListEquipmentHandler).Methods("GET")

	// Location routes
	locationRoutes := router.PathPrefix("/locations").Subrouter()
	locationRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	locationRoutes.HandleFunc("", locationHandler.CreateLocationHandler).Methods("POST")
	locationRoutes.HandleFunc("", locationHandler.ListLocationsHandler).Methods("GET")

	// User routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")

	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // adjust to frontend origin
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
