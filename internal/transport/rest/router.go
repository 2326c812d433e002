package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"mstress/internal/service"
	"mstress/internal/transport/rest/handler"
	"mstress/internal/transport/rest/middleware"
	"mstress/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService       *service.AuthService
	AssessmentService *service.AssessmentService
	ReviewService     *service.ReviewService
	ExportService     *service.ExportService
	WSHub             *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	assessmentHandler := handler.NewAssessmentHandler(c.AssessmentService, c.ExportService)
	reviewHandler := handler.NewReviewHandler(c.ReviewService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/token", authHandler.Token).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/reviews", wsHandler.ReviewerWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// User routes (any authenticated actor)
	userRoutes := v1.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireUser)

	userRoutes.HandleFunc("/assessments", assessmentHandler.Submit).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/assessments/{id}", assessmentHandler.Get).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/users/{userId}/assessments", assessmentHandler.History).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/users/{userId}/assessments/export", assessmentHandler.Export).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/users/{userId}/assessments/summary", assessmentHandler.Summary).Methods("GET", "OPTIONS")

	// Reviewer routes (require review capability)
	reviewerRoutes := v1.NewRoute().Subrouter()
	reviewerRoutes.Use(authMW.RequireReviewer)

	reviewerRoutes.HandleFunc("/reviews/pending", reviewHandler.ListPending).Methods("GET", "OPTIONS")
	reviewerRoutes.HandleFunc("/reviews/{assessmentId}", reviewHandler.Get).Methods("GET", "OPTIONS")
	reviewerRoutes.HandleFunc("/reviews/{assessmentId}", reviewHandler.Upsert).Methods("PUT", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
