package rest

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/swaggo/swag"

	_ "bolsas/docs"
	"bolsas/internal/model"
	"bolsas/internal/service"
	"bolsas/internal/transport/rest/handler"
	"bolsas/internal/transport/rest/middleware"
	"bolsas/internal/transport/ws"
)

// ids are Mongo ObjectIDs; the pattern keeps /announcements/closed and friends routable
const idPath = "{id:[0-9a-fA-F]{24}}"

// Container holds all dependencies for the router
type Container struct {
	AuthService         *service.AuthService
	UserService         *service.UserService
	AnnouncementService *service.AnnouncementService
	ApplicationService  *service.ApplicationService
	ReviewService       *service.ReviewService
	DocumentService     *service.DocumentService
	WSHub               *ws.Hub
	MaxUploadBytes      int64
	AllowOrigin         func(origin string) bool
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	userHandler := handler.NewUserHandler(c.UserService)
	announcementHandler := handler.NewAnnouncementHandler(c.AnnouncementService)
	applicationHandler := handler.NewApplicationHandler(c.ApplicationService)
	reviewHandler := handler.NewReviewHandler(c.ReviewService)
	documentHandler := handler.NewDocumentHandler(c.DocumentService, c.MaxUploadBytes)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.AllowOrigin)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)
	staffOnly := middleware.RequireRole(model.RoleStaff, model.RoleAdmin)
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	studentOnly := middleware.RequireRole(model.RoleStudent)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/announcements", announcementHandler.List).Methods("GET")
	api.HandleFunc("/announcements/"+idPath, announcementHandler.Get).Methods("GET")
	api.HandleFunc("/announcements/"+idPath+"/maximum-score", announcementHandler.MaximumScore).Methods("GET")

	// WebSocket route (token in query param)
	api.HandleFunc("/ws/review", wsHandler.ReviewWS).Methods("GET")

	// Any authenticated caller; ownership is checked by the services
	authed := api.NewRoute().Subrouter()
	authed.Use(authMW.RequireAuth)

	authed.HandleFunc("/users/"+idPath, userHandler.Get).Methods("GET")
	authed.HandleFunc("/users/"+idPath, userHandler.Update).Methods("PUT")
	authed.HandleFunc("/users/"+idPath+"/password", userHandler.ChangePassword).Methods("PUT")
	authed.HandleFunc("/applications/available", applicationHandler.Available).Methods("GET")
	authed.HandleFunc("/documents", documentHandler.List).Methods("GET")
	authed.HandleFunc("/documents", documentHandler.Upload).Methods("POST")
	authed.HandleFunc("/documents/"+idPath+"/content", documentHandler.Content).Methods("GET")

	// Student routes
	studentRoutes := authed.NewRoute().Subrouter()
	studentRoutes.Use(studentOnly)

	studentRoutes.HandleFunc("/applications", applicationHandler.Submit).Methods("POST")
	studentRoutes.HandleFunc("/applications/import-documents", applicationHandler.ImportDocuments).Methods("POST")
	studentRoutes.HandleFunc("/applications/mine", applicationHandler.Mine).Methods("GET")
	studentRoutes.HandleFunc("/applications/"+idPath, applicationHandler.Cancel).Methods("DELETE")

	// Staff routes (staff and admin)
	staffRoutes := authed.NewRoute().Subrouter()
	staffRoutes.Use(staffOnly)

	staffRoutes.HandleFunc("/announcements/closed", announcementHandler.Closed).Methods("GET")
	staffRoutes.HandleFunc("/announcements/validate-formula", announcementHandler.ValidateFormula).Methods("POST")
	staffRoutes.HandleFunc("/announcements/"+idPath+"/ranking", announcementHandler.Ranking).Methods("GET")
	staffRoutes.HandleFunc("/review/pending", reviewHandler.Pending).Methods("GET")
	staffRoutes.HandleFunc("/review/"+idPath, reviewHandler.Get).Methods("GET")
	staffRoutes.HandleFunc("/review/"+idPath+"/evaluate", reviewHandler.Evaluate).Methods("POST")
	staffRoutes.HandleFunc("/documents/submitted", documentHandler.Submitted).Methods("GET")
	staffRoutes.HandleFunc("/documents/"+idPath+"/status", documentHandler.SetStatus).Methods("POST")

	// Admin routes
	adminRoutes := authed.NewRoute().Subrouter()
	adminRoutes.Use(adminOnly)

	adminRoutes.HandleFunc("/users", userHandler.Register).Methods("POST")
	adminRoutes.HandleFunc("/announcements", announcementHandler.Create).Methods("POST")
	adminRoutes.HandleFunc("/announcements/"+idPath, announcementHandler.Update).Methods("PUT")
	adminRoutes.HandleFunc("/announcements/"+idPath, announcementHandler.Delete).Methods("DELETE")
	adminRoutes.HandleFunc("/announcements/"+idPath+"/finalize", announcementHandler.Finalize).Methods("POST")

	// CORS wraps the router so preflight requests never reach auth
	return middleware.Logging(corsMiddleware(c.AllowOrigin, r))
}

func corsMiddleware(allowOrigin func(string) bool, next http.Handler) http.Handler {
	allowedMethods := strings.Join([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && allowOrigin != nil && allowOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.RequestIDHeader)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
