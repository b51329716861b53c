package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bolsas/internal/app"
	"bolsas/internal/config"
	"bolsas/internal/transport/rest"
	"bolsas/internal/transport/ws"
)

// @title Bolsas API
// @version 1.0
// @description Student financial-aid portal: announcements, applications, review and scoring
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log.Println("started")
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close(context.Background())

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	defer wsHub.Close()
	log.Println("WebSocket hub started")

	// Inject broadcaster (wsHub implements service.Broadcaster)
	a.SetBroadcaster(wsHub)

	// Create router with container
	container := &rest.Container{
		AuthService:         a.Auth,
		UserService:         a.Users,
		AnnouncementService: a.Announcements,
		ApplicationService:  a.Applications,
		ReviewService:       a.Reviews,
		DocumentService:     a.Documents,
		WSHub:               wsHub,
		MaxUploadBytes:      cfg.MaxUploadBytes,
		AllowOrigin:         cfg.OriginAllowed,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Println("Endpoints:")
		log.Println("  POST /api/auth/login")
		log.Println("  GET/POST /api/announcements")
		log.Println("  GET  /api/announcements/{id}/maximum-score")
		log.Println("  POST /api/applications")
		log.Println("  GET  /api/review/pending")
		log.Println("  POST /api/documents")
		log.Println("  WS   /api/ws/review")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
