package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bolsas/internal/cache"
	"bolsas/internal/config"
	"bolsas/internal/repository"
	"bolsas/internal/service"
)

const pingTimeout = 5 * time.Second

// App wires storage, caches and services for the server and the seed CLI
type App struct {
	Config *config.Config
	Mongo  *mongo.Client
	Redis  *redis.Client

	UserRepo         repository.UserRepo
	AnnouncementRepo repository.AnnouncementRepo
	ApplicationRepo  repository.ApplicationRepo
	DocumentRepo     repository.DocumentRepo
	Files            repository.FileStore
	MaxScores        cache.MaxScoreCache
	Ranking          cache.RankingCache

	Auth          *service.AuthService
	Users         *service.UserService
	Announcements *service.AnnouncementService
	Applications  *service.ApplicationService
	Reviews       *service.ReviewService
	Documents     *service.DocumentService
}

// New connects to MongoDB and Redis and builds every service
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	log.Println("Connected to MongoDB")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("ping Redis: %w", err)
	}
	log.Println("Connected to Redis")

	a := &App{Config: cfg, Mongo: mongoClient, Redis: rdb}
	a.wire(mongoClient.Database(cfg.MongoDB))
	return a, nil
}

func (a *App) wire(db *mongo.Database) {
	// Initialize repositories
	a.UserRepo = repository.NewUserRepo(db)
	a.AnnouncementRepo = repository.NewAnnouncementRepo(db)
	a.ApplicationRepo = repository.NewApplicationRepo(db)
	a.DocumentRepo = repository.NewDocumentRepo(db)
	a.Files = repository.NewFileStore(db)

	// Initialize caches
	a.MaxScores = cache.NewMaxScoreCache(a.Redis, a.Config.MaxScoreCacheTTL)
	a.Ranking = cache.NewRankingCache(a.Redis)

	// Initialize services
	a.Auth = service.NewAuthService(a.UserRepo, a.Config.JWTSecret, a.Config.JWTTTL)
	a.Users = service.NewUserService(a.UserRepo)
	a.Announcements = service.NewAnnouncementService(a.AnnouncementRepo, a.ApplicationRepo, a.MaxScores, a.Ranking)
	a.Applications = service.NewApplicationService(a.ApplicationRepo, a.AnnouncementRepo, a.DocumentRepo, a.Ranking)
	a.Reviews = service.NewReviewService(a.ApplicationRepo, a.AnnouncementRepo, a.UserRepo, a.Announcements, a.Ranking)
	a.Documents = service.NewDocumentService(a.DocumentRepo, a.Files, a.UserRepo, a.Config.MaxUploadBytes)
}

// SetBroadcaster injects the realtime staff feed into every service that emits events
func (a *App) SetBroadcaster(b service.Broadcaster) {
	a.Announcements.SetBroadcaster(b)
	a.Applications.SetBroadcaster(b)
	a.Reviews.SetBroadcaster(b)
	a.Documents.SetBroadcaster(b)
}

// Close releases the database connections
func (a *App) Close(ctx context.Context) {
	if err := a.Redis.Close(); err != nil {
		log.Printf("Failed to close Redis: %v", err)
	}
	if err := a.Mongo.Disconnect(ctx); err != nil {
		log.Printf("Failed to disconnect MongoDB: %v", err)
	}
}
