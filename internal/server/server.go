package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"openkanban/internal/config"
	"openkanban/internal/database"
	"openkanban/internal/gateway"
	"openkanban/internal/handler"
	"openkanban/internal/middleware"
	"openkanban/internal/realtime"
	"openkanban/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	Hub    *realtime.Hub
	Bridge *realtime.Bridge
	Config *config.Config

	ctx    context.Context
	cancel context.CancelFunc
}

// Deps are the collaborators the router needs.
type Deps struct {
	Gateway   gateway.Gateway
	Hub       *realtime.Hub
	Publisher handler.SyncPublisher
	Gatherer  prometheus.Gatherer
	Origins   []string
}

func Init(cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Printf("⚠️  Redis at %s unavailable, live updates disabled until it is reachable: %v", cfg.RedisAddr, err)
	} else {
		log.Println("✅ Connected to redis")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := realtime.NewMetrics(reg)

	bridge := realtime.NewBridge(rdb, metrics)
	hub := realtime.NewHub(bridge, metrics, realtime.WithPresence(rdb, cfg.PresenceTTL))

	gw := gateway.NewDB(
		repository.NewBoardRepository(db),
		repository.NewColumnRepository(db),
		repository.NewTaskRepository(db),
	)

	ctx, cancel := context.WithCancel(context.Background())
	r := NewRouter(ctx, Deps{
		Gateway:   gw,
		Hub:       hub,
		Publisher: bridge,
		Gatherer:  reg,
		Origins:   cfg.CORSOrigins,
	})

	return &Server{
		Engine: r,
		DB:     db,
		Redis:  rdb,
		Hub:    hub,
		Bridge: bridge,
		Config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// NewRouter registers the REST, websocket and operational routes.
// Websocket clients stop when ctx is done.
func NewRouter(ctx context.Context, deps Deps) *gin.Engine {
	r := gin.Default()

	boardHandler := handler.NewBoardHandler(deps.Gateway)
	columnHandler := handler.NewColumnHandler(deps.Gateway)
	taskHandler := handler.NewTaskHandler(deps.Gateway)
	transferHandler := handler.NewTransferHandler(deps.Gateway, deps.Publisher)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		slugs := api.Group("/slugs/:" + middleware.SlugParam)
		slugs.Use(middleware.NormalizeSlug())
		{
			slugs.GET("/board", boardHandler.GetBySlug)
			slugs.GET("/full", boardHandler.GetFull)
			slugs.GET("/export", transferHandler.Export)
			slugs.POST("/import", transferHandler.Import)
		}

		// Board routes
		api.POST("/boards", boardHandler.Create)
		api.DELETE("/boards/:id", boardHandler.Delete)

		// Column routes
		api.POST("/columns", columnHandler.Create)
		api.PUT("/columns/positions", columnHandler.UpdatePositions)
		api.PATCH("/columns/:id", columnHandler.Update)
		api.DELETE("/columns/:id", columnHandler.Delete)

		// Task routes
		api.POST("/tasks", taskHandler.Create)
		api.PUT("/tasks/positions", taskHandler.UpdatePositions)
		api.PATCH("/tasks/:id", taskHandler.Update)
		api.DELETE("/tasks/:id", taskHandler.Delete)
	}

	if deps.Hub != nil {
		r.GET("/ws/:"+middleware.SlugParam, middleware.NormalizeSlug(), realtime.ServeWS(ctx, deps.Hub, checkOrigin(deps.Origins)))
	}
	return r
}

// checkOrigin accepts same-host requests and any origin listed in origins.
func checkOrigin(origins []string) func(*http.Request) bool {
	return func(req *http.Request) bool {
		origin := req.Header.Get("Origin")
		if origin == "" || slices.Contains(origins, "*") {
			return true
		}
		return slices.Contains(origins, origin) || origin == "http://"+req.Host || origin == "https://"+req.Host
	}
}

func corsHandler(origins []string, next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
	}).Handler(next)
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: corsHandler(s.Config.CORSOrigins, s.Engine),
	}

	go s.Hub.Run(s.ctx)
	go func() {
		for {
			err := s.Bridge.Run(s.ctx, s.Hub)
			if s.ctx.Err() != nil {
				return
			}
			log.Printf("⚠️  Realtime bridge stopped: %v, retrying in 5s", err)
			select {
			case <-s.ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
		}
	}()

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}
	s.cancel()

	if err := s.Close(); err != nil {
		log.Printf("⚠️  %v", err)
	}
	log.Println("✅ Server exited properly")
}

// Close releases the redis and database connections.
func (s *Server) Close() error {
	if err := s.Redis.Close(); err != nil {
		return fmt.Errorf("failed to close redis: %w", err)
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close DB: %w", err)
	}
	return nil
}
