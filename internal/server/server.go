package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"anoa.com/skillswap/internal/config"
	searchService "anoa.com/skillswap/internal/modules/search/service"
	"anoa.com/skillswap/internal/scheduler"
	"anoa.com/skillswap/pkg/database"
	"anoa.com/skillswap/pkg/mailer"
	"anoa.com/skillswap/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	engine      *gin.Engine
	httpServer  *http.Server
	scheduler   *scheduler.Scheduler
	db          *gorm.DB
	redisClient *redis.Client
}

// NewInfrastructure connects the optional services; missing configuration disables them.
func NewInfrastructure(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) Infrastructure {
	infra := Infrastructure{
		Tx:    database.NewTransactor(db),
		Redis: redisClient,
		Mailer: mailer.New(mailer.Config{
			SendgridAPIKey: cfg.SendgridAPIKey,
			FromAddress:    cfg.MailFrom,
			FromName:       cfg.MailFromName,
			SMTPHost:       cfg.SMTPHost,
			SMTPPort:       cfg.SMTPPort,
			SMTPUsername:   cfg.SMTPUsername,
			SMTPPassword:   cfg.SMTPPassword,
		}),
	}

	if cfg.MeiliSearchHost != "" {
		host := cfg.MeiliSearchHost
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host + ":7700"
		}
		meiliClient := meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		infra.Search = searchService.NewMeiliSearchService(meiliClient)
	} else {
		zap.L().Warn("MEILISEARCH_HOST not set, proposal search falls back to the database")
	}

	images, err := storage.NewCloudinaryStorage(storage.CloudinaryConfig{
		CloudName:    cfg.CloudinaryCloudName,
		APIKey:       cfg.CloudinaryAPIKey,
		APISecret:    cfg.CloudinaryAPISecret,
		UploadFolder: cfg.CloudinaryUploadFolder,
	})
	if err != nil {
		zap.L().Warn("avatar uploads disabled", zap.Error(err))
	} else {
		infra.Images = images
	}

	return infra
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	infra := NewInfrastructure(cfg, db, redisClient)
	services := NewServices(cfg, NewGormRepositories(db), infra)

	sched := scheduler.NewScheduler()
	if err := sched.Register(services.Digest); err != nil {
		return nil, err
	}

	engine := NewRouter(cfg, services, redisClient)

	return &Server{
		engine: engine,
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		scheduler:   sched,
		db:          db,
		redisClient: redisClient,
	}, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	s.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("http server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.scheduler.Stop(shutdownCtx)
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	zap.L().Info("http server stopped")
	return nil
}
