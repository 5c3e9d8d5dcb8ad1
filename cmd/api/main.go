package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pod-grading-api/internal/config"
	"github.com/noah-isme/pod-grading-api/internal/database"
	"github.com/noah-isme/pod-grading-api/internal/dto"
	"github.com/noah-isme/pod-grading-api/internal/handler"
	"github.com/noah-isme/pod-grading-api/internal/middleware"
	"github.com/noah-isme/pod-grading-api/internal/models"
	"github.com/noah-isme/pod-grading-api/internal/repository"
	"github.com/noah-isme/pod-grading-api/internal/router"
	"github.com/noah-isme/pod-grading-api/internal/service"
	"github.com/noah-isme/pod-grading-api/internal/state"
	cloud "github.com/noah-isme/pod-grading-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	rootCtx, stopRoot := context.WithCancel(context.Background())
	defer stopRoot()

	localDB, err := database.ConnectSQLite(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("failed to open local store: %v", err)
	}
	if err := localDB.AutoMigrate(&models.SnapshotDocument{}, &models.ActivityLog{}); err != nil {
		log.Fatalf("failed to migrate local store: %v", err)
	}

	backends := service.SnapshotBackends{Local: repository.NewSnapshotRepository(localDB)}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(rootCtx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName, logger)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	if cfg.RemoteEnabled() {
		remoteDB, err := database.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		if err := remoteDB.AutoMigrate(&models.SnapshotDocument{}); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
		backends.Remote = repository.NewSnapshotRepository(remoteDB)
		backends.Redis = redisClient
		backends.NATS = natsConn
	}

	reducer := state.NewReducer()
	snapshots := service.NewSnapshotService(service.SnapshotConfig{
		Slot:      cfg.SnapshotSlot,
		Channel:   cfg.SyncChannel,
		ClientTTL: cfg.ClientTTL,
	}, backends, reducer, logger)

	store := state.NewStore(snapshots.Load(rootCtx), reducer, snapshots, logger)

	validate := dto.NewValidator()
	activityService := service.NewActivityService(repository.NewActivityLogRepository(localDB), logger)
	store.OnDispatch(activityService.Hook())

	storeDone := make(chan struct{})
	go func() {
		defer close(storeDone)
		store.Run(rootCtx)
	}()

	snapshots.Start(rootCtx)
	unsubscribe := snapshots.Subscribe(func(snapshot models.AppState) {
		if store.Replace(snapshot) {
			logger.Info().Int64("revision", snapshot.Revision).Msg("snapshot replaced by remote push")
		}
	})
	defer unsubscribe()

	var uploader service.BackupUploader
	if cfg.CloudinaryEnabled() {
		cld, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		uploader = cld
	}

	rosterService := service.NewRosterService(store, validate, logger)
	assessmentService := service.NewAssessmentService(store, validate, logger)
	reportService := service.NewReportService(store, redisClient, cfg.SyncChannel, cfg.ReportCacheTTL, logger)
	transferService := service.NewTransferService(store, logger)
	backupService := service.NewBackupService(store, uploader, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    4 << 20,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		StateHandler:      handler.NewStateHandler(store, logger),
		StudentHandler:    handler.NewStudentHandler(rosterService, logger),
		PodHandler:        handler.NewPodHandler(rosterService, logger),
		AssessmentHandler: handler.NewAssessmentHandler(assessmentService, logger),
		GradeHandler:      handler.NewGradeHandler(reportService, logger),
		TransferHandler:   handler.NewTransferHandler(transferService, backupService, logger),
		SyncHandler:       handler.NewSyncHandler(store, cfg.SyncKeepAlive, logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		AdminHandler:      handler.NewAdminHandler(cfg.AdminPasscode, validate, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().
		Str("addr", cfg.HTTPAddress()).
		Bool("remote", snapshots.RemoteEnabled()).
		Int64("revision", store.State().Revision).
		Msg("pod grading api started")

	waitForShutdown(app)

	stopRoot()
	<-storeDone
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
