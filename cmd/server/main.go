// @title           Rewind Backend API
// @version         1.0.0
// @description     Backend API for minting memories as collectible coins: capture a link, file or prompt, pin the image and metadata to IPFS, deploy the coin, and share it in the gallery.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a wallet JWT.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"rewind-backend/internal/config"
	"rewind-backend/internal/database"
	"rewind-backend/internal/gallery"
	"rewind-backend/internal/handlers"
	"rewind-backend/internal/imagen"
	"rewind-backend/internal/logging"
	"rewind-backend/internal/media"
	"rewind-backend/internal/metrics"
	"rewind-backend/internal/pinata"
	"rewind-backend/internal/records"
	"rewind-backend/internal/resolver"
	"rewind-backend/internal/services"
	"rewind-backend/internal/solana"
	"rewind-backend/internal/supabase"
	"rewind-backend/internal/workflow"
)

func main() {
	cfg, logger, err := loadConfig()
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("failed to load configuration", zap.Error(err))
	}
	defer logger.Sync()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open record store", zap.Error(err))
	}
	defer store.Close()

	collector := metrics.NewCollector("rewind")

	// Capture collaborators
	imagenClient, err := imagen.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiImageModel)
	if err != nil {
		logger.Fatal("failed to initialize image generator", zap.Error(err))
	}
	resolverClient := resolver.NewClient(cfg.FxTwitterAPIBaseURL, cfg.AllowedSocialHosts)
	capturer := workflow.NewCapturer(imagenClient, resolverClient)

	// Publish collaborators
	authority, err := solana.LoadAuthority(cfg.SolanaMintAuthorityKey)
	if err != nil {
		logger.Fatal("failed to load mint authority", zap.Error(err))
	}
	deployer := solana.NewDeployer(solana.DeployerConfig{
		RPCURL:        cfg.SolanaRPCURL,
		Cluster:       cfg.SolanaCluster,
		Decimals:      cfg.CoinDecimals,
		InitialSupply: cfg.CoinInitialSupply,
	}, authority, logger)
	logger.Info("mint authority loaded",
		zap.String("address", deployer.AuthorityAddress()),
		zap.String("cluster", cfg.SolanaCluster),
	)

	publisher := services.NewPublishService(
		media.NewDownloader(),
		pinata.NewClient(cfg.PinataAPIBaseURL, cfg.PinataJWT),
		deployer,
		store,
		logger,
	).WithGateway(cfg.IPFSGatewayURL).WithMetrics(collector)

	if cfg.SupabaseEnabled() {
		publisher.WithMirror(supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseStorageBucket))
		logger.Info("image mirror enabled", zap.String("bucket", cfg.SupabaseStorageBucket))
	} else {
		logger.Warn("SUPABASE_URL or SUPABASE_SERVICE_KEY not set, image mirror disabled")
	}

	g := gallery.New(store, cfg.BaseURL, cfg.BattleDuration)
	defer g.Close()

	if cfg.WalletJWTSecret == "" {
		logger.Warn("WALLET_JWT_SECRET not set, mutating routes are unauthenticated")
	}

	router := handlers.NewRouter(handlers.Deps{
		Capturer:        capturer,
		Publisher:       publisher,
		Store:           store,
		Registry:        workflow.NewRegistry(capturer, publisher, workflow.DefaultSessionTTL),
		Gallery:         g,
		Holders:         solana.NewHolderReader(cfg.SolanaRPCURL),
		Metrics:         collector,
		Logger:          logger,
		BaseURL:         cfg.BaseURL,
		WalletJWTSecret: cfg.WalletJWTSecret,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// loadConfig loads the configuration and builds the logger for the
// environment it names, which may come from CONFIG_FILE.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Environment)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// openStore uses Postgres when DATABASE_URL is set and the JSON file
// otherwise. Migrations run before the store is returned.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (records.Store, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("DATABASE_URL not set, using JSON file store", zap.String("path", cfg.RecordsFile))
		store := records.NewFileStore(cfg.RecordsFile)
		if err := store.Init(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.NewMigrator(db, logger).Run(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("migrations completed successfully")

	store := records.NewPostgresStore(db)
	if err := store.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}
