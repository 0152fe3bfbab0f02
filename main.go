package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialcast/domain/model"
	"socialcast/domain/repository"
	"socialcast/infrastructure/cache"
	"socialcast/infrastructure/clients/instagram"
	"socialcast/infrastructure/clients/pipeline"
	"socialcast/infrastructure/clients/tiktok"
	"socialcast/infrastructure/clients/youtube"
	"socialcast/infrastructure/configuration"
	"socialcast/infrastructure/events"
	"socialcast/infrastructure/logger"
	"socialcast/infrastructure/persistence"
	"socialcast/infrastructure/realtime"
	handler "socialcast/interfaces/http"
	"socialcast/server"
	"socialcast/usecase"

	"cloud.google.com/go/pubsub"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"
)

func main() {
	configuration.LoadEnvFromFile(".env")
	configuration.Reload()
	cfg := configuration.C
	log := logger.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := persistence.NewPostgreSQLDB()
	if err != nil {
		log.WithField("error", err).Fatal("connecting to postgres")
	}
	defer pg.Close()
	if err := persistence.EnsureOrchestratorSchema(pg); err != nil {
		log.WithField("error", err).Fatal("ensuring schema")
	}

	userDB, err := persistence.NewUserDB()
	if err != nil {
		log.WithField("error", err).Fatal("connecting to mysql")
	}

	videoIdeaRepo := persistence.NewVideoIdeaRepository(pg)
	userRepo := persistence.NewUserRepository(userDB)

	// Credentials live in PostgreSQL by default; configuring an MSSQL host
	// moves them to Azure SQL.
	var credRepo repository.ICredential
	if cfg.Database.Mssql.Host != "" {
		mssql, err := persistence.NewMSSQLDB()
		if err != nil {
			log.WithField("error", err).Fatal("connecting to mssql")
		}
		defer mssql.Close()
		credRepo = persistence.NewCredentialRepositoryMSSQL(mssql)
	} else {
		credRepo = persistence.NewCredentialRepository(pg)
	}

	// Optional infrastructure degrades to nil.
	var archive repository.IWebhookArchive
	if cfg.Database.Mongo.Host != "" {
		m := cfg.Database.Mongo
		mongoClient, err := persistence.NewMongoDb(m.Host, m.Port, m.User, m.Password, m.Name)
		if err != nil {
			log.WithField("error", err).Warn("mongo unavailable, webhook archive disabled")
		} else {
			defer func() { _ = mongoClient.Disconnect(context.Background()) }()
			archive = persistence.NewWebhookArchiveRepository(mongoClient)
		}
	} else {
		archive = persistence.NewWebhookArchiveRepository(nil)
	}

	statusCache := cache.NewStatusCache(nil)
	if cfg.RedisClient.Host != "" {
		addr := fmt.Sprintf("%s:%s", cfg.RedisClient.Host, cfg.RedisClient.Port)
		redisClient, err := cache.NewCache(ctx, addr, cfg.RedisClient.Username, cfg.RedisClient.Password)
		if err != nil {
			log.WithField("error", err).Warn("redis unavailable, status cache disabled")
		} else {
			defer redisClient.Close()
			statusCache = cache.NewStatusCache(redisClient)
		}
	}

	var pubsubClient *pubsub.Client
	if cfg.Pubsub.ProjectID != "" {
		pubsubClient, err = events.NewPubSub(ctx, cfg.Pubsub.ProjectID)
		if err != nil {
			log.WithField("error", err).Warn("pubsub unavailable")
			pubsubClient = nil
		} else {
			defer pubsubClient.Close()
		}
	}
	var sbClient *azservicebus.Client
	if cfg.ServiceBus.Namespace != "" {
		sbClient, err = events.NewServiceBus(cfg.ServiceBus.Namespace)
		if err != nil {
			log.WithField("error", err).Warn("service bus unavailable")
			sbClient = nil
		}
	}
	publisher := events.NewPublisher(pubsubClient, cfg.Pubsub.Topic, sbClient, cfg.ServiceBus.Queue)

	hub := realtime.NewStatusHub()

	oauthConfigs := map[model.Platform]*oauth2.Config{
		model.PlatformYouTube: {
			ClientID:     cfg.OAuth.YouTube.ClientID,
			ClientSecret: cfg.OAuth.YouTube.ClientSecret,
			Endpoint:     google.Endpoint,
		},
		model.PlatformTikTok: {
			ClientID:     cfg.OAuth.TikTok.ClientID,
			ClientSecret: cfg.OAuth.TikTok.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL: "https://open.tiktokapis.com/v2/oauth/token/",
			},
		},
		model.PlatformInstagram: {
			ClientID:     cfg.OAuth.Instagram.ClientID,
			ClientSecret: cfg.OAuth.Instagram.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL: "https://graph.facebook.com/v21.0/oauth/access_token",
			},
		},
	}
	refresher := usecase.NewTokenRefresher(credRepo, oauthConfigs)

	uploaders := []repository.IPlatformUploader{
		youtube.NewUploader(),
		tiktok.NewUploader(),
		instagram.NewUploader(),
	}

	pipelineClient := pipeline.NewClient(cfg.Pipeline.WebhookURL, cfg.Pipeline.WebhookSecret)

	publishUC := usecase.NewPublishUsecase(videoIdeaRepo, userRepo, credRepo, refresher, uploaders, publisher, hub, statusCache)
	approvalUC := usecase.NewApprovalUsecase(videoIdeaRepo, publishUC, statusCache)
	videoIdeaUC := usecase.NewVideoIdeaUsecase(videoIdeaRepo, userRepo, credRepo, pipelineClient, statusCache, hub)
	userUC := usecase.NewUserUsecase(userRepo)
	credentialUC := usecase.NewCredentialUsecase(credRepo, userRepo)

	router := server.NewRouter(server.Handlers{
		User:        handler.NewUserHandler(userUC),
		VideoIdea:   handler.NewVideoIdeaHandler(videoIdeaUC, approvalUC, publishUC),
		Webhook:     handler.NewWebhookHandler(videoIdeaUC, userUC, archive, cfg.Pipeline.WebhookSecret),
		Connection:  handler.NewConnectionHandler(credentialUC),
		YouTubeAuth: handler.NewYouTubeOAuthHandler(credentialUC),
		TikTokAuth:  handler.NewTikTokOAuthHandler(credentialUC),
		IGAuth:      handler.NewInstagramOAuthHandler(credentialUC),
		Stream:      hub.Serve,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("port", cfg.App.Port).Info("server starting")
		if cfg.App.TLSEnabled {
			if err := srv.ListenAndServeTLS(cfg.App.TLSCertFile, cfg.App.TLSKeyFile); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		}
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithField("error", err).Error("server exited")
		os.Exit(1)
	}
	log.Info("server stopped")
}
