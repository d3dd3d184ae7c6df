package app

import (
	"context"
	"time"

	"worklog-bot/internal/config"
	"worklog-bot/internal/dispatch"
	"worklog-bot/internal/flow"
	"worklog-bot/internal/middleware"
	"worklog-bot/internal/webhook"
	"worklog-bot/internal/whatsapp"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	machine := flow.NewMachine(flow.DefaultCatalog(), time.Now)

	sender, err := whatsapp.NewClient(cfg.APIBaseURL, cfg.APIKey)
	if err != nil {
		return nil, nil, err
	}

	dispatcher := dispatch.New(
		infra.Sessions,
		machine,
		sender,
		infra.Recorder,
	)

	webhookHandler := webhook.NewHandler(dispatcher, cfg.VerifyToken)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	// ----------------------------
	// Routes
	// ----------------------------

	webhookHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, infra.Close, nil
}
