// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/finbase/ledger-api/internal/accountdelivery"
	"github.com/finbase/ledger-api/internal/accountrepo"
	"github.com/finbase/ledger-api/internal/accountservice"
	"github.com/finbase/ledger-api/internal/apikeydelivery"
	"github.com/finbase/ledger-api/internal/apikeyrepo"
	"github.com/finbase/ledger-api/internal/apikeyservice"
	"github.com/finbase/ledger-api/internal/middleware"
	"github.com/finbase/ledger-api/internal/transactiondelivery"
	"github.com/finbase/ledger-api/internal/transactionrepo"
	"github.com/finbase/ledger-api/internal/transactionservice"
	"github.com/finbase/ledger-api/internal/webhookdelivery"
	"github.com/finbase/ledger-api/internal/webhookrepo"
	"github.com/finbase/ledger-api/internal/webhookservice"
	"github.com/finbase/ledger-api/pkg/configpkg"
	"github.com/finbase/ledger-api/pkg/ratelimitpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	accountRepo := accountrepo.NewRepoPGS(conn)
	transactionRepo := transactionrepo.NewRepoPGS(conn)
	apikeyRepo := apikeyrepo.NewRepoPGS(conn)
	webhookRepo := webhookrepo.NewRepoPGS(conn)

	dispatcher := webhookservice.NewDispatcher(webhookRepo, &http.Client{Timeout: config.WebhookTimeout})

	accountService := accountservice.New(accountRepo)
	transactionService := transactionservice.New(transactionRepo, dispatcher)
	apikeyService := apikeyservice.New(apikeyRepo)
	webhookService := webhookservice.NewService(webhookRepo)

	accountHandler := accountdelivery.NewHandler(accountService)
	transactionHandler := transactiondelivery.NewHandler(transactionService)
	apikeyHandler := apikeydelivery.NewHandler(apikeyService)
	webhookHandler := webhookdelivery.NewHandler(webhookService)

	// One limiter per process, injected into the auth gate.
	limiter := ratelimitpkg.New(config.RateLimitPerMinute, time.Minute)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.GET("/health", func(gctx *gin.Context) {
		gctx.String(http.StatusOK, "OK")
	})

	api := engine.Group("/api")

	api.POST("/accounts", accountHandler.Create)
	api.POST("/api-keys", apikeyHandler.Create)

	authRoutes := api.Group("/").Use(middleware.AuthMiddleware(apikeyService, limiter))

	authRoutes.GET("/accounts", accountHandler.List)
	authRoutes.GET("/accounts/:id", accountHandler.Get)
	authRoutes.GET("/accounts/:id/balance", accountHandler.GetBalance)

	authRoutes.POST("/transactions", transactionHandler.Create)
	authRoutes.GET("/transactions", transactionHandler.List)
	authRoutes.GET("/transactions/:id", transactionHandler.Get)

	authRoutes.POST("/webhooks", webhookHandler.Create)
	authRoutes.GET("/webhooks", webhookHandler.List)

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
