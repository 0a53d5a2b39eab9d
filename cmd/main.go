// Package main starts the ledger API server: accounts, transactions,
// API keys and webhook delivery.
package main

import (
	"github.com/rs/zerolog/log"

	"github.com/finbase/ledger-api/cmd/httpserver"
	"github.com/finbase/ledger-api/internal/middleware"
	"github.com/finbase/ledger-api/pkg/configpkg"
	"github.com/finbase/ledger-api/pkg/dbpkg"

	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	logger.Info().Str("address", config.ServerAddress).Msg("ledger api server has started")

	err = server.Engine.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
