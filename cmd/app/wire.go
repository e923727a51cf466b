//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/helpdeskhq/smartfaq/internal/bootstrap"
	"github.com/helpdeskhq/smartfaq/internal/domain/retrieval"
	"github.com/helpdeskhq/smartfaq/internal/infra/config"
	httpiface "github.com/helpdeskhq/smartfaq/internal/interface/http"
	"github.com/helpdeskhq/smartfaq/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideRetrievalConfig,
		provideLexicon,
		provideCandidateRepository,
		provideRowCache,
		provideSessionStore,
		retrieval.NewService,
		retrieval.NewMatcher,
		wire.Bind(new(httpiface.AnswerMatcher), new(*retrieval.Matcher)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
