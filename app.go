package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/chrispoponi/contractflowai-web-sub001/config"
	"github.com/chrispoponi/contractflowai-web-sub001/service"
)

// app holds the collaborators shared by the serve and parse commands.
type app struct {
	storage   *service.MinioService
	contracts service.ContractRepository
	pipeline  *service.Pipeline
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	storage, err := service.NewMinioService(&cfg.Minio)
	if err != nil {
		return nil, err
	}
	if err := storage.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	contracts, err := service.OpenContractRepository(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open contract repository: %w", err)
	}
	if cfg.Database.Driver == "memory" {
		slog.Warn("memory contract store is empty at startup and not persisted; contract lookups will fail until records are seeded",
			"driver", cfg.Database.Driver)
	}

	httpClient := &http.Client{Timeout: cfg.Parser.Timeout}

	pipeline := service.NewPipeline(service.PipelineDeps{
		Storage:         storage,
		Primary:         service.NewPrimaryParser(&cfg.Parser, httpClient),
		Renderer:        service.NewImageConverter(&cfg.Parser, httpClient),
		Vision:          service.NewVisionParser(&cfg.Parser, httpClient),
		Contracts:       contracts,
		SummariesPrefix: cfg.Minio.SummariesPrefix,
	})

	return &app{
		storage:   storage,
		contracts: contracts,
		pipeline:  pipeline,
	}, nil
}

func (a *app) Close() error {
	return a.contracts.Close()
}
