package main

import (
	"fmt"
	"os"

	"github.com/nurpe/staffing-contracts/internal/auth"
	"github.com/nurpe/staffing-contracts/internal/config"
	"github.com/nurpe/staffing-contracts/internal/db"
	"github.com/nurpe/staffing-contracts/internal/excel"
	httphandler "github.com/nurpe/staffing-contracts/internal/http"
	"github.com/nurpe/staffing-contracts/internal/http/middleware"
	"github.com/nurpe/staffing-contracts/internal/logger"
	"github.com/nurpe/staffing-contracts/internal/pdf"
	"github.com/nurpe/staffing-contracts/internal/registry"
	"github.com/nurpe/staffing-contracts/internal/repository"
	"github.com/nurpe/staffing-contracts/internal/service"
	"github.com/nurpe/staffing-contracts/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	contractTypes, err := registry.FromFile(cfg.Workflow.ContractTypesFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load contract types")
	}
	log.Info().Int("contract_types", len(contractTypes.IDs())).Msg("contract type registry loaded")

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	contractRepo := repository.NewContractRepository(database, cfg.Workflow.LockTimeout)
	engine := workflow.New(contractRepo, contractTypes, workflow.WithLockTimeout(cfg.Workflow.LockTimeout))

	contractService := service.NewContractService(
		engine,
		contractTypes,
		contractRepo,
		excel.NewGenerator(),
		pdf.NewGenerator(),
		log,
		service.Options{MaxRetries: cfg.Workflow.MaxRetries},
	)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(contractService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.HTTP.CORSAllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting contracts service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
