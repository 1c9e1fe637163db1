package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"almacen-backend/internal/config"
	"almacen-backend/internal/database"
	"almacen-backend/internal/logger"
	"almacen-backend/internal/server"
	"almacen-backend/internal/sheets"
)

var log = logger.Log

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		log.Fatalf("LOG_LEVEL inválido %q: %v", cfg.LogLevel, err)
	}

	if err := database.Init(cfg); err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	if err := store.EnsureSheets(ctx, sheets.Headers); err != nil {
		log.Fatalf("No se pudieron preparar las hojas: %v", err)
	}

	app, err := server.New(cfg, store)
	if err != nil {
		log.Fatal(err)
	}

	go func() {
		log.Infof("Servidor escuchando en el puerto %s (planilla: %s)", cfg.HTTPPort, store.Name())
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			log.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Apagando servidor...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Errorf("Error al apagar: %v", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (sheets.Store, error) {
	if cfg.SheetsBackend == config.BackendGoogle {
		gs, err := sheets.NewGoogleStore(ctx, cfg.SpreadsheetID, cfg.CredentialsFile, cfg.SheetsRPS)
		if err != nil {
			return nil, err
		}
		return gs, nil
	}
	xs, err := sheets.OpenXLSX(cfg.XLSXPath)
	if err != nil {
		return nil, err
	}
	return xs, nil
}
