package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/raseedhq/raseed/internal/config"
	raseedHttp "github.com/raseedhq/raseed/internal/http"
	assistantHandler "github.com/raseedhq/raseed/internal/http/assistant"
	authHandler "github.com/raseedhq/raseed/internal/http/auth"
	receiptHandler "github.com/raseedhq/raseed/internal/http/receipt"
	"github.com/raseedhq/raseed/internal/identity"
	"github.com/raseedhq/raseed/internal/llm"
	"github.com/raseedhq/raseed/internal/receipt"
	receiptStore "github.com/raseedhq/raseed/internal/receipt/store"
	"github.com/raseedhq/raseed/internal/token"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := receiptStore.Open(cfg.Server.DBPath)
	if err != nil {
		slog.Error("failed to open receipt store", "path", cfg.Server.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	var (
		issuer         = token.NewIssuer(cfg.JWT.Secret, cfg.JWT.TTL)
		receiptService = receipt.NewService(store)
	)

	var (
		authH      = authHandler.NewHandler(identity.InsecureVerifier{}, issuer)
		receiptH   = receiptHandler.NewHandler(receiptService, llm.LocalExtractor{})
		assistantH = assistantHandler.NewHandler(receiptService, llm.LocalAssistant{})
	)

	router := raseedHttp.New(raseedHttp.RequireAuth(issuer), authH, receiptH, assistantH, cfg.Server.FrontendURL)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "addr", addr, "db", cfg.Server.DBPath)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
