// Copyright 2025 Series Automation Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main is the entry point for the storyline analysis server.
//
// The application runs a Gin web server exposing a REST API for submitting
// videos from a shared directory for storyline analysis and polling the
// results. The server is instrumented with OpenTelemetry for logging,
// tracing, and metrics.
//
// Analysis itself runs asynchronously: an accepted request spawns a
// workflow goroutine and returns a task id immediately; clients poll the
// status endpoint until the job settles. Completed results are persisted to
// disk and survive restarts.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/i-kohan/series-automation/internal/telemetry"
)

// main orchestrates the setup of logging, telemetry, configuration, the
// application state, the web server, and graceful shutdown.
func main() {
	telemetry.SetupLogging()
	slog.Info("logging initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := GetConfig()

	shutdownTelemetry, err := telemetry.SetupOpenTelemetry(ctx, cfg)
	if err != nil {
		slog.Error("failed to set up OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("tracing initialized")

	InitState(ctx)
	slog.Info("state initialized")

	r := gin.Default()
	r.Use(otelgin.Middleware(cfg.Application.Name))
	r.Use(cors.Default())

	apiV1 := r.Group("/api/v1")
	{
		AnalysisRouter(apiV1)
		VideoRouter(apiV1)
	}

	srv := &http.Server{
		Addr:    cfg.Application.ListenAddr,
		Handler: r,
		// No WriteTimeout: video streaming responses can legitimately run
		// longer than any fixed budget.
		ReadTimeout: 20 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to listen", "error", err)
		}
	}()
	slog.Info("server ready", "addr", cfg.Application.ListenAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		slog.Error("telemetry shutdown failed", "error", err)
	}

	log.Println("server exiting")
}
