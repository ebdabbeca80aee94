// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"log"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/AleutianAI/AleutianStandards/pkg/logging"
	"github.com/AleutianAI/AleutianStandards/services/ingestor/csp"
	"github.com/AleutianAI/AleutianStandards/services/ingestor/handlers"
	"github.com/AleutianAI/AleutianStandards/services/ingestor/observability"
	"github.com/AleutianAI/AleutianStandards/services/ingestor/store"
)

// initTracer wires the OTLP exporter when a collector endpoint is
// configured. Without one the service runs untraced.
func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		slog.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set, tracing disabled")
		return func(context.Context) {}, nil
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("standards-ingestor")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// secretOrEnv reads a value from the environment, falling back to a
// container secret file.
func secretOrEnv(envKey, secretPath string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	data, err := os.ReadFile(secretPath)
	if err != nil {
		return ""
	}
	slog.Info("read secret from file", "env_key", envKey, "path", secretPath)
	return strings.TrimSpace(string(data))
}

func main() {
	port := os.Getenv("INGESTOR_PORT")
	if port == "" {
		port = "12230"
	}

	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(os.Getenv("LOG_LEVEL")),
		LogDir:  os.Getenv("LOG_DIR"),
		Service: "ingestor",
		JSON:    true,
	})
	defer logger.Close()
	logger.SetAsDefault()

	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	metrics := observability.InitMetrics()

	// --- Weaviate ---
	weaviateURL := strings.Trim(os.Getenv("WEAVIATE_SERVICE_URL"), "\"' ")
	if weaviateURL == "" {
		log.Fatal("WEAVIATE_SERVICE_URL not set")
	}
	parsedURL, err := url.Parse(weaviateURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		log.Fatalf("WEAVIATE_SERVICE_URL is invalid: %q", weaviateURL)
	}
	weaviateClient, err := weaviate.NewClient(weaviate.Config{
		Host:   parsedURL.Host,
		Scheme: parsedURL.Scheme,
	})
	if err != nil {
		log.Fatalf("failed to create Weaviate client: %v", err)
	}
	if err := store.EnsureSchema(context.Background(), weaviateClient); err != nil {
		log.Fatalf("failed to ensure Weaviate schema: %v", err)
	}

	// --- Embedder ---
	openaiKey := secretOrEnv("OPENAI_API_KEY", "/run/secrets/openai_api_key")
	embedder, err := store.NewOpenAIEmbedder(openaiKey, os.Getenv("EMBEDDING_MODEL_NAME"))
	if err != nil {
		log.Fatalf("failed to initialize embedder: %v", err)
	}

	recordStore := store.NewStore(weaviateClient, embedder)

	// --- CSP client (optional: inline ingestion works without it) ---
	var downloader handlers.SetDownloader
	cspKey := secretOrEnv("CSP_API_KEY", "/run/secrets/csp_api_key")
	if cspKey != "" {
		cspClient, err := csp.NewClient(csp.Config{
			APIKey:  cspKey,
			BaseURL: os.Getenv("CSP_BASE_URL"),
			DataDir: os.Getenv("STANDARDS_DATA_DIR"),
		})
		if err != nil {
			log.Fatalf("failed to create CSP client: %v", err)
		}
		downloader = cspClient
	} else {
		slog.Warn("CSP_API_KEY not set, ingest requests must carry the set inline")
	}

	h := handlers.NewHandlers(recordStore, downloader, metrics)

	router := gin.Default()
	router.Use(otelgin.Middleware("standards-ingestor"))

	v1 := router.Group("/v1")
	handlers.RegisterRoutes(v1, h)
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	slog.Info("starting the ingestor server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
