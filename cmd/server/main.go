package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/warblehq/warble/internal/api"
	"github.com/warblehq/warble/internal/config"
	"github.com/warblehq/warble/store"
	dynamostore "github.com/warblehq/warble/store/dynamo"
	"github.com/warblehq/warble/store/memory"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	storageType := flag.String("storage", "", "storage backend: memory or dynamo (overrides config)")
	addr := flag.String("addr", "", "listen address (overrides config)")
	bootstrap := flag.Bool("bootstrap", false, "create DynamoDB tables on startup")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	if *storageType != "" {
		cfg.Storage = *storageType
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := buildStore(ctx, cfg, *bootstrap)
	if err != nil {
		logger.Error("init storage", "error", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Mount("/", api.NewRouter(st, logger))

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}()

	logger.Info("starting server", "addr", cfg.Addr, "storage", cfg.Storage)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func buildStore(ctx context.Context, cfg config.Config, bootstrap bool) (store.Store, error) {
	limits := store.Limits{
		MaxPostContent:    cfg.Limits.MaxPostContent,
		MaxCommentContent: cfg.Limits.MaxCommentContent,
	}

	if cfg.Storage == "memory" {
		return memory.New(limits), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Dynamo.Region))
	if err != nil {
		return nil, err
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Dynamo.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Dynamo.Endpoint)
		}
	})

	st := dynamostore.New(client, dynamostore.Config{
		UsersTable:    cfg.Dynamo.UsersTable,
		PostsTable:    cfg.Dynamo.PostsTable,
		CommentsTable: cfg.Dynamo.CommentsTable,
		Limits:        limits,
	})
	if bootstrap {
		if err := st.EnsureTables(ctx); err != nil {
			return nil, err
		}
	}
	return st, nil
}
