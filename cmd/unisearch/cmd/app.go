package cmd

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/webntricks/unisearch/internal/config"
	contentSqlite "github.com/webntricks/unisearch/internal/content/sqlite"
	"github.com/webntricks/unisearch/internal/db"
	dbMemory "github.com/webntricks/unisearch/internal/db/memory"
	dbRedis "github.com/webntricks/unisearch/internal/db/redis"
	logpkg "github.com/webntricks/unisearch/internal/logger"
	"github.com/webntricks/unisearch/internal/metrics"
	openaiTransport "github.com/webntricks/unisearch/internal/transport/openai"
	"github.com/webntricks/unisearch/internal/transport/typesense"
	healthuc "github.com/webntricks/unisearch/internal/usecase/health"
	"github.com/webntricks/unisearch/internal/usecase/querycache"
	schemauc "github.com/webntricks/unisearch/internal/usecase/schema"
	searchuc "github.com/webntricks/unisearch/internal/usecase/search"
	syncuc "github.com/webntricks/unisearch/internal/usecase/sync"
)

// app is the composition root shared by the serve, health, and backfill
// commands.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	store     db.Store
	index     *typesense.Client
	content   *contentSqlite.Store
	assistant *openaiTransport.Assistant
	cache     *querycache.Cache
	schema    *schemauc.Service
	sync      *syncuc.Service
	search    *searchuc.Service
	health    *healthuc.Service
}

func buildApp() (*app, error) {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	metrics.Register()

	// Query cache store: Redis when addresses are configured, otherwise an
	// in-process LRU bounded by the longest entry TTL.
	var store db.Store
	if len(cfg.Cache.RedisAddrs) > 0 {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.RedisAddrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis store: %w", err)
		}
	} else {
		store = dbMemory.NewStore(cfg.Cache.MemorySize, querycache.TTLImage)
	}

	index := typesense.New(typesense.Config{
		Host:       cfg.Typesense.Host,
		Port:       cfg.Typesense.Port,
		Protocol:   cfg.Typesense.Protocol,
		APIKey:     cfg.Typesense.APIKey,
		Collection: cfg.Typesense.Collection,
		Timeout:    time.Duration(cfg.Typesense.TimeoutSec) * time.Second,
	}, logger)

	contentStore, err := contentSqlite.Open(cfg.Content.DSN)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open content store: %w", err)
	}

	assistant := openaiTransport.New(openaiTransport.Config{
		APIKey: cfg.OpenAI.APIKey,
		Model:  cfg.OpenAI.Model,
		Logger: logger,
	})

	schemaSvc := schemauc.New(index, cfg.Typesense.Collection, logger)
	syncSvc := syncuc.New(index, schemaSvc, contentStore, syncuc.Options{
		Types:       cfg.Index.Types,
		PageSize:    cfg.Index.PageSize,
		BatchSize:   cfg.Index.BatchSize,
		ResyncDelay: time.Duration(cfg.Index.ResyncDelaySec) * time.Second,
	}, logger)

	fallback := searchuc.NewFallback(contentStore, syncSvc, logger)
	searchSvc := searchuc.New(index, schemaSvc, syncSvc, fallback, logger)

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		index:     index,
		content:   contentStore,
		assistant: assistant,
		cache:     querycache.New(store, cfg.Cache.KeyPrefix, logger),
		schema:    schemaSvc,
		sync:      syncSvc,
		search:    searchSvc,
		health:    healthuc.New(index, schemaSvc, contentStore),
	}, nil
}

func (a *app) close() {
	if err := a.content.Close(); err != nil {
		a.logger.Warn("closing content store", zap.Error(err))
	}
	a.store.Close()
	_ = a.logger.Sync()
}
