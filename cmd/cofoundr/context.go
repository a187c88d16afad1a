package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"cofoundr/api"
	"cofoundr/artifacts"
	"cofoundr/client"
	"cofoundr/config"
	"cofoundr/events"
	"cofoundr/state"
	"cofoundr/workflow"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type globalFlags struct {
	config   string
	baseURL  string
	timeout  time.Duration
	logLevel string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error

	mu     sync.Mutex
	logger *zap.Logger
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig loads the layered configuration once and applies flags last
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if v := strings.TrimSpace(c.flags.baseURL); v != "" {
			cfg.BaseURL = v
		}
		if c.flags.timeout > 0 {
			cfg.Timeout = c.flags.timeout
		}
		if v := strings.TrimSpace(c.flags.logLevel); v != "" {
			cfg.LogLevel = v
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = fmt.Errorf("invalid configuration: %w", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the process logger. toFile sends output to the
// configured log file instead of stderr.
func (c *commandContext) ensureLogger(toFile bool) (*zap.Logger, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.logger != nil {
		return c.logger, nil
	}

	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	file := ""
	if toFile {
		file = cfg.LogFile
	}
	logger, err := config.NewLogger(cfg.LogLevel, file)
	if err != nil {
		return nil, err
	}
	c.logger = logger
	return logger, nil
}

func (c *commandContext) syncLogger() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

// app wires one workflow: client, store, runner and their infrastructure
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     *state.Store
	client    *client.Client
	runner    *workflow.Runner
	artifacts artifacts.Store
	registry  *prometheus.Registry
	metrics   *api.Metrics
	events    *events.Publisher
}

// newApp builds the workflow stack. A nil notifier logs notifications.
func (c *commandContext) newApp(ctx context.Context, logger *zap.Logger, notifier workflow.Notifier) (*app, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	store, err := newArtifactStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	metrics := api.NewMetrics(registry)

	cl := client.New(cfg.BaseURL,
		client.WithTimeout(cfg.Timeout),
		client.WithArtifacts(store),
		client.WithObserver(metrics),
		client.WithLogger(logger.Named("client")),
	)

	workflowStore := state.NewStore()
	metrics.Track(workflowStore)

	publisher, err := events.Connect(events.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	}, workflowStore, logger.Named("events"))
	if err != nil {
		return nil, err
	}
	publisher.Start(ctx)

	runner := workflow.NewRunner(cl, workflowStore,
		workflow.WithNotifier(notifier),
		workflow.WithLogger(logger.Named("workflow")),
	)

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     workflowStore,
		client:    cl,
		runner:    runner,
		artifacts: store,
		registry:  registry,
		metrics:   metrics,
		events:    publisher,
	}, nil
}

func (a *app) Close() {
	if err := a.events.Close(); err != nil {
		a.logger.Warn("failed to close event publisher", zap.Error(err))
	}
}

func newArtifactStore(ctx context.Context, cfg *config.Config) (artifacts.Store, error) {
	if cfg.S3.Bucket == "" {
		return artifacts.NewLocalStore(cfg.ArtifactDir), nil
	}
	s3Store, err := artifacts.NewS3Store(ctx, artifacts.S3Config{
		Bucket:        cfg.S3.Bucket,
		Prefix:        cfg.S3.Prefix,
		Region:        cfg.S3.Region,
		Profile:       cfg.S3.Profile,
		UsePathStyle:  cfg.S3.PathStyle,
		PresignExpiry: cfg.S3.PresignExpiry,
	})
	if err != nil {
		return nil, err
	}
	return s3Store, nil
}
