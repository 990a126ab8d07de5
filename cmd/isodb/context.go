package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"isodb/internal/config"
	"isodb/internal/isodb"
	"isodb/internal/library"
	"isodb/internal/logging"
	"isodb/internal/manifest"
)

type commandContext struct {
	configFlag *string
	runID      string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		runID:      uuid.NewString(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("create logger: %w", err)
			return
		}
		c.logger = logger.With(logging.String(logging.FieldRunID, c.runID))
	})
	return c.logger, c.loggerErr
}

// runContext tags the command's context with the invocation run id.
func (c *commandContext) runContext(cmd *cobra.Command) context.Context {
	return logging.WithRunID(cmd.Context(), c.runID)
}

func (c *commandContext) newClient() (*isodb.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.API.TimeoutSeconds) * time.Second
	return isodb.New(cfg.API.Host, cfg.API.UserAgent, timeout, isodb.WithLogger(logger))
}

func (c *commandContext) withManifest(fn func(*manifest.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := manifest.Open(cfg.Paths.ManifestPath)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// withMirror runs fn with a library mirror backed by the API client and the
// manifest.
func (c *commandContext) withMirror(fn func(*library.Mirror) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	client, err := c.newClient()
	if err != nil {
		return err
	}
	return c.withManifest(func(store *manifest.Store) error {
		mirror, err := library.New(cfg, client, library.WithManifest(store), library.WithLogger(logger))
		if err != nil {
			return err
		}
		return fn(mirror)
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
