package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/canopy"
	redisAdapter "github.com/aretw0/canopy/pkg/adapters/redis"
	backend "github.com/redis/go-redis/v9"
)

// RunOptions carries the effective command-line options for a survey run.
type RunOptions struct {
	WorkspacePath string
	Pane          string
	Debug         bool
	Watch         bool
	Quiet         bool
	LogLevel      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Lock          bool
}

// applyConfig fills options the user left unset from the workspace config
// file. Flags always win; Redis settings are taken as a block so a flag
// address is never mixed with a file password.
func applyConfig(opts *RunOptions, cfg Config) {
	if opts.Pane == "" {
		opts.Pane = cfg.Pane
	}
	if opts.LogLevel == "" {
		opts.LogLevel = cfg.LogLevel
	}
	if opts.RedisAddr == "" && cfg.Redis.Address != "" {
		opts.RedisAddr = cfg.Redis.Address
		opts.RedisPassword = cfg.Redis.Password
		opts.RedisDB = cfg.Redis.DB
		opts.Lock = opts.Lock || cfg.Redis.Lock
	}
}

// createSurveyor builds the surveyor for the given options. The returned
// cleanup function releases any backing connections and must be called
// even when the surveyor itself is closed.
func createSurveyor(opts RunOptions, logger *slog.Logger) (*canopy.Surveyor, func(), error) {
	cleanup := func() {}

	surveyorOpts := []canopy.Option{
		canopy.WithLogger(logger),
	}
	if opts.Pane != "" {
		surveyorOpts = append(surveyorOpts, canopy.WithPane(opts.Pane))
	}
	if opts.Debug {
		surveyorOpts = append(surveyorOpts, canopy.WithLifecycleHooks(createDebugHooks(logger)))
	}

	if opts.RedisAddr != "" {
		client := backend.NewClient(&backend.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		cleanup = func() { client.Close() }

		surveyorOpts = append(surveyorOpts, canopy.WithSink(redisAdapter.NewFromClient(client)))
		if opts.Lock {
			surveyorOpts = append(surveyorOpts, canopy.WithLocker(redisAdapter.NewLocker(client, "canopy:")))
		}
	}

	srv, err := canopy.New(opts.WorkspacePath, surveyorOpts...)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("error initializing surveyor: %w", err)
	}
	return srv, cleanup, nil
}
