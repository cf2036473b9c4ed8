package cli

import (
	"context"
	"errors"
	"fmt"

	redisAdapter "github.com/aretw0/canopy/pkg/adapters/redis"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/report"
)

// RunShow prints the current contents of a pane. It requires a shared
// Redis sink; a one-shot process keeps no pane state of its own.
func RunShow(opts RunOptions) error {
	cfg, err := LoadConfig(opts.WorkspacePath)
	if err != nil {
		return err
	}
	applyConfig(&opts, cfg)

	if opts.RedisAddr == "" {
		return errors.New("pane inspection needs a shared sink: pass --redis or set redis.address in canopy.yaml")
	}

	sink := redisAdapter.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	defer sink.Close()

	name := opts.Pane
	if name == "" {
		name = report.DefaultPaneName
	}

	text, err := sink.Contents(context.Background(), name)
	if errors.Is(err, domain.ErrPaneNotFound) {
		return fmt.Errorf("pane %q not found", name)
	}
	if err != nil {
		return fmt.Errorf("failed to read pane: %w", err)
	}
	fmt.Print(text)
	return nil
}
