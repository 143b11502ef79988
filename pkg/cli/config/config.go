package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/inbox-lab/autoreply/pkg/domain/model"
	"github.com/inbox-lab/autoreply/pkg/domain/types"
	"github.com/inbox-lab/autoreply/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// AppConfig is the TOML application configuration: intent keyword profiles
// plus reply and retrieval tuning. Every section is optional; the built-in
// defaults apply where a section is absent.
type AppConfig struct {
	Intents   []IntentConfig  `toml:"intent"`
	Reply     ReplyConfig     `toml:"reply"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Batch     BatchConfig     `toml:"batch"`

	path string
}

// IntentConfig overrides the keyword set for one intent
type IntentConfig struct {
	ID       string   `toml:"id"`
	Keywords []string `toml:"keywords"`
}

// ReplyConfig tunes reply generation
type ReplyConfig struct {
	Tone      string `toml:"tone"`
	MaxLength int    `toml:"max_length"`
	MinLength int    `toml:"min_length"`
}

// RetrievalConfig tunes policy retrieval
type RetrievalConfig struct {
	SearchTopK   int `toml:"search_top_k"`
	MaxFragments int `toml:"max_fragments"`
}

// BatchConfig tunes the batch run
type BatchConfig struct {
	Size int `toml:"size"`
}

// Flags returns CLI flags for the application configuration
func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the TOML application configuration",
			Sources:     cli.EnvVars("AUTOREPLY_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Load reads and validates the configured TOML file. Without a configured
// path the zero config is returned, which maps to the built-in defaults.
func (a *AppConfig) Load() error {
	if a.path == "" {
		return nil
	}

	data, err := os.ReadFile(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return goerr.Wrap(ErrConfigNotFound, "failed to read config", goerr.V("path", a.path))
		}
		return goerr.Wrap(err, "failed to read config file", goerr.V("path", a.path))
	}

	if err := toml.Unmarshal(data, a); err != nil {
		return goerr.Wrap(ErrInvalidConfig, err.Error(), goerr.V("path", a.path))
	}

	return a.Validate()
}

// Validate checks intent profiles and numeric limits
func (a *AppConfig) Validate() error {
	seen := make(map[string]bool, len(a.Intents))
	for _, in := range a.Intents {
		if _, err := types.ParseIntent(in.ID); err != nil {
			return goerr.Wrap(ErrUnknownIntent, in.ID)
		}
		if seen[in.ID] {
			return goerr.Wrap(ErrDuplicateIntent, in.ID)
		}
		seen[in.ID] = true
		if len(in.Keywords) == 0 {
			return goerr.Wrap(ErrEmptyKeywordSet, in.ID)
		}
	}

	if a.Reply.MaxLength < 0 || a.Reply.MinLength < 0 ||
		(a.Reply.MaxLength > 0 && a.Reply.MinLength > a.Reply.MaxLength) {
		return goerr.Wrap(ErrInvalidReplySize, "",
			goerr.V("max", a.Reply.MaxLength),
			goerr.V("min", a.Reply.MinLength),
		)
	}

	return nil
}

// IntentRegistry builds the registry from the configured profiles, falling
// back to the defaults when no [[intent]] sections are present. Configured
// profiles replace the defaults entirely, in declaration order.
func (a *AppConfig) IntentRegistry() (*model.IntentRegistry, error) {
	if len(a.Intents) == 0 {
		return model.DefaultIntentRegistry(), nil
	}

	profiles := make([]model.IntentProfile, 0, len(a.Intents))
	for _, in := range a.Intents {
		intent, err := types.ParseIntent(in.ID)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, model.IntentProfile{
			Intent:   intent,
			Keywords: in.Keywords,
		})
	}

	return model.NewIntentRegistry(profiles)
}

// UsecaseOptions maps the configuration to pipeline options
func (a *AppConfig) UsecaseOptions() ([]usecase.Option, error) {
	registry, err := a.IntentRegistry()
	if err != nil {
		return nil, err
	}

	opts := []usecase.Option{
		usecase.WithIntentRegistry(registry),
	}
	if a.Reply.Tone != "" {
		opts = append(opts, usecase.WithTone(a.Reply.Tone))
	}
	if a.Reply.MaxLength > 0 || a.Reply.MinLength > 0 {
		opts = append(opts, usecase.WithReplyLimits(a.Reply.MaxLength, a.Reply.MinLength))
	}
	if a.Retrieval.SearchTopK > 0 {
		opts = append(opts, usecase.WithSearchTopK(a.Retrieval.SearchTopK))
	}
	if a.Retrieval.MaxFragments > 0 {
		opts = append(opts, usecase.WithMaxFragments(a.Retrieval.MaxFragments))
	}
	if a.Batch.Size > 0 {
		opts = append(opts, usecase.WithBatchSize(a.Batch.Size))
	}

	return opts, nil
}
