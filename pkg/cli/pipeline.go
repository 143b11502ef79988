package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/inbox-lab/autoreply/pkg/cli/config"
	"github.com/inbox-lab/autoreply/pkg/domain/interfaces"
	"github.com/inbox-lab/autoreply/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// pipelineConfig groups the config structs every pipeline-driving command
// shares. Flags() concatenates their flags; Configure() assembles the
// usecase layer from them.
type pipelineConfig struct {
	app    config.AppConfig
	gemini config.Gemini
	index  config.Index
	cache  config.Cache
	gmail  config.Gmail
}

func (p *pipelineConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, p.app.Flags()...)
	flags = append(flags, p.gemini.Flags()...)
	flags = append(flags, p.index.Flags()...)
	flags = append(flags, p.cache.Flags()...)
	flags = append(flags, p.gmail.Flags()...)
	return flags
}

// Configure builds the pipeline and its collaborators. The returned closer
// releases backend connections and must run after the last use.
func (p *pipelineConfig) Configure(ctx context.Context) (*usecase.UseCases, interfaces.VectorIndex, func(), error) {
	if err := p.app.Load(); err != nil {
		return nil, nil, nil, goerr.Wrap(err, "failed to load application config")
	}

	llmClient, err := p.gemini.Configure(ctx)
	if err != nil {
		return nil, nil, nil, goerr.Wrap(err, "failed to configure LLM client")
	}

	index, closeIndex, err := p.index.Configure(ctx, llmClient)
	if err != nil {
		return nil, nil, nil, goerr.Wrap(err, "failed to configure vector index")
	}

	cacheSvc, closeCache, err := p.cache.Configure(ctx)
	if err != nil {
		closeIndex()
		return nil, nil, nil, goerr.Wrap(err, "failed to configure cache")
	}

	transport, err := p.gmail.Configure(ctx)
	if err != nil {
		closeCache()
		closeIndex()
		return nil, nil, nil, goerr.Wrap(err, "failed to configure mail transport")
	}

	opts, err := p.app.UsecaseOptions()
	if err != nil {
		closeCache()
		closeIndex()
		return nil, nil, nil, goerr.Wrap(err, "failed to apply application config")
	}
	opts = append(opts,
		usecase.WithVectorIndex(index),
		usecase.WithCache(cacheSvc),
	)
	if llmClient != nil {
		opts = append(opts, usecase.WithLLMClient(llmClient))
	}
	if transport != nil {
		opts = append(opts, usecase.WithMailTransport(transport))
	}

	closer := func() {
		closeCache()
		closeIndex()
	}
	return usecase.New(opts...), index, closer, nil
}
