package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/inbox-lab/autoreply/pkg/cli/config"
	"github.com/inbox-lab/autoreply/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdReindex() *cli.Command {
	var geminiCfg config.Gemini
	var indexCfg config.Index
	var policyCfg config.Policy

	var flags []cli.Flag
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, indexCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:  "reindex",
		Usage: "Rebuild the vector index from the policy corpus",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			loader := policyCfg.Loader()
			if loader == nil {
				return goerr.New("policy-dir is required for reindex")
			}

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return err
			}
			if llmClient == nil {
				return goerr.New("gemini-project is required for reindex, fragments must be embedded")
			}

			index, closer, err := indexCfg.Configure(ctx, llmClient)
			if err != nil {
				return err
			}
			defer closer()

			count, err := loader.Reindex(ctx, index)
			if err != nil {
				return err
			}

			logging.Default().Info("Reindex complete", "fragments", count)
			return nil
		},
	}
}
