package cli

import (
	"context"
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/inbox-lab/autoreply/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdRun() *cli.Command {
	var runID string
	var pipelineCfg pipelineConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "run-id",
			Usage:       "Identifier for this run (generated when omitted)",
			Sources:     cli.EnvVars("AUTOREPLY_RUN_ID"),
			Destination: &runID,
		},
	}
	flags = append(flags, pipelineCfg.Flags()...)

	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Execute one batch run over unread emails",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, _, closer, err := pipelineCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer closer()

			if runID == "" {
				runID = newRunID()
			}

			result := uc.RunBatch(ctx, runID)

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return goerr.Wrap(err, "failed to print run result")
			}

			if !result.Success {
				return goerr.New("run failed", goerr.V("last_error", result.LastError))
			}
			return nil
		},
	}
}

// newRunID returns a time-ordered run identifier
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		logging.Default().Warn("failed to generate UUIDv7, falling back to v4", "error", err)
		return uuid.NewString()
	}
	return id.String()
}
