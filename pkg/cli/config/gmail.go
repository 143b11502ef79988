package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/inbox-lab/autoreply/pkg/domain/interfaces"
	"github.com/inbox-lab/autoreply/pkg/service/gmail"
	"github.com/urfave/cli/v3"
)

// Gmail holds mail transport configuration
type Gmail struct {
	credentialsPath string
	tokenPath       string
	handledLabel    string
}

// Flags returns CLI flags for Gmail configuration
func (g *Gmail) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gmail-credentials",
			Usage:       "Path to the Gmail OAuth client secret file",
			Sources:     cli.EnvVars("AUTOREPLY_GMAIL_CREDENTIALS"),
			Destination: &g.credentialsPath,
		},
		&cli.StringFlag{
			Name:        "gmail-token",
			Usage:       "Path to the saved Gmail OAuth token file",
			Sources:     cli.EnvVars("AUTOREPLY_GMAIL_TOKEN"),
			Destination: &g.tokenPath,
		},
		&cli.StringFlag{
			Name:        "gmail-handled-label",
			Usage:       "Gmail label marking emails already handled",
			Value:       "autoreply-handled",
			Sources:     cli.EnvVars("AUTOREPLY_GMAIL_HANDLED_LABEL"),
			Destination: &g.handledLabel,
		},
	}
}

// IsConfigured reports whether both credential files were provided
func (g *Gmail) IsConfigured() bool {
	return g.credentialsPath != "" && g.tokenPath != ""
}

// Configure creates the Gmail transport. Returns nil when not configured so
// callers can decide whether the transport is required.
func (g *Gmail) Configure(ctx context.Context) (interfaces.MailTransport, error) {
	if !g.IsConfigured() {
		return nil, nil
	}

	client, err := gmail.New(ctx, g.credentialsPath, g.tokenPath, g.handledLabel)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gmail client")
	}

	return client, nil
}
