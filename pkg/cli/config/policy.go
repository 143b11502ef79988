package config

import (
	"github.com/inbox-lab/autoreply/pkg/service/policy"
	"github.com/urfave/cli/v3"
)

// Policy holds policy corpus configuration
type Policy struct {
	dir          string
	chunkSize    int64
	chunkOverlap int64
}

// Flags returns CLI flags for the policy corpus
func (p *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy-dir",
			Usage:       "Directory of markdown policy documents",
			Sources:     cli.EnvVars("AUTOREPLY_POLICY_DIR"),
			Destination: &p.dir,
		},
		&cli.Int64Flag{
			Name:        "policy-chunk-size",
			Usage:       "Maximum policy chunk size in runes",
			Value:       1000,
			Sources:     cli.EnvVars("AUTOREPLY_POLICY_CHUNK_SIZE"),
			Destination: &p.chunkSize,
		},
		&cli.Int64Flag{
			Name:        "policy-chunk-overlap",
			Usage:       "Overlap between consecutive policy chunks in runes",
			Value:       200,
			Sources:     cli.EnvVars("AUTOREPLY_POLICY_CHUNK_OVERLAP"),
			Destination: &p.chunkOverlap,
		},
	}
}

// IsConfigured reports whether a policy directory was provided
func (p *Policy) IsConfigured() bool {
	return p.dir != ""
}

// Loader builds the corpus loader, or nil when no directory is configured
func (p *Policy) Loader() *policy.Loader {
	if !p.IsConfigured() {
		return nil
	}
	return policy.NewLoader(p.dir, policy.NewSplitter(int(p.chunkSize), int(p.chunkOverlap)))
}
