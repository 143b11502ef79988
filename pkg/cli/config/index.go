package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/inbox-lab/autoreply/pkg/domain/interfaces"
	firestoreindex "github.com/inbox-lab/autoreply/pkg/index/firestore"
	memoryindex "github.com/inbox-lab/autoreply/pkg/index/memory"
	"github.com/inbox-lab/autoreply/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// Index holds vector index backend configuration
type Index struct {
	backend             string
	firestoreProject    string
	firestoreDatabase   string
	firestoreCollection string
}

// Flags returns CLI flags for index configuration
func (x *Index) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "index-backend",
			Usage:       "Vector index backend (memory, firestore)",
			Value:       "memory",
			Sources:     cli.EnvVars("AUTOREPLY_INDEX_BACKEND"),
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project",
			Usage:       "Google Cloud project ID for the Firestore index",
			Sources:     cli.EnvVars("AUTOREPLY_FIRESTORE_PROJECT"),
			Destination: &x.firestoreProject,
		},
		&cli.StringFlag{
			Name:        "firestore-database",
			Usage:       "Firestore database ID (empty for the default database)",
			Sources:     cli.EnvVars("AUTOREPLY_FIRESTORE_DATABASE"),
			Destination: &x.firestoreDatabase,
		},
		&cli.StringFlag{
			Name:        "firestore-collection",
			Usage:       "Firestore collection holding policy fragments",
			Value:       "fragments",
			Sources:     cli.EnvVars("AUTOREPLY_FIRESTORE_COLLECTION"),
			Destination: &x.firestoreCollection,
		},
	}
}

// Configure builds the vector index. The returned closer releases backend
// connections.
func (x *Index) Configure(ctx context.Context, llmClient gollem.LLMClient) (interfaces.VectorIndex, func(), error) {
	closer := func() {}

	switch x.backend {
	case "memory", "":
		return memoryindex.New(llmClient), closer, nil

	case "firestore":
		if x.firestoreProject == "" {
			return nil, nil, goerr.New("firestore-project is required for the firestore index backend")
		}
		index, err := firestoreindex.New(ctx, x.firestoreProject, x.firestoreDatabase, llmClient,
			firestoreindex.WithCollection(x.firestoreCollection))
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create firestore index")
		}
		closer = func() {
			safe.Close(ctx, index)
		}
		return index, closer, nil

	default:
		return nil, nil, goerr.New("unknown index backend", goerr.V("backend", x.backend))
	}
}
