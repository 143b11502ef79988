package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
)

func cmdStatus() *cli.Command {
	var pipelineCfg pipelineConfig

	return &cli.Command{
		Name:  "status",
		Usage: "Show collaborator readiness and cache/index statistics",
		Flags: pipelineCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, _, closer, err := pipelineCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer closer()

			status := uc.Status(ctx)

			bold := color.New(color.Bold)
			bold.Println("Components")
			printReady("Mail transport", status.TransportReady)
			printReady("Vector index", status.IndexReady)
			printReady("LLM client", status.LLMReady)
			printReady("Cache", status.CacheReady)

			fmt.Println()
			bold.Println("Vector index")
			fmt.Printf("  fragments: %d\n", status.Index.Count)

			fmt.Println()
			bold.Println("Cache")
			fmt.Printf("  hits: %d  misses: %d  volatile entries: %d\n",
				status.Cache.Hits, status.Cache.Misses, status.Cache.VolatileEntries)
			printReady("Durable tier", status.Cache.DurableAvailable)

			return nil
		},
	}
}

func printReady(name string, ready bool) {
	if ready {
		fmt.Printf("  %-16s %s\n", name, color.GreenString("ready"))
		return
	}
	fmt.Printf("  %-16s %s\n", name, color.YellowString("unavailable"))
}
