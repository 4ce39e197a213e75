package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/shopdesk/internal/progress"
	"github.com/ziadkadry99/shopdesk/internal/retriever"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the product and marketing indexes now",
	Long: `Chunks and embeds both corpora up front instead of on the first question.
With vector_dir set the indexes persist, and later runs reuse them without
re-reading the source files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(progress.NewReporter())
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := context.Background()
		for _, r := range []*retriever.Retriever{a.products, a.marketing} {
			n, err := r.Warm(ctx)
			if err != nil {
				return fmt.Errorf("ingesting %s: %w", r.Corpus(), err)
			}
			fmt.Printf("%s: %d chunks indexed\n", r.Corpus(), n)
		}

		if a.cfg.VectorDir == "" {
			logf("vector_dir is empty; indexes were built in memory and are not kept.\n")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
