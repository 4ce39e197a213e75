package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/shopdesk/internal/corpus"
	"github.com/ziadkadry99/shopdesk/internal/vectordb"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Show the raw chunks retrieved for a query",
	Long:  `Runs similarity search against one corpus and prints every match with its score. Useful for tuning retrieval.min_similarity.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().String("corpus", corpus.Products, "corpus to search: products or marketing")
	searchCmd.Flags().Int("limit", 10, "maximum number of results")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("corpus")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a, err := newApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()
	r, err := a.retrieverFor(name)
	if err != nil {
		return err
	}

	results, err := r.Matches(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		return printSearchResultsJSON(results)
	}
	fmt.Print(vectordb.FormatResults(results))
	return nil
}

type searchResultJSON struct {
	Rank       int     `json:"rank"`
	ID         string  `json:"id"`
	Similarity float64 `json:"similarity"`
	Corpus     string  `json:"corpus"`
	Source     string  `json:"source,omitempty"`
	Text       string  `json:"text"`
}

func printSearchResultsJSON(results []vectordb.SearchResult) error {
	out := make([]searchResultJSON, 0, len(results))
	for i, r := range results {
		out = append(out, searchResultJSON{
			Rank:       i + 1,
			ID:         r.Document.ID,
			Similarity: float64(r.Similarity),
			Corpus:     r.Document.Metadata.Corpus,
			Source:     r.Document.Metadata.Source,
			Text:       r.Document.Content,
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
