package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/spf13/cobra"
)

var useOfficialSDK bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models the configured backend currently exposes",
	Long: `By default this goes through the same BackendClient the generation
pipeline uses. Pass --sdk to instead list models via the official OpenAI Go
SDK directly, useful for sanity-checking a credential independent of this
module's own HTTP path.`,
	RunE: runModels,
}

func init() {
	modelsCmd.Flags().BoolVar(&useOfficialSDK, "sdk", false, "list via the official openai-go SDK instead of the configured backend")
}

func runModels(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if useOfficialSDK {
		return listModelsViaSDK(ctx)
	}

	backend, err := buildBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	ids, err := backend.ListModels(ctx)
	if err != nil {
		return err
	}
	printSortedModelIDs(ids)
	return nil
}

func listModelsViaSDK(ctx context.Context) error {
	client := openai.NewClient(
		option.WithAPIKey(cfg.LLM.APIKeyFallback),
		option.WithBaseURL(resolvedBaseURL()),
	)

	page, err := client.Models.List(ctx)
	if err != nil {
		return fmt.Errorf("list models via openai-go: %w", err)
	}

	ids := make(map[string]struct{}, len(page.Data))
	for _, m := range page.Data {
		ids[m.ID] = struct{}{}
	}
	printSortedModelIDs(ids)
	return nil
}

func resolvedBaseURL() string {
	if cfg.LLM.BaseURL != "" {
		return cfg.LLM.BaseURL
	}
	return "https://api.groq.com/openai/v1"
}

func printSortedModelIDs(ids map[string]struct{}) {
	names := make([]string, 0, len(ids))
	for id := range ids {
		names = append(names, id)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Println(n)
	}
}
