package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/DrugRx-Intelligence/internal/application/assistant"
	"github.com/turtacn/DrugRx-Intelligence/internal/intelligence/llm"
)

func newAskCommand(opts *RootOptions) *cobra.Command {
	var (
		language string
		drugList []string
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question from the terminal",
		Long:  "Ask runs one full pipeline turn without the HTTP server and prints\nthe answer bubbles with the response emotion.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}

			repo, closeStore := connectStore(cfg, log)
			defer closeStore()

			client, err := llm.NewClient(cfg.LLM, log.Named("llm"))
			if err != nil {
				return err
			}

			cache := assistant.NewLookupCache()
			assembler := assistant.NewAssembler(
				assistant.NewExtractor(client, log.Named("extractor")),
				assistant.NewDrugResolver(repo, cache, log.Named("resolver")),
				assistant.NewIngredientResolver(client, repo, cache, log.Named("ingredients")),
				assistant.NewInteractionChecker(repo, cache, log.Named("interactions")),
				log.Named("assembler"),
			)
			service := assistant.NewService(assembler, client, cache, assistant.NopMetrics{}, log.Named("assistant"))

			resp := service.Chat(cmd.Context(), assistant.ChatRequest{
				Message:  strings.Join(args, " "),
				Language: language,
				DrugList: drugList,
			})

			for _, message := range resp.Messages {
				fmt.Fprintln(cmd.OutOrStdout(), message)
				fmt.Fprintln(cmd.OutOrStdout())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[emotion: %s]\n", resp.Emotion)
			if resp.Degraded {
				fmt.Fprintln(cmd.OutOrStdout(), "[degraded response]")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", llm.LanguageEnglish, "answer language (en|id)")
	cmd.Flags().StringSliceVar(&drugList, "drugs", nil, "explicit drug names to check alongside the question")

	return cmd
}
