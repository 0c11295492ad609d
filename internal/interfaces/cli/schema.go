package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/DrugRx-Intelligence/pkg/errors"
)

func newSchemaCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the knowledge store schema summary",
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
			if _, ok := repo.(unavailableStore); ok {
				return errors.New(errors.ErrCodeStoreUnavailable, "schema requires a reachable knowledge store")
			}

			summary, err := repo.SchemaSummary(cmd.Context())
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeSerialization, "cannot render schema summary")
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
