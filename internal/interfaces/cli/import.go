package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/DrugRx-Intelligence/internal/application/importer"
	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DrugRx-Intelligence/pkg/errors"
)

func newImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <csv-file>",
		Short: "Import a drug interaction CSV into the knowledge store",
		Long:  "Import reads a CSV with Drug 1, Drug 2 and Interaction Description\ncolumns and merges every row into the knowledge store.",
		Args:  cobra.ExactArgs(1),
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
				return errors.New(errors.ErrCodeStoreUnavailable, "import requires a reachable knowledge store")
			}

			imp := importer.NewImporter(repo, log.Named("importer"))
			n, err := imp.ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			log.Info("import complete", logging.Int("rows", n))
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d interaction rows\n", n)
			return nil
		},
	}
}
