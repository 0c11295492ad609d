// Package importer loads drug interaction datasets from CSV into the
// knowledge store.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/turtacn/DrugRx-Intelligence/internal/domain/drug"
	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DrugRx-Intelligence/pkg/errors"
)

// Expected CSV header columns, matched case-insensitively after trimming.
const (
	columnDrugA       = "drug 1"
	columnDrugB       = "drug 2"
	columnDescription = "interaction description"
)

const importBatchSize = 500

// Importer streams interaction rows from CSV into the knowledge store in
// batches.
type Importer struct {
	repo drug.Repository
	log  logging.Logger
}

// NewImporter builds the importer.
func NewImporter(repo drug.Repository, log logging.Logger) *Importer {
	return &Importer{repo: repo, log: log}
}

// ImportFile opens path and imports its rows.  Returns the number of rows
// written.
func (i *Importer) ImportFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeValidation, fmt.Sprintf("cannot open %s", path))
	}
	defer f.Close()
	return i.Import(ctx, f)
}

// Import reads CSV from r and merges every well-formed row into the store.
// The first record must be a header naming the drug and description columns;
// rows missing either drug name are skipped.
func (i *Importer) Import(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeValidation, "cannot read CSV header")
	}
	cols, err := mapColumns(header)
	if err != nil {
		return 0, err
	}

	var (
		batch    []drug.InteractionRow
		imported int
		skipped  int
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := i.repo.ImportInteractions(ctx, batch)
		if err != nil {
			return err
		}
		imported += n
		batch = batch[:0]
		return nil
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, errors.Wrap(err, errors.ErrCodeValidation, "malformed CSV row")
		}

		row := rowFromRecord(record, cols)
		if row.DrugA == "" || row.DrugB == "" {
			skipped++
			continue
		}
		batch = append(batch, row)

		if len(batch) >= importBatchSize {
			if err := flush(); err != nil {
				return imported, err
			}
		}
	}
	if err := flush(); err != nil {
		return imported, err
	}

	i.log.Info("interaction import finished",
		logging.Int("imported", imported),
		logging.Int("skipped", skipped))
	return imported, nil
}

type columnIndexes struct {
	drugA       int
	drugB       int
	description int
}

func mapColumns(header []string) (columnIndexes, error) {
	cols := columnIndexes{drugA: -1, drugB: -1, description: -1}
	for idx, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case columnDrugA:
			cols.drugA = idx
		case columnDrugB:
			cols.drugB = idx
		case columnDescription:
			cols.description = idx
		}
	}
	if cols.drugA < 0 || cols.drugB < 0 {
		return cols, errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("CSV header must contain %q and %q columns", columnDrugA, columnDrugB))
	}
	return cols, nil
}

func rowFromRecord(record []string, cols columnIndexes) drug.InteractionRow {
	get := func(idx int) string {
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}
	return drug.InteractionRow{
		DrugA:       get(cols.drugA),
		DrugB:       get(cols.drugB),
		Description: get(cols.description),
	}
}
