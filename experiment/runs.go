package experiment

import (
	"context"
	"fmt"
	"slices"

	"github.com/sarchlab/cachesim/datarecording"
)

// ReadRuns returns the rows a Runner recorded, in recording order. An empty
// runID returns the rows of every run.
func ReadRuns(
	ctx context.Context,
	reader datarecording.DataReader,
	runID string,
) ([]RunEntry, error) {
	tables, err := reader.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	if !slices.Contains(tables, RunTable) {
		return nil, fmt.Errorf("no %s table recorded", RunTable)
	}

	reader.MapTable(RunTable, RunEntry{})

	params := datarecording.QueryParams{OrderBy: "rowid"}
	if runID != "" {
		params.Where = "RunID = ?"
		params.Args = []any{runID}
	}

	rows, _, err := reader.Query(ctx, RunTable, params)
	if err != nil {
		return nil, err
	}

	runs := make([]RunEntry, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, *row.(*RunEntry))
	}

	return runs, nil
}
