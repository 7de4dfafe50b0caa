package experiment

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

var separator = strings.Repeat("-", 95)

// WriteClassic prints each result as a banner followed by its miss and hit
// counts.
func WriteClassic(w io.Writer, results []Result) error {
	for _, result := range results {
		_, err := fmt.Fprintf(w,
			"%s\nBeginning %s: %s\n\n"+
				"Number of Cache Misses: %d\nNumber of Cache Hits: %d\n\n\n",
			separator,
			result.Config.Name,
			result.Config.Description,
			result.Stats.Misses,
			result.Stats.Hits)
		if err != nil {
			return err
		}
	}

	return nil
}

// WriteTable prints the results as aligned columns.
func WriteTable(w io.Writer, results []Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "CONFIG\tGEOMETRY\tPOLICY\tHITS\tMISSES\tHIT RATE")

	for _, result := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%.2f%%\n",
			result.Config.Name,
			result.Config.Geometry,
			result.Policy,
			result.Stats.Hits,
			result.Stats.Misses,
			100*result.Stats.HitRate())
	}

	return tw.Flush()
}

// WriteRuns prints recorded rows as aligned columns.
func WriteRuns(w io.Writer, runs []RunEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "RUN\tCONFIG\tGEOMETRY\tPOLICY\tHITS\tMISSES\tHIT RATE")

	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%dx%dx%d\t%s\t%d\t%d\t%.2f%%\n",
			run.RunID,
			run.Config,
			run.LineSize,
			run.SetCount,
			run.Associativity,
			run.Policy,
			run.Hits,
			run.Misses,
			100*run.HitRate)
	}

	return tw.Flush()
}
