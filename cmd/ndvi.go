package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/agroapi/agro"
	"github.com/s0up4200/agroapi/filter"
)

// ndviCmd groups the vegetation index commands
var ndviCmd = &cobra.Command{
	Use:   "ndvi",
	Short: "Query NDVI statistics of a polygon",
}

var ndviHistoryCmd = &cobra.Command{
	Use:   "history POLYGON_ID",
	Short: "Show the NDVI history of a polygon",
	Long: `Show NDVI statistics of every scene over a polygon in a time range.

Filter fields: Date, Source, Zoom, Coverage, Clouds, Mean, Median, Min, Max, Std, Num.
Example: agroapi ndvi history ID --filter 'Clouds < 20 and Mean > 0.4'`,
	Args: cobra.ExactArgs(1),
	RunE: runNDVIHistory,
}

func init() {
	rootCmd.AddCommand(ndviCmd)
	ndviCmd.AddCommand(ndviHistoryCmd)

	addRangeFlags(ndviHistoryCmd)
	ndviHistoryCmd.Flags().StringVar(&imageType, "type", "", "satellite type, e.g. s2 or l8")
	ndviHistoryCmd.Flags().Float64Var(&cloudsMax, "clouds-max", -1, "maximum cloud coverage in percent")
	ndviHistoryCmd.Flags().Float64Var(&coverMin, "coverage-min", -1, "minimum valid data coverage in percent")
	ndviHistoryCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression or name of a configured filter")
}

func runNDVIHistory(cmd *cobra.Command, args []string) error {
	f, err := compileFilter(filter.KindNDVI, filterExpr)
	if err != nil {
		return err
	}

	opts, err := imageryOptions(args[0])
	if err != nil {
		return err
	}

	history, err := prov.NDVIHistory(opts).Await(cmd.Context())
	if err != nil {
		return err
	}

	history, err = filter.NDVIHistory(f, history)
	if err != nil {
		return err
	}
	sort.Slice(history, func(i, j int) bool { return history[i].Dt < history[j].Dt })

	if jsonOutput() {
		return printJSON(history)
	}

	if len(history) == 0 {
		fmt.Println("No NDVI observations found.")
		return nil
	}

	fmt.Printf("%d NDVI %s for polygon %s:\n\n", len(history), plural(len(history), "observation"), args[0])
	fmt.Println(strings.Repeat("━", 85))
	fmt.Printf("%-17s %-10s %7s %7s %7s %7s %7s %7s  %s\n", "DATE", "SOURCE", "CLOUDS", "MIN", "MEAN", "MEDIAN", "MAX", "STD", "TREND")
	fmt.Println(strings.Repeat("━", 85))

	for _, h := range history {
		fmt.Printf("%-17s %-10s %6.1f%% %7.3f %7.3f %7.3f %7.3f %7.3f  %s\n",
			formatDate(h.Time()), h.Source, h.Cl, h.Data.Min, h.Data.Mean, h.Data.Median, h.Data.Max, h.Data.Std, bar(h.Data))
	}

	return nil
}

// bar renders the mean of an index in [-1, 1] as a 10 cell bar
func bar(s agro.StatsInfo) string {
	n := int((s.Mean + 1) / 2 * 10)
	n = max(0, min(10, n))
	return strings.Repeat("█", n) + strings.Repeat("░", 10-n)
}
