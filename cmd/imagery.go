package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/agroapi/agro"
	"github.com/s0up4200/agroapi/catalog"
	"github.com/s0up4200/agroapi/filter"
)

const defaultRange = 30 * 24 * time.Hour

var (
	startStr  string
	endStr    string
	imageType string
	cloudsMax float64
	cloudsMin float64
	coverMax  float64
	coverMin  float64
	resMin    int
	resMax    int
	asSTAC    bool
	statsIdx  string
)

// imageryCmd groups the satellite imagery commands
var imageryCmd = &cobra.Command{
	Use:     "imagery",
	Aliases: []string{"images"},
	Short:   "Search satellite imagery of a polygon",
}

var imagerySearchCmd = &cobra.Command{
	Use:   "search POLYGON_ID",
	Short: "Search the satellite scenes available for a polygon",
	Long: `Search satellite scenes over a polygon in a time range (default: last 30 days).

Filter fields: Date, Type, Coverage, Clouds, SunElevation, SunAzimuth, hasIndex(name).
Example: agroapi imagery search ID --filter 'Clouds < 10 and hasIndex("ndvi")'`,
	Args: cobra.ExactArgs(1),
	RunE: runImagerySearch,
}

func init() {
	rootCmd.AddCommand(imageryCmd)
	imageryCmd.AddCommand(imagerySearchCmd)

	flags := imagerySearchCmd.Flags()
	addRangeFlags(imagerySearchCmd)
	flags.StringVar(&imageType, "type", "", "satellite type, e.g. s2 or l8")
	flags.Float64Var(&cloudsMax, "clouds-max", -1, "maximum cloud coverage in percent")
	flags.Float64Var(&cloudsMin, "clouds-min", -1, "minimum cloud coverage in percent")
	flags.Float64Var(&coverMax, "coverage-max", -1, "maximum valid data coverage in percent")
	flags.Float64Var(&coverMin, "coverage-min", -1, "minimum valid data coverage in percent")
	flags.IntVar(&resMin, "resolution-min", 0, "minimum pixel resolution in meters")
	flags.IntVar(&resMax, "resolution-max", 0, "maximum pixel resolution in meters")
	flags.StringVarP(&filterExpr, "filter", "f", "", "filter expression or name of a configured filter")
	flags.BoolVar(&asSTAC, "stac", false, "print the scenes as a STAC item collection")
	flags.StringVar(&statsIdx, "stats", "", "also fetch statistics of this index (ndvi, evi, evi2, nri, dswi, ndwi)")
}

// addRangeFlags adds --start and --end to cmd
func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&startStr, "start", "", "range start, YYYY-MM-DD or unix seconds (default: end minus 30 days)")
	cmd.Flags().StringVar(&endStr, "end", "", "range end, YYYY-MM-DD or unix seconds (default: now)")
}

// timeRange resolves --start and --end
func timeRange() (time.Time, time.Time, error) {
	end := time.Now()
	if endStr != "" {
		t, err := parseTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --end: %w", err)
		}
		end = t
	}

	start := end.Add(-defaultRange)
	if startStr != "" {
		t, err := parseTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --start: %w", err)
		}
		start = t
	}

	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start %s is not before end %s", formatDate(start), formatDate(end))
	}
	return start, end, nil
}

func parseTime(s string) (time.Time, error) {
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0), nil
	}
	return time.ParseInLocation("2006-01-02", s, time.Local)
}

func imageryOptions(polygonID string) (agro.ImageryOptions, error) {
	start, end, err := timeRange()
	if err != nil {
		return agro.ImageryOptions{}, err
	}

	opts := agro.NewImageryOptions(polygonID, start, end)
	opts.Type = imageType
	if resMin > 0 {
		opts.ResolutionMin = agro.Int(resMin)
	}
	if resMax > 0 {
		opts.ResolutionMax = agro.Int(resMax)
	}
	if cloudsMax >= 0 {
		opts.CloudsMax = agro.Float(cloudsMax)
	}
	if cloudsMin >= 0 {
		opts.CloudsMin = agro.Float(cloudsMin)
	}
	if coverMax >= 0 {
		opts.CoverageMax = agro.Float(coverMax)
	}
	if coverMin >= 0 {
		opts.CoverageMin = agro.Float(coverMin)
	}
	return opts, nil
}

func runImagerySearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	polygonID := args[0]

	f, err := compileFilter(filter.KindImagery, filterExpr)
	if err != nil {
		return err
	}

	opts, err := imageryOptions(polygonID)
	if err != nil {
		return err
	}

	// The STAC export needs the polygon geometry; fetch it alongside the search
	var (
		images  []agro.Imagery
		polygon *agro.Polygon
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		images, err = prov.SearchImagery(opts).Await(gctx)
		return err
	})
	if asSTAC {
		g.Go(func() error {
			var err error
			polygon, err = prov.GetPolygon(polygonID).Await(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	images, err = filter.Imagery(f, images)
	if err != nil {
		return err
	}
	sort.Slice(images, func(i, j int) bool { return images[i].Dt > images[j].Dt })

	var stats []*agro.StatsInfo
	if statsIdx != "" {
		stats, err = client.BatchImageryStats(ctx, images, strings.ToLower(statsIdx))
		if err != nil {
			return err
		}
	}

	switch {
	case asSTAC:
		if polygon == nil {
			return fmt.Errorf("polygon %s: empty response", polygonID)
		}
		collection, err := catalog.ImageryCollection(images, *polygon)
		if err != nil {
			return fmt.Errorf("failed to build STAC collection: %w", err)
		}
		return printJSON(collection)
	case jsonOutput():
		if stats != nil {
			return printJSON(struct {
				Images []agro.Imagery     `json:"images"`
				Stats  []*agro.StatsInfo `json:"stats"`
			}{images, stats})
		}
		return printJSON(images)
	}

	if len(images) == 0 {
		fmt.Println("No scenes found.")
		return nil
	}

	fmt.Printf("Found %d %s for polygon %s:\n\n", len(images), plural(len(images), "scene"), polygonID)
	fmt.Println(strings.Repeat("━", 85))
	header := fmt.Sprintf("%-17s %-12s %9s %9s %8s", "DATE", "SATELLITE", "COVERAGE", "CLOUDS", "SUN")
	if statsIdx != "" {
		header += fmt.Sprintf(" %s MEAN", strings.ToUpper(statsIdx))
	}
	fmt.Println(header)
	fmt.Println(strings.Repeat("━", 85))

	for i, img := range images {
		sun := "-"
		if img.Sun != nil {
			sun = fmt.Sprintf("%.1f°", img.Sun.Elevation)
		}
		line := fmt.Sprintf("%-17s %-12s %8.1f%% %8.1f%% %8s", formatDate(img.Time()), img.Type, img.Dc, img.Cl, sun)
		if statsIdx != "" {
			if s := stats[i]; s != nil {
				line += fmt.Sprintf(" %.3f", s.Mean)
			} else {
				line += " -"
			}
		}
		fmt.Println(line)
	}

	return nil
}
