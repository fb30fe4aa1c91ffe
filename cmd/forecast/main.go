// cmd/forecast/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/templestreet/forecast-app/internal/cache"
	"github.com/templestreet/forecast-app/internal/config"
	"github.com/templestreet/forecast-app/internal/drive"
	"github.com/templestreet/forecast-app/internal/pipeline"
	"github.com/templestreet/forecast-app/internal/service"
	"github.com/templestreet/forecast-app/pkg/logger"
)

func newPlanService(cfg *config.Config, exportDir string) *service.PlanService {
	planning := cfg.Planning
	if exportDir != "" {
		planning.ExportDir = exportDir
	}
	return service.NewPlanService(planning, nil, nil, cache.NewNoopReportCache(), nil)
}

func newAccuracyService(cfg *config.Config, exportDir string) *service.AccuracyService {
	planning := cfg.Planning
	if exportDir != "" {
		planning.ExportDir = exportDir
	}
	plan := newPlanService(cfg, exportDir)
	return service.NewAccuracyService(planning, nil, nil, cache.NewNoopReportCache(), nil, plan)
}

func newExportDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "export-dir",
		Usage:   "Directory for report artifacts",
		EnvVars: []string{"APP_EXPORT_DIR"},
	}
}

func runPlan(c *cli.Context) error {
	cfg := config.Load()
	svc := newPlanService(cfg, c.String("export-dir"))

	opts := service.PlanOptions{
		Model:        c.String("model"),
		LeadTimeDays: c.Int("lead-time-days"),
	}
	if c.IsSet("adjustment-pct") {
		opts.AdjustmentPct = c.Float64("adjustment-pct")
		opts.HasAdjustment = true
	}

	out, err := svc.RunPlan(c.Context, c.String("sales"), c.String("stock"), c.String("recipe"), opts)
	if err != nil {
		return err
	}

	fmt.Printf("Forecast items: %d\n", out.Summary.ItemCount)
	fmt.Printf("Order lines:    %d\n", out.Summary.OrderLineCount)
	if out.Summary.UnmatchedCount > 0 {
		fmt.Printf("Unmatched:      %d sales items had no recipe\n", out.Summary.UnmatchedCount)
	}
	for _, path := range out.Artifacts {
		fmt.Printf("Wrote %s\n", path)
	}

	return nil
}

func runAccuracy(c *cli.Context) error {
	cfg := config.Load()
	svc := newAccuracyService(cfg, c.String("export-dir"))

	var opts service.AccuracyOptions
	if c.IsSet("tolerance-pct") {
		opts.TolerancePct = c.Float64("tolerance-pct")
		opts.HasTolerance = true
	}

	if pairSpecs := c.StringSlice("pair"); len(pairSpecs) > 0 {
		pairs, err := parsePairs(pairSpecs)
		if err != nil {
			return err
		}
		results, err := svc.RunAccuracyBatch(c.Context, pairs, c.Int("workers"), opts)
		if err != nil {
			return err
		}

		failed := 0
		for _, res := range results {
			if res.Err != nil {
				failed++
				fmt.Printf("%s: FAILED (%v)\n", res.Pair.Label, res.Err)
				continue
			}
			fmt.Printf("%s: %d records\n", res.Pair.Label, res.Records)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d pairs failed", failed, len(results))
		}
		return nil
	}

	out, err := svc.RunAccuracy(c.Context, c.String("forecast"), c.String("actual"), opts)
	if err != nil {
		return err
	}

	fmt.Printf("Records:    %d\n", out.Summary.RecordCount)
	fmt.Printf("Accurate:   %d\n", out.Summary.AccurateCount)
	fmt.Printf("Over:       %d\n", out.Summary.OverCount)
	fmt.Printf("Under:      %d\n", out.Summary.UnderCount)
	fmt.Printf("Mean score: %.1f\n", out.Summary.MeanScore)
	for _, path := range out.Artifacts {
		fmt.Printf("Wrote %s\n", path)
	}

	return nil
}

// parsePairs reads label=forecast:actual specs into accuracy pairs.
func parsePairs(specs []string) ([]pipeline.AccuracyPair, error) {
	pairs := make([]pipeline.AccuracyPair, 0, len(specs))
	for _, spec := range specs {
		label := fmt.Sprintf("pair-%d", len(pairs)+1)
		rest := spec
		if idx := strings.Index(spec, "="); idx >= 0 {
			label = spec[:idx]
			rest = spec[idx+1:]
		}
		parts := strings.SplitN(rest, ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid pair %q, expected [label=]forecast:actual", spec)
		}
		pairs = append(pairs, pipeline.AccuracyPair{
			Label:        label,
			ForecastPath: parts[0],
			ActualPath:   parts[1],
		})
	}
	return pairs, nil
}

func runDriveSync(c *cli.Context) error {
	cfg := config.Load()

	credPath := c.String("credentials")
	if credPath == "" {
		credPath = cfg.Drive.CredentialsJSON
	}
	if credPath == "" {
		return fmt.Errorf("drive credentials are required (use --credentials or DRIVE_CREDENTIALS_JSON)")
	}
	creds, err := os.ReadFile(credPath)
	if err != nil {
		return fmt.Errorf("failed to read credentials: %w", err)
	}

	folder := c.String("folder")
	if folder == "" {
		folder = cfg.Drive.FolderPath
	}
	if folder == "" {
		return fmt.Errorf("drive folder path is required (use --folder or DRIVE_FOLDER_PATH)")
	}

	svc, err := drive.NewService(string(creds))
	if err != nil {
		return err
	}

	dest := c.String("dest")
	if dest == "" {
		dest = cfg.Planning.UploadDir
	}

	if c.Bool("watch") {
		watcher := drive.NewWatcher(svc, folder, dest, c.Duration("interval"))
		return watcher.Run(c.Context)
	}

	result, err := svc.SyncFolder(folder, dest)
	if err != nil {
		return err
	}

	fmt.Printf("Downloaded %d files, skipped %d already present\n", result.Downloaded, result.Skipped)
	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		logger.SetLevel(level)
	}

	app := &cli.App{
		Name:  "forecast",
		Usage: "Generate purchase plans and accuracy reports from spreadsheets",
		Commands: []*cli.Command{
			{
				Name:  "plan",
				Usage: "Build a purchase plan from sales, stock and recipe files",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "sales", Usage: "Sales spreadsheet (xlsx or csv)", Required: true},
					&cli.StringFlag{Name: "stock", Usage: "Stock spreadsheet (xlsx or csv)", Required: true},
					&cli.StringFlag{Name: "recipe", Usage: "Recipe (BOM) spreadsheet (xlsx or csv)", Required: true},
					&cli.StringFlag{Name: "model", Usage: "Forecast model: direct or weekday"},
					&cli.IntFlag{Name: "lead-time-days", Usage: "Days ahead the weekday model targets"},
					&cli.Float64Flag{Name: "adjustment-pct", Usage: "Forecast adjustment percentage"},
					newExportDirFlag(),
				},
				Action: runPlan,
			},
			{
				Name:  "accuracy",
				Usage: "Compare a forecast against actual consumption",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "forecast", Usage: "Forecast spreadsheet"},
					&cli.StringFlag{Name: "actual", Usage: "Actual consumption spreadsheet"},
					&cli.StringSliceFlag{Name: "pair", Usage: "Batch mode: [label=]forecast:actual (repeatable)"},
					&cli.Float64Flag{Name: "tolerance-pct", Usage: "Accuracy tolerance band in percent"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent pairs in batch mode", Value: 4},
					newExportDirFlag(),
				},
				Action: runAccuracy,
			},
			{
				Name:  "drive-sync",
				Usage: "Download spreadsheet exports from a shared Drive folder",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "credentials", Usage: "Service account credentials JSON file", EnvVars: []string{"DRIVE_CREDENTIALS_JSON"}},
					&cli.StringFlag{Name: "folder", Usage: "Drive folder path", EnvVars: []string{"DRIVE_FOLDER_PATH"}},
					&cli.StringFlag{Name: "dest", Usage: "Local destination directory", EnvVars: []string{"APP_UPLOAD_DIR"}},
					&cli.BoolFlag{Name: "watch", Usage: "Keep running and re-sync on an interval"},
					&cli.DurationFlag{Name: "interval", Usage: "Re-sync interval in watch mode", Value: 5 * time.Minute},
				},
				Action: runDriveSync,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
