package main

import (
	"bufio"
	"context"
	_ "embed"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	mfgstream "github.com/sfc-gh-aneel/streaming-demo"
)

//go:embed assets/banner_color.ansi
var bannerColor string

//go:embed assets/banner_plain.txt
var bannerPlain string

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("env file: %v", err)
	}

	fmt.Print(selectBanner())
	fmt.Println()
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		err = runCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "seed":
		err = seedCommand(os.Args[2:])
	case "backfill":
		err = backfillCommand(os.Args[2:])
	case "exec":
		err = execCommand(os.Args[2:])
	case "stats":
		err = statsCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatalf("mfgstream %s: %v", cmd, err)
	}
}

func selectBanner() string {
	if os.Getenv("NO_COLOR") != "" {
		return bannerPlain
	}
	return bannerColor
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/config.yaml", "Path to generator configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	flow, err := mfgstream.Conf(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return flow.Run(ctx)
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/config.yaml", "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := mfgstream.LoadConfig(*cfgPath)
	if err != nil {
		return err
	}
	for _, warn := range cfg.Warnings() {
		fmt.Printf("warning: %s\n", warn)
	}
	fmt.Printf("config %s looks good ✅\n", *cfgPath)
	return nil
}

func seedCommand(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/config.yaml", "Path to generator configuration file")
	timeFrom := fs.String("time-from", "", "Populate dim_time from this date (YYYY-MM-DD)")
	timeTo := fs.String("time-to", "", "Populate dim_time up to this date (YYYY-MM-DD, exclusive)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := mfgstream.LoadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wh, err := mfgstream.OpenWarehouse(cfg)
	if err != nil {
		return err
	}
	defer wh.Close(context.Background())

	if err := wh.Ping(ctx); err != nil {
		return fmt.Errorf("warehouse unreachable: %w", err)
	}

	if err := wh.LoadProductionLines(ctx, cfg.ProductionLineList()); err != nil {
		return fmt.Errorf("load production lines: %w", err)
	}
	if err := wh.LoadEquipment(ctx, cfg.EquipmentList()); err != nil {
		return fmt.Errorf("load equipment: %w", err)
	}
	if err := wh.LoadProducts(ctx, cfg.ProductList()); err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	fmt.Printf("seeded %d production lines, %d equipment, %d products\n",
		len(cfg.Manufacturing.ProductionLines),
		len(cfg.Manufacturing.Equipment),
		len(cfg.Manufacturing.Products),
	)

	if *timeFrom == "" && *timeTo == "" {
		return nil
	}
	from, to, err := parseDateRange(*timeFrom, *timeTo)
	if err != nil {
		return err
	}
	rows, err := wh.LoadTimeDimension(ctx, from, to)
	if err != nil {
		return fmt.Errorf("load time dimension: %w", err)
	}
	fmt.Printf("populated dim_time with %d minute rows (%s to %s)\n",
		rows, from.Format("2006-01-02"), to.Format("2006-01-02"))
	return nil
}

func parseDateRange(fromStr, toStr string) (time.Time, time.Time, error) {
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("time-from and time-to must be given together")
	}
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("time-from: %w", err)
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("time-to: %w", err)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("time-from %s must be before time-to %s", fromStr, toStr)
	}
	return from, to, nil
}

func backfillCommand(args []string) error {
	fs := flag.NewFlagSet("backfill", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/config.yaml", "Path to generator configuration file")
	hours := fs.Int("hours", 24, "How many hours of history to generate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *hours <= 0 {
		return fmt.Errorf("hours must be positive, got %d", *hours)
	}

	flow, err := mfgstream.Conf(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := flow.Runtime()
	if err != nil {
		return err
	}
	if err := rt.Start(ctx); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rt.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	end := time.Now()
	start := end.Add(-time.Duration(*hours) * time.Hour)
	fmt.Printf("backfilling %d hours of history (%s to %s)\n",
		*hours, start.Format(time.RFC3339), end.Format(time.RFC3339))

	steps, err := rt.Backfill(ctx, start, end)
	if err != nil {
		return err
	}
	fmt.Printf("backfill complete: %d generation steps\n", steps)
	return nil
}

func execCommand(args []string) error {
	fs := flag.NewFlagSet("exec", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/config.yaml", "Path to generator configuration file")
	file := fs.String("file", "", "SQL script to execute statement by statement")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("-file is required")
	}

	script, err := os.ReadFile(*file)
	if err != nil {
		return err
	}

	cfg, err := mfgstream.LoadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wh, err := mfgstream.OpenWarehouse(cfg)
	if err != nil {
		return err
	}
	defer wh.Close(context.Background())

	n, err := wh.ExecScript(ctx, string(script))
	if err != nil {
		return err
	}
	fmt.Printf("executed %d statements from %s\n", n, *file)
	return nil
}

func statsCommand(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	url := fs.String("url", "http://localhost:9100/metrics", "Prometheus metrics endpoint")
	interval := fs.Duration("interval", 2*time.Second, "Refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Printf("Streaming metrics from %s (Ctrl+C to stop)\n", *url)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printMetricsSnapshot(*url); err != nil {
				fmt.Fprintf(os.Stderr, "stats error: %v\n", err)
			}
		}
	}
}

// printMetricsSnapshot sums each counter family across its category labels.
func printMetricsSnapshot(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	families := map[string]float64{
		"mfg_records_generated_total": 0,
		"mfg_records_written_total":   0,
		"mfg_write_failures_total":    0,
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		for key := range families {
			rest, ok := strings.CutPrefix(line, key)
			if !ok || (len(rest) > 0 && rest[0] != '{' && rest[0] != ' ') {
				continue
			}
			fields := strings.Fields(line)
			if len(fields) < 2 {
				continue
			}
			if v, err := strconv.ParseFloat(fields[len(fields)-1], 64); err == nil {
				families[key] += v
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Printf("[%s] generated=%.0f written=%.0f failed=%.0f\n",
		time.Now().Format(time.RFC3339),
		families["mfg_records_generated_total"],
		families["mfg_records_written_total"],
		families["mfg_write_failures_total"],
	)
	return nil
}

func printUsage() {
	fmt.Printf(`mfgstream CLI

Usage:
  mfgstream <command> [flags]

Commands:
  run        Start the generation loops using the provided config
  validate   Load and validate a config file without starting the loops
  seed       Load dimension tables from the config, optionally dim_time
  backfill   Generate historical facts for the last N hours
  exec       Execute a SQL script statement by statement
  stats      Poll the Prometheus metrics endpoint and print live counters

Examples:
  mfgstream run -config ./data/config.yaml
  mfgstream validate -config ./data/config.yaml
  mfgstream seed -config ./data/config.yaml -time-from 2025-01-01 -time-to 2025-12-31
  mfgstream backfill -config ./data/config.yaml -hours 24
  mfgstream exec -config ./data/config.yaml -file ./sql/01_create_tables.sql
  mfgstream stats -url http://localhost:9100/metrics -interval 1s
`)
}
