package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codewiki-dev/codewiki/internal/config"
	"github.com/codewiki-dev/codewiki/internal/parser"
	"github.com/codewiki-dev/codewiki/internal/security"
	"github.com/codewiki-dev/codewiki/internal/security/output"
	"github.com/codewiki-dev/codewiki/internal/security/scanner"
	"github.com/codewiki-dev/codewiki/internal/wiki"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	configPath     string
	outputDirFlag  string
	formatFlag     string
	concurrency    int
	cachePathFlag  string
	noSecurityFlag bool
	reportFlag     string // "", "json", "sarif"
	reportPathFlag string
)

func versionString() string {
	return fmt.Sprintf("codewiki %s (commit: %s, built: %s)", version, commit, date)
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "codewiki",
		Short:         "Generate a documentation wiki from static analysis",
		Long:          "codewiki synthesizes a documentation site with diagrams and security narratives from static analysis of a codebase.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	generateCmd := &cobra.Command{
		Use:   "generate [dir]",
		Short: "Generate the wiki for a source directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runGenerate(dir)
		},
	}
	generateCmd.Flags().StringVar(&outputDirFlag, "output", "", "output directory (overrides config)")
	generateCmd.Flags().StringVar(&formatFlag, "format", "", "site format: raw-md, hugo, docusaurus (overrides config)")
	generateCmd.Flags().IntVar(&concurrency, "concurrency", 0, "parallel per-file workers (overrides config)")
	generateCmd.Flags().StringVar(&cachePathFlag, "cache", "", "analysis cache database path (overrides config)")
	generateCmd.Flags().BoolVar(&noSecurityFlag, "no-security", false, "skip security analysis entirely")
	generateCmd.Flags().StringVar(&reportFlag, "report", "", "also write a security report: json, sarif")
	generateCmd.Flags().StringVar(&reportPathFlag, "report-path", "", "security report output path")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(versionString())
		},
	}

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runGenerate(dir string) error {
	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = filepath.Join(dir, "codewiki.toml")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if outputDirFlag != "" {
		cfg.Wiki.OutputDir = outputDirFlag
	}
	if formatFlag != "" {
		cfg.Wiki.Format = formatFlag
	}
	if concurrency > 0 {
		cfg.Wiki.Concurrency = concurrency
	}
	if cachePathFlag != "" {
		cfg.Wiki.CachePath = cachePathFlag
	}

	pipelineCfg := wiki.Config{
		Dir:         dir,
		OutputDir:   cfg.Wiki.OutputDir,
		Format:      cfg.Wiki.Format,
		DiagramFmt:  cfg.Wiki.DiagramFmt,
		Concurrency: cfg.Wiki.Concurrency,
		CachePath:   cfg.Wiki.CachePath,
		Security: wiki.SecurityOptions{
			MinHotspotSeverity:         security.Severity(cfg.Security.MinHotspotSeverity),
			EnableTraceAnalysis:        cfg.Security.EnableTraceAnalysis,
			EnablePropagationDiagrams:  cfg.Security.EnablePropagationDiagrams,
			EnableOWASPRecommendations: cfg.Security.EnableOWASPRecommendations,
			EnableHotspotVisualization: cfg.Security.EnableHotspotVisualization,
		},
	}

	if !noSecurityFlag {
		pipelineCfg.Detectors = []security.Detector{
			scanner.NewPatternScanner(),
			scanner.NewSecretScanner(),
		}
	}

	ctx := context.Background()
	if err := wiki.Run(ctx, pipelineCfg, buildCompleter(cfg), parser.NewParser()); err != nil {
		return err
	}

	if reportFlag != "" && !noSecurityFlag {
		if err := writeSecurityReport(ctx, dir, pipelineCfg); err != nil {
			return fmt.Errorf("security report: %w", err)
		}
	}
	return nil
}

// buildCompleter returns the rate-limited AI completer, or nil when AI is
// disabled or no provider is available.
func buildCompleter(cfg *config.Config) wiki.LLMCompleter {
	if !cfg.AI.Enabled {
		return nil
	}
	if !cfg.AI.UseMock {
		fmt.Fprintln(os.Stderr, "codewiki: no AI provider configured, insights will use placeholders")
		return nil
	}
	rps := cfg.AI.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.AI.Burst
	if burst <= 0 {
		burst = 4
	}
	return wiki.NewRateLimitedCompleter(wiki.MockCompleter{}, rps, burst)
}

// writeSecurityReport runs the detectors again against dir and writes a
// standalone report in the requested format.
func writeSecurityReport(ctx context.Context, dir string, pipelineCfg wiki.Config) error {
	engine := security.NewEngine(security.EngineConfig{
		MinHotspotSeverity:         pipelineCfg.Security.MinHotspotSeverity,
		EnableTraceAnalysis:        pipelineCfg.Security.EnableTraceAnalysis,
		EnableHotspotVisualization: pipelineCfg.Security.EnableHotspotVisualization,
		Concurrency:                pipelineCfg.Concurrency,
	})
	for _, d := range pipelineCfg.Detectors {
		engine.AddDetector(d)
	}

	report, err := engine.Run(ctx, security.ScanTarget{RootDir: dir})
	if err != nil {
		return err
	}

	path := reportPathFlag
	if path == "" {
		path = "security-report." + reportFlag
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	switch reportFlag {
	case "json":
		return output.WriteJSON(f, report)
	case "sarif":
		return output.WriteSARIF(f, report)
	default:
		return fmt.Errorf("unsupported report format: %s", reportFlag)
	}
}
