package security

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
)

// EngineConfig controls which security engines run and how.
type EngineConfig struct {
	// MinHotspotSeverity filters which vulnerabilities contribute to hotspots.
	MinHotspotSeverity Severity
	// EnableTraceAnalysis gates propagation trace construction.
	EnableTraceAnalysis bool
	// EnableHotspotVisualization gates hotspot aggregation.
	EnableHotspotVisualization bool
	// Concurrency caps concurrent detector goroutines.
	Concurrency int
}

// DefaultEngineConfig returns the default gate settings.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MinHotspotSeverity:         SeverityMedium,
		EnableTraceAnalysis:        true,
		EnableHotspotVisualization: true,
		Concurrency:                4,
	}
}

// Engine runs registered detectors and feeds their output through the trace
// builder and hotspot aggregator.
type Engine struct {
	config    EngineConfig
	detectors []Detector
}

// NewEngine creates an Engine with the given configuration.
func NewEngine(config EngineConfig) *Engine {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	if config.MinHotspotSeverity == "" {
		config.MinHotspotSeverity = SeverityMedium
	}
	return &Engine{config: config}
}

// AddDetector registers a vulnerability detector.
func (e *Engine) AddDetector(d Detector) {
	e.detectors = append(e.detectors, d)
}

// Run executes all detectors concurrently, then builds traces and hotspots
// from the combined vulnerability list. Detector failures are recorded as
// non-fatal errors and never abort the run.
func (e *Engine) Run(ctx context.Context, target ScanTarget) (*Report, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("engine cancelled before start: %w", err)
	}

	vulns, scanErrors := e.runDetectors(ctx, target)

	var traces []Trace
	if e.config.EnableTraceAnalysis {
		builder := NewTraceBuilder()
		for _, v := range vulns {
			if trace, ok := builder.Build(v); ok {
				traces = append(traces, trace)
			}
		}
	}

	var hotspots []Hotspot
	if e.config.EnableHotspotVisualization {
		hotspots = NewAggregator().Aggregate(vulns, e.config.MinHotspotSeverity)
	}

	report := &Report{
		RunID:           uuid.NewString(),
		Vulnerabilities: vulns,
		Traces:          traces,
		Hotspots:        hotspots,
		Stats: ScanStats{
			Duration:           time.Since(start),
			FilesScanned:       countFiles(target),
			VulnerabilityCount: len(vulns),
			TraceCount:         len(traces),
			HotspotCount:       len(hotspots),
		},
		Errors: scanErrors,
	}

	return report, nil
}

// runDetectors executes all detectors concurrently and returns their
// combined vulnerabilities and any non-fatal errors.
func (e *Engine) runDetectors(ctx context.Context, target ScanTarget) ([]Vulnerability, []ScanError) {
	if len(e.detectors) == 0 {
		return nil, nil
	}

	p := pool.New().WithMaxGoroutines(e.config.Concurrency)
	var mu sync.Mutex
	var vulns []Vulnerability
	var errors []ScanError

	for _, d := range e.detectors {
		d := d // capture loop variable
		p.Go(func() {
			result, err := d.Detect(ctx, target)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errors = append(errors, ScanError{
					Detector: d.Name(),
					Err:      err,
					Fatal:    false,
				})
				return
			}
			vulns = append(vulns, result...)
		})
	}

	p.Wait()
	return vulns, errors
}

// countFiles returns a rough count of files in the scan target for stats.
func countFiles(target ScanTarget) int {
	if len(target.Files) > 0 {
		return len(target.Files)
	}
	files, err := CollectFiles(target, nil)
	if err != nil {
		return 0
	}
	return len(files)
}
