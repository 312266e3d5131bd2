package wiki

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/codewiki-dev/codewiki/internal/cfg"
	"github.com/codewiki-dev/codewiki/internal/parser"
	"github.com/codewiki-dev/codewiki/internal/security"
	"github.com/codewiki-dev/codewiki/internal/store"
)

// SecurityOptions gates the security engines inside the pipeline.
type SecurityOptions struct {
	MinHotspotSeverity         security.Severity
	EnableTraceAnalysis        bool
	EnablePropagationDiagrams  bool
	EnableOWASPRecommendations bool
	EnableHotspotVisualization bool
}

// Config holds all pipeline configuration.
type Config struct {
	Dir         string
	OutputDir   string
	Format      string // raw-md, hugo, docusaurus
	DiagramFmt  string // mermaid
	Concurrency int    // parallel per-file workers
	CachePath   string // analysis cache database; empty disables caching
	Security    SecurityOptions
	Detectors   []security.Detector
}

// osSourceReader reads files from the filesystem relative to a base directory.
type osSourceReader struct {
	baseDir string
}

func (r *osSourceReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(r.baseDir, path))
}

// cachePayload is the per-file analysis record persisted in the store.
type cachePayload struct {
	Signals  ControlFlowSignals `json:"signals"`
	Diagrams FileDiagrams       `json:"diagrams"`
}

// Run executes the full pipeline: scan, per-file signal and diagram
// computation, security analysis, assemble, render. Per-file failures are
// logged and skipped; cancellation at the fan-out boundary yields partial
// results for the files already processed.
func Run(ctx context.Context, pipelineCfg Config, llm LLMCompleter, p *parser.Parser) error {
	// Validate rendering configuration up front.
	renderer, err := NewRenderer(RendererConfig{Format: pipelineCfg.Format, OutputDir: pipelineCfg.OutputDir})
	if err != nil {
		return err
	}
	diagramCfg := DiagramConfig{Format: pipelineCfg.DiagramFmt}

	fmt.Fprintf(os.Stderr, "wiki: scanning %s...\n", pipelineCfg.Dir)
	files, err := Scan(ctx, pipelineCfg.Dir, p)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	var cache *store.Store
	if pipelineCfg.CachePath != "" {
		cache, err = store.NewStore(pipelineCfg.CachePath)
		if err != nil {
			log.Printf("WARNING: analysis cache unavailable: %v", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	reader := &osSourceReader{baseDir: pipelineCfg.Dir}
	extractor := NewSignalExtractor(reader, nil)

	fmt.Fprintf(os.Stderr, "wiki: analyzing %d files...\n", len(files))
	pages := buildFilePages(ctx, files, pipelineCfg, llm, p, extractor, cache, diagramCfg, reader)

	var report *security.Report
	if len(pipelineCfg.Detectors) > 0 {
		fmt.Fprintf(os.Stderr, "wiki: running security analysis...\n")
		report, err = runSecurity(ctx, pipelineCfg)
		if err != nil {
			log.Printf("WARNING: security analysis failed: %v", err)
		}
	}

	fmt.Fprintf(os.Stderr, "wiki: assembling documents...\n")
	classifier := security.NewKeywordClassifier(reader)
	documents := Assemble(pages, DependencyDiagram(files), report, classifier, AssembleOptions{
		EnablePropagationDiagrams:  pipelineCfg.Security.EnablePropagationDiagrams,
		EnableOWASPRecommendations: pipelineCfg.Security.EnableOWASPRecommendations,
		EnableHotspotVisualization: pipelineCfg.Security.EnableHotspotVisualization,
	})

	fmt.Fprintf(os.Stderr, "wiki: rendering %d documents to %s...\n", len(documents), pipelineCfg.OutputDir)
	if err := renderer.Render(documents); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	fmt.Fprintf(os.Stderr, "wiki: done.\n")
	return nil
}

// buildFilePages fans out per-file signal extraction and diagram rendering.
// Every file's computation is independent; failures and cancellation drop
// individual pages, never the batch.
func buildFilePages(
	ctx context.Context,
	files []ScannedFile,
	pipelineCfg Config,
	llm LLMCompleter,
	p *parser.Parser,
	extractor *SignalExtractor,
	cache *store.Store,
	diagramCfg DiagramConfig,
	reader SourceReader,
) []FilePage {
	concurrency := pipelineCfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	results := make([]*FilePage, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, file := range files {
		if file.Language == "unknown" {
			continue
		}
		i, file := i, file
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil // skip remaining files, keep partial results
			}

			diagrams, insight := analyzeFile(gctx, file, llm, p, extractor, cache, diagramCfg, reader)
			results[i] = &FilePage{File: file, Diagrams: diagrams, Insights: insight}
			return nil
		})
	}
	_ = g.Wait()

	pages := make([]FilePage, 0, len(files))
	for _, r := range results {
		if r != nil {
			pages = append(pages, *r)
		}
	}
	return pages
}

// analyzeFile computes one file's diagrams, consulting the cache first. A
// cache hit skips parsing and CFG construction entirely.
func analyzeFile(
	ctx context.Context,
	file ScannedFile,
	llm LLMCompleter,
	p *parser.Parser,
	extractor *SignalExtractor,
	cache *store.Store,
	diagramCfg DiagramConfig,
	reader SourceReader,
) ([]Diagram, string) {
	content, readErr := reader.ReadFile(file.Path)

	var descriptors FileDiagrams
	cached := false

	if cache != nil && readErr == nil {
		hash := contentHash(content)
		if entry, err := cache.Get(file.Path, hash); err == nil && entry != nil {
			var payload cachePayload
			if err := json.Unmarshal(entry.Signals, &payload); err == nil {
				descriptors = payload.Diagrams
				cached = true
			}
		}
	}

	if !cached {
		graph := buildGraph(file, content, readErr, p)
		signals := extractor.Extract(file, graph)
		descriptors = SelectDiagrams(file, signals, graph)

		if cache != nil && readErr == nil {
			storeEntry(cache, file, content, signals, descriptors)
		}
	}

	diagrams, err := RenderFileDiagrams(descriptors, diagramCfg)
	if err != nil {
		log.Printf("WARNING: diagrams for %q failed: %v", file.Path, err)
	}

	insight := ""
	if llm != nil {
		insight = FileInsights(ctx, llm, file)
	}
	return diagrams, insight
}

// buildGraph parses the file and builds its CFG. Any failure returns nil;
// the signal extractor degrades to its heuristic tiers.
func buildGraph(file ScannedFile, content []byte, readErr error, p *parser.Parser) *cfg.Graph {
	if readErr != nil || p == nil {
		return nil
	}
	tree, err := p.Parse(file.Path, content)
	if err != nil {
		return nil
	}
	defer tree.Close()
	return cfg.NewBuilder(file.Language).Build(tree)
}

// storeEntry persists one file's analysis in the cache. Failures only warn.
func storeEntry(cache *store.Store, file ScannedFile, content []byte, signals ControlFlowSignals, descriptors FileDiagrams) {
	symbols, err := json.Marshal(file.Symbols)
	if err != nil {
		return
	}
	payload, err := json.Marshal(cachePayload{Signals: signals, Diagrams: descriptors})
	if err != nil {
		return
	}
	if err := cache.Put(file.Path, contentHash(content), symbols, payload); err != nil {
		log.Printf("WARNING: caching %q failed: %v", file.Path, err)
	}
}

// contentHash returns the hex SHA-256 of the file content.
func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// runSecurity executes the detector engine over the scan target.
func runSecurity(ctx context.Context, pipelineCfg Config) (*security.Report, error) {
	engineCfg := security.EngineConfig{
		MinHotspotSeverity:         pipelineCfg.Security.MinHotspotSeverity,
		EnableTraceAnalysis:        pipelineCfg.Security.EnableTraceAnalysis,
		EnableHotspotVisualization: pipelineCfg.Security.EnableHotspotVisualization,
		Concurrency:                pipelineCfg.Concurrency,
	}
	engine := security.NewEngine(engineCfg)
	for _, d := range pipelineCfg.Detectors {
		engine.AddDetector(d)
	}

	report, err := engine.Run(ctx, security.ScanTarget{RootDir: pipelineCfg.Dir})
	if err != nil {
		return nil, err
	}
	for _, scanErr := range report.Errors {
		log.Printf("WARNING: detector %s: %v", scanErr.Detector, scanErr.Err)
	}
	return report, nil
}
