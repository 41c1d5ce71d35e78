package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/refundworks/refund-compliance-engine/internal/domain/compliance"
	"github.com/refundworks/refund-compliance-engine/internal/domain/refund"
	"github.com/refundworks/refund-compliance-engine/internal/infrastructure/config"
	"github.com/refundworks/refund-compliance-engine/internal/metrics"
	compliancesvc "github.com/refundworks/refund-compliance-engine/internal/service/compliance"
)

// checkInput is one evaluation request: the refund plus its evaluation
// context.
type checkInput struct {
	Request *refund.Request    `json:"request"`
	Context compliance.Context `json:"context"`
}

// checkOutput pairs the engine result with rendered explanations
type checkOutput struct {
	Result       *compliance.Result `json:"result"`
	Explanations []string           `json:"explanations,omitempty"`
}

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		requestPath = flag.String("request", "", "Path to a single check input JSON file")
		stdin       = flag.Bool("stdin", false, "Read newline-delimited check inputs from stdin")
		ruleFiles   = flag.String("rules", "", "Comma-separated JSON rule files loaded as extra providers")
		metricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address")
		parallel    = flag.Bool("parallel", false, "Evaluate rule providers concurrently")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *ruleFiles != "" {
		cfg.Engine.RuleFiles = append(cfg.Engine.RuleFiles, strings.Split(*ruleFiles, ",")...)
	}
	if *parallel {
		cfg.Engine.ParallelProviders = true
	}
	if *metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = *metricsAddr
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	registry, err := metrics.NewRegistry("refundcheck")
	if err != nil {
		logger.Fatal("Failed to initialize metrics registry", zap.Error(err))
	}

	providers := compliancesvc.DefaultProviders()
	for _, path := range cfg.Engine.RuleFiles {
		fp, err := compliancesvc.NewFileProvider(path)
		if err != nil {
			logger.Fatal("Failed to load rule file", zap.String("path", path), zap.Error(err))
		}
		providers = append(providers, fp)
	}

	engine := compliancesvc.NewEngine(logger, compliancesvc.SystemClock(), registry,
		compliancesvc.Config{ParallelProviders: cfg.Engine.ParallelProviders}, providers...)

	if cfg.Metrics.Enabled {
		startMetricsServer(logger, cfg.Metrics.Addr)
	}

	ctx := context.Background()
	switch {
	case *stdin:
		if err := runStream(ctx, engine, os.Stdin, os.Stdout); err != nil {
			logger.Fatal("Stream evaluation failed", zap.Error(err))
		}
	case *requestPath != "":
		if err := runOnce(ctx, engine, *requestPath, os.Stdout); err != nil {
			logger.Fatal("Evaluation failed", zap.Error(err))
		}
	default:
		fmt.Fprintln(os.Stderr, "refundcheck: provide -request <file> or -stdin")
		flag.Usage()
		os.Exit(2)
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Environment == "development" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level
	// Evaluation results go to stdout; logs stay on stderr.
	zapCfg.OutputPaths = []string{"stderr"}
	return zapCfg.Build()
}

// runOnce evaluates a single check input file and writes the result as
// indented JSON
func runOnce(ctx context.Context, engine *compliancesvc.Engine, path string, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading request file: %w", err)
	}

	input, err := decodeInput(data)
	if err != nil {
		return err
	}

	output := evaluate(ctx, engine, input)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// runStream evaluates newline-delimited check inputs, one output line per
// input line. A malformed line is reported on stderr and skipped so a bad
// record cannot halt a batch.
func runStream(ctx context.Context, engine *compliancesvc.Engine, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	enc := json.NewEncoder(out)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		input, err := decodeInput([]byte(line))
		if err != nil {
			fmt.Fprintf(os.Stderr, "refundcheck: skipping malformed input: %v\n", err)
			continue
		}

		if err := enc.Encode(evaluate(ctx, engine, input)); err != nil {
			return fmt.Errorf("writing result: %w", err)
		}
	}
	return scanner.Err()
}

func decodeInput(data []byte) (*checkInput, error) {
	var input checkInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("parsing check input: %w", err)
	}
	if input.Request == nil {
		// A bare refund request without the context wrapper is accepted.
		var req refund.Request
		if err := json.Unmarshal(data, &req); err != nil || req.ID == "" {
			return nil, fmt.Errorf("check input has no request")
		}
		input.Request = &req
	}
	return &input, nil
}

func evaluate(ctx context.Context, engine *compliancesvc.Engine, input *checkInput) *checkOutput {
	start := time.Now()
	result := engine.Evaluate(ctx, input.Request, input.Context)
	recordCheck(result, time.Since(start))

	explanations := make([]string, 0, len(result.Violations))
	for _, v := range result.Violations {
		explanations = append(explanations, compliancesvc.Explain(v))
	}
	return &checkOutput{Result: result, Explanations: explanations}
}
