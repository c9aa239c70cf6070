// Command daedalus annotates plain-text documents with a YAML-configured
// pipeline and writes the annotated documents as XML.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gosuri/uiprogress"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/wehubfusion/Daedalus/internal/tracing"
	"github.com/wehubfusion/Daedalus/pkg/config"
	"github.com/wehubfusion/Daedalus/pkg/document"
	"github.com/wehubfusion/Daedalus/pkg/pipeline"
)

func main() {
	app := &cli.App{
		Name:  "daedalus",
		Usage: "annotate plain-text documents with a configurable NLP pipeline",
		Commands: []*cli.Command{
			annotateCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func annotateCommand() *cli.Command {
	return &cli.Command{
		Name:      "annotate",
		Usage:     "run the pipeline over text files and emit annotated XML",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "pipeline definition file (YAML)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "output directory (default: stdout)",
			},
			&cli.IntFlag{
				Name:  "nthreads",
				Usage: "override the configured engine instance count",
			},
			&cli.StringFlag{
				Name:  "sentry-dsn",
				Usage: "report fatal errors to this Sentry DSN",
			},
			&cli.StringFlag{
				Name:  "trace-endpoint",
				Usage: "export OTLP traces to this host:port",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log at debug level",
			},
		},
		Action: runAnnotate,
	}
}

func runAnnotate(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("no input files", 1)
	}

	logger, err := newLogger(c.Bool("verbose"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	if dsn := c.String("sentry-dsn"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			return fmt.Errorf("initializing sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()

	file, err := config.Load(c.String("config"))
	if err != nil {
		return report(err)
	}
	stages, cfg, err := file.Build(logger)
	if err != nil {
		return report(err)
	}
	if n := c.Int("nthreads"); n > 0 {
		cfg = cfg.WithNThreads(n)
	}

	if endpoint := c.String("trace-endpoint"); endpoint != "" {
		tc := tracing.DefaultConfig("daedalus")
		tc.OTLPEndpoint = endpoint
		shutdown, err := tracing.Setup(ctx, tc, logger)
		if err != nil {
			return report(err)
		}
		defer tracing.Shutdown(shutdown, logger)
		cfg = cfg.WithTracer(otel.Tracer("daedalus"))
	}

	p, err := pipeline.New(stages, cfg)
	if err != nil {
		return report(err)
	}
	defer p.Close()

	logger.Info("pipeline ready",
		zap.Strings("stages", p.Stages()),
		zap.Int("nthreads", cfg.NThreads),
		zap.Int("files", c.NArg()))

	uiprogress.Start()
	bar := uiprogress.AddBar(c.NArg()).AppendCompleted().PrependElapsed()
	defer uiprogress.Stop()

	for _, path := range c.Args().Slice() {
		if err := annotateFile(ctx, p, path, c.String("out"), logger); err != nil {
			return report(err)
		}
		bar.Incr()
	}
	return nil
}

func annotateFile(ctx context.Context, p *pipeline.Pipeline, path, outDir string, logger *zap.Logger) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	doc := document.NewDocument(string(text))
	result, err := p.Run(ctx, doc)
	if err != nil {
		return fmt.Errorf("annotating %s: %w", path, err)
	}
	for _, se := range result.SentenceErrors {
		logger.Warn("sentence failed",
			zap.String("file", path),
			zap.String("sentence", se.SentenceID),
			zap.String("stage", se.Stage),
			zap.Error(se.Err))
	}

	xmlText, err := result.Document.XML()
	if err != nil {
		return fmt.Errorf("serializing %s: %w", path, err)
	}
	if outDir == "" {
		fmt.Println(xmlText)
		return nil
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	out := filepath.Join(outDir, xmlName(path))
	return os.WriteFile(out, []byte(xmlText), 0o644)
}

func xmlName(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base + ".xml"
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// report sends the error to Sentry (when configured) before returning it.
func report(err error) error {
	sentry.CaptureException(err)
	return err
}
