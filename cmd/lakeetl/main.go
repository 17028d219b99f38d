// Package main wires the data-lake ETL end-to-end. The CLI layer stays thin:
// it loads and validates the run config, resolves the source and sink roots,
// and hands the pipeline its injected collaborators. It never provisions
// storage; both roots must already exist.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"lakeetl/internal/config"
	"lakeetl/internal/metrics"
	"lakeetl/internal/metrics/datadog"
	"lakeetl/internal/metrics/prompush"
	"lakeetl/internal/pipeline"
	"lakeetl/internal/sink"
	"lakeetl/internal/source"
	filesrc "lakeetl/internal/source/file"
	s3src "lakeetl/internal/source/s3"

	// register all sink backends with the factory.
	_ "lakeetl/internal/sink/all"
)

func main() {
	var (
		cfgPath           string
		validate          bool
		metricsBackendFlg string
		pushGatewayURLFlg string
		dogstatsdAddrFlg  string
	)

	flag.StringVar(&cfgPath, "config", "configs/lake.json", "run config JSON path")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (pushgateway, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&dogstatsdAddrFlg, "dogstatsd-addr", "", "DogStatsD address (overrides env DD_DOGSTATSD_ADDR)")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	// AWS credentials come from the environment; .env is a convenience for
	// local runs and is optional.
	_ = godotenv.Load()

	log, err := newLogger(*verbose)
	if err != nil {
		fatalf("init logger: %v", err)
	}
	defer log.Sync()

	f, err := os.Open(cfgPath)
	if err != nil {
		fatalf("open config: %v", err)
	}
	defer f.Close()

	var p config.Pipeline
	if err := json.NewDecoder(f).Decode(&p); err != nil {
		fatalf("decode config: %v", err)
	}

	issues := config.ValidatePipeline(p)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Error("configuration is invalid", zap.String("path", cfgPath))
		os.Exit(1)
	}
	if validate {
		log.Info("configuration is valid", zap.String("path", cfgPath))
		os.Exit(0)
	}

	initMetrics(log, p.Job, metricsBackendFlg, pushGatewayURLFlg, dogstatsdAddrFlg)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics flush", zap.Error(err))
		}
	}()

	ctx := context.Background()
	start := time.Now()

	src, err := openSource(p)
	if err != nil {
		log.Fatal("open source", zap.Error(err))
	}

	w, err := sink.New(ctx, sink.Config{
		Kind:   p.Sink.Kind,
		Root:   p.Sink.Root,
		DSN:    p.Sink.DSN,
		Schema: p.Sink.Schema,
	})
	if err != nil {
		log.Fatal("open sink", zap.Error(err))
	}
	defer w.Close()

	log.Info("run starting",
		zap.String("job", p.Job),
		zap.String("source", p.Source.Root),
		zap.String("sink_kind", p.Sink.Kind))

	if err := pipeline.New(p.Job, src, w, log).Run(ctx); err != nil {
		log.Fatal("run failed", zap.Error(err))
	}

	log.Info("run completed",
		zap.String("job", p.Job),
		zap.Duration("elapsed", time.Since(start).Truncate(time.Millisecond)))
}

// initMetrics installs the selected metrics backend. Resolution order for
// each setting is flag, then environment, then default. Init failures leave
// the no-op backend in place; a batch run never aborts over metrics.
func initMetrics(log *zap.Logger, job, backendName, gatewayURL, dogstatsdAddr string) {
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	if job == "" {
		job = "lakeetl"
	}

	switch backendName {
	case "pushgateway":
		if gatewayURL == "" {
			gatewayURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gatewayURL == "" {
			gatewayURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(job, gatewayURL)
		if err != nil {
			log.Warn("metrics: pushgateway init failed; using nop", zap.Error(err))
			return
		}
		log.Info("metrics enabled",
			zap.String("backend", backendName),
			zap.String("url", gatewayURL),
			zap.String("job", job))
		metrics.SetBackend(b)

	case "datadog":
		if dogstatsdAddr == "" {
			dogstatsdAddr = os.Getenv("DD_DOGSTATSD_ADDR")
		}
		if dogstatsdAddr == "" {
			dogstatsdAddr = "127.0.0.1:8125"
		}
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       dogstatsdAddr,
			GlobalTags: []string{"job:" + job},
		})
		if err != nil {
			log.Warn("metrics: datadog init failed; using nop", zap.Error(err))
			return
		}
		log.Info("metrics enabled",
			zap.String("backend", backendName),
			zap.String("addr", dogstatsdAddr),
			zap.String("job", job))
		metrics.SetBackend(b)

	case "", "none":
		// metrics disabled; nop backend remains

	default:
		log.Warn("metrics: unknown backend; metrics disabled", zap.String("backend", backendName))
	}
}

// openSource resolves the configured source root into a source.Source.
func openSource(p config.Pipeline) (source.Source, error) {
	switch p.Source.Kind {
	case "file":
		return filesrc.New(p.Source.Root), nil
	case "s3":
		u, err := url.Parse(p.Source.Root)
		if err != nil {
			return nil, fmt.Errorf("parse source root %q: %w", p.Source.Root, err)
		}
		region := p.Source.Options.String("region", "us-east-1")
		sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
		if err != nil {
			return nil, fmt.Errorf("aws session: %w", err)
		}
		return s3src.New(awss3.New(sess), u.Host, strings.TrimPrefix(u.Path, "/")), nil
	default:
		return nil, fmt.Errorf("unsupported source.kind=%s", p.Source.Kind)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
