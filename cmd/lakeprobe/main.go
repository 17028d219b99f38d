// Package main is a pre-flight diagnostic for raw source trees. It scans one
// or both record families against their contracts and prints a JSON report
// of file/record counts, per-field null tallies, and coercion violations.
//
// The report is intended to size a data problem before launching a run with
// cmd/lakeetl; it never writes to the sink.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/joho/godotenv"

	"lakeetl/internal/config"
	"lakeetl/internal/probe"
	"lakeetl/internal/schema"
	"lakeetl/internal/source"
	filesrc "lakeetl/internal/source/file"
	s3src "lakeetl/internal/source/s3"
)

func main() {
	var (
		cfgPath string
		family  string
		pretty  bool
	)

	flag.StringVar(&cfgPath, "config", "configs/lake.json", "run config JSON path")
	flag.StringVar(&family, "family", "all", "record family to scan: song_data, log_data, or all")
	flag.BoolVar(&pretty, "pretty", true, "pretty-print JSON output")
	flag.Parse()

	_ = godotenv.Load()

	f, err := os.Open(cfgPath)
	if err != nil {
		fatalf("open config: %v", err)
	}
	defer f.Close()

	var p config.Pipeline
	if err := json.NewDecoder(f).Decode(&p); err != nil {
		fatalf("decode config: %v", err)
	}

	var contracts []schema.Contract
	switch family {
	case "song_data":
		contracts = []schema.Contract{schema.SongData()}
	case "log_data":
		contracts = []schema.Contract{schema.LogData()}
	case "all":
		contracts = []schema.Contract{schema.SongData(), schema.LogData()}
	default:
		fatalf("unknown -family %q", family)
	}

	src, err := openSource(p)
	if err != nil {
		fatalf("open source: %v", err)
	}

	ctx := context.Background()
	reports := make([]probe.Report, 0, len(contracts))
	for _, c := range contracts {
		rep, err := probe.Scan(ctx, src, c)
		if err != nil {
			fatalf("%v", err)
		}
		reports = append(reports, rep)
	}

	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(reports); err != nil {
		fatalf("encode report: %v", err)
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

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
