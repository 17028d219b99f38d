// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "sink.kind"). Message is
// human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidatePipeline performs static validation / linting of a Pipeline.
//
// It does not mutate the pipeline. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job should not be empty; it identifies runs in logs",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateSink(p.Sink)...)

	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	switch s.Kind {
	case "file", "s3":
	case "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source kind is required (file or s3)",
		})
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unknown source kind %q (expected file or s3)", s.Kind),
		})
	}

	if strings.TrimSpace(s.Root) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.root",
			Message:  "source root is required",
		})
	} else if s.Kind == "s3" && !strings.HasPrefix(s.Root, "s3://") {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.root",
			Message:  "s3 source root must be an s3://bucket[/prefix] URI",
		})
	}

	return issues
}

func validateSink(s Sink) []Issue {
	var issues []Issue

	switch s.Kind {
	case "parquet":
		if strings.TrimSpace(s.Root) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "sink.root",
				Message:  "parquet sink requires a root (directory or s3:// URI)",
			})
		}
	case "postgres":
		if strings.TrimSpace(s.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "sink.dsn",
				Message:  "postgres sink requires a DSN",
			})
		}
	case "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sink.kind",
			Message:  "sink kind is required (parquet or postgres)",
		})
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sink.kind",
			Message:  fmt.Sprintf("unknown sink kind %q (expected parquet or postgres)", s.Kind),
		})
	}

	return issues
}
