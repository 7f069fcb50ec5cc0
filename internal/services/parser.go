// Package services wires the parsing pipeline together: segment, classify,
// filter, resolve, route, record. Processing is single-threaded and
// single-pass; the resolver's correctness depends on original statement
// order.
package services

import (
	"context"
	"fmt"
	"path"

	"github.com/pgschema/pgsplit/internal/checksum"
	"github.com/pgschema/pgsplit/internal/classifier"
	"github.com/pgschema/pgsplit/internal/files/filesystem"
	"github.com/pgschema/pgsplit/internal/filter"
	"github.com/pgschema/pgsplit/internal/metadata"
	"github.com/pgschema/pgsplit/internal/resolver"
	"github.com/pgschema/pgsplit/internal/router"
	"github.com/pgschema/pgsplit/internal/segmenter"
	"github.com/pgschema/pgsplit/pkg/pgsplit"
)

// RunOptions carries the resolved configuration of one parse run.
type RunOptions struct {
	// OutputRoot is the directory the file tree and METADATA are written to.
	OutputRoot string

	// AllowedSchemas is the schema allow-list. Empty means all.
	AllowedSchemas []string

	// Versions is the identity recorded in METADATA.
	Versions metadata.Versions
}

// Result summarizes a completed run.
type Result struct {
	Statements int
	Excluded   int
	Files      int
	Warnings   []metadata.Warning
}

// ParserService turns one captured dump into an output tree plus METADATA.
type ParserService struct {
	segmenter  segmenter.Segmenter
	classifier classifier.Classifier
	calculator checksum.Calculator
	fs         filesystem.Writer
	logger     pgsplit.Logger
}

// NewParserService creates a ParserService with all dependencies injected.
// Panics if any dependency is nil.
func NewParserService(
	seg segmenter.Segmenter,
	cls classifier.Classifier,
	calc checksum.Calculator,
	fs filesystem.Writer,
	logger pgsplit.Logger,
) *ParserService {
	if seg == nil || cls == nil || calc == nil || fs == nil || logger == nil {
		panic("all ParserService dependencies are required")
	}
	return &ParserService{
		segmenter:  seg,
		classifier: cls,
		calculator: calc,
		fs:         fs,
		logger:     logger,
	}
}

// Run processes the full dump text. Fatal errors abort before any file is
// written; on success the output tree and METADATA are committed together.
// Every segmented statement is either routed to exactly one file or counted
// as excluded by the schema filter; nothing is dropped silently.
func (s *ParserService) Run(ctx context.Context, dumpText string, opts RunOptions) (*Result, error) {
	recorder := metadata.NewRecorder()
	recorder.RunStarted(opts.Versions, s.calculator.CalculateRaw([]byte(dumpText)))

	statements, err := s.segmenter.Segment(dumpText)
	if err != nil {
		return nil, err
	}
	s.logger.Verbose("segmented %d statements", len(statements))

	schemaFilter := filter.NewSchemaFilter(opts.AllowedSchemas)
	affiliation := resolver.NewResolver(recorder)
	fileRouter := router.NewRouter(opts.OutputRoot, s.fs)

	excluded := 0
	for _, stmt := range statements {
		if err := ctx.Err(); err != nil {
			// All-or-nothing: nothing was flushed yet.
			return nil, err
		}

		classified := s.classifier.Classify(stmt)
		if classified.Kind == classifier.KindOther {
			reason := fmt.Sprintf("unrecognized statement shape starting %q", firstWords(stmt.Text))
			recorder.Warning(stmt.StartLine, reason)
			s.logger.Warn("line %d: %s", stmt.StartLine, reason)
		}

		if !schemaFilter.IsRetained(classified) {
			// Expected exclusion per configuration, not a warning.
			excluded++
			recorder.CountExcluded()
			s.logger.Verbose("line %d: excluded %s %q by schema filter",
				stmt.StartLine, classified.Kind, classified.Schema+"."+classified.Name)
			continue
		}

		resolved := affiliation.Resolve(classified)
		dest := fileRouter.Route(resolved)
		recorder.CountRouted(resolved.Kind.String())
		s.logger.Verbose("line %d: routed %s to %s", stmt.StartLine, resolved.Kind, dest)
	}

	if err := fileRouter.Flush(); err != nil {
		return nil, err
	}

	recorder.RunCompleted()
	metadataPath := path.Join(opts.OutputRoot, pgsplit.MetadataFileName)
	if err := s.fs.WriteFile(metadataPath, recorder.Render()); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", pgsplit.MetadataFileName, err)
	}

	result := &Result{
		Statements: len(statements) - excluded,
		Excluded:   excluded,
		Files:      fileRouter.FileCount(),
		Warnings:   recorder.Warnings(),
	}
	return result, nil
}

// firstWords returns a short prefix of a statement for warning messages.
func firstWords(text string) string {
	const max = 60
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
