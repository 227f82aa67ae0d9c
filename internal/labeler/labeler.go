// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

// Package labeler runs the annotation of a whole listing file: it parses
// the listing, annotates every function block, and replaces the file only
// when every block succeeded.
package labeler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"io"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/dotandev/hbclabel/internal/errors"
	"github.com/dotandev/hbclabel/internal/hasm"
	"github.com/dotandev/hbclabel/internal/journal"
	"github.com/dotandev/hbclabel/internal/logger"
	"github.com/dotandev/hbclabel/internal/telemetry"
)

// Observer receives a call after each annotated block. Calls may come
// from several goroutines when Workers > 1.
type Observer interface {
	Function(done, total int, ident string, labels int)
}

// Recorder persists run outcomes. *journal.Store implements it.
type Recorder interface {
	Record(ctx context.Context, e *journal.Entry) error
	LastOutput(ctx context.Context, path string) (string, error)
}

type Options struct {
	Model   *hasm.WidthModel
	Workers int

	// DryRun writes the annotated listing to Out instead of replacing the
	// input file.
	DryRun bool
	Out    io.Writer

	Observer Observer
	Journal  Recorder
	Version  string
}

// Result summarizes a run.
type Result struct {
	Path      string
	Functions int
	Annotated int
	Branches  int
	Labels    int
	Changed   bool
	InputSHA  string
	OutputSHA string

	// MatchesLastRun is set on an already-annotated listing that is byte
	// identical to the last output recorded in the journal.
	MatchesLastRun bool
}

type blockResult struct {
	lines []string
	plan  *hasm.Plan
	err   error
}

// Run annotates the listing at path. On any error the file is left as it
// was.
func Run(ctx context.Context, path string, opts Options) (res *Result, err error) {
	start := time.Now()
	ctx, span := telemetry.GetTracer().Start(ctx, "hbclabel.run",
		oteltrace.WithAttributes(attribute.String("path", path)))
	defer span.End()

	res = &Result{Path: path}
	defer func() {
		recordRun(ctx, opts, res, err, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return res, errors.WrapIO("read", path, err)
	}
	res.InputSHA = digest(data)

	output, err := annotate(ctx, string(data), opts, res)
	if err != nil {
		return res, err
	}

	span.SetAttributes(
		attribute.Int("functions", res.Functions),
		attribute.Int("branches", res.Branches),
		attribute.Int("labels", res.Labels),
	)

	if opts.DryRun {
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		if _, err := io.WriteString(out, output); err != nil {
			return res, errors.WrapIO("write", "output", err)
		}
		return res, nil
	}

	if !res.Changed {
		logger.Logger.Info("No branches found, listing left unchanged", "path", path)
		return res, nil
	}

	if err := writeAtomic(path, []byte(output)); err != nil {
		return res, err
	}

	logger.Logger.Info("Annotated listing",
		"path", path,
		"functions", res.Functions,
		"annotated", res.Annotated,
		"labels", res.Labels,
	)
	return res, nil
}

// AnnotateText annotates a listing held in memory.
func AnnotateText(ctx context.Context, text string, opts Options) (string, *Result, error) {
	res := &Result{InputSHA: digest([]byte(text))}
	out, err := annotate(ctx, text, opts, res)
	if err != nil {
		return "", res, err
	}
	return out, res, nil
}

func annotate(ctx context.Context, text string, opts Options, res *Result) (string, error) {
	model := opts.Model
	if model == nil {
		model = hasm.NewWidthModel()
	}

	lst, err := hasm.Parse(text)
	if err != nil {
		return "", err
	}
	res.Functions = len(lst.Blocks)

	results := annotateBlocks(ctx, lst.Blocks, model, opts)

	rendered := make([][]string, len(lst.Blocks))
	for i, r := range results {
		if r.err != nil {
			return "", r.err
		}
		if r.plan == nil {
			continue
		}
		rendered[i] = r.lines
		res.Annotated++
		res.Branches += len(r.plan.Edges)
		res.Labels += r.plan.Labels()
	}

	output := lst.Assemble(rendered)
	res.Changed = res.Annotated > 0
	res.OutputSHA = digest([]byte(output))
	return output, nil
}

// annotateBlocks annotates each block, with up to opts.Workers running at
// once. Results are indexed like blocks.
func annotateBlocks(ctx context.Context, blocks []*hasm.Block, model *hasm.WidthModel, opts Options) []blockResult {
	results := make([]blockResult, len(blocks))

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	var (
		mu   sync.Mutex
		done int
	)
	notify := func(b *hasm.Block, plan *hasm.Plan) {
		if opts.Observer == nil {
			return
		}
		labels := 0
		if plan != nil {
			labels = plan.Labels()
		}
		mu.Lock()
		done++
		n := done
		mu.Unlock()
		opts.Observer.Function(n, len(blocks), b.Ident, labels)
	}

	one := func(i int) {
		b := blocks[i]
		if !b.HasBranches() {
			notify(b, nil)
			return
		}
		_, span := telemetry.GetTracer().Start(ctx, "hbclabel.function",
			oteltrace.WithAttributes(attribute.String("function", b.Ident)))
		lines, plan, err := hasm.Annotate(b, model)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("labels", plan.Labels()))
		}
		span.End()
		results[i] = blockResult{lines: lines, plan: plan, err: err}
		if err == nil {
			notify(b, plan)
		}
	}

	if workers == 1 {
		for i := range blocks {
			one(i)
			if results[i].err != nil {
				break
			}
		}
		return results
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := range blocks {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			one(i)
		}(i)
	}
	wg.Wait()
	return results
}

func recordRun(ctx context.Context, opts Options, res *Result, runErr error, elapsed time.Duration) {
	if opts.Journal == nil || opts.DryRun {
		return
	}

	entry := &journal.Entry{
		Path:      res.Path,
		InputSHA:  res.InputSHA,
		Functions: res.Functions,
		Annotated: res.Annotated,
		Branches:  res.Branches,
		Labels:    res.Labels,
		Duration:  elapsed,
		Version:   opts.Version,
	}

	switch {
	case runErr == nil && res.Changed:
		entry.Outcome = journal.OutcomeAnnotated
		entry.OutputSHA = res.OutputSHA
	case runErr == nil:
		entry.Outcome = journal.OutcomeUnchanged
		entry.OutputSHA = res.InputSHA
	case stderrors.Is(runErr, errors.ErrAlreadyAnnotated):
		entry.Outcome = journal.OutcomeAlreadyAnnotated
		entry.Error = runErr.Error()
		last, err := opts.Journal.LastOutput(ctx, res.Path)
		if err != nil {
			logger.Logger.Warn("Failed to look up last run", "error", err)
		}
		res.MatchesLastRun = last != "" && last == res.InputSHA
	default:
		entry.Outcome = journal.OutcomeFailed
		entry.Error = runErr.Error()
	}

	if err := opts.Journal.Record(ctx, entry); err != nil {
		logger.Logger.Warn("Failed to record run", "error", err)
	}
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
