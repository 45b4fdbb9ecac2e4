package app

import (
	"context"
	"fmt"
	"time"

	"gosof/domain/core"
	"gosof/domain/sof"
	gosof "gosof/internal"
	"gosof/internal/engine"
	"gosof/ports"
)

// ComputeService orchestrates one sum-of-fractions run: load the tables,
// fingerprint the inputs, compute, and optionally persist the run.
type ComputeService struct {
	reader ports.TableReader
	engine *engine.Engine
	runs   ports.RunRepository // nil disables persistence
	log    *gosof.Logger
}

// ComputeRequest defines inputs for a file-based run
type ComputeRequest struct {
	SamplesPath string
	LimitsPath  string
	Options     sof.Options
}

// NewComputeService creates a compute service. runs may be nil when the
// caller does not persist (the CLI without a database).
func NewComputeService(reader ports.TableReader, eng *engine.Engine, runs ports.RunRepository, log *gosof.Logger) *ComputeService {
	if log == nil {
		log = gosof.DefaultLogger
	}
	return &ComputeService{
		reader: reader,
		engine: eng,
		runs:   runs,
		log:    log.Named("ComputeService"),
	}
}

// ComputeFiles runs the full pipeline against two input files.
func (s *ComputeService) ComputeFiles(ctx context.Context, req ComputeRequest) (*sof.Run, error) {
	startTime := time.Now()

	samples, err := s.reader.ReadSamples(req.SamplesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load samples: %w", err)
	}
	limits, err := s.reader.ReadLimits(req.LimitsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load limits: %w", err)
	}

	// Hash the raw files, not the parsed tables, so the audit record pins
	// the exact bytes that were read.
	samplesHash, err := core.HashFile(req.SamplesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to hash samples file: %w", err)
	}
	limitsHash, err := core.HashFile(req.LimitsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to hash limits file: %w", err)
	}

	result, err := s.engine.Compute(samples, limits, req.Options)
	if err != nil {
		return nil, err
	}

	run := &sof.Run{
		ID:          core.NewRunID(),
		CreatedAt:   core.Now(),
		SamplesPath: req.SamplesPath,
		LimitsPath:  req.LimitsPath,
		SamplesHash: samplesHash,
		LimitsHash:  limitsHash,
		Options:     req.Options,
		Result:      *result,
		RuntimeMs:   time.Since(startTime).Milliseconds(),
	}

	s.log.Info("run %s: sof_total=%.6g pass=%t (%d rows, %dms)",
		run.ID, result.Summary.SofTotal, result.Summary.PassLimit, len(result.Rows), run.RuntimeMs)

	if err := s.persist(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// ComputeTables runs the pipeline against already-loaded tables (the API's
// JSON input path). No file hashes are recorded.
func (s *ComputeService) ComputeTables(ctx context.Context, samples, limits *sof.Table, opts sof.Options) (*sof.Run, error) {
	startTime := time.Now()

	result, err := s.engine.Compute(samples, limits, opts)
	if err != nil {
		return nil, err
	}

	run := &sof.Run{
		ID:        core.NewRunID(),
		CreatedAt: core.Now(),
		Options:   opts,
		Result:    *result,
		RuntimeMs: time.Since(startTime).Milliseconds(),
	}

	if err := s.persist(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// GetRun retrieves a persisted run.
func (s *ComputeService) GetRun(ctx context.Context, id core.RunID) (*sof.Run, error) {
	if s.runs == nil {
		return nil, fmt.Errorf("run persistence is not configured")
	}
	return s.runs.GetByID(ctx, id)
}

// ListRuns returns persisted runs, newest first.
func (s *ComputeService) ListRuns(ctx context.Context, limit, offset int) ([]*sof.Run, error) {
	if s.runs == nil {
		return nil, fmt.Errorf("run persistence is not configured")
	}
	return s.runs.List(ctx, limit, offset)
}

func (s *ComputeService) persist(ctx context.Context, run *sof.Run) error {
	if s.runs == nil {
		return nil
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return fmt.Errorf("failed to persist run: %w", err)
	}
	return nil
}
