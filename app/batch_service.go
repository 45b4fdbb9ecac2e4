package app

import (
	"context"

	"gosof/domain/sof"
	gosof "gosof/internal"

	"golang.org/x/sync/errgroup"
)

// BatchService fans one limits table out over many sample files. Jobs are
// independent; one failing job never stops the others.
type BatchService struct {
	compute *ComputeService
	log     *gosof.Logger
}

// BatchJob is one sample file to evaluate against the shared limits file.
type BatchJob struct {
	SamplesPath string
	LimitsPath  string
	Options     sof.Options
}

// BatchResult pairs a job with its run or its error.
type BatchResult struct {
	Job BatchJob
	Run *sof.Run
	Err error
}

// NewBatchService creates a batch service
func NewBatchService(compute *ComputeService, log *gosof.Logger) *BatchService {
	if log == nil {
		log = gosof.DefaultLogger
	}
	return &BatchService{compute: compute, log: log.Named("BatchService")}
}

// RunAll executes the jobs with bounded concurrency and returns results in
// job order. The error return is only for context cancellation; per-job
// failures live in the results.
func (s *BatchService) RunAll(ctx context.Context, jobs []BatchJob, concurrency int) ([]BatchResult, error) {
	if concurrency <= 0 {
		concurrency = 4
	}

	results := make([]BatchResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			run, err := s.compute.ComputeFiles(gctx, ComputeRequest{
				SamplesPath: job.SamplesPath,
				LimitsPath:  job.LimitsPath,
				Options:     job.Options,
			})
			if err != nil {
				s.log.Warn("batch job %s failed: %v", job.SamplesPath, err)
			}
			results[i] = BatchResult{Job: job, Run: run, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
