package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/CK6170/Sammon-go/models"
	"github.com/CK6170/Sammon-go/sammon"
)

// hubReporter forwards optimizer events of one job to the progress hub.
type hubReporter struct {
	hub   *WSHub
	jobID string
}

func (h hubReporter) Epoch(iter int, stress float64) {
	h.hub.Broadcast(WSMessage{Type: "epoch", JobID: h.jobID, Data: ProgressEvent{Iteration: iter, Stress: stress}})
}

func (h hubReporter) HalvingExceeded(iter int) {
	h.hub.Broadcast(WSMessage{Type: "warning", JobID: h.jobID, Data: ProgressEvent{Iteration: iter}})
}

func (h hubReporter) Converged(iter int, stress float64) {
	h.hub.Broadcast(WSMessage{Type: "converged", JobID: h.jobID, Data: ProgressEvent{Iteration: iter, Stress: stress}})
}

// resolveOptions decodes raw (lowercase option schema) on top of base.
func resolveOptions(base sammon.Options, raw json.RawMessage) (sammon.Options, error) {
	opts := base
	if len(bytes.TrimSpace(raw)) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		if err := json.Unmarshal(raw, &opts); err != nil {
			return base, fmt.Errorf("options: %w", err)
		}
	}
	if err := opts.Validate(); err != nil {
		return base, err
	}
	return opts, nil
}

// cached returns a finished result for key, from memory or from the archive.
func (s *Server) cached(key string) (*models.RESULT, bool) {
	if key == "" {
		return nil, false
	}
	if r, ok := s.jobs.FindDone(key); ok {
		return r, true
	}
	if s.archive == nil {
		return nil, false
	}
	id, ok := s.archive.Lookup(key)
	if !ok {
		return nil, false
	}
	r, ok, err := s.archive.Get(id)
	if err != nil {
		s.log.Warn("archive read failed", zap.String("job", id), zap.Error(err))
		return nil, false
	}
	return r, ok
}

// execute runs one job to completion. It blocks on the job semaphore, so at
// most Config.MaxJobs mappings run at once.
func (s *Server) execute(ctx context.Context, jobID, key string, ds *DatasetRecord, opts sammon.Options, restarts int) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.fail(jobID, err)
		return err
	}
	defer s.sem.Release(1)

	start := time.Now()
	_ = s.jobs.Update(jobID, func(j *Job) {
		j.Status = jobRunning
		j.Started = start
	})
	s.log.Info("job started",
		zap.String("job", jobID),
		zap.String("dataset", ds.ID),
		zap.String("file", ds.Filename),
		zap.Int("points", len(ds.D.X)),
		zap.Int("dims", opts.Dims),
		zap.String("init", string(opts.Init)),
		zap.Int("restarts", restarts))

	opts.Reporter = hubReporter{hub: s.wsProgress, jobID: jobID}
	x := ds.D.Matrix()
	var (
		res *sammon.Result
		err error
	)
	if restarts > 1 {
		res, err = sammon.BestOf(ctx, x, opts, restarts, 0)
	} else {
		res, err = sammon.Map(x, opts)
	}
	if err != nil {
		s.fail(jobID, err)
		return err
	}

	out := models.NewRESULT(res, ds.D.LABELS, opts)
	_ = s.jobs.Update(jobID, func(j *Job) {
		j.Status = jobDone
		j.Result = out
		j.Finished = time.Now()
	})
	if s.archive != nil {
		if err := s.archive.Put(jobID, key, out); err != nil {
			s.log.Warn("archive write failed", zap.String("job", jobID), zap.Error(err))
		}
	}
	s.log.Info("job finished",
		zap.String("job", jobID),
		zap.Float64("stress", res.Stress),
		zap.Int("iterations", res.Iterations),
		zap.String("termination", string(res.Termination)),
		zap.Int("halvingExceeded", res.HalvingExceeded),
		zap.Duration("elapsed", time.Since(start)))
	s.wsProgress.Broadcast(WSMessage{Type: "done", JobID: jobID, Data: map[string]interface{}{
		"stress":      res.Stress,
		"iterations":  res.Iterations,
		"termination": res.Termination,
	}})
	return nil
}

func (s *Server) fail(jobID string, err error) {
	_ = s.jobs.Update(jobID, func(j *Job) {
		j.Status = jobFailed
		j.Err = err.Error()
		j.Finished = time.Now()
	})
	s.log.Warn("job failed", zap.String("job", jobID), zap.Error(err))
	s.wsProgress.Broadcast(WSMessage{Type: "error", JobID: jobID, Data: APIError{Error: err.Error()}})
}

func jobResponse(j Job) JobResponse {
	resp := JobResponse{
		JobID:     j.ID,
		DatasetID: j.DatasetID,
		Filename:  j.Filename,
		Status:    string(j.Status),
		Cached:    j.Cached,
		Error:     j.Err,
		Result:    j.Result,
	}
	if !j.Started.IsZero() && !j.Finished.IsZero() {
		resp.Elapsed = j.Finished.Sub(j.Started).String()
	}
	return resp
}
