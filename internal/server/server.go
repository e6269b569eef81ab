// Package server exposes Sammon mapping over a local HTTP JSON API with a
// WebSocket progress stream.
//
// Datasets are uploaded once and referenced by id. Mappings run either
// synchronously (/api/map) or as background jobs (/api/jobs/start) whose
// per-iteration progress is broadcast on /ws/progress. Finished results can be
// persisted in a bbolt archive.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/CK6170/Sammon-go/file"
	"github.com/CK6170/Sammon-go/sammon"
)

// Config holds the server settings.
type Config struct {
	// WebDir is an optional directory of static frontend files served at /.
	WebDir string
	// DBPath enables the bbolt result archive when not empty.
	DBPath string
	// MaxJobs bounds concurrently running mappings (default 2).
	MaxJobs int
}

var errDatasetNotFound = errors.New("datasetId not found (upload a dataset first)")

type Server struct {
	mux *http.ServeMux
	log *zap.Logger

	datasets *DatasetStore
	jobs     *JobStore
	archive  *Archive
	sem      *semaphore.Weighted

	wsProgress *WSHub

	// ctx bounds background jobs; cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc
}

func New(cfg Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxJobs <= 0 {
		cfg.MaxJobs = 2
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		mux:        http.NewServeMux(),
		log:        logger,
		datasets:   NewDatasetStore(),
		jobs:       NewJobStore(),
		sem:        semaphore.NewWeighted(int64(cfg.MaxJobs)),
		wsProgress: NewWSHub(),
		ctx:        ctx,
		cancel:     cancel,
	}
	if cfg.DBPath != "" {
		a, err := OpenArchive(cfg.DBPath)
		if err != nil {
			cancel()
			return nil, err
		}
		s.archive = a
	}

	// API
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/upload/dataset", s.handleUploadDataset)
	s.mux.HandleFunc("/api/map", s.handleMap)
	s.mux.HandleFunc("/api/jobs/start", s.handleJobStart)
	s.mux.HandleFunc("/api/jobs/result", s.handleJobResult)
	s.mux.HandleFunc("/api/download", s.handleDownload)

	// WS
	s.mux.HandleFunc("/ws/progress", s.handleWSProgress)

	// Static frontend
	if cfg.WebDir != "" {
		fs := http.FileServer(http.Dir(cfg.WebDir))
		s.mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Avoid stale UI/assets after updates.
			p := r.URL.Path
			if p == "/" || strings.HasSuffix(p, ".html") || strings.HasSuffix(p, ".js") || strings.HasSuffix(p, ".css") {
				w.Header().Set("Cache-Control", "no-store")
			}
			fs.ServeHTTP(w, r)
		}))
	}

	return s, nil
}

func (s *Server) Handler() http.Handler { return s.mux }

// Close stops queued jobs from starting and closes the archive.
func (s *Server) Close() error {
	s.cancel()
	return s.archive.Close()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) readJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	b, err := io.ReadAll(io.LimitReader(r.Body, 2<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	s.writeJSON(w, 200, HealthResponse{OK: true, Timestamp: time.Now(), Archive: s.archive != nil})
}

// handleUploadDataset accepts either a multipart form with a `file` field
// (json, yaml or csv, detected from the filename) or a raw JSON body.
func (s *Server) handleUploadDataset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var (
		raw  []byte
		name = "dataset.json"
		err  error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		f, hdr, ferr := fileFromMultipart(r, "file")
		if ferr != nil {
			s.writeJSON(w, 400, APIError{Error: ferr.Error()})
			return
		}
		defer f.Close()
		if hdr != nil && hdr.Filename != "" {
			name = hdr.Filename
		}
		raw, err = io.ReadAll(io.LimitReader(f, 16<<20))
	} else {
		defer r.Body.Close()
		raw, err = io.ReadAll(io.LimitReader(r.Body, 16<<20))
	}
	if err != nil {
		s.writeJSON(w, 400, APIError{Error: err.Error()})
		return
	}
	d, err := file.DecodeDataset(raw, name)
	if err != nil {
		s.writeJSON(w, 400, APIError{Error: err.Error()})
		return
	}
	rec := s.datasets.Put(d, name)
	s.log.Info("dataset uploaded", zap.String("dataset", rec.ID), zap.String("file", name), zap.Int("rows", len(d.X)))
	s.writeJSON(w, 200, UploadResponse{
		DatasetID: rec.ID,
		Filename:  rec.Filename,
		Rows:      len(d.X),
		Cols:      len(d.X[0]),
		Labelled:  len(d.LABELS) > 0,
	})
}

func fileFromMultipart(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		return nil, nil, err
	}
	return r.FormFile(field)
}

// prepare resolves the dataset and effective options of a map/job request.
func (s *Server) prepare(r *http.Request) (*DatasetRecord, sammon.Options, int, error) {
	var req MapRequest
	if err := s.readJSON(r, &req); err != nil {
		return nil, sammon.Options{}, 0, err
	}
	ds, ok := s.datasets.Get(req.DatasetID)
	if !ok {
		return nil, sammon.Options{}, 0, errDatasetNotFound
	}
	opts, err := resolveOptions(ds.D.OPTIONS, req.Options)
	if err != nil {
		return nil, sammon.Options{}, 0, err
	}
	return ds, opts, req.Restarts, nil
}

func (s *Server) writePrepareError(w http.ResponseWriter, err error) {
	if errors.Is(err, errDatasetNotFound) {
		s.writeJSON(w, 404, APIError{Error: err.Error()})
		return
	}
	s.writeJSON(w, 400, APIError{Error: err.Error()})
}

// startJob registers a job, answering it from the cache when an identical
// deterministic run already finished. ok is false when the job still has to
// be executed.
func (s *Server) startJob(ds *DatasetRecord, opts sammon.Options, restarts int) (job Job, key string, ok bool) {
	key = runKey(ds.D, opts, restarts)
	j := s.jobs.Create(ds, key)
	if res, hit := s.cached(key); hit {
		now := time.Now()
		_ = s.jobs.Update(j.ID, func(j *Job) {
			j.Status = jobDone
			j.Cached = true
			j.Result = res
			j.Started, j.Finished = now, now
		})
		s.log.Info("job served from cache", zap.String("job", j.ID), zap.String("key", key))
		snap, _ := s.jobs.Snapshot(j.ID)
		return snap, key, true
	}
	snap, _ := s.jobs.Snapshot(j.ID)
	return snap, key, false
}

// handleMap runs a mapping synchronously and returns the finished job.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	ds, opts, restarts, err := s.prepare(r)
	if err != nil {
		s.writePrepareError(w, err)
		return
	}
	job, key, done := s.startJob(ds, opts, restarts)
	if !done {
		if err := s.execute(r.Context(), job.ID, key, ds, opts, restarts); err != nil {
			status := 500
			if errors.Is(err, sammon.ErrShapeMismatch) || errors.Is(err, sammon.ErrInvalidInput) {
				status = 400
			}
			s.writeJSON(w, status, APIError{Error: err.Error()})
			return
		}
	}
	snap, _ := s.jobs.Snapshot(job.ID)
	s.writeJSON(w, 200, jobResponse(snap))
}

// handleJobStart queues a mapping in the background and returns its id
// immediately. Progress is streamed on /ws/progress.
func (s *Server) handleJobStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	ds, opts, restarts, err := s.prepare(r)
	if err != nil {
		s.writePrepareError(w, err)
		return
	}
	job, key, done := s.startJob(ds, opts, restarts)
	if !done {
		go func() { _ = s.execute(s.ctx, job.ID, key, ds, opts, restarts) }()
	}
	s.writeJSON(w, 200, JobStartResponse{JobID: job.ID, Cached: done})
}

// lookupJob finds a job in memory, falling back to the archive for jobs of a
// previous server run.
func (s *Server) lookupJob(id string) (JobResponse, bool) {
	if j, ok := s.jobs.Snapshot(id); ok {
		return jobResponse(j), true
	}
	if s.archive == nil {
		return JobResponse{}, false
	}
	res, ok, err := s.archive.Get(id)
	if err != nil || !ok {
		return JobResponse{}, false
	}
	return JobResponse{JobID: id, Status: string(jobDone), Cached: true, Result: res}, true
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	resp, ok := s.lookupJob(r.URL.Query().Get("id"))
	if !ok {
		s.writeJSON(w, 404, APIError{Error: "job not found"})
		return
	}
	s.writeJSON(w, 200, resp)
}

// handleDownload returns a finished result as a JSON attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := r.URL.Query().Get("id")
	resp, ok := s.lookupJob(id)
	if !ok {
		s.writeJSON(w, 404, APIError{Error: "job not found"})
		return
	}
	if resp.Result == nil {
		s.writeJSON(w, 409, APIError{Error: fmt.Sprintf("job is %s", resp.Status)})
		return
	}
	data, err := json.MarshalIndent(resp.Result, "", "  ")
	if err != nil {
		s.writeJSON(w, 500, APIError{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName(id, resp.Filename)))
	_, _ = w.Write(data)
}

// downloadName names a result after its dataset file, or after the job when
// the dataset is unknown (archived jobs of a previous run).
func downloadName(jobID, filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if filename == "" || base == "" || base == "." {
		base = jobID
	}
	return base + "_sammon.json"
}
