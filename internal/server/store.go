package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CK6170/Sammon-go/models"
)

// DatasetRecord is an uploaded dataset kept in memory for the server's
// lifetime.
type DatasetRecord struct {
	ID string
	D  *models.DATASET
	// Original filename from upload (best-effort, may be empty)
	Filename string
}

type DatasetStore struct {
	mu sync.RWMutex
	m  map[string]*DatasetRecord
}

func NewDatasetStore() *DatasetStore {
	return &DatasetStore{m: make(map[string]*DatasetRecord)}
}

func (s *DatasetStore) Put(d *models.DATASET, filename string) *DatasetRecord {
	rec := &DatasetRecord{ID: uuid.NewString(), D: d, Filename: filename}
	s.mu.Lock()
	s.m[rec.ID] = rec
	s.mu.Unlock()
	return rec
}

func (s *DatasetStore) Get(id string) (*DatasetRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.m[id]
	return r, ok
}

type jobStatus string

const (
	jobQueued  jobStatus = "queued"
	jobRunning jobStatus = "running"
	jobDone    jobStatus = "done"
	jobFailed  jobStatus = "failed"
)

// Job tracks one mapping run.
type Job struct {
	ID        string
	DatasetID string
	Filename  string
	Key       string
	Status    jobStatus
	Cached    bool
	Err       string
	Result    *models.RESULT
	Started   time.Time
	Finished  time.Time
}

type JobStore struct {
	mu sync.RWMutex
	m  map[string]*Job
}

func NewJobStore() *JobStore {
	return &JobStore{m: make(map[string]*Job)}
}

func (s *JobStore) Create(ds *DatasetRecord, key string) *Job {
	j := &Job{ID: uuid.NewString(), DatasetID: ds.ID, Filename: ds.Filename, Key: key, Status: jobQueued}
	s.mu.Lock()
	s.m[j.ID] = j
	s.mu.Unlock()
	return j
}

// Snapshot returns a copy of the job so callers can read it without holding
// the store lock.
func (s *JobStore) Snapshot(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.m[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// Update safely mutates an existing job under a write lock.
func (s *JobStore) Update(id string, fn func(j *Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.m[id]
	if !ok || j == nil {
		return fmt.Errorf("job %s not found", id)
	}
	fn(j)
	return nil
}

// FindDone returns the result of a finished job with the given run key.
func (s *JobStore) FindDone(key string) (*models.RESULT, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, j := range s.m {
		if j.Key == key && j.Status == jobDone && j.Result != nil {
			return j.Result, true
		}
	}
	return nil, false
}
