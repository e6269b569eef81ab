package server

import (
	"encoding/json"
	"time"

	"github.com/CK6170/Sammon-go/models"
)

// APIError is the canonical error envelope returned by JSON endpoints.
// The frontend expects the `error` field and will surface it to the user.
type APIError struct {
	Error string `json:"error"`
}

// HealthResponse is returned by /api/health to confirm the server is running.
type HealthResponse struct {
	OK        bool      `json:"ok"`
	Timestamp time.Time `json:"timestamp"`
	Archive   bool      `json:"archive"`
}

// UploadResponse is returned by /api/upload/dataset.
// DatasetID is the opaque ID used for subsequent map/job requests.
type UploadResponse struct {
	DatasetID string `json:"datasetId"`
	Filename  string `json:"filename,omitempty"`
	Rows      int    `json:"rows"`
	Cols      int    `json:"cols"`
	Labelled  bool   `json:"labelled"`
}

// MapRequest selects an uploaded dataset and optionally overrides its
// options. Options uses the lowercase option schema (dims, maxiter, ...) and
// is applied on top of the dataset's own OPTIONS.
//
// Restarts > 1 runs that many independent mappings and keeps the best one.
// Those runs are silent: /ws/progress carries only the final "done" or
// "error" event for such a job, never "epoch", "warning" or "converged".
type MapRequest struct {
	DatasetID string          `json:"datasetId"`
	Options   json.RawMessage `json:"options,omitempty"`
	Restarts  int             `json:"restarts,omitempty"`
}

// JobStartResponse is returned by /api/jobs/start. Progress for the job is
// streamed on /ws/progress tagged with JobID.
type JobStartResponse struct {
	JobID  string `json:"jobId"`
	Cached bool   `json:"cached,omitempty"`
}

// JobResponse describes a job. Result is set once Status is "done".
//
// DatasetID and Filename are empty for jobs answered from the archive of a
// previous server run.
type JobResponse struct {
	JobID     string         `json:"jobId"`
	DatasetID string         `json:"datasetId,omitempty"`
	Filename  string         `json:"filename,omitempty"`
	Status    string         `json:"status"`
	Cached    bool           `json:"cached,omitempty"`
	Error     string         `json:"error,omitempty"`
	Result    *models.RESULT `json:"result,omitempty"`
	Elapsed   string         `json:"elapsed,omitempty"`
}

// ProgressEvent is the payload of "epoch", "warning" and "converged"
// WebSocket messages.
type ProgressEvent struct {
	Iteration int     `json:"iteration"`
	Stress    float64 `json:"stress,omitempty"`
}
