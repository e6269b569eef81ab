package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/CK6170/Sammon-go/models"
	"github.com/CK6170/Sammon-go/sammon"
)

var (
	resultsBucket = []byte("results")
	runsBucket    = []byte("runs")
)

// Archive persists finished results in a bbolt file so they survive restarts.
//
// results maps jobId -> RESULT json; runs maps a run key (see runKey) ->
// jobId so identical deterministic runs are answered from disk.
type Archive struct {
	db *bolt.DB
}

// OpenArchive opens (creating if needed) the archive at path.
func OpenArchive(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{resultsBucket, runsBucket} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}
	return &Archive{db: db}, nil
}

// Put stores a result under jobID and, when key is not empty, indexes it by
// run key.
func (a *Archive) Put(jobID, key string, r *models.RESULT) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return a.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(resultsBucket).Put([]byte(jobID), data); err != nil {
			return err
		}
		if key == "" {
			return nil
		}
		return tx.Bucket(runsBucket).Put([]byte(key), []byte(jobID))
	})
}

// Get returns the result stored for jobID.
func (a *Archive) Get(jobID string) (*models.RESULT, bool, error) {
	var r *models.RESULT
	err := a.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(resultsBucket).Get([]byte(jobID))
		if v == nil {
			return nil
		}
		r = &models.RESULT{}
		return json.Unmarshal(v, r)
	})
	if err != nil {
		return nil, false, err
	}
	return r, r != nil, nil
}

// Lookup returns the job id previously stored under a run key.
func (a *Archive) Lookup(key string) (string, bool) {
	var id string
	_ = a.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(runsBucket).Get([]byte(key)); v != nil {
			id = string(v)
		}
		return nil
	})
	return id, id != ""
}

func (a *Archive) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// runKey identifies a run by its inputs: sha256 over the dataset points and
// the option values. It returns "" for runs that are not reproducible (random
// init without an explicit seed) or that combine several restarts without a
// seed.
func runKey(d *models.DATASET, opts sammon.Options, restarts int) string {
	if opts.Init == sammon.InitRandom && opts.Seed == 0 {
		return ""
	}
	if restarts > 1 && opts.Seed == 0 {
		return ""
	}
	payload := struct {
		X        [][]float64    `json:"x"`
		Options  sammon.Options `json:"options"`
		Restarts int            `json:"restarts"`
	}{d.X, opts, restarts}
	payload.Options.Display = 0
	b, _ := json.Marshal(payload)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
