// Package file provides helpers for loading datasets and option files and for
// persisting mapping results and run logs to disk.
package file

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	models "github.com/CK6170/Sammon-go/models"
	"github.com/CK6170/Sammon-go/sammon"
	ui "github.com/CK6170/Sammon-go/ui"
)

// ErrUnsupportedFormat is returned for file extensions other than .json,
// .yaml, .yml and .csv.
var ErrUnsupportedFormat = errors.New("file: unsupported format")

// LoadDataset reads a dataset from path. The format follows the extension.
func LoadDataset(path string) (*models.DATASET, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return DecodeDataset(raw, path)
}

// DecodeDataset parses raw dataset bytes; name is only used for its
// extension.
//
// JSON and YAML documents follow models.DATASET. CSV files hold one point
// per line; a first line that is not fully numeric is skipped as a header,
// and a first column that is not numeric is taken as the row label.
func DecodeDataset(raw []byte, name string) (*models.DATASET, error) {
	ds := models.NewDATASET()
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		if err := json.Unmarshal(raw, ds); err != nil {
			return nil, fmt.Errorf("dataset json: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, ds); err != nil {
			return nil, fmt.Errorf("dataset yaml: %w", err)
		}
	case ".csv":
		if err := decodeCSV(raw, ds); err != nil {
			return nil, fmt.Errorf("dataset csv: %w", err)
		}
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnsupportedFormat)
	}
	if len(ds.X) == 0 {
		return nil, fmt.Errorf("no rows in %s", name)
	}
	if len(ds.LABELS) > 0 && len(ds.LABELS) != len(ds.X) {
		return nil, fmt.Errorf("%d labels for %d rows", len(ds.LABELS), len(ds.X))
	}
	return ds, nil
}

func decodeCSV(raw []byte, ds *models.DATASET) error {
	r := csv.NewReader(bytes.NewReader(raw))
	r.TrimLeadingSpace = true
	r.Comment = '#'
	r.FieldsPerRecord = -1
	header, labelled := true, false
	for line := 1; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		row, perr := parseRow(rec)
		if perr != nil && len(ds.X) == 0 && !labelled {
			if len(rec) > 1 {
				if lrow, lerr := parseRow(rec[1:]); lerr == nil {
					labelled = true
					ds.LABELS = append(ds.LABELS, rec[0])
					ds.X = append(ds.X, lrow)
					continue
				}
			}
			if header {
				header = false
				continue
			}
		}
		header = false
		if labelled {
			ds.LABELS = append(ds.LABELS, rec[0])
			row, perr = parseRow(rec[1:])
		}
		if perr != nil {
			return fmt.Errorf("line %d: %w", line, perr)
		}
		ds.X = append(ds.X, row)
	}
}

func parseRow(rec []string) ([]float64, error) {
	row := make([]float64, len(rec))
	for i, s := range rec {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}

// LoadOptions decodes a JSON or YAML options file on top of base.
func LoadOptions(path string, base sammon.Options) (sammon.Options, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read options: %w", err)
	}
	opts := base
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &opts)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &opts)
	default:
		return base, fmt.Errorf("%q: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		return base, fmt.Errorf("options %s: %w", path, err)
	}
	opts.Reporter = base.Reporter
	return opts, nil
}

// SaveResult writes a mapping result as indented JSON.
//
// It also writes a sibling `.version` file next to the JSON to record the app
// version/build without changing the JSON schema.
func SaveResult(file string, result *models.RESULT, appVer string, appBuild string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(file, data, 0644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	ui.Greenf("%s Saved\n", file)

	verFile := strings.TrimSuffix(file, ".json") + ".version"
	verContent := fmt.Sprintf("%s %s\n", appVer, appBuild)
	if err := os.WriteFile(verFile, []byte(verContent), 0644); err != nil {
		ui.Warningf("Warning: failed to write version file: %v\n", err)
	}
	return nil
}

// LoadResult reads a result previously written by SaveResult.
func LoadResult(path string) (*models.RESULT, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read result: %w", err)
	}
	var r models.RESULT
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("result json: %w", err)
	}
	return &r, nil
}

// AppendToFile appends content + newline to file, creating it if it does not
// exist.
func AppendToFile(file, content string) {
	f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		ui.Warningf("Warning: failed to open file for append: %v\n", err)
		return
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(content + "\n"); err != nil {
		ui.Warningf("Warning: failed to write to file: %v\n", err)
	}
}
