// Package audit writes self-contained JSON records of completed runs so a
// result can be reproduced and defended later. A record carries the input
// file hashes, the options, and the full result; nothing in it depends on
// state outside the file.
package audit

import (
	"encoding/json"
	"os"
	"path/filepath"

	"gosof/domain/core"
	"gosof/domain/sof"
	"gosof/internal/errors"
)

// Record is the on-disk audit document.
type Record struct {
	Timestamp  core.Timestamp `json:"timestamp"`
	AppVersion string         `json:"app_version"`
	Inputs     Inputs         `json:"inputs"`
	Results    sof.Result     `json:"results"`
}

// Inputs identifies exactly what went into the run.
type Inputs struct {
	RunID       core.RunID  `json:"run_id"`
	SamplesPath string      `json:"samples_path"`
	SamplesHash core.Hash   `json:"samples_sha256"`
	LimitsPath  string      `json:"limits_path"`
	LimitsHash  core.Hash   `json:"limits_sha256"`
	Options     sof.Options `json:"options"`
}

// NewRecord builds an audit record from a completed run. The record's
// timestamp is the run's, not the write time.
func NewRecord(run *sof.Run) *Record {
	return &Record{
		Timestamp:  run.CreatedAt,
		AppVersion: sof.Version,
		Inputs: Inputs{
			RunID:       run.ID,
			SamplesPath: run.SamplesPath,
			SamplesHash: run.SamplesHash,
			LimitsPath:  run.LimitsPath,
			LimitsHash:  run.LimitsHash,
			Options:     run.Options,
		},
		Results: run.Result,
	}
}

// Write serializes the record to path, creating parent directories as needed.
func Write(path string, record *Record) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.FileError(path, err)
		}
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode audit record")
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.FileError(path, err)
	}
	return nil
}

// WriteRun is the common path: build the record from a run and write it.
func WriteRun(path string, run *sof.Run) error {
	return Write(path, NewRecord(run))
}
