package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/kinefig/internal/dynamo"
)

type ExportData struct {
	RunMetadata
	Times  []float64   `json:"times"`
	States [][]float64 `json:"states"`
}

// ExportJSON writes a stored run, metadata and states, as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	traj, err := s.LoadStates(runID)
	if err != nil {
		return err
	}
	return encodeRun(w, *meta, traj)
}

func encodeRun(w io.Writer, meta RunMetadata, traj *dynamo.Trajectory) error {
	data := ExportData{
		RunMetadata: meta,
		Times:       traj.Times,
		States:      make([][]float64, len(traj.States)),
	}
	for i, x := range traj.States {
		data.States[i] = x
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
