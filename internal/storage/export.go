package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Run    *RunMetadata `json:"run"`
	Steps  int          `json:"steps"`
	States []Row        `json:"states,omitempty"`
}

// ExportJSON writes a run and its stored states to w.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}

	data := ExportData{Run: meta}
	if meta.Kind == "simulate" {
		rows, err := s.LoadStates(runID)
		if err != nil {
			return err
		}
		data.States = rows
		data.Steps = len(rows)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
