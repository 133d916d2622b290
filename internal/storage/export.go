package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/femdvr/internal/quadsel"
)

type ExportData struct {
	Meta     RunMetadata     `json:"meta"`
	Energies []float64       `json:"energies,omitempty"`
	Levels   []quadsel.Level `json:"levels,omitempty"`
}

// Export collects the metadata and whatever energies and levels the run
// saved.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	data := &ExportData{Meta: *meta}
	if e, err := s.LoadEnergies(runID); err == nil {
		data.Energies = e
	}
	if l, err := s.LoadLevels(runID); err == nil {
		data.Levels = l
	}
	return data, nil
}

func (s *Store) ExportJSON(runID string, w io.Writer) error {
	data, err := s.Export(runID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (s *Store) ExportJSONFile(runID, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := s.ExportJSON(runID, f); err != nil {
		return err
	}
	return f.Close()
}
