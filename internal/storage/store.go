// Package storage keeps one directory per run with its metadata,
// Hamiltonian, eigenpairs, energies and quadrature levels.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/femdvr/internal/basis"
	"github.com/san-kum/femdvr/internal/config"
	"github.com/san-kum/femdvr/internal/eigen"
	"github.com/san-kum/femdvr/internal/hamiltonian"
	"github.com/san-kum/femdvr/internal/quadsel"
)

const (
	MetadataFile = "metadata.json"
	ConfigFile   = "config.yaml"
	DenseFile    = "hmat.dat"
	CSRFile      = "hmat.csr.gz"
	VectorsFile  = "psi0.dat"
	EnergiesFile = "energies.dat"
	LevelsFile   = "quad_levels.dat"
)

var (
	// ErrMissing indicates a run artifact that is not on disk.
	ErrMissing = errors.New("storage: artifact not found")

	// ErrMalformed indicates an artifact that could not be parsed.
	ErrMalformed = errors.New("storage: malformed artifact")
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Dim         int                `json:"dim"`
	NNZ         int                `json:"nnz"`
	Format      string             `json:"format"`
	Strategy    string             `json:"strategy"`
	Potential   string             `json:"potential"`
	Nodes       int                `json:"nodes"`
	Bins        int                `json:"bins"`
	BinWidth    float64            `json:"bin_width"`
	Lmax        int                `json:"lmax"`
	QuadMode    string             `json:"quad_mode"`
	QuadSource  string             `json:"quad_source"`
	Unconverged int                `json:"unconverged"`
	Schemes     map[string]int     `json:"schemes"`
	Energies    []float64          `json:"energies"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Run is everything a finished pipeline hands to the store. Nil parts are
// skipped.
type Run struct {
	Meta        RunMetadata
	Config      *config.Config
	Basis       *basis.Map
	Hamiltonian hamiltonian.Matrix
	Eigen       *eigen.Result
	Levels      []quadsel.Level
}

// Save writes a new run directory and returns its id.
func (s *Store) Save(run *Run, save config.SaveParams) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	name := run.Meta.Name
	if name == "" {
		name = "run"
	}
	runID := fmt.Sprintf("%s_%d", name, time.Now().UnixNano())
	runDir := s.Dir(runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := run.Meta
	meta.ID = runID
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	if run.Config != nil {
		if err := config.Save(filepath.Join(runDir, ConfigFile), run.Config); err != nil {
			return "", err
		}
	}
	if len(run.Levels) > 0 {
		if err := quadsel.WriteLevels(filepath.Join(runDir, LevelsFile), run.Levels); err != nil {
			return "", err
		}
	}
	if save.Hamiltonian && run.Hamiltonian != nil {
		if err := SaveHamiltonian(runDir, run.Hamiltonian); err != nil {
			return "", err
		}
	}
	if run.Eigen != nil {
		if save.Energies {
			if err := SaveEnergies(filepath.Join(runDir, EnergiesFile), run.Eigen.Values); err != nil {
				return "", err
			}
		}
		if save.Vectors && run.Basis != nil {
			if err := SaveVectors(filepath.Join(runDir, VectorsFile), run.Basis, run.Eigen); err != nil {
				return "", err
			}
		}
	}

	if err := writeMetadata(filepath.Join(runDir, MetadataFile), meta); err != nil {
		return "", err
	}
	return runID, nil
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// List returns all runs, newest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), MetadataFile))
	if err != nil {
		return nil, missing(err, runID)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	cfg, err := config.Load(filepath.Join(s.Dir(runID), ConfigFile))
	if err != nil {
		return nil, missing(err, runID)
	}
	return cfg, nil
}

func (s *Store) LoadHamiltonian(runID string) (hamiltonian.Matrix, error) {
	return LoadHamiltonian(s.Dir(runID))
}

func (s *Store) LoadEnergies(runID string) ([]float64, error) {
	return LoadEnergies(filepath.Join(s.Dir(runID), EnergiesFile))
}

func (s *Store) LoadLevels(runID string) ([]quadsel.Level, error) {
	levels, err := quadsel.ReadLevels(filepath.Join(s.Dir(runID), LevelsFile))
	if err != nil {
		if quadsel.IsMissing(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrMissing, runID, LevelsFile)
		}
		return nil, err
	}
	return levels, nil
}

func (s *Store) Delete(runID string) error {
	if _, err := os.Stat(filepath.Join(s.Dir(runID), MetadataFile)); err != nil {
		return missing(err, runID)
	}
	return os.RemoveAll(s.Dir(runID))
}

func missing(err error, what string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrMissing, what)
	}
	return err
}
