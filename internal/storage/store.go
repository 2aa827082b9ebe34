package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/malthus/internal/malthus"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
	sweepFile    = "sweep.csv"
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

type RunMetadata struct {
	ID         string             `json:"id"`
	Kind       string             `json:"kind"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Params     malthus.Parameters `json:"params"`
	Horizon    int                `json:"horizon,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	Regime     string             `json:"regime,omitempty"`
	Income     float64            `json:"income,omitempty"`
	Iterations int                `json:"iterations,omitempty"`
	SweepParam string             `json:"sweep_param,omitempty"`
	SweepProbe string             `json:"sweep_probe,omitempty"`
	Values     []float64          `json:"values,omitempty"`
}

// Row is one stored trajectory state with its income.
type Row struct {
	T          int     `json:"t"`
	Population float64 `json:"population"`
	Technology float64 `json:"technology"`
	Income     float64 `json:"income"`
}

func newRunID(kind string) string {
	return kind + "-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
}

func (s *Store) runDir(id string) string {
	return filepath.Join(s.baseDir, id)
}

func (s *Store) create(meta *RunMetadata) (string, error) {
	meta.ID = newRunID(meta.Kind)
	meta.Timestamp = time.Now()

	dir := s.runDir(meta.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	if err := writeMetadata(filepath.Join(dir, metadataFile), meta); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return dir, nil
}

func writeMetadata(path string, meta *RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// SaveTrajectory stores a simulated trajectory and its metrics.
func (s *Store) SaveTrajectory(name string, tr malthus.Trajectory, metrics map[string]float64) (string, error) {
	rows, err := Rows(tr)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		Kind:    "simulate",
		Name:    name,
		Params:  tr.Parameters(),
		Horizon: tr.Horizon(),
		Metrics: metrics,
	}
	dir, err := s.create(&meta)
	if err != nil {
		return "", err
	}

	records := [][]string{{"t", "population", "technology", "income"}}
	for _, r := range rows {
		records = append(records, []string{
			strconv.Itoa(r.T),
			formatFloat(r.Population),
			formatFloat(r.Technology),
			formatFloat(r.Income),
		})
	}
	if err := writeRecords(filepath.Join(dir, statesFile), records); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return meta.ID, nil
}

// SaveOutcome stores an equilibrium result.
func (s *Store) SaveOutcome(name string, p malthus.Parameters, out malthus.Outcome) (string, error) {
	meta := RunMetadata{
		Kind:       "equilibrium",
		Name:       name,
		Params:     p,
		Regime:     out.Regime.String(),
		Income:     out.Income,
		Iterations: out.Iterations,
	}
	if _, err := s.create(&meta); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// SaveSweep stores one row per swept value. Simulate sweeps record the
// final state of each trajectory.
func (s *Store) SaveSweep(name string, template malthus.Parameters, res malthus.SweepResult) (string, error) {
	records := [][]string{{"value", "regime", "t", "population", "technology", "income", "iterations"}}
	for _, pt := range res.Points {
		var (
			final      malthus.State
			regime     string
			iterations int
			income     float64
		)
		switch {
		case pt.Outcome != nil:
			final, regime, iterations, income = pt.Outcome.State, pt.Outcome.Regime.String(), pt.Outcome.Iterations, pt.Outcome.Income
		case pt.Trajectory != nil:
			st, err := pt.Trajectory.Final()
			if err != nil {
				return "", err
			}
			y, err := st.Income(pt.Params)
			if err != nil {
				return "", err
			}
			final, income = st, y
		}
		records = append(records, []string{
			formatFloat(pt.Value),
			regime,
			strconv.Itoa(final.T),
			formatFloat(final.Population),
			formatFloat(final.Technology),
			formatFloat(income),
			strconv.Itoa(iterations),
		})
	}

	meta := RunMetadata{
		Kind:       "sweep",
		Name:       name,
		Params:     template,
		SweepParam: res.Param,
		SweepProbe: res.Kind,
		Values:     res.Values(),
	}
	dir, err := s.create(&meta)
	if err != nil {
		return "", err
	}
	if err := writeRecords(filepath.Join(dir, sweepFile), records); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return meta.ID, nil
}

// List returns stored runs, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.runDir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadStates reads the stored trajectory of a simulate run.
func (s *Store) LoadStates(runID string) ([]Row, error) {
	records, err := readCSV(filepath.Join(s.runDir(runID), statesFile))
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		if len(rec) < 4 {
			return nil, fmt.Errorf("%s line %d: expected 4 fields, got %d", statesFile, i+2, len(rec))
		}
		t, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", statesFile, i+2, err)
		}
		vals, err := parseFloats(rec[1:4])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", statesFile, i+2, err)
		}
		rows = append(rows, Row{T: t, Population: vals[0], Technology: vals[1], Income: vals[2]})
	}
	return rows, nil
}

// LoadSweep returns the raw sweep table, header first.
func (s *Store) LoadSweep(runID string) ([][]string, error) {
	f, err := os.Open(filepath.Join(s.runDir(runID), sweepFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return csv.NewReader(f).ReadAll()
}

// Rows materializes tr with income per capita.
func Rows(tr malthus.Trajectory) ([]Row, error) {
	states, err := tr.States()
	if err != nil {
		return nil, err
	}
	rows := make([]Row, len(states))
	for i, st := range states {
		y, err := st.Income(tr.Parameters())
		if err != nil {
			return nil, err
		}
		rows[i] = Row{T: st.T, Population: st.Population, Technology: st.Technology, Income: y}
	}
	return rows, nil
}

// writeRecords is replaced in tests to simulate a failing disk.
var writeRecords = writeCSV

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return f.Sync()
}

// readCSV returns the records after the header.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
