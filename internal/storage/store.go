package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/fieldlines"
	"github.com/san-kum/chargesim/internal/sim"
)

const (
	metadataFile   = "metadata.json"
	statesFile     = "states.csv"
	fieldLinesFile = "fieldlines.json"
)

var ErrMalformedStates = errors.New("storage: malformed states file")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Scene      string             `json:"scene"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Particles  int                `json:"particles"`
	Frames     int                `json:"frames"`
	FieldLines int                `json:"field_lines"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding metadata.json, states.csv and, when the
// result carries any, fieldlines.json. It returns the new run ID.
func (s *Store) Save(dt, duration float64, result *sim.Result) (string, error) {
	scene := result.Scene
	if scene == "" {
		scene = "run"
	}
	runID := fmt.Sprintf("%s_%s", scene, uuid.NewString()[:8])
	runDir := s.Dir(runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	particles := 0
	if len(result.Positions) > 0 {
		particles = len(result.Positions[0])
	}

	meta := RunMetadata{
		ID:         runID,
		Scene:      result.Scene,
		Timestamp:  s.now(),
		Dt:         dt,
		Duration:   duration,
		Integrator: result.Integrator,
		Particles:  particles,
		Frames:     result.Frames(),
		FieldLines: len(result.FieldLines),
		Metrics:    result.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	if err := writeStates(filepath.Join(runDir, statesFile), result, particles); err != nil {
		return "", err
	}

	if len(result.FieldLines) > 0 {
		if err := s.SaveFieldLines(runID, result.FieldLines); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// SaveFieldLines writes or replaces the run's field-line file.
func (s *Store) SaveFieldLines(runID string, lines []fieldlines.FieldLine) error {
	return writeJSON(filepath.Join(s.Dir(runID), fieldLinesFile), lines)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeStates(path string, result *sim.Result, particles int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"time", "energy"}
	for i := 0; i < particles; i++ {
		header = append(header, fmt.Sprintf("p%d_x", i), fmt.Sprintf("p%d_y", i), fmt.Sprintf("p%d_z", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range result.Times {
		row := []string{formatFloat(result.Times[i])}
		if i < len(result.Energies) {
			row = append(row, formatFloat(result.Energies[i]))
		} else {
			row = append(row, "0")
		}
		for _, p := range result.Positions[i] {
			row = append(row, formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns the metadata of every stored run, newest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// States is the trajectory read back from states.csv.
type States struct {
	Times     []float64
	Energies  []float64
	Positions [][]dynamo.Vec3
}

func (s *Store) LoadStates(runID string) (*States, error) {
	file, err := os.Open(filepath.Join(s.Dir(runID), statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	out := &States{}
	if len(records) < 2 {
		return out, nil
	}

	for i, record := range records[1:] {
		if len(record) < 2 || (len(record)-2)%3 != 0 {
			return nil, fmt.Errorf("%w: row %d has %d columns", ErrMalformedStates, i+1, len(record))
		}

		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %d: %v", ErrMalformedStates, i+1, j, err)
			}
			vals[j] = v
		}

		frame := make([]dynamo.Vec3, 0, (len(vals)-2)/3)
		for j := 2; j+2 < len(vals); j += 3 {
			frame = append(frame, dynamo.Vec3{X: vals[j], Y: vals[j+1], Z: vals[j+2]})
		}

		out.Times = append(out.Times, vals[0])
		out.Energies = append(out.Energies, vals[1])
		out.Positions = append(out.Positions, frame)
	}

	return out, nil
}

func (s *Store) LoadFieldLines(runID string) ([]fieldlines.FieldLine, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), fieldLinesFile))
	if err != nil {
		return nil, err
	}

	var lines []fieldlines.FieldLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}
