package store

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

const manifestFile = "manifest.json"

// Tabular is the read side of a table as needed for export.
type Tabular interface {
	Columns() []string
	Len() int
	Row(i int) []any
}

// NamedTable pairs a table with the base name of its output files.
type NamedTable struct {
	Name  string
	Table Tabular
}

// Manifest describes one export run.
type Manifest struct {
	RunID     string         `json:"run_id"`
	CreatedAt time.Time      `json:"created_at"`
	Dir       string         `json:"dir"`
	Rows      map[string]int `json:"rows"`
	Files     []string       `json:"files"`
}

// Exporter writes tables into timestamped run directories.
type Exporter struct {
	dir     string
	formats []string
	now     func() time.Time
}

// NewExporter creates an exporter rooted at dir. With no formats, both CSV
// and JSON are written.
func NewExporter(dir string, formats ...string) *Exporter {
	if len(formats) == 0 {
		formats = []string{FormatCSV, FormatJSON}
	}
	return &Exporter{dir: dir, formats: formats, now: time.Now}
}

// Export writes every table in each configured format, then any extra files
// verbatim, then a manifest.
func (e *Exporter) Export(tables []NamedTable, extra map[string][]byte) (*Manifest, error) {
	m := &Manifest{
		RunID:     uuid.NewString(),
		CreatedAt: e.now().UTC(),
		Rows:      make(map[string]int, len(tables)),
	}

	dir, err := e.runDir(m)
	if err != nil {
		return nil, err
	}
	m.Dir = dir

	for _, nt := range tables {
		for _, format := range e.formats {
			var data []byte
			switch format {
			case FormatCSV:
				data, err = encodeCSV(nt.Table)
			case FormatJSON:
				data, err = encodeJSON(nt.Table)
			default:
				return nil, fmt.Errorf("unknown export format %q", format)
			}
			if err != nil {
				return nil, fmt.Errorf("failed to encode %s as %s: %w", nt.Name, format, err)
			}
			if err := m.write(nt.Name+"."+format, data); err != nil {
				return nil, err
			}
		}
		m.Rows[nt.Name] = nt.Table.Len()
	}

	for name, data := range extra {
		if err := m.write(name, data); err != nil {
			return nil, err
		}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFile), data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}

	return m, nil
}

// runDir creates the run directory, named after the run's timestamp. A run
// started within the same second gets a short run id suffix.
func (e *Exporter) runDir(m *Manifest) (string, error) {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	name := m.CreatedAt.Format("2006-01-02T15-04-05")
	dir := filepath.Join(e.dir, name)
	if err := os.Mkdir(dir, 0755); err != nil {
		if !os.IsExist(err) {
			return "", fmt.Errorf("failed to create run dir: %w", err)
		}
		dir = filepath.Join(e.dir, name+"-"+m.RunID[:8])
		if err := os.Mkdir(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create run dir: %w", err)
		}
	}
	return dir, nil
}

func (m *Manifest) write(name string, data []byte) error {
	if err := os.WriteFile(filepath.Join(m.Dir, name), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	m.Files = append(m.Files, name)
	return nil
}

// LatestRun returns the path to the most recent run directory under dir.
func LatestRun(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("no export runs in %s", dir)
		}
		return "", err
	}

	// os.ReadDir sorts by name, which is chronological for our timestamps
	var latest string
	for _, entry := range entries {
		if entry.IsDir() {
			latest = entry.Name()
		}
	}
	if latest == "" {
		return "", fmt.Errorf("no export runs in %s", dir)
	}
	return filepath.Join(dir, latest), nil
}

// LoadManifest reads the manifest of a run directory.
func LoadManifest(runDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(runDir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	return &m, nil
}

func encodeCSV(t Tabular) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns()); err != nil {
		return nil, err
	}
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		record := make([]string, len(row))
		for j, v := range row {
			record[j] = formatCell(v)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func encodeJSON(t Tabular) ([]byte, error) {
	cols := t.Columns()
	records := make([]map[string]any, t.Len())
	for i := range records {
		row := t.Row(i)
		rec := make(map[string]any, len(cols))
		for j, c := range cols {
			rec[c] = row[j]
		}
		records[i] = rec
	}
	return json.MarshalIndent(records, "", "  ")
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
