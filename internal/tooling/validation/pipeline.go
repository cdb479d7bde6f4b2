package validation

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/tiger/songdata-validator/api/songdata"
)

const (
	// DefaultDataPath is the dataset location relative to the repository root.
	DefaultDataPath = "data/songdata.json"
	// ReportSchemaVersionV1 identifies the JSON report layout.
	ReportSchemaVersionV1 = "songdata.validation-report.v1"
)

// Options configures one validation run.
type Options struct {
	// SourceName labels the dataset in reports. Defaults to "songdata.json".
	SourceName string
	Logger     *zap.Logger
}

// Source identifies the validated bytes.
type Source struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
}

// Report is the outcome of one validation run. Diagnostics belong to the
// phase that halted the run; later phases never ran.
type Report struct {
	SchemaVersion string       `json:"schema_version"`
	Source        Source       `json:"source"`
	OK            bool         `json:"ok"`
	HaltedPhase   Phase        `json:"halted_phase,omitempty"`
	Songs         int          `json:"songs"`
	Charts        int          `json:"charts"`
	Diagnostics   []Diagnostic `json:"diagnostics"`

	// Catalog holds the songs in canonical order once every phase passed.
	Catalog []songdata.Song `json:"-"`
}

// Err returns every diagnostic joined into one error, or nil.
func (r Report) Err() error {
	return errorOf(r.Diagnostics)
}

// ValidateFile reads and validates the dataset at path.
func ValidateFile(path string, opts Options) (Report, error) {
	normalizedPath := strings.TrimSpace(path)
	if normalizedPath == "" {
		return Report{}, fmt.Errorf("data path is required")
	}
	raw, err := os.ReadFile(normalizedPath)
	if err != nil {
		return Report{}, fmt.Errorf("read songdata file %s: %w", normalizedPath, err)
	}
	if opts.SourceName == "" {
		opts.SourceName = filepath.Base(normalizedPath)
	}
	report, err := Validate(raw, opts)
	if err != nil {
		return report, fmt.Errorf("validate songdata %s: %w", normalizedPath, err)
	}
	report.Source.Path = normalizedPath
	return report, nil
}

// Validate runs every phase over raw in order, halting after the first phase
// that produced a diagnostic. A non-nil error means the run itself failed.
func Validate(raw []byte, opts Options) (Report, error) {
	if opts.SourceName == "" {
		opts.SourceName = filepath.Base(DefaultDataPath)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	sum := sha256.Sum256(raw)
	report := Report{
		SchemaVersion: ReportSchemaVersionV1,
		Source:        Source{Path: opts.SourceName, SHA256: hex.EncodeToString(sum[:])},
		Diagnostics:   []Diagnostic{},
	}
	run := &pipelineRun{log: log.With(zap.String("source", opts.SourceName)), report: &report}

	// document
	var records []songRecord
	halted, err := run.phase(PhaseDocument, func(ds *diagnostics) error {
		checkASCII(raw, ds)
		if !ds.empty() {
			return nil
		}
		var err error
		records, err = decodeDocument(raw, ds)
		return err
	})
	if halted || err != nil {
		return report, err
	}
	report.Songs = len(records)
	for _, r := range records {
		report.Charts += len(r.charts)
	}

	// records
	var entries []*songEntry
	if halted, _ = run.phase(PhaseRecords, func(ds *diagnostics) error {
		entries = checkRecords(records, ds)
		return nil
	}); halted {
		return report, nil
	}

	// ordering
	var songs []keyedSong
	var charts []keyedChart
	if halted, _ = run.phase(PhaseOrdering, func(ds *diagnostics) error {
		songs, charts = deriveKeys(entries)
		checkTies(songs, charts, ds)
		return nil
	}); halted {
		return report, nil
	}

	// sequence
	var canonicalSongs []keyedSong
	if halted, _ = run.phase(PhaseSequence, func(ds *diagnostics) error {
		_, chartMismatch := VerifySequence(charts,
			func(c keyedChart) ChartKey { return c.key },
			func(c keyedChart) int { return c.entry.chart.ID })
		if m := chartMismatch; m != nil {
			ds.add(KindSequence, "id", fmt.Sprintf("id for chart (%d) does not match expected (%d) for song '%s'", m.Got, m.Want, m.Item.entry.song.song.Title), m.Item.entry.record)
		}

		var songMismatch *SequenceMismatch[keyedSong]
		canonicalSongs, songMismatch = VerifySequence(songs,
			func(s keyedSong) SongKey { return s.key },
			func(s keyedSong) int { return s.entry.song.ID })
		if m := songMismatch; m != nil {
			ds.add(KindSequence, "id", fmt.Sprintf("id for song (%d) does not match expected (%d) for song '%s'", m.Got, m.Want, m.Item.entry.song.Title), m.Item.entry.record)
		}
		return nil
	}); halted {
		return report, nil
	}

	// titles
	catalog := make([]songdata.Song, 0, len(canonicalSongs))
	for _, s := range canonicalSongs {
		catalog = append(catalog, s.entry.song)
	}
	if halted, _ = run.phase(PhaseTitles, func(ds *diagnostics) error {
		for _, v := range CheckTitles(catalog) {
			record := canonicalSongs[v.Index].entry.record
			if v.Duplicate {
				ds.add(KindTitleConsistency, "altTitle", fmt.Sprintf("altTitle for this song entry is expected to be '%s'", v.Expected), record)
				continue
			}
			ds.add(KindTitleConsistency, "altTitle", fmt.Sprintf("altTitle is expected to be the same as title for song '%s'", v.Song.Title), record)
		}
		return nil
	}); halted {
		return report, nil
	}

	report.OK = true
	report.Catalog = catalog
	return report, nil
}

type pipelineRun struct {
	log    *zap.Logger
	report *Report
}

// phase runs fn and records its diagnostics. It reports whether the
// pipeline must halt.
func (r *pipelineRun) phase(name Phase, fn func(*diagnostics) error) (bool, error) {
	r.log.Debug("phase started", zap.String("phase", string(name)))
	ds := &diagnostics{phase: name}
	if err := fn(ds); err != nil {
		r.log.Error("phase failed", zap.String("phase", string(name)), zap.Error(err))
		return true, err
	}
	r.log.Info("phase completed", zap.String("phase", string(name)), zap.Int("diagnostics", len(ds.items)))
	if ds.empty() {
		return false, nil
	}
	r.report.HaltedPhase = name
	r.report.Diagnostics = append(r.report.Diagnostics, ds.items...)
	return true, nil
}
