package validation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func wellFormedDataset() []byte {
	alphaC := song(3, "alpha", "C", chart(8, "pst", "2.0.0"))
	return dataset(
		song(4, "Zeta", "Z"),
		alphaC,
		song(2, "Beta", "B", chart(4, "pst", "1.0.0"), chart(5, "prs", "1.0.0"), chart(6, "ftr", "1.0.0")),
		song(1, "Alpha", "A", chart(1, "pst", "1.0.0"), chart(2, "prs", "1.0.0"), chart(3, "ftr", "1.0.0"), chart(7, "byd", "2.0.0")),
	)
}

func TestValidateAcceptsWellFormedDataset(t *testing.T) {
	t.Parallel()

	report := mustValidate(t, wellFormedDataset())
	if !report.OK || report.HaltedPhase != PhaseNone {
		t.Fatalf("expected dataset to validate, got:\n%s", RenderText(report))
	}
	if report.Songs != 4 || report.Charts != 8 {
		t.Fatalf("expected 4 songs and 8 charts, got %d and %d", report.Songs, report.Charts)
	}
	if report.Err() != nil {
		t.Fatalf("expected nil error for a passing report, got %v", report.Err())
	}

	got := make([]int, 0, len(report.Catalog))
	for _, s := range report.Catalog {
		got = append(got, s.ID)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4}, got); diff != "" {
		t.Fatalf("expected catalog in canonical order (-want +got):\n%s", diff)
	}
	if RenderText(report) != "songdata.json ok" {
		t.Fatalf("unexpected success line %q", RenderText(report))
	}
}

func TestValidateSyntheticThreeSongOrder(t *testing.T) {
	t.Parallel()

	report := mustValidate(t, dataset(
		song(2, "B", "X", chart(2, "pst", "1.0.0")),
		song(1, "A", "X", chart(1, "pst", "1.0.0")),
		withAlt(song(3, "A", "Y", chart(3, "pst", "2.0.0")), "A (Y)"),
	))
	if !report.OK {
		t.Fatalf("expected dataset to validate, got:\n%s", RenderText(report))
	}
	order := make([]string, 0, 3)
	for _, s := range report.Catalog {
		order = append(order, s.Title+"/"+s.Artist)
	}
	if diff := cmp.Diff([]string{"A/X", "B/X", "A/Y"}, order); diff != "" {
		t.Fatalf("unexpected canonical order (-want +got):\n%s", diff)
	}
}

func withAlt(s songSpec, alt string) songSpec {
	s.alt = alt
	return s
}

func TestNonASCIIByteFailsBeforeParsing(t *testing.T) {
	t.Parallel()

	raw := []byte("[\n  {\"title\": \"caf\xc3\xa9\"")
	report := mustValidate(t, raw)
	if report.HaltedPhase != PhaseDocument {
		t.Fatalf("expected document phase to halt, got %q", report.HaltedPhase)
	}
	if diff := cmp.Diff([]Kind{KindASCIIViolation}, kinds(report)); diff != "" {
		t.Fatalf("expected only an ascii violation, JSON must not be parsed (-want +got):\n%s", diff)
	}
	want := "file contains non-ascii characters (byte 0xc3 at offset 18, line 2, column 17)"
	if got := report.Diagnostics[0].Message; got != want {
		t.Fatalf("unexpected ascii diagnostic %q, want %q", got, want)
	}
	if report.Songs != 0 {
		t.Fatalf("expected no songs counted, got %d", report.Songs)
	}
}

func TestDocumentPhaseRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	for name, raw := range map[string]string{
		"truncated": `[{"id": 1,]`,
		"trailing":  `[] []`,
		"empty":     ``,
	} {
		report := mustValidate(t, []byte(raw))
		if diff := cmp.Diff([]Kind{KindJSONSyntax}, kinds(report)); diff != "" {
			t.Fatalf("%s: unexpected diagnostics (-want +got):\n%s", name, diff)
		}
	}
}

func TestDocumentPhaseRejectsWrongShape(t *testing.T) {
	t.Parallel()

	report := mustValidate(t, []byte(`{"id": 1}`))
	if diff := cmp.Diff([]Kind{KindStructural}, kinds(report)); diff != "" {
		t.Fatalf("unexpected diagnostics for object root (-want +got):\n%s", diff)
	}
	if report.HaltedPhase != PhaseDocument {
		t.Fatalf("expected document phase to halt, got %q", report.HaltedPhase)
	}

	report = mustValidate(t, []byte(`[1, {"charts": [2]}]`))
	if diff := cmp.Diff([]Kind{KindStructural, KindStructural}, kinds(report)); diff != "" {
		t.Fatalf("unexpected diagnostics for non-object records (-want +got):\n%s", diff)
	}
	var fields []string
	for _, d := range report.Diagnostics {
		fields = append(fields, d.Field)
	}
	if diff := cmp.Diff([]string{"/0", "/1/charts/0"}, fields); diff != "" {
		t.Fatalf("unexpected shape locations (-want +got):\n%s", diff)
	}
}

func TestRecordsPhaseCollectsEveryDiagnostic(t *testing.T) {
	t.Parallel()

	raw := []byte(`[
  {"id": 1, "title": "A"},
  {"id": "2", "title": "B", "altTitle": "B", "artist": "X", "charts": [], "searchKeys": []},
  {"id": 9, "title": "C", "altTitle": "C", "artist": "X", "searchKeys": ["caf\u00e9", "ok", "na\u00efve"], "charts": [
    {"id": 1, "diff": "hard", "level": "13", "cc": 1.5, "ver": "1.0.0"},
    {"id": 2, "diff": "pst", "level": "1", "cc": 1.5, "ver": "1.0"},
    {"id": 5, "diff": "pst", "cc": 1.5}
  ]}
]`)
	report := mustValidate(t, raw)
	if report.HaltedPhase != PhaseRecords {
		t.Fatalf("expected records phase to halt, got %q", report.HaltedPhase)
	}
	want := []string{
		"missing keys (altTitle,artist,charts,searchKeys) found in song entry",
		"expected type does not match for keys (id) in song entry",
		"unicode sequence (caf\\u00e9) found in searchKeys in song entry",
		"unicode sequence (na\\u00efve) found in searchKeys in song entry",
		"unexpected diff (hard) found in chart entry for song 'C'",
		"unexpected level (13) found in chart entry for song 'C'",
		"unexpected version format (1.0) found in chart entry for song 'C'",
		"missing chart keys (level,ver) found in chart entry for song 'C'",
	}
	if diff := cmp.Diff(want, messages(report)); diff != "" {
		t.Fatalf("unexpected diagnostics (-want +got):\n%s", diff)
	}
	wantKinds := []Kind{
		KindStructural, KindStructural, KindASCIIViolation, KindASCIIViolation,
		KindVocabulary, KindVocabulary, KindVersionFormat, KindStructural,
	}
	if diff := cmp.Diff(wantKinds, kinds(report)); diff != "" {
		t.Fatalf("unexpected kinds (-want +got):\n%s", diff)
	}
	if got := report.Diagnostics[0].Error(); got != "missing keys (altTitle,artist,charts,searchKeys) found in song entry:\n{\"id\":1,\"title\":\"A\"}" {
		t.Fatalf("unexpected rendered diagnostic %q", got)
	}
	for _, d := range report.Diagnostics {
		if d.Kind == KindSequence {
			t.Fatalf("sequence phase must not run after record failures: %v", d)
		}
	}
}

func TestRecordsPhaseRejectsNonStringSearchKey(t *testing.T) {
	t.Parallel()

	raw := []byte(`[{"id": 1, "title": "A", "altTitle": "A", "artist": "X", "charts": [], "searchKeys": ["a", 7]}]`)
	report := mustValidate(t, raw)
	want := []string{"searchKeys entry 1 is not a string in song entry"}
	if diff := cmp.Diff(want, messages(report)); diff != "" {
		t.Fatalf("unexpected diagnostics (-want +got):\n%s", diff)
	}
	wantRecord := `{"id":1,"title":"A","altTitle":"A","artist":"X","charts":[],"searchKeys":["a",7]}`
	if got := string(report.Diagnostics[0].Record); got != wantRecord {
		t.Fatalf("expected compacted record in source key order, got %s", got)
	}
}

func TestRecordsPhaseRejectsDuplicateSongs(t *testing.T) {
	t.Parallel()

	report := mustValidate(t, dataset(
		song(1, "Foo", "X", chart(1, "pst", "1.0.0")),
		song(2, "Foo", "X", chart(2, "pst", "1.0.0")),
	))
	if report.HaltedPhase != PhaseRecords {
		t.Fatalf("expected records phase to halt, got %q", report.HaltedPhase)
	}
	want := []string{"duplicated song found ('X - Foo')"}
	if diff := cmp.Diff(want, messages(report)); diff != "" {
		t.Fatalf("unexpected diagnostics (-want +got):\n%s", diff)
	}
}

func TestSequencePhaseReportsChartsAndSongsIndependently(t *testing.T) {
	t.Parallel()

	report := mustValidate(t, dataset(
		song(1, "Alpha", "A", chart(1, "pst", "1.0.0"), chart(3, "prs", "1.0.0")),
		song(5, "Beta", "B", chart(2, "pst", "1.0.0")),
	))
	if report.HaltedPhase != PhaseSequence {
		t.Fatalf("expected sequence phase to halt, got %q: %v", report.HaltedPhase, report.Err())
	}
	want := []string{
		"id for chart (3) does not match expected (2) for song 'Alpha'",
		"id for song (5) does not match expected (2) for song 'Beta'",
	}
	if diff := cmp.Diff(want, messages(report)); diff != "" {
		t.Fatalf("unexpected diagnostics (-want +got):\n%s", diff)
	}
}

func TestSequencePhaseGatesTitles(t *testing.T) {
	t.Parallel()

	report := mustValidate(t, dataset(
		withAlt(song(2, "Alpha", "A", chart(1, "pst", "1.0.0")), "wrong"),
	))
	if diff := cmp.Diff([]Kind{KindSequence}, kinds(report)); diff != "" {
		t.Fatalf("title checks must not run after a sequence failure (-want +got):\n%s", diff)
	}
}

func TestTitlesPhaseCollectsEveryViolation(t *testing.T) {
	t.Parallel()

	report := mustValidate(t, dataset(
		withAlt(song(1, "Alpha", "A", chart(1, "pst", "1.0.0")), "Alpha (A)"),
		withAlt(song(2, "Beta", "B", chart(2, "pst", "1.0.0")), "Beta"),
		withAlt(song(3, "Alpha", "C", chart(3, "pst", "2.0.0")), "Alpha"),
	))
	want := []string{
		"altTitle is expected to be the same as title for song 'Alpha'",
		"altTitle for this song entry is expected to be 'Alpha (C)'",
	}
	if diff := cmp.Diff(want, messages(report)); diff != "" {
		t.Fatalf("unexpected diagnostics (-want +got):\n%s", diff)
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	t.Parallel()

	raw := dataset(
		song(1, "Alpha", "A", chart(1, "pst", "1.0.0"), chart(3, "prs", "1.0.0")),
	)
	first := mustValidate(t, raw)
	second := mustValidate(t, raw)
	if RenderText(first) != RenderText(second) {
		t.Fatalf("expected identical text output across runs")
	}
	a, err := RenderJSON(first)
	if err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}
	b, err := RenderJSON(second)
	if err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}
	if diff := cmp.Diff(string(a), string(b)); diff != "" {
		t.Fatalf("expected identical json output across runs (-first +second):\n%s", diff)
	}
}

func TestReportErrExposesDiagnostics(t *testing.T) {
	t.Parallel()

	report := mustValidate(t, dataset(
		song(1, "Alpha", "A", chart(2, "pst", "1.0.0")),
	))
	err := report.Err()
	if err == nil {
		t.Fatalf("expected joined error")
	}
	d, ok := FirstOfKind(err, KindSequence)
	if !ok || d.Phase != PhaseSequence {
		t.Fatalf("expected sequence diagnostic in joined error, got %+v (%v)", d, ok)
	}
	var target Diagnostic
	if !errors.As(err, &target) {
		t.Fatalf("expected errors.As to find a Diagnostic")
	}
	if _, ok := FirstOfKind(err, KindTitleConsistency); ok {
		t.Fatalf("did not expect a title diagnostic")
	}
}

func TestValidateLogsPhaseOutcomes(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	_, err := Validate(wellFormedDataset(), Options{SourceName: "fixture.json", Logger: zap.New(core)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	completed := logs.FilterMessage("phase completed").All()
	if len(completed) != len(Phases) {
		t.Fatalf("expected %d completed phases, got %d", len(Phases), len(completed))
	}
	for i, entry := range completed {
		if got := entry.ContextMap()["phase"]; got != string(Phases[i]) {
			t.Fatalf("expected phase %q at %d, got %v", Phases[i], i, got)
		}
		if got := entry.ContextMap()["source"]; got != "fixture.json" {
			t.Fatalf("expected source field, got %v", got)
		}
	}
}

func TestValidateFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "songdata.json")
	if err := os.WriteFile(path, wellFormedDataset(), 0o644); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}
	report, err := ValidateFile(path, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.OK || report.Source.Path != path || len(report.Source.SHA256) != 64 {
		t.Fatalf("unexpected report %+v", report)
	}

	if _, err := ValidateFile(filepath.Join(dir, "missing.json"), Options{}); err == nil {
		t.Fatalf("expected missing file error")
	}
	if _, err := ValidateFile("  ", Options{}); err == nil {
		t.Fatalf("expected empty path error")
	}
}
