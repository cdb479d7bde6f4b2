package validation

import (
	"encoding/json"
	"errors"
	"strings"
)

// Kind classifies a diagnostic.
type Kind string

const (
	KindStructural       Kind = "structural"
	KindVocabulary       Kind = "vocabulary"
	KindVersionFormat    Kind = "version_format"
	KindASCIIViolation   Kind = "ascii_violation"
	KindJSONSyntax       Kind = "json_syntax"
	KindDuplicateSong    Kind = "duplicate_song"
	KindOrderingTie      Kind = "ordering_tie"
	KindSequence         Kind = "sequence"
	KindTitleConsistency Kind = "title_consistency"
)

// Phase names one gating step of the pipeline.
type Phase string

const (
	PhaseNone     Phase = ""
	PhaseDocument Phase = "document"
	PhaseRecords  Phase = "records"
	PhaseOrdering Phase = "ordering"
	PhaseSequence Phase = "sequence"
	PhaseTitles   Phase = "titles"
)

// Phases lists the pipeline phases in execution order.
var Phases = []Phase{PhaseDocument, PhaseRecords, PhaseOrdering, PhaseSequence, PhaseTitles}

// Diagnostic is one data violation found in the dataset.
type Diagnostic struct {
	Kind    Kind            `json:"kind"`
	Phase   Phase           `json:"phase"`
	Field   string          `json:"field,omitempty"`
	Message string          `json:"message"`
	Record  json.RawMessage `json:"record,omitempty"`
}

func (d Diagnostic) Error() string {
	if len(d.Record) == 0 {
		return d.Message
	}
	return d.Message + ":\n" + string(d.Record)
}

// diagnostics accumulates findings for one phase.
type diagnostics struct {
	phase Phase
	items []Diagnostic
}

func (ds *diagnostics) add(kind Kind, field, message string, record json.RawMessage) {
	ds.items = append(ds.items, Diagnostic{
		Kind:    kind,
		Phase:   ds.phase,
		Field:   field,
		Message: message,
		Record:  record,
	})
}

func (ds *diagnostics) empty() bool {
	return len(ds.items) == 0
}

// errorOf joins diagnostics into one error, or nil when there are none.
func errorOf(items []Diagnostic) error {
	if len(items) == 0 {
		return nil
	}
	errs := make([]error, 0, len(items))
	for _, d := range items {
		errs = append(errs, d)
	}
	return errors.Join(errs...)
}

// FirstOfKind returns the first diagnostic of kind found in err.
func FirstOfKind(err error, kind Kind) (Diagnostic, bool) {
	if err == nil {
		return Diagnostic{}, false
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if d, ok := FirstOfKind(e, kind); ok {
				return d, true
			}
		}
		return Diagnostic{}, false
	}
	var d Diagnostic
	if errors.As(err, &d) && d.Kind == kind {
		return d, true
	}
	return Diagnostic{}, false
}

func joinFields(fields []string) string {
	return strings.Join(fields, ",")
}
