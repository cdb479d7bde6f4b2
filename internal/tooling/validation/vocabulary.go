package validation

import (
	"fmt"

	"github.com/tiger/songdata-validator/api/songdata"
)

// VocabularyCheck is the outcome of checking a structurally valid chart's
// controlled-vocabulary fields.
type VocabularyCheck struct {
	BadDiff    bool
	BadLevel   bool
	BadVersion bool
	Version    songdata.Version
}

// OK reports whether diff, level and ver are all acceptable.
func (c VocabularyCheck) OK() bool {
	return !c.BadDiff && !c.BadLevel && !c.BadVersion
}

// CheckChartVocabulary checks diff, level and ver. Version holds the parsed
// ver when BadVersion is false.
func CheckChartVocabulary(diff, level, ver string) VocabularyCheck {
	out := VocabularyCheck{
		BadDiff:  !songdata.Difficulty(diff).Valid(),
		BadLevel: !songdata.IsLevel(level),
	}
	v, err := songdata.ParseVersion(ver)
	if err != nil {
		out.BadVersion = true
	} else {
		out.Version = v
	}
	return out
}

// NonASCIIKeys returns every search key containing a character outside ASCII.
func NonASCIIKeys(keys []string) []string {
	var out []string
	for _, k := range keys {
		if !isASCII(k) {
			out = append(out, k)
		}
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func reportChartVocabulary(ds *diagnostics, check VocabularyCheck, chart songdata.Chart, title string, record []byte) {
	if check.BadDiff {
		ds.add(KindVocabulary, "diff", fmt.Sprintf("unexpected diff (%s) found in chart entry for song '%s'", chart.Diff, title), record)
	}
	if check.BadLevel {
		ds.add(KindVocabulary, "level", fmt.Sprintf("unexpected level (%s) found in chart entry for song '%s'", chart.Level, title), record)
	}
	if check.BadVersion {
		ds.add(KindVersionFormat, "ver", fmt.Sprintf("unexpected version format (%s) found in chart entry for song '%s'", chart.Ver, title), record)
	}
}
