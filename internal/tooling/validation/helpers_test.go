package validation

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

type chartSpec struct {
	id    int
	diff  string
	level string
	ver   string
}

type songSpec struct {
	id     int
	title  string
	alt    string
	artist string
	charts []chartSpec
	keys   []string
}

func song(id int, title, artist string, charts ...chartSpec) songSpec {
	return songSpec{id: id, title: title, alt: title, artist: artist, charts: charts, keys: []string{strings.ToLower(title)}}
}

func chart(id int, diff, ver string) chartSpec {
	return chartSpec{id: id, diff: diff, level: "9", ver: ver}
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return escapeNonASCII(string(b))
}

// dataset renders songs as a songdata.json document. cc is always written
// as a float literal.
func dataset(songs ...songSpec) []byte {
	var b strings.Builder
	b.WriteString("[\n")
	for i, s := range songs {
		if i > 0 {
			b.WriteString(",\n")
		}
		charts := make([]string, 0, len(s.charts))
		for _, c := range s.charts {
			charts = append(charts, fmt.Sprintf(`{"id": %d, "diff": %s, "level": %s, "cc": 9.5, "ver": %s}`, c.id, quote(c.diff), quote(c.level), quote(c.ver)))
		}
		keys := make([]string, 0, len(s.keys))
		for _, k := range s.keys {
			keys = append(keys, quote(k))
		}
		fmt.Fprintf(&b, `  {"id": %d, "title": %s, "altTitle": %s, "artist": %s, "charts": [%s], "searchKeys": [%s]}`,
			s.id, quote(s.title), quote(s.alt), quote(s.artist), strings.Join(charts, ", "), strings.Join(keys, ", "))
	}
	b.WriteString("\n]\n")
	return []byte(b.String())
}

func mustValidate(t *testing.T, raw []byte) Report {
	t.Helper()
	report, err := Validate(raw, Options{})
	if err != nil {
		t.Fatalf("unexpected validation run error: %v", err)
	}
	return report
}

func kinds(report Report) []Kind {
	out := make([]Kind, 0, len(report.Diagnostics))
	for _, d := range report.Diagnostics {
		out = append(out, d.Kind)
	}
	return out
}

func messages(report Report) []string {
	out := make([]string, 0, len(report.Diagnostics))
	for _, d := range report.Diagnostics {
		out = append(out, d.Message)
	}
	return out
}
