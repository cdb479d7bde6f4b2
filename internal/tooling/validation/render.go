package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf16"
)

// RenderText renders the report in the dataset maintainers' plain format.
func RenderText(report Report) string {
	name := report.Source.Path
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if report.OK {
		return fmt.Sprintf("%s ok", name)
	}
	messages := make([]string, 0, len(report.Diagnostics))
	for _, d := range report.Diagnostics {
		messages = append(messages, escapeNonASCII(d.Error()))
	}
	return fmt.Sprintf("errors found in %s:\n\n%s", name, strings.Join(messages, "\n\n"))
}

// RenderJSON renders the report as indented JSON. Output depends only on the
// validated bytes, so repeated runs are byte-identical.
func RenderJSON(report Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return []byte(escapeNonASCII(buf.String())), nil
}

// escapeNonASCII replaces every non-ASCII rune with a JSON-style \uXXXX
// escape, using surrogate pairs above the basic plane.
func escapeNonASCII(s string) string {
	if isASCII(s) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r < 0x80:
			b.WriteRune(r)
		case r > 0xFFFF:
			r1, r2 := utf16.EncodeRune(r)
			fmt.Fprintf(&b, `\u%04x\u%04x`, r1, r2)
		default:
			fmt.Fprintf(&b, `\u%04x`, r)
		}
	}
	return b.String()
}
