package validation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DocumentSchemaURL identifies the embedded document-shape schema.
const DocumentSchemaURL = "https://github.com/tiger/songdata-validator/schema/songdata.schema.json"

//go:embed songdata.schema.json
var documentSchemaJSON []byte

// DocumentSchema returns the embedded document-shape schema source.
func DocumentSchema() []byte {
	return bytes.Clone(documentSchemaJSON)
}

var compileDocumentSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(DocumentSchemaURL, bytes.NewReader(documentSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(DocumentSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

type songRecord struct {
	raw    json.RawMessage
	fields map[string]any
	charts []chartRecord
}

type chartRecord struct {
	raw    json.RawMessage
	fields map[string]any
}

// checkASCII reports the first byte outside the ASCII range.
func checkASCII(raw []byte, ds *diagnostics) {
	line, col := 1, 1
	for i, b := range raw {
		if b >= 0x80 {
			ds.add(KindASCIIViolation, "", fmt.Sprintf("file contains non-ascii characters (byte 0x%02x at offset %d, line %d, column %d)", b, i, line, col), nil)
			return
		}
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
}

// decodeDocument parses raw and checks its shape. It returns the song records
// in source order when no diagnostic was added.
func decodeDocument(raw []byte, ds *diagnostics) ([]songRecord, error) {
	var doc any
	if err := decodeStrict(raw, &doc); err != nil {
		ds.add(KindJSONSyntax, "", fmt.Sprintf("file is not a single valid JSON document (%v)", err), nil)
		return nil, nil
	}

	schema, err := compileDocumentSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return nil, fmt.Errorf("validate document shape: %w", err)
		}
		for _, leaf := range schemaLeaves(ve) {
			location := leaf.InstanceLocation
			if location == "" {
				location = "/"
			}
			ds.add(KindStructural, location, fmt.Sprintf("unexpected document shape at %s (%s)", location, leaf.Message), nil)
		}
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("split song records: %w", err)
	}
	songs := make([]songRecord, 0, len(items))
	for i, item := range items {
		rec, err := decodeSongRecord(item)
		if err != nil {
			return nil, fmt.Errorf("decode song record %d: %w", i, err)
		}
		songs = append(songs, rec)
	}
	return songs, nil
}

func decodeSongRecord(item json.RawMessage) (songRecord, error) {
	rec := songRecord{raw: compact(item)}
	if err := decodeStrict(item, &rec.fields); err != nil {
		return songRecord{}, err
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(item, &members); err != nil {
		return songRecord{}, err
	}
	var charts []json.RawMessage
	if rawCharts, ok := members["charts"]; ok && json.Unmarshal(rawCharts, &charts) == nil {
		for _, c := range charts {
			chart := chartRecord{raw: compact(c)}
			if err := decodeStrict(c, &chart.fields); err != nil {
				return songRecord{}, err
			}
			rec.charts = append(rec.charts, chart)
		}
	}
	return rec, nil
}

func decodeStrict(data []byte, target any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(target); err != nil {
		return err
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return fmt.Errorf("unexpected trailing JSON payload")
	}
	return nil
}

func compact(raw json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}

func schemaLeaves(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, cause := range ve.Causes {
		out = append(out, schemaLeaves(cause)...)
	}
	return out
}
