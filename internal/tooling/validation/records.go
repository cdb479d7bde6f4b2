package validation

import (
	"encoding/json"
	"fmt"

	"github.com/tiger/songdata-validator/api/songdata"
)

// songEntry is the working view of one song for a validation run. The
// source record is kept verbatim for reporting and never mutated.
type songEntry struct {
	song   songdata.Song
	record json.RawMessage
	charts []*chartEntry
}

type chartEntry struct {
	chart   songdata.Chart
	version songdata.Version
	record  json.RawMessage
	song    *songEntry
}

type songIdentity struct {
	title  string
	artist string
}

// checkRecords runs the schema and vocabulary checks over every song and
// chart, collecting every diagnostic.
func checkRecords(records []songRecord, ds *diagnostics) []*songEntry {
	entries := make([]*songEntry, 0, len(records))
	seen := make(map[songIdentity]struct{}, len(records))

	for _, rec := range records {
		fc := CheckFields(rec.fields, SongFields)
		if len(fc.Missing) > 0 {
			ds.add(KindStructural, joinFields(fc.Missing), fmt.Sprintf("missing keys (%s) found in song entry", joinFields(fc.Missing)), rec.raw)
			continue
		}
		if len(fc.Mismatched) > 0 {
			ds.add(KindStructural, joinFields(fc.Mismatched), fmt.Sprintf("expected type does not match for keys (%s) in song entry", joinFields(fc.Mismatched)), rec.raw)
			continue
		}

		entry := &songEntry{
			song: songdata.Song{
				ID:       intValue(rec.fields["id"]),
				Title:    rec.fields["title"].(string),
				AltTitle: rec.fields["altTitle"].(string),
				Artist:   rec.fields["artist"].(string),
			},
			record: rec.raw,
		}

		entry.song.SearchKeys = checkSearchKeys(rec, ds)
		for _, c := range rec.charts {
			if chart := checkChart(c, entry, ds); chart != nil {
				entry.charts = append(entry.charts, chart)
				entry.song.Charts = append(entry.song.Charts, chart.chart)
			}
		}

		id := songIdentity{title: entry.song.Title, artist: entry.song.Artist}
		if _, dup := seen[id]; dup {
			ds.add(KindDuplicateSong, "", fmt.Sprintf("duplicated song found ('%s - %s')", entry.song.Artist, entry.song.Title), rec.raw)
			continue
		}
		seen[id] = struct{}{}
		entries = append(entries, entry)
	}
	return entries
}

func checkSearchKeys(rec songRecord, ds *diagnostics) []string {
	items := rec.fields["searchKeys"].([]any)
	keys := make([]string, 0, len(items))
	for i, item := range items {
		key, ok := item.(string)
		if !ok {
			ds.add(KindStructural, "searchKeys", fmt.Sprintf("searchKeys entry %d is not a string in song entry", i), rec.raw)
			continue
		}
		keys = append(keys, key)
	}
	for _, key := range NonASCIIKeys(keys) {
		ds.add(KindASCIIViolation, "searchKeys", fmt.Sprintf("unicode sequence (%s) found in searchKeys in song entry", escapeNonASCII(key)), rec.raw)
	}
	return keys
}

func checkChart(rec chartRecord, song *songEntry, ds *diagnostics) *chartEntry {
	title := song.song.Title
	fc := CheckFields(rec.fields, ChartFields)
	if len(fc.Missing) > 0 {
		ds.add(KindStructural, joinFields(fc.Missing), fmt.Sprintf("missing chart keys (%s) found in chart entry for song '%s'", joinFields(fc.Missing), title), rec.raw)
		return nil
	}
	if len(fc.Mismatched) > 0 {
		ds.add(KindStructural, joinFields(fc.Mismatched), fmt.Sprintf("expected type does not match for chart keys (%s) found in chart entry for song '%s'", joinFields(fc.Mismatched), title), rec.raw)
		return nil
	}

	chart := songdata.Chart{
		ID:    intValue(rec.fields["id"]),
		Diff:  songdata.Difficulty(rec.fields["diff"].(string)),
		Level: rec.fields["level"].(string),
		CC:    floatValue(rec.fields["cc"]),
		Ver:   rec.fields["ver"].(string),
	}
	check := CheckChartVocabulary(string(chart.Diff), chart.Level, chart.Ver)
	if !check.OK() {
		reportChartVocabulary(ds, check, chart, title, rec.raw)
		return nil
	}
	return &chartEntry{chart: chart, version: check.Version, record: rec.raw, song: song}
}
