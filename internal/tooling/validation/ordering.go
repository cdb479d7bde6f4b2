package validation

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/tiger/songdata-validator/api/songdata"
)

// SongKey orders songs by release version, then lower-cased title and artist.
type SongKey struct {
	Version songdata.Version
	Title   string
	Artist  string
}

func (k SongKey) Compare(o SongKey) int {
	if c := k.Version.Compare(o.Version); c != 0 {
		return c
	}
	if c := strings.Compare(k.Title, o.Title); c != 0 {
		return c
	}
	return strings.Compare(k.Artist, o.Artist)
}

func (k SongKey) String() string {
	return fmt.Sprintf("(%s, %q, %q)", k.Version, k.Title, k.Artist)
}

// ChartKey orders charts by their own version, then the parent song's
// lower-cased title and artist, then difficulty rank.
type ChartKey struct {
	Version  songdata.Version
	Title    string
	Artist   string
	DiffRank int
}

func (k ChartKey) Compare(o ChartKey) int {
	if c := k.Version.Compare(o.Version); c != 0 {
		return c
	}
	if c := strings.Compare(k.Title, o.Title); c != 0 {
		return c
	}
	if c := strings.Compare(k.Artist, o.Artist); c != 0 {
		return c
	}
	return cmp.Compare(k.DiffRank, o.DiffRank)
}

func (k ChartKey) String() string {
	return fmt.Sprintf("(%s, %q, %q, %d)", k.Version, k.Title, k.Artist, k.DiffRank)
}

// DeriveSongKey computes the canonical key of a song. Charts with invalid
// versions must already have been rejected.
func DeriveSongKey(s songdata.Song) SongKey {
	return SongKey{
		Version: s.ReleaseVersion(),
		Title:   strings.ToLower(s.Title),
		Artist:  strings.ToLower(s.Artist),
	}
}

// DeriveChartKey computes the canonical key of a chart owned by parent.
func DeriveChartKey(c songdata.Chart, version songdata.Version, parent songdata.Song) ChartKey {
	rank, _ := c.Diff.Rank()
	return ChartKey{
		Version:  version,
		Title:    strings.ToLower(parent.Title),
		Artist:   strings.ToLower(parent.Artist),
		DiffRank: rank,
	}
}

type keyedSong struct {
	entry *songEntry
	key   SongKey
}

type keyedChart struct {
	entry *chartEntry
	key   ChartKey
}

// deriveKeys annotates every song and chart with its canonical key, in
// source order. The annotations live beside the entries.
func deriveKeys(entries []*songEntry) ([]keyedSong, []keyedChart) {
	songs := make([]keyedSong, 0, len(entries))
	var charts []keyedChart
	for _, e := range entries {
		songs = append(songs, keyedSong{entry: e, key: DeriveSongKey(e.song)})
		for _, c := range e.charts {
			charts = append(charts, keyedChart{entry: c, key: DeriveChartKey(c.chart, c.version, e.song)})
		}
	}
	return songs, charts
}

// checkTies reports every pair of records with identical canonical keys.
func checkTies(songs []keyedSong, charts []keyedChart, ds *diagnostics) {
	for _, tie := range FindTies(songs, func(s keyedSong) SongKey { return s.key }) {
		a, b := tie[0].entry, tie[1].entry
		ds.add(KindOrderingTie, "", fmt.Sprintf("songs '%s' (id %d) and '%s' (id %d) share ordering key %s", a.song.Title, a.song.ID, b.song.Title, b.song.ID, tie[0].key), b.record)
	}
	for _, tie := range FindTies(charts, func(c keyedChart) ChartKey { return c.key }) {
		a, b := tie[0].entry, tie[1].entry
		ds.add(KindOrderingTie, "", fmt.Sprintf("charts %d and %d for song '%s' share ordering key %s", a.chart.ID, b.chart.ID, b.song.song.Title, tie[0].key), b.record)
	}
}
