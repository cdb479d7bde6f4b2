package songdata

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Difficulty mirrors the chart "diff" vocabulary, ordered pst < prs < ftr < etr < byd.
type Difficulty string

const (
	DiffPast    Difficulty = "pst"
	DiffPresent Difficulty = "prs"
	DiffFuture  Difficulty = "ftr"
	DiffEternal Difficulty = "etr"
	DiffBeyond  Difficulty = "byd"
)

// Difficulties lists every difficulty in rank order.
var Difficulties = []Difficulty{DiffPast, DiffPresent, DiffFuture, DiffEternal, DiffBeyond}

// Rank returns the position of d in the difficulty ordering.
func (d Difficulty) Rank() (int, bool) {
	switch d {
	case DiffPast:
		return 0, true
	case DiffPresent:
		return 1, true
	case DiffFuture:
		return 2, true
	case DiffEternal:
		return 3, true
	case DiffBeyond:
		return 4, true
	default:
		return -1, false
	}
}

// Valid reports whether d is part of the difficulty vocabulary.
func (d Difficulty) Valid() bool {
	_, ok := d.Rank()
	return ok
}

// DisplayName returns the label shown to players, or "" for unknown values.
func (d Difficulty) DisplayName() string {
	switch d {
	case DiffPast:
		return "Past (PST)"
	case DiffPresent:
		return "Present (PRS)"
	case DiffFuture:
		return "Future (FTR)"
	case DiffEternal:
		return "Eternal (ETR)"
	case DiffBeyond:
		return "Beyond (BYD)"
	default:
		return ""
	}
}

// Levels is the ordered chart level vocabulary.
var Levels = []string{"1", "2", "3", "4", "5", "6", "7", "7+", "8", "8+", "9", "9+", "10", "10+", "11", "11+", "12"}

// IsLevel reports whether level is part of the level vocabulary.
func IsLevel(level string) bool {
	for _, l := range Levels {
		if l == level {
			return true
		}
	}
	return false
}

// Version is a dotted major.minor.patch release version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Unreleased sorts after every parseable version. Songs without charts carry it.
var Unreleased = Version{Major: math.MaxInt, Minor: math.MaxInt, Patch: math.MaxInt}

// ParseVersion parses "a.b.c" where each component is a non-negative base-10 integer.
// Components must fit in an int.
func ParseVersion(raw string) (Version, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("version %q must have exactly 3 components", raw)
	}
	var out [3]int
	for i, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return Version{}, fmt.Errorf("version %q component %d is not a non-negative integer", raw, i)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("version %q component %d: %w", raw, i, err)
		}
		out[i] = n
	}
	return Version{Major: out[0], Minor: out[1], Patch: out[2]}, nil
}

// Compare orders versions component by component.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return cmp.Compare(v.Major, o.Major)
	case v.Minor != o.Minor:
		return cmp.Compare(v.Minor, o.Minor)
	default:
		return cmp.Compare(v.Patch, o.Patch)
	}
}

func (v Version) String() string {
	if v == Unreleased {
		return "unreleased"
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Chart mirrors one entry of a song's "charts" array.
type Chart struct {
	ID    int        `json:"id"`
	Diff  Difficulty `json:"diff"`
	Level string     `json:"level"`
	CC    float64    `json:"cc"`
	Ver   string     `json:"ver"`
}

// Version parses the chart's ver field.
func (c Chart) Version() (Version, error) {
	return ParseVersion(c.Ver)
}

// Song mirrors one entry of the songdata.json root array.
type Song struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	AltTitle   string   `json:"altTitle"`
	Artist     string   `json:"artist"`
	Charts     []Chart  `json:"charts"`
	SearchKeys []string `json:"searchKeys"`
}

// Chart returns the song's chart for diff.
func (s Song) Chart(diff Difficulty) (Chart, bool) {
	for _, c := range s.Charts {
		if c.Diff == diff {
			return c, true
		}
	}
	return Chart{}, false
}

// ReleaseVersion is the minimum version across the song's charts, or
// Unreleased when the song has no charts. Charts with unparseable versions
// are ignored.
func (s Song) ReleaseVersion() Version {
	earliest := Unreleased
	for _, c := range s.Charts {
		v, err := c.Version()
		if err != nil {
			continue
		}
		if v.Compare(earliest) < 0 {
			earliest = v
		}
	}
	return earliest
}

// DisambiguatedTitle is the altTitle a song must carry when an earlier
// release already uses its title.
func (s Song) DisambiguatedTitle() string {
	return fmt.Sprintf("%s (%s)", s.Title, s.Artist)
}
