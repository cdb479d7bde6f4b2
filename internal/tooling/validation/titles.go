package validation

import "github.com/tiger/songdata-validator/api/songdata"

// TitleViolation is a song whose altTitle breaks the first-occurrence rule.
type TitleViolation struct {
	Index    int
	Song     songdata.Song
	Expected string
	// Duplicate is set when an earlier song in canonical order shares the title.
	Duplicate bool
}

// CheckTitles walks songs in canonical order. The first song with a given
// title must carry it unchanged as altTitle; every later one must carry
// "{title} ({artist})".
func CheckTitles(ordered []songdata.Song) []TitleViolation {
	seen := make(map[string]struct{}, len(ordered))
	var out []TitleViolation
	for i, s := range ordered {
		_, dup := seen[s.Title]
		expected := s.Title
		if dup {
			expected = s.DisambiguatedTitle()
		} else {
			seen[s.Title] = struct{}{}
		}
		if s.AltTitle != expected {
			out = append(out, TitleViolation{Index: i, Song: s, Expected: expected, Duplicate: dup})
		}
	}
	return out
}
