package nls

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var monthNames = [12]string{
	"JANUARY", "FEBRUARY", "MARCH", "APRIL", "MAY", "JUNE",
	"JULY", "AUGUST", "SEPTEMBER", "OCTOBER", "NOVEMBER", "DECEMBER",
}

var dayNames = [7]string{
	"SUNDAY", "MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY",
}

var romanMonths = [12]string{
	"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X", "XI", "XII",
}

// Widest full names; MONTH and DAY pad to these outside fill mode.
const (
	monthNameWidth = 9
	dayNameWidth   = 9
	romanWidth     = 4
)

// letterCase is the casing a name element takes from the way it is
// spelled in the model: MONTH, Month or month.
type letterCase uint8

const (
	caseUpper letterCase = iota
	caseTitle
	caseLower
)

var (
	upperCaser = cases.Upper(language.Und)
	titleCaser = cases.Title(language.Und)
	lowerCaser = cases.Lower(language.Und)
)

func caseOf(spelling string) letterCase {
	letters := make([]rune, 0, 2)
	for _, r := range spelling {
		if unicode.IsLetter(r) {
			letters = append(letters, r)
			if len(letters) == 2 {
				break
			}
		}
	}
	switch {
	case len(letters) == 0:
		return caseUpper
	case unicode.IsLower(letters[0]):
		return caseLower
	case len(letters) > 1 && unicode.IsLower(letters[1]):
		return caseTitle
	}
	return caseUpper
}

func (c letterCase) apply(s string) string {
	switch c {
	case caseLower:
		return lowerCaser.String(s)
	case caseTitle:
		return titleCaser.String(s)
	}
	return upperCaser.String(s)
}

// matchName finds the entry of names that prefixes s, ignoring case. With
// abbrev set, three-letter abbreviations match too. It returns the index
// and the number of bytes consumed, or -1.
func matchName(names []string, s string, abbrev bool) (int, int) {
	upper := strings.ToUpper(s)
	for i, n := range names {
		if strings.HasPrefix(upper, n) {
			return i, len(n)
		}
	}
	if abbrev {
		for i, n := range names {
			if strings.HasPrefix(upper, n[:3]) {
				return i, 3
			}
		}
	}
	return -1, 0
}

// matchRoman reads a roman month numeral, preferring the longest match.
func matchRoman(s string) (int, int) {
	upper := strings.ToUpper(s)
	best, bestLen := -1, 0
	for i, r := range romanMonths {
		if strings.HasPrefix(upper, r) && len(r) > bestLen {
			best, bestLen = i, len(r)
		}
	}
	return best, bestLen
}
