// Package normalize canonicalizes the free-form values found in schedule
// documents: Turkish/English weekday names, "HH:MM" times, term names and emails.
package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical term slugs.
const (
	TermFall   = "guz"
	TermSpring = "bahar"
)

// Fold lowercases s with Turkish casing rules and strips diacritics, so
// "ÇARŞAMBA", "Çarşamba" and "carsamba" all become "carsamba".
func Fold(s string) string {
	s = cases.Lower(language.Turkish).String(strings.TrimSpace(s))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ReplaceAll(folded, "ı", "i")
}

var dayNumbers = map[string]int{
	"pazartesi": 1, "monday": 1,
	"sali": 2, "tuesday": 2,
	"carsamba": 3, "wednesday": 3,
	"persembe": 4, "thursday": 4,
	"cuma": 5, "friday": 5,
	"cumartesi": 6, "saturday": 6,
	"pazar": 7, "sunday": 7,
}

var dayNames = [...]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var dayNamesTR = [...]string{"", "Pazartesi", "Salı", "Çarşamba", "Perşembe", "Cuma", "Cumartesi", "Pazar"}

// Day maps a weekday value to 1 (Monday) through 7 (Sunday). Integers in range
// pass through, numeric strings are parsed, names are matched after folding.
// Everything else is 0.
func Day(v interface{}) int {
	switch d := v.(type) {
	case nil:
		return 0
	case int:
		return dayInRange(int64(d))
	case int32:
		return dayInRange(int64(d))
	case int64:
		return dayInRange(d)
	case float64:
		if d != math.Trunc(d) {
			return 0
		}
		return dayInRange(int64(d))
	case string:
		s := Fold(d)
		if n, err := strconv.Atoi(s); err == nil {
			return dayInRange(int64(n))
		}
		return dayNumbers[s]
	default:
		return Day(fmt.Sprint(d))
	}
}

func dayInRange(n int64) int {
	if n < 1 || n > 7 {
		return 0
	}
	return int(n)
}

// DayName returns the English weekday name for 1-7, or "Unscheduled".
func DayName(day int) string {
	if day < 1 || day > 7 {
		return "Unscheduled"
	}
	return dayNames[day]
}

// DayNameTR returns the Turkish weekday name for 1-7, or "Günü Belirsiz".
func DayNameTR(day int) string {
	if day < 1 || day > 7 {
		return "Günü Belirsiz"
	}
	return dayNamesTR[day]
}

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// Seconds converts "HH:MM" or "HH:MM:SS" into seconds since midnight. It is an
// ordering key only; missing or malformed input is 0.
func Seconds(clock string) int {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(clock))
	if m == nil {
		return 0
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	ss := 0
	if m[3] != "" {
		ss, _ = strconv.Atoi(m[3])
	}
	return h*3600 + mm*60 + ss
}

// TermSlug folds a term name into its slug: "GÜZ" -> "guz", "Bahar" -> "bahar".
// Unknown names are returned folded.
func TermSlug(term string) string {
	s := Fold(term)
	switch s {
	case "guz":
		return TermFall
	case "bahar":
		return TermSpring
	}
	return s
}

var invisibleMarks = strings.NewReplacer(
	"\u200b", "", "\u200c", "", "\u200d", "", "\ufeff", "",
	"\u202a", "", "\u202b", "", "\u202c", "", "\u202d", "", "\u202e", "",
	"\u00a0", " ",
)

// Email normalizes an address typed on a phone keyboard: NFKC, invisible and
// bidi marks removed, whitespace dropped, lowercased.
func Email(raw string) string {
	s := invisibleMarks.Replace(norm.NFKC.String(raw))
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), "")
}
