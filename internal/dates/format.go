package dates

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// DefaultLocale is used when no locale is given or the requested one is not
// supported.
const DefaultLocale = "id"

var supportedLocales = []language.Tag{
	language.Indonesian, // first entry is the matcher's fallback
	language.English,
}

var localeMatcher = language.NewMatcher(supportedLocales)

// ResolveLocale maps a BCP-47 locale string ("en-US", "id_ID", "") onto one of
// the supported display locales.
func ResolveLocale(locale string) string {
	if locale == "" {
		return DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return DefaultLocale
	}
	_, idx, conf := localeMatcher.Match(tag)
	if conf == language.No {
		return DefaultLocale
	}
	base, _ := supportedLocales[idx].Base()
	return base.String()
}

// APIString renders the local calendar day of t as YYYY-MM-DD. A zero time
// renders as an empty string.
func APIString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(APILayout)
}

// Display renders t as "DD Mon YYYY" with month abbreviations of locale.
func Display(t time.Time, locale string) string {
	if t.IsZero() {
		return ""
	}
	l := t.Local()
	names := shortMonths[ResolveLocale(locale)]
	return fmt.Sprintf("%02d %s %d", l.Day(), names[l.Month()-1], l.Year())
}

// MonthTitle renders "<Month> YYYY" with the full month name of locale.
func MonthTitle(year int, month time.Month, locale string) string {
	if month < time.January || month > time.December {
		return ""
	}
	names := longMonths[ResolveLocale(locale)]
	return fmt.Sprintf("%s %d", names[month-1], year)
}

// FormatPeriod renders a start/end pair for display. Only the start is shown
// when end is missing or not after start. When start cannot be parsed the
// fallback is returned, or "-" if the fallback is empty.
func FormatPeriod(start, end any, fallback, locale string) string {
	s, ok := Parse(start)
	if !ok {
		if fallback != "" {
			return fallback
		}
		return "-"
	}

	e, ok := Parse(end)
	if !ok || !e.After(s) {
		return Display(s, locale)
	}
	return Display(s, locale) + " - " + Display(e, locale)
}
