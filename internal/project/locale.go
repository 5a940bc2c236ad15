package project

import (
	"golang.org/x/text/language"
)

// Locale holds the date layouts for one display locale.
type Locale struct {
	Tag        language.Tag
	RowLayout  string // day/month/year hour:minute
	FullLayout string // with seconds, for the detail view
}

// supportedLocales is ordered; the first entry is the fallback.
var supportedLocales = []Locale{
	{Tag: language.Indonesian, RowLayout: "02/01/2006, 15.04", FullLayout: "02/01/2006, 15.04.05"},
	{Tag: language.BritishEnglish, RowLayout: "02/01/2006, 15:04", FullLayout: "02/01/2006, 15:04:05"},
	{Tag: language.AmericanEnglish, RowLayout: "01/02/2006, 15:04", FullLayout: "01/02/2006, 15:04:05"},
}

var localeMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(supportedLocales))
	for i, l := range supportedLocales {
		tags[i] = l.Tag
	}
	return language.NewMatcher(tags)
}()

// DefaultLocale is Indonesian (id-ID), the gateway's home locale.
var DefaultLocale = supportedLocales[0]

// LocaleFor picks the closest supported locale for a BCP 47 tag such as
// "id-ID", "en-GB" or "en". Unparseable or unsupported tags yield
// DefaultLocale.
func LocaleFor(tag string) Locale {
	parsed, err := language.Parse(tag)
	if err != nil {
		return DefaultLocale
	}
	_, index, confidence := localeMatcher.Match(parsed)
	if confidence == language.No {
		return DefaultLocale
	}
	return supportedLocales[index]
}
