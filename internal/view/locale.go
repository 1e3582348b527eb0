package view

import (
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

type localeFormat struct {
	locale monday.Locale
	layout string
}

var supported = []language.Tag{
	language.AmericanEnglish, // first entry is the fallback
	language.BritishEnglish,
	language.German,
	language.French,
	language.Spanish,
	language.Italian,
	language.Dutch,
	language.BrazilianPortuguese,
}

var formats = []localeFormat{
	{monday.LocaleEnUS, "January 2, 2006"},
	{monday.LocaleEnGB, "2 January 2006"},
	{monday.LocaleDeDE, "2. January 2006"},
	{monday.LocaleFrFR, "2 January 2006"},
	{monday.LocaleEsES, "2 de January de 2006"},
	{monday.LocaleItIT, "2 January 2006"},
	{monday.LocaleNlNL, "2 January 2006"},
	{monday.LocalePtBR, "2 de January de 2006"},
}

var matcher = language.NewMatcher(supported)

// Locale formats dates for one viewer.
type Locale struct {
	tag language.Tag
	fmt localeFormat
}

// DefaultLocale is used when nothing better can be negotiated.
var DefaultLocale = Locale{tag: supported[0], fmt: formats[0]}

// NegotiateLocale picks the best supported locale for an Accept-Language
// header value.
func NegotiateLocale(acceptLanguage string) Locale {
	if acceptLanguage == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLocale
	}
	return Locale{tag: supported[idx], fmt: formats[idx]}
}

// Tag returns the BCP 47 tag of the locale.
func (l Locale) Tag() string { return l.tag.String() }

// FormatDate renders t as a calendar date in UTC. The zero time formats as "".
func (l Locale) FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	f := l.fmt
	if f.layout == "" {
		f = formats[0]
	}
	return monday.Format(t.UTC(), f.layout, f.locale)
}
