// Package prefs provides the typed user preferences shared by every tool:
// colour theme, display currency, clock style and time format.
//
// Preferences are loaded once when the Store is opened, written back to a
// TOML file on every change, and broadcast to observers through a
// notify.Notifier. Hosts receive the Store explicitly; there is no global
// instance.
package prefs

import (
	"fmt"
	"time"
)

// Preference keys, used in change notifications and environment overrides.
const (
	KeyTheme      = "theme"
	KeyCurrency   = "currency"
	KeyClockStyle = "clock_style"
	KeyTimeFormat = "time_format"
)

// Keys lists every preference key in display order.
var Keys = []string{KeyTheme, KeyCurrency, KeyClockStyle, KeyTimeFormat}

// Theme is the colour theme.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

var themes = []Theme{ThemeLight, ThemeDark, ThemeSystem}

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	for _, v := range themes {
		if v == t {
			return true
		}
	}
	return false
}

// Next returns the theme that follows t in the cycle light, dark, system.
func (t Theme) Next() Theme {
	for i, v := range themes {
		if v == t {
			return themes[(i+1)%len(themes)]
		}
	}
	return ThemeLight
}

// ParseTheme parses a theme name.
func ParseTheme(s string) (Theme, error) {
	t := Theme(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: theme %q", ErrInvalidValue, s)
	}
	return t, nil
}

// Currency is an ISO 4217 currency code.
type Currency string

// CurrencyInfo describes a supported currency.
type CurrencyInfo struct {
	Code   Currency
	Symbol string
	Name   string
}

var currencies = []CurrencyInfo{
	{"USD", "$", "US Dollar"},
	{"EUR", "€", "Euro"},
	{"GBP", "£", "British Pound"},
	{"INR", "₹", "Indian Rupee"},
	{"JPY", "¥", "Japanese Yen"},
	{"CNY", "¥", "Chinese Yuan"},
	{"AUD", "A$", "Australian Dollar"},
	{"CAD", "C$", "Canadian Dollar"},
	{"CHF", "Fr", "Swiss Franc"},
}

// Currencies returns the supported currencies.
func Currencies() []CurrencyInfo {
	out := make([]CurrencyInfo, len(currencies))
	copy(out, currencies)
	return out
}

// Info returns the metadata for c.
func (c Currency) Info() (CurrencyInfo, bool) {
	for _, info := range currencies {
		if info.Code == c {
			return info, true
		}
	}
	return CurrencyInfo{}, false
}

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	_, ok := c.Info()
	return ok
}

// Symbol returns the currency symbol, or the code itself if unknown.
func (c Currency) Symbol() string {
	if info, ok := c.Info(); ok {
		return info.Symbol
	}
	return string(c)
}

// ParseCurrency parses a currency code.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: currency %q", ErrInvalidValue, s)
	}
	return c, nil
}

// ClockStyle selects how the clock is drawn.
type ClockStyle string

const (
	ClockDigital ClockStyle = "digital"
	ClockAnalog  ClockStyle = "analog"
)

// Valid reports whether c is a known clock style.
func (c ClockStyle) Valid() bool {
	return c == ClockDigital || c == ClockAnalog
}

// ParseClockStyle parses a clock style name.
func ParseClockStyle(s string) (ClockStyle, error) {
	c := ClockStyle(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: clock style %q", ErrInvalidValue, s)
	}
	return c, nil
}

// TimeFormat selects a 12 or 24 hour clock.
type TimeFormat string

const (
	TimeFormat12h TimeFormat = "12h"
	TimeFormat24h TimeFormat = "24h"
)

// Valid reports whether f is a known time format.
func (f TimeFormat) Valid() bool {
	return f == TimeFormat12h || f == TimeFormat24h
}

// Layout returns the time.Format layout for f.
func (f TimeFormat) Layout() string {
	if f == TimeFormat12h {
		return "3:04 PM"
	}
	return "15:04"
}

// ParseTimeFormat parses a time format name.
func ParseTimeFormat(s string) (TimeFormat, error) {
	f := TimeFormat(s)
	if !f.Valid() {
		return "", fmt.Errorf("%w: time format %q", ErrInvalidValue, s)
	}
	return f, nil
}

// Preferences is the full set of user preferences.
type Preferences struct {
	Theme      Theme      `toml:"theme"`
	Currency   Currency   `toml:"currency"`
	ClockStyle ClockStyle `toml:"clock_style"`
	TimeFormat TimeFormat `toml:"time_format"`
}

// Default returns the preferences used when nothing has been saved.
func Default() Preferences {
	return Preferences{
		Theme:      ThemeSystem,
		Currency:   "USD",
		ClockStyle: ClockDigital,
		TimeFormat: TimeFormat24h,
	}
}

// Validate checks every field.
func (p Preferences) Validate() error {
	for _, key := range Keys {
		if err := validateField(key, p.Get(key)); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the string form of the preference named key.
func (p Preferences) Get(key string) string {
	switch key {
	case KeyTheme:
		return string(p.Theme)
	case KeyCurrency:
		return string(p.Currency)
	case KeyClockStyle:
		return string(p.ClockStyle)
	case KeyTimeFormat:
		return string(p.TimeFormat)
	default:
		return ""
	}
}

// with returns a copy of p with key set to value. Value must already be
// validated.
func (p Preferences) with(key, value string) Preferences {
	switch key {
	case KeyTheme:
		p.Theme = Theme(value)
	case KeyCurrency:
		p.Currency = Currency(value)
	case KeyClockStyle:
		p.ClockStyle = ClockStyle(value)
	case KeyTimeFormat:
		p.TimeFormat = TimeFormat(value)
	}
	return p
}

// withDefaults fills empty fields from Default.
func (p Preferences) withDefaults() Preferences {
	def := Default()
	for _, key := range Keys {
		if p.Get(key) == "" {
			p = p.with(key, def.Get(key))
		}
	}
	return p
}

func validateField(key, value string) error {
	var err error
	switch key {
	case KeyTheme:
		_, err = ParseTheme(value)
	case KeyCurrency:
		_, err = ParseCurrency(value)
	case KeyClockStyle:
		_, err = ParseClockStyle(value)
	case KeyTimeFormat:
		_, err = ParseTimeFormat(value)
	default:
		err = fmt.Errorf("%w: unknown key %q", ErrInvalidValue, key)
	}
	return err
}

// analogFaces are the clock-face glyphs for 1 o'clock through 12 o'clock.
var analogFaces = []rune("🕐🕑🕒🕓🕔🕕🕖🕗🕘🕙🕚🕛")

// FormatClock renders t according to the clock style and time format.
func (p Preferences) FormatClock(t time.Time) string {
	digits := t.Format(p.TimeFormat.Layout())
	if p.ClockStyle != ClockAnalog {
		return digits
	}
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	return string(analogFaces[hour-1]) + " " + digits
}
