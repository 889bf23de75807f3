package printing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders amounts and dates the way a given locale writes them
type Formatter struct {
	tag     language.Tag
	unit    currency.Unit
	scale   int
	printer *message.Printer
	title   cases.Caser
	date    string
}

// NewFormatter creates a Formatter for a BCP 47 locale and an ISO 4217
// currency code.
func NewFormatter(locale, currencyCode string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid receipt locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("invalid receipt currency %q: %w", currencyCode, err)
	}
	scale, _ := currency.Standard.Rounding(unit)

	return &Formatter{
		tag:     tag,
		unit:    unit,
		scale:   scale,
		printer: message.NewPrinter(tag),
		title:   cases.Title(tag),
		date:    dateLayout(tag),
	}, nil
}

// Amount formats a money value with the currency code, for example
// "ARS 1.234,50" for es-AR.
func (f *Formatter) Amount(d decimal.Decimal) string {
	rounded := d.Round(int32(f.scale))
	return f.printer.Sprintf("%s %v", f.unit, number.Decimal(rounded.InexactFloat64(), number.Scale(f.scale)))
}

// Date formats a calendar date
func (f *Formatter) Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(f.date)
}

// Label turns a snake_case enum value into title case words
func (f *Formatter) Label(v string) string {
	return f.title.String(strings.ReplaceAll(v, "_", " "))
}

// Locale returns the formatter's language tag
func (f *Formatter) Locale() language.Tag {
	return f.tag
}

// dateLayout picks month-first dates for US English and day-first otherwise
func dateLayout(tag language.Tag) string {
	base, _ := tag.Base()
	region, _ := tag.Region()
	switch {
	case base.String() == "en" && region.String() == "US":
		return "01/02/2006"
	case base.String() == "und":
		return time.DateOnly
	default:
		return "02/01/2006"
	}
}
