package api

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/goccy/go-json"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"deals-dashboard/internal/models"
)

// Placeholder is shown for any value that is missing or cannot be formatted.
const Placeholder = "—"

const mediumDateLayout = "Jan 2, 2006"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04Z07:00",
}

// Date-only forms are UTC midnight.
var dateOnlyLayouts = []string{
	time.DateOnly,
	"2006-01",
	"2006",
}

var localTimestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
}

// Formatter renders money and dates for one display time zone. The locale
// picks the currency symbol and digit grouping only: the symbol always leads
// and dates always use the English medium layout.
type Formatter struct {
	printer  *message.Printer
	location *time.Location
}

func NewFormatter(locale string, location *time.Location) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	if location == nil {
		location = time.UTC
	}
	return &Formatter{
		printer:  message.NewPrinter(tag),
		location: location,
	}, nil
}

// Currency renders amount with no fraction digits, e.g. "$12,500".
func (f *Formatter) Currency(amount models.Number, code string) string {
	if !amount.Valid || code == "" {
		return Placeholder
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	var symbol string
	if unit, err := currency.ParseISO(code); err == nil {
		symbol = f.printer.Sprint(currency.Symbol(unit))
	} else if isCurrencyCode(code) {
		symbol = code
	} else {
		return Placeholder
	}
	if r := []rune(symbol); len(r) > 0 && unicode.IsLetter(r[len(r)-1]) {
		symbol += "\u00a0"
	}

	// Half values round away from zero; number.Decimal alone rounds half to even.
	rounded := math.Round(math.Abs(amount.Value))
	digits := f.printer.Sprint(number.Decimal(rounded, number.MaxFractionDigits(0)))
	if amount.Value < 0 && rounded != 0 {
		return "-" + symbol + digits
	}
	return symbol + digits
}

// Date renders an ISO-8601 timestamp as a medium date, e.g. "Mar 5, 2024".
func (f *Formatter) Date(value string) string {
	t, ok := f.parseTimestamp(strings.TrimSpace(value))
	if !ok {
		return Placeholder
	}
	return t.In(f.location).Format(mediumDateLayout)
}

func (f *Formatter) parseTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	for _, layout := range localTimestampLayouts {
		if t, err := time.ParseInLocation(layout, value, f.location); err == nil {
			return t, true
		}
	}
	for _, layout := range dateOnlyLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DescribeAssociations summarizes linked people and companies, people first,
// e.g. "3 people · 2 companies".
func DescribeAssociations(deal models.Deal) string {
	companies := associationCount(deal.Companies, deal.CompanyIDs)
	people := associationCount(deal.People, deal.PersonIDs)
	if companies == 0 && people == 0 {
		return "No associations yet"
	}

	parts := make([]string, 0, 2)
	if people > 0 {
		parts = append(parts, fmt.Sprintf("%d people", people))
	}
	if companies > 0 {
		parts = append(parts, fmt.Sprintf("%d companies", companies))
	}
	return strings.Join(parts, " · ")
}

// associationCount prefers the embedded records when the field was present.
func associationCount(embedded, ids []json.RawMessage) int {
	if embedded != nil {
		return len(embedded)
	}
	return len(ids)
}

func isCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
