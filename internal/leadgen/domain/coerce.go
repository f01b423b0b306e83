package domain

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	coerceEmailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	coercePhonePattern = regexp.MustCompile(`(?:\+?1[\s.\-]?)?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}`)
	coerceNumberPattern = regexp.MustCompile(`[-+]?\d[\d,]*(?:\.\d+)?`)
	coerceCurrencyPattern = regexp.MustCompile(`(?i)\$?\s*(\d[\d,]*(?:\.\d+)?)\s*(billion|million|thousand|[bmk])?\b`)
)

// emptyMarkers are values an LLM or a pattern rule emits when it has no
// answer; they coerce to "drop the field" rather than a stored value.
var emptyMarkers = map[string]bool{
	"": true, "unknown": true, "n/a": true, "na": true, "none": true,
	"null": true, "nil": true, "-": true,
}

var coerceDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
	"2006/01/02",
}

// Coerce converts a raw extracted string into the typed Value a Column's
// DataType declares. The second return is false when the value should be
// dropped entirely: empty, a "no answer" marker, or unparseable for the
// declared type. A dropped field is omitted from the stored custom-field
// map, never stored as a null or an empty string.
func Coerce(raw string, dataType ColumnDataType) (Value, bool) {
	raw = strings.TrimSpace(raw)
	if emptyMarkers[strings.ToLower(raw)] {
		return Value{}, false
	}

	switch dataType {
	case ColumnTypeNumber:
		m := coerceNumberPattern.FindString(raw)
		if m == "" {
			return Value{}, false
		}
		n, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
		if err != nil {
			return Value{}, false
		}
		return NumberValue(n), true

	case ColumnTypeCurrency:
		m := coerceCurrencyPattern.FindStringSubmatch(raw)
		if len(m) < 2 {
			return Value{}, false
		}
		amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			return Value{}, false
		}
		switch strings.ToLower(m[2]) {
		case "billion", "b":
			amount *= 1_000_000_000
		case "million", "m":
			amount *= 1_000_000
		case "thousand", "k":
			amount *= 1_000
		}
		return NumberValue(amount), true

	case ColumnTypeBoolean:
		switch strings.ToLower(raw) {
		case "true", "yes", "y", "1":
			return BoolValue(true), true
		case "false", "no", "n", "0":
			return BoolValue(false), true
		}
		return Value{}, false

	case ColumnTypeDate:
		for _, layout := range coerceDateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return DateValue(t), true
			}
		}
		return Value{}, false

	case ColumnTypeEmail:
		if m := coerceEmailPattern.FindString(raw); m != "" {
			return StringValue(m), true
		}
		return Value{}, false

	case ColumnTypePhone:
		if m := coercePhonePattern.FindString(raw); m != "" {
			return StringValue(m), true
		}
		return Value{}, false

	case ColumnTypeURL:
		parsed, err := url.Parse(raw)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return Value{}, false
		}
		return StringValue(raw), true

	default:
		return StringValue(raw), true
	}
}
