// =============================================================================
// B2B-WC Converter - Field Transformations
// =============================================================================
//
// This module holds the field-level transformations applied to raw catalog
// values before they enter the WooCommerce schema:
//   - SKU cleanup (slash/dash normalization)
//   - Price cleanup (currency tokens, thousands separators, decimal comma)
//   - Category path conversion (" - " separators to " > ", de-duplication)
//   - Slug generation (Cyrillic transliteration + diacritics folding)
//   - Boolean normalization (да/нет <-> yes/no)
//
// All functions are pure; the converter wires them into the row pipeline.
//
// =============================================================================

package converter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/kvanta42/b2b-wc-converter/internal/config"
)

// =============================================================================
// SKU CLEANUP
// =============================================================================

var (
	skuSeparatorRe = regexp.MustCompile(`\s*[/\-]\s*`)
	multiDashRe    = regexp.MustCompile(`-+`)
	nonSlugRe      = regexp.MustCompile(`[^\w\s-]`)
	dashSpaceRe    = regexp.MustCompile(`[-\s]+`)
)

// CleanSKU normalizes an article number for use as a WooCommerce SKU.
// Slashes become dashes, whitespace around separators is dropped, and
// repeated dashes collapse to one.
func CleanSKU(raw string) string {
	sku := strings.TrimSpace(raw)
	if sku == "" {
		return ""
	}

	sku = skuSeparatorRe.ReplaceAllString(sku, "-")
	sku = strings.ReplaceAll(sku, "/", "-")
	sku = strings.Join(strings.Fields(sku), " ")
	sku = multiDashRe.ReplaceAllString(sku, "-")

	return sku
}

// =============================================================================
// PRICE CLEANUP
// =============================================================================

// PriceError describes a price value that could not be converted.
type PriceError struct {
	Raw    string
	Reason string
}

func (e *PriceError) Error() string {
	return fmt.Sprintf("price %q: %s", e.Raw, e.Reason)
}

// CleanPrice converts a raw catalog price ("14 990 руб.", "1.299,50") into a
// canonical two-decimal string. Currency tokens and thousands separators are
// stripped per the configuration; a decimal comma becomes a dot; when more
// than one dot remains, only the last is kept as the decimal separator.
func CleanPrice(raw string, cur config.CurrencyConfig) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", &PriceError{Raw: raw, Reason: "empty value"}
	}

	for _, pattern := range cur.StripPatterns {
		text = strings.ReplaceAll(text, pattern, "")
	}
	text = strings.ReplaceAll(text, " ", "")
	text = strings.ReplaceAll(text, " ", "")
	text = strings.ReplaceAll(text, ",", ".")

	// "1.299.50" style: everything but the last dot is a thousands separator.
	if parts := strings.Split(text, "."); len(parts) > 2 {
		text = strings.Join(parts[:len(parts)-1], "") + "." + parts[len(parts)-1]
	}

	// Drop any leftover non-numeric characters (stray currency letters etc.).
	text = strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, text)

	if text == "" || text == "." || text == "-" {
		return "", &PriceError{Raw: raw, Reason: "no numeric value"}
	}

	price, err := decimal.NewFromString(text)
	if err != nil {
		return "", &PriceError{Raw: raw, Reason: "not a number"}
	}

	min := decimal.NewFromFloat(cur.MinPrice)
	max := decimal.NewFromFloat(cur.MaxPrice)
	if price.Cmp(min) < 0 || price.Cmp(max) > 0 {
		return "", &PriceError{Raw: raw, Reason: fmt.Sprintf("outside bounds [%v, %v]", cur.MinPrice, cur.MaxPrice)}
	}

	return price.StringFixed(2), nil
}

// =============================================================================
// CATEGORY CONVERSION
// =============================================================================

// ConvertCategory rewrites a supplier category path ("Обогреватели -
// Конвекторы - Конвекторы") into the WooCommerce form ("Обогреватели >
// Конвекторы"), dropping duplicate path parts.
func ConvertCategory(raw string) string {
	category := strings.TrimSpace(raw)
	if category == "" {
		return ""
	}

	category = strings.ReplaceAll(category, " - ", " > ")

	var unique []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(category, " > ") {
		part = strings.TrimSpace(part)
		if part != "" && !seen[part] {
			seen[part] = true
			unique = append(unique, part)
		}
	}

	return strings.Join(unique, " > ")
}

// =============================================================================
// SLUG GENERATION
// =============================================================================

// cyrillicMap is the GOST-ish transliteration used for slugs and file names.
var cyrillicMap = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d",
	'е': "e", 'ё': "yo", 'ж': "zh", 'з': "z", 'и': "i",
	'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n",
	'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t",
	'у': "u", 'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch",
	'ш': "sh", 'щ': "sch", 'ъ': "", 'ы': "y", 'ь': "",
	'э': "e", 'ю': "yu", 'я': "ya",
}

// foldDiacritics strips combining marks so "é" slugs as "e". Cyrillic is
// handled separately by cyrillicMap.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts a product title into a URL/file-name slug: lower case,
// Cyrillic transliterated, diacritics folded, runs of punctuation and spaces
// collapsed to single dashes, length capped at maxLen.
func Slugify(text string, maxLen int) string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return ""
	}

	// Transliterate before folding: NFD would decompose й and ё into a base
	// letter plus a combining mark, and the mark removal would leave и/е.
	var b strings.Builder
	for _, r := range text {
		if lat, ok := cyrillicMap[r]; ok {
			b.WriteString(lat)
		} else {
			b.WriteRune(r)
		}
	}
	text = b.String()

	if folded, _, err := transform.String(foldDiacritics, text); err == nil {
		text = folded
	}

	text = nonSlugRe.ReplaceAllString(text, "")
	text = dashSpaceRe.ReplaceAllString(text, "-")
	text = strings.Trim(text, "-")

	if maxLen > 0 && len(text) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = strings.TrimRight(text[:cut], "-")
	}

	return text
}

// =============================================================================
// BOOLEAN NORMALIZATION
// =============================================================================

// NormalizeBoolean maps да/нет/true/false onto the yes/no values WooCommerce
// attribute imports expect. Unrecognized values pass through unchanged.
func NormalizeBoolean(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "да", "yes", "true":
		return "yes"
	case "нет", "no", "false":
		return "no"
	}
	return value
}

// DisplayBoolean is the inverse mapping used inside generated descriptions,
// where the reader expects Да/Нет.
func DisplayBoolean(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true", "да":
		return "Да"
	case "no", "false", "нет":
		return "Нет"
	}
	return value
}
