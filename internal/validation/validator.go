// =============================================================================
// B2B-WC Converter - Validation Engine
// =============================================================================
//
// This module validates transformed products before they are written to the
// import CSV. It checks:
//   - Required fields (name, SKU, price)
//   - Price plausibility against the configured bounds
//   - Duplicate SKUs across the catalog
//
// ERROR HANDLING:
//   - Errors are collected, not thrown immediately
//   - Each error includes context (row, SKU, field, value)
//   - Errors are fatal for the ROW, never for the run: invalid products are
//     dropped from the output and listed in the errors report, warnings keep
//     the product in
//
// CUSTOMIZATION:
//   - Add shop-specific rules in validateProduct
//   - Adjust severity per rule if your import tolerates missing prices
//
// =============================================================================

package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kvanta42/b2b-wc-converter/internal/config"
	"github.com/kvanta42/b2b-wc-converter/internal/types"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity indicates how the finding is treated.
	// "error" = the product is excluded from the output
	// "warning" = the product is kept, the finding is reported
	Severity string

	// RowNumber is the source spreadsheet row (1-based, header excluded).
	RowNumber int

	// SKU identifies the product, when it has one.
	SKU string

	// Field is the name of the field that failed validation.
	Field string

	// Value is the value that failed validation.
	Value string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] row %d, SKU '%s', field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.RowNumber,
		e.SKU,
		e.Field,
		e.Message,
		e.Value,
	)
}

// Result contains the outcome of validating a batch of products.
type Result struct {
	// Valid are the products that passed (possibly with warnings), in
	// input order.
	Valid []types.ProductOutput

	// Errors contains all findings, fatal and warning.
	Errors []*ValidationError

	// ErrorCount is the number of fatal findings.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks products against the catalog rules.
type Validator struct {
	cfg *config.Config
}

// NewValidator creates a validator for the given configuration.
func NewValidator(cfg *config.Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll validates every product and partitions them into valid products
// and findings. Duplicate SKU detection needs the whole batch, which is why
// validation is not per-row.
func (v *Validator) ValidateAll(products []types.ProductOutput) *Result {
	result := &Result{}

	// First pass: count SKU occurrences.
	skuCount := make(map[string]int, len(products))
	for _, p := range products {
		if p.SKU != "" {
			skuCount[p.SKU]++
		}
	}

	skuSeen := make(map[string]bool, len(skuCount))
	for _, p := range products {
		findings := v.validateProduct(p)

		// The first product with a duplicated SKU wins; later ones are
		// rejected, otherwise the import plugin silently overwrites.
		if p.SKU != "" && skuCount[p.SKU] > 1 {
			if skuSeen[p.SKU] {
				findings = append(findings, &ValidationError{
					Severity:  SeverityError,
					RowNumber: p.RowNumber,
					SKU:       p.SKU,
					Field:     "sku",
					Value:     p.SKU,
					Message:   fmt.Sprintf("duplicate SKU (%d occurrences)", skuCount[p.SKU]),
				})
			} else {
				skuSeen[p.SKU] = true
				findings = append(findings, &ValidationError{
					Severity:  SeverityWarning,
					RowNumber: p.RowNumber,
					SKU:       p.SKU,
					Field:     "sku",
					Value:     p.SKU,
					Message:   fmt.Sprintf("SKU appears %d times, keeping first", skuCount[p.SKU]),
				})
			}
		}

		fatal := false
		for _, f := range findings {
			result.Errors = append(result.Errors, f)
			if f.Severity == SeverityError {
				fatal = true
				result.ErrorCount++
			} else {
				result.WarningCount++
			}
		}

		if !fatal {
			result.Valid = append(result.Valid, p)
		}
	}

	return result
}

// validateProduct runs the single-product rules.
func (v *Validator) validateProduct(p types.ProductOutput) []*ValidationError {
	var findings []*ValidationError

	addFinding := func(severity, field, value, message string) {
		findings = append(findings, &ValidationError{
			Severity:  severity,
			RowNumber: p.RowNumber,
			SKU:       p.SKU,
			Field:     field,
			Value:     value,
			Message:   message,
		})
	}

	if strings.TrimSpace(p.Name) == "" {
		addFinding(SeverityError, "post_title", p.Name, "product name is required")
	}
	if p.SKU == "" {
		addFinding(SeverityError, "sku", p.SKU, "SKU is required")
	}

	switch {
	case p.Price == "":
		addFinding(SeverityError, "regular_price", p.Raw["Цена"], "price is missing or unparsable")
	default:
		price, err := strconv.ParseFloat(p.Price, 64)
		switch {
		case err != nil:
			addFinding(SeverityError, "regular_price", p.Price, "price is not numeric")
		case price < v.cfg.Currency.MinPrice || price > v.cfg.Currency.MaxPrice:
			addFinding(SeverityError, "regular_price", p.Price,
				fmt.Sprintf("price out of range %v..%v", v.cfg.Currency.MinPrice, v.cfg.Currency.MaxPrice))
		case price == 0:
			addFinding(SeverityWarning, "regular_price", p.Price, "price is zero")
		}
	}

	if p.Category == "" {
		addFinding(SeverityWarning, "tax:product_cat", "", "product has no category")
	}
	if p.PostContent == "" {
		addFinding(SeverityWarning, "post_content", "", "product has no description")
	}

	return findings
}

// =============================================================================
// REPORTING
// =============================================================================

// FormatErrors renders the findings as the lines of the errors report,
// fatal findings first.
func FormatErrors(errors []*ValidationError) []string {
	var lines []string
	for _, severity := range []string{SeverityError, SeverityWarning} {
		for _, e := range errors {
			if e.Severity == severity {
				lines = append(lines, e.Error())
			}
		}
	}
	return lines
}
