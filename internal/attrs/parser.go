// =============================================================================
// B2B-WC Converter - Characteristics Parser
// =============================================================================
//
// The catalog packs every technical characteristic of a product into a single
// cell: "Мощность: 2 кВт; Цвет корпуса: белый; Габариты (ШхВхГ): 460x400x98".
// This module parses that cell, assigns each pair to a display group, maps
// selected keys onto WooCommerce filter attributes (pa_*), extracts the
// weight/dimension columns, and renders the grouped HTML section for the
// product description.
//
// PARSE RULES:
//   - Pairs are separated by ';', but a ';' inside parentheses belongs to
//     the value (e.g. "Режимы: эко; комфорт (день; ночь)").
//   - Key and value split on the FIRST ':' so values may contain colons.
//   - Keys are matched case-insensitively with punctuation stripped.
//
// =============================================================================

package attrs

import (
	"fmt"
	"html"
	"strings"

	"github.com/kvanta42/b2b-wc-converter/internal/config"
	"github.com/kvanta42/b2b-wc-converter/internal/types"
)

// Parser parses and groups product characteristics.
type Parser struct {
	groups       []config.GroupRule
	defaultGroup string
	attributes   map[string]string
	extract      map[string][]string
}

// NewParser builds a parser from the catalog and WooCommerce configuration.
func NewParser(cfg *config.Config) *Parser {
	return &Parser{
		groups:       cfg.Catalog.CharacteristicGroups,
		defaultGroup: cfg.Catalog.DefaultGroup,
		attributes:   cfg.WooCommerce.Attributes,
		extract:      cfg.Catalog.ExtractFields,
	}
}

// =============================================================================
// PARSING
// =============================================================================

// SplitPairs splits the raw characteristics cell into (key, value) pairs.
// Separator semicolons are only recognized at parenthesis depth zero.
func SplitPairs(raw string) []types.Characteristic {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}

	var parts []string
	var current strings.Builder
	depth := 0

	for _, r := range text {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		}
		if r == ';' && depth == 0 {
			if p := strings.TrimSpace(current.String()); p != "" {
				parts = append(parts, p)
			}
			current.Reset()
			continue
		}
		current.WriteRune(r)
	}
	if p := strings.TrimSpace(current.String()); p != "" {
		parts = append(parts, p)
	}

	var chars []types.Characteristic
	for _, part := range parts {
		key, value, found := strings.Cut(part, ":")
		if !found {
			// A bare statement like "Защита от перегрева" is kept with an
			// empty value.
			chars = append(chars, types.Characteristic{Key: part})
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), ";"))
		if key == "" {
			continue
		}
		chars = append(chars, types.Characteristic{
			Key:   key,
			Value: strings.Join(strings.Fields(value), " "),
		})
	}

	return chars
}

// normalizeKey lowers the key and strips punctuation so "Габариты (ШхВхГ)"
// matches the "габарит" keyword.
func normalizeKey(key string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(key) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9',
			r >= 'а' && r <= 'я', r == 'ё':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// =============================================================================
// GROUPING AND ATTRIBUTE MAPPING
// =============================================================================

// Parse splits, groups and attribute-maps the characteristics cell.
// The returned slice preserves source order; Group and AttributeSlug are
// filled on each element.
func (p *Parser) Parse(raw string) []types.Characteristic {
	chars := SplitPairs(raw)

	for i := range chars {
		chars[i].Group = p.groupFor(chars[i].Key)
		chars[i].AttributeSlug = p.attributeSlug(chars[i].Key)
	}

	return chars
}

func (p *Parser) groupFor(key string) string {
	norm := normalizeKey(key)
	for _, rule := range p.groups {
		for _, kw := range rule.Keywords {
			if strings.Contains(norm, kw) {
				return rule.Group
			}
		}
	}
	return p.defaultGroup
}

// attributeSlug returns the pa_* slug when the key maps to a WooCommerce
// attribute. Exact matches win; otherwise a normalized containment check
// covers keys that drift between catalog revisions ("Цвет корпуса" vs
// "Цвет корпуса товара").
func (p *Parser) attributeSlug(key string) string {
	if slug, ok := p.attributes[key]; ok {
		return slug
	}

	norm := normalizeKey(key)
	for attrKey, slug := range p.attributes {
		normAttr := normalizeKey(attrKey)
		if strings.Contains(norm, normAttr) || strings.Contains(normAttr, norm) {
			return slug
		}
	}
	return ""
}

// Attributes extracts the WooCommerce attribute columns from parsed
// characteristics. The combined pa_dimensions value is assembled from the
// width/height/length characteristics when the slug is configured.
func (p *Parser) Attributes(chars []types.Characteristic) map[string]string {
	out := make(map[string]string)

	for _, c := range chars {
		if c.AttributeSlug == "" || c.Value == "" {
			continue
		}
		if _, taken := out[c.AttributeSlug]; taken {
			continue // first occurrence wins
		}
		out[c.AttributeSlug] = c.Value
	}

	if p.hasDimensionsSlug() {
		if dims := combineDimensions(chars); dims != "" {
			out["pa_dimensions"] = dims
		}
	}

	return out
}

func (p *Parser) hasDimensionsSlug() bool {
	for _, slug := range p.attributes {
		if slug == "pa_dimensions" {
			return true
		}
	}
	return false
}

// combineDimensions builds the "W x H x L" attribute value from individual
// dimension characteristics.
func combineDimensions(chars []types.Characteristic) string {
	var width, height, length string
	for _, c := range chars {
		norm := normalizeKey(c.Key)
		switch {
		case strings.Contains(norm, "ширин") && width == "":
			width = c.Value
		case strings.Contains(norm, "высот") && height == "":
			height = c.Value
		case (strings.Contains(norm, "глубин") || strings.Contains(norm, "длин")) && length == "":
			length = c.Value
		}
	}

	var parts []string
	for _, v := range []string{width, height, length} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " x ")
}

// ExtractFields pulls the configured weight/length/width/height values out of
// the characteristics, for the dedicated CSV columns. For each output field
// the configured source keys are checked in order; the first match wins.
func (p *Parser) ExtractFields(chars []types.Characteristic) map[string]string {
	out := make(map[string]string)

	for field, keys := range p.extract {
		for _, wanted := range keys {
			normWanted := normalizeKey(wanted)
			for _, c := range chars {
				if strings.Contains(normalizeKey(c.Key), normWanted) && c.Value != "" {
					out[field] = c.Value
					break
				}
			}
			if _, ok := out[field]; ok {
				break
			}
		}
	}

	return out
}

// =============================================================================
// HTML RENDERING
// =============================================================================

// RenderHTML renders the grouped characteristics as the description section.
// Groups appear in configured priority order, the default group last; empty
// input renders to "".
func (p *Parser) RenderHTML(chars []types.Characteristic) string {
	if len(chars) == 0 {
		return ""
	}

	grouped := make(map[string][]types.Characteristic)
	for _, c := range chars {
		grouped[c.Group] = append(grouped[c.Group], c)
	}

	order := make([]string, 0, len(p.groups)+1)
	for _, rule := range p.groups {
		order = append(order, rule.Group)
	}
	order = append(order, p.defaultGroup)

	var b strings.Builder
	for _, group := range order {
		items := grouped[group]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "<h4>%s</h4>\n<ul>\n", html.EscapeString(group))
		for _, c := range items {
			if c.Value == "" {
				fmt.Fprintf(&b, "<li><strong>%s</strong></li>\n", html.EscapeString(c.Key))
				continue
			}
			fmt.Fprintf(&b, "<li><strong>%s:</strong> %s</li>\n",
				html.EscapeString(c.Key), html.EscapeString(c.Value))
		}
		b.WriteString("</ul>\n")
	}

	if b.Len() == 0 {
		return ""
	}
	return "<h3>Технические характеристики</h3>\n" + b.String()
}
