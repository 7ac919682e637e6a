// =============================================================================
// B2B-WC Converter - Description Builder
// =============================================================================
//
// This module assembles the post_content and post_excerpt columns for each
// product:
//
//   post_content = cleaned article HTML
//                + grouped characteristics section
//                + documentation links section
//
//   post_excerpt = first ~200 plain-text characters of the article,
//                  cut on a word boundary
//
// The article arrives as supplier-authored HTML of wildly varying quality;
// cleaning is conservative (whitespace, <br> normalization, wrapping bare
// text) so nothing the supplier wrote is lost.
//
// =============================================================================

package description

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kvanta42/b2b-wc-converter/internal/attrs"
	"github.com/kvanta42/b2b-wc-converter/internal/config"
	"github.com/kvanta42/b2b-wc-converter/internal/types"
)

// Builder assembles product descriptions.
type Builder struct {
	cfg   *config.Config
	attrs *attrs.Parser
}

// NewBuilder returns a Builder wired to the characteristics parser.
func NewBuilder(cfg *config.Config, parser *attrs.Parser) *Builder {
	return &Builder{cfg: cfg, attrs: parser}
}

// Result is the assembled description output for one product.
type Result struct {
	PostContent string
	PostExcerpt string
}

// Build assembles the full description for a product from its raw article,
// parsed characteristics and document columns.
func (b *Builder) Build(product *types.Product, chars []types.Characteristic) Result {
	article := CleanHTML(product.DescriptionRaw)

	sections := make([]string, 0, 3)
	if article != "" {
		sections = append(sections, article)
	}
	if charHTML := b.attrs.RenderHTML(chars); charHTML != "" {
		sections = append(sections, charHTML)
	}
	if docsHTML := b.RenderDocuments(product.Documents, product.Name); docsHTML != "" {
		sections = append(sections, docsHTML)
	}

	return Result{
		PostContent: strings.Join(sections, "\n"),
		PostExcerpt: Excerpt(article, b.cfg.WooCommerce.ExcerptLength),
	}
}

// =============================================================================
// HTML CLEANUP
// =============================================================================

var (
	blankLinesRe = regexp.MustCompile(`\n\s*\n+`)
	// Indentation only: \s would also eat the newline of a blank line and
	// glue paragraphs together.
	leadingWSRe   = regexp.MustCompile(`(?m)^[ \t]+`)
	whitespaceSeq = regexp.MustCompile(`\s+`)
)

// CleanHTML normalizes supplier article HTML: trims, collapses blank lines,
// wraps tag-less text in a paragraph and XHTML-normalizes <br>.
func CleanHTML(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return ""
	}

	cleaned = blankLinesRe.ReplaceAllString(cleaned, "\n\n")
	cleaned = leadingWSRe.ReplaceAllString(cleaned, "")

	if !strings.ContainsRune(cleaned, '<') || !strings.ContainsRune(cleaned, '>') {
		cleaned = "<p>" + cleaned + "</p>"
	}

	cleaned = strings.ReplaceAll(cleaned, "<br>", "<br />")

	return cleaned
}

// Excerpt produces the plain-text short description: tags stripped, spaces
// collapsed, cut at maxLen on a word boundary with a trailing ellipsis.
func Excerpt(htmlContent string, maxLen int) string {
	if strings.TrimSpace(htmlContent) == "" {
		return ""
	}

	text := htmlContent
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent)); err == nil {
		text = doc.Text()
	}
	text = strings.TrimSpace(whitespaceSeq.ReplaceAllString(text, " "))

	if maxLen <= 0 || len(text) <= maxLen {
		return text
	}

	// Cut on the last space when it leaves a reasonable share of the
	// budget; a mid-word cut otherwise. Indexing is byte-based, so back up
	// to a rune boundary first to avoid splitting a multibyte character.
	cut := maxLen
	for cut > 0 && !isRuneStart(text[cut]) {
		cut--
	}
	truncated := text[:cut]
	if idx := strings.LastIndex(truncated, " "); idx > (maxLen*7)/10 {
		truncated = truncated[:idx]
	}
	return truncated + "..."
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
