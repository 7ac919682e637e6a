// =============================================================================
// B2B-WC Converter - Asset File Naming
// =============================================================================
//
// Downloaded files are renamed to a deterministic, SEO-friendly pattern:
//
//   <clean-sku>-<title-slug>-NN.<ext>
//
// e.g. "BEC-EZER-1000-konvektor-ballu-01.jpg". The same name feeds the
// images CSV column, the local download path and the optional S3 object key,
// so all three always agree.
//
// =============================================================================

package assets

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"
)

// imageExtensions are the file extensions accepted as-is from image URLs.
var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true,
	".webp": true, ".gif": true, ".bmp": true,
}

// \w is ASCII-only in Go regexps; SKUs like "НС-1174096" need \p{L}.
var nonFileNameRe = regexp.MustCompile(`[^\p{L}\p{N}_-]`)
var repeatDashRe = regexp.MustCompile(`-+`)

// maxFileNameLen caps generated names; WordPress truncates longer uploads.
const maxFileNameLen = 150

// Filename builds the file name for the index-th asset (1-based) of a
// product. slug is the already slugified product title.
func Filename(sku, slug string, index int, sourceURL string) string {
	cleanSKU := nonFileNameRe.ReplaceAllString(sku, "")
	ext := ExtensionFromURL(sourceURL)

	suffix := fmt.Sprintf("-%02d%s", index, ext)
	name := repeatDashRe.ReplaceAllString(cleanSKU+"-"+slug+suffix, "-")

	if len(name) > maxFileNameLen {
		// Shorten the SKU and slug parts, never the ordinal or the
		// extension, and never in the middle of a multi-byte rune.
		cleanSKU = truncateRunes(cleanSKU, 30)
		slug = truncateRunes(slug, 100)
		if over := len(cleanSKU) + 1 + len(slug) + len(suffix) - maxFileNameLen; over > 0 {
			slug = truncateRunes(slug, len(slug)-over)
		}
		name = repeatDashRe.ReplaceAllString(cleanSKU+"-"+slug+suffix, "-")
	}

	return name
}

// truncateRunes cuts s to at most max bytes, backing up to a rune boundary.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// ExtensionFromURL extracts a known image extension from the URL path,
// falling back to ".jpg" when the path has none (CDN URLs frequently have
// query-only format hints that are not worth chasing).
func ExtensionFromURL(sourceURL string) string {
	parsed, err := url.Parse(sourceURL)
	if err != nil {
		return ".jpg"
	}

	unescaped, err := url.PathUnescape(parsed.Path)
	if err != nil {
		unescaped = parsed.Path
	}

	ext := strings.ToLower(path.Ext(unescaped))
	if ext == "" || len(ext) > 6 {
		return ".jpg"
	}
	if imageExtensions[ext] {
		return ext
	}

	// Document URLs keep their real extension (.pdf, .zip, ...).
	if docExt := strings.TrimSpace(ext); len(docExt) > 1 {
		return docExt
	}
	return ".jpg"
}

// ParseURLList splits a comma-separated URL cell, keeping http(s) URLs only
// and capping the count at max (0 = unlimited).
func ParseURLList(raw string, max int) []string {
	var urls []string
	for _, part := range strings.Split(raw, ",") {
		u := strings.TrimSpace(part)
		if u == "" {
			continue
		}
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			continue
		}
		urls = append(urls, u)
		if max > 0 && len(urls) == max {
			break
		}
	}
	return urls
}
