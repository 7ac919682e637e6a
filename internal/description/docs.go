// =============================================================================
// B2B-WC Converter - Documentation Links
// =============================================================================
//
// The catalog carries five document columns (Видео, Чертежи, Сертификаты,
// Промоматериалы, Инструкции), each a comma-separated URL list. This file
// renders them into the "Документация" block of the description:
//
//   - every link gets the type's icon and a generated Russian display name
//     ("Инструкция Конвектор Ballu BEC (PDF)")
//   - YouTube links render as an embedded player with a fallback link
//   - sections follow the site's fixed order: certificates, manuals,
//     drawings, promo, video
//
// =============================================================================

package description

import (
	"fmt"
	"html"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// columnToType maps catalog column names to internal document types.
var columnToType = map[string]string{
	"Видео":          "video",
	"Чертежи":        "drawing",
	"Сертификаты":    "certificate",
	"Промоматериалы": "promo",
	"Инструкции":     "manual",
}

// typeNames are the Russian section headers.
var typeNames = map[string]string{
	"video":       "Видео",
	"drawing":     "Чертежи",
	"certificate": "Сертификаты",
	"promo":       "Промоматериалы",
	"manual":      "Инструкции",
}

// linkNames are the per-link display name stems.
var linkNames = map[string]string{
	"video":       "Видеообзор",
	"drawing":     "Чертеж",
	"certificate": "Сертификат",
	"promo":       "Промо",
	"manual":      "Инструкция",
}

// fileTypeLabels maps file extensions to the label shown in parentheses.
var fileTypeLabels = map[string]string{
	".pdf": "PDF", ".doc": "DOC", ".docx": "DOCX",
	".xls": "XLS", ".xlsx": "XLSX",
	".jpg": "JPG", ".jpeg": "JPG", ".png": "PNG",
	".rar": "Архив RAR", ".zip": "Архив ZIP", ".7z": "Архив 7Z",
	".mp4": "MP4", ".avi": "AVI", ".mov": "MOV",
}

// sectionOrder is the fixed output order of document sections.
var sectionOrder = []string{"certificate", "manual", "drawing", "promo", "video"}

var youtubeIDRe = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/v/([a-zA-Z0-9_-]{11})`),
}

// =============================================================================
// RENDERING
// =============================================================================

// RenderDocuments renders the full documentation block from the raw document
// columns. Returns "" when no column holds a valid URL.
func (b *Builder) RenderDocuments(documents map[string]string, productName string) string {
	if len(documents) == 0 {
		return ""
	}

	rendered := make(map[string]string)
	for column, raw := range documents {
		docType, ok := columnToType[column]
		if !ok {
			continue
		}
		urls := ParseURLList(raw)
		if len(urls) == 0 {
			continue
		}
		rendered[docType] = b.renderSection(docType, urls, productName)
	}

	if len(rendered) == 0 {
		return ""
	}

	var sections []string
	for _, docType := range sectionOrder {
		if s, ok := rendered[docType]; ok {
			sections = append(sections, s)
		}
	}

	return "<h3>Документация</h3>\n" + strings.Join(sections, "\n")
}

// renderSection renders one document type: a header plus one link (or video
// embed) per URL.
func (b *Builder) renderSection(docType string, urls []string, productName string) string {
	var out strings.Builder
	fmt.Fprintf(&out, "<h4>%s</h4>\n", typeNames[docType])

	iconURL := b.cfg.IconURL(docType)
	for i, u := range urls {
		name := docLinkName(docType, productName, u, i)
		if docType == "video" {
			if id := youtubeID(u); id != "" {
				writeVideoEmbed(&out, u, id, name)
				continue
			}
		}
		writeIconLink(&out, u, iconURL, docType, name)
	}

	return out.String()
}

func writeIconLink(out *strings.Builder, href, iconURL, docType, name string) {
	fmt.Fprintf(out,
		`<a href="%s" target="_blank" rel="noopener noreferrer">`+
			`<img style="vertical-align: middle; margin-right: 8px;" src="%s" alt="%s" width="32" height="32" />%s</a><br />`+"\n",
		html.EscapeString(href), html.EscapeString(iconURL), docType, html.EscapeString(name))
}

func writeVideoEmbed(out *strings.Builder, href, videoID, name string) {
	fmt.Fprintf(out,
		`<div class="video-document"><iframe width="560" height="315" src="https://www.youtube.com/embed/%s" title="%s" frameborder="0" allowfullscreen></iframe>`+
			`<p><a href="%s" target="_blank" rel="noopener noreferrer">%s</a></p></div>`+"\n",
		videoID, html.EscapeString(name), html.EscapeString(href), html.EscapeString(name))
}

// =============================================================================
// HELPERS
// =============================================================================

// ParseURLList splits a comma-separated URL cell and keeps only http(s) URLs
// with a host.
func ParseURLList(raw string) []string {
	var urls []string
	for _, part := range strings.Split(raw, ",") {
		u := strings.TrimSpace(part)
		if u == "" {
			continue
		}
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			continue
		}
		parsed, err := url.Parse(u)
		if err != nil || parsed.Host == "" {
			continue
		}
		urls = append(urls, u)
	}
	return urls
}

// docLinkName builds the display name: type stem, ordinal when there is more
// than one of a kind, the first three words of the product name, and the file
// type label.
func docLinkName(docType, productName, fileURL string, index int) string {
	stem := linkNames[docType]
	if stem == "" {
		stem = "Документ"
	}
	if index > 0 {
		stem = fmt.Sprintf("%s %d", stem, index+1)
	}

	words := strings.Fields(productName)
	if len(words) > 3 {
		words = words[:3]
	}

	parts := append([]string{stem}, words...)
	return fmt.Sprintf("%s (%s)", strings.Join(parts, " "), fileTypeLabel(fileURL))
}

// fileTypeLabel resolves the parenthesized label from the URL's extension.
func fileTypeLabel(fileURL string) string {
	ext := ""
	if parsed, err := url.Parse(fileURL); err == nil {
		ext = strings.ToLower(path.Ext(parsed.Path))
	}
	if label, ok := fileTypeLabels[ext]; ok {
		return label
	}
	return "Файл"
}

// youtubeID extracts the 11-character video ID from a YouTube URL, or "".
func youtubeID(u string) string {
	for _, re := range youtubeIDRe {
		if m := re.FindStringSubmatch(u); m != nil {
			return m[1]
		}
	}
	return ""
}
