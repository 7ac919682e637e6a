package description

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvanta42/b2b-wc-converter/internal/attrs"
	"github.com/kvanta42/b2b-wc-converter/internal/config"
)

func TestParseURLList(t *testing.T) {
	urls := ParseURLList("https://a.ru/1.pdf, https://b.ru/2.pdf,not-a-url, ftp://c.ru/3.pdf,")
	assert.Equal(t, []string{"https://a.ru/1.pdf", "https://b.ru/2.pdf"}, urls)

	assert.Nil(t, ParseURLList(""))
	assert.Nil(t, ParseURLList("просто текст"))
}

func TestYoutubeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://vimeo.com/12345", ""},
		{"https://example.com/video.mp4", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, youtubeID(tt.in), tt.in)
	}
}

func TestDocLinkName(t *testing.T) {
	name := docLinkName("manual", "Конвектор Ballu BEC EZER-1000", "https://x.ru/m.pdf", 0)
	assert.Equal(t, "Инструкция Конвектор Ballu BEC (PDF)", name)

	// Second document of the same type gets an ordinal.
	name = docLinkName("manual", "Конвектор Ballu BEC EZER-1000", "https://x.ru/m2.pdf", 1)
	assert.Equal(t, "Инструкция 2 Конвектор Ballu BEC (PDF)", name)

	// Unknown extension falls back to the generic label.
	name = docLinkName("drawing", "Short", "https://x.ru/file", 0)
	assert.Equal(t, "Чертеж Short (Файл)", name)
}

func TestFileTypeLabel(t *testing.T) {
	assert.Equal(t, "PDF", fileTypeLabel("https://x.ru/a/b/manual.pdf"))
	assert.Equal(t, "Архив ZIP", fileTypeLabel("https://x.ru/pack.zip"))
	assert.Equal(t, "Файл", fileTypeLabel("https://x.ru/no-extension"))
}

func TestRenderDocumentsSectionOrder(t *testing.T) {
	cfg := config.Default()
	b := NewBuilder(cfg, attrs.NewParser(cfg))

	documents := map[string]string{
		"Видео":       "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"Инструкции":  "https://example.com/manual.pdf",
		"Сертификаты": "https://example.com/cert.pdf",
	}

	html := b.RenderDocuments(documents, "Конвектор Ballu BEC")
	require.Contains(t, html, "<h3>Документация</h3>")

	// Fixed order: certificates, manuals, video.
	certIdx := strings.Index(html, "<h4>Сертификаты</h4>")
	manualIdx := strings.Index(html, "<h4>Инструкции</h4>")
	videoIdx := strings.Index(html, "<h4>Видео</h4>")
	require.GreaterOrEqual(t, certIdx, 0)
	assert.Greater(t, manualIdx, certIdx)
	assert.Greater(t, videoIdx, manualIdx)

	// YouTube links embed a player plus a fallback link.
	assert.Contains(t, html, "youtube.com/embed/dQw4w9WgXcQ")
	assert.Contains(t, html, `<a href="https://www.youtube.com/watch?v=dQw4w9WgXcQ"`)

	// Plain documents get the icon link.
	assert.Contains(t, html, "manual-icon.png")
	assert.Contains(t, html, `width="32" height="32"`)
}

func TestRenderDocumentsEmpty(t *testing.T) {
	cfg := config.Default()
	b := NewBuilder(cfg, attrs.NewParser(cfg))

	assert.Equal(t, "", b.RenderDocuments(nil, "X"))
	assert.Equal(t, "", b.RenderDocuments(map[string]string{"Видео": "нет"}, "X"))
	assert.Equal(t, "", b.RenderDocuments(map[string]string{"Неизвестно": "https://a.ru/x.pdf"}, "X"))
}
