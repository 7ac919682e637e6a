package description

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvanta42/b2b-wc-converter/internal/attrs"
	"github.com/kvanta42/b2b-wc-converter/internal/config"
	"github.com/kvanta42/b2b-wc-converter/internal/types"
)

func newTestBuilder() *Builder {
	cfg := config.Default()
	return NewBuilder(cfg, attrs.NewParser(cfg))
}

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare text wrapped", "Просто текст", "<p>Просто текст</p>"},
		{"html kept", "<p>Готовый абзац</p>", "<p>Готовый абзац</p>"},
		{"br normalized", "<p>a<br>b</p>", "<p>a<br />b</p>"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanHTML(tt.in))
		})
	}
}

func TestCleanHTMLBlankLines(t *testing.T) {
	got := CleanHTML("<p>a</p>\n\n\n\n<p>b</p>")
	assert.Equal(t, "<p>a</p>\n\n<p>b</p>", got)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "Hello world", Excerpt("<p>Hello <b>world</b></p>", 200))
	assert.Equal(t, "", Excerpt("", 200))
	assert.Equal(t, "a b c", Excerpt("<div> a\n b\t c </div>", 200))
}

func TestExcerptTruncation(t *testing.T) {
	got := Excerpt("<p>The quick brown fox jumps over the lazy dog</p>", 20)
	assert.Equal(t, "The quick brown fox...", got)
}

func TestExcerptRuneBoundary(t *testing.T) {
	// Cyrillic runes are two bytes; an odd byte budget must not split one.
	got := Excerpt("<p>Конвекторы</p>", 7)
	assert.True(t, strings.HasSuffix(got, "..."))
	for _, r := range got {
		assert.NotEqual(t, '�', r, "excerpt contains a broken rune")
	}
}

func TestBuildAssemblesSections(t *testing.T) {
	b := newTestBuilder()

	product := &types.Product{
		Name:           "Конвектор Ballu BEC-1000",
		DescriptionRaw: "<p>Надёжный конвектор для дома.</p>",
		Documents: map[string]string{
			"Инструкции": "https://example.com/files/manual.pdf",
		},
	}
	chars := attrs.SplitPairs("Мощность: 1 кВт")
	for i := range chars {
		chars[i].Group = "Технические характеристики"
	}

	res := b.Build(product, chars)

	// Article first, characteristics second, documents last.
	content := res.PostContent
	article := strings.Index(content, "Надёжный конвектор")
	charsIdx := strings.Index(content, "<h3>Технические характеристики</h3>")
	docsIdx := strings.Index(content, "<h3>Документация</h3>")

	require.GreaterOrEqual(t, article, 0)
	require.Greater(t, charsIdx, article)
	require.Greater(t, docsIdx, charsIdx)

	assert.Equal(t, "Надёжный конвектор для дома.", res.PostExcerpt)
}

func TestBuildEmptyProduct(t *testing.T) {
	b := newTestBuilder()
	res := b.Build(&types.Product{Name: "X"}, nil)
	assert.Equal(t, "", res.PostContent)
	assert.Equal(t, "", res.PostExcerpt)
}
