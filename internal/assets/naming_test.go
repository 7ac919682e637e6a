package assets

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestFilename(t *testing.T) {
	got := Filename("BEC-EZER-1000", "konvektor-ballu", 1, "https://cdn.example.com/img/photo.jpg")
	assert.Equal(t, "BEC-EZER-1000-konvektor-ballu-01.jpg", got)

	got = Filename("BEC-EZER-1000", "konvektor-ballu", 12, "https://cdn.example.com/img/photo.png")
	assert.Equal(t, "BEC-EZER-1000-konvektor-ballu-12.png", got)
}

func TestFilenameCyrillicSKU(t *testing.T) {
	got := Filename("НС-1174096", "obogrevatel", 1, "https://x.ru/a.jpg")
	assert.Equal(t, "НС-1174096-obogrevatel-01.jpg", got)
}

func TestFilenameStripsUnsafeChars(t *testing.T) {
	got := Filename(`A/B "C"`, "slug", 1, "https://x.ru/a.jpg")
	assert.NotContains(t, got, "/")
	assert.NotContains(t, got, `"`)
	assert.NotContains(t, got, " ")
}

func TestFilenameLengthCap(t *testing.T) {
	longSKU := strings.Repeat("S", 80)
	longSlug := strings.Repeat("s", 200)

	got := Filename(longSKU, longSlug, 3, "https://x.ru/a.jpg")
	assert.LessOrEqual(t, len(got), 150)
	// The SKU prefix, ordinal and extension survive shortening.
	assert.True(t, strings.HasPrefix(got, strings.Repeat("S", 30)))
	assert.True(t, strings.HasSuffix(got, "-03.jpg"))
}

func TestFilenameLengthCapCyrillic(t *testing.T) {
	longSKU := strings.Repeat("Щ", 40)
	longSlug := strings.Repeat("s", 200)

	got := Filename(longSKU, longSlug, 1, "https://x.ru/a.jpg")
	assert.LessOrEqual(t, len(got), 150)
	assert.True(t, utf8.ValidString(got), "shortening must not cut a rune in half")
	assert.True(t, strings.HasSuffix(got, "-01.jpg"))
}

func TestExtensionFromURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://x.ru/a/b/photo.jpg", ".jpg"},
		{"https://x.ru/photo.JPEG", ".jpeg"},
		{"https://x.ru/photo.webp", ".webp"},
		{"https://x.ru/photo.png?w=800&fmt=auto", ".png"},
		{"https://x.ru/files/manual.pdf", ".pdf"},
		{"https://x.ru/%D1%84%D0%BE%D1%82%D0%BE.jpg", ".jpg"},
		{"https://x.ru/no-extension", ".jpg"},
		{"https://x.ru/", ".jpg"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtensionFromURL(tt.in), tt.in)
	}
}

func TestAssetParseURLList(t *testing.T) {
	urls := ParseURLList("https://a.ru/1.jpg, https://a.ru/2.jpg, https://a.ru/3.jpg", 2)
	assert.Equal(t, []string{"https://a.ru/1.jpg", "https://a.ru/2.jpg"}, urls)

	urls = ParseURLList("not-a-url, https://a.ru/1.jpg", 0)
	assert.Equal(t, []string{"https://a.ru/1.jpg"}, urls)

	assert.Nil(t, ParseURLList("", 10))
}
