package csvwriter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvanta42/b2b-wc-converter/internal/config"
	"github.com/kvanta42/b2b-wc-converter/internal/types"
)

func testProduct() types.ProductOutput {
	return types.ProductOutput{
		Product: types.Product{
			RowNumber: 1,
			Name:      "Конвектор Ballu BEC-1000",
			SKU:       "BEC-1000",
			Brand:     "Ballu",
			Category:  "Обогреватели > Конвекторы",
			Price:     "14990.00",
			Extra: map[string]string{
				"Штрих код": "4680001234567/4680007654321",
				"НС-код":    "НС-1174096",
			},
		},
		Slug:        "konvektor-ballu-bec-1000",
		PostContent: "<p>Описание</p>",
		PostExcerpt: "Описание",
		Attributes:  map[string]string{"pa_color": "белый"},
		Dimensions:  map[string]string{"weight": "4.7", "width": "460"},
		ImagePaths: []string{
			"/wp-content/uploads/products/bec-1000-01.jpg",
			"/wp-content/uploads/products/bec-1000-02.jpg",
		},
	}
}

func TestBuildRow(t *testing.T) {
	w := NewWriter(config.Default())
	row := w.BuildRow(testProduct())

	assert.Equal(t, "", row["ID"])
	assert.Equal(t, "Конвектор Ballu BEC-1000", row["post_title"])
	assert.Equal(t, "konvektor-ballu-bec-1000", row["post_name"])
	assert.Equal(t, "BEC-1000", row["sku"])
	assert.Equal(t, "14990.00", row["regular_price"])
	assert.Equal(t, "Обогреватели > Конвекторы", row["tax:product_cat"])
	assert.Equal(t, "Ballu", row["tax:product_brand"])
	assert.Equal(t, "4.7", row["weight"])
	assert.Equal(t, "460", row["width"])

	// Images joined with the plugin's separator.
	assert.Equal(t,
		"/wp-content/uploads/products/bec-1000-01.jpg | /wp-content/uploads/products/bec-1000-02.jpg",
		row["images"])

	// Only the first barcode is the GTIN.
	assert.Equal(t, "4680001234567", row["meta:_gtin"])
	assert.Equal(t, "НС-1174096", row["meta:_supplier_code"])

	// Attribute pair.
	assert.Equal(t, "белый", row["attribute:pa_color"])
	assert.Equal(t, "1:0|0", row["attribute_data:pa_color"])

	// Defaults backfill.
	assert.Equal(t, "publish", row["post_status"])
	assert.Equal(t, "simple", row["tax:product_type"])
	assert.Equal(t, "instock", row["stock_status"])

	// The tag column is always present, even with nothing to put in it.
	tag, ok := row["tax:product_tag"]
	assert.True(t, ok)
	assert.Equal(t, "", tag)
}

func TestBuildRowSlugifyDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.WooCommerce.SlugifyTitle = false

	row := NewWriter(cfg).BuildRow(testProduct())
	_, ok := row["post_name"]
	assert.False(t, ok)
}

func TestHeaders(t *testing.T) {
	rows := []map[string]string{
		{"ID": "", "post_title": "a", "sku": "1"},
		{"ID": "", "post_title": "b", "attribute:pa_color": "x"},
	}

	headers := Headers(rows)
	assert.Equal(t, []string{"ID", "attribute:pa_color", "post_title", "sku"}, headers)
}

func TestWriteFile(t *testing.T) {
	cfg := config.Default()
	cfg.BatchSize = 2
	w := NewWriter(cfg)

	gofakeit.Seed(11)
	var rows []map[string]string
	for i := 0; i < 5; i++ {
		p := testProduct()
		p.Name = gofakeit.ProductName()
		p.SKU = gofakeit.LetterN(3) + "-" + gofakeit.DigitN(4)
		rows = append(rows, w.BuildRow(p))
	}

	path := filepath.Join(t.TempDir(), "wc.csv")
	require.NoError(t, w.WriteFile(path, rows))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(raw), "\xEF\xBB\xBF"), "file must start with a UTF-8 BOM")

	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(raw), "\xEF\xBB\xBF")))
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6, "header plus five products")

	header := records[0]
	assert.Equal(t, "ID", header[0])

	// Every record has the same width as the header.
	for _, rec := range records[1:] {
		assert.Len(t, rec, len(header))
	}

	// Spot-check a cell through the header index.
	titleIdx := -1
	for i, h := range header {
		if h == "post_title" {
			titleIdx = i
		}
	}
	require.GreaterOrEqual(t, titleIdx, 0)
	assert.NotEmpty(t, records[1][titleIdx])
}

func TestWriteFileEmpty(t *testing.T) {
	w := NewWriter(config.Default())
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, w.WriteFile(path, nil))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\xEF\xBB\xBFID\n", string(raw))
}
