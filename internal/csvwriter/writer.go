// =============================================================================
// B2B-WC Converter - CSV Writer Module
// =============================================================================
//
// This module is responsible for generating the WooCommerce bulk-import CSV
// from the transformed products. It handles the column layout expected by the
// import plugin.
//
// CSV STRUCTURE:
//   One row per product. The header is the union of the columns of all rows,
//   sorted alphabetically, so the output is deterministic no matter which
//   optional columns (attributes, dimensions, meta) individual products
//   carry. A cell is empty when the product has no value for the column.
//
//   Column naming follows the import plugin's conventions:
//     post_title, post_name, post_content, ...   core post fields
//     tax:product_cat, tax:product_brand         taxonomies
//     attribute:pa_color                         attribute value
//     attribute_data:pa_color                    position:visible|variation
//     meta:_gtin                                 post meta
//
//   The file starts with a UTF-8 BOM: the catalogs are Russian and the
//   shop's operators open the file in Excel, which misreads plain UTF-8.
//
// CUSTOMIZATION:
//   - Constant columns (post_status, stock_status, ...) come from the
//     woocommerce.defaults config map; add any column there.
//   - Attribute visibility is fixed at "1:0|0" (position 1, not visible,
//     not used for variations); change attributeData if your theme filters
//     differently.
//
// =============================================================================

package csvwriter

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kvanta42/b2b-wc-converter/internal/config"
	"github.com/kvanta42/b2b-wc-converter/internal/types"
)

// utf8BOM makes Excel detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// attributeData is the per-attribute metadata the import plugin expects:
// position, then visible|variation flags.
const attributeData = "1:0|0"

// Writer builds and writes the import CSV.
type Writer struct {
	cfg *config.Config
}

// NewWriter creates a CSV writer for the given configuration.
func NewWriter(cfg *config.Config) *Writer {
	return &Writer{cfg: cfg}
}

// =============================================================================
// ROW ASSEMBLY
// =============================================================================

// BuildRow assembles the CSV cells for one product.
//
// ASSEMBLY ORDER:
//   1. Core post fields from the cleaned product
//   2. Taxonomies (category, brand)
//   3. Dimensions extracted from characteristics
//   4. Images column (upload paths joined with " | ")
//   5. Meta fields (GTIN from the barcode column)
//   6. Attribute pairs (attribute:pa_* + attribute_data:pa_*)
//   7. Configured defaults for any column still empty
func (w *Writer) BuildRow(p types.ProductOutput) map[string]string {
	row := map[string]string{
		"ID":            "",
		"post_title":    p.Name,
		"post_content":  p.PostContent,
		"post_excerpt":  p.PostExcerpt,
		"sku":           p.SKU,
		"regular_price": p.Price,
		// Tags are curated in the admin, not derived from the catalog; the
		// column still has to exist or the import plugin drops existing tags.
		"tax:product_tag": "",
	}

	if w.cfg.WooCommerce.SlugifyTitle && p.Slug != "" {
		row["post_name"] = p.Slug
	}

	if p.Category != "" {
		row["tax:product_cat"] = p.Category
	}
	if p.Brand != "" {
		row["tax:product_brand"] = p.Brand
	}

	for _, dim := range []string{"weight", "length", "width", "height"} {
		if v := p.Dimensions[dim]; v != "" {
			row[dim] = v
		}
	}

	if len(p.ImagePaths) > 0 {
		row["images"] = strings.Join(p.ImagePaths, " | ")
	}

	// The barcode cell sometimes packs several codes separated by "/";
	// only the first is the product's own GTIN.
	if barcode := strings.TrimSpace(p.Extra["Штрих код"]); barcode != "" {
		gtin, _, _ := strings.Cut(barcode, "/")
		if gtin = strings.TrimSpace(gtin); gtin != "" {
			row["meta:_gtin"] = gtin
		}
	}
	if nsCode := strings.TrimSpace(p.Extra["НС-код"]); nsCode != "" {
		row["meta:_supplier_code"] = nsCode
	}

	for slug, value := range p.Attributes {
		row["attribute:"+slug] = value
		row["attribute_data:"+slug] = attributeData
	}

	for column, value := range w.cfg.WooCommerce.Defaults {
		if row[column] == "" {
			row[column] = value
		}
	}

	return row
}

// Headers returns the sorted union of columns across all rows. "ID" always
// comes first; the import plugin matches products on it.
func Headers(rows []map[string]string) []string {
	seen := map[string]bool{"ID": true}
	headers := []string{"ID"}

	for _, row := range rows {
		for column := range row {
			if !seen[column] {
				seen[column] = true
				headers = append(headers, column)
			}
		}
	}

	sort.Strings(headers[1:])
	return headers
}

// =============================================================================
// FILE WRITING
// =============================================================================

// WriteFile writes all rows to the output path with a UTF-8 BOM. The csv
// buffer is flushed every cfg.BatchSize rows to bound memory on big catalogs.
func (w *Writer) WriteFile(path string, rows []map[string]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	headers := Headers(rows)

	cw := csv.NewWriter(file)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(headers))
	for i, row := range rows {
		for j, column := range headers {
			record[j] = row[column]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}

		if (i+1)%w.cfg.BatchSize == 0 {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return fmt.Errorf("failed to flush batch at row %d: %w", i+1, err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}

	return file.Sync()
}
