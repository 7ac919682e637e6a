// =============================================================================
// B2B-WC Converter - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - converter
//   - attrs
//   - description
//   - validation
//   - csvwriter
//
// =============================================================================

package types

// =============================================================================
// PRODUCT TYPES
// =============================================================================

// Product is one catalog row after field extraction and cleanup.
// Raw column values are kept alongside the cleaned fields so that downstream
// stages (description builder, asset downloader) can work from the source
// data without re-reading the spreadsheet.
type Product struct {
	// RowNumber is the 1-based row number in the source spreadsheet
	// (header row excluded). Used for error reporting.
	RowNumber int

	// Name is the product title (column "Наименование").
	Name string

	// SKU is the cleaned article number (column "Артикул").
	SKU string

	// Brand is the manufacturer name (column "Бренд").
	Brand string

	// Category is the category path already converted to the
	// WooCommerce "Parent > Child" form (column "Название категории").
	Category string

	// Price is the cleaned price rendered with two decimals, e.g. "14990.00".
	// Empty when the source value did not parse.
	Price string

	// CharacteristicsRaw is the unparsed "Характеристики" column.
	CharacteristicsRaw string

	// DescriptionRaw is the unparsed HTML article (column "Статья").
	DescriptionRaw string

	// ImagesRaw is the unparsed comma-separated image URL list
	// (column "Изображение").
	ImagesRaw string

	// Documents maps document column names (Видео, Чертежи, Сертификаты,
	// Промоматериалы, Инструкции) to their raw comma-separated URL lists.
	Documents map[string]string

	// Extra holds informational columns that end up in the description or
	// meta fields (НС-код, Штрих код, Эксклюзив).
	Extra map[string]string

	// Raw is the full source row, by header name.
	Raw map[string]string
}

// ProductOutput carries everything computed for a product beyond the cleaned
// source fields: the assembled description, the WooCommerce attribute set and
// the image paths that go into the CSV.
type ProductOutput struct {
	Product

	// Slug is the transliterated title slug used for post_name and asset
	// file names.
	Slug string

	// PostContent is the full HTML description for the post_content column.
	PostContent string

	// PostExcerpt is the short plain-text description.
	PostExcerpt string

	// Attributes maps "pa_*" slugs to attribute values.
	Attributes map[string]string

	// Dimensions holds values extracted from characteristics for the
	// weight/length/width/height columns. Keys: weight, length, width, height.
	Dimensions map[string]string

	// ImagePaths are the site-relative upload paths for the images column,
	// in source order. Joined with " | " by the CSV writer.
	ImagePaths []string
}

// =============================================================================
// CHARACTERISTIC TYPES
// =============================================================================

// Characteristic is a single parsed "key: value" pair from the
// characteristics column.
type Characteristic struct {
	// Key is the characteristic name as written in the catalog.
	Key string

	// Value is the normalized value (whitespace collapsed).
	Value string

	// Group is the display group the key was assigned to.
	Group string

	// AttributeSlug is the "pa_*" slug when the characteristic maps to a
	// WooCommerce filter attribute, empty otherwise.
	AttributeSlug string
}
