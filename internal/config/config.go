// =============================================================================
// B2B-WC Converter - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration. The configuration comes from a single YAML file, and every
// scalar setting can additionally be overridden with a B2BWC_* environment
// variable (the tool historically ran from a plain .env file, and deploy
// scripts still set paths that way).
//
// CONFIGURATION SECTIONS:
//   1. Paths: input catalog, output CSV, download directories, logs
//   2. Site: upload base paths used to build image/icon URLs
//   3. Currency: price cleanup patterns and bounds
//   4. Downloads: concurrency, rate limit, resize, S3 mirror
//   5. WooCommerce: default column values, attribute map
//   6. Catalog: grouping rules, document icons, extraction keys
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Timeout returns the per-request timeout as a duration.
func (d DownloadConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the full application configuration.
type Config struct {
	// =========================================================================
	// PATH SETTINGS
	// =========================================================================

	// InputFile is the path to the source catalog spreadsheet.
	// Both .xlsx and .csv inputs are supported.
	// Default: "input/catalog.xlsx"
	InputFile string `yaml:"input_file"`

	// OutputFile is the path of the generated WooCommerce import CSV.
	// Default: "output/wc_products.csv"
	OutputFile string `yaml:"output_file"`

	// ImagesDownloadDir is where downloaded product images are stored.
	// Default: "downloads/images"
	ImagesDownloadDir string `yaml:"images_download_dir"`

	// DocsDownloadDir is where downloaded product documents are stored.
	// Default: "downloads/documents"
	DocsDownloadDir string `yaml:"docs_download_dir"`

	// LogDir is the directory for run logs and reports.
	// Default: "logs"
	LogDir string `yaml:"log_dir"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// ManifestPath is the SQLite database recording downloaded assets so
	// repeated runs do not re-fetch them.
	// Default: "downloads/assets.db"
	ManifestPath string `yaml:"manifest_path"`

	// =========================================================================
	// SITE SETTINGS
	// =========================================================================

	// Site holds the target-site URL settings used when building the
	// images column and the document icon links.
	Site SiteConfig `yaml:"site"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// BatchSize is the number of CSV rows buffered before a flush.
	// Default: 100
	BatchSize int `yaml:"batch_size"`

	// Currency holds price cleanup settings.
	Currency CurrencyConfig `yaml:"currency"`

	// Downloads holds asset download settings.
	Downloads DownloadConfig `yaml:"downloads"`

	// S3 holds the optional object-storage mirror settings.
	S3 S3Config `yaml:"s3"`

	// WooCommerce holds output schema settings.
	WooCommerce WCConfig `yaml:"woocommerce"`

	// Catalog holds input-interpretation settings.
	Catalog CatalogConfig `yaml:"catalog"`
}

// SiteConfig holds the target-site URL settings.
type SiteConfig struct {
	// BaseURL is the site root, e.g. "https://kvanta42.ru".
	// Used for log messages and absolute icon URLs.
	BaseURL string `yaml:"base_url"`

	// ImagesUploadPath is the site-relative path the images are uploaded to.
	// The images CSV column is built as ImagesUploadPath + file name.
	// Default: "/wp-content/uploads/products/"
	ImagesUploadPath string `yaml:"images_upload_path"`

	// IconsUploadPath is the site-relative path hosting the document-type
	// icon images referenced from generated descriptions.
	// Default: "/wp-content/uploads/icons/"
	IconsUploadPath string `yaml:"icons_upload_path"`
}

// CurrencyConfig holds price cleanup settings.
type CurrencyConfig struct {
	// Code is the ISO currency code recorded in the run summary.
	// Default: "RUB"
	Code string `yaml:"code"`

	// StripPatterns are substrings removed from the raw price before
	// parsing. The non-breaking space is always stripped regardless.
	// Default: ["руб.", "рублей", "RUB", "₽"]
	StripPatterns []string `yaml:"strip_patterns"`

	// MinPrice and MaxPrice bound plausible prices; values outside the
	// range are rejected and the row is reported.
	// Defaults: 0 and 10000000.
	MinPrice float64 `yaml:"min_price"`
	MaxPrice float64 `yaml:"max_price"`
}

// DownloadConfig holds asset download settings.
type DownloadConfig struct {
	// Enabled toggles asset downloading. When false the images column is
	// still generated from the expected upload paths.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// MaxImagesPerProduct caps how many image URLs are taken per row.
	// Default: 10
	MaxImagesPerProduct int `yaml:"max_images_per_product"`

	// Concurrency is the number of parallel download workers.
	// Default: 3
	Concurrency int `yaml:"concurrency"`

	// RatePerSecond limits outgoing requests across all workers.
	// Zero disables rate limiting.
	// Default: 5
	RatePerSecond float64 `yaml:"rate_per_second"`

	// TimeoutSeconds is the per-request timeout in seconds.
	// Default: 30
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// MinFileSize is the smallest body (in bytes) accepted as a real
	// image/document. Smaller responses are treated as failures.
	// Default: 1024
	MinFileSize int64 `yaml:"min_file_size"`

	// UserAgent is sent with every request. Some supplier CDNs reject
	// the default Go client string.
	UserAgent string `yaml:"user_agent"`

	// ResizeMaxWidth, when non-zero, re-encodes downloaded images wider
	// than this many pixels down to it (JPEG).
	ResizeMaxWidth int `yaml:"resize_max_width"`

	// ResizeQuality is the JPEG quality used when re-encoding.
	// Default: 85
	ResizeQuality int `yaml:"resize_quality"`
}

// S3Config holds the optional S3-compatible mirror for downloaded assets.
// When enabled, every downloaded file is also uploaded to the bucket so the
// generated /wp-content/uploads/... paths resolve on the target site.
type S3Config struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`

	// Prefix is prepended to object keys, e.g. "wp-content/uploads/products".
	Prefix string `yaml:"prefix"`
}

// WCConfig holds output schema settings.
type WCConfig struct {
	// Defaults are constant values applied to every row when the column is
	// otherwise empty. Keys are CSV column names.
	//
	// CUSTOMIZATION: Add any column that is constant for your shop.
	Defaults map[string]string `yaml:"defaults"`

	// Attributes maps characteristic names to WooCommerce attribute slugs
	// (pa_*). Matching characteristics become filterable attributes.
	Attributes map[string]string `yaml:"attributes"`

	// SlugifyTitle controls whether post_name is generated from the title.
	// Default: true
	SlugifyTitle bool `yaml:"slugify_title"`

	// ExcerptLength is the maximum plain-text excerpt length.
	// Default: 200
	ExcerptLength int `yaml:"excerpt_length"`
}

// CatalogConfig holds input-interpretation settings.
type CatalogConfig struct {
	// RequiredColumns must be present in the spreadsheet header.
	// Default: ["Наименование", "Артикул", "Цена"]
	RequiredColumns []string `yaml:"required_columns"`

	// DocumentColumns are the columns holding document URL lists, in the
	// order they appear in the catalog.
	// Default: ["Видео", "Чертежи", "Сертификаты", "Промоматериалы", "Инструкции"]
	DocumentColumns []string `yaml:"document_columns"`

	// InfoColumns are informational columns copied into Product.Extra.
	// Default: ["НС-код", "Штрих код", "Эксклюзив"]
	InfoColumns []string `yaml:"info_columns"`

	// CharacteristicGroups define the display grouping of characteristics.
	// Rules are evaluated in order; the first keyword hit wins.
	CharacteristicGroups []GroupRule `yaml:"characteristic_groups"`

	// DefaultGroup catches characteristics no rule matched.
	// Default: "Другие характеристики"
	DefaultGroup string `yaml:"default_group"`

	// DocumentIcons maps document types (video, drawing, certificate,
	// promo, manual) to icon file names under Site.IconsUploadPath.
	DocumentIcons map[string]string `yaml:"document_icons"`

	// ExtractFields maps output dimension columns (weight, length, width,
	// height) to the characteristic names that feed them, checked in order.
	ExtractFields map[string][]string `yaml:"extract_fields"`
}

// GroupRule assigns characteristics whose normalized key contains one of the
// keywords to the named group.
type GroupRule struct {
	Keywords []string `yaml:"keywords"`
	Group    string   `yaml:"group"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration file, applies environment overrides and
// defaults, and validates the result.
//
// A missing file is not an error: the defaults describe a complete working
// setup, so the tool can run from environment variables alone.
func Load(configPath string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	case os.IsNotExist(err):
		// Run on defaults + environment.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration without reading any file and
// without touching the filesystem. Used where only the transformation rules
// are needed (tests, library callers).
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// applyEnvOverrides maps B2BWC_* environment variables onto the config.
// Environment wins over the YAML file.
func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.InputFile, "B2BWC_INPUT_FILE")
	overrideString(&cfg.OutputFile, "B2BWC_OUTPUT_FILE")
	overrideString(&cfg.ImagesDownloadDir, "B2BWC_IMAGES_DOWNLOAD_DIR")
	overrideString(&cfg.DocsDownloadDir, "B2BWC_DOCS_DOWNLOAD_DIR")
	overrideString(&cfg.LogDir, "B2BWC_LOG_DIR")
	overrideString(&cfg.LogLevel, "B2BWC_LOG_LEVEL")
	overrideString(&cfg.ManifestPath, "B2BWC_MANIFEST_PATH")

	overrideString(&cfg.Site.BaseURL, "B2BWC_SITE_BASE_URL")
	overrideString(&cfg.Site.ImagesUploadPath, "B2BWC_IMAGES_CSV_PATH")
	overrideString(&cfg.Site.IconsUploadPath, "B2BWC_ICONS_PATH")

	overrideInt(&cfg.BatchSize, "B2BWC_BATCH_SIZE")
	overrideString(&cfg.Currency.Code, "B2BWC_CURRENCY")

	overrideBool(&cfg.Downloads.Enabled, "B2BWC_DOWNLOADS_ENABLED")
	overrideInt(&cfg.Downloads.MaxImagesPerProduct, "B2BWC_MAX_IMAGES_PER_PRODUCT")
	overrideInt(&cfg.Downloads.Concurrency, "B2BWC_DOWNLOAD_CONCURRENCY")

	overrideBool(&cfg.S3.Enabled, "B2BWC_S3_ENABLED")
	overrideString(&cfg.S3.Endpoint, "B2BWC_S3_ENDPOINT")
	overrideString(&cfg.S3.AccessKey, "B2BWC_S3_ACCESS_KEY")
	overrideString(&cfg.S3.SecretKey, "B2BWC_S3_SECRET_KEY")
	overrideString(&cfg.S3.Bucket, "B2BWC_S3_BUCKET")
	overrideString(&cfg.S3.Region, "B2BWC_S3_REGION")
	overrideString(&cfg.S3.Prefix, "B2BWC_S3_PREFIX")
}

func overrideString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func overrideInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func overrideBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// =============================================================================
// DEFAULTS
// =============================================================================

// applyDefaults sets default values for any unset configuration options.
// The defaults reproduce the catalog layout the supplier has shipped since
// the tool was first written, so a bare config file converts it unchanged.
func applyDefaults(cfg *Config) {
	if cfg.InputFile == "" {
		cfg.InputFile = "input/catalog.xlsx"
	}
	if cfg.OutputFile == "" {
		cfg.OutputFile = "output/wc_products.csv"
	}
	if cfg.ImagesDownloadDir == "" {
		cfg.ImagesDownloadDir = "downloads/images"
	}
	if cfg.DocsDownloadDir == "" {
		cfg.DocsDownloadDir = "downloads/documents"
	}
	if cfg.LogDir == "" {
		cfg.LogDir = "logs"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.ManifestPath == "" {
		cfg.ManifestPath = "downloads/assets.db"
	}

	if cfg.Site.ImagesUploadPath == "" {
		cfg.Site.ImagesUploadPath = "/wp-content/uploads/products/"
	}
	if cfg.Site.IconsUploadPath == "" {
		cfg.Site.IconsUploadPath = "/wp-content/uploads/icons/"
	}

	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}

	if cfg.Currency.Code == "" {
		cfg.Currency.Code = "RUB"
	}
	if len(cfg.Currency.StripPatterns) == 0 {
		cfg.Currency.StripPatterns = []string{"руб.", "рублей", "RUB", "₽"}
	}
	if cfg.Currency.MaxPrice == 0 {
		cfg.Currency.MaxPrice = 10000000
	}

	applyDownloadDefaults(&cfg.Downloads)
	applyWCDefaults(&cfg.WooCommerce)
	applyCatalogDefaults(&cfg.Catalog)
}

func applyDownloadDefaults(d *DownloadConfig) {
	if d.MaxImagesPerProduct == 0 {
		d.MaxImagesPerProduct = 10
	}
	if d.Concurrency == 0 {
		d.Concurrency = 3
	}
	if d.RatePerSecond == 0 {
		d.RatePerSecond = 5
	}
	if d.TimeoutSeconds == 0 {
		d.TimeoutSeconds = 30
	}
	if d.MinFileSize == 0 {
		d.MinFileSize = 1024
	}
	if d.UserAgent == "" {
		d.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}
	if d.ResizeQuality == 0 {
		d.ResizeQuality = 85
	}
}

func applyWCDefaults(w *WCConfig) {
	if w.Defaults == nil {
		w.Defaults = map[string]string{
			"post_status":       "publish",
			"tax:product_type":  "simple",
			"stock_status":      "instock",
			"manage_stock":      "no",
			"backorders":        "no",
			"sold_individually": "no",
			"visibility":        "visible",
			"tax_status":        "taxable",
		}
	}
	if w.Attributes == nil {
		w.Attributes = map[string]string{
			"Цвет корпуса":        "pa_color",
			"Материал корпуса":    "pa_material",
			"Мощность":            "pa_power",
			"Страна производства": "pa_country",
			"Тип установки":       "pa_installation-type",
			"Область применения":  "pa_application",
			"Габариты":            "pa_dimensions",
		}
	}
	if w.ExcerptLength == 0 {
		w.ExcerptLength = 200
	}
	// A YAML false is indistinguishable from unset for a bool, so the zero
	// value flips to the historical default (slugs on) unless the dedicated
	// env switch says otherwise.
	if !w.SlugifyTitle {
		if v, ok := os.LookupEnv("B2BWC_TITLE_SLUGIFY"); ok {
			b, err := strconv.ParseBool(v)
			w.SlugifyTitle = err != nil || b
		} else {
			w.SlugifyTitle = true
		}
	}
}

func applyCatalogDefaults(c *CatalogConfig) {
	if len(c.RequiredColumns) == 0 {
		c.RequiredColumns = []string{"Наименование", "Артикул", "Цена"}
	}
	if len(c.DocumentColumns) == 0 {
		c.DocumentColumns = []string{"Видео", "Чертежи", "Сертификаты", "Промоматериалы", "Инструкции"}
	}
	if len(c.InfoColumns) == 0 {
		c.InfoColumns = []string{"НС-код", "Штрих код", "Эксклюзив"}
	}
	if c.DefaultGroup == "" {
		c.DefaultGroup = "Другие характеристики"
	}
	if len(c.CharacteristicGroups) == 0 {
		c.CharacteristicGroups = defaultGroupRules()
	}
	if c.DocumentIcons == nil {
		c.DocumentIcons = map[string]string{
			"video":       "video-icon.png",
			"drawing":     "drawing-icon.png",
			"certificate": "certificate-icon.png",
			"promo":       "promo-icon.png",
			"manual":      "manual-icon.png",
		}
	}
	if c.ExtractFields == nil {
		c.ExtractFields = map[string][]string{
			"weight": {"Вес товара", "Масса товара", "Вес"},
			"width":  {"Ширина товара", "Ширина"},
			"height": {"Высота товара", "Высота"},
			"length": {"Длина товара", "Длина", "Глубина товара", "Глубина"},
		}
	}
}

// defaultGroupRules returns the built-in characteristic grouping, ordered by
// priority. The first rule whose keyword appears in the normalized key wins.
func defaultGroupRules() []GroupRule {
	return []GroupRule{
		{Keywords: []string{"габарит", "размер", "вес", "масса", "ширина", "высота", "глубина", "длина", "толщина"},
			Group: "Габариты и вес"},
		{Keywords: []string{"мощность", "напряжение", "ток", "частота", "потребление", "энергопотребление", "ампер", "вольт", "ватт", "квт", "ква"},
			Group: "Технические характеристики"},
		{Keywords: []string{"управление", "термостат", "таймер", "дисплей", "сенсор", "кнопк", "пульт", "регулятор", "переключатель"},
			Group: "Управление"},
		{Keywords: []string{"защита", "безопасность", "ip", "влагозащита", "пылезащита", "аварийное", "перегрев", "опрокидывание", "заземление", "изоляция"},
			Group: "Безопасность"},
		{Keywords: []string{"установка", "крепление", "монтаж", "кабель", "вилка", "подключение", "кронштейн", "крепёж", "анкер", "дюбель"},
			Group: "Монтаж и подключение"},
		{Keywords: []string{"комплект", "в комплекте", "крепеж", "аксессуар", "комплектация", "дополнительно", "принадлежность"},
			Group: "Комплектация"},
		{Keywords: []string{"цвет", "материал", "отделка", "поверхность", "дизайн", "форма", "внешний вид", "оттенок", "фактура"},
			Group: "Внешний вид"},
		{Keywords: []string{"применение", "назначение", "область", "площадь", "эффективен", "использование", "эксплуатация", "помещение"},
			Group: "Эксплуатация"},
		{Keywords: []string{"гарантия", "срок", "служба", "производство", "страна", "серия", "бренд", "артикул", "модель", "тип"},
			Group: "Общие сведения"},
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// validate checks the configuration for values the pipeline cannot work with
// and creates the working directories.
func validate(cfg *Config) error {
	if cfg.InputFile == "" {
		return fmt.Errorf("input_file must be set")
	}
	if cfg.OutputFile == "" {
		return fmt.Errorf("output_file must be set")
	}
	if cfg.BatchSize < 1 {
		return fmt.Errorf("batch_size must be positive, got %d", cfg.BatchSize)
	}
	if cfg.Downloads.Concurrency < 1 {
		return fmt.Errorf("downloads.concurrency must be positive, got %d", cfg.Downloads.Concurrency)
	}
	if cfg.Currency.MinPrice > cfg.Currency.MaxPrice {
		return fmt.Errorf("currency.min_price %v exceeds max_price %v", cfg.Currency.MinPrice, cfg.Currency.MaxPrice)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug/info/warn/error, got %q", cfg.LogLevel)
	}

	if cfg.S3.Enabled {
		if cfg.S3.Endpoint == "" || cfg.S3.Bucket == "" {
			return fmt.Errorf("s3.endpoint and s3.bucket are required when s3.enabled is true")
		}
	}

	dirs := []string{
		cfg.ImagesDownloadDir,
		cfg.DocsDownloadDir,
		cfg.LogDir,
		filepath.Dir(cfg.OutputFile),
		filepath.Dir(cfg.ManifestPath),
	}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// IconURL returns the absolute (or site-relative when BaseURL is empty)
// URL of the icon for the given document type.
func (c *Config) IconURL(docType string) string {
	name, ok := c.Catalog.DocumentIcons[docType]
	if !ok {
		return ""
	}
	return c.Site.BaseURL + c.Site.IconsUploadPath + name
}
