package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestConfig writes a YAML config whose paths all live under a temp dir,
// so Load's directory creation never touches the working directory.
func writeTestConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	content := "input_file: " + filepath.Join(dir, "in.xlsx") + "\n" +
		"output_file: " + filepath.Join(dir, "out", "wc.csv") + "\n" +
		"images_download_dir: " + filepath.Join(dir, "img") + "\n" +
		"docs_download_dir: " + filepath.Join(dir, "docs") + "\n" +
		"log_dir: " + filepath.Join(dir, "logs") + "\n" +
		"manifest_path: " + filepath.Join(dir, "assets.db") + "\n" +
		extra
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "input/catalog.xlsx", cfg.InputFile)
	assert.Equal(t, "output/wc_products.csv", cfg.OutputFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, "RUB", cfg.Currency.Code)
	assert.Contains(t, cfg.Currency.StripPatterns, "руб.")
	assert.Equal(t, float64(10000000), cfg.Currency.MaxPrice)
	assert.Equal(t, 10, cfg.Downloads.MaxImagesPerProduct)
	assert.Equal(t, 3, cfg.Downloads.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Downloads.Timeout())
	assert.Equal(t, int64(1024), cfg.Downloads.MinFileSize)
	assert.True(t, cfg.WooCommerce.SlugifyTitle)
	assert.Equal(t, "publish", cfg.WooCommerce.Defaults["post_status"])
	assert.Equal(t, "pa_color", cfg.WooCommerce.Attributes["Цвет корпуса"])
	assert.Equal(t, []string{"Наименование", "Артикул", "Цена"}, cfg.Catalog.RequiredColumns)
	assert.Equal(t, "Другие характеристики", cfg.Catalog.DefaultGroup)
	assert.NotEmpty(t, cfg.Catalog.CharacteristicGroups)
}

func TestLoadFromFile(t *testing.T) {
	path := writeTestConfig(t, "batch_size: 50\nlog_level: warn\ncurrency:\n  code: EUR\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "EUR", cfg.Currency.Code)
	// Unset sections still get their defaults.
	assert.Equal(t, 3, cfg.Downloads.Concurrency)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("B2BWC_INPUT_FILE", filepath.Join(dir, "in.xlsx"))
	t.Setenv("B2BWC_OUTPUT_FILE", filepath.Join(dir, "out.csv"))
	t.Setenv("B2BWC_IMAGES_DOWNLOAD_DIR", filepath.Join(dir, "img"))
	t.Setenv("B2BWC_DOCS_DOWNLOAD_DIR", filepath.Join(dir, "docs"))
	t.Setenv("B2BWC_LOG_DIR", filepath.Join(dir, "logs"))
	t.Setenv("B2BWC_MANIFEST_PATH", filepath.Join(dir, "assets.db"))

	cfg, err := Load(filepath.Join(dir, "no-such.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.DirExists(t, filepath.Join(dir, "img"))
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := writeTestConfig(t, "batch_size: 50\n")

	t.Setenv("B2BWC_BATCH_SIZE", "25")
	t.Setenv("B2BWC_CURRENCY", "KZT")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.BatchSize)
	assert.Equal(t, "KZT", cfg.Currency.Code)
}

func TestLoadInvalidLogLevel(t *testing.T) {
	path := writeTestConfig(t, "log_level: chatty\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "log_level")
}

func TestLoadInvalidBatchSize(t *testing.T) {
	path := writeTestConfig(t, "batch_size: -5\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "batch_size")
}

func TestLoadS3RequiresEndpoint(t *testing.T) {
	path := writeTestConfig(t, "s3:\n  enabled: true\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "s3.endpoint")
}

func TestLoadPriceBounds(t *testing.T) {
	path := writeTestConfig(t, "currency:\n  min_price: 100\n  max_price: 10\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "min_price")
}

func TestLoadMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input_file: [unclosed"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestIconURL(t *testing.T) {
	cfg := Default()
	cfg.Site.BaseURL = "https://shop.example"

	assert.Equal(t,
		"https://shop.example/wp-content/uploads/icons/manual-icon.png",
		cfg.IconURL("manual"))
	assert.Equal(t, "", cfg.IconURL("unknown"))
}
