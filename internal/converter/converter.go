// =============================================================================
// B2B-WC Converter - Conversion Pipeline
// =============================================================================
//
// This module orchestrates the full catalog conversion:
//
//   1. Read the source spreadsheet (catalog)
//   2. Transform each row into a product (field cleanup, characteristics,
//      description assembly)
//   3. Download referenced assets (optional)
//   4. Validate the products, dropping broken rows
//   5. Write the WooCommerce import CSV and the errors report
//
// ERROR PHILOSOPHY: a bad ROW never kills the RUN. Field-level problems
// (unparsable price, missing name) are carried into validation, which drops
// the row and records the finding; only infrastructure failures (unreadable
// input, unwritable output) abort the conversion.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kvanta42/b2b-wc-converter/internal/assets"
	"github.com/kvanta42/b2b-wc-converter/internal/attrs"
	"github.com/kvanta42/b2b-wc-converter/internal/catalog"
	"github.com/kvanta42/b2b-wc-converter/internal/config"
	"github.com/kvanta42/b2b-wc-converter/internal/csvwriter"
	"github.com/kvanta42/b2b-wc-converter/internal/description"
	"github.com/kvanta42/b2b-wc-converter/internal/types"
	"github.com/kvanta42/b2b-wc-converter/internal/validation"
	"github.com/kvanta42/b2b-wc-converter/pkg/utils"
)

// slugMaxLen caps generated slugs; longer post_name values get truncated by
// WordPress anyway.
const slugMaxLen = 100

// Options control a single conversion run.
type Options struct {
	// DryRun converts and validates but writes no output file.
	DryRun bool

	// SkipDownloads disables asset downloading for this run regardless of
	// configuration. The images column is still built from the expected
	// upload paths.
	SkipDownloads bool

	// Limit stops after this many data rows when positive. Used to sample
	// a new catalog revision before a full run.
	Limit int

	// DownloadOnly fetches the catalog's assets and stops: no validation,
	// no output CSV. Used to pre-seed the images directory ahead of a run.
	DownloadOnly bool
}

// Result summarizes a conversion run.
type Result struct {
	TotalRows   int
	Converted   int
	Dropped     int
	Warnings    int
	Downloads   assets.Stats
	OutputPath  string
	ReportPath  string
	ArchivePath string
	Duration    time.Duration
}

// Converter runs catalog conversions.
type Converter struct {
	cfg       *config.Config
	logger    *zap.Logger
	parser    *attrs.Parser
	builder   *description.Builder
	writer    *csvwriter.Writer
	validator *validation.Validator
}

// New wires a converter from the configuration.
func New(cfg *config.Config, logger *zap.Logger) *Converter {
	parser := attrs.NewParser(cfg)
	return &Converter{
		cfg:       cfg,
		logger:    logger,
		parser:    parser,
		builder:   description.NewBuilder(cfg, parser),
		writer:    csvwriter.NewWriter(cfg),
		validator: validation.NewValidator(cfg),
	}
}

// =============================================================================
// PIPELINE
// =============================================================================

// Run executes the conversion and returns the run summary.
func (c *Converter) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	result := &Result{OutputPath: c.cfg.OutputFile}

	// Step 1: read the catalog.
	data, err := catalog.Read(c.cfg.InputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if missing := data.CheckColumns(c.cfg.Catalog.RequiredColumns); len(missing) > 0 {
		return nil, fmt.Errorf("catalog is missing required columns: %s", strings.Join(missing, ", "))
	}

	rows := data.Rows
	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[:opts.Limit]
	}
	result.TotalRows = len(rows)
	c.logger.Info("catalog loaded",
		zap.String("file", data.FilePath),
		zap.Int("rows", len(rows)),
		zap.Int("columns", len(data.Headers)))

	// Step 2: transform rows into products.
	products := make([]types.ProductOutput, 0, len(rows))
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		products = append(products, c.convertRow(row))
	}

	// Step 3: download assets and fill the images column.
	if err := c.resolveImages(ctx, products, opts, result); err != nil {
		return nil, err
	}

	if opts.DownloadOnly {
		result.Duration = time.Since(start)
		c.logger.Info("download-only run finished",
			zap.Int("products", len(products)),
			zap.Duration("duration", result.Duration))
		return result, nil
	}

	// Step 4: validate.
	vres := c.validator.ValidateAll(products)
	result.Converted = len(vres.Valid)
	result.Dropped = vres.ErrorCount
	result.Warnings = vres.WarningCount

	for _, finding := range vres.Errors {
		if finding.Severity == validation.SeverityError {
			c.logger.Warn("product dropped", zap.String("finding", finding.Error()))
		} else {
			c.logger.Debug("validation warning", zap.String("finding", finding.Error()))
		}
	}

	// Step 5: write output.
	if !opts.DryRun {
		if err := c.writeOutput(vres, result); err != nil {
			return nil, err
		}
	}

	result.Duration = time.Since(start)
	c.logger.Info("conversion finished",
		zap.Int("converted", result.Converted),
		zap.Int("dropped", result.Dropped),
		zap.Int("warnings", result.Warnings),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// =============================================================================
// ROW CONVERSION
// =============================================================================

// convertRow builds a ProductOutput from one catalog row. Field-level
// failures leave the field empty for validation to report; this function
// never fails.
func (c *Converter) convertRow(row catalog.Row) types.ProductOutput {
	product := types.Product{
		RowNumber:          row.Number,
		Name:               row.Fields["Наименование"],
		SKU:                CleanSKU(row.Fields["Артикул"]),
		Brand:              strings.TrimSpace(row.Fields["Бренд"]),
		Category:           ConvertCategory(row.Fields["Название категории"]),
		CharacteristicsRaw: row.Fields["Характеристики"],
		DescriptionRaw:     row.Fields["Статья"],
		ImagesRaw:          row.Fields["Изображение"],
		Documents:          make(map[string]string),
		Extra:              make(map[string]string),
		Raw:                row.Fields,
	}

	price, err := CleanPrice(row.Fields["Цена"], c.cfg.Currency)
	if err != nil {
		c.logger.Debug("price rejected",
			zap.Int("row", row.Number),
			zap.String("sku", product.SKU),
			zap.Error(err))
	} else {
		product.Price = price
	}

	for _, column := range c.cfg.Catalog.DocumentColumns {
		if v := row.Fields[column]; strings.TrimSpace(v) != "" {
			product.Documents[column] = v
		}
	}
	for _, column := range c.cfg.Catalog.InfoColumns {
		if v := row.Fields[column]; strings.TrimSpace(v) != "" {
			product.Extra[column] = v
		}
	}

	chars := c.parser.Parse(product.CharacteristicsRaw)
	desc := c.builder.Build(&product, chars)

	out := types.ProductOutput{
		Product:     product,
		PostContent: desc.PostContent,
		PostExcerpt: desc.PostExcerpt,
		Attributes:  c.parser.Attributes(chars),
		Dimensions:  c.parser.ExtractFields(chars),
	}
	if c.cfg.WooCommerce.SlugifyTitle {
		out.Slug = Slugify(product.Name, slugMaxLen)
	}

	return out
}

// =============================================================================
// ASSETS
// =============================================================================

// resolveImages fills ImagePaths for every product and, unless disabled,
// downloads the image files.
//
// The images column always lists the paths the files WILL have on the site
// (upload path + generated name); when downloads run, URLs that failed are
// excluded so the import never references a missing file.
func (c *Converter) resolveImages(ctx context.Context, products []types.ProductOutput, opts Options, result *Result) error {
	download := c.cfg.Downloads.Enabled && !opts.SkipDownloads && !opts.DryRun

	// Products are matched to their jobs by position, never by SKU: duplicate
	// article numbers are a real catalog defect and each row must keep the
	// image list of its own cell.
	var jobs []assets.Job
	jobIndex := make(map[int]int, len(products))
	urls := make([][]string, len(products))
	for i := range products {
		p := &products[i]
		urls[i] = assets.ParseURLList(p.ImagesRaw, c.cfg.Downloads.MaxImagesPerProduct)
		if len(urls[i]) == 0 {
			continue
		}
		if download {
			jobIndex[i] = len(jobs)
			jobs = append(jobs, assets.Job{SKU: p.SKU, Slug: p.Slug, URLs: urls[i]})
		}
	}

	var results []assets.JobResult
	if download && len(jobs) > 0 {
		var err error
		results, err = c.runDownloads(ctx, jobs, result)
		if err != nil {
			return err
		}
	}

	for i := range products {
		p := &products[i]
		if len(urls[i]) == 0 {
			continue
		}

		var names []string
		if j, ok := jobIndex[i]; ok && results != nil {
			names = results[j].Filenames()
		} else {
			for idx, u := range urls[i] {
				names = append(names, assets.Filename(p.SKU, p.Slug, idx+1, u))
			}
		}

		for _, name := range names {
			p.ImagePaths = append(p.ImagePaths, c.cfg.Site.ImagesUploadPath+name)
		}
	}

	return nil
}

// runDownloads wires the manifest and the optional S3 mirror, then runs the
// download jobs.
func (c *Converter) runDownloads(ctx context.Context, jobs []assets.Job, result *Result) ([]assets.JobResult, error) {
	var manifest *assets.Manifest
	if c.cfg.ManifestPath != "" {
		m, err := assets.OpenManifest(c.cfg.ManifestPath)
		if err != nil {
			// The manifest is an optimization; run without it.
			c.logger.Warn("manifest unavailable, downloads will not be skipped",
				zap.String("path", c.cfg.ManifestPath), zap.Error(err))
		} else {
			manifest = m
			defer manifest.Close()
		}
	}

	var uploader *assets.Uploader
	if c.cfg.S3.Enabled {
		u, err := assets.NewUploader(ctx, c.cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to set up s3 mirror: %w", err)
		}
		uploader = u
	}

	dl := assets.NewDownloader(c.cfg.Downloads, c.cfg.ImagesDownloadDir, manifest, uploader, c.logger)
	results, err := dl.Run(ctx, jobs)
	result.Downloads = dl.Stats()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("asset downloads failed: %w", err)
	}

	c.logger.Info("asset downloads complete",
		zap.Int("total", result.Downloads.Total),
		zap.Int("downloaded", result.Downloads.Downloaded),
		zap.Int("skipped", result.Downloads.Skipped),
		zap.Int("failed", result.Downloads.Failed),
		zap.Int64("bytes", result.Downloads.Bytes))

	return results, nil
}

// =============================================================================
// OUTPUT
// =============================================================================

// writeOutput archives the previous CSV, writes the new one and the errors
// report.
func (c *Converter) writeOutput(vres *validation.Result, result *Result) error {
	archiveDir := filepath.Join(c.cfg.LogDir, "archive")
	archivePath, err := utils.ArchiveOutputFile(c.cfg.OutputFile, archiveDir)
	if err != nil {
		c.logger.Warn("failed to archive previous output", zap.Error(err))
	} else if archivePath != "" {
		result.ArchivePath = archivePath
		c.logger.Info("previous output archived", zap.String("path", archivePath))
	}

	rows := make([]map[string]string, 0, len(vres.Valid))
	for _, p := range vres.Valid {
		rows = append(rows, c.writer.BuildRow(p))
	}

	if err := c.writer.WriteFile(c.cfg.OutputFile, rows); err != nil {
		return fmt.Errorf("failed to write output CSV: %w", err)
	}

	if len(vres.Errors) > 0 {
		reportPath := utils.ErrorReportPath(c.cfg.OutputFile)
		title := fmt.Sprintf("Conversion errors for %s (%d errors, %d warnings)",
			filepath.Base(c.cfg.InputFile), vres.ErrorCount, vres.WarningCount)
		if err := utils.WriteReport(reportPath, title, validation.FormatErrors(vres.Errors)); err != nil {
			c.logger.Warn("failed to write errors report", zap.Error(err))
		} else {
			result.ReportPath = reportPath
		}
	}

	return nil
}
