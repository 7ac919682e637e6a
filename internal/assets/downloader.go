// =============================================================================
// B2B-WC Converter - Asset Downloader
// =============================================================================
//
// Downloads the images and documents a catalog references. Work is spread
// over a bounded worker pool (one unit of work = one product), all workers
// share a single rate limiter so the supplier CDN sees a steady request rate,
// and results are recorded in the SQLite manifest so a re-run only fetches
// what is missing.
//
// FAILURE POLICY: a failed asset never fails the product. The caller gets
// back the per-URL outcomes and builds the images column from whatever
// succeeded.
//
// =============================================================================

package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/kvanta42/b2b-wc-converter/internal/config"
)

// Job is one product's worth of downloads.
type Job struct {
	SKU  string
	Slug string
	URLs []string
}

// Outcome is the result for a single URL of a job.
type Outcome struct {
	URL      string
	Filename string
	Path     string
	Size     int64
	Skipped  bool // already on disk or in the manifest
	Err      error
}

// JobResult groups the outcomes of one product.
type JobResult struct {
	SKU      string
	Outcomes []Outcome
}

// Filenames returns the names of the assets that exist after the job, in
// source URL order.
func (r JobResult) Filenames() []string {
	var names []string
	for _, o := range r.Outcomes {
		if o.Err == nil {
			names = append(names, o.Filename)
		}
	}
	return names
}

// Stats aggregates counters across a run.
type Stats struct {
	Total      int
	Downloaded int
	Skipped    int
	Failed     int
	Bytes      int64
}

// Downloader fetches product assets.
type Downloader struct {
	cfg      config.DownloadConfig
	dir      string
	client   *http.Client
	limiter  *rate.Limiter
	manifest *Manifest
	uploader *Uploader
	logger   *zap.Logger

	mu    sync.Mutex
	stats Stats
}

// NewDownloader builds a downloader writing into dir. manifest and uploader
// may be nil (no skip bookkeeping / no S3 mirror).
func NewDownloader(cfg config.DownloadConfig, dir string, manifest *Manifest, uploader *Uploader, logger *zap.Logger) *Downloader {
	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Concurrency)
	}

	return &Downloader{
		cfg:      cfg,
		dir:      dir,
		client:   &http.Client{Timeout: cfg.Timeout()},
		limiter:  limiter,
		manifest: manifest,
		uploader: uploader,
		logger:   logger,
	}
}

// Stats returns a copy of the accumulated counters.
func (d *Downloader) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// =============================================================================
// BATCH PROCESSING
// =============================================================================

// Run processes all jobs with bounded concurrency and returns the results
// in job order. Jobs are not keyed by SKU: the catalog can carry the same
// article number on several rows, and each row keeps its own outcomes.
// Only a canceled context aborts the run; individual download failures are
// reported in the outcomes.
func (d *Downloader) Run(ctx context.Context, jobs []Job) ([]JobResult, error) {
	results := make([]JobResult, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Concurrency)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = d.runJob(ctx, job)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("download run aborted: %w", err)
	}
	return results, nil
}

// runJob downloads all assets of one product sequentially. Parallelism is
// across products, not within one, so a product's files land in order.
func (d *Downloader) runJob(ctx context.Context, job Job) JobResult {
	result := JobResult{SKU: job.SKU}

	for i, sourceURL := range job.URLs {
		outcome := d.fetchOne(ctx, job, i+1, sourceURL)
		result.Outcomes = append(result.Outcomes, outcome)

		d.mu.Lock()
		d.stats.Total++
		switch {
		case outcome.Err != nil:
			d.stats.Failed++
		case outcome.Skipped:
			d.stats.Skipped++
		default:
			d.stats.Downloaded++
			d.stats.Bytes += outcome.Size
		}
		d.mu.Unlock()

		if outcome.Err != nil {
			d.logger.Warn("asset download failed",
				zap.String("sku", job.SKU),
				zap.String("url", sourceURL),
				zap.Error(outcome.Err))
		}
	}

	return result
}

// =============================================================================
// SINGLE ASSET
// =============================================================================

// fetchOne downloads one asset, honoring the manifest and on-disk skips.
func (d *Downloader) fetchOne(ctx context.Context, job Job, index int, sourceURL string) Outcome {
	filename := Filename(job.SKU, job.Slug, index, sourceURL)
	destPath := filepath.Join(d.dir, filename)
	outcome := Outcome{URL: sourceURL, Filename: filename, Path: destPath}

	// Manifest hit from a previous run. The stored name wins over the one
	// derived from the current slug, so a renamed product does not get its
	// images fetched twice under a second name.
	if d.manifest != nil {
		if done, stored := d.manifest.IsDone(sourceURL); done && stored != "" {
			storedPath := filepath.Join(d.dir, stored)
			if info, err := os.Stat(storedPath); err == nil && info.Size() >= d.cfg.MinFileSize {
				return Outcome{
					URL:      sourceURL,
					Filename: stored,
					Path:     storedPath,
					Size:     info.Size(),
					Skipped:  true,
				}
			}
			// Stale entry, the file is gone from disk: refetch below.
		}
	}

	// Already on disk and big enough to be real.
	if info, err := os.Stat(destPath); err == nil && info.Size() >= d.cfg.MinFileSize {
		outcome.Skipped = true
		outcome.Size = info.Size()
		d.record(sourceURL, job.SKU, filename, info.Size(), "skipped")
		return outcome
	}

	size, err := d.download(ctx, sourceURL, destPath)
	if err != nil {
		outcome.Err = err
		d.record(sourceURL, job.SKU, filename, 0, "failed")
		return outcome
	}
	outcome.Size = size

	if d.uploader != nil {
		if err := d.uploader.Upload(ctx, destPath, filename); err != nil {
			// The local file is good; the mirror can be retried later.
			d.logger.Warn("s3 upload failed",
				zap.String("object", filename), zap.Error(err))
		}
	}

	d.record(sourceURL, job.SKU, filename, size, "done")
	return outcome
}

// download performs the HTTP fetch and writes the file. The body is buffered
// in memory because it may be re-encoded by the resize step; catalog assets
// are single-digit megabytes at most.
func (d *Downloader) download(ctx context.Context, sourceURL, destPath string) (int64, error) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return 0, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return 0, fmt.Errorf("invalid url: %w", err)
	}
	req.Header.Set("User-Agent", d.cfg.UserAgent)
	req.Header.Set("Accept", "image/webp,image/apng,image/*,*/*;q=0.8")

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %s", resp.Status)
	}

	// Some supplier servers label images application/octet-stream or worse;
	// log and continue, the size check below catches HTML error pages.
	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if contentType != "" && !strings.Contains(contentType, "image") &&
		!strings.Contains(contentType, "octet-stream") &&
		!strings.Contains(contentType, "application") && !strings.Contains(contentType, "video") {
		d.logger.Debug("suspicious content type",
			zap.String("url", sourceURL), zap.String("content_type", contentType))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return 0, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) < d.cfg.MinFileSize {
		return 0, fmt.Errorf("body too small (%d bytes)", len(body))
	}

	if d.cfg.ResizeMaxWidth > 0 && isImageFile(destPath) {
		if resized, err := ResizeImage(body, d.cfg.ResizeMaxWidth, d.cfg.ResizeQuality); err == nil {
			body = resized
		} else {
			d.logger.Debug("resize skipped", zap.String("url", sourceURL), zap.Error(err))
		}
	}

	if err := os.WriteFile(destPath, body, 0644); err != nil {
		return 0, fmt.Errorf("write file: %w", err)
	}

	return int64(len(body)), nil
}

func (d *Downloader) record(url, sku, filename string, size int64, status string) {
	if d.manifest == nil {
		return
	}
	if err := d.manifest.Record(url, sku, filename, size, status, time.Now()); err != nil {
		d.logger.Warn("manifest write failed", zap.String("url", url), zap.Error(err))
	}
}

func isImageFile(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}
