package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-blog-archiver/internal/config"
	"github.com/samvad-hq/samvad-blog-archiver/internal/crawler"
	"github.com/samvad-hq/samvad-blog-archiver/internal/domain"
	"github.com/samvad-hq/samvad-blog-archiver/internal/fetcher"
	"github.com/samvad-hq/samvad-blog-archiver/internal/logger"
	"github.com/samvad-hq/samvad-blog-archiver/internal/storage"
	"github.com/samvad-hq/samvad-blog-archiver/pkg/httpclient"
	"github.com/samvad-hq/samvad-blog-archiver/pkg/publishers"
	"github.com/samvad-hq/samvad-blog-archiver/pkg/sources"
)

// Archiver represents the blog archiver runtime. It runs the scrape pipeline for every
// configured source, stores new articles and fans them out to publishers.
type Archiver struct {
	cfg           *config.Config
	sources       []sourceRun
	store         storage.ArticleStore
	fanout        *publishers.Fanout
	crawlInterval time.Duration
	log           logger.Logger
}

type sourceRun struct {
	source   sources.Source
	pipeline *crawler.Service
}

// NewArchiver builds an archiver runtime from config.
func NewArchiver(ctx context.Context, cfg *config.Config, log logger.Logger) (*Archiver, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)

	sourceReg, err := loadSources(cfg)
	if err != nil {
		return nil, err
	}
	sourceList, err := selectSources(sourceReg, cfg.SourceIDs)
	if err != nil {
		return nil, err
	}
	sourceIDs := make([]string, 0, len(sourceList))
	for _, s := range sourceList {
		sourceIDs = append(sourceIDs, s.ID)
	}
	log.InfoObj("sources registry loaded", "sources_meta", map[string]any{
		"count": len(sourceIDs),
		"ids":   sourceIDs,
	})

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(ctx, cfg.StorageType, storage.Options{
		BBoltPath:   cfg.BBoltPath,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type": cfg.StorageType,
		"path": storagePath(cfg),
	})

	runs := make([]sourceRun, 0, len(sourceList))
	for _, src := range sourceList {
		runs = append(runs, sourceRun{source: src, pipeline: newPipeline(cfg, src, log)})
	}

	return &Archiver{
		cfg:           cfg,
		sources:       runs,
		store:         store,
		fanout:        fanout,
		crawlInterval: cfg.CrawlInterval,
		log:           log,
	}, nil
}

func loadSources(cfg *config.Config) (*sources.Registry, error) {
	defaults := sources.Defaults{BatchSize: cfg.BatchSize, RequestDelay: cfg.ArticleDelay}
	if strings.TrimSpace(cfg.SourcesFile) != "" {
		reg, err := sources.LoadRegistry(cfg.SourcesFile, defaults)
		if err != nil {
			return nil, fmt.Errorf("load sources registry: %w", err)
		}
		return reg, nil
	}
	reg, err := sources.SingleSource(cfg.BlogURL, defaults)
	if err != nil {
		return nil, fmt.Errorf("build blog source: %w", err)
	}
	return reg, nil
}

// selectSources narrows the registry to the comma-separated ids, keeping their order.
// An empty list selects every source.
func selectSources(reg *sources.Registry, ids string) ([]sources.Source, error) {
	if strings.TrimSpace(ids) == "" {
		return reg.All(), nil
	}
	var out []sources.Source
	for _, id := range strings.Split(ids, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		src, ok := reg.ByID(id)
		if !ok {
			return nil, fmt.Errorf("unknown source id %q", id)
		}
		out = append(out, src)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("source_ids %q selects no sources", ids)
	}
	return out, nil
}

func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(cfg.PublishersFile) == "" {
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

func newPipeline(cfg *config.Config, src sources.Source, log logger.Logger) *crawler.Service {
	client := httpclient.NewRestyClient(cfg.FetchTimeout, nil)
	f := fetcher.New(client, sources.Headers(src, cfg.UserAgent))
	pacer := crawler.NewPacer(cfg.ThrottleMode, src.RequestDelay())
	return crawler.NewService(src.ListingURL, f, pacer, log)
}

func storagePath(cfg *config.Config) string {
	switch strings.ToLower(strings.TrimSpace(cfg.StorageType)) {
	case "", "bbolt":
		return cfg.BBoltPath
	case "sqlite", "sqlite3":
		return cfg.DatabaseURL
	default:
		return ""
	}
}

// RunOnce archives the oldest batch of every source. Per-source failures are joined into
// the returned error; the summary still covers every source that ran.
func (a *Archiver) RunOnce(ctx context.Context) (Summary, error) {
	if a == nil || a.store == nil {
		return Summary{}, fmt.Errorf("archiver is not initialized")
	}

	start := time.Now()
	a.log.InfoObj("archive run started", "run_meta", map[string]any{
		"sources_count": len(a.sources),
		"started_at":    start.UTC(),
	})

	var (
		total Summary
		errs  []error
	)
	for _, run := range a.sources {
		sum, err := a.runSource(ctx, run)
		total.add(sum)
		if err != nil {
			errs = append(errs, err)
			a.log.ErrorObj("source run failed", "source_error", map[string]any{
				"source_id": run.source.ID,
				"error":     err.Error(),
			})
		}
	}

	a.log.InfoObj("archive run completed", "run_summary", map[string]any{
		"summary":    total,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return total, errors.Join(errs...)
}

func (a *Archiver) runSource(ctx context.Context, run sourceRun) (Summary, error) {
	sum := Summary{Sources: 1}
	src := run.source

	results, err := run.pipeline.CollectOldestArticles(ctx, src.BatchSize)
	if err != nil && len(results) == 0 {
		sum.SourcesFailed = 1
		return sum, fmt.Errorf("source %s: %w", src.ID, err)
	}

	sum.Candidates = len(results)
	for _, res := range results {
		if res.Status != crawler.StatusScraped {
			sum.Failed++
			continue
		}
		sum.Scraped++
		a.save(ctx, src, res.Article, &sum)
	}

	a.log.InfoObj("source run completed", "source_summary", map[string]any{
		"source_id":   src.ID,
		"listing_url": run.pipeline.ListingURL(),
		"summary":     sum,
	})
	if err != nil {
		return sum, fmt.Errorf("source %s: %w", src.ID, err)
	}
	return sum, nil
}

// save stores art unless its URL is already archived. Errors are logged and counted,
// never returned.
func (a *Archiver) save(ctx context.Context, src sources.Source, art domain.ScrapedArticle, sum *Summary) {
	_, found, err := a.store.FindByURL(ctx, art.URL)
	if err != nil {
		sum.Failed++
		a.log.ErrorObj("article lookup failed", "store_error", map[string]any{
			"url":   art.URL,
			"error": err.Error(),
		})
		return
	}
	if found {
		sum.Skipped++
		a.log.InfoObj("article already stored", "article", map[string]any{"url": art.URL})
		return
	}

	rec, err := a.store.Create(ctx, art)
	switch {
	case errors.Is(err, storage.ErrDuplicateKey):
		sum.Skipped++
		a.log.InfoObj("article already stored", "article", map[string]any{"url": art.URL})
		return
	case err != nil:
		sum.Failed++
		a.log.ErrorObj("article save failed", "store_error", map[string]any{
			"url":   art.URL,
			"error": err.Error(),
		})
		return
	}

	sum.Saved++
	a.log.InfoObj("article saved", "article", map[string]any{
		"id":    rec.ID,
		"url":   rec.URL,
		"title": rec.Title,
	})
	a.publish(ctx, src, rec.ID, art)
}

func (a *Archiver) publish(ctx context.Context, src sources.Source, recordID string, art domain.ScrapedArticle) {
	if a.fanout.Size() == 0 {
		return
	}
	evt := publishers.NewEvent(src.ID, src.Name, recordID, art)
	delivered, err := a.fanout.Publish(ctx, evt)
	if err != nil {
		a.log.WarnObj("article publish incomplete", "publish_error", map[string]any{
			"url":       art.URL,
			"delivered": delivered,
			"error":     err.Error(),
		})
	}
}

// Run archives immediately and then on every crawl interval until ctx is cancelled.
func (a *Archiver) Run(ctx context.Context) error {
	if a == nil || a.store == nil {
		return fmt.Errorf("archiver is not initialized")
	}

	a.log.InfoObj("harvester loop starting", "harvester_state", map[string]any{
		"sources_count":    len(a.sources),
		"publishers_count": a.fanout.Size(),
		"crawl_interval":   a.crawlInterval.String(),
	})

	if _, err := a.RunOnce(ctx); err != nil {
		a.log.ErrorObj("initial archive run failed", "error", err.Error())
	}

	ticker := time.NewTicker(a.crawlInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.log.InfoObj("harvester loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if _, err := a.RunOnce(ctx); err != nil {
				a.log.ErrorObj("scheduled archive run failed", "error", err.Error())
			}
		}
	}
}

// Close releases the store and publisher clients.
func (a *Archiver) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	if err := a.fanout.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publishers: %w", err))
	}
	return errors.Join(errs...)
}
