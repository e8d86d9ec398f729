package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	rxgo "github.com/xinjiayu/rxflat"
	"github.com/xinjiayu/rxflat/logging"
)

var errNothingCrawled = errors.New("crawler: no pages were crawled")

// CrawlResult 单个页面的爬取结果
type CrawlResult struct {
	URL         string
	StatusCode  int
	ContentSize int
	Latency     time.Duration
	Err         error
}

// CrawlStats 爬取统计，由 MergeScan 逐页累积
type CrawlStats struct {
	Pages      int
	Failed     int
	Bytes      int
	MaxLatency time.Duration
}

func (s CrawlStats) add(r CrawlResult) CrawlStats {
	s.Pages++
	if r.Err != nil {
		s.Failed++
		return s
	}
	s.Bytes += r.ContentSize
	if r.Latency > s.MaxLatency {
		s.MaxLatency = r.Latency
	}
	return s
}

// NetworkCrawler 模拟的网络爬虫：在goroutine上并发抓取，并发数由 MergeMap 限制
type NetworkCrawler struct {
	cfg    Config
	logger logging.Logger
}

// NewNetworkCrawler 创建网络爬虫
func NewNetworkCrawler(cfg Config, logger logging.Logger) *NetworkCrawler {
	return &NetworkCrawler{cfg: cfg, logger: logger}
}

// Run 返回供 errgroup 执行的任务
func (nc *NetworkCrawler) Run(ctx context.Context) func() error {
	return func() error {
		stats, err := nc.Crawl(ctx, generateURLs(nc.cfg.Pages))
		if err != nil {
			return fmt.Errorf("crawl: %w", err)
		}
		nc.logger.Info("crawl finished",
			"pages", stats.Pages, "failed", stats.Failed, "bytes", stats.Bytes, "max_latency", stats.MaxLatency)
		return nil
	}
}

// Crawl 抓取全部URL并返回累积统计。没有任何URL时返回 errNothingCrawled
func (nc *NetworkCrawler) Crawl(ctx context.Context, urls []string) (CrawlStats, error) {
	sources := make([]interface{}, len(urls))
	for i, url := range urls {
		sources[i] = url
	}

	pipeline := rxgo.FromSlice(sources).Pipe(
		rxgo.MergeMap(func(value interface{}, index int) (rxgo.Observable, error) {
			return nc.fetch(value.(string), index), nil
		}, rxgo.WithConcurrency(nc.cfg.Concurrency), rxgo.WithLogger(nc.logger)),
		rxgo.DoOnNext(func(value interface{}) {
			if r := value.(CrawlResult); r.Err != nil {
				nc.logger.Debug("page failed", "url", r.URL, "error", r.Err)
			}
		}),
		// 并发为1：每次累加都基于上一页累加后的统计
		rxgo.MergeScan(func(acc, value interface{}, _ int) (rxgo.Observable, error) {
			return rxgo.Just(acc.(CrawlStats).add(value.(CrawlResult))), nil
		}, CrawlStats{}, rxgo.WithConcurrency(1)),
		rxgo.Filter(func(value interface{}) bool {
			return value.(CrawlStats).Pages > 0
		}),
		rxgo.ThrowIfEmpty(func() error { return errNothingCrawled }),
	)

	last, err := rxgo.BlockingLast(ctx, pipeline)
	if err != nil {
		return CrawlStats{}, err
	}
	return last.(CrawlStats), nil
}

// fetch 在独立goroutine上模拟一次HTTP请求
func (nc *NetworkCrawler) fetch(url string, index int) rxgo.Observable {
	return rxgo.NewObservable(func(subscriber rxgo.Subscriber) rxgo.Subscription {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			defer cancel()

			rng := rand.New(rand.NewSource(int64(index) + 1))
			latency := time.Duration(0)
			if nc.cfg.MaxLatency > 0 {
				latency = time.Duration(rng.Int63n(int64(nc.cfg.MaxLatency)))
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(latency):
			}

			result := CrawlResult{URL: url, StatusCode: 200, ContentSize: 1024 + rng.Intn(64*1024), Latency: latency}
			if rng.Float64() < nc.cfg.FailureRate {
				result = CrawlResult{URL: url, StatusCode: 503, Latency: latency, Err: fmt.Errorf("fetch %s: service unavailable", url)}
			}
			subscriber.OnNext(result)
			subscriber.OnComplete()
		}()
		return rxgo.NewSubscription(cancel)
	})
}

// generateURLs 生成模拟URL列表
func generateURLs(count int) []string {
	domains := []string{"example.com", "test.org", "demo.net", "sample.io", "mock.dev"}
	paths := []string{"/", "/about", "/products", "/blog", "/api/v1/data", "/docs"}

	urls := make([]string, count)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://%s%s?id=%d", domains[i%len(domains)], paths[i%len(paths)], i+1)
	}
	return urls
}
