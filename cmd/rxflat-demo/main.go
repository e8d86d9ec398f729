// Command rxflat-demo 演示带并发上限的展平操作符：模拟爬虫（MergeMap + MergeScan）
// 与顺序批处理（ConcatMap），两个场景在同一个 errgroup 中并发运行
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/xinjiayu/rxflat/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		logging.NewLogger(nil).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logging.NewLogger(&logging.Config{
		Level:     logging.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Output:    os.Stderr,
		Component: "rxflat-demo",
	})
	logging.SetDefault(log)

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(NewNetworkCrawler(cfg, log).Run(ctx))
	eg.Go(NewBatchProcessor(cfg, log).Run(ctx))

	if err := eg.Wait(); err != nil {
		log.Error("demo failed", "error", err)
		os.Exit(1)
	}

	log.Info("demo finished")
}
