package main

import (
	"context"
	"fmt"

	rxgo "github.com/xinjiayu/rxflat"
	"github.com/xinjiayu/rxflat/logging"
)

// BatchItem 批处理项
type BatchItem struct {
	ID    int
	Value float64
}

// BatchResult 批处理结果
type BatchResult struct {
	BatchID   int
	ItemCount int
	Total     float64
}

// BatchProcessor 按顺序逐批处理：ConcatMap 保证前一批完成后才开始下一批
type BatchProcessor struct {
	cfg    Config
	logger logging.Logger
}

// NewBatchProcessor 创建批处理器
func NewBatchProcessor(cfg Config, logger logging.Logger) *BatchProcessor {
	return &BatchProcessor{cfg: cfg, logger: logger}
}

// Run 返回供 errgroup 执行的任务
func (bp *BatchProcessor) Run(ctx context.Context) func() error {
	return func() error {
		results, err := bp.Process(ctx, generateBatchItems(bp.cfg.Items))
		if err != nil {
			return fmt.Errorf("batch: %w", err)
		}
		var total float64
		for _, r := range results {
			total += r.Total
		}
		bp.logger.Info("batches finished", "batches", len(results), "total", total)
		return nil
	}
}

// Process 分批处理，返回按批次顺序排列的结果
func (bp *BatchProcessor) Process(ctx context.Context, items []BatchItem) ([]BatchResult, error) {
	batches := createBatches(items, bp.cfg.BatchSize)
	sources := make([]interface{}, len(batches))
	for i, batch := range batches {
		sources[i] = batch
	}

	pipeline := rxgo.FromSlice(sources).Pipe(
		rxgo.ConcatMap(func(value interface{}, index int) (rxgo.Observable, error) {
			return processBatch(index+1, value.([]BatchItem)), nil
		}, rxgo.WithLogger(bp.logger)),
	)

	var results []BatchResult
	for item := range rxgo.ToChannel(ctx, pipeline, rxgo.WithBufferSize(len(batches))) {
		if item.IsError() {
			return nil, item.Error
		}
		result := item.GetValue().(BatchResult)
		bp.logger.Debug("batch processed", "batch_id", result.BatchID, "items", result.ItemCount)
		results = append(results, result)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// processBatch 在独立goroutine上处理一批数据
func processBatch(batchID int, batch []BatchItem) rxgo.Observable {
	return rxgo.NewObservable(func(subscriber rxgo.Subscriber) rxgo.Subscription {
		go func() {
			result := BatchResult{BatchID: batchID, ItemCount: len(batch)}
			for _, item := range batch {
				if subscriber.IsUnsubscribed() {
					return
				}
				result.Total += item.Value
			}
			subscriber.OnNext(result)
			subscriber.OnComplete()
		}()
		return nil
	})
}

func generateBatchItems(count int) []BatchItem {
	items := make([]BatchItem, count)
	for i := range items {
		items[i] = BatchItem{ID: i + 1, Value: float64(i%100) / 10}
	}
	return items
}

func createBatches(items []BatchItem, size int) [][]BatchItem {
	var batches [][]BatchItem
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}
	return batches
}
