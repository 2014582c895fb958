package main

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	ConsumerRetryDelay    = 500 * time.Millisecond
	ConsumerMaxRetryDelay = 30 * time.Second
)

type Consumer interface {
	Consume(ctx context.Context, qids ...string) error
}

// mirrorConsumer applies the catalog changes onto the local mirror.
type mirrorConsumer struct {
	logger   *zap.Logger
	queue    Queuer
	mirror   CatalogMirror
	minDelay time.Duration
	maxDelay time.Duration
}

func NewMirrorConsumer(logger *zap.Logger, q Queuer, mirror CatalogMirror) Consumer {
	return &mirrorConsumer{
		logger:   logger,
		queue:    q,
		mirror:   mirror,
		minDelay: ConsumerRetryDelay,
		maxDelay: ConsumerMaxRetryDelay,
	}
}

// Consume pops changes until the context is done. Consecutive pop failures
// are retried after a delay doubling up to maxDelay.
func (mc *mirrorConsumer) Consume(ctx context.Context, qids ...string) error {
	delay := mc.minDelay
	for {
		qid, book, err := mc.queue.Pop(ctx, qids...)
		if err != nil && ctx.Err() != nil {
			mc.logger.Info("consumer: queue pop call: context is done: exit", zap.String("reason", ctx.Err().Error()))
			return nil
		}

		if err != nil {
			mc.logger.Error("consumer: error on queue pop call", zap.Duration("retry.in", delay), zap.Error(err))
			select {
			case <-ctx.Done():
				mc.logger.Info("consumer: waiting to retry: context is done: exit", zap.String("reason", ctx.Err().Error()))
				return nil
			case <-time.After(delay):
			}
			if delay *= 2; delay > mc.maxDelay {
				delay = mc.maxDelay
			}
			continue
		}
		delay = mc.minDelay

		switch qid {
		case BookCreatedQueue, BookUpdatedQueue:
			if err = mc.mirror.Put(ctx, book); err != nil {
				mc.logger.Error("consumer: failed to mirror book", zap.String("qid", qid), zap.Int64("book.id", book.ID), zap.Error(err))
			}
		case BookDeletedQueue:
			if err = mc.mirror.Remove(ctx, book.ID); err != nil {
				mc.logger.Error("consumer: failed to remove mirrored book", zap.Int64("book.id", book.ID), zap.Error(err))
			}
		default:
			mc.logger.Warn("consumer: received book on unknown queue id", zap.String("qid", qid), zap.Any("book", book))
		}
	}
}
