package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"holistica/internal/cache"
	"holistica/internal/model"
)

// HistoryRecordWorker consumes answered questions from the history queue and
// appends them to the redis-backed search history. It is the only writer of
// history state.
type HistoryRecordWorker struct {
	conn      *amqp.Connection
	history   *cache.SearchHistory
	queueName string
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewHistoryRecordWorker(conn *amqp.Connection, history *cache.SearchHistory, queueName string, logger *zap.Logger) *HistoryRecordWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryRecordWorker{
		conn:      conn,
		history:   history,
		queueName: queueName,
		logger:    logger,
	}
}

func (w *HistoryRecordWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var record model.SearchRecord
				if err := json.Unmarshal(d.Body, &record); err != nil {
					w.logger.Warn("decode search record failed", zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}

				if err := w.history.Add(workerCtx, record); err != nil {
					w.logger.Warn("store search record failed", zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *HistoryRecordWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
