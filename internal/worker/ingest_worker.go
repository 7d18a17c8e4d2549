package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"studynotes/internal/metrics"
	"studynotes/internal/model"
	"studynotes/internal/pipeline"
	"studynotes/internal/platform/rabbitmq"
)

type Runner interface {
	Run(ctx context.Context, in pipeline.Input) (pipeline.Result, error)
}

type StatusStore interface {
	Get(ctx context.Context, runID string) (*model.RunStatus, bool, error)
	Set(ctx context.Context, status *model.RunStatus) error
}

type RunObserver interface {
	ObserveRun(outcome string, elapsed time.Duration)
}

// IngestWorker consumes ingest jobs and drives one pipeline run per job.
type IngestWorker struct {
	conn      *amqp.Connection
	runner    Runner
	statuses  StatusStore
	observer  RunObserver
	logger    *zap.Logger
	queueName string
	prefetch  int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewIngestWorker(conn *amqp.Connection, runner Runner, statuses StatusStore, observer RunObserver, logger *zap.Logger, queueName string, prefetch int) *IngestWorker {
	if prefetch <= 0 {
		prefetch = 1
	}
	return &IngestWorker{
		conn:      conn,
		runner:    runner,
		statuses:  statuses,
		observer:  observer,
		logger:    logger,
		queueName: queueName,
		prefetch:  prefetch,
	}
}

// Start opens a channel and runs up to prefetch jobs concurrently.
func (w *IngestWorker) Start(ctx context.Context) error {
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
	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}
	if err := ch.Qos(w.prefetch, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
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

	var consumers sync.WaitGroup
	for i := 0; i < w.prefetch; i++ {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			w.consume(workerCtx, deliveries)
		}()
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		consumers.Wait()
		_ = ch.Close()
	}()

	return nil
}

func (w *IngestWorker) consume(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			w.settle(ctx, d)
		}
	}
}

// settle handles one delivery and acks or nacks it. Runs cut short by worker
// shutdown are requeued; any other error drops the message.
func (w *IngestWorker) settle(ctx context.Context, d amqp.Delivery) {
	if err := w.Handle(ctx, d.Body); err != nil {
		_ = d.Nack(false, interrupted(ctx, err))
		return
	}
	_ = d.Ack(false)
}

// interrupted reports whether err comes from ctx being cancelled rather
// than from the run itself.
func interrupted(ctx context.Context, err error) bool {
	return ctx.Err() != nil && errors.Is(err, context.Canceled)
}

// Handle processes one message body. A nil return means the run reached a
// terminal result, successful or not, and the message can be acked.
func (w *IngestWorker) Handle(ctx context.Context, body []byte) error {
	var job model.IngestJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.logger.Error("decode ingest job failed", zap.Error(err))
		return fmt.Errorf("decode ingest job failed: %w", err)
	}
	log := w.logger.With(zap.String("run_id", job.RunID), zap.String("file_id", job.FileID))

	status := w.loadStatus(ctx, job)
	now := time.Now()
	status.Status = model.RunRunning
	status.StartedAt = &now
	status.UpdatedAt = &now
	w.saveStatus(ctx, log, status)

	res, err := w.runner.Run(ctx, pipeline.Input{
		FileID:   job.FileID,
		FileName: job.FileName,
		Username: job.Username,
	})
	elapsed := time.Since(now)
	end := time.Now()
	status.UpdatedAt = &end
	status.CompletedAt = &end

	if interrupted(ctx, err) {
		status.Status = model.RunQueued
		status.StartedAt = nil
		status.CompletedAt = nil
		w.saveStatus(ctx, log, status)
		log.Warn("ingest run interrupted, job will be requeued", zap.Error(err))
		return err
	}
	if err != nil {
		msg := err.Error()
		status.Status = model.RunFailed
		status.Error = &msg
		w.saveStatus(ctx, log, status)
		w.observe(metrics.OutcomeError, elapsed)
		log.Error("ingest run failed", zap.Error(err))
		return err
	}

	status.Status = model.RunCompleted
	status.Result = &model.RunResult{Success: res.Success, Error: res.Error}
	w.saveStatus(ctx, log, status)
	if res.Success {
		w.observe(metrics.OutcomeCompleted, elapsed)
	} else {
		w.observe(metrics.OutcomeFailed, elapsed)
	}
	return nil
}

func (w *IngestWorker) loadStatus(ctx context.Context, job model.IngestJob) *model.RunStatus {
	if job.RunID != "" {
		if existing, ok, err := w.statuses.Get(ctx, job.RunID); err == nil && ok {
			return existing
		}
	}
	return &model.RunStatus{
		RunID:    job.RunID,
		Username: job.Username,
		FileID:   job.FileID,
		FileName: job.FileName,
	}
}

// saveStatus logs and otherwise ignores store failures. The write outlives
// ctx so a run interrupted by shutdown still records its final state.
func (w *IngestWorker) saveStatus(ctx context.Context, log *zap.Logger, status *model.RunStatus) {
	if status.RunID == "" {
		return
	}
	if err := w.statuses.Set(context.WithoutCancel(ctx), status); err != nil {
		log.Warn("save run status failed", zap.Error(err))
	}
}

func (w *IngestWorker) observe(outcome string, elapsed time.Duration) {
	if w.observer != nil {
		w.observer.ObserveRun(outcome, elapsed)
	}
}

func (w *IngestWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
