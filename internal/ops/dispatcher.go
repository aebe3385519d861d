package ops

import (
	"context"
	"time"

	"go.uber.org/zap"

	"trading-watchlist-backend/internal/models"
	"trading-watchlist-backend/internal/store"
)

// Emitter publishes derived operations back into the queues.
type Emitter interface {
	Emit(ctx context.Context, op models.Operation) error
}

// Handler applies one or more operation kinds to the shared store.
// Handle must be safe to abandon mid-flight: all of its store writes are
// single-record conditional updates, so a redelivered operation simply
// converges.
type Handler interface {
	Kinds() []models.OperationKind
	Handle(ctx context.Context, op models.Operation) error
}

// Result tells the queue consumer what to do with the delivery.
type Result int

const (
	// ResultApplied: effect applied, acknowledge.
	ResultApplied Result = iota
	// ResultNoop: duplicate or unmatched kind, acknowledge silently.
	ResultNoop
	// ResultDeadLetter: permanent failure, route to the dead-letter
	// topic and acknowledge.
	ResultDeadLetter
	// ResultRetry: transient failure, leave unacknowledged so the queue
	// redelivers.
	ResultRetry
)

func (r Result) String() string {
	switch r {
	case ResultApplied:
		return "applied"
	case ResultNoop:
		return "noop"
	case ResultDeadLetter:
		return "dead_letter"
	default:
		return "retry"
	}
}

// Recorder receives one observation per dispatched operation.
type Recorder interface {
	ObserveOperation(kind, result string, d time.Duration)
}

// Dispatcher routes deliveries to handlers and owns the idempotency and
// redelivery-bound bookkeeping.
type Dispatcher struct {
	store       store.StoreItf
	handlers    map[models.OperationKind]Handler
	logger      *zap.Logger
	maxAttempts int64
	budget      time.Duration
	recorder    Recorder
}

func NewDispatcher(st store.StoreItf, logger *zap.Logger, maxAttempts int64, budget time.Duration, rec Recorder) *Dispatcher {
	return &Dispatcher{
		store:       st,
		handlers:    make(map[models.OperationKind]Handler),
		logger:      logger,
		maxAttempts: maxAttempts,
		budget:      budget,
		recorder:    rec,
	}
}

// Register binds a handler to every kind it declares.
func (d *Dispatcher) Register(h Handler) {
	for _, k := range h.Kinds() {
		d.handlers[k] = h
	}
}

// Dispatch processes one delivered operation and reports what the
// consumer should do with it. It never returns an error for permanent
// failures; those are folded into ResultDeadLetter.
func (d *Dispatcher) Dispatch(ctx context.Context, op models.Operation) Result {
	start := time.Now()
	res := d.dispatch(ctx, op)
	if d.recorder != nil {
		d.recorder.ObserveOperation(string(op.Kind), res.String(), time.Since(start))
	}
	return res
}

func (d *Dispatcher) dispatch(ctx context.Context, op models.Operation) Result {
	if !op.Kind.Valid() {
		d.logger.Warn("unknown operation kind",
			zap.String("kind", string(op.Kind)),
			zap.String("operation_id", op.OperationID))
		return ResultDeadLetter
	}
	if op.DedupKey == "" {
		d.logger.Warn("operation without dedup key",
			zap.String("kind", string(op.Kind)),
			zap.String("operation_id", op.OperationID))
		return ResultDeadLetter
	}

	h, ok := d.handlers[op.Kind]
	if !ok {
		// Other handlers on the same queue own this kind.
		return ResultNoop
	}

	applied, err := d.store.IsApplied(ctx, op.DedupKey)
	if err != nil {
		d.logger.Error("idempotency check failed", zap.Error(err))
		return ResultRetry
	}
	if applied {
		d.logger.Debug("duplicate delivery",
			zap.String("kind", string(op.Kind)),
			zap.String("dedup_key", op.DedupKey))
		return ResultNoop
	}

	hctx, cancel := context.WithTimeout(ctx, d.budget)
	defer cancel()

	if err := h.Handle(hctx, op); err != nil {
		return d.onFailure(ctx, op, err)
	}

	if err := d.store.MarkApplied(ctx, op.DedupKey, op.Kind); err != nil {
		// The effect landed but the mark did not. Redelivery is safe:
		// every handler effect is conditional, so leave it unacked.
		d.logger.Error("mark applied failed", zap.Error(err))
		return ResultRetry
	}
	return ResultApplied
}

func (d *Dispatcher) onFailure(ctx context.Context, op models.Operation, err error) Result {
	kind := Classify(err)
	switch kind {
	case FailureValidation, FailureConstraint:
		d.logger.Warn("operation dead-lettered",
			zap.String("kind", string(op.Kind)),
			zap.String("failure", kind.String()),
			zap.String("operation_id", op.OperationID),
			zap.Error(err))
		return ResultDeadLetter
	default:
		attempts, aerr := d.store.IncAttempts(ctx, op.DedupKey)
		if aerr != nil {
			d.logger.Error("attempt count failed", zap.Error(aerr))
			return ResultRetry
		}
		if attempts >= d.maxAttempts {
			d.logger.Error("max redeliveries exceeded",
				zap.String("kind", string(op.Kind)),
				zap.Int64("attempts", attempts),
				zap.Error(err))
			return ResultDeadLetter
		}
		d.logger.Warn("transient failure, redelivering",
			zap.String("kind", string(op.Kind)),
			zap.Int64("attempts", attempts),
			zap.Error(err))
		return ResultRetry
	}
}
