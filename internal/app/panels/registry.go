package panels

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/voyplan/voyplan/internal/app/observability/metrics"
)

// UpdateMode controls how an incoming payload combines with the panel's
// current list. Only the social-post registry honors prepend/append;
// everything else is replace-only.
type UpdateMode string

const (
	ModeReplace UpdateMode = "replace"
	ModePrepend UpdateMode = "prepend"
	ModeAppend  UpdateMode = "append"
)

// Handler applies a payload to the mounted panel instance.
type Handler[T any] func(ctx context.Context, payload T, mode UpdateMode) error

type queuedUpdate[T any] struct {
	ctx     context.Context
	payload T
	mode    UpdateMode
}

// Registry is the single externally-callable update entry point of one
// panel. Updates requested while no handler is attached are buffered in FIFO
// order and drained sequentially on the next attach, before live calls are
// applied. Live updates go through the same FIFO work queue, so per-registry
// ordering is total; a detach during an in-flight update downgrades the
// apply to a no-op.
type Registry[T any] struct {
	name       string
	applyDelay time.Duration
	logger     *zap.Logger

	mu       sync.Mutex
	handler  Handler[T]
	pending  []queuedUpdate[T]
	work     []queuedUpdate[T]
	draining bool
}

// NewRegistry creates a registry with the given simulated apply latency.
func NewRegistry[T any](name string, applyDelay time.Duration, logger *zap.Logger) *Registry[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry[T]{
		name:       name,
		applyDelay: applyDelay,
		logger:     logger.With(zap.String("registry", name)),
	}
}

// Attach registers the live handler and drains any pending updates, in the
// order they were requested, ahead of new live calls.
func (r *Registry[T]) Attach(h Handler[T]) {
	r.mu.Lock()
	r.handler = h
	if len(r.pending) > 0 {
		r.logger.Info("Draining pending panel updates", zap.Int("queued", len(r.pending)))
		r.work = append(r.work, r.pending...)
		r.pending = nil
	}
	r.startDrainLocked()
	r.mu.Unlock()
}

// Detach clears the handler reference. Further update requests re-enter the
// pending queue; in-flight applies become no-ops.
func (r *Registry[T]) Detach() {
	r.mu.Lock()
	r.handler = nil
	r.mu.Unlock()
	r.logger.Debug("Panel handler detached")
}

// RequestUpdate is callable at any time, including before the panel has
// mounted. It never blocks on the apply itself.
func (r *Registry[T]) RequestUpdate(ctx context.Context, payload T, mode UpdateMode) {
	if mode == "" {
		mode = ModeReplace
	}
	if ctx == nil {
		ctx = context.Background()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item := queuedUpdate[T]{ctx: ctx, payload: payload, mode: mode}
	m := metrics.Get()
	m.PanelUpdatesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("panel", r.name)))
	if r.handler == nil {
		r.pending = append(r.pending, item)
		m.PendingQueueDepth.Record(ctx, int64(len(r.pending)),
			metric.WithAttributes(attribute.String("panel", r.name)))
		r.logger.Debug("No live handler, update queued",
			zap.String("mode", string(mode)),
			zap.Int("queue_depth", len(r.pending)))
		return
	}

	r.work = append(r.work, item)
	r.startDrainLocked()
}

// PendingLen reports how many updates are waiting for a mount.
func (r *Registry[T]) PendingLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

func (r *Registry[T]) startDrainLocked() {
	if r.draining || len(r.work) == 0 {
		return
	}
	r.draining = true
	go r.drain()
}

// drain applies queued work one entry at a time, awaiting each simulated
// delay/apply cycle before starting the next.
func (r *Registry[T]) drain() {
	for {
		r.mu.Lock()
		if len(r.work) == 0 {
			r.draining = false
			r.mu.Unlock()
			return
		}
		item := r.work[0]
		r.work = r.work[1:]
		r.mu.Unlock()

		// Deliberate short latency before applying, for a consistent
		// loading signal in the UI.
		time.Sleep(r.applyDelay)

		r.mu.Lock()
		h := r.handler
		r.mu.Unlock()
		if h == nil {
			r.logger.Debug("Panel unmounted mid-flight, dropping update",
				zap.String("mode", string(item.mode)))
			continue
		}

		r.apply(h, item)
	}
}

func (r *Registry[T]) apply(h Handler[T], item queuedUpdate[T]) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Panel handler panicked", zap.Any("panic", rec))
		}
	}()
	if err := h(item.ctx, item.payload, item.mode); err != nil {
		r.logger.Warn("Panel handler failed", zap.Error(err))
	}
}
