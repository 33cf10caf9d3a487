package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/voxshell/backend/internal/infrastructure/logging"
	"github.com/voxshell/backend/internal/infrastructure/monitoring"
)

// ErrNoTransport reports that no content surface is attached to the
// router, so an envelope that must reach the host cannot be delivered.
var ErrNoTransport = errors.New("no bridge transport attached")

// HandlerFunc processes one inbound envelope. A returned error is
// surfaced to the content side as an alert envelope; it never fails the
// transport.
type HandlerFunc func(ctx context.Context, env Envelope) error

// Transport delivers outbound envelopes to one attached content surface.
type Transport interface {
	WriteEnvelope(env Envelope) error
}

// Router dispatches inbound envelopes to registered handlers and
// broadcasts outbound envelopes to attached transports.
type Router struct {
	mu         sync.RWMutex
	handlers   map[string]HandlerFunc
	transports map[Transport]struct{}

	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewRouter creates a router. metrics may be nil.
func NewRouter(logger *logging.Logger, metrics *monitoring.Metrics) *Router {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Router{
		handlers:   make(map[string]HandlerFunc),
		transports: make(map[Transport]struct{}),
		logger:     logger.Named("bridge"),
		metrics:    metrics,
	}
}

// Register binds a handler to an envelope type. Later registrations for
// the same type replace earlier ones.
func (r *Router) Register(msgType string, h HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[msgType] = h
}

// Attach adds a transport to the outbound broadcast set.
func (r *Router) Attach(t Transport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transports[t] = struct{}{}
}

// Detach removes a transport.
func (r *Router) Detach(t Transport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.transports, t)
}

// HandleRaw parses a wire message and dispatches it.
func (r *Router) HandleRaw(ctx context.Context, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		r.logger.Warn("malformed bridge message dropped", zap.Error(err))
		return
	}
	r.Handle(ctx, env)
}

// Handle dispatches one inbound envelope. Unknown types are logged and
// dropped; handler errors become alert envelopes. Neither is fatal.
func (r *Router) Handle(ctx context.Context, env Envelope) {
	if r.metrics != nil {
		r.metrics.RecordBridgeMessage("inbound", env.Type)
	}

	r.mu.RLock()
	h, ok := r.handlers[env.Type]
	r.mu.RUnlock()

	if !ok {
		r.logger.Warn("unknown bridge message type dropped", zap.String("type", env.Type))
		return
	}

	if err := h(ctx, env); err != nil {
		r.logger.Error("bridge handler failed",
			zap.String("type", env.Type),
			zap.Error(err),
		)
		r.Send(NewEnvelope("alert", map[string]interface{}{
			"source":  env.Type,
			"message": err.Error(),
		}))
	}
}

// Send broadcasts an envelope to every attached transport. Delivery is
// best-effort: a failing transport is logged and skipped, never retried.
func (r *Router) Send(env Envelope) {
	_ = r.broadcast(env)
}

// Deliver broadcasts like Send but reports failure when the envelope
// reached no one: zero attached transports, or every write rejected.
// Commands the host must act on go through this instead of Send.
func (r *Router) Deliver(env Envelope) error {
	return r.broadcast(env)
}

func (r *Router) broadcast(env Envelope) error {
	if r.metrics != nil {
		r.metrics.RecordBridgeMessage("outbound", env.Type)
	}

	r.mu.RLock()
	transports := make([]Transport, 0, len(r.transports))
	for t := range r.transports {
		transports = append(transports, t)
	}
	r.mu.RUnlock()

	if len(transports) == 0 {
		return ErrNoTransport
	}

	delivered := 0
	for _, t := range transports {
		if err := t.WriteEnvelope(env); err != nil {
			r.logger.Warn("bridge send failed", zap.String("type", env.Type), zap.Error(err))
			continue
		}
		delivered++
	}
	if delivered == 0 {
		return fmt.Errorf("bridge delivery of %q rejected by all %d transports", env.Type, len(transports))
	}
	return nil
}
