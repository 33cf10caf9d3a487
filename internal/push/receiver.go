package push

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/voxshell/backend/internal/call/filter"
	"github.com/voxshell/backend/internal/infrastructure/logging"
	"github.com/voxshell/backend/internal/shared/types"
	"github.com/voxshell/backend/internal/storage"
)

// Submitter accepts normalized call signals. Implemented by the call
// controller.
type Submitter interface {
	Submit(ctx context.Context, sig types.PushSignal) filter.Decision
}

// Registrar subscribes the device token with the push backend. Outbound
// HTTP lives behind this interface; the shell host supplies it.
type Registrar interface {
	Register(ctx context.Context, deviceID, token string) error
}

// Receiver is the funnel for the three platform delivery channels.
type Receiver struct {
	submitter Submitter
	store     *storage.Store
	registrar Registrar
	logger    *logging.Logger
}

// NewReceiver creates a receiver. registrar may be nil when the host
// handles subscription itself.
func NewReceiver(submitter Submitter, store *storage.Store, registrar Registrar, logger *logging.Logger) *Receiver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Receiver{
		submitter: submitter,
		store:     store,
		registrar: registrar,
		logger:    logger.Named("push"),
	}
}

// HandleForeground processes a delivery from the live event stream.
func (r *Receiver) HandleForeground(ctx context.Context, raw []byte) (filter.Decision, error) {
	return r.handle(ctx, raw, types.OriginForeground)
}

// HandleBackground processes a data-only delivery to a backgrounded
// process.
func (r *Receiver) HandleBackground(ctx context.Context, raw []byte) (filter.Decision, error) {
	return r.handle(ctx, raw, types.OriginBackground)
}

// HandleWake processes a delivery that woke a killed process through the
// registered background task.
func (r *Receiver) HandleWake(ctx context.Context, raw []byte) (filter.Decision, error) {
	return r.handle(ctx, raw, types.OriginWake)
}

func (r *Receiver) handle(ctx context.Context, raw []byte, origin types.SignalOrigin) (filter.Decision, error) {
	sig, err := ParseSignal(raw, origin)
	if err != nil {
		r.logger.Warn("push payload rejected", zap.String("origin", string(origin)), zap.Error(err))
		return filter.Decision{}, err
	}

	dec := r.submitter.Submit(ctx, sig)
	r.logger.Info("push signal processed",
		zap.String("origin", string(origin)),
		zap.String("call_id", sig.CallID),
		zap.Bool("admitted", dec.Admitted),
		zap.String("reason", string(dec.Reason)),
	)
	return dec, nil
}

// RefreshToken persists a new device push token and re-registers it with
// the push backend when a registrar is configured.
func (r *Receiver) RefreshToken(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("empty push token")
	}
	if err := r.store.SetPushToken(token); err != nil {
		return fmt.Errorf("persist push token: %w", err)
	}
	if r.registrar == nil {
		return nil
	}
	if err := r.registrar.Register(ctx, r.store.DeviceID(), token); err != nil {
		return fmt.Errorf("register push token: %w", err)
	}
	return nil
}
