package filter

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/voxshell/backend/internal/infrastructure/logging"
	"github.com/voxshell/backend/internal/shared/types"
)

// Reason explains why a signal was rejected
type Reason string

const (
	ReasonDuplicate        Reason = "duplicate"
	ReasonInvalidTimestamp Reason = "invalid_timestamp"
	ReasonStale            Reason = "stale"

	// ReasonBusy is issued by the session guard downstream of the
	// filter, when a signal is admitted while a session is already live.
	ReasonBusy Reason = "busy"
)

// Decision is the outcome of admitting a push signal
type Decision struct {
	Admitted bool
	Reason   Reason
}

// Admitted is the decision for an accepted signal
func admitted() Decision { return Decision{Admitted: true} }

func rejected(r Reason) Decision { return Decision{Reason: r} }

// Store persists the dedup window across restarts
type Store interface {
	DedupRecords() []types.DedupRecord
	SetDedupRecords([]types.DedupRecord) error
}

// Config holds filter tunables
type Config struct {
	Capacity       int
	StaleThreshold time.Duration

	// Clock overrides time.Now, for tests
	Clock func() time.Time
}

// Filter is the message identity and freshness filter
type Filter struct {
	mu     sync.Mutex
	store  Store
	window []types.DedupRecord
	cfg    Config
	logger *logging.Logger
}

// New creates a filter, loading the persisted dedup window from store.
func New(store Store, cfg Config, logger *logging.Logger) *Filter {
	if cfg.Capacity < 1 {
		cfg.Capacity = 5
	}
	if cfg.StaleThreshold <= 0 {
		cfg.StaleThreshold = 5 * time.Minute
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	f := &Filter{
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
	if store != nil {
		f.window = store.DedupRecords()
	}
	return f
}

// Admit judges a signal and, when it passes, registers its message
// identifier in the dedup window before returning. The check and the
// registration are one atomic step: concurrent redundant deliveries of
// the same message cannot both be admitted.
func (f *Filter) Admit(sig types.PushSignal) Decision {
	f.mu.Lock()
	defer f.mu.Unlock()

	if sig.MessageID != "" && f.seen(sig.MessageID) {
		f.logger.Debug("signal rejected",
			zap.String("message_id", sig.MessageID),
			zap.String("reason", string(ReasonDuplicate)),
		)
		return rejected(ReasonDuplicate)
	}

	if sig.SentAt.IsZero() {
		f.logger.Debug("signal rejected",
			zap.String("call_id", sig.CallID),
			zap.String("reason", string(ReasonInvalidTimestamp)),
		)
		return rejected(ReasonInvalidTimestamp)
	}

	now := f.cfg.Clock()
	if now.Sub(sig.SentAt) > f.cfg.StaleThreshold {
		f.logger.Debug("signal rejected",
			zap.String("call_id", sig.CallID),
			zap.String("reason", string(ReasonStale)),
			zap.Time("sent_at", sig.SentAt),
		)
		return rejected(ReasonStale)
	}

	if sig.MessageID != "" {
		f.register(sig.MessageID, now)
	}

	return admitted()
}

// Window returns a copy of the current dedup window, oldest first.
func (f *Filter) Window() []types.DedupRecord {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]types.DedupRecord, len(f.window))
	copy(out, f.window)
	return out
}

// seen reports whether a message id is in the window. Callers hold f.mu.
func (f *Filter) seen(messageID string) bool {
	for _, rec := range f.window {
		if rec.MessageID == messageID {
			return true
		}
	}
	return false
}

// register appends a record and evicts the oldest beyond capacity.
// Callers hold f.mu.
func (f *Filter) register(messageID string, now time.Time) {
	f.window = append(f.window, types.DedupRecord{MessageID: messageID, SeenAt: now})
	if excess := len(f.window) - f.cfg.Capacity; excess > 0 {
		f.window = f.window[excess:]
	}

	if f.store != nil {
		// Persistence failure must not revoke an admission that already
		// happened; the in-memory window stays authoritative.
		if err := f.store.SetDedupRecords(f.window); err != nil {
			f.logger.Warn("failed to persist dedup window", zap.Error(err))
		}
	}
}
