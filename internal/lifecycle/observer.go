package lifecycle

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/voxshell/backend/internal/infrastructure/logging"
)

// State represents the process-wide application lifecycle state
type State string

const (
	StateActive     State = "active"
	StateBackground State = "background"
	// StateRelaunched is the state of a freshly launched process before
	// the host reports anything. Observationally it becomes Active like
	// any background->active transition, but the cold-start flag rides
	// along on the transition.
	StateRelaunched State = "relaunched"
)

// Transition is one lifecycle state change
type Transition struct {
	From      State
	To        State
	ColdStart bool
	At        time.Time
}

const subscriberBuffer = 8

// Observer receives lifecycle reports from the host shell and fans them
// out to subscribers.
type Observer struct {
	mu     sync.Mutex
	state  State
	subs   []chan Transition
	logger *logging.Logger
}

// New creates an observer. A new process starts as Relaunched.
func New(logger *logging.Logger) *Observer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Observer{
		state:  StateRelaunched,
		logger: logger.Named("lifecycle"),
	}
}

// Current returns the current lifecycle state.
func (o *Observer) Current() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Subscribe returns a channel of future transitions. Delivery is
// best-effort: a subscriber that stops draining loses transitions rather
// than blocking the reporter.
func (o *Observer) Subscribe() <-chan Transition {
	o.mu.Lock()
	defer o.mu.Unlock()

	ch := make(chan Transition, subscriberBuffer)
	o.subs = append(o.subs, ch)
	return ch
}

// Report records a transition reported by the host shell. Reporting the
// current state again is a no-op.
func (o *Observer) Report(to State) {
	o.mu.Lock()
	if o.state == to {
		o.mu.Unlock()
		return
	}

	tr := Transition{
		From:      o.state,
		To:        to,
		ColdStart: o.state == StateRelaunched && to == StateActive,
		At:        time.Now(),
	}
	o.state = to
	subs := make([]chan Transition, len(o.subs))
	copy(subs, o.subs)
	o.mu.Unlock()

	o.logger.Debug("lifecycle transition",
		zap.String("from", string(tr.From)),
		zap.String("to", string(tr.To)),
		zap.Bool("cold_start", tr.ColdStart),
	)

	for _, ch := range subs {
		select {
		case ch <- tr:
		default:
		}
	}
}
