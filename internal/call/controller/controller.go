package controller

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/voxshell/backend/internal/call/filter"
	"github.com/voxshell/backend/internal/call/ui"
	"github.com/voxshell/backend/internal/infrastructure/config"
	"github.com/voxshell/backend/internal/infrastructure/logging"
	"github.com/voxshell/backend/internal/infrastructure/monitoring"
	"github.com/voxshell/backend/internal/lifecycle"
	"github.com/voxshell/backend/internal/shared/id"
	"github.com/voxshell/backend/internal/shared/types"
)

// Foregrounder brings the host application to the foreground.
type Foregrounder interface {
	RequestForeground(ctx context.Context) error
}

// Notifier observes sessions reaching Terminal. The server wires this to
// the bridge so the embedded content can clear call notifications.
type Notifier interface {
	SessionEnded(info SessionInfo, outcome types.CallOutcome)
}

// Config holds controller tunables.
type Config struct {
	RingTimeout        time.Duration
	AnswerResolveDelay time.Duration
	BusyPolicy         config.BusyPolicy
}

const mailboxBuffer = 32

type message interface{}

type submitMsg struct {
	sig   types.PushSignal
	reply chan filter.Decision
}

type endMsg struct {
	callID string
}

type ringTimeoutMsg struct {
	callID string
}

type resolveDueMsg struct {
	callID string
}

type snapshotMsg struct {
	reply chan *SessionInfo
}

// Controller orchestrates call sessions. See the package doc for the
// state graph and the serialization model.
type Controller struct {
	cfg        Config
	filter     *filter.Filter
	adapter    ui.Adapter
	observer   *lifecycle.Observer
	foreground Foregrounder
	notifier   Notifier
	metrics    *monitoring.Metrics
	logger     *logging.Logger

	registry *Registry
	mailbox  chan message
	done     chan struct{}
}

// New creates a controller. foreground is required; notifier and metrics
// may be nil.
func New(cfg Config, f *filter.Filter, adapter ui.Adapter, observer *lifecycle.Observer, foreground Foregrounder, opts ...Option) *Controller {
	if cfg.RingTimeout <= 0 {
		cfg.RingTimeout = 60 * time.Second
	}
	if cfg.AnswerResolveDelay <= 0 {
		cfg.AnswerResolveDelay = 250 * time.Millisecond
	}
	if cfg.BusyPolicy == "" {
		cfg.BusyPolicy = config.BusyReject
	}

	c := &Controller{
		cfg:        cfg,
		filter:     f,
		adapter:    adapter,
		observer:   observer,
		foreground: foreground,
		logger:     logging.NewNop(),
		registry:   NewRegistry(),
		mailbox:    make(chan message, mailboxBuffer),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("call")
	return c
}

// Option configures optional controller collaborators.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithNotifier sets the session-ended notifier.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// Start launches the actor goroutine. It runs until ctx is cancelled;
// cancellation tears down any live session.
func (c *Controller) Start(ctx context.Context) {
	go c.run(ctx)
}

// Done is closed once the actor goroutine has exited.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Submit runs a push signal through the freshness filter and, when it is
// admitted and no session is live, presents the call. The decision is
// computed on the actor goroutine so admission, the session guard, and
// presentation are one serialized step.
func (c *Controller) Submit(ctx context.Context, sig types.PushSignal) filter.Decision {
	reply := make(chan filter.Decision, 1)
	select {
	case c.mailbox <- submitMsg{sig: sig, reply: reply}:
	case <-c.done:
		return filter.Decision{}
	case <-ctx.Done():
		return filter.Decision{}
	}

	select {
	case dec := <-reply:
		return dec
	case <-c.done:
		return filter.Decision{}
	case <-ctx.Done():
		return filter.Decision{}
	}
}

// End programmatically cancels a session (remote hang-up before answer).
func (c *Controller) End(ctx context.Context, callID string) {
	c.post(ctx, endMsg{callID: callID})
}

// Snapshot returns the live session view, nil when idle.
func (c *Controller) Snapshot(ctx context.Context) *SessionInfo {
	reply := make(chan *SessionInfo, 1)
	select {
	case c.mailbox <- snapshotMsg{reply: reply}:
	case <-c.done:
		return nil
	case <-ctx.Done():
		return nil
	}

	select {
	case info := <-reply:
		return info
	case <-c.done:
		return nil
	case <-ctx.Done():
		return nil
	}
}

func (c *Controller) post(ctx context.Context, m message) {
	select {
	case c.mailbox <- m:
	case <-c.done:
	case <-ctx.Done():
	}
}

// postFromTimer feeds timer callbacks back into the mailbox without
// blocking a fired timer on a stopped controller.
func (c *Controller) postFromTimer(m message) {
	select {
	case c.mailbox <- m:
	case <-c.done:
	}
}

func (c *Controller) run(ctx context.Context) {
	defer close(c.done)

	events := c.adapter.Events()
	transitions := c.observer.Subscribe()

	for {
		select {
		case <-ctx.Done():
			// The run context is gone; tear down with a fresh one so the
			// platform still gets the end command.
			c.shutdown(context.Background())
			return
		case m := <-c.mailbox:
			c.handleMessage(ctx, m)
		case ev := <-events:
			c.handleEvent(ctx, ev)
		case tr := <-transitions:
			c.handleLifecycle(ctx, tr)
		}
	}
}

func (c *Controller) handleMessage(ctx context.Context, m message) {
	switch msg := m.(type) {
	case submitMsg:
		msg.reply <- c.handleSubmit(ctx, msg.sig)
	case endMsg:
		c.handleEnd(ctx, msg.callID)
	case ringTimeoutMsg:
		c.handleRingTimeout(ctx, msg.callID)
	case resolveDueMsg:
		c.handleResolveDue(ctx, msg.callID)
	case snapshotMsg:
		if live := c.registry.Live(); live != nil {
			info := live.info()
			msg.reply <- &info
		} else {
			msg.reply <- nil
		}
	}
}

func (c *Controller) handleSubmit(ctx context.Context, sig types.PushSignal) filter.Decision {
	dec := c.filter.Admit(sig)
	if !dec.Admitted {
		c.recordSignal(sig.Origin, string(dec.Reason))
		return dec
	}

	if live := c.registry.Live(); live != nil {
		if c.cfg.BusyPolicy == config.BusyReject {
			c.logger.Info("signal rejected, session live",
				zap.String("call_id", sig.CallID),
				zap.String("live_call_id", live.CallID),
			)
			c.recordSignal(sig.Origin, string(filter.ReasonBusy))
			return filter.Decision{Reason: filter.ReasonBusy}
		}

		// Supersede: the newer call wins.
		c.resolveUI(ctx, live.CallID, ui.ResolveSuperseded)
		c.terminate(live, types.OutcomeSuperseded)
	}

	c.recordSignal(sig.Origin, "admitted")

	if err := c.adapter.Present(ctx, sig.CallID, sig.CallerName, sig.HasVideo); err != nil {
		// No UI was shown; there is no session to keep.
		c.logger.Error("call presentation failed",
			zap.String("call_id", sig.CallID),
			zap.Error(err),
		)
		if c.metrics != nil {
			c.metrics.RecordAdapterFailure("present")
			c.metrics.RecordSessionOutcome(string(types.OutcomePresentFailed))
		}
		return dec
	}

	now := time.Now()
	sess := &Session{
		ID:           id.NewSessionID(),
		CallID:       sig.CallID,
		CallerName:   sig.CallerName,
		HasVideo:     sig.HasVideo,
		State:        types.CallStateRinging,
		Origin:       sig.Origin,
		CreatedAt:    now,
		ringingSince: now,
	}
	callID := sig.CallID
	sess.ringTimer = time.AfterFunc(c.cfg.RingTimeout, func() {
		c.postFromTimer(ringTimeoutMsg{callID: callID})
	})
	c.registry.Claim(sess)
	if c.metrics != nil {
		c.metrics.SetSessionActive(true)
	}

	c.logger.Info("call ringing",
		zap.String("call_id", sig.CallID),
		zap.String("caller", sig.CallerName),
		zap.String("origin", string(sig.Origin)),
	)
	return dec
}

func (c *Controller) handleEvent(ctx context.Context, ev ui.Event) {
	sess := c.registry.Live()
	if sess == nil || sess.CallID != ev.CallID {
		c.logger.Debug("event for unknown or terminal call, ignoring",
			zap.String("kind", string(ev.Kind)),
			zap.String("call_id", ev.CallID),
		)
		return
	}

	switch ev.Kind {
	case ui.EventAnswered:
		c.handleAnswered(ctx, sess)
	case ui.EventEnded:
		// The platform already tore the UI down; no resolve needed.
		c.terminate(sess, types.OutcomeRemoteEnded)
	case ui.EventMuted, ui.EventHeld, ui.EventDTMF:
		// Accepted but outside this subsystem's state graph.
		c.logger.Debug("ignoring call event",
			zap.String("kind", string(ev.Kind)),
			zap.String("call_id", ev.CallID),
		)
	}
}

func (c *Controller) handleAnswered(ctx context.Context, sess *Session) {
	if sess.State != types.CallStateRinging {
		c.logger.Debug("answer event outside Ringing, ignoring",
			zap.String("call_id", sess.CallID),
			zap.String("state", string(sess.State)),
		)
		return
	}

	sess.State = types.CallStateAnswered
	if sess.ringTimer != nil {
		sess.ringTimer.Stop()
		sess.ringTimer = nil
	}
	if c.metrics != nil {
		c.metrics.RecordRingDuration(time.Since(sess.ringingSince))
	}

	if err := c.foreground.RequestForeground(ctx); err != nil {
		c.logger.Warn("foreground request failed",
			zap.String("call_id", sess.CallID),
			zap.Error(err),
		)
	}

	// Resolving immediately can race the platform's foreground promotion
	// animation and lose the promotion, hence the delay.
	callID := sess.CallID
	sess.resolveTimer = time.AfterFunc(c.cfg.AnswerResolveDelay, func() {
		c.postFromTimer(resolveDueMsg{callID: callID})
	})

	c.logger.Info("call answered", zap.String("call_id", sess.CallID))
}

func (c *Controller) handleResolveDue(ctx context.Context, callID string) {
	sess := c.registry.Live()
	if sess == nil || sess.CallID != callID || sess.State != types.CallStateAnswered {
		return
	}

	sess.State = types.CallStateEnding
	c.resolveUI(ctx, callID, ui.ResolveAnswered)
	c.terminate(sess, types.OutcomeAnswered)
}

func (c *Controller) handleRingTimeout(ctx context.Context, callID string) {
	sess := c.registry.Live()
	if sess == nil || sess.CallID != callID || sess.State != types.CallStateRinging {
		// The session already left Ringing; the timer lost the race.
		return
	}

	c.resolveUI(ctx, callID, ui.ResolveTimeout)
	c.terminate(sess, types.OutcomeTimeout)
	c.logger.Info("call timed out", zap.String("call_id", callID))
}

func (c *Controller) handleEnd(ctx context.Context, callID string) {
	sess := c.registry.Live()
	if sess == nil || sess.CallID != callID {
		return
	}

	c.resolveUI(ctx, callID, ui.ResolveRemoteEnd)
	c.terminate(sess, types.OutcomeRemoteEnded)
}

// handleLifecycle reconciles local state when the app becomes active: a
// live session at that point means the user is already in the app, so
// the presented call has served its purpose. This compensates for
// answer/end events lost while backgrounded or killed.
func (c *Controller) handleLifecycle(ctx context.Context, tr lifecycle.Transition) {
	if tr.To != lifecycle.StateActive {
		return
	}

	sess := c.registry.Live()
	if sess == nil {
		return
	}

	eager := tr.ColdStart || sess.Origin == types.OriginWake
	reason := ui.ResolveAnswered
	if sess.State == types.CallStateRinging {
		reason = ui.ResolveRemoteEnd
	}

	c.logger.Info("reconciling call on foreground transition",
		zap.String("call_id", sess.CallID),
		zap.String("state", string(sess.State)),
		zap.Bool("eager", eager),
	)

	c.resolveUI(ctx, sess.CallID, reason)
	if eager {
		// Wake-path event delivery is unreliable; the platform may still
		// show residue for a call id it no longer recognizes.
		c.resolveUI(ctx, sess.CallID, reason)
	}
	c.terminate(sess, types.OutcomeReconciled)
}

// resolveUI ends the platform presentation, tolerating total failure:
// local state must never get stuck on platform-side truth.
func (c *Controller) resolveUI(ctx context.Context, callID string, reason ui.ResolveReason) {
	if err := c.adapter.Resolve(ctx, callID, reason); err != nil {
		c.logger.Error("call resolution failed, forcing local terminal state",
			zap.String("call_id", callID),
			zap.Error(err),
		)
		if c.metrics != nil {
			c.metrics.RecordAdapterFailure("resolve")
		}
	}
}

// terminate moves a session to Terminal. Idempotent: terminating an
// already-terminal session is a no-op.
func (c *Controller) terminate(sess *Session, outcome types.CallOutcome) {
	if sess.State.Terminal() {
		return
	}

	sess.stopTimers()
	sess.State = types.CallStateTerminal
	info := sess.info()
	c.registry.Release()

	if c.metrics != nil {
		c.metrics.SetSessionActive(false)
		c.metrics.RecordSessionOutcome(string(outcome))
	}
	if c.notifier != nil {
		c.notifier.SessionEnded(info, outcome)
	}

	c.logger.Info("call terminal",
		zap.String("call_id", info.CallID),
		zap.String("outcome", string(outcome)),
	)
}

func (c *Controller) shutdown(ctx context.Context) {
	if sess := c.registry.Live(); sess != nil {
		c.resolveUI(ctx, sess.CallID, ui.ResolveRemoteEnd)
		c.terminate(sess, types.OutcomeRemoteEnded)
	}
}

func (c *Controller) recordSignal(origin types.SignalOrigin, decision string) {
	if c.metrics != nil {
		c.metrics.RecordSignal(string(origin), decision)
	}
}
