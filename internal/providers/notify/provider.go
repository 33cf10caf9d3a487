package notify

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/adhocore/gronx"

	"github.com/voxshell/backend/internal/shared/types"
)

// Notification is a scheduled local notification
type Notification struct {
	Identifier string    `json:"identifier"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	FireAt     time.Time `json:"fire_at"`
	Recurrence string    `json:"recurrence,omitempty"`
}

// Scheduler is the platform notification facility
type Scheduler interface {
	Schedule(ctx context.Context, n Notification) error
	Cancel(ctx context.Context, identifier string) error
	Presented(ctx context.Context) ([]Notification, error)
	Clear(ctx context.Context) error
}

// Provider exposes local notification scheduling as registry tools
type Provider struct {
	scheduler Scheduler
	clock     func() time.Time
}

// NewProvider creates a notify provider backed by the given scheduler
func NewProvider(scheduler Scheduler) *Provider {
	return &Provider{scheduler: scheduler, clock: time.Now}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "notify",
		Name:        "Local Notifications",
		Description: "Schedules, cancels, and inspects local timed notifications",
		Category:    types.CategoryNotify,
		Capabilities: []string{
			"schedule",
			"cancel",
			"presented",
			"clear",
			"recurrence",
		},
		Tools: []types.Tool{
			{
				ID:          "notify.schedule",
				Name:        "Schedule Notification",
				Description: "Schedule a timed notification; identifier derives from caller and timestamp",
				Parameters: []types.Parameter{
					{Name: "caller_name", Type: "string", Description: "Caller the reminder is about", Required: true},
					{Name: "fire_at", Type: "string", Description: "RFC 3339 fire time; derived from recurrence when omitted", Required: false},
					{Name: "title", Type: "string", Description: "Notification title", Required: false},
					{Name: "body", Type: "string", Description: "Notification body", Required: false},
					{Name: "recurrence", Type: "string", Description: "Optional cron expression", Required: false},
				},
				Returns: "object",
			},
			{
				ID:          "notify.cancel",
				Name:        "Cancel Notification",
				Description: "Cancel by identifier, or by the caller and timestamp it was derived from",
				Parameters: []types.Parameter{
					{Name: "identifier", Type: "string", Description: "Notification identifier", Required: false},
					{Name: "caller_name", Type: "string", Description: "Caller used at schedule time", Required: false},
					{Name: "fire_at", Type: "string", Description: "Fire time used at schedule time", Required: false},
				},
				Returns: "boolean",
			},
			{
				ID:          "notify.presented",
				Name:        "Presented Notifications",
				Description: "Snapshot of the notification panel",
				Parameters:  []types.Parameter{},
				Returns:     "array",
			},
			{
				ID:          "notify.clear",
				Name:        "Clear Notifications",
				Description: "Remove every presented notification",
				Parameters:  []types.Parameter{},
				Returns:     "boolean",
			},
		},
	}
}

// Execute runs a notification operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "notify.schedule":
		return p.schedule(ctx, params)
	case "notify.cancel":
		return p.cancel(ctx, params)
	case "notify.presented":
		return p.presented(ctx)
	case "notify.clear":
		return p.clear(ctx)
	default:
		return failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func (p *Provider) schedule(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	caller, ok := params["caller_name"].(string)
	if !ok || caller == "" {
		return failure("caller_name parameter required")
	}

	fireAtText, _ := params["fire_at"].(string)
	recurrence, _ := params["recurrence"].(string)

	var fireAt time.Time
	switch {
	case fireAtText != "":
		var err error
		fireAt, err = time.Parse(time.RFC3339, fireAtText)
		if err != nil {
			return failure(fmt.Sprintf("invalid fire_at: %v", err))
		}
	case recurrence != "":
		// First occurrence comes from the cron expression.
	default:
		return failure("fire_at or recurrence required")
	}

	if recurrence != "" {
		if !gronx.New().IsValid(recurrence) {
			return failure(fmt.Sprintf("invalid recurrence expression: %s", recurrence))
		}
		if fireAt.IsZero() {
			next, err := gronx.NextTickAfter(recurrence, p.clock(), false)
			if err != nil {
				return failure(fmt.Sprintf("compute next occurrence: %v", err))
			}
			fireAt = next
		}
	}

	title, _ := params["title"].(string)
	body, _ := params["body"].(string)

	n := Notification{
		Identifier: DeriveIdentifier(caller, fireAtText),
		Title:      title,
		Body:       body,
		FireAt:     fireAt,
		Recurrence: recurrence,
	}
	if err := p.scheduler.Schedule(ctx, n); err != nil {
		return failure(fmt.Sprintf("schedule failed: %v", err))
	}

	return success(map[string]interface{}{
		"identifier": n.Identifier,
		"fire_at":    n.FireAt.Format(time.RFC3339),
	})
}

func (p *Provider) cancel(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	identifier, _ := params["identifier"].(string)
	if identifier == "" {
		caller, _ := params["caller_name"].(string)
		fireAt, _ := params["fire_at"].(string)
		if caller == "" {
			return failure("identifier or caller_name required")
		}
		identifier = DeriveIdentifier(caller, fireAt)
	}

	if err := p.scheduler.Cancel(ctx, identifier); err != nil {
		return failure(fmt.Sprintf("cancel failed: %v", err))
	}
	return success(map[string]interface{}{"cancelled": true, "identifier": identifier})
}

func (p *Provider) presented(ctx context.Context) (*types.Result, error) {
	notifications, err := p.scheduler.Presented(ctx)
	if err != nil {
		return failure(fmt.Sprintf("panel query failed: %v", err))
	}

	items := make([]interface{}, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, map[string]interface{}{
			"identifier": n.Identifier,
			"title":      n.Title,
			"body":       n.Body,
			"fire_at":    n.FireAt.Format(time.RFC3339),
		})
	}
	return success(map[string]interface{}{"notifications": items})
}

func (p *Provider) clear(ctx context.Context) (*types.Result, error) {
	if err := p.scheduler.Clear(ctx); err != nil {
		return failure(fmt.Sprintf("clear failed: %v", err))
	}
	return success(map[string]interface{}{"cleared": true})
}

// DeriveIdentifier computes the deterministic identifier for a reminder.
// The same caller and timestamp always map to the same identifier, which
// makes cancel idempotent without any stored handle.
func DeriveIdentifier(caller, fireAt string) string {
	h := fnv.New32a()
	h.Write([]byte(caller))
	h.Write([]byte("|"))
	h.Write([]byte(fireAt))
	return fmt.Sprintf("reminder-%08x", h.Sum32())
}

// MemoryScheduler keeps the panel in memory. It stands in for the
// platform facility off-device and in tests.
type MemoryScheduler struct {
	mu    sync.Mutex
	panel map[string]Notification
}

// NewMemoryScheduler creates an empty in-memory scheduler
func NewMemoryScheduler() *MemoryScheduler {
	return &MemoryScheduler{panel: make(map[string]Notification)}
}

// Schedule records a notification, replacing one with the same identifier
func (s *MemoryScheduler) Schedule(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel[n.Identifier] = n
	return nil
}

// Cancel removes a notification; cancelling an unknown identifier is a no-op
func (s *MemoryScheduler) Cancel(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.panel, identifier)
	return nil
}

// Presented returns the panel snapshot ordered by fire time
func (s *MemoryScheduler) Presented(_ context.Context) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Notification, 0, len(s.panel))
	for _, n := range s.panel {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out, nil
}

// Clear empties the panel
func (s *MemoryScheduler) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel = make(map[string]Notification)
	return nil
}

func success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{
		Success: true,
		Data:    data,
	}, nil
}

func failure(message string) (*types.Result, error) {
	errMsg := message
	return &types.Result{
		Success: false,
		Error:   &errMsg,
	}, fmt.Errorf("%s", message)
}
