package bridge

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxshell/backend/internal/service"
	"github.com/voxshell/backend/internal/shared/types"
	"github.com/voxshell/backend/internal/storage"
)

// recordingProvider answers any tool call and records invocations.
type recordingProvider struct {
	id    string
	cat   types.Category
	mu    sync.Mutex
	calls []string
	data  map[string]interface{}
}

func (p *recordingProvider) Definition() types.Service {
	return types.Service{ID: p.id, Name: p.id, Category: p.cat}
}

func (p *recordingProvider) Execute(_ context.Context, toolID string, _ map[string]interface{}, _ *types.Context) (*types.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, toolID)
	return &types.Result{Success: true, Data: p.data}, nil
}

func (p *recordingProvider) called() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

type fakeChrome struct {
	visible bool
	toggled int
}

func (c *fakeChrome) SetChromeVisible(v bool) {
	c.visible = v
	c.toggled++
}

type handlerFixture struct {
	router   *Router
	out      *captureTransport
	store    *storage.Store
	transfer *recordingProvider
	notify   *recordingProvider
	chrome   *fakeChrome
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	store, err := storage.Open(t.TempDir())
	require.NoError(t, err)

	registry := service.NewRegistry(nil)
	transfer := &recordingProvider{
		id:   "transfer",
		cat:  types.CategoryTransfer,
		data: map[string]interface{}{"uri": "file:///sandbox/report.pdf"},
	}
	notify := &recordingProvider{id: "notify", cat: types.CategoryNotify}
	params := &recordingProvider{
		id:   "params",
		cat:  types.CategorySystem,
		data: map[string]interface{}{"device_id": store.DeviceID(), "app_version": "1.0.0"},
	}
	require.NoError(t, registry.Register(transfer))
	require.NoError(t, registry.Register(notify))
	require.NoError(t, registry.Register(params))

	chrome := &fakeChrome{}
	router := NewRouter(nil, nil)
	out := &captureTransport{}
	router.Attach(out)
	NewHandlers(registry, store, chrome).Register(router)

	return &handlerFixture{router: router, out: out, store: store, transfer: transfer, notify: notify, chrome: chrome}
}

func TestRequestAppParams(t *testing.T) {
	fx := newHandlerFixture(t)

	fx.router.Handle(context.Background(), NewEnvelope("request-app-params", nil))

	sent := fx.out.envelopes()
	require.Len(t, sent, 1)
	assert.Equal(t, "app-params", sent[0].Type)
	assert.Equal(t, fx.store.DeviceID(), sent[0].String("device_id"))
}

func TestExportFileSavesThenShares(t *testing.T) {
	fx := newHandlerFixture(t)

	fx.router.Handle(context.Background(), NewEnvelope("export-file", map[string]interface{}{
		"data":     "aGVsbG8=",
		"filename": "report.pdf",
		"mime":     "application/pdf",
	}))

	assert.Equal(t, []string{"transfer.save", "transfer.share"}, fx.transfer.called())

	sent := fx.out.envelopes()
	require.Len(t, sent, 1)
	assert.Equal(t, "file-exported", sent[0].Type)
	assert.Equal(t, "file:///sandbox/report.pdf", sent[0].String("uri"))
}

func TestDownloadAttachmentSavesThenOpens(t *testing.T) {
	fx := newHandlerFixture(t)

	fx.router.Handle(context.Background(), NewEnvelope("download-attachment", map[string]interface{}{
		"data":     "aGVsbG8=",
		"filename": "invoice.pdf",
	}))

	assert.Equal(t, []string{"transfer.save", "transfer.open"}, fx.transfer.called())

	sent := fx.out.envelopes()
	require.Len(t, sent, 1)
	assert.Equal(t, "attachment-downloaded", sent[0].Type)
}

func TestNavigateToURLPersistsAndReloads(t *testing.T) {
	fx := newHandlerFixture(t)

	fx.router.Handle(context.Background(), NewEnvelope("navigate-to-url", map[string]interface{}{
		"url": "https://next.example.com",
	}))

	assert.Equal(t, "https://next.example.com", fx.store.ShellURL())

	sent := fx.out.envelopes()
	require.Len(t, sent, 1)
	assert.Equal(t, "reload-content", sent[0].Type)
}

func TestNavigateToURLMissingURL(t *testing.T) {
	fx := newHandlerFixture(t)

	fx.router.Handle(context.Background(), NewEnvelope("navigate-to-url", nil))

	assert.Empty(t, fx.store.ShellURL())
	sent := fx.out.envelopes()
	require.Len(t, sent, 1)
	assert.Equal(t, "alert", sent[0].Type)
}

func TestCallReminderScheduleAndCancel(t *testing.T) {
	fx := newHandlerFixture(t)

	fx.router.Handle(context.Background(), NewEnvelope("schedule-call-reminder", map[string]interface{}{
		"caller_name": "Alice",
		"fire_at":     "2026-09-01T10:00:00Z",
	}))
	fx.router.Handle(context.Background(), NewEnvelope("cancel-call-reminder", map[string]interface{}{
		"caller_name": "Alice",
		"fire_at":     "2026-09-01T10:00:00Z",
	}))

	assert.Equal(t, []string{"notify.schedule", "notify.cancel"}, fx.notify.called())
}

func TestToggleNavigationChrome(t *testing.T) {
	fx := newHandlerFixture(t)

	fx.router.Handle(context.Background(), NewEnvelope("toggle-navigation-chrome", map[string]interface{}{
		"visible": true,
	}))

	assert.True(t, fx.chrome.visible)
	assert.Equal(t, 1, fx.chrome.toggled)
}

func TestClearNotifications(t *testing.T) {
	fx := newHandlerFixture(t)

	fx.router.Handle(context.Background(), NewEnvelope("clear-notifications", nil))
	assert.Equal(t, []string{"notify.clear"}, fx.notify.called())
}
