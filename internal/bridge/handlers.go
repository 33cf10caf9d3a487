package bridge

import (
	"context"
	"fmt"

	"github.com/voxshell/backend/internal/service"
	"github.com/voxshell/backend/internal/shared/types"
	"github.com/voxshell/backend/internal/storage"
)

// HostUI is the native chrome the shell can toggle around the embedded
// content.
type HostUI interface {
	SetChromeVisible(visible bool)
}

// Handlers wires the recognized envelope types to the capability
// providers and the persistent shell state.
type Handlers struct {
	registry *service.Registry
	store    *storage.Store
	hostUI   HostUI
}

// NewHandlers creates the standard handler set. hostUI may be nil, in
// which case chrome toggles are accepted and ignored.
func NewHandlers(registry *service.Registry, store *storage.Store, hostUI HostUI) *Handlers {
	return &Handlers{registry: registry, store: store, hostUI: hostUI}
}

// Register binds every recognized inbound type on the router.
func (h *Handlers) Register(r *Router) {
	r.Register("request-app-params", h.requestAppParams(r))
	r.Register("request-presented-notifications", h.requestPresentedNotifications(r))
	r.Register("export-file", h.exportFile(r))
	r.Register("download-attachment", h.downloadAttachment(r))
	r.Register("navigate-to-url", h.navigateToURL(r))
	r.Register("schedule-call-reminder", h.scheduleCallReminder)
	r.Register("cancel-call-reminder", h.cancelCallReminder)
	r.Register("toggle-navigation-chrome", h.toggleNavigationChrome)
	r.Register("clear-notifications", h.clearNotifications)
}

func (h *Handlers) appContext() *types.Context {
	origin := "bridge"
	deviceID := h.store.DeviceID()
	return &types.Context{Origin: &origin, DeviceID: &deviceID}
}

func (h *Handlers) execute(ctx context.Context, toolID string, params map[string]interface{}) (*types.Result, error) {
	result, err := h.registry.Execute(ctx, toolID, params, h.appContext())
	if err != nil {
		return nil, err
	}
	if !result.Success {
		msg := "provider failure"
		if result.Error != nil {
			msg = *result.Error
		}
		return nil, fmt.Errorf("%s: %s", toolID, msg)
	}
	return result, nil
}

func (h *Handlers) requestAppParams(r *Router) HandlerFunc {
	return func(ctx context.Context, env Envelope) error {
		result, err := h.execute(ctx, "params.get", nil)
		if err != nil {
			return err
		}
		r.Send(NewEnvelope("app-params", result.Data))
		return nil
	}
}

func (h *Handlers) requestPresentedNotifications(r *Router) HandlerFunc {
	return func(ctx context.Context, env Envelope) error {
		result, err := h.execute(ctx, "notify.presented", nil)
		if err != nil {
			return err
		}
		r.Send(NewEnvelope("presented-notifications", result.Data))
		return nil
	}
}

func (h *Handlers) exportFile(r *Router) HandlerFunc {
	return func(ctx context.Context, env Envelope) error {
		result, err := h.execute(ctx, "transfer.save", map[string]interface{}{
			"data":     env.String("data"),
			"filename": env.String("filename"),
			"mime":     env.String("mime"),
		})
		if err != nil {
			return err
		}

		uri, _ := result.Data["uri"].(string)
		if _, err := h.execute(ctx, "transfer.share", map[string]interface{}{
			"uri":  uri,
			"mime": env.String("mime"),
		}); err != nil {
			return err
		}

		r.Send(NewEnvelope("file-exported", map[string]interface{}{"uri": uri}))
		return nil
	}
}

func (h *Handlers) downloadAttachment(r *Router) HandlerFunc {
	return func(ctx context.Context, env Envelope) error {
		result, err := h.execute(ctx, "transfer.save", map[string]interface{}{
			"data":     env.String("data"),
			"filename": env.String("filename"),
			"mime":     env.String("mime"),
		})
		if err != nil {
			return err
		}

		uri, _ := result.Data["uri"].(string)
		if _, err := h.execute(ctx, "transfer.open", map[string]interface{}{"uri": uri}); err != nil {
			return err
		}

		r.Send(NewEnvelope("attachment-downloaded", map[string]interface{}{"uri": uri}))
		return nil
	}
}

func (h *Handlers) navigateToURL(r *Router) HandlerFunc {
	return func(ctx context.Context, env Envelope) error {
		url := env.String("url")
		if url == "" {
			return fmt.Errorf("navigate-to-url: missing url")
		}
		if err := h.store.SetShellURL(url); err != nil {
			return fmt.Errorf("persist shell url: %w", err)
		}
		r.Send(NewEnvelope("reload-content", map[string]interface{}{"url": url}))
		return nil
	}
}

func (h *Handlers) scheduleCallReminder(ctx context.Context, env Envelope) error {
	_, err := h.execute(ctx, "notify.schedule", map[string]interface{}{
		"caller_name": env.String("caller_name"),
		"fire_at":     env.String("fire_at"),
		"title":       env.String("title"),
		"body":        env.String("body"),
		"recurrence":  env.String("recurrence"),
	})
	return err
}

func (h *Handlers) cancelCallReminder(ctx context.Context, env Envelope) error {
	_, err := h.execute(ctx, "notify.cancel", map[string]interface{}{
		"caller_name": env.String("caller_name"),
		"fire_at":     env.String("fire_at"),
		"identifier":  env.String("identifier"),
	})
	return err
}

func (h *Handlers) toggleNavigationChrome(ctx context.Context, env Envelope) error {
	if h.hostUI != nil {
		h.hostUI.SetChromeVisible(env.Bool("visible"))
	}
	return nil
}

func (h *Handlers) clearNotifications(ctx context.Context, env Envelope) error {
	_, err := h.execute(ctx, "notify.clear", nil)
	return err
}
