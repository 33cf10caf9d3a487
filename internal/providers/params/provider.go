package params

import (
	"context"
	"fmt"

	"github.com/voxshell/backend/internal/shared/types"
	"github.com/voxshell/backend/internal/storage"
)

// Provider serves the app parameters the embedded content asks for on
// startup: device identity, push token, version, and the current shell
// URL.
type Provider struct {
	store      *storage.Store
	appVersion string
}

// NewProvider creates a params provider
func NewProvider(store *storage.Store, appVersion string) *Provider {
	return &Provider{store: store, appVersion: appVersion}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:           "params",
		Name:         "App Parameters",
		Description:  "Device identifiers, push token, and shell configuration",
		Category:     types.CategorySystem,
		Capabilities: []string{"get"},
		Tools: []types.Tool{
			{
				ID:          "params.get",
				Name:        "Get Parameters",
				Description: "Current app parameters snapshot",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
		},
	}
}

// Execute runs a params operation
func (p *Provider) Execute(_ context.Context, toolID string, _ map[string]interface{}, _ *types.Context) (*types.Result, error) {
	if toolID != "params.get" {
		errMsg := fmt.Sprintf("unknown tool: %s", toolID)
		return &types.Result{Success: false, Error: &errMsg}, fmt.Errorf("%s", errMsg)
	}

	return &types.Result{
		Success: true,
		Data: map[string]interface{}{
			"device_id":   p.store.DeviceID(),
			"push_token":  p.store.PushToken(),
			"app_version": p.appVersion,
			"shell_url":   p.store.ShellURL(),
		},
	}, nil
}
