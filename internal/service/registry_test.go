package service

import (
	"context"
	"testing"

	"github.com/voxshell/backend/internal/shared/types"
)

type mockProvider struct {
	id string
}

func (m *mockProvider) Definition() types.Service {
	return types.Service{
		ID:           m.id,
		Name:         "Mock Provider",
		Description:  "A mock capability for testing",
		Category:     types.CategoryNotify,
		Capabilities: []string{"schedule", "cancel"},
		Tools: []types.Tool{
			{
				ID:          m.id + ".test",
				Name:        "Test Tool",
				Description: "A test tool",
				Returns:     "string",
			},
		},
	}
}

func (m *mockProvider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	return &types.Result{
		Success: true,
		Data:    map[string]interface{}{"result": "success"},
	}, nil
}

func TestRegister(t *testing.T) {
	r := NewRegistry(nil)
	p := &mockProvider{id: "test"}

	if err := r.Register(p); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, ok := r.Get("test"); !ok {
		t.Error("Provider should be registered")
	}
}

func TestList(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&mockProvider{id: "test1"})
	r.Register(&mockProvider{id: "test2"})

	services := r.List(nil)
	if len(services) != 2 {
		t.Errorf("Expected 2 services, got %d", len(services))
	}

	cat := types.CategoryNotify
	filtered := r.List(&cat)
	if len(filtered) != 2 {
		t.Errorf("Expected 2 notify services, got %d", len(filtered))
	}
}

func TestExecute(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&mockProvider{id: "test"})

	ctx := context.Background()
	result, err := r.Execute(ctx, "test.test", map[string]interface{}{}, nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !result.Success {
		t.Error("Expected successful execution")
	}
}

func TestExecuteUnknownService(t *testing.T) {
	r := NewRegistry(nil)

	if _, err := r.Execute(context.Background(), "missing.tool", nil, nil); err == nil {
		t.Error("Expected error for unknown service")
	}
}

func TestExecuteMalformedToolID(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&mockProvider{id: "test"})

	if _, err := r.Execute(context.Background(), "justtool", nil, nil); err == nil {
		t.Error("Expected error for malformed tool ID")
	}
}

func TestStats(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&mockProvider{id: "test1"})
	r.Register(&mockProvider{id: "test2"})

	stats := r.Stats()
	totalServices := stats["total_services"].(int)
	if totalServices != 2 {
		t.Errorf("Expected 2 total services, got %d", totalServices)
	}

	totalTools := stats["total_tools"].(int)
	if totalTools != 2 {
		t.Errorf("Expected 2 total tools, got %d", totalTools)
	}
}
