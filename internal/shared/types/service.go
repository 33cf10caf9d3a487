package types

// Category represents capability provider categories
type Category string

const (
	CategoryTransfer Category = "transfer"
	CategoryNotify   Category = "notify"
	CategorySystem   Category = "system"
)

// Service represents a capability provider definition
type Service struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     Category `json:"category"`
	Capabilities []string `json:"capabilities"`
	Tools        []Tool   `json:"tools"`
}

// Tool represents a provider tool
type Tool struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
	Returns     string      `json:"returns"`
}

// Parameter represents a tool parameter
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Context provides execution context for provider operations
type Context struct {
	Origin   *string `json:"origin,omitempty"`    // bridge, http, internal
	DeviceID *string `json:"device_id,omitempty"`
}

// Result represents a provider execution result
type Result struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *string                `json:"error,omitempty"`
}
