package transfer

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/voxshell/backend/internal/shared/types"
)

// Gateway persists and hands off decoded file payloads. The platform
// shell supplies the share/open sides; the provider never inspects file
// bytes beyond mime sniffing.
type Gateway interface {
	Save(ctx context.Context, data []byte, filename, mime string) (string, error)
	Open(ctx context.Context, uri string) error
	Share(ctx context.Context, uri, mime string) error
}

// Provider exposes the file transfer gateway as registry tools
type Provider struct {
	gateway Gateway
}

// NewProvider creates a transfer provider backed by the given gateway
func NewProvider(gateway Gateway) *Provider {
	return &Provider{gateway: gateway}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "transfer",
		Name:        "File Transfer Gateway",
		Description: "Persists, opens, and shares base64 file payloads from the embedded content",
		Category:    types.CategoryTransfer,
		Capabilities: []string{
			"save",
			"open",
			"share",
		},
		Tools: []types.Tool{
			{
				ID:          "transfer.save",
				Name:        "Save File",
				Description: "Decode a base64 payload and persist it under the sandbox directory",
				Parameters: []types.Parameter{
					{Name: "data", Type: "string", Description: "Base64 file payload", Required: true},
					{Name: "filename", Type: "string", Description: "Target filename", Required: true},
					{Name: "mime", Type: "string", Description: "Mime type; sniffed from content when omitted", Required: false},
				},
				Returns: "object",
			},
			{
				ID:          "transfer.open",
				Name:        "Open File",
				Description: "Open a saved file with the platform viewer",
				Parameters: []types.Parameter{
					{Name: "uri", Type: "string", Description: "File URI returned by save", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "transfer.share",
				Name:        "Share File",
				Description: "Hand a saved file to the platform share sheet",
				Parameters: []types.Parameter{
					{Name: "uri", Type: "string", Description: "File URI returned by save", Required: true},
					{Name: "mime", Type: "string", Description: "Mime type hint", Required: false},
				},
				Returns: "boolean",
			},
		},
	}
}

// Execute runs a transfer operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "transfer.save":
		return p.save(ctx, params)
	case "transfer.open":
		return p.open(ctx, params)
	case "transfer.share":
		return p.share(ctx, params)
	default:
		return failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func (p *Provider) save(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	encoded, ok := params["data"].(string)
	if !ok || encoded == "" {
		return failure("data parameter required")
	}
	filename, ok := params["filename"].(string)
	if !ok || filename == "" {
		return failure("filename parameter required")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return failure(fmt.Sprintf("invalid base64 payload: %v", err))
	}

	mime, _ := params["mime"].(string)
	if mime == "" {
		mime = mimetype.Detect(data).String()
	}

	uri, err := p.gateway.Save(ctx, data, filename, mime)
	if err != nil {
		return failure(fmt.Sprintf("save failed: %v", err))
	}

	return success(map[string]interface{}{
		"uri":  uri,
		"mime": mime,
		"size": len(data),
	})
}

func (p *Provider) open(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	uri, ok := params["uri"].(string)
	if !ok || uri == "" {
		return failure("uri parameter required")
	}
	if err := p.gateway.Open(ctx, uri); err != nil {
		return failure(fmt.Sprintf("open failed: %v", err))
	}
	return success(map[string]interface{}{"opened": true})
}

func (p *Provider) share(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	uri, ok := params["uri"].(string)
	if !ok || uri == "" {
		return failure("uri parameter required")
	}
	mime, _ := params["mime"].(string)
	if err := p.gateway.Share(ctx, uri, mime); err != nil {
		return failure(fmt.Sprintf("share failed: %v", err))
	}
	return success(map[string]interface{}{"shared": true})
}

// DiskGateway is a Gateway writing into a local sandbox directory. The
// open and share sides record the request; on device they are fulfilled
// by the platform shell.
type DiskGateway struct {
	dir string
}

// NewDiskGateway creates a sandbox-directory gateway
func NewDiskGateway(dir string) (*DiskGateway, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sandbox dir: %w", err)
	}
	return &DiskGateway{dir: dir}, nil
}

// Save writes the payload under the sandbox directory and returns a
// file URI. Path elements in filename are stripped.
func (g *DiskGateway) Save(_ context.Context, data []byte, filename, _ string) (string, error) {
	name := filepath.Base(filepath.Clean(filename))
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid filename %q", filename)
	}

	path := filepath.Join(g.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return "file://" + path, nil
}

// Open verifies the URI points inside the sandbox
func (g *DiskGateway) Open(_ context.Context, uri string) error {
	return g.verify(uri)
}

// Share verifies the URI points inside the sandbox
func (g *DiskGateway) Share(_ context.Context, uri, _ string) error {
	return g.verify(uri)
}

func (g *DiskGateway) verify(uri string) error {
	path := strings.TrimPrefix(uri, "file://")
	if !strings.HasPrefix(path, g.dir+string(filepath.Separator)) {
		return fmt.Errorf("uri outside sandbox: %s", uri)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
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
