package ws

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/voxshell/backend/internal/bridge"
	"github.com/voxshell/backend/internal/infrastructure/logging"
	"github.com/voxshell/backend/internal/infrastructure/monitoring"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The embedded content loads from the configured shell URL;
		// origin enforcement happens at the CORS layer.
		return true
	},
}

// Handler manages bridge websocket connections
type Handler struct {
	router  *bridge.Router
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewHandler creates a websocket handler bound to the bridge router
func NewHandler(router *bridge.Router, logger *logging.Logger, metrics *monitoring.Metrics) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		router:  router,
		logger:  logger.Named("ws"),
		metrics: metrics,
	}
}

// connTransport serializes writes to one websocket connection. gorilla
// allows a single concurrent writer, and the router broadcasts from
// arbitrary goroutines.
type connTransport struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (t *connTransport) WriteEnvelope(env bridge.Envelope) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.WriteJSON(env)
}

// HandleConnection upgrades the request and pumps frames until the peer
// disconnects.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.IncBridgeConnections()
		defer h.metrics.DecBridgeConnections()
	}

	transport := &connTransport{conn: conn}
	h.router.Attach(transport)
	defer h.router.Detach(transport)

	if err := transport.WriteEnvelope(bridge.NewEnvelope("connected", nil)); err != nil {
		h.logger.Warn("welcome frame failed", zap.Error(err))
		return
	}

	ctx := c.Request.Context()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		h.router.HandleRaw(ctx, raw)
	}
}
