package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/voxshell/backend/internal/api/http"
	"github.com/voxshell/backend/internal/api/middleware"
	"github.com/voxshell/backend/internal/bridge"
	"github.com/voxshell/backend/internal/call/controller"
	"github.com/voxshell/backend/internal/call/filter"
	"github.com/voxshell/backend/internal/call/ui"
	"github.com/voxshell/backend/internal/infrastructure/config"
	"github.com/voxshell/backend/internal/infrastructure/logging"
	"github.com/voxshell/backend/internal/infrastructure/monitoring"
	"github.com/voxshell/backend/internal/infrastructure/resilience"
	"github.com/voxshell/backend/internal/infrastructure/tracing"
	"github.com/voxshell/backend/internal/lifecycle"
	"github.com/voxshell/backend/internal/providers/notify"
	"github.com/voxshell/backend/internal/providers/params"
	"github.com/voxshell/backend/internal/providers/transfer"
	"github.com/voxshell/backend/internal/push"
	"github.com/voxshell/backend/internal/service"
	"github.com/voxshell/backend/internal/shared/types"
	"github.com/voxshell/backend/internal/storage"
	"github.com/voxshell/backend/internal/ws"
)

// Server wraps the HTTP server and the call engine
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	controller *controller.Controller
	store      *storage.Store
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics

	cancel context.CancelFunc
}

// New creates a fully wired server instance
func New(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	logger.Info("Initializing VoxShell core",
		zap.String("port", cfg.Server.Port),
		zap.String("platform", string(cfg.Call.Platform)),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("shell", logger.Logger)

	store, err := storage.Open(cfg.Storage.StateDir)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}
	if store.ShellURL() == "" {
		if err := store.SetShellURL(cfg.Bridge.ShellURL); err != nil {
			return nil, fmt.Errorf("seed shell url: %w", err)
		}
	}
	logger.Info("State store opened",
		zap.String("dir", cfg.Storage.StateDir),
		zap.String("device_id", store.DeviceID()),
	)

	// Bridge router first: the call UI conduit and the host-facing
	// notifications all ride on it.
	bridgeRouter := bridge.NewRouter(logger, metrics)

	breaker := resilience.New("call-ui", resilience.Settings{
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("call facility breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	conduit := ui.Guard(newBridgeConduit(bridgeRouter), breaker)

	var adapter ui.Adapter
	switch cfg.Call.Platform {
	case config.PlatformTelecom:
		adapter = ui.NewTelecom(conduit, "VoxShell", cfg.Call.RingTimeout, logger)
	default:
		adapter = ui.NewCallKit(conduit, "VoxShell", logger)
	}

	observer := lifecycle.New(logger)
	signalFilter := filter.New(store, filter.Config{
		Capacity:       cfg.Call.DedupCapacity,
		StaleThreshold: cfg.Call.StaleThreshold,
	}, logger)

	ctrl := controller.New(controller.Config{
		RingTimeout:        cfg.Call.RingTimeout,
		AnswerResolveDelay: cfg.Call.AnswerResolveDelay,
		BusyPolicy:         cfg.Call.BusyPolicy,
	}, signalFilter, adapter, observer, newBridgeForegrounder(bridgeRouter),
		controller.WithLogger(logger),
		controller.WithMetrics(metrics),
		controller.WithNotifier(newBridgeNotifier(bridgeRouter)),
	)

	// Capability providers
	gateway, err := transfer.NewDiskGateway(cfg.Storage.TransferDir)
	if err != nil {
		return nil, fmt.Errorf("init transfer gateway: %w", err)
	}
	registry := service.NewRegistry(metrics)
	for _, p := range []service.Provider{
		transfer.NewProvider(gateway),
		notify.NewProvider(notify.NewMemoryScheduler()),
		params.NewProvider(store, cfg.Bridge.Version),
	} {
		if err := registry.Register(p); err != nil {
			return nil, fmt.Errorf("register provider: %w", err)
		}
	}
	stats := registry.Stats()
	logger.Info("Capability providers registered",
		zap.Any("services", stats["total_services"]),
		zap.Any("tools", stats["total_tools"]),
	)

	// Bridge handlers: content-originated envelopes plus the host's
	// call UI event reports.
	bridge.NewHandlers(registry, store, newBridgeChrome(bridgeRouter)).Register(bridgeRouter)
	registerCallUIEvents(bridgeRouter, adapter)

	receiver := push.NewReceiver(ctrl, store, nil, logger)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(receiver, ctrl, observer, registry, store, cfg.Bridge.Version)
	wsHandler := ws.NewHandler(bridgeRouter, logger, metrics)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Push entry points
	router.POST("/push/foreground", handlers.PushForeground)
	router.POST("/push/background", handlers.PushBackground)
	router.POST("/push/wake", handlers.PushWake)
	router.POST("/push/token", handlers.PushToken)

	// Host shell reports
	router.POST("/lifecycle", handlers.ReportLifecycle)

	// Call session introspection
	router.GET("/call/session", handlers.CallSession)
	router.POST("/call/:id/end", handlers.EndCall)

	// Capability dev harness
	router.GET("/services", handlers.ListServices)
	router.POST("/services/execute", handlers.ExecuteService)

	// Bridge stream
	router.GET("/bridge", wsHandler.HandleConnection)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logger.Info("Server initialized")

	return &Server{
		router:     router,
		controller: ctrl,
		store:      store,
		logger:     logger,
		config:     cfg,
		metrics:    metrics,
	}, nil
}

// Run starts the call engine and the HTTP server. It blocks until the
// server stops.
func (s *Server) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.controller.Start(ctx)

	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close gracefully shuts down the server and the call engine
func (s *Server) Close() error {
	s.logger.Info("Shutting down...")

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP shutdown failed", zap.Error(err))
		}
	}

	if s.cancel != nil {
		s.cancel()
		<-s.controller.Done()
	}

	return s.logger.Sync()
}

// newBridgeConduit sends call UI commands to the native host over the
// bridge stream. Unlike the fire-and-forget notifications, commands
// must reach an attached host: an undeliverable command is a
// presentation failure, not a silent success.
func newBridgeConduit(router *bridge.Router) ui.Conduit {
	return ui.ConduitFunc(func(_ context.Context, cmd ui.Command) error {
		return router.Deliver(bridge.NewEnvelope("call-ui-command", map[string]interface{}{
			"op":      cmd.Op,
			"call_id": cmd.CallID,
			"payload": cmd.Payload,
		}))
	})
}

// eventSink is the slice of the adapter the bridge feeds events into.
type eventSink interface {
	HandleEvent(ev ui.Event)
}

func registerCallUIEvents(router *bridge.Router, adapter ui.Adapter) {
	sink, ok := adapter.(eventSink)
	if !ok {
		return
	}
	router.Register("call-ui-event", func(_ context.Context, env bridge.Envelope) error {
		kind := ui.EventKind(env.String("kind"))
		switch kind {
		case ui.EventAnswered, ui.EventEnded, ui.EventMuted, ui.EventHeld, ui.EventDTMF:
		default:
			return fmt.Errorf("unknown call ui event kind: %s", env.String("kind"))
		}
		sink.HandleEvent(ui.Event{Kind: kind, CallID: env.String("call_id")})
		return nil
	})
}

type bridgeForegrounder struct {
	router *bridge.Router
}

func newBridgeForegrounder(router *bridge.Router) *bridgeForegrounder {
	return &bridgeForegrounder{router: router}
}

// RequestForeground asks the host to promote the app. Fire-and-forget
// like the rest of the bridge; the lifecycle observer confirms the
// transition.
func (f *bridgeForegrounder) RequestForeground(context.Context) error {
	f.router.Send(bridge.NewEnvelope("request-foreground", nil))
	return nil
}

type bridgeNotifier struct {
	router *bridge.Router
}

func newBridgeNotifier(router *bridge.Router) *bridgeNotifier {
	return &bridgeNotifier{router: router}
}

// SessionEnded relays the terminal outcome to the embedded content so
// it can refresh call-adjacent UI.
func (n *bridgeNotifier) SessionEnded(info controller.SessionInfo, outcome types.CallOutcome) {
	n.router.Send(bridge.NewEnvelope("call-ended", map[string]interface{}{
		"call_id": info.CallID,
		"outcome": string(outcome),
	}))
}

type bridgeChrome struct {
	router *bridge.Router
}

func newBridgeChrome(router *bridge.Router) *bridgeChrome {
	return &bridgeChrome{router: router}
}

// SetChromeVisible forwards the chrome toggle to the host shell.
func (c *bridgeChrome) SetChromeVisible(visible bool) {
	c.router.Send(bridge.NewEnvelope("set-navigation-chrome", map[string]interface{}{
		"visible": visible,
	}))
}
