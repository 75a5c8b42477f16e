package service

import (
	"bufio"
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/theapemachine/taskagent/pkg/auth"
	"github.com/theapemachine/taskagent/pkg/chat"
	"github.com/theapemachine/taskagent/pkg/metrics"
	"github.com/theapemachine/taskagent/pkg/service/sse"
	"github.com/theapemachine/taskagent/pkg/tasks"
)

const userKey = "user_id"

// Snapshots supplies the point-in-time task list handed to each turn.
type Snapshots interface {
	ListForUser(ctx context.Context, userID string) ([]tasks.Task, error)
}

/*
ChatServer exposes the assistant over HTTP.  Every route under /api needs a
bearer token whose subject is the user id; the assistant serializes turns of
the same user, so handlers need no locking of their own.
*/
type ChatServer struct {
	app       *fiber.App
	assistant *chat.Assistant
	snapshots Snapshots
	auth      *auth.Service
	broker    *sse.SSEBroker
	turns     *metrics.TurnMetrics
	addr      string
}

type ChatServerOption func(*ChatServer)

func WithAuth(service *auth.Service) ChatServerOption {
	return func(srv *ChatServer) {
		srv.auth = service
	}
}

func WithBroker(broker *sse.SSEBroker) ChatServerOption {
	return func(srv *ChatServer) {
		srv.broker = broker
	}
}

func WithTurnMetrics(turns *metrics.TurnMetrics) ChatServerOption {
	return func(srv *ChatServer) {
		srv.turns = turns
	}
}

func WithAddr(addr string) ChatServerOption {
	return func(srv *ChatServer) {
		srv.addr = addr
	}
}

func NewChatServer(assistant *chat.Assistant, snapshots Snapshots, options ...ChatServerOption) *ChatServer {
	srv := &ChatServer{
		app: fiber.New(fiber.Config{
			AppName:      "taskagent",
			ServerHeader: "taskagent",
			ErrorHandler: errorHandler,
		}),
		assistant: assistant,
		snapshots: snapshots,
		addr:      ":3210",
	}

	for _, option := range options {
		option(srv)
	}

	if srv.broker == nil {
		srv.broker = sse.NewSSEBroker(nil)
	}

	if srv.turns == nil {
		srv.turns = metrics.NewTurnMetrics()
	}

	srv.routes()

	return srv
}

// App exposes the fiber app, mostly so tests can drive it with app.Test.
func (srv *ChatServer) App() *fiber.App {
	return srv.app
}

func (srv *ChatServer) routes() {
	srv.app.Use(logger.New(logger.Config{
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/events"
		},
	}))

	srv.app.Get("/livez", healthcheck.NewHealthChecker())
	srv.app.Get("/", func(ctx fiber.Ctx) error {
		return ctx.SendString("OK")
	})

	api := srv.app.Group("/api", srv.authenticate)

	api.Post("/chat", srv.handleChat)
	api.Get("/chat/history", srv.handleHistory)
	api.Delete("/chat/history", srv.handleClearHistory)
	api.Post("/chat/action", srv.handleAction)
	api.Get("/tasks", srv.handleTasks)
	api.Get("/agent/status", srv.handleStatus)
	api.Get("/agent/metrics", srv.handleMetrics)
	api.Get("/events", srv.handleEvents)
}

/*
Start listens until ctx is cancelled, then shuts the server down and closes
the event broker so open streams end.
*/
func (srv *ChatServer) Start(ctx context.Context) error {
	errs := make(chan error, 1)

	go func() {
		errs <- srv.app.Listen(srv.addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	log.Info("chat server listening", "addr", srv.addr)

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	srv.broker.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.app.ShutdownWithContext(shutdownCtx)
}

func (srv *ChatServer) authenticate(ctx fiber.Ctx) error {
	if srv.auth == nil {
		ctx.Locals(userKey, anonymousUser(ctx))
		return ctx.Next()
	}

	userID, err := srv.auth.Authenticate(ctx.Get(fiber.HeaderAuthorization))

	if err != nil {
		return fromAuthError(err)
	}

	ctx.Locals(userKey, userID)

	return ctx.Next()
}

// anonymousUser is used when authentication is disabled for local runs.
func anonymousUser(ctx fiber.Ctx) string {
	if userID := ctx.Get("X-User-ID"); userID != "" {
		return userID
	}

	return "anonymous"
}

func currentUser(ctx fiber.Ctx) string {
	userID, _ := ctx.Locals(userKey).(string)
	return userID
}

/*
handleEvents streams the caller's audit entries.  The stream ends when a
heartbeat cannot be written, which is how a dropped client is noticed.
*/
func (srv *ChatServer) handleEvents(ctx fiber.Ctx) error {
	events, detach, err := srv.broker.Attach(currentUser(ctx))

	if err != nil {
		return fiber.NewError(fiber.StatusGone, err.Error())
	}

	sse.SetHeaders(ctx.Set)

	return ctx.SendStreamWriter(func(w *bufio.Writer) {
		defer detach()
		srv.broker.Stream(nil, w, w.Flush, events)
	})
}

func (srv *ChatServer) handleMetrics(ctx fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"turns":  srv.turns.Snapshot(),
		"events": srv.broker.Metrics().GetMetrics(),
	})
}
