package sectionprof

import (
	"bytes"
	"context"
	"net"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	fiber "github.com/gofiber/fiber/v3"
	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/sectionprof/internal/constants"
	"github.com/hyp3rd/sectionprof/internal/libs/serializer"
	"github.com/hyp3rd/sectionprof/internal/sentinel"
	"github.com/hyp3rd/sectionprof/pkg/report"
)

// ManagementHTTPOption configures the management HTTP server.
type ManagementHTTPOption func(*ManagementHTTPServer)

// ManagementHTTPServer exposes a profiler's report and snapshot over HTTP.
// It only reads the registry.
type ManagementHTTPServer struct {
	addr         string
	app          *fiber.App
	readTimeout  time.Duration
	writeTimeout time.Duration
	authFunc     func(fiber.Ctx) error
	serializers  *serializer.Registry
	logger       log.Logger
	ln           net.Listener
	mounted      bool
	started      bool
}

// WithMgmtAuth sets an auth function (return error to block).
func WithMgmtAuth(fn func(fiber.Ctx) error) ManagementHTTPOption {
	return func(s *ManagementHTTPServer) { s.authFunc = fn }
}

// WithMgmtReadTimeout sets read timeout.
func WithMgmtReadTimeout(d time.Duration) ManagementHTTPOption {
	return func(s *ManagementHTTPServer) { s.readTimeout = d }
}

// WithMgmtWriteTimeout sets write timeout.
func WithMgmtWriteTimeout(d time.Duration) ManagementHTTPOption {
	return func(s *ManagementHTTPServer) { s.writeTimeout = d }
}

// WithMgmtLogger sets the logger used for serve errors.
func WithMgmtLogger(logger log.Logger) ManagementHTTPOption {
	return func(s *ManagementHTTPServer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMgmtSerializers replaces the snapshot encodings offered by /snapshot.
func WithMgmtSerializers(registry *serializer.Registry) ManagementHTTPOption {
	return func(s *ManagementHTTPServer) {
		if registry != nil {
			s.serializers = registry
		}
	}
}

// NewManagementHTTPServer builds an HTTP server holder (lazy start).
func NewManagementHTTPServer(addr string, opts ...ManagementHTTPOption) *ManagementHTTPServer {
	srv := &ManagementHTTPServer{
		addr:         addr,
		readTimeout:  constants.DefaultMgmtReadTimeout,
		writeTimeout: constants.DefaultMgmtWriteTimeout,
		serializers:  serializer.NewSerializerRegistry(),
		logger:       log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(srv)
	}

	srv.app = fiber.New(fiber.Config{
		ReadTimeout:  srv.readTimeout,
		WriteTimeout: srv.writeTimeout,
	})

	return srv
}

// Start listens, mounts the routes for prof and serves in the background. It is
// idempotent, and may be retried after a failed listen.
func (s *ManagementHTTPServer) Start(ctx context.Context, prof *Profiler) error {
	if s.started {
		return nil
	}

	lc := net.ListenConfig{}

	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return ewrap.Wrap(err, "mgmt listen")
	}

	s.ln = ln

	if !s.mounted {
		s.mountRoutes(prof)
		s.mounted = true
	}

	go func() {
		serveErr := s.app.Listener(ln)
		if serveErr != nil {
			_ = level.Warn(s.logger).Log("msg", "management http server stopped", "err", serveErr)
		}
	}()

	s.started = true

	return nil
}

// Address returns the bound address (useful when passing ":0" for ephemeral port). Empty if not started yet.
func (s *ManagementHTTPServer) Address() string {
	if s.ln == nil {
		return ""
	}

	return s.ln.Addr().String()
}

// Shutdown stops the server.
func (s *ManagementHTTPServer) Shutdown(ctx context.Context) error {
	if !s.started {
		return nil
	}

	ch := make(chan error, 1)

	go func() {
		ch <- s.app.Shutdown()
	}()

	select {
	case <-ctx.Done():
		return sentinel.ErrMgmtHTTPShutdownTimeout
	case err := <-ch:
		return err
	}
}

func (s *ManagementHTTPServer) mountRoutes(prof *Profiler) {
	useAuth := s.wrapAuth

	s.app.Get("/health", useAuth(func(fiberCtx fiber.Ctx) error { return fiberCtx.SendString("ok") }))
	s.app.Get("/report", useAuth(func(fiberCtx fiber.Ctx) error {
		var buf bytes.Buffer

		err := report.Render(&buf, prof.Snapshot())
		if err != nil {
			return err
		}

		fiberCtx.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)

		return fiberCtx.Send(buf.Bytes())
	}))
	s.app.Get("/snapshot", useAuth(func(fiberCtx fiber.Ctx) error { return s.serveSnapshot(fiberCtx, prof) }))
}

// serveSnapshot encodes the registry in the requested format. The ETag is a hash of the
// encoded bytes, so an unchanged registry answers 304 to a conditional request.
func (s *ManagementHTTPServer) serveSnapshot(fiberCtx fiber.Ctx, prof *Profiler) error {
	format := fiberCtx.Query("format", constants.DefaultSerializer)

	enc, err := s.serializers.New(format)
	if err != nil {
		return fiberCtx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	data, err := enc.Marshal(prof.Snapshot())
	if err != nil {
		return err
	}

	etag := `"` + strconv.FormatUint(xxhash.Sum64(data), 16) + `"`
	fiberCtx.Set(fiber.HeaderETag, etag)

	if fiberCtx.Get(fiber.HeaderIfNoneMatch) == etag {
		return fiberCtx.SendStatus(fiber.StatusNotModified)
	}

	fiberCtx.Set(fiber.HeaderContentType, enc.ContentType())

	return fiberCtx.Send(data)
}

// wrapAuth returns an auth-wrapped handler if authFunc provided.
func (s *ManagementHTTPServer) wrapAuth(handler fiber.Handler) fiber.Handler { //nolint:ireturn
	if s.authFunc == nil {
		return handler
	}

	return func(fiberCtx fiber.Ctx) error {
		authErr := s.authFunc(fiberCtx)
		if authErr != nil {
			return authErr
		}

		return handler(fiberCtx)
	}
}
