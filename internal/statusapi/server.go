package statusapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"lwos/internal/runtime/supervisor"
	"lwos/pkg/logx"
)

// Config controls the HTTP listener.
type Config struct {
	Enabled       bool
	Addr          string
	Token         string
	AllowInsecure bool
	Pprof         bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

const DefaultAddr = "127.0.0.1:7070"

var ErrInsecureBind = errors.New("statusapi: non-loopback addr requires a token or allow_insecure")

// Service runs the API server and can be reconfigured while running.
type Service struct {
	k   Kernel
	log logx.Logger

	mu   sync.Mutex
	cfg  Config
	srv  *http.Server
	ln   net.Listener
	sup  *supervisor.Supervisor
	addr string
}

func New(cfg Config, k Kernel, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{k: k, cfg: cfg, log: log.With(logx.String("comp", "statusapi"))}
}

// Addr returns the bound address while running.
func (s *Service) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Start binds the listener and serves in the background. It is a no-op when
// disabled or already running.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil || !s.cfg.Enabled {
		return nil
	}
	cfg := s.cfg

	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		addr = DefaultAddr
	}
	if !isLoopbackAddr(addr) && cfg.Token == "" {
		if !cfg.AllowInsecure {
			return ErrInsecureBind
		}
		s.log.Warn("status API running without token on non-loopback addr (insecure)", logx.String("addr", addr))
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           NewRouter(s.k, cfg, s.log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
	sup := supervisor.New(ctx, supervisor.WithLogger(s.log))
	sup.Go("http.serve", func(context.Context) error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	// stop serving when the parent context ends, even without Stop
	sup.Go("http.shutdown", func(ctx context.Context) error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
		return nil
	})

	s.srv, s.ln, s.sup = srv, ln, sup
	s.addr = ln.Addr().String()
	s.log.Info("status API started",
		logx.String("addr", s.addr),
		logx.Bool("token_set", cfg.Token != ""),
		logx.Bool("pprof", cfg.Pprof),
	)
	return nil
}

// Stop shuts the server down gracefully, bounded by ctx.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, sup := s.srv, s.sup
	s.srv, s.ln, s.sup, s.addr = nil, nil, nil, ""
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	err := srv.Shutdown(ctx)
	if err != nil {
		_ = srv.Close()
	}
	if serr := sup.Stop(ctx); err == nil {
		err = serr
	}
	s.log.Info("status API stopped")
	return err
}

// Reconfigure applies cfg, restarting the server when anything that shapes
// the listener or the router changed.
func (s *Service) Reconfigure(ctx context.Context, cfg Config) error {
	s.mu.Lock()
	prev := s.cfg
	running := s.srv != nil
	s.cfg = cfg
	s.mu.Unlock()

	switch {
	case !cfg.Enabled:
		return s.Stop(ctx)
	case !running:
		return s.Start(ctx)
	case prev != cfg:
		if err := s.Stop(ctx); err != nil {
			s.log.Warn("status API stop before restart failed", logx.Err(err))
		}
		return s.Start(ctx)
	}
	return nil
}

func isLoopbackAddr(addr string) bool {
	h, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	h = strings.TrimSpace(h)
	if h == "" {
		// all interfaces
		return false
	}
	if strings.EqualFold(h, "localhost") {
		return true
	}
	ip := net.ParseIP(h)
	return ip != nil && ip.IsLoopback()
}
