package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/getmockd/harmock/pkg/config"
	"github.com/getmockd/harmock/pkg/logging"
	"github.com/getmockd/harmock/pkg/metrics"
	"github.com/getmockd/harmock/pkg/mock"
)

// ListenFunc opens a listener. It matches net.Listen.
type ListenFunc func(network, address string) (net.Listener, error)

// Listener describes one running mock listener.
type Listener struct {
	Authority string `json:"authority"`
	Port      int    `json:"port"`
	Addr      string `json:"addr"`
	Exemplars int    `json:"exemplars"`
}

// Supervisor runs one HTTP listener per exemplar set.
type Supervisor struct {
	idx      *mock.Index
	cfg      config.ServeConfig
	log      *slog.Logger
	listen   ListenFunc
	registry *metrics.Registry
	metrics  *metrics.MockMetrics

	mu        sync.RWMutex
	running   bool
	listeners []Listener
	metricsAt string
	ready     chan struct{}
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Supervisor) {
		if log != nil {
			s.log = log
		}
	}
}

// WithListenFunc replaces net.Listen, mainly for tests.
func WithListenFunc(fn ListenFunc) Option {
	return func(s *Supervisor) {
		if fn != nil {
			s.listen = fn
		}
	}
}

// WithRegistry records metrics on r. Without it a private registry is used.
func WithRegistry(r *metrics.Registry) Option {
	return func(s *Supervisor) {
		if r != nil {
			s.registry = r
		}
	}
}

// NewSupervisor creates a Supervisor for every set in idx.
func NewSupervisor(idx *mock.Index, cfg *config.ServeConfig, opts ...Option) *Supervisor {
	if cfg == nil {
		cfg = &config.NewDefault().Serve
	}
	s := &Supervisor{
		idx:    idx,
		cfg:    *cfg,
		log:    logging.Nop(),
		listen: net.Listen,
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = metrics.NewRegistry()
	}
	s.metrics = metrics.NewMockMetrics(s.registry)
	return s
}

// Ready is closed once every listener is bound. It stays open when Run fails
// to bind, so callers should also watch Run's return.
func (s *Supervisor) Ready() <-chan struct{} {
	return s.ready
}

// Listeners returns the bound listeners in index order.
func (s *Supervisor) Listeners() []Listener {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Listener(nil), s.listeners...)
}

// MetricsAddr returns the metrics listener address, or "" when disabled.
func (s *Supervisor) MetricsAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metricsAt
}

// Run binds every listener, serves until ctx is cancelled, then shuts the
// listeners down within the configured shutdown timeout. Failing to bind any
// port aborts the run before anything is served and leaves the supervisor
// ready for another Run.
func (s *Supervisor) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("supervisor is already running")
	}
	s.running = true
	s.mu.Unlock()

	servers, bound, err := s.bind()
	if err != nil {
		// Nothing was served, so the supervisor may be run again.
		s.mu.Lock()
		s.running = false
		s.listeners = nil
		s.mu.Unlock()
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range servers {
		srv, ln := servers[i], bound[i]
		s.metrics.ListenerUp(1)
		g.Go(func() error {
			defer s.metrics.ListenerUp(-1)
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listener %s: %w", ln.Addr(), err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown(servers)
	})

	close(s.ready)
	s.log.Info("mock listeners started", "listeners", len(s.idx.Sets), "exemplars", s.idx.Count())

	err = g.Wait()
	s.log.Info("mock listeners stopped")
	return err
}

func (s *Supervisor) bind() ([]*http.Server, []net.Listener, error) {
	var (
		servers []*http.Server
		bound   []net.Listener
	)
	closeAll := func() {
		for _, ln := range bound {
			_ = ln.Close()
		}
	}

	for _, set := range s.idx.Sets {
		addr := net.JoinHostPort(s.cfg.ListenHost, strconv.Itoa(set.Port))
		ln, err := s.listen("tcp", addr)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to listen for %s on %s: %w", set.Authority, addr, err)
		}
		bound = append(bound, ln)

		handler := NewHandler(set,
			WithHandlerLogger(s.log.With("authority", set.Authority)),
			WithPreserveStatus(s.cfg.PreserveStatus),
			WithHandlerMetrics(s.metrics),
		)
		servers = append(servers, s.newServer(handler))
		s.metrics.SetExemplars(set.Authority, set.Len())

		s.mu.Lock()
		s.listeners = append(s.listeners, Listener{
			Authority: set.Authority,
			Port:      set.Port,
			Addr:      ln.Addr().String(),
			Exemplars: set.Len(),
		})
		s.mu.Unlock()
		s.log.Info("serving authority", "authority", set.Authority, "addr", ln.Addr().String(), "exemplars", set.Len())
	}

	if s.cfg.MetricsPort > 0 {
		addr := net.JoinHostPort(s.cfg.ListenHost, strconv.Itoa(s.cfg.MetricsPort))
		ln, err := s.listen("tcp", addr)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to listen for metrics on %s: %w", addr, err)
		}
		bound = append(bound, ln)
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.registry.Handler())
		servers = append(servers, s.newServer(mux))

		s.mu.Lock()
		s.metricsAt = ln.Addr().String()
		s.mu.Unlock()
		s.log.Info("serving metrics", "addr", ln.Addr().String())
	}

	return servers, bound, nil
}

func (s *Supervisor) newServer(h http.Handler) *http.Server {
	return &http.Server{
		Handler:           h,
		ReadTimeout:       time.Duration(s.cfg.ReadTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.WriteTimeout) * time.Second,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}
}

func (s *Supervisor) shutdown(servers []*http.Server) error {
	timeout := time.Duration(s.cfg.ShutdownTimeout) * time.Second
	if timeout <= 0 {
		timeout = config.DefaultShutdownTimeout * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("shutdown: %w", errors.Join(errs...))
	}
	return nil
}
