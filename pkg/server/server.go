// Package server issues DICOM UIDs over HTTP.
//
//	GET /uid            one fresh UID
//	GET /uid?count=N    N fresh UIDs, one per line
//	GET /uid/{uuid}     the UID derived from the given UUID
//	GET /healthz        liveness
//	GET /metrics        prometheus exposition
//
// Every UID in a response body is terminated by a newline.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jpfielding/dicomuid/pkg/logging"
	"github.com/jpfielding/dicomuid/pkg/uid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// Config holds the service settings.
type Config struct {
	Addr string
	// Rate is the sustained requests per second allowed per client; <= 0 disables limiting.
	Rate  float64
	Burst int
	// MaxBatch caps the count parameter.
	MaxBatch        int
	ShutdownTimeout time.Duration
	// SweepInterval is how often idle client buckets are dropped.
	SweepInterval time.Duration
}

// DefaultConfig returns the settings used by uidctl serve.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		Rate:            50,
		Burst:           100,
		MaxBatch:        1000,
		ShutdownTimeout: 10 * time.Second,
		SweepInterval:   time.Minute,
	}
}

// Server serves UIDs from a generator.
type Server struct {
	cfg     Config
	gen     *uid.Generator
	limiter *Limiter
	metrics *Metrics
	gather  prometheus.Gatherer
	log     *slog.Logger
}

// New creates a Server registering its metrics with reg. A nil gen uses the
// default UUID source.
func New(cfg Config, reg *prometheus.Registry, gen *uid.Generator, log *slog.Logger) *Server {
	if gen == nil {
		gen = uid.NewGenerator(nil)
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxBatch < 1 {
		cfg.MaxBatch = 1
	}
	return &Server{
		cfg:     cfg,
		gen:     gen,
		limiter: NewLimiter(cfg.Rate, cfg.Burst),
		metrics: NewMetrics(reg),
		gather:  reg,
		log:     log,
	}
}

// Handler returns the routes of the service.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /uid", s.route("generate", s.handleGenerate))
	mux.Handle("GET /uid/{uuid}", s.route("encode", s.handleEncode))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))
	return mux
}

// route applies rate limiting, request scoped log attributes and latency
// observation to a UID handler.
func (s *Server) route(name string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			s.metrics.RequestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		}()

		client := clientKey(r)
		ctx := logging.AppendCtx(r.Context(),
			slog.String("route", name),
			slog.String("client", client),
		)
		if !s.limiter.Allow(client) {
			s.metrics.RateLimited.Inc()
			s.log.DebugContext(ctx, "rate limited")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		h(w, r.WithContext(ctx))
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	count := 1
	if v := r.URL.Query().Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > s.cfg.MaxBatch {
			http.Error(w, fmt.Sprintf("count must be between 1 and %d", s.cfg.MaxBatch), http.StatusBadRequest)
			return
		}
		count = n
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for i := 0; i < count; i++ {
		if err := s.gen.NextTo(w); err != nil {
			s.writeFailed(r.Context(), err)
			return
		}
		if _, err := w.Write([]byte{'\n'}); err != nil {
			s.writeFailed(r.Context(), err)
			return
		}
		s.metrics.Issued.WithLabelValues("generate").Inc()
	}
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	u, err := uuid.Parse(r.PathValue("uuid"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid uuid: %v", err), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := uid.EncodeTo(w, u); err != nil {
		s.writeFailed(r.Context(), err)
		return
	}
	if _, err := w.Write([]byte{'\n'}); err != nil {
		s.writeFailed(r.Context(), err)
		return
	}
	s.metrics.Issued.WithLabelValues("encode").Inc()
}

func (s *Server) writeFailed(ctx context.Context, err error) {
	s.metrics.WriteErrors.Inc()
	s.log.WarnContext(ctx, "failed to write uid", "error", err)
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Serve accepts connections on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		s.log.InfoContext(ctx, "serving uids", "addr", ln.Addr().String())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		sctx, cnc := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cnc()
		s.log.InfoContext(ctx, "shutting down")
		return srv.Shutdown(sctx)
	})
	if s.cfg.SweepInterval > 0 {
		eg.Go(func() error {
			t := time.NewTicker(s.cfg.SweepInterval)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-t.C:
					if n := s.limiter.Sweep(s.cfg.SweepInterval); n > 0 {
						s.log.DebugContext(ctx, "dropped idle clients", "count", n)
					}
				}
			}
		})
	}
	return eg.Wait()
}

// Run listens on cfg.Addr and serves until ctx is done.
func Run(ctx context.Context, cfg Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}
	return New(cfg, reg, nil, log).Serve(ctx, ln)
}
