// Package health serves the standard gRPC health protocol for the catalog,
// reporting NOT_SERVING while the store cannot answer a probe query.
package health

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/murkotick/storefront-catalog/internal/models/m_product"
	"github.com/murkotick/storefront-catalog/internal/statement"
	"github.com/murkotick/storefront-catalog/internal/store"
)

// ServiceName is the health service name clients should query.
const ServiceName = "storefront.catalog.v1.Catalog"

const defaultInterval = 15 * time.Second

// StoreProbe runs a single-row read against the products table.
type StoreProbe struct {
	Exec    store.Executor
	Builder *statement.Builder
	Timeout time.Duration
}

func (p *StoreProbe) Check(ctx context.Context) error {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	st, err := p.Builder.Select(m_product.TableName, []string{m_product.ColID}, nil, false)
	if err != nil {
		return err
	}
	_, err = p.Exec.Execute(ctx, st.Query, st.Params, store.QueryOptions{FetchSize: 1})
	return err
}

type Prober interface {
	Check(ctx context.Context) error
}

// Server owns the grpc.Server and the health status it reports.
type Server struct {
	grpc     *grpc.Server
	health   *grpchealth.Server
	prober   Prober
	interval time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	stopped bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

func NewServer(prober Prober, interval time.Duration, log *zap.Logger) *Server {
	if interval <= 0 {
		interval = defaultInterval
	}
	gs := grpc.NewServer()
	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Server{
		grpc:     gs,
		health:   hs,
		prober:   prober,
		interval: interval,
		log:      log,
		stop:     make(chan struct{}),
	}
}

// Probe checks the store once and publishes the result.
func (s *Server) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := s.prober.Check(ctx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		s.log.Warn("store probe failed", zap.Error(err))
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
	return status
}

// Serve blocks serving on ln until Stop. After Stop it closes ln and returns nil.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ln.Close()
	}
	s.wg.Add(1)
	s.mu.Unlock()
	go s.loop()

	err := s.grpc.Serve(ln)
	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}

func (s *Server) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	select {
	case <-s.stop:
		return
	default:
		s.Probe(context.Background())
	}
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.Probe(context.Background())
		}
	}
}

// Stop marks the service as not serving and drains in-flight RPCs.
// No status check runs once Stop has returned.
func (s *Server) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.stop)
	s.mu.Unlock()

	s.health.Shutdown()
	s.grpc.GracefulStop()
	s.wg.Wait()
}

// Run starts s on addr with the fx lifecycle.
func Run(lc fx.Lifecycle, addr string, s *Server) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			s.log.Info("grpc health server listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := s.Serve(ln); err != nil {
					s.log.Error("grpc server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			s.Stop()
			return nil
		},
	})
}
