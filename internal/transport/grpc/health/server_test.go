package health

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/murkotick/storefront-catalog/internal/models/m_product"
	"github.com/murkotick/storefront-catalog/internal/schema"
	"github.com/murkotick/storefront-catalog/internal/statement"
	"github.com/murkotick/storefront-catalog/internal/store/memstore"
)

type switchProber struct{ fail atomic.Bool }

func (p *switchProber) Check(context.Context) error {
	if p.fail.Load() {
		return errors.New("no hosts available")
	}
	return nil
}

func TestStoreProbe(t *testing.T) {
	reg := schema.NewRegistry()
	require.NoError(t, reg.Register(m_product.Descriptor()))
	probe := &StoreProbe{Exec: memstore.New(reg), Builder: statement.NewBuilder(reg), Timeout: time.Second}
	require.NoError(t, probe.Check(context.Background()))

	missing := &StoreProbe{Exec: memstore.New(schema.NewRegistry()), Builder: statement.NewBuilder(reg)}
	require.Error(t, missing.Check(context.Background()))
}

func TestProbe_PublishesStatus(t *testing.T) {
	prober := &switchProber{}
	s := NewServer(prober, time.Hour, zap.NewNop())

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, s.Probe(context.Background()))
	prober.fail.Store(true)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, s.Probe(context.Background()))
}

func TestServe_HealthCheckOverGRPC(t *testing.T) {
	s := NewServer(&switchProber{}, time.Hour, zap.NewNop())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()

	conn, err := grpc.NewClient(ln.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	client := healthpb.NewHealthClient(conn)
	require.Eventually(t, func() bool {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
	}, 5*time.Second, 20*time.Millisecond)

	s.Stop()
	require.NoError(t, <-done)
}

type countingProber struct{ calls atomic.Int64 }

func (p *countingProber) Check(context.Context) error {
	p.calls.Add(1)
	return nil
}

func TestStop_NoStatusCheckAfterReturn(t *testing.T) {
	for range 50 {
		prober := &countingProber{}
		s := NewServer(prober, time.Hour, zap.NewNop())
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() { done <- s.Serve(ln) }()
		s.Stop()

		after := prober.calls.Load()
		require.NoError(t, <-done)
		time.Sleep(5 * time.Millisecond)
		assert.Equal(t, after, prober.calls.Load())
	}
}

func TestServe_AfterStopReturnsImmediately(t *testing.T) {
	prober := &countingProber{}
	s := NewServer(prober, time.Hour, zap.NewNop())
	s.Stop()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, s.Serve(ln))
	assert.Zero(t, prober.calls.Load())
}
