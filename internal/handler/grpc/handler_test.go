package grpc

import (
	"context"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/internal/service"
)

// fakeConnectivity lets tests flip the connectivity state by hand.
type fakeConnectivity struct {
	mu       sync.Mutex
	online   bool
	watchers []func(ctx context.Context, online bool)
}

func (f *fakeConnectivity) Probe(context.Context) bool { return f.Online() }
func (f *fakeConnectivity) ReportOffline(ctx context.Context) {
	f.set(ctx, false)
}
func (f *fakeConnectivity) ReportOnline(ctx context.Context) {
	f.set(ctx, true)
}

func (f *fakeConnectivity) Online() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online
}

func (f *fakeConnectivity) Watch(fn func(ctx context.Context, online bool)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watchers = append(f.watchers, fn)
}

func (f *fakeConnectivity) set(ctx context.Context, online bool) {
	f.mu.Lock()
	f.online = online
	watchers := append([]func(context.Context, bool){}, f.watchers...)
	f.mu.Unlock()

	for _, fn := range watchers {
		fn(ctx, online)
	}
}

func check(t *testing.T, h *Handler, name string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()

	resp, err := h.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: name})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHandler_FollowsConnectivity(t *testing.T) {
	conn := &fakeConnectivity{}
	h := NewHandler(&service.Services{ConnectivityService: conn}, logger.Nop())

	for _, name := range []string{"", UpstreamServiceName} {
		assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, h, name))
	}

	conn.ReportOnline(context.Background())
	for _, name := range []string{"", UpstreamServiceName} {
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, h, name))
	}

	conn.ReportOffline(context.Background())
	for _, name := range []string{"", UpstreamServiceName} {
		assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, h, name))
	}

	conn.ReportOnline(context.Background())
	h.Shutdown()
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, h, ""))
}

func TestHandler_StartsOnline(t *testing.T) {
	h := NewHandler(&service.Services{ConnectivityService: &fakeConnectivity{online: true}}, logger.Nop())

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, h, UpstreamServiceName))
}

func TestHandler_Register(t *testing.T) {
	conn := &fakeConnectivity{online: true}
	h := NewHandler(&service.Services{ConnectivityService: conn}, logger.Nop())

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := grpc.NewServer()
	h.Register(srv)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	cc, err := grpc.NewClient("passthrough:///"+lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cc.Close() })

	client := healthpb.NewHealthClient(cc)

	resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: UpstreamServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	_, err = client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "unknown"})
	assert.Error(t, err)
}
