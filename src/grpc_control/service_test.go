package grpc_control

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"trade-dashboard/src/helpers"
	"trade-dashboard/src/logger"
	"trade-dashboard/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type MockBackendClient struct {
	mock.Mock
}

func (m *MockBackendClient) Send(ctx context.Context, req models.MRequest) ([]byte, error) {
	args := m.Called(ctx, req)
	body, _ := args.Get(0).([]byte)
	return body, args.Error(1)
}

func newService(client *MockBackendClient) *ControlService {
	cfg := &models.MConfig{Network: models.MNetworkConfig{RequestTimeout: 1}}
	return NewControlService(cfg, logger.NewNopLogger(), client)
}

func backendStatus(t *testing.T, cs *ControlService) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := cs.Health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: BackendService})
	require.NoError(t, err)
	return resp.Status
}

// -----------------------------------------------------------------------------

func TestProbe(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want healthpb.HealthCheckResponse_ServingStatus
	}{
		{"ok", nil, healthpb.HealthCheckResponse_SERVING},
		{"expired session", helpers.NewAuthError(nil), healthpb.HealthCheckResponse_SERVING},
		{"client error", helpers.NewTransportError("Not found", 404, nil), healthpb.HealthCheckResponse_SERVING},
		{"server error", helpers.NewTransportError("Internal error", 503, nil), healthpb.HealthCheckResponse_NOT_SERVING},
		{"unreachable", helpers.NewTransportError("Connection refused", 0, errors.New("dial tcp")), healthpb.HealthCheckResponse_NOT_SERVING},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := new(MockBackendClient)
			client.On("Send", mock.Anything, probeRequest).Return([]byte(`{"success":true,"data":[]}`), tc.err)

			cs := newService(client)
			assert.Equal(t, healthpb.HealthCheckResponse_UNKNOWN, backendStatus(t, cs))

			assert.Equal(t, tc.want, cs.Probe(context.Background()))
			assert.Equal(t, tc.want, backendStatus(t, cs))
			client.AssertExpectations(t)
		})
	}
}

// -----------------------------------------------------------------------------

func TestRunProbe_StopsWithContext(t *testing.T) {
	client := new(MockBackendClient)
	client.On("Send", mock.Anything, probeRequest).Return([]byte(`{}`), nil)
	cs := newService(client)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cs.RunProbe(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		resp, err := cs.Health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: BackendService})
		return err == nil && resp.Status == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("probe loop did not stop")
	}
}

// -----------------------------------------------------------------------------

func TestServeListener_HealthOverTheWire(t *testing.T) {
	client := new(MockBackendClient)
	client.On("Send", mock.Anything, probeRequest).Return(nil, helpers.NewTransportError("Bad gateway", 502, nil))
	cs := newService(client)
	cs.Probe(context.Background())

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go cs.ServeListener(lis)
	t.Cleanup(cs.Stop)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hc := healthpb.NewHealthClient(conn)

	overall, err := hc.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, overall.Status)

	backend, err := hc.Check(ctx, &healthpb.HealthCheckRequest{Service: BackendService})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, backend.Status)
}
