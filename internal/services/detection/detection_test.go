package detection

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"ppe-monitor-go/internal/models"
)

// yoloTensor lays out columns of (cx, cy, w, h, scores...) in [4+C, N] order.
func yoloTensor(classes int, columns ...[]float32) []float32 {
	rows := 4 + classes
	anchors := len(columns)
	data := make([]float32, rows*anchors)
	for i, col := range columns {
		for r := 0; r < rows; r++ {
			data[r*anchors+i] = col[r]
		}
	}
	return data
}

func TestDecodeYOLOv8(t *testing.T) {
	labels := []string{"Hardhat", "Person"}
	data := yoloTensor(2,
		[]float32{100, 100, 40, 20, 0.9, 0.1},
		[]float32{320, 320, 64, 128, 0.2, 0.7},
		[]float32{10, 10, 4, 4, 0.1, 0.1},
	)

	dets, err := decodeYOLOv8(data, 6, 3, labels, 0.25, 1, 0.75)
	require.NoError(t, err)
	require.Len(t, dets, 2)

	assert.Equal(t, "Hardhat", dets[0].Label)
	assert.InDelta(t, 0.9, dets[0].Confidence, 1e-6)
	assert.Equal(t, models.Box{X1: 80, Y1: 67, X2: 120, Y2: 82}, dets[0].Box)

	assert.Equal(t, "Person", dets[1].Label)
	assert.Equal(t, models.Box{X1: 288, Y1: 192, X2: 352, Y2: 288}, dets[1].Box)
}

func TestDecodeYOLOv8UnknownClass(t *testing.T) {
	data := yoloTensor(2, []float32{50, 50, 10, 10, 0, 0.8})

	dets, err := decodeYOLOv8(data, 6, 1, []string{"Hardhat"}, 0.25, 1, 1)
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, "class_1", dets[0].Label)
}

func TestDecodeYOLOv8RejectsBadShape(t *testing.T) {
	_, err := decodeYOLOv8(make([]float32, 4), 4, 1, nil, 0.25, 1, 1)
	assert.Error(t, err)

	_, err = decodeYOLOv8(make([]float32, 5), 6, 2, nil, 0.25, 1, 1)
	assert.Error(t, err)
}

func TestParseDetections(t *testing.T) {
	list, err := structpb.NewList([]interface{}{
		map[string]interface{}{"label": "Person", "confidence": 0.8, "x1": 10, "y1": 20, "x2": 700, "y2": 100},
	})
	require.NoError(t, err)

	dets, err := parseDetections(list, 640, 480)
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, "Person", dets[0].Label)
	assert.Equal(t, models.Box{X1: 10, Y1: 20, X2: 639, Y2: 100}, dets[0].Box)

	bad, err := structpb.NewList([]interface{}{"Person"})
	require.NoError(t, err)
	_, err = parseDetections(bad, 640, 480)
	assert.Error(t, err)

	unlabeled, err := structpb.NewList([]interface{}{map[string]interface{}{"confidence": 0.5}})
	require.NoError(t, err)
	_, err = parseDetections(unlabeled, 640, 480)
	assert.Error(t, err)
}

type stubDetector struct {
	received     chan []byte
	health       *health.Server
	healthChecks atomic.Int32
}

func startStubServer(t *testing.T, status healthpb.HealthCheckResponse_ServingStatus) (*bufconn.Listener, *stubDetector) {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	stub := &stubDetector{received: make(chan []byte, 1)}
	srv := grpc.NewServer(grpc.UnaryInterceptor(func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if info.FullMethod == healthpb.Health_Check_FullMethodName {
			stub.healthChecks.Add(1)
		}
		return handler(ctx, req)
	}))

	srv.RegisterService(&grpc.ServiceDesc{
		ServiceName: HealthService,
		HandlerType: (*interface{})(nil),
		Methods: []grpc.MethodDesc{{
			MethodName: "Detect",
			Handler: func(_ interface{}, ctx context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
				in := &wrapperspb.BytesValue{}
				if err := dec(in); err != nil {
					return nil, err
				}
				stub.received <- in.GetValue()
				return structpb.NewList([]interface{}{
					map[string]interface{}{"label": "Person", "confidence": 0.91, "x1": 1, "y1": 2, "x2": 30, "y2": 40},
					map[string]interface{}{"label": "Hardhat", "confidence": 0.55, "x1": 5, "y1": 2, "x2": 20, "y2": 10},
				})
			},
		}},
	}, struct{}{})

	stub.health = health.NewServer()
	stub.health.SetServingStatus(HealthService, status)
	healthpb.RegisterHealthServer(srv, stub.health)

	go srv.Serve(lis)
	t.Cleanup(srv.Stop)
	return lis, stub
}

func dialer(lis *bufconn.Listener) grpc.DialOption {
	return grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})
}

func TestServiceDetectJPEG(t *testing.T) {
	lis, stub := startStubServer(t, healthpb.HealthCheckResponse_SERVING)

	svc, err := NewService("passthrough:///bufnet", time.Second, dialer(lis))
	require.NoError(t, err)
	defer svc.Close()
	require.True(t, svc.IsHealthy())

	dets, err := svc.DetectJPEG(context.Background(), []byte{0xff, 0xd8, 0xff}, 640, 480)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, <-stub.received)

	require.Len(t, dets, 2)
	assert.Equal(t, models.Tally(dets), models.FrameCounts{Hardhats: 1, People: 1})
	assert.Equal(t, models.Box{X1: 1, Y1: 2, X2: 30, Y2: 40}, dets[0].Box)

	require.NoError(t, svc.HealthCheck(context.Background()))
}

func TestServiceNotServing(t *testing.T) {
	lis, _ := startStubServer(t, healthpb.HealthCheckResponse_NOT_SERVING)

	svc, err := NewService("passthrough:///bufnet", time.Second, dialer(lis))
	require.NoError(t, err, "construction tolerates an unavailable backend")
	defer svc.Close()

	assert.False(t, svc.IsHealthy())
	_, err = svc.DetectJPEG(context.Background(), []byte{1}, 640, 480)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorContains(t, err, "detection service unavailable")
}

func TestServiceBacksOffWhileUnavailable(t *testing.T) {
	lis, stub := startStubServer(t, healthpb.HealthCheckResponse_NOT_SERVING)

	svc, err := NewService("passthrough:///bufnet", time.Second, dialer(lis))
	require.NoError(t, err)
	defer svc.Close()
	require.EqualValues(t, 1, stub.healthChecks.Load())

	clock := time.Now()
	svc.now = func() time.Time { return clock }
	detect := func() error {
		_, err := svc.DetectJPEG(context.Background(), []byte{1}, 640, 480)
		return err
	}

	// Within the first backoff window nothing is dialled.
	for range 5 {
		assert.ErrorIs(t, detect(), ErrUnavailable)
	}
	assert.EqualValues(t, 1, stub.healthChecks.Load())

	clock = clock.Add(minReconnectBackoff)
	assert.ErrorIs(t, detect(), ErrUnavailable)
	assert.EqualValues(t, 2, stub.healthChecks.Load())

	// The window doubles after each failed attempt.
	clock = clock.Add(minReconnectBackoff)
	assert.ErrorIs(t, detect(), ErrUnavailable)
	assert.EqualValues(t, 2, stub.healthChecks.Load())

	stub.health.SetServingStatus(HealthService, healthpb.HealthCheckResponse_SERVING)
	clock = clock.Add(2 * minReconnectBackoff)
	require.NoError(t, detect())
	assert.EqualValues(t, 3, stub.healthChecks.Load())
	assert.True(t, svc.IsHealthy())
	<-stub.received
}

func TestServiceHealthTimeoutFollowsDetectorTimeout(t *testing.T) {
	assert.Equal(t, 250*time.Millisecond, (&Service{timeout: 250 * time.Millisecond}).healthTimeout())
	assert.Equal(t, defaultHealthTimeout, (&Service{}).healthTimeout())
}
