package detection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"ppe-monitor-go/internal/models"
)

const (
	DetectMethod  = "/ppe.v1.Detector/Detect"
	HealthService = "ppe.v1.Detector"

	defaultHealthTimeout = 3 * time.Second
	minReconnectBackoff  = 500 * time.Millisecond
	maxReconnectBackoff  = 30 * time.Second
)

// ErrUnavailable is returned while the inference server is unreachable.
// Reconnects are spaced out with exponential backoff, so most calls during an
// outage fail without touching the network.
var ErrUnavailable = errors.New("detection service unavailable")

// Service is a Detector backed by a remote inference server. Frames are sent
// as JPEG bytes; detections come back as a list of
// {label, confidence, x1, y1, x2, y2} structs in frame pixels.
type Service struct {
	grpcURL  string
	timeout  time.Duration
	dialOpts []grpc.DialOption

	mu          sync.Mutex
	conn        *grpc.ClientConn
	health      healthpb.HealthClient
	isHealthy   bool
	lastAttempt time.Time
	backoff     time.Duration

	// now is replaced in tests
	now func() time.Time
}

func NewService(grpcURL string, timeout time.Duration, opts ...grpc.DialOption) (*Service, error) {
	log.Info().Str("url", grpcURL).Msg("Initializing AI detection service")

	service := &Service{
		grpcURL:  grpcURL,
		timeout:  timeout,
		dialOpts: append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...),
		now:      time.Now,
	}

	// Try to connect, but don't fail if it's not available
	if err := service.reconnect(); err != nil {
		log.Warn().Err(err).Msg("AI detection service not available, will retry later")
	}

	return service, nil
}

// connect dials and health checks a new connection without holding the lock,
// then swaps it in.
func (s *Service) connect() error {
	conn, err := grpc.NewClient(s.grpcURL, s.dialOpts...)
	if err != nil {
		return fmt.Errorf("failed to connect to detection service: %w", err)
	}

	health := healthpb.NewHealthClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), s.healthTimeout())
	defer cancel()

	resp, err := health.Check(ctx, &healthpb.HealthCheckRequest{Service: HealthService})
	if err != nil {
		conn.Close()
		return fmt.Errorf("detection service health check failed: %w", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		conn.Close()
		return fmt.Errorf("detection service not serving: %s", resp.GetStatus())
	}

	s.mu.Lock()
	old := s.conn
	s.conn = conn
	s.health = health
	s.isHealthy = true
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}

	log.Info().Msg("Successfully connected to AI detection service")
	return nil
}

// reconnect runs one connection attempt and updates the backoff.
func (s *Service) reconnect() error {
	s.mu.Lock()
	s.lastAttempt = s.now()
	s.mu.Unlock()

	err := s.connect()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.backoff = min(max(2*s.backoff, minReconnectBackoff), maxReconnectBackoff)
		return err
	}
	s.backoff = 0
	return nil
}

func (s *Service) ensureConnection() error {
	s.mu.Lock()
	ready := s.isHealthy && s.conn != nil
	wait := s.lastAttempt.Add(s.backoff).Sub(s.now())
	s.mu.Unlock()
	if ready {
		return nil
	}
	if wait > 0 {
		return fmt.Errorf("%w: retrying in %s", ErrUnavailable, wait.Round(time.Millisecond))
	}

	if err := s.reconnect(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Service) healthTimeout() time.Duration {
	if s.timeout > 0 {
		return s.timeout
	}
	return defaultHealthTimeout
}

// Detect encodes frame as JPEG and runs remote inference on it.
func (s *Service) Detect(ctx context.Context, frame gocv.Mat) ([]models.Detection, error) {
	if frame.Empty() {
		return nil, nil
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	return s.DetectJPEG(ctx, buf.GetBytes(), frame.Cols(), frame.Rows())
}

// DetectJPEG sends an encoded frame of the given size to the server.
func (s *Service) DetectJPEG(ctx context.Context, jpeg []byte, width, height int) ([]models.Detection, error) {
	if err := s.ensureConnection(); err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	resp := &structpb.ListValue{}
	if err := conn.Invoke(ctx, DetectMethod, wrapperspb.Bytes(jpeg), resp); err != nil {
		s.markUnhealthy()
		return nil, err
	}
	log.Debug().Int("detections", len(resp.GetValues())).Msg("Detection response")

	return parseDetections(resp, width, height)
}

func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.ensureConnection(); err != nil {
		return err
	}

	s.mu.Lock()
	health := s.health
	s.mu.Unlock()

	if _, err := health.Check(ctx, &healthpb.HealthCheckRequest{Service: HealthService}); err != nil {
		s.markUnhealthy()
		return err
	}
	return nil
}

func (s *Service) IsHealthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isHealthy
}

func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		log.Info().Msg("Shutting down detection service connection")
		err := s.conn.Close()
		s.conn = nil
		s.isHealthy = false
		return err
	}
	return nil
}

func (s *Service) markUnhealthy() {
	s.mu.Lock()
	s.isHealthy = false
	s.mu.Unlock()
}

func parseDetections(list *structpb.ListValue, width, height int) ([]models.Detection, error) {
	values := list.GetValues()
	detections := make([]models.Detection, 0, len(values))
	for i, v := range values {
		fields := v.GetStructValue().GetFields()
		if fields == nil {
			return nil, fmt.Errorf("detection %d is not an object", i)
		}

		label := fields["label"].GetStringValue()
		if label == "" {
			return nil, fmt.Errorf("detection %d has no label", i)
		}

		det := models.Detection{
			Label:      label,
			Confidence: float32(fields["confidence"].GetNumberValue()),
			Box: models.Box{
				X1: int(fields["x1"].GetNumberValue()),
				Y1: int(fields["y1"].GetNumberValue()),
				X2: int(fields["x2"].GetNumberValue()),
				Y2: int(fields["y2"].GetNumberValue()),
			},
		}
		det.Box = det.Box.Clamp(width, height)
		detections = append(detections, det)
	}
	return detections, nil
}
