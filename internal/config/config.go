package config

import (
	"crypto/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// DefaultLabels is the class list of the bundled PPE model, in model output order.
var DefaultLabels = []string{
	"Hardhat",
	"Mask",
	"NO-Hardhat",
	"NO-Mask",
	"NO-Safety Vest",
	"Person",
	"Safety Cone",
	"Safety Vest",
	"Machinery",
	"Vehicle",
}

type Config struct {
	// Application
	Version     string
	Environment string
	LogLevel    string

	// Logdy (lightweight web log viewer)
	LogdyEnabled bool
	LogdyHost    string
	LogdyPort    int

	// Mail
	SenderEmail   string
	EmailPassword string
	ReceiverEmail string
	SMTPHost      string
	SMTPPort      int

	// Camera
	CameraIndex  int
	FrameWidth   int
	FrameHeight  int
	TickInterval time.Duration

	// Detector
	DetectorBackend     string // "onnx" or "grpc"
	ModelPath           string
	ModelLabels         []string
	ConfidenceThreshold float32
	NMSThreshold        float32
	DetectorGRPCURL     string
	DetectorTimeout     time.Duration

	// Alerting
	AlertCooldown       time.Duration
	AlertBannerDuration time.Duration
	SnapshotPath        string
	BeepFrequency       float64
	BeepDuration        time.Duration

	// Credentials
	CredentialsFile string

	// Desktop window
	WindowEnabled bool

	// Web console
	ConsoleEnabled    bool
	ConsolePort       int
	ConsoleJWTSecret  string
	ConsoleSessionTTL time.Duration

	// EphemeralJWTSecret is set when CONSOLE_JWT_SECRET was unset and a
	// per-process key was generated; sessions end when the process exits.
	EphemeralJWTSecret bool

	// Alert events via NATS (empty URL disables)
	NatsURL            string
	AlertsSubject      string
	NatsConnectTimeout time.Duration

	// Graceful Shutdown
	ShutdownTimeout time.Duration
}

func Load() *Config {
	// Load .env file if it exists; its values replace the process environment.
	if err := godotenv.Overload(); err != nil {
		log.Debug().Err(err).Msg("No .env file found or error loading .env file, using environment variables and defaults")
	} else {
		log.Info().Msg("Loaded configuration from .env file")
	}

	cfg := &Config{
		// Application
		Version:     getEnv("VERSION", "1.0.0"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Logdy
		LogdyEnabled: getEnvBool("LOGDY_ENABLED", false),
		LogdyHost:    getEnv("LOGDY_HOST", "localhost"),
		LogdyPort:    getEnvInt("LOGDY_PORT", 8080),

		// Mail
		SenderEmail:   os.Getenv("SENDER_EMAIL"),
		EmailPassword: os.Getenv("EMAIL_PASSWORD"),
		ReceiverEmail: os.Getenv("RECEIVER_EMAIL"),
		SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),

		// Camera
		CameraIndex:  getEnvInt("CAMERA_INDEX", 0),
		FrameWidth:   getEnvInt("FRAME_WIDTH", 640),
		FrameHeight:  getEnvInt("FRAME_HEIGHT", 480),
		TickInterval: getEnvDuration("TICK_INTERVAL", 10*time.Millisecond),

		// Detector
		DetectorBackend:     strings.ToLower(getEnv("DETECTOR_BACKEND", "onnx")),
		ModelPath:           getEnv("MODEL_PATH", "Model/ppe.onnx"),
		ModelLabels:         getEnvList("MODEL_LABELS", DefaultLabels),
		ConfidenceThreshold: getEnvFloat32("CONFIDENCE_THRESHOLD", 0.25),
		NMSThreshold:        getEnvFloat32("NMS_THRESHOLD", 0.45),
		DetectorGRPCURL:     getEnv("DETECTOR_GRPC_URL", "localhost:50052"),
		DetectorTimeout:     getEnvDuration("DETECTOR_TIMEOUT", 2*time.Second),

		// Alerting
		AlertCooldown:       getEnvDuration("ALERT_COOLDOWN", 10*time.Second),
		AlertBannerDuration: getEnvDuration("ALERT_BANNER_DURATION", 3*time.Second),
		SnapshotPath:        getEnv("SNAPSHOT_PATH", "no_hardhat.jpg"),
		BeepFrequency:       float64(getEnvFloat32("BEEP_FREQUENCY", 1000)),
		BeepDuration:        getEnvDuration("BEEP_DURATION", 3*time.Second),

		// Credentials
		CredentialsFile: getEnv("CREDENTIALS_FILE", "users.json"),

		// Desktop window
		WindowEnabled: getEnvBool("WINDOW_ENABLED", true),

		// Web console
		ConsoleEnabled:    getEnvBool("CONSOLE_ENABLED", true),
		ConsolePort:       getEnvInt("CONSOLE_PORT", 8000),
		ConsoleJWTSecret:  os.Getenv("CONSOLE_JWT_SECRET"),
		ConsoleSessionTTL: getEnvDuration("CONSOLE_SESSION_TTL", 12*time.Hour),

		// Alert events
		NatsURL:            os.Getenv("NATS_URL"),
		AlertsSubject:      getEnv("ALERTS_SUBJECT", "alerts.ppe"),
		NatsConnectTimeout: getEnvDuration("NATS_CONNECT_TIMEOUT", 5*time.Second),

		// Graceful Shutdown
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
	}

	if cfg.ConsoleJWTSecret == "" {
		cfg.ConsoleJWTSecret = rand.Text()
		cfg.EphemeralJWTSecret = true
	}
	return cfg
}

// MailConfigured reports whether all three mail settings are present.
func (c *Config) MailConfigured() bool {
	return c.SenderEmail != "" && c.EmailPassword != "" && c.ReceiverEmail != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(parsed)
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultValue...)
	}
	return out
}
