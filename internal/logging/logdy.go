package logging

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/logdyhq/logdy-core/logdy"
	"github.com/rs/zerolog/log"

	"ppe-monitor-go/internal/config"
)

var ErrLogdyConfig = errors.New("invalid logdy settings")

// logdyWriter forwards each zerolog JSON line to the Logdy UI.
type logdyWriter struct {
	logger logdy.Logdy
}

func (w *logdyWriter) Write(p []byte) (n int, err error) {
	line := bytes.TrimRight(p, "\r\n")
	if len(line) > 0 {
		w.logger.LogString(string(line))
	}
	return len(p), nil
}

func logdyAddr(cfg *config.Config) (string, error) {
	if cfg.LogdyHost == "" {
		return "", fmt.Errorf("%w: LOGDY_HOST is empty", ErrLogdyConfig)
	}
	if cfg.LogdyPort < 1 || cfg.LogdyPort > 65535 {
		return "", fmt.Errorf("%w: LOGDY_PORT %d out of range", ErrLogdyConfig, cfg.LogdyPort)
	}
	if cfg.ConsoleEnabled && cfg.LogdyPort == cfg.ConsolePort {
		return "", fmt.Errorf("%w: LOGDY_PORT %d is also the web console port", ErrLogdyConfig, cfg.LogdyPort)
	}
	return net.JoinHostPort(cfg.LogdyHost, strconv.Itoa(cfg.LogdyPort)), nil
}

// StartLogdy starts the embedded Logdy web UI and returns a writer to tee
// logs into, plus the UI URL. Logdy binds in the background and never reports
// a failed bind, so the address is checked up front.
func StartLogdy(cfg *config.Config) (io.Writer, string, error) {
	addr, err := logdyAddr(cfg)
	if err != nil {
		return nil, "", err
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", fmt.Errorf("logdy address %s unavailable: %w", addr, err)
	}
	lis.Close()

	ld := logdy.InitializeLogdy(logdy.Config{
		ServerIp:   cfg.LogdyHost,
		ServerPort: strconv.Itoa(cfg.LogdyPort),
	}, nil)

	url := "http://" + addr
	log.Info().Str("url", url).Msg("Logdy UI available")
	return &logdyWriter{logger: ld}, url, nil
}
