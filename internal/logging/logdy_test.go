package logging

import (
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppe-monitor-go/internal/config"
)

func TestLogdyAddr(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		want    string
		wantErr bool
	}{
		{name: "valid", cfg: config.Config{LogdyHost: "localhost", LogdyPort: 8080, ConsolePort: 8000, ConsoleEnabled: true}, want: "localhost:8080"},
		{name: "empty host", cfg: config.Config{LogdyPort: 8080}, wantErr: true},
		{name: "port out of range", cfg: config.Config{LogdyHost: "localhost", LogdyPort: 70000}, wantErr: true},
		{name: "console port clash", cfg: config.Config{LogdyHost: "localhost", LogdyPort: 8000, ConsolePort: 8000, ConsoleEnabled: true}, wantErr: true},
		{name: "console disabled", cfg: config.Config{LogdyHost: "localhost", LogdyPort: 8000, ConsolePort: 8000}, want: "localhost:8000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := logdyAddr(&tt.cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrLogdyConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, addr)
		})
	}
}

func TestStartLogdyRejectsBusyPort(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer lis.Close()
	port := lis.Addr().(*net.TCPAddr).Port

	w, url, err := StartLogdy(&config.Config{LogdyHost: "127.0.0.1", LogdyPort: port})

	assert.ErrorContains(t, err, strconv.Itoa(port))
	assert.Nil(t, w)
	assert.Empty(t, url)
}
