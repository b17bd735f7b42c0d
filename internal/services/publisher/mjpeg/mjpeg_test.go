package mjpeg

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamServesLatestFrame(t *testing.T) {
	p := NewPublisher()
	p.PublishJPEG([]byte("frame-1"))

	srv := httptest.NewServer(http.HandlerFunc(p.StreamMJPEGHTTP))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/x-mixed-replace", mediaType)

	reader := multipart.NewReader(resp.Body, params["boundary"])

	part, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", part.Header.Get("Content-Type"))
	assert.Equal(t, "frame-1", readPart(t, part))

	require.Eventually(t, func() bool { return p.Viewers() == 1 }, time.Second, 10*time.Millisecond)
	p.PublishJPEG([]byte("frame-2"))

	part, err = reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "frame-2", readPart(t, part))

	cancel()
	assert.Eventually(t, func() bool { return p.Viewers() == 0 }, time.Second, 10*time.Millisecond)
}

func TestCloseEndsStreamsForShutdown(t *testing.T) {
	p := NewPublisher()
	p.PublishJPEG([]byte("frame-1"))

	srv := httptest.NewUnstartedServer(http.HandlerFunc(p.StreamMJPEGHTTP))
	srv.Config.RegisterOnShutdown(p.Close)
	srv.Start()
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	require.NoError(t, err)
	part, err := multipart.NewReader(resp.Body, params["boundary"]).NextPart()
	require.NoError(t, err)
	assert.Equal(t, "frame-1", readPart(t, part))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	started := time.Now()
	require.NoError(t, srv.Config.Shutdown(ctx))
	assert.Less(t, time.Since(started), keepalive)
	assert.Eventually(t, func() bool { return p.Viewers() == 0 }, time.Second, 10*time.Millisecond)

	w := httptest.NewRecorder()
	p.StreamMJPEGHTTP(w, httptest.NewRequest(http.MethodGet, "/stream.mjpg", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// readPart reads exactly Content-Length bytes so the read does not wait for
// the next boundary.
func readPart(t *testing.T, part *multipart.Part) string {
	t.Helper()

	n, err := strconv.Atoi(part.Header.Get("Content-Length"))
	require.NoError(t, err)
	buf := make([]byte, n)
	_, err = io.ReadFull(part, buf)
	require.NoError(t, err)
	return string(buf)
}

func TestLatestJPEG(t *testing.T) {
	p := NewPublisher()
	assert.Nil(t, p.LatestJPEG())

	p.PublishJPEG([]byte{1, 2, 3})
	assert.Equal(t, []byte{1, 2, 3}, p.LatestJPEG())
}
