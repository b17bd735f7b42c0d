package mjpeg

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
)

const (
	boundary     = "frame"
	jpegQuality  = 90
	keepalive    = 2 * time.Second
	notifyBuffer = 5
)

// Publisher keeps the latest annotated frame as JPEG and fans it out to
// any number of multipart/x-mixed-replace viewers.
type Publisher struct {
	jpegMutex  sync.RWMutex
	latestJPEG []byte

	notifyMutex sync.Mutex
	viewers     map[chan struct{}]struct{}

	done      chan struct{}
	closeOnce sync.Once
}

func NewPublisher() *Publisher {
	return &Publisher{
		viewers: make(map[chan struct{}]struct{}),
		done:    make(chan struct{}),
	}
}

// Close ends every open stream and refuses new viewers. It is meant to be
// registered with http.Server.RegisterOnShutdown so Shutdown does not wait
// for viewers to leave on their own.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
	})
}

// PublishFrame encodes frame and makes it the current stream image.
func (p *Publisher) PublishFrame(frame gocv.Mat) error {
	if frame.Empty() {
		return nil
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, frame, []int{gocv.IMWriteJpegQuality, jpegQuality})
	if err != nil {
		return fmt.Errorf("failed to encode JPEG: %w", err)
	}
	defer buf.Close()

	b := buf.GetBytes()
	jpegCopy := make([]byte, len(b))
	copy(jpegCopy, b)

	p.PublishJPEG(jpegCopy)
	return nil
}

// PublishJPEG replaces the current stream image. jpeg must not be modified afterwards.
func (p *Publisher) PublishJPEG(jpeg []byte) {
	p.jpegMutex.Lock()
	p.latestJPEG = jpeg
	p.jpegMutex.Unlock()

	p.notifyViewers()
}

// LatestJPEG returns the current stream image, or nil before the first frame.
func (p *Publisher) LatestJPEG() []byte {
	p.jpegMutex.RLock()
	defer p.jpegMutex.RUnlock()
	return p.latestJPEG
}

// Viewers returns the number of connected stream clients.
func (p *Publisher) Viewers() int {
	p.notifyMutex.Lock()
	defer p.notifyMutex.Unlock()
	return len(p.viewers)
}

func (p *Publisher) notifyViewers() {
	p.notifyMutex.Lock()
	defer p.notifyMutex.Unlock()

	for notify := range p.viewers {
		select {
		case notify <- struct{}{}:
		default:
		}
	}
}

func (p *Publisher) subscribe() chan struct{} {
	notify := make(chan struct{}, notifyBuffer)

	p.notifyMutex.Lock()
	p.viewers[notify] = struct{}{}
	p.notifyMutex.Unlock()
	return notify
}

func (p *Publisher) unsubscribe(notify chan struct{}) {
	p.notifyMutex.Lock()
	delete(p.viewers, notify)
	p.notifyMutex.Unlock()
}

// StreamMJPEGHTTP serves the stream until the client goes away or the
// publisher is closed.
func (p *Publisher) StreamMJPEGHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case <-p.done:
		http.Error(w, "Stream closed", http.StatusServiceUnavailable)
		return
	default:
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+boundary)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	notify := p.subscribe()
	defer p.unsubscribe(notify)

	writePart := func(jpeg []byte) bool {
		if _, err := io.WriteString(w, "--"+boundary+"\r\n"); err != nil {
			return false
		}
		if _, err := io.WriteString(w, "Content-Type: image/jpeg\r\n"); err != nil {
			return false
		}
		if _, err := io.WriteString(w, fmt.Sprintf("Content-Length: %d\r\n\r\n", len(jpeg))); err != nil {
			return false
		}
		if _, err := w.Write(jpeg); err != nil {
			return false
		}
		if _, err := io.WriteString(w, "\r\n"); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	first := p.LatestJPEG()
	if len(first) == 0 {
		first = placeholderJPEG()
	}
	if len(first) > 0 && !writePart(first) {
		return
	}

	log.Debug().Str("remote", r.RemoteAddr).Msg("MJPEG viewer connected")

	keepaliveTicker := time.NewTicker(keepalive)
	defer keepaliveTicker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("remote", r.RemoteAddr).Msg("MJPEG viewer disconnected")
			return
		case <-p.done:
			log.Debug().Str("remote", r.RemoteAddr).Msg("MJPEG stream closed")
			return
		case <-notify:
		case <-keepaliveTicker.C:
		}

		if buf := p.LatestJPEG(); len(buf) > 0 {
			if !writePart(buf) {
				return
			}
		}
	}
}

func placeholderJPEG() []byte {
	placeholder := gocv.NewMatWithSize(360, 640, gocv.MatTypeCV8UC3)
	defer placeholder.Close()

	placeholder.SetTo(gocv.Scalar{Val1: 64, Val2: 64, Val3: 64, Val4: 0})

	textColor := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	gocv.PutText(&placeholder, "PPE Detection System",
		image.Pt(20, 180), gocv.FontHersheySimplex, 1.0, textColor, 2)
	gocv.PutText(&placeholder, "Waiting for camera...",
		image.Pt(20, 220), gocv.FontHersheySimplex, 0.8, textColor, 2)

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, placeholder, []int{gocv.IMWriteJpegQuality, jpegQuality})
	if err != nil {
		return nil
	}
	defer buf.Close()

	b := buf.GetBytes()
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
