package qlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// logInterval throttles window.log and latency.log to one line per 10ms
// of wall-clock time, the spec's ambient logging cadence (K_LOG_INTERVAL).
// loss.log is never throttled: every loss event is its own line.
const logInterval = 10 * time.Millisecond

// logWriter appends newline-delimited JSON to one metric log file,
// dropping writes that arrive before logInterval has elapsed since the
// last one unless force is set.
type logWriter struct {
	mu        sync.Mutex
	f         *os.File
	lastWrite time.Time
}

func newLogWriter(dir, name string) (*logWriter, error) {
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &logWriter{f: f}, nil
}

func (w *logWriter) writeThrottled(now time.Time, force bool, line []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !force && !w.lastWrite.IsZero() && now.Sub(w.lastWrite) < logInterval {
		return
	}
	w.lastWrite = now
	w.f.Write(line)
	w.f.Write([]byte("\n"))
}

func (w *logWriter) Close() error {
	return w.f.Close()
}

// FileSink is an EventSink that writes three independent metric streams
// to disk: window.log (congestion window and bytes in flight), latency.log
// (RTT estimates), and loss.log (every lost packet). Each stream has its
// own logWriter, so a burst of losses never delays window/latency samples
// and vice versa; window.log and latency.log are throttled to one line per
// logInterval, while loss.log is written unthrottled, one line per lost
// packet.
type FileSink struct {
	dir     string
	start   time.Time
	window  *logWriter
	latency *logWriter
	loss    *logWriter
}

// NewFileSink opens (creating if necessary) window.log, latency.log and
// loss.log inside dir, which the caller typically obtains from
// ReserveLogDir.
func NewFileSink(dir string) (*FileSink, error) {
	window, err := newLogWriter(dir, "window.log")
	if err != nil {
		return nil, err
	}
	latency, err := newLogWriter(dir, "latency.log")
	if err != nil {
		window.Close()
		return nil, err
	}
	loss, err := newLogWriter(dir, "loss.log")
	if err != nil {
		window.Close()
		latency.Close()
		return nil, err
	}
	return &FileSink{dir: dir, start: time.Now(), window: window, latency: latency, loss: loss}, nil
}

func (s *FileSink) elapsedMs(now time.Time) float64 {
	return float64(now.Sub(s.start)) / float64(time.Millisecond)
}

func (s *FileSink) RecordPacketSent(now time.Time, f PacketSentFields) {}

func (s *FileSink) RecordPacketLost(now time.Time, f PacketLostFields) {
	line, err := json.Marshal(struct {
		TimeMs       float64 `json:"time_ms"`
		PacketNumber int64   `json:"packet_number"`
		Size         int64   `json:"size"`
	}{s.elapsedMs(now), int64(f.Number), int64(f.Size)})
	if err != nil {
		return
	}
	s.loss.writeThrottled(now, true, line)
}

func (s *FileSink) RecordMetricsUpdated(now time.Time, f MetricsUpdatedFields) {
	if line, err := json.Marshal(struct {
		TimeMs           float64 `json:"time_ms"`
		CongestionWindow int64   `json:"congestion_window"`
		BytesInFlight    int64   `json:"bytes_in_flight"`
	}{s.elapsedMs(now), int64(f.CongestionWindow), int64(f.BytesInFlight)}); err == nil {
		s.window.writeThrottled(now, false, line)
	}

	if line, err := json.Marshal(struct {
		TimeMs        float64 `json:"time_ms"`
		SmoothedRttMs float64 `json:"smoothed_rtt_ms"`
		LatestRttMs   float64 `json:"latest_rtt_ms"`
		MinRttMs      float64 `json:"min_rtt_ms"`
	}{s.elapsedMs(now), durMillis(f.SmoothedRTT), durMillis(f.LatestRTT), durMillis(f.MinRTT)}); err == nil {
		s.latency.writeThrottled(now, false, line)
	}
}

func (s *FileSink) RecordLossTimerUpdated(now time.Time, f LossTimerUpdatedFields) {}

func (s *FileSink) Close() error {
	var firstErr error
	for _, w := range []*logWriter{s.window, s.latency, s.loss} {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
