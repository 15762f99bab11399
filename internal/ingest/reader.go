package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kyleking/lazyrope/internal/record"
	"github.com/kyleking/lazyrope/internal/serialport"
	"github.com/kyleking/lazyrope/internal/store"
)

const readBufferSize = 256

// Sink is a durable destination for accepted records.
type Sink interface {
	Name() string
	Append(record.Record) error
}

// Reader is the background loop for one connection. It only produces
// events; it never touches the presentation layer.
type Reader struct {
	port   serialport.Port
	parser record.Parser
	store  *store.Store
	sinks  []Sink
	events chan<- Event
	stop   <-chan struct{}
	opts   Options
	log    *zap.Logger

	pending []byte
}

// Run reads until stop is closed, then closes done.
func (r *Reader) Run(done chan<- struct{}) {
	defer close(done)
	r.log.Info("reader started")
	defer r.log.Info("reader stopped")

	buf := make([]byte, readBufferSize)
	for {
		if r.stopped() {
			return
		}

		n, err := r.port.Read(buf)
		if n > 0 && !r.consume(buf[:n]) {
			return
		}

		if err != nil {
			if r.stopped() {
				return
			}
			r.log.Warn("serial read failed", zap.Error(err))
			if !r.status(&IOError{Err: err}) {
				return
			}
			if !r.sleep(r.opts.ErrorBackoff) {
				return
			}
			continue
		}

		if n == 0 && !r.sleep(r.opts.IdlePoll) {
			return
		}
	}
}

// consume frames data into lines and handles each complete one. It returns
// false once the stop signal is observed.
func (r *Reader) consume(data []byte) bool {
	r.pending = append(r.pending, data...)

	for {
		idx := bytes.IndexByte(r.pending, '\n')
		if idx < 0 {
			break
		}
		frame := r.pending[:idx]
		r.pending = r.pending[idx+1:]

		if !r.handleFrame(frame) {
			return false
		}
	}

	if len(r.pending) > r.opts.MaxLineLength {
		discarded := string(r.pending[:min(len(r.pending), 64)])
		r.pending = nil
		return r.emit(DiagnosticEvent{
			Line: discarded,
			Err:  fmt.Errorf("line exceeds %d bytes without a delimiter", r.opts.MaxLineLength),
			At:   time.Now(),
		})
	}

	// Let the buffer shrink back once it has been drained.
	if len(r.pending) == 0 {
		r.pending = nil
	}
	return true
}

func (r *Reader) handleFrame(frame []byte) bool {
	frame = bytes.TrimSuffix(frame, []byte{'\r'})
	if !utf8.Valid(frame) {
		if !r.status(&IOError{Err: errors.New("received bytes are not valid UTF-8")}) {
			return false
		}
		return r.sleep(r.opts.ErrorBackoff)
	}

	line := strings.TrimSpace(string(frame))
	if line == "" {
		return true
	}
	return r.handleLine(line)
}

func (r *Reader) handleLine(line string) bool {
	rec, err := r.parser.Parse(line)
	if err != nil {
		r.log.Debug("discarding line", zap.String("line", line), zap.Error(err))
		return r.emit(DiagnosticEvent{Line: line, Err: err, At: time.Now()})
	}

	r.store.Append(rec)
	for _, sink := range r.sinks {
		if err := sink.Append(rec); err != nil {
			r.log.Error("sink append failed", zap.String("sink", sink.Name()), zap.Error(err))
			if !r.status(&PersistenceError{Sink: sink.Name(), Err: err}) {
				return false
			}
		}
	}

	return r.emit(RecordEvent{Record: rec})
}

func (r *Reader) status(err error) bool {
	return r.emit(StatusEvent{Text: err.Error(), Err: err, At: time.Now()})
}

// emit blocks until the event is delivered or stop is closed.
func (r *Reader) emit(ev Event) bool {
	select {
	case r.events <- ev:
		return true
	case <-r.stop:
		return false
	}
}

func (r *Reader) stopped() bool {
	select {
	case <-r.stop:
		return true
	default:
		return false
	}
}

// sleep pauses for d and returns false if stop arrives first.
func (r *Reader) sleep(d time.Duration) bool {
	if d <= 0 {
		return !r.stopped()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-r.stop:
		return false
	case <-t.C:
		return true
	}
}
