package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, Event) {
	s.count.Add(1)
}

type gateSink struct {
	entered chan struct{}
	gate    chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{
		entered: make(chan struct{}, 64),
		gate:    make(chan struct{}),
	}
}

func (s *gateSink) Emit(context.Context, Event) {
	s.entered <- struct{}{}
	<-s.gate
}

type panicSink struct{}

func (panicSink) Emit(context.Context, Event) {
	panic("sink failure")
}

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, &countingSink{})
	if d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}

	// nil dispatcher methods must be safe
	d.Emit(context.Background(), Event{EventType: "derive_success"})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("expected zero dropped on nil dispatcher")
	}
}

func TestDispatcherDeliversBeforeClose(t *testing.T) {
	sink := &countingSink{}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 64}, sink)

	for i := 0; i < 50; i++ {
		d.Emit(context.Background(), Event{EventType: "derive_success"})
	}
	d.Close()

	if got := sink.count.Load(); got != 50 {
		t.Fatalf("expected 50 delivered events, got %d", got)
	}
	if got := d.Stats().Delivered; got != 50 {
		t.Fatalf("expected stats delivered 50, got %d", got)
	}
}

func TestDispatcherDropIfFull(t *testing.T) {
	sink := newGateSink()
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// first event is picked up by the worker and blocks on the gate, second
	// fills the buffer, the rest are dropped
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{EventType: "derive_failure"})
		time.Sleep(time.Millisecond)
	}

	if d.Dropped() == 0 {
		t.Fatal("expected dropped events with full buffer")
	}

	close(sink.gate)
	d.Close()
}

func TestDispatcherBlockingEmitHonoursContext(t *testing.T) {
	sink := newGateSink()
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1}, sink)

	d.Emit(context.Background(), Event{})
	<-sink.entered
	d.Emit(context.Background(), Event{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		d.Emit(ctx, Event{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit did not return after context deadline")
	}

	close(sink.gate)
	d.Close()
}

func TestDispatcherSurvivesPanickingSink(t *testing.T) {
	d := NewDispatcher(Config{Enabled: true, BufferSize: 4}, panicSink{})
	d.Emit(context.Background(), Event{})
	d.Emit(context.Background(), Event{})
	d.Close()

	if got := d.Stats().Panicked; got != 2 {
		t.Fatalf("expected 2 recovered panics, got %d", got)
	}
}

func TestJSONWriterSinkOneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), Event{EventType: "derive_success", Identifier: "example.com", Success: true})
	sink.Emit(context.Background(), Event{EventType: "derive_failure", Error: "missing_secret"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}

	var first Event
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("unmarshal first line: %v", err)
	}
	if first.Identifier != "example.com" || !first.Success {
		t.Fatalf("unexpected first event: %+v", first)
	}
}

func TestChannelSinkDelivers(t *testing.T) {
	sink := NewChannelSink(0)
	sink.Emit(context.Background(), Event{EventType: "fingerprint"})

	select {
	case ev := <-sink.Events():
		if ev.EventType != "fingerprint" {
			t.Fatalf("unexpected event type %q", ev.EventType)
		}
	default:
		t.Fatal("expected buffered event")
	}
}
