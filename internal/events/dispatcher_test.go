package events

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestDispatcherDeliversInOrder(t *testing.T) {
	sink := NewChannelSink(8)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8}, sink)
	defer d.Close()

	for i, typ := range []string{TypeLoginSuccess, TypeRefreshSuccess, TypeLogout} {
		d.Emit(context.Background(), Event{ID: string(rune('a' + i)), EventType: typ})
	}

	for _, want := range []string{TypeLoginSuccess, TypeRefreshSuccess, TypeLogout} {
		select {
		case got := <-sink.Events():
			if got.EventType != want {
				t.Fatalf("event order: got %q, want %q", got.EventType, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestDispatcherDropIfFullCounts(t *testing.T) {
	block := make(chan struct{})
	sink := sinkFunc(func(context.Context, Event) { <-block })
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// First event occupies the drain goroutine, second fills the buffer,
	// the rest must drop.
	for i := 0; i < 6; i++ {
		d.Emit(context.Background(), Event{EventType: TypeLoginFailure})
	}
	if d.Dropped() == 0 {
		t.Fatal("expected dropped events under backpressure")
	}
	close(block)
	d.Close()
}

func TestDispatcherStampsMissingTimestamp(t *testing.T) {
	sink := NewChannelSink(1)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1}, sink)
	defer d.Close()

	d.Emit(context.Background(), Event{EventType: TypeLogout})

	select {
	case got := <-sink.Events():
		if got.Timestamp.IsZero() {
			t.Fatal("delivered event carries no timestamp")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestDispatcherDisabledIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("disabled dispatcher should be nil")
	}
	// All methods are nil-safe.
	d.Emit(context.Background(), Event{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher dropped count")
	}
}

func TestJSONWriterSinkOneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)
	sink.Emit(context.Background(), Event{ID: "e1", EventType: TypeVerifyFallback, Success: true})
	sink.Emit(context.Background(), Event{ID: "e2", EventType: TypeVerifyCleared})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var ev Event
	if err := json.Unmarshal(lines[0], &ev); err != nil || ev.EventType != TypeVerifyFallback {
		t.Fatalf("line 1 decode: %v %+v", err, ev)
	}
}

type sinkFunc func(context.Context, Event)

func (f sinkFunc) Emit(ctx context.Context, e Event) { f(ctx, e) }
