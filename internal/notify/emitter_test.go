package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func sampleEvent() Event {
	return Event{
		Run: RunInfo{
			Dataset:     "transactions",
			RunDate:     "2026-08-26",
			Total:       100,
			Curated:     97,
			Quarantined: 3,
		},
		Outputs: map[string]OutputInfo{
			"curated": {Checksum: "sha256:abc", RowCount: 97, ByteSize: 4096},
		},
		Producer: ProducerInfo{Name: "txn-curator", Version: "v0.1.0"},
	}
}

func TestNewEmitter_Noop(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"disabled", Config{Enabled: false, Endpoint: "https://example.com"}},
		{"no endpoint", Config{Enabled: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEmitter(tc.cfg)
			if _, ok := e.(*noopEmitter); !ok {
				t.Errorf("NewEmitter(%+v) = %T, want noop", tc.cfg, e)
			}
			if err := e.EmitRun(context.Background(), sampleEvent()); err != nil {
				t.Errorf("noop EmitRun: %v", err)
			}
		})
	}
}

func TestHTTPEmitter_PostsEvent(t *testing.T) {
	var got Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	e := NewHTTPEmitter(Config{Enabled: true, Endpoint: srv.URL})
	if err := e.EmitRun(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("EmitRun: %v", err)
	}

	if got.EventType != "run.completed" || got.Version != "1.0" {
		t.Errorf("envelope = %s %s", got.EventType, got.Version)
	}
	if got.EventID == "" || got.Timestamp.IsZero() {
		t.Error("event id or timestamp not stamped")
	}
	if got.Run.Curated != 97 {
		t.Errorf("run info = %+v", got.Run)
	}
}

func TestHTTPEmitter_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := NewHTTPEmitter(Config{Enabled: true, Endpoint: srv.URL})
	if err := e.EmitRun(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("EmitRun: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestHTTPEmitter_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewHTTPEmitter(Config{Enabled: true, Endpoint: srv.URL})
	if err := e.EmitRun(context.Background(), sampleEvent()); err == nil {
		t.Fatal("EmitRun succeeded against a failing endpoint")
	}
	if calls.Load() != int32(maxAttempts) {
		t.Errorf("calls = %d, want %d", calls.Load(), maxAttempts)
	}
}
