package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(Config{
		Interval: 10 * time.Millisecond,
		Presets: []PresetInfo{
			{Name: "Wide", Key: "F1", Passes: 5, Strength: []float64{0.5, 1, 2, 1, 2}, Radius: []float64{1, 2, 2, 4, 4}},
			{Name: "Cheap", Key: "F5", Passes: 2, Strength: []float64{0.8, 2}, Radius: []float64{2, 2}},
		},
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func TestStatusBeforeFirstFrame(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status code %d", resp.StatusCode)
	}
}

func TestStatusReturnsLatestSnapshot(t *testing.T) {
	s, ts := newTestServer(t)
	s.Publish(Snapshot{Frame: 1, Preset: "Wide"})
	s.Publish(Snapshot{Frame: 2, Preset: "SuperWide", Threshold: 0.25, Passes: 5, Active: true})

	resp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code %d", resp.StatusCode)
	}
	var got Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Frame != 2 || got.Preset != "SuperWide" || got.Threshold != 0.25 || !got.Active {
		t.Fatalf("snapshot %+v", got)
	}
}

func TestStatusIsReadOnly(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/api/status", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status code %d", resp.StatusCode)
	}
}

func TestPresetsListing(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/presets")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var got []PresetInfo
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[1].Name != "Cheap" || got[1].Passes != 2 {
		t.Fatalf("presets %+v", got)
	}
}

func TestWebSocketStreamsSnapshots(t *testing.T) {
	s, ts := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.Publish(Snapshot{Frame: 7, Preset: "Focussed", FPS: 59.9})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Snapshot
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
	if got.Frame != 7 || got.Preset != "Focussed" {
		t.Fatalf("snapshot %+v", got)
	}
}

func TestUnknownPathIsNotFound(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/update")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status code %d", resp.StatusCode)
	}
}
