package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/gamesight/internal/app"
	"github.com/ayusman/gamesight/internal/detector"
	"github.com/ayusman/gamesight/internal/relay"
	"github.com/ayusman/gamesight/internal/store"
	"github.com/ayusman/gamesight/internal/templates"
	"github.com/ayusman/gamesight/testdata"
)

func newIntegrationServer(t *testing.T) (*httptest.Server, *relay.Hub) {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	logo := testdata.LogoTemplate()
	lib := templates.NewLibrary(templates.Template{Name: "valorant_logo", Image: logo})
	t.Cleanup(lib.Close)

	det := detector.New(detector.Config{
		Matcher: templates.NewMatcher(lib, templates.NewCorrelationScorer(), nil, nil),
	})

	hub := relay.NewHub(nil)
	t.Cleanup(hub.Close)

	a := app.New(app.Config{
		Detector:            det,
		Store:               s,
		Relay:               hub,
		Library:             lib,
		BroadcastDetections: true,
	})

	ts := httptest.NewServer(New(Config{App: a}))
	t.Cleanup(ts.Close)
	return ts, hub
}

func postImage(t *testing.T, client *http.Client, url string, data []byte) *http.Response {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "frame.png")
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	part.Write(data)
	mw.Close()

	resp, err := client.Post(url, mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("POST %s error = %v", url, err)
	}
	return resp
}

func TestAPI_DetectionWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ts, _ := newIntegrationServer(t)
	client := ts.Client()

	listener, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/relay", nil)
	if err != nil {
		t.Fatalf("dial relay: %v", err)
	}
	defer listener.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, _ := client.Get(ts.URL + "/api/health")
		var health healthResponse
		json.NewDecoder(resp.Body).Decode(&health)
		resp.Body.Close()
		if health.Listeners == 1 {
			if health.Templates != 1 {
				t.Errorf("templates = %d, want 1", health.Templates)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("listener never registered, health = %+v", health)
		}
		time.Sleep(10 * time.Millisecond)
	}

	// 1. Detect a frame containing the logo.
	frame := testdata.PatternFrame(480, 640)
	defer frame.Close()
	data, err := testdata.EncodePNG(frame)
	if err != nil {
		t.Fatalf("EncodePNG() error = %v", err)
	}

	resp := postImage(t, client, ts.URL+"/detect", data)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /detect status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var result detector.Result
	json.NewDecoder(resp.Body).Decode(&result)
	resp.Body.Close()

	if result.Game != "valorant" || result.Method != detector.MethodTemplate {
		t.Errorf("result = %+v, want valorant via template", result)
	}

	listener.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg relay.GameDetected
	if err := listener.ReadJSON(&msg); err != nil {
		t.Fatalf("relay read: %v", err)
	}
	if msg.Type != relay.TypeGameDetected || msg.Game != "valorant" {
		t.Errorf("relay message = %+v", msg)
	}

	// 2. State is sticky.
	resp, _ = client.Get(ts.URL + "/api/state")
	var snap detector.Snapshot
	json.NewDecoder(resp.Body).Decode(&snap)
	resp.Body.Close()
	if snap.LastGame != "valorant" {
		t.Errorf("state last_game = %q, want valorant", snap.LastGame)
	}

	// 3. History lists the detection and serves it by id.
	resp, _ = client.Get(ts.URL + "/api/detections?limit=5")
	var listed struct {
		Detections []store.Detection `json:"detections"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()
	if len(listed.Detections) != 1 {
		t.Fatalf("len(detections) = %d, want 1", len(listed.Detections))
	}

	resp, _ = client.Get(ts.URL + "/api/detections/" + listed.Detections[0].ID)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET detection status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	resp.Body.Close()

	resp, _ = client.Get(ts.URL + "/api/detections/missing")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET missing detection status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	resp.Body.Close()
}

func TestAPI_DetectRejectsBadUploads(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ts, _ := newIntegrationServer(t)
	client := ts.Client()

	t.Run("missing file field", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/detect", "application/json", strings.NewReader(`{}`))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}
	})

	for name, data := range map[string][]byte{
		"empty":   {},
		"garbage": []byte("definitely not an image"),
	} {
		t.Run(name, func(t *testing.T) {
			resp := postImage(t, client, ts.URL+"/detect", data)
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
			}
		})
	}

	resp, _ := client.Get(ts.URL + "/api/detections")
	var listed struct {
		Detections []store.Detection `json:"detections"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()
	if len(listed.Detections) != 0 {
		t.Errorf("rejected uploads were recorded: %d", len(listed.Detections))
	}
}

func TestAPI_RelayCommands(t *testing.T) {
	ts, _ := newIntegrationServer(t)

	resp, err := ts.Client().Post(ts.URL+"/api/relay/animation", "application/json",
		strings.NewReader(`{"emotion":"happy"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got map[string]string
	json.NewDecoder(resp.Body).Decode(&got)
	if got["status"] != relay.StatusNoConnections {
		t.Errorf("status = %q, want %q", got["status"], relay.StatusNoConnections)
	}
}
