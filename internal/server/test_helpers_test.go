package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"nano-banana/internal/config"
	"nano-banana/internal/game"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

func newTestSetup(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	engine := game.NewEngine(game.NewMemStore(), game.DefaultConfig())
	blobs, err := NewDiskStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("disk store: %v", err)
	}
	srv := New(engine, blobs, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path string, payload any) (int, map[string]any) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && err != io.EOF {
		t.Fatalf("decode %s %s response: %v", method, path, err)
	}
	return resp.StatusCode, decoded
}

func createSession(t *testing.T, ts *httptest.Server, name string) (code, playerID string) {
	t.Helper()
	status, body := doJSON(t, ts, http.MethodPost, "/api/sessions", map[string]any{"name": name})
	if status != http.StatusCreated {
		t.Fatalf("create session: status %d body %v", status, body)
	}
	code, _ = body["session_code"].(string)
	playerID, _ = body["player_id"].(string)
	if code == "" || playerID == "" {
		t.Fatalf("create session response incomplete: %v", body)
	}
	return code, playerID
}

func joinPlayer(t *testing.T, ts *httptest.Server, code, name string) string {
	t.Helper()
	status, body := doJSON(t, ts, http.MethodPost, "/api/sessions/"+code+"/join", map[string]any{"name": name})
	if status != http.StatusOK {
		t.Fatalf("join %s: status %d body %v", name, status, body)
	}
	playerID, _ := body["player_id"].(string)
	if playerID == "" {
		t.Fatalf("join response missing player_id: %v", body)
	}
	return playerID
}

func getSnapshot(t *testing.T, ts *httptest.Server, code string) map[string]any {
	t.Helper()
	status, body := doJSON(t, ts, http.MethodGet, "/api/sessions/"+code, nil)
	if status != http.StatusOK {
		t.Fatalf("get session: status %d body %v", status, body)
	}
	return body
}

func snapshotStrings(t *testing.T, snap map[string]any, key string) []string {
	t.Helper()
	raw, ok := snap[key].([]any)
	if !ok {
		t.Fatalf("snapshot field %s missing or not a list: %v", key, snap[key])
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		out = append(out, fmt.Sprint(item))
	}
	return out
}

// tinyPNG is a 1x1 transparent image, enough to exercise the upload path.
var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func uploadSubmission(t *testing.T, ts *httptest.Server, code, playerID string) string {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "drawing.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(tinyPNG); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.WriteField("player_id", playerID); err != nil {
		t.Fatalf("write player_id field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	resp, err := http.Post(ts.URL+"/api/sessions/"+code+"/submissions", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("upload submission: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload submission: status %d body %v", resp.StatusCode, body)
	}
	imageURL, _ := body["image_url"].(string)
	if imageURL == "" {
		t.Fatalf("upload response missing image_url: %v", body)
	}
	return imageURL
}

func uploadCategories(t *testing.T, ts *httptest.Server, code, playerID, csvBody string) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "categories.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := io.WriteString(fw, csvBody); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := mw.WriteField("player_id", playerID); err != nil {
		t.Fatalf("write player_id field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	resp, err := http.Post(ts.URL+"/api/sessions/"+code+"/categories", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("upload categories: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil && err != io.EOF {
		t.Fatalf("decode import response: %v", err)
	}
	return resp.StatusCode, body
}
