package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/vibe-studio/internal/db"
	"github.com/ziadkadry99/vibe-studio/internal/history"
	"github.com/ziadkadry99/vibe-studio/internal/kv"
	"github.com/ziadkadry99/vibe-studio/internal/pages"
	"github.com/ziadkadry99/vibe-studio/internal/playback"
	"github.com/ziadkadry99/vibe-studio/internal/publish"
	"github.com/ziadkadry99/vibe-studio/internal/search"
	"github.com/ziadkadry99/vibe-studio/internal/studio"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	ctx := context.Background()
	hist := history.NewStore(database)
	store := kv.NewSQLStore(database)
	ps, err := pages.Open(ctx, store, pages.Options{History: hist, Logger: log})
	if err != nil {
		t.Fatalf("pages.Open: %v", err)
	}
	reg := publish.NewRegistry(store, hist, log)
	shell := studio.New(ps, reg, playback.New(playback.WithLogger(log)), log)
	t.Cleanup(shell.Close)

	idx, err := search.NewIndex(log)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	srv, err := New(cfg, shell, hist, idx, log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, Config{})

	w := do(t, srv, "GET", "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode[map[string]string](t, w)
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := newTestServer(t, Config{AllowAll: true})

	req := httptest.NewRequest("OPTIONS", "/api/state", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestEditorShellServedForRootAndReservedPaths(t *testing.T) {
	srv := newTestServer(t, Config{})

	for _, path := range []string{"/", "/assets/app.js", "/@vite/client"} {
		w := do(t, srv, "GET", path, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
		if !strings.Contains(w.Body.String(), "Vibe Code Studio") {
			t.Errorf("%s: expected editor shell", path)
		}
	}
}

func TestPublishAndVisit(t *testing.T) {
	srv := newTestServer(t, Config{})

	w := do(t, srv, "POST", "/api/publish", `{"name":"landing page"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("publish: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	res := decode[publishResponse](t, w)
	if res.Link != "http://example.com/landing%20page" {
		t.Errorf("unexpected link %q", res.Link)
	}

	w = do(t, srv, "GET", "/landing%20page", "")
	if w.Code != http.StatusOK {
		t.Fatalf("visit: expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Published: /landing page", "Back to Editor", `sandbox="allow-scripts allow-same-origin allow-forms"`, "srcdoc="} {
		if !strings.Contains(body, want) {
			t.Errorf("published view missing %q", want)
		}
	}

	w = do(t, srv, "GET", "/api/published/landing%20page", "")
	if w.Code != http.StatusOK {
		t.Fatalf("lookup: expected 200, got %d", w.Code)
	}
	if got := decode[publishedResponse](t, w); got.HTML != pages.DefaultHTML {
		t.Errorf("snapshot mismatch")
	}

	w = do(t, srv, "GET", "/api/published", "")
	if names := decode[[]string](t, w); len(names) != 1 || names[0] != "landing page" {
		t.Errorf("unexpected names %v", names)
	}
}

func TestPublishedLinkReachesSnapshot(t *testing.T) {
	srv := newTestServer(t, Config{})

	for _, tc := range []struct{ name, link string }{
		{"@home", "http://example.com/%40home"},
		{"a:b&c=d", "http://example.com/a%3Ab%26c%3Dd"},
		{"healthz-check", "http://example.com/healthz-check"},
	} {
		w := do(t, srv, "POST", "/api/publish", `{"name":"`+tc.name+`"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: publish expected 200, got %d: %s", tc.name, w.Code, w.Body.String())
		}
		res := decode[publishResponse](t, w)
		if res.Link != tc.link {
			t.Errorf("%s: link = %q, want %q", tc.name, res.Link, tc.link)
		}

		w = do(t, srv, "GET", strings.TrimPrefix(res.Link, "http://example.com"), "")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Published: /") {
			t.Errorf("%s: visiting %s gave %d without the published view", tc.name, res.Link, w.Code)
		}
	}
}

func TestPublishRejectsReservedName(t *testing.T) {
	srv := newTestServer(t, Config{})

	for _, name := range []string{"api", "healthz", "ws"} {
		w := do(t, srv, "POST", "/api/publish", `{"name":"`+name+`"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, w.Code)
		}
	}
}

func TestPublishUsesBaseURL(t *testing.T) {
	srv := newTestServer(t, Config{BaseURL: "https://studio.example.org/"})

	w := do(t, srv, "POST", "/api/publish", `{"name":"demo"}`)
	if got := decode[publishResponse](t, w).Link; got != "https://studio.example.org/demo" {
		t.Errorf("unexpected link %q", got)
	}
}

func TestPublishCancelled(t *testing.T) {
	srv := newTestServer(t, Config{})

	for _, body := range []string{"", `{}`, `{"name":""}`} {
		w := do(t, srv, "POST", "/api/publish", body)
		if w.Code != http.StatusNoContent {
			t.Errorf("body %q: expected 204, got %d", body, w.Code)
		}
	}
}

func TestNotPublished(t *testing.T) {
	srv := newTestServer(t, Config{})

	w := do(t, srv, "GET", "/missing", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Not Published") || !strings.Contains(w.Body.String(), "missing") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}

	w = do(t, srv, "GET", "/api/published/missing", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestPageLifecycle(t *testing.T) {
	srv := newTestServer(t, Config{})

	w := do(t, srv, "POST", "/api/pages", `{"name":"about.html"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d", w.Code)
	}
	page := decode[pages.Page](t, w)
	if page.Content != pages.DefaultHTML {
		t.Error("html page should be seeded with the template")
	}

	if w := do(t, srv, "POST", "/api/pages", `{}`); w.Code != http.StatusNoContent {
		t.Errorf("cancelled add: expected 204, got %d", w.Code)
	}

	w = do(t, srv, "PUT", "/api/pages/"+page.ID+"/content", `{"content":"<p>about</p>"}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("update: expected 204, got %d", w.Code)
	}
	if w := do(t, srv, "PUT", "/api/pages/nope/content", `{"content":"x"}`); w.Code != http.StatusNotFound {
		t.Errorf("update unknown: expected 404, got %d", w.Code)
	}

	if w := do(t, srv, "POST", "/api/pages/"+pages.DefaultPageID+"/select", ""); w.Code != http.StatusNoContent {
		t.Errorf("select: expected 204, got %d", w.Code)
	}
	if w := do(t, srv, "POST", "/api/pages/nope/select", ""); w.Code != http.StatusNotFound {
		t.Errorf("select unknown: expected 404, got %d", w.Code)
	}

	list := decode[pageListResponse](t, do(t, srv, "GET", "/api/pages", ""))
	if len(list.Pages) != 2 || list.ActiveID != pages.DefaultPageID {
		t.Fatalf("unexpected list %+v", list)
	}
	if list.Pages[1].Content != "<p>about</p>" {
		t.Errorf("content not stored: %q", list.Pages[1].Content)
	}

	if w := do(t, srv, "DELETE", "/api/pages/"+pages.DefaultPageID, ""); w.Code != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", w.Code)
	}
	st := decode[studio.State](t, do(t, srv, "GET", "/api/state", ""))
	if st.ActiveID != page.ID || st.Status.Left != "Ready — 1 page(s)" {
		t.Errorf("unexpected state %+v", st)
	}
}

func TestDeleteOnlyPageLeavesEmptyEditor(t *testing.T) {
	srv := newTestServer(t, Config{})

	do(t, srv, "DELETE", "/api/pages/"+pages.DefaultPageID, "")
	st := decode[studio.State](t, do(t, srv, "GET", "/api/state", ""))
	if len(st.Pages) != 0 || st.ActiveID != "" {
		t.Fatalf("expected empty collection, got %+v", st)
	}
	if st.Editor.Content != "" || st.Editor.PageID != "" {
		t.Errorf("expected empty editor, got %+v", st.Editor)
	}

	w := do(t, srv, "GET", "/api/preview", "")
	if w.Code != http.StatusOK || w.Body.Len() != 0 {
		t.Errorf("expected empty preview document, got %d %q", w.Code, w.Body.String())
	}
}

func multipartUpload(t *testing.T, files map[string]string, order []string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, path := range order {
		base := path[strings.LastIndex(path, "/")+1:]
		fw, err := mw.CreateFormFile("files", base)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(files[path]))
		mw.WriteField("paths", path)
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadKeepsRelativePathsAndFilters(t *testing.T) {
	srv := newTestServer(t, Config{})

	files := map[string]string{
		"site/index.html": "<h1>home</h1>",
		"site/notes.txt":  "notes",
		"site/a/b.HTML":   "<p>b</p>",
	}
	req := multipartUpload(t, files, []string{"site/index.html", "site/notes.txt", "site/a/b.HTML"})
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	got := decode[pageListResponse](t, w)
	if len(got.Pages) != 2 {
		t.Fatalf("expected 2 html pages, got %+v", got.Pages)
	}
	if got.Pages[0].Name != "site/index.html" || got.Pages[1].Name != "site/a/b.HTML" {
		t.Errorf("unexpected names %q, %q", got.Pages[0].Name, got.Pages[1].Name)
	}
	if got.ActiveID != got.Pages[0].ID {
		t.Error("first uploaded page should be active")
	}

	entries := decode[[]history.Entry](t, do(t, srv, "GET", "/api/history?action=project_uploaded", ""))
	if len(entries) != 1 {
		t.Errorf("expected one upload history entry, got %d", len(entries))
	}
}

func TestUploadNothingIsNoop(t *testing.T) {
	srv := newTestServer(t, Config{})

	req := multipartUpload(t, nil, nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if n := srv.Shell().Pages().Len(); n != 1 {
		t.Errorf("expected collection untouched, got %d pages", n)
	}
}

func TestPreviewToggle(t *testing.T) {
	srv := newTestServer(t, Config{})

	w := do(t, srv, "GET", "/api/preview", "")
	if w.Code != http.StatusOK || w.Body.String() != pages.DefaultHTML {
		t.Fatalf("expected raw page html, got %d", w.Code)
	}

	if got := decode[map[string]bool](t, do(t, srv, "POST", "/api/preview/toggle", "")); got["visible"] {
		t.Fatal("expected preview hidden")
	}
	if w := do(t, srv, "GET", "/api/preview", ""); w.Code != http.StatusNoContent {
		t.Errorf("hidden preview: expected 204, got %d", w.Code)
	}
	st := decode[studio.State](t, do(t, srv, "GET", "/api/state", ""))
	if st.Status.Right != "Live Preview: Off" || len(st.Pages) != 1 {
		t.Errorf("unexpected state %+v", st)
	}
}

func TestMarkdownPreview(t *testing.T) {
	srv := newTestServer(t, Config{})

	page := decode[pages.Page](t, do(t, srv, "POST", "/api/pages", `{"name":"README.md"}`))
	do(t, srv, "PUT", "/api/pages/"+page.ID+"/content", `{"content":"# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |"}`)

	body := do(t, srv, "GET", "/api/preview", "").Body.String()
	if !strings.Contains(body, `<h1 id="title">Title</h1>`) {
		t.Errorf("expected rendered heading, got %s", body)
	}
	if !strings.Contains(body, "<table>") {
		t.Errorf("expected GFM table, got %s", body)
	}
}

func TestPlayback(t *testing.T) {
	srv := newTestServer(t, Config{})

	if w := do(t, srv, "POST", "/api/playback", `{}`); w.Code != http.StatusNoContent {
		t.Fatalf("cancelled playback: expected 204, got %d", w.Code)
	}

	w := do(t, srv, "POST", "/api/playback", `{"speed":"1"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	if st := decode[playback.State](t, w); st.Status != playback.StatusRunning || st.Interval != 500*time.Millisecond {
		t.Errorf("unexpected playback state %+v", st)
	}

	if w := do(t, srv, "DELETE", "/api/playback", ""); w.Code != http.StatusNoContent {
		t.Errorf("stop: expected 204, got %d", w.Code)
	}
	if srv.Shell().Engine().State().Typing() {
		t.Error("expected playback stopped")
	}
}

func TestSearchRouteMounted(t *testing.T) {
	srv := newTestServer(t, Config{})
	if w := do(t, srv, "GET", "/api/search?q=welcome", ""); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, Config{RateLimit: 0.001, RateBurst: 2})

	for i := 0; i < 2; i++ {
		if w := do(t, srv, "GET", "/api/pages", ""); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
	w := do(t, srv, "GET", "/api/pages", "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}

	for _, path := range []string{"/healthz", "/api/state", "/api/preview"} {
		if w := do(t, srv, "GET", path, ""); w.Code != http.StatusOK {
			t.Errorf("%s must not be limited, got %d", path, w.Code)
		}
	}
}

// The editor redraws from every frame during playback; with the default
// limits none of its requests may be refused.
func TestPlaybackRedrawIsNotRateLimited(t *testing.T) {
	srv := newTestServer(t, Config{RateLimit: 50, RateBurst: 100})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Hub().Run(ctx)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/studio", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	resp, err := http.Post(ts.URL+"/api/playback", "application/json", strings.NewReader(`{"speed":"60"}`))
	if err != nil {
		t.Fatalf("start playback: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("start playback: expected 202, got %d", resp.StatusCode)
	}
	defer srv.Shell().StopPlayback()

	get := func(path string) int {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	var frames, refused int
	deadline := time.Now().Add(1500 * time.Millisecond)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		var f struct {
			Type  string        `json:"type"`
			State *studio.State `json:"state"`
		}
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("read: %v", err)
		}
		frames++
		if f.State == nil {
			t.Fatalf("%s frame without a state snapshot", f.Type)
		}
		for _, path := range []string{"/api/state", "/api/preview"} {
			if get(path) == http.StatusTooManyRequests {
				refused++
			}
		}
	}
	if frames < 20 {
		t.Fatalf("expected a steady stream of frames, got %d", frames)
	}
	if refused != 0 {
		t.Errorf("%d of %d redraw requests were rate limited", refused, 2*frames)
	}

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/pages/"+pages.DefaultPageID+"/content", strings.NewReader(`{"content":"typed"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		t.Error("keystroke refused after playback redraws")
	}
}

func TestWebSocketPushesChanges(t *testing.T) {
	srv := newTestServer(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Hub().Run(ctx)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/studio"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	type frame struct {
		Type  string       `json:"type"`
		State studio.State `json:"state"`
	}
	read := func() frame {
		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("read: %v", err)
		}
		return f
	}

	if f := read(); f.Type != "state" || len(f.State.Pages) != 1 {
		t.Fatalf("unexpected first frame %+v", f)
	}

	resp, err := http.Post(ts.URL+"/api/preview/toggle", "application/json", nil)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	resp.Body.Close()

	f := read()
	if f.Type != "preview" || f.State.Preview.Visible {
		t.Errorf("unexpected preview frame %+v", f)
	}
}
