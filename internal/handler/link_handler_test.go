package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"golinks/internal/middleware"
	"golinks/internal/service"
	"golinks/internal/shortcode"
	"golinks/internal/store"
	"golinks/pkg/logging"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logging.Logger = zap.NewNop()
	zap.ReplaceGlobals(logging.Logger)
	os.Exit(m.Run())
}

func newTestRouter(t *testing.T) (*gin.Engine, *store.MemoryStore) {
	t.Helper()

	st := store.NewMemoryStore()
	svc := service.NewLinkService(st, shortcode.NewRandomGenerator(), nil)
	h := NewLinkHandler(svc, nil)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.GlobalErrorMiddleware())
	r.LoadHTMLGlob("../../templates/*")
	h.RegisterRoutes(r)

	return r, st
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func apiShorten(t *testing.T, r *gin.Engine, longURL string) (int, envelope) {
	t.Helper()

	body := strings.NewReader(`{"longUrl": ` + jsonString(longURL) + `}`)
	req := httptest.NewRequest(http.MethodPost, "/api/shorten", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding envelope: %v (body %q)", err, w.Body.String())
	}
	return w.Code, env
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestEndToEnd_ShortenRedirectStats(t *testing.T) {
	r, st := newTestRouter(t)

	// Shorten a bare domain; the stored destination must be normalized.
	code, env := apiShorten(t, r, "example.com")
	if code != http.StatusCreated {
		t.Fatalf("POST /api/shorten status = %d, want 201", code)
	}
	var created struct {
		Code    string `json:"code"`
		LongURL string `json:"longUrl"`
		Clicks  int64  `json:"clicks"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if created.LongURL != "https://example.com" {
		t.Errorf("stored destination = %q, want https://example.com", created.LongURL)
	}
	if created.Clicks != 0 {
		t.Errorf("fresh link clicks = %d, want 0", created.Clicks)
	}

	// Redirect.
	req := httptest.NewRequest(http.MethodGet, "/"+created.Code, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusFound {
		t.Fatalf("GET /%s status = %d, want 302", created.Code, w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "https://example.com" {
		t.Errorf("redirect Location = %q, want https://example.com", loc)
	}

	// The increment is asynchronous; wait for it to land in the store.
	deadline := time.Now().Add(2 * time.Second)
	for {
		link, err := st.Get(req.Context(), created.Code)
		if err != nil {
			t.Fatalf("store Get: %v", err)
		}
		if link.Clicks == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("clicks = %d after redirect, want 1", link.Clicks)
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Stats reflect the click.
	req = httptest.NewRequest(http.MethodGet, "/api/stats/"+created.Code, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/stats/%s status = %d, want 200", created.Code, w.Code)
	}
	var statsEnv envelope
	if err := json.Unmarshal(w.Body.Bytes(), &statsEnv); err != nil {
		t.Fatalf("decoding stats envelope: %v", err)
	}
	var stats struct {
		Clicks int64 `json:"clicks"`
	}
	if err := json.Unmarshal(statsEnv.Data, &stats); err != nil {
		t.Fatalf("decoding stats data: %v", err)
	}
	if stats.Clicks != 1 {
		t.Errorf("stats clicks = %d, want 1", stats.Clicks)
	}
}

func TestShortenForm_HTMLFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	form := url.Values{"long_url": {"example.com/page"}}
	req := httptest.NewRequest(http.MethodPost, "/shorten", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("POST /shorten status = %d, want 200 (body %q)", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Short URL:") {
		t.Errorf("result page missing short URL (body %q)", w.Body.String())
	}
}

func TestShortenForm_Rejections(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name    string
		longURL string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"javascript scheme", "javascript:alert(1)"},
		{"data scheme", "data:text/html,x"},
		{"file scheme", "file:///etc/passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{"long_url": {tt.longURL}}
			req := httptest.NewRequest(http.MethodPost, "/shorten", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("POST /shorten (%s) status = %d, want 400", tt.name, w.Code)
			}
		})
	}
}

func TestAPIShorten_Rejections(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, raw := range []string{"javascript:alert(1)", "file:///etc/passwd"} {
		status, env := apiShorten(t, r, raw)
		if status != http.StatusBadRequest {
			t.Errorf("POST /api/shorten %q status = %d, want 400", raw, status)
		}
		if env.Success {
			t.Errorf("POST /api/shorten %q envelope success = true, want false", raw)
		}
	}
}

func TestRedirect_NotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	// A well-formed but unallocated code.
	req := httptest.NewRequest(http.MethodGet, "/Zz9Yx0", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("GET /Zz9Yx0 status = %d, want 404", w.Code)
	}

	// A path that is not even code-shaped.
	req = httptest.NewRequest(http.MethodGet, "/nonexistent-code", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("GET /nonexistent-code status = %d, want 404", w.Code)
	}
}

func TestStats_NotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/Zz9Yx0", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("GET /api/stats/Zz9Yx0 status = %d, want 404", w.Code)
	}
}

func TestAPITop_Ordering(t *testing.T) {
	r, st := newTestRouter(t)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()

	// Allocate four links, then push their counters to [5, 5, 3, 9].
	var codes []string
	for i := 0; i < 4; i++ {
		status, env := apiShorten(t, r, "example.com/"+string(rune('a'+i)))
		if status != http.StatusCreated {
			t.Fatalf("shorten status = %d", status)
		}
		var created struct {
			Code string `json:"code"`
		}
		if err := json.Unmarshal(env.Data, &created); err != nil {
			t.Fatalf("decoding data: %v", err)
		}
		codes = append(codes, created.Code)
	}
	for i, clicks := range []int{5, 5, 3, 9} {
		for j := 0; j < clicks; j++ {
			if err := st.IncrementClicks(ctx, codes[i]); err != nil {
				t.Fatalf("IncrementClicks: %v", err)
			}
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/top", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/top status = %d, want 200", w.Code)
	}

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	var top []struct {
		Code   string `json:"code"`
		Clicks int64  `json:"clicks"`
	}
	if err := json.Unmarshal(env.Data, &top); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if len(top) != 4 {
		t.Fatalf("top returned %d entries, want 4", len(top))
	}

	if top[0].Code != codes[3] || top[0].Clicks != 9 {
		t.Errorf("top[0] = %+v, want code %s with 9 clicks", top[0], codes[3])
	}
	if top[3].Code != codes[2] || top[3].Clicks != 3 {
		t.Errorf("top[3] = %+v, want code %s with 3 clicks", top[3], codes[2])
	}
	// The two five-click entries are ordered by code ascending.
	lo, hi := codes[0], codes[1]
	if lo > hi {
		lo, hi = hi, lo
	}
	if top[1].Code != lo || top[2].Code != hi {
		t.Errorf("tie order = [%s %s], want [%s %s]", top[1].Code, top[2].Code, lo, hi)
	}
}
