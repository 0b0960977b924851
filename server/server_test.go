package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/minios-linux/proptrans/config"
)

func testConfig() *config.Server {
	return &config.Server{
		HTTP: config.HTTPConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			IdleTimeout:     5 * time.Second,
			ShutdownTimeout: 2 * time.Second,
		},
		Translate: config.TranslateConfig{BatchSize: 100, SourceLang: "en"},
		Log:       config.LogConfig{Level: "info", Format: "json"},
	}
}

func TestRoutes(t *testing.T) {
	tr := &recordingTranslator{dict: map[string]string{"Hello": "Hallo"}}
	h := New(testConfig(), tr, discardLogger(), "1.2.3").Handler()

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp HealthResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Status != "ok" || resp.Version != "1.2.3" || resp.Timestamp.IsZero() {
			t.Errorf("resp = %+v", resp)
		}
		if rec.Header().Get(RequestIDHeader) == "" {
			t.Error("missing request id header")
		}
	})

	t.Run("index form", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		body := rec.Body.String()
		for _, want := range []string{`action="/translate"`, `name="file"`, `name="language"`, `value="fr"`, "French (fr)", "1.2.3"} {
			if !strings.Contains(body, want) {
				t.Errorf("index page missing %q", want)
			}
		}
	})

	for _, path := range []string{"/translate", "/"} {
		t.Run("POST "+path, func(t *testing.T) {
			body, ct := multipartBody(t, ptr("greeting=Hello\n"), ptr("de"))
			req := httptest.NewRequest(http.MethodPost, path, body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %q", rec.Code, rec.Body.String())
			}
			if got := rec.Body.String(); got != "greeting=Hallo\n" {
				t.Errorf("body = %q", got)
			}
		})
	}

	t.Run("GET /translate", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/translate", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status = %d, want 405", rec.Code)
		}
	})

	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		for _, path := range []string{"/", "/translate"} {
			t.Run(method+" "+path, func(t *testing.T) {
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader("x")))

				if rec.Code != http.StatusMethodNotAllowed {
					t.Fatalf("status = %d, want 405", rec.Code)
				}
				if got := rec.Body.String(); got != "Invalid request method. Use POST." {
					t.Errorf("body = %q", got)
				}
				if got := rec.Header().Get("Allow"); got != http.MethodPost {
					t.Errorf("Allow = %q, want POST", got)
				}
			})
		}
	}
}

func TestServe_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	srv := New(testConfig(), &recordingTranslator{}, discardLogger(), "test")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/health"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LogConfig
		wantJSON  bool
		debugSeen bool
	}{
		{"json info", config.LogConfig{Level: "info", Format: "json"}, true, false},
		{"text debug", config.LogConfig{Level: "DEBUG", Format: "text"}, false, true},
		{"unknown level", config.LogConfig{Level: "loud", Format: "json"}, true, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tc.cfg, &buf)
			logger.Debug("debug line")
			logger.Info("info line")

			out := buf.String()
			if strings.Contains(out, "debug line") != tc.debugSeen {
				t.Errorf("debug visibility wrong: %q", out)
			}
			if strings.HasPrefix(out, "{") != tc.wantJSON {
				t.Errorf("format wrong: %q", out)
			}
		})
	}
}
