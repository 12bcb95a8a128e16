package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

func newOAuthConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "test_client",
		ClientSecret: "test_secret",
		RedirectURL:  "https://localhost:8080/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://example.com/authorize",
			TokenURL: tokenURL,
		},
	}
}

func TestOAuthHandler(t *testing.T) {
	t.Run("Routes", func(t *testing.T) {
		t.Run("derived from redirect URL", func(t *testing.T) {
			config := newOAuthConfig("https://example.com/token")
			config.RedirectURL = "https://localhost:8080/auth/done"

			handler := NewOAuthHandler(config, "state123")
			routes := handler.Routes()
			if len(routes) != 1 || routes[0] != "/auth/done" {
				t.Errorf("expected /auth/done, got %v", routes)
			}
		})

		t.Run("defaults to /callback", func(t *testing.T) {
			config := newOAuthConfig("https://example.com/token")
			config.RedirectURL = ""

			handler := NewOAuthHandler(config, "state123")
			if handler.Routes()[0] != "/callback" {
				t.Errorf("expected /callback, got %v", handler.Routes())
			}
		})
	})

	t.Run("successful callback", func(t *testing.T) {
		tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"new_token","refresh_token":"new_refresh","token_type":"Bearer","expires_in":3600}`))
		}))
		defer tokenSrv.Close()

		handler := NewOAuthHandler(newOAuthConfig(tokenSrv.URL), "state123")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=state123&code=auth_code", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}

		body, _ := io.ReadAll(rec.Body)
		if !strings.Contains(string(body), "Authorization Successful") {
			t.Error("expected success page")
		}

		result := <-handler.Result()
		if result.Error() != nil {
			t.Fatalf("expected no error, got %v", result.Error())
		}
		if result.Token == nil || result.Token.AccessToken != "new_token" {
			t.Errorf("unexpected token %+v", result.Token)
		}
		if result.Token.RefreshToken != "new_refresh" {
			t.Errorf("expected refresh token, got %s", result.Token.RefreshToken)
		}
	})

	t.Run("invalid state", func(t *testing.T) {
		handler := NewOAuthHandler(newOAuthConfig("https://example.com/token"), "state123")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=wrong&code=auth_code", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected error for state mismatch")
		}
	})

	t.Run("provider error", func(t *testing.T) {
		handler := NewOAuthHandler(newOAuthConfig("https://example.com/token"), "state123")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=state123&error=access_denied&error_description=User+denied", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected access_denied error, got %v", result.Error())
		}
	})

	t.Run("second callback rejected", func(t *testing.T) {
		tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"tok","token_type":"Bearer"}`))
		}))
		defer tokenSrv.Close()

		handler := NewOAuthHandler(newOAuthConfig(tokenSrv.URL), "state123")

		first := httptest.NewRecorder()
		handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/callback?state=state123&code=c1", nil))
		if first.Code != http.StatusOK {
			t.Fatalf("expected first callback to succeed, got %d", first.Code)
		}

		second := httptest.NewRecorder()
		handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/callback?state=state123&code=c2", nil))
		if second.Code != http.StatusBadRequest {
			t.Errorf("expected replay to be rejected, got %d", second.Code)
		}
	})

	t.Run("failed exchange", func(t *testing.T) {
		tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer tokenSrv.Close()

		handler := NewOAuthHandler(newOAuthConfig(tokenSrv.URL), "state123")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state123&code=bad", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected exchange error")
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("Handle filters by method", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("pong"))
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 for GET, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405 for POST, got %d", rec.Code)
		}
	})

	t.Run("Handler registers all routes", func(t *testing.T) {
		config := newOAuthConfig("https://example.com/token")
		handler := NewOAuthHandler(config, "state123")

		router := NewBasicRouter()
		router.Handler(handler)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=wrong", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected handler to be routed, got %d", rec.Code)
		}
	})

	t.Run("middleware wraps in order", func(t *testing.T) {
		var order []string

		router := NewBasicRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, "first")
				next.ServeHTTP(w, r)
			})
		})
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, "second")
				next.ServeHTTP(w, r)
			})
		})
		router.Handle(http.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		want := []string{"first", "second", "handler"}
		for i, step := range want {
			if i >= len(order) || order[i] != step {
				t.Fatalf("expected order %v, got %v", want, order)
			}
		}
	})

	t.Run("RequestLogger passes requests through", func(t *testing.T) {
		logger := log.NewWithOptions(io.Discard, log.Options{})

		router := NewBasicRouter()
		router.Use(RequestLogger(logger))
		router.Handle(http.MethodGet, "/logged", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logged", nil))
		if rec.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rec.Code)
		}
	})
}

func TestOAuthResultError(t *testing.T) {
	result := OAuthResult{}
	if result.Error() != nil {
		t.Error("expected nil error for zero value")
	}
}
