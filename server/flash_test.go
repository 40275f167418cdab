package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// carryCookies copies Set-Cookie headers from a response onto a new request,
// the way a browser would across a redirect.
func carryCookies(t *testing.T, from *httptest.ResponseRecorder, to *http.Request) {
	t.Helper()
	for _, cookie := range from.Result().Cookies() {
		if cookie.MaxAge < 0 {
			continue
		}
		to.AddCookie(cookie)
	}
}

func TestFlashRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	setFlash(w, r, "success", "It worked.")

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	carryCookies(t, w, next)

	w2 := httptest.NewRecorder()
	flashes := popFlashes(w2, next)
	if len(flashes) != 1 {
		t.Fatalf("expected 1 flash, got %d", len(flashes))
	}
	if flashes[0].Category != "success" || flashes[0].Message != "It worked." {
		t.Errorf("unexpected flash: %+v", flashes[0])
	}

	// popFlashes must clear the cookie.
	var cleared bool
	for _, cookie := range w2.Result().Cookies() {
		if cookie.Name == flashCookieName && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected the flash cookie to be cleared")
	}
}

func TestFlashAccumulatesAcrossCalls(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	setFlash(w, r, "error", "first")

	second := httptest.NewRequest(http.MethodGet, "/", nil)
	carryCookies(t, w, second)
	w2 := httptest.NewRecorder()
	setFlash(w2, second, "warning", "second")

	third := httptest.NewRequest(http.MethodGet, "/", nil)
	carryCookies(t, w2, third)
	flashes := readFlashes(third)
	if len(flashes) != 2 {
		t.Fatalf("expected 2 flashes, got %d", len(flashes))
	}
	if flashes[0].Message != "first" || flashes[1].Message != "second" {
		t.Errorf("unexpected order: %+v", flashes)
	}
}

func TestFlashIgnoresMalformedCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: flashCookieName, Value: "%%%not-base64%%%"})

	if flashes := readFlashes(r); flashes != nil {
		t.Errorf("expected nil for malformed cookie, got %+v", flashes)
	}
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "/"},
		{"/", "/"},
		{"/my_songs", "/my_songs"},
		{"/playlists/3", "/playlists/3"},
		{"https://evil.example", "/"},
		{"//evil.example", "/"},
		{"no-slash", "/"},
	}
	for _, tt := range tests {
		if got := safeNext(tt.input); got != tt.expected {
			t.Errorf("safeNext(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
