package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matt-g-everett/scrollfx/stream"
)

type fakeBackend struct {
	frame    *stream.Frame
	commands []stream.Command
	err      error
}

func (b *fakeBackend) LastFrame() *stream.Frame { return b.frame }

func (b *fakeBackend) Submit(c stream.Command) error {
	if b.err != nil {
		return b.err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	b.commands = append(b.commands, c)
	return nil
}

func TestState(t *testing.T) {
	b := new(fakeBackend)
	a := NewApi(b, "")

	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/state", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 before the first frame, got %d", rec.Code)
	}

	b.frame = &stream.Frame{ScrollY: 250, Items: []stream.Item{{ID: "sky", Y: 50, Visible: true, Hex: "#336699"}}}
	rec = httptest.NewRecorder()
	a.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/state", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["scrollY"] != 250.0 {
		t.Errorf("Expected scrollY 250, got %v", got["scrollY"])
	}
	items := got["items"].([]interface{})
	if items[0].(map[string]interface{})["colour"] != "#336699" {
		t.Errorf("Expected the item colour, got %v", items[0])
	}
}

func TestScroll(t *testing.T) {
	b := new(fakeBackend)
	a := NewApi(b, "")

	tests := []struct {
		method string
		body   string
		code   int
	}{
		{http.MethodPost, `{"op":"scrollTo","y":300,"durationMs":400}`, http.StatusAccepted},
		{http.MethodPost, `{"op":"warp"}`, http.StatusBadRequest},
		{http.MethodPost, `not json`, http.StatusBadRequest},
		{http.MethodGet, ``, http.StatusMethodNotAllowed},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		a.ServeHTTP(rec, httptest.NewRequest(tc.method, "/scroll", strings.NewReader(tc.body)))
		if rec.Code != tc.code {
			t.Errorf("%s %q: expected %d, got %d", tc.method, tc.body, tc.code, rec.Code)
		}
	}
	if len(b.commands) != 1 || b.commands[0].Y != 300 || b.commands[0].DurationMs != 400 {
		t.Errorf("Expected one decoded command, got %+v", b.commands)
	}

	b.err = stream.ErrBusy
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/scroll", strings.NewReader(`{"op":"wheel","y":10}`)))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 when busy, got %d", rec.Code)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	a := NewApi(new(fakeBackend), "")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected a clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Expected Serve to return after cancel")
	}
}
