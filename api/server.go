// Package api serves the daemon's HTTP surface: the latest frame, scroll
// commands and the static viewer pages.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/matt-g-everett/scrollfx/stream"
	"github.com/matt-g-everett/scrollfx/util"
)

// Backend is the part of the Streamer the API drives.
type Backend interface {
	LastFrame() *stream.Frame
	Submit(c stream.Command) error
}

// Api is the HTTP front end of a Backend.
type Api struct {
	backend Backend
	static  string
	mux     *http.ServeMux
}

// NewApi creates an instance of an Api. Static files are served from the
// static directory when it is set.
func NewApi(backend Backend, static string) *Api {
	a := new(Api)
	a.backend = backend
	a.static = static
	a.mux = http.NewServeMux()
	a.mux.HandleFunc("/state", a.handleState)
	a.mux.HandleFunc("/scroll", a.handleScroll)
	if static != "" {
		a.mux.Handle("/", http.FileServer(http.Dir(static)))
	}
	return a
}

// ServeHTTP implements http.Handler.
func (a *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Serve listens on addr until ctx is cancelled.
func (a *Api) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: a, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			util.Warn("HTTP shutdown: %v", err)
		}
	}()

	util.Info("Listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *Api) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	f := a.backend.LastFrame()
	if f == nil {
		http.Error(w, "no frame yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (a *Api) handleScroll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var c stream.Command
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	switch err := a.backend.Submit(c); {
	case errors.Is(err, stream.ErrBusy):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		writeJSON(w, http.StatusAccepted, c)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		util.Warn("Encoding response: %v", err)
	}
}
