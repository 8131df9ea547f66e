package actviz

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"sync"

	"github.com/gorilla/mux"
	httptrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gorilla/mux"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

const maxTensorBody = 64 << 20

type viewerEntry struct {
	mu sync.Mutex // one render at a time per viewer
	v  *Viewer
}

// Registry holds the open viewers of a preview server, keyed by viewer id.
type Registry struct {
	mu      sync.Mutex
	viewers map[string]*viewerEntry
}

func NewRegistry() *Registry {
	return &Registry{viewers: make(map[string]*viewerEntry)}
}

func (r *Registry) add(v *Viewer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewers[v.ID] = &viewerEntry{v: v}
}

func (r *Registry) get(id string) (*viewerEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.viewers[id]
	return e, ok
}

func (r *Registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.viewers[id]
	delete(r.viewers, id)
	return ok
}

// IDs returns the open viewer ids, sorted (xids sort by creation time).
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.viewers))
	for id := range r.viewers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type viewerState struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Kind         string     `json:"kind"`
	Mode         string     `json:"mode"`
	Toggle       bool       `json:"toggle"`
	Caption      string     `json:"caption"`
	ChannelCount int        `json:"num_channels"`
	Channels     []int      `json:"channels,omitempty"`
	Layout       GridLayout `json:"grid_layout"`
	Stats        LayerStats `json:"stats"`
}

func stateOf(v *Viewer) viewerState {
	f := v.Frame()
	return viewerState{
		ID:           v.ID,
		Name:         f.Name,
		Kind:         f.Kind.String(),
		Mode:         f.Mode.String(),
		Toggle:       f.Toggle,
		Caption:      f.Caption,
		ChannelCount: f.ChannelCount,
		Channels:     f.Channels,
		Layout:       f.Layout,
		Stats:        v.Tensor().Stats(),
	}
}

// Serve starts the preview server described by the config file and blocks.
func Serve(cfgPath string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	logger := log.New(os.Stderr, "(Preview API) > ", log.LstdFlags)
	if cfg.Serve.Trace {
		tracer.Start(
			tracer.WithServiceName(cfg.Serve.ServiceName),
			tracer.WithAnalytics(true),
		)
		defer tracer.Stop()
	}
	reg := NewRegistry()
	preload(reg, cfg, logger)

	logRequest := func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Printf("%s %s %s\n", r.RemoteAddr, r.Method, r.URL)
			handler.ServeHTTP(w, r)
		})
	}
	logger.Printf("HTTP server starting (%s)\n", cfg.Serve.Addr)
	return http.ListenAndServe(cfg.Serve.Addr, logRequest(newRouter(reg, cfg.Serve.ServiceName)))
}

// preload opens one viewer per layer of the configured input, if there is one.
func preload(reg *Registry, cfg *Config, logger *log.Logger) {
	data, err := os.ReadFile(cfg.Input)
	if err != nil {
		logger.Printf("No preloaded layers: %v\n", err)
		return
	}
	tensors, names, failed, err := DecodeActivations(data)
	if err != nil {
		logger.Printf("No preloaded layers: %s: %v\n", cfg.Input, err)
		return
	}
	for name, ferr := range failed {
		logger.Printf("Skipping layer %s: %v\n", name, ferr)
	}
	for _, name := range names {
		v := NewViewer()
		if _, err := v.SetTensor(tensors[name]); err != nil {
			logger.Printf("Skipping layer %s: %v\n", name, err)
			continue
		}
		reg.add(v)
		logger.Printf("Layer %s: /viewers/%s\n", name, v.ID)
	}
}

func newRouter(reg *Registry, serviceName string) http.Handler {
	r := httptrace.NewRouter(
		httptrace.WithServiceName(serviceName),
	)
	r.HandleFunc("/", handlerOfHealth()).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/viewers", handlerOfViewerList(reg)).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/viewers", handlerOfOpenViewer(reg)).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/viewers/{id}", handlerOfViewerState(reg)).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/viewers/{id}", handlerOfCloseViewer(reg)).Methods(http.MethodDelete)
	r.HandleFunc("/api/v1/viewers/{id}/mode/{mode}", handlerOfSetMode(reg, false)).Methods(http.MethodPut)
	r.HandleFunc("/api/v1/viewers/{id}/frame.png", handlerOfFramePNG(reg)).Methods(http.MethodGet)
	// HTML surface, forms can only POST
	r.HandleFunc("/viewers/{id}", handlerOfViewerPage(reg)).Methods(http.MethodGet)
	r.HandleFunc("/viewers/{id}/mode/{mode}", handlerOfSetMode(reg, true)).Methods(http.MethodPost)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, struct {
		Msg string `json:"msg"`
	}{msg})
}

// statusOf maps render errors onto HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrNoToggle):
		return http.StatusConflict
	case structural(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func lookup(reg *Registry, w http.ResponseWriter, r *http.Request) (*viewerEntry, bool) {
	id := mux.Vars(r)["id"]
	e, ok := reg.get(id)
	if !ok {
		writeMsg(w, http.StatusNotFound, fmt.Sprintf("Not Found viewer %s.", id))
	}
	return e, ok
}

func handlerOfHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}

func handlerOfViewerList(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, struct {
			Viewers []string `json:"viewers"`
		}{reg.IDs()})
	}
}

func handlerOfOpenViewer(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxTensorBody))
		if err != nil {
			writeMsg(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		name := r.URL.Query().Get("name")
		t, err := DecodeTensor(name, body)
		if err != nil {
			writeMsg(w, http.StatusBadRequest, err.Error())
			return
		}
		v := NewViewer()
		if _, err := v.SetTensor(t); err != nil {
			writeMsg(w, statusOf(err), err.Error())
			return
		}
		st := stateOf(v)
		reg.add(v)
		writeJSON(w, http.StatusCreated, st)
	}
}

func handlerOfViewerState(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := lookup(reg, w, r)
		if !ok {
			return
		}
		e.mu.Lock()
		st := stateOf(e.v)
		e.mu.Unlock()
		writeJSON(w, http.StatusOK, st)
	}
}

func handlerOfCloseViewer(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		if !reg.remove(id) {
			writeMsg(w, http.StatusNotFound, fmt.Sprintf("Not Found viewer %s.", id))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handlerOfSetMode toggles the view. A failed toggle leaves the last frame in place.
func handlerOfSetMode(reg *Registry, redirect bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := lookup(reg, w, r)
		if !ok {
			return
		}
		m, err := ParseViewMode(mux.Vars(r)["mode"])
		if err != nil {
			writeMsg(w, http.StatusBadRequest, err.Error())
			return
		}
		e.mu.Lock()
		_, err = e.v.SetMode(m)
		st := stateOf(e.v)
		e.mu.Unlock()
		if err != nil {
			writeMsg(w, statusOf(err), err.Error())
			return
		}
		if redirect {
			http.Redirect(w, r, "/viewers/"+st.ID, http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func handlerOfFramePNG(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := lookup(reg, w, r)
		if !ok {
			return
		}
		// compose under the lock: frame buffers live in the viewer's scratch arena
		e.mu.Lock()
		img := ComposeSheet(e.v.Frame())
		e.mu.Unlock()
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		if err := png.Encode(w, img); err != nil {
			DebugLog("frame.png: %v", err)
		}
	}
}

func handlerOfViewerPage(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := lookup(reg, w, r)
		if !ok {
			return
		}
		e.mu.Lock()
		st := stateOf(e.v)
		e.mu.Unlock()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := viewerPage.Execute(w, st); err != nil {
			DebugLog("viewer page: %v", err)
		}
	}
}
