package actviz

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func do(t *testing.T, h http.Handler, method, url string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) viewerState {
	t.Helper()
	var st viewerState
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return st
}

func TestHealth(t *testing.T) {
	h := newRouter(NewRegistry(), "test")
	rec := do(t, h, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "healthy") {
		t.Fatalf("health: %d %s", rec.Code, rec.Body.String())
	}
}

func TestViewerLifecycle(t *testing.T) {
	reg := NewRegistry()
	h := newRouter(reg, "test")

	rec := do(t, h, http.MethodPost, "/api/v1/viewers?name=layer4", combinedJSON(t, 64, 8, 8, 7, 7))
	if rec.Code != http.StatusCreated {
		t.Fatalf("open: %d %s", rec.Code, rec.Body.String())
	}
	st := decodeState(t, rec)
	if st.Name != "layer4" || st.Mode != "all" || !st.Toggle || st.ChannelCount != 64 {
		t.Fatalf("unexpected state: %+v", st)
	}
	if ids := reg.IDs(); len(ids) != 1 || ids[0] != st.ID {
		t.Fatalf("registry ids: %v", ids)
	}

	rec = do(t, h, http.MethodPut, "/api/v1/viewers/"+st.ID+"/mode/sampled", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: %d %s", rec.Code, rec.Body.String())
	}
	st = decodeState(t, rec)
	if st.Mode != "sampled" || len(st.Channels) != SampleCount || st.Channels[1] != 4 {
		t.Fatalf("unexpected sampled state: %+v", st)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/viewers/"+st.ID+"/frame.png", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("frame: %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatal("frame is not a PNG")
	}

	rec = do(t, h, http.MethodGet, "/viewers/"+st.ID, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Show All Channels") {
		t.Fatalf("page: %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `src="/api/v1/viewers/`+st.ID+`/frame.png"`) {
		t.Fatalf("page frame link: %s", rec.Body.String())
	}

	rec = do(t, h, http.MethodPost, "/viewers/"+st.ID+"/mode/all", nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/viewers/"+st.ID {
		t.Fatalf("form toggle: %d %s", rec.Code, rec.Header().Get("Location"))
	}

	rec = do(t, h, http.MethodGet, "/api/v1/viewers/"+st.ID, nil)
	if st = decodeState(t, rec); st.Mode != "all" {
		t.Fatalf("mode after form toggle: %s", st.Mode)
	}

	if rec = do(t, h, http.MethodDelete, "/api/v1/viewers/"+st.ID, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("close: %d", rec.Code)
	}
	if rec = do(t, h, http.MethodGet, "/api/v1/viewers/"+st.ID, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("closed viewer: %d", rec.Code)
	}
}

func TestViewerErrors(t *testing.T) {
	h := newRouter(NewRegistry(), "test")

	if rec := do(t, h, http.MethodPost, "/api/v1/viewers?name=x", []byte(`{"type":"channel_grid"`)); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body: %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/v1/viewers?name=fc", []byte(`{"type":"1d","data":[1]}`)); rec.Code != http.StatusBadRequest {
		t.Fatalf("unsupported kind: %d", rec.Code)
	}
	// 64 channels cannot fit a 2x2 layout
	bad := combinedJSON(t, 64, 2, 2, 7, 7)
	if rec := do(t, h, http.MethodPost, "/api/v1/viewers?name=x", bad); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid layout: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, h, http.MethodDelete, "/api/v1/viewers/nope", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown viewer: %d", rec.Code)
	}

	rec := do(t, h, http.MethodPost, "/api/v1/viewers?name=avgpool", []byte(`{"type":"grid","data":[[0,1],[1,0]],"num_channels":4}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("open pooled: %d %s", rec.Code, rec.Body.String())
	}
	st := decodeState(t, rec)
	if rec = do(t, h, http.MethodPut, "/api/v1/viewers/"+st.ID+"/mode/sampled", nil); rec.Code != http.StatusConflict {
		t.Fatalf("pooled toggle: %d", rec.Code)
	}
	if rec = do(t, h, http.MethodPut, "/api/v1/viewers/"+st.ID+"/mode/zoom", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown mode: %d", rec.Code)
	}
}

func TestOpenViewerWhileToggling(t *testing.T) {
	reg := NewRegistry()
	h := newRouter(reg, "test")
	body := combinedJSON(t, 16, 4, 4, 3, 3)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		modes := []string{"sampled", "all"}
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}
			for _, id := range reg.IDs() {
				do(t, h, http.MethodPut, "/api/v1/viewers/"+id+"/mode/"+modes[i%2], nil)
			}
		}
	}()
	for i := 0; i < 20; i++ {
		if rec := do(t, h, http.MethodPost, "/api/v1/viewers?name=layer4", body); rec.Code != http.StatusCreated {
			t.Errorf("open %d: %d %s", i, rec.Code, rec.Body.String())
		}
	}
	close(done)
	wg.Wait()
	if n := len(reg.IDs()); n != 20 {
		t.Fatalf("registry has %d viewers", n)
	}
}
