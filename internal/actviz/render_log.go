package actviz

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

const renderLogKeep = 64 // per layer, oldest dropped first

type RenderLog struct {
	Name     string
	Kind     Kind
	Mode     ViewMode
	Buffers  int
	Pixels   int // total across buffers
	Duration time.Duration
}

type RenderLogCache struct {
	mu      sync.Mutex
	renders map[string][]RenderLog // layer name -> renders
}

var cache = &RenderLogCache{
	renders: make(map[string][]RenderLog),
}

func logRender(f *Frame, d time.Duration) {
	px := 0
	for _, b := range f.Buffers {
		px += b.Width * b.Height
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.renders[f.Name] = append(cache.renders[f.Name], RenderLog{
		Name:     f.Name,
		Kind:     f.Kind,
		Mode:     f.Mode,
		Buffers:  len(f.Buffers),
		Pixels:   px,
		Duration: d,
	})
	if n := len(cache.renders[f.Name]); n > renderLogKeep {
		cache.renders[f.Name] = cache.renders[f.Name][n-renderLogKeep:]
	}
}

func renderStats() {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	names := make([]string, 0, len(cache.renders))
	for k := range cache.renders {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		v := cache.renders[k]
		var total time.Duration
		for _, r := range v {
			total += r.Duration
		}
		last := v[len(v)-1]
		fmt.Printf("Layer %s: %d renders, last %s/%s %d buffers %d px, avg %s\n",
			k, len(v), last.Kind, last.Mode, last.Buffers, last.Pixels, total/time.Duration(len(v)))
	}
}
