package actviz

import "testing"

func TestRenderLogCache(t *testing.T) {
	// reset
	cache = &RenderLogCache{renders: make(map[string][]RenderLog)}
	tn := combinedTensor(t, 4, 2, 2)
	l, _ := ResolveLayout(tn)
	if _, err := Render(tn, l, AllChannels); err != nil {
		t.Fatal(err)
	}
	if _, err := Render(tn, l, Sampled); err != nil {
		t.Fatal(err)
	}
	logs := cache.renders[tn.Name]
	if len(logs) != 2 || logs[0].Mode != AllChannels || logs[1].Buffers != 4 || logs[1].Pixels != 16 {
		t.Fatalf("unexpected logs: %+v", logs)
	}
	for i := 0; i < renderLogKeep+10; i++ {
		logRender(&Frame{Name: "many"}, 0)
	}
	if len(cache.renders["many"]) != renderLogKeep {
		t.Fatalf("log not capped: %d", len(cache.renders["many"]))
	}
	renderStats()
}
