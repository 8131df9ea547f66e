package actviz

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Run renders every configured layer of an inference response into sheets and saves
// them as PNGs (PNG set) or one animated GIF. Layers that fail to decode or render are
// reported and skipped.
func Run(cfgPath string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(cfg.Input)
	if err != nil {
		return err
	}
	tensors, names, failed, err := DecodeActivations(data)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Input, err)
	}
	for name, ferr := range failed {
		fmt.Printf("Skipping layer %s: %v\n", name, ferr)
	}
	order := names
	if len(cfg.Layers) > 0 {
		order = cfg.Layers
	}

	start := time.Now()
	sheets, err := renderLayers(cfg, tensors, order)
	if err != nil {
		return err
	}
	DebugLog("Rendered %d sheets from %d layers in %s", len(sheets), len(order), time.Since(start))
	if Debug {
		renderStats()
	}
	if len(sheets) == 0 {
		return fmt.Errorf("nothing rendered from %s", cfg.Input)
	}

	if PNG {
		if err := SavePNGSheets(sheets, cfg.OutDir); err != nil {
			return err
		}
		DebugLog("Saved %d PNG sheets in: %s", len(sheets), cfg.OutDir)
		return nil
	}
	out := cfg.GIFOut
	if !filepath.IsAbs(out) && filepath.Dir(out) == "." {
		out = filepath.Join(cfg.OutDir, out)
	}
	if err := SaveAnimatedGIF(sheets, out, cfg.GIFDelay); err != nil {
		return err
	}
	DebugLog("Saved animated GIF: %s", out)
	return nil
}

func renderLayers(cfg *Config, tensors map[string]*ActivationTensor, order []string) ([]Sheet, error) {
	var sheets []Sheet
	add := func(f *Frame, stem string) error {
		sheets = append(sheets, Sheet{Name: stem, Img: ComposeSheet(f)})
		if !RAW {
			return nil
		}
		// buffers are reused by the next render, dump them now
		for i, b := range f.Buffers {
			if err := SaveRawRGBA(b, filepath.Join(cfg.OutDir, "raw", fmt.Sprintf("%s_%02d.rgba", stem, i))); err != nil {
				return err
			}
		}
		return nil
	}
	for _, name := range order {
		t, ok := tensors[name]
		if !ok {
			fmt.Printf("Skipping layer %s: not in %s\n", name, cfg.Input)
			continue
		}
		v := NewViewer()
		f, err := v.SetTensor(t)
		if err != nil {
			fmt.Printf("Skipping layer %s: %v\n", name, err)
			continue
		}
		if !v.CanToggle() {
			if err := add(f, name); err != nil {
				return nil, err
			}
			continue
		}
		for _, m := range cfg.modes {
			f, err := v.SetMode(m)
			if err != nil {
				fmt.Printf("Skipping layer %s (%s): %v\n", name, m, err)
				continue
			}
			if err := add(f, name+"_"+m.String()); err != nil {
				return nil, err
			}
		}
	}
	return sheets, nil
}
