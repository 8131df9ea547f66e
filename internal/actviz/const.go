package actviz

const (
	SampleCount      = 16 // tiles in the sampled view and max maps rendered for single_map tensors
	MosaicPixelScale = 2  // pixels per source cell in the full-channel mosaic
	PooledPixelScale = 4  // pixels per source cell for coarse pooled grids
	TintAlpha        = 77 // round(0.3*255), dark separator overlay on tile boundaries
	SheetCols        = 4  // sampled tiles per sheet row
	SheetTileSize    = 56 // on-sheet size of one sampled tile (pixelated upscale)
	SheetPad         = 6
	SheetHeader      = 34 // caption band height
	LegendHeight     = 10
	LegendWidth      = 96
	// defaults for the JSON config
	ActivationsIn = "activations.json"
	OutDir        = "out"
	GIFOut        = "layers.gif"
	GIFDelay      = 100 // 100ths of a second per frame
	ServeAddr     = ":8090"
	ServiceName   = "actviz-preview"
)
