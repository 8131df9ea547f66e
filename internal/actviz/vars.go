package actviz

var (
	Debug = false // set to true for verbose debug output
	PNG   = false // set to true to save one PNG sheet per layer/view instead of the animated GIF
	RAW   = false // set to true to also dump every raw RGBA pixel buffer
	// Compile time checks that both maps satisfy ColorMap
	_ ColorMap = Hot
	_ ColorMap = Diverging
)
