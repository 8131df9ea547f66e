package actviz

// ChannelSelection is an ordered list of distinct channel indices.
type ChannelSelection []int

// SelectChannels picks min(SampleCount, channelCount) channels spread evenly over
// [0, channelCount): selection[i] = floor(i*channelCount/SampleCount).
// The result depends on channelCount only.
func SelectChannels(channelCount int) ChannelSelection {
	if channelCount <= 0 {
		return ChannelSelection{}
	}
	n := imin(SampleCount, channelCount)
	sel := make(ChannelSelection, n)
	for i := range sel {
		if channelCount < SampleCount {
			// the stride formula would repeat indices here, show every channel once
			sel[i] = i
			continue
		}
		sel[i] = i * channelCount / SampleCount
	}
	return sel
}
