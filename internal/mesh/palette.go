package mesh

// bandStop is one breakpoint of the height-band palette. Colors between
// adjacent stops interpolate linearly; heights beyond the ends clamp.
type bandStop struct {
	height float32
	color  [3]float32
}

// palette maps elevation in meters to terrain color: deep water through
// shallow water, beach, grass, forest, rock and snow.
var palette = []bandStop{
	{-500, [3]float32{0.02, 0.08, 0.32}}, // deep water
	{0, [3]float32{0.15, 0.35, 0.60}},    // shallow water
	{1, [3]float32{0.78, 0.72, 0.52}},    // beach
	{10, [3]float32{0.45, 0.62, 0.32}},   // low grass
	{500, [3]float32{0.16, 0.38, 0.17}},  // forest
	{1500, [3]float32{0.48, 0.44, 0.38}}, // rock
	{2500, [3]float32{0.55, 0.52, 0.48}}, // high rock
	{3500, [3]float32{0.96, 0.97, 0.98}}, // snow
}

// colorForHeight returns the palette color for an elevation in meters.
func colorForHeight(h float32) [3]float32 {
	if h <= palette[0].height {
		return palette[0].color
	}
	last := len(palette) - 1
	if h >= palette[last].height {
		return palette[last].color
	}
	for i := 1; i <= last; i++ {
		if h > palette[i].height {
			continue
		}
		lo, hi := palette[i-1], palette[i]
		t := (h - lo.height) / (hi.height - lo.height)
		return [3]float32{
			lo.color[0] + (hi.color[0]-lo.color[0])*t,
			lo.color[1] + (hi.color[1]-lo.color[1])*t,
			lo.color[2] + (hi.color[2]-lo.color[2])*t,
		}
	}
	return palette[last].color
}
