package fabric

import "github.com/ehwlab/sysevo/sysarr"

// Functional model of one array instance: the committed configuration words
// are decoded back into gene values, and the image is filtered through the
// resulting PE grid. Cells that were never configured behave as pass-west,
// taps default to the window center, and a missing readout marker selects
// the bottom row, so partially programmed arrays still produce defined
// output.

const passWest = -1

type geneGrid struct {
	tapNorth [sysarr.Width + 1]int  // gene (0, c), c >= 1
	tapWest  [sysarr.Height + 1]int // gene (r, 0), r >= 1
	pe       [sysarr.Height + 1][sysarr.Width + 1]int
	readRow  int
}

func (s *System) decode(arr int) geneGrid {
	g := sysarr.Genome{Cfg: s.committed[arr]}
	codec := sysarr.NewCodec(s.geo)

	var grid geneGrid

	grid.readRow = codec.At(&g, 0, 0)
	if grid.readRow < 0 {
		grid.readRow = sysarr.Height - 1
	}

	taps := s.geo.InMuxCount()
	center := s.geo.IdentityTap()
	for c := 1; c <= sysarr.Width; c++ {
		v := codec.At(&g, 0, c)
		if v < 0 || v >= taps {
			v = center
		}
		grid.tapNorth[c] = v
	}
	for r := 1; r <= sysarr.Height; r++ {
		v := codec.At(&g, r, 0)
		if v < 0 || v >= taps {
			v = center
		}
		grid.tapWest[r] = v
	}

	funcs := s.geo.FunctionCount()
	for r := 1; r <= sysarr.Height; r++ {
		for c := 1; c <= sysarr.Width; c++ {
			v := codec.At(&g, r, c)
			if v < 0 || v >= funcs {
				v = passWest
			}
			grid.pe[r][c] = v
		}
	}

	return grid
}

// filter runs one instance's configuration over the input image and returns
// the filtered image.
func (s *System) filter(arr int) []byte {
	grid := s.decode(arr)
	half := (s.geo.Window - 1) / 2
	set := s.geo.Functions
	out := make([]byte, sysarr.ImgSize)

	var window [25]int

	for y := 0; y < sysarr.ImgHeight; y++ {
		for x := 0; x < sysarr.ImgWidth; x++ {
			// Window taps run row-major from the south-east corner to the
			// north-west corner; out-of-image taps clamp to the edge.
			k := 0
			for dx := half; dx >= -half; dx-- {
				for dy := half; dy >= -half; dy-- {
					window[k] = int(s.input[clamp(y+dy, sysarr.ImgHeight)*sysarr.ImgWidth+
						clamp(x+dx, sysarr.ImgWidth)])
					k++
				}
			}

			var val [sysarr.Height + 1][sysarr.Width + 1]int
			for r := 1; r <= sysarr.Height; r++ {
				for c := 1; c <= sysarr.Width; c++ {
					north := window[grid.tapNorth[c]]
					if r > 1 {
						north = val[r-1][c]
					}
					west := window[grid.tapWest[r]]
					if c > 1 {
						west = val[r][c-1]
					}
					val[r][c] = applyPE(set, grid.pe[r][c], north, west)
				}
			}

			out[y*sysarr.ImgWidth+x] = byte(val[grid.readRow+1][sysarr.Width])
		}
	}

	return out
}

// applyPE evaluates one PE function on its 8-bit north and west inputs. The
// arithmetic mirrors the two-stage LUT pipeline: an addition merge followed
// by a saturation merge.
func applyPE(set sysarr.FunctionSet, fn, n, w int) int {
	if fn == passWest {
		return w
	}
	if set == sysarr.SmallSet {
		return applySmall(fn, n, w)
	}
	return applyLarge(fn, n, w)
}

func applySmall(fn, n, w int) int {
	switch fn {
	case 0:
		return (n + w) & 255
	case 1:
		return (2 * n) & 255
	case 2:
		return (2 * w) & 255
	case 3:
		return sat(n + w)
	case 4:
		return sat(2 * n)
	case 5:
		return sat(2 * w)
	case 6:
		return (n + w) >> 1
	case 7:
		return 255
	case 8:
		return n >> 1
	case 9:
		return w >> 1
	case 10:
		return n
	case 11:
		return w
	case 12:
		return max(n, w)
	case 13:
		return min(n, w)
	case 14:
		return max(n-w, 0)
	case 15:
		return max(w-n, 0)
	default:
		panic("invalid PE function")
	}
}

func applyLarge(fn, n, w int) int {
	switch fn {
	case 0:
		return n
	case 1:
		return w
	case 2:
		return max(n, w)
	case 3:
		return min(n, w)
	case 4:
		return max(n+w-256, 0)
	case 5:
		return max(n-w, 0)
	case 6:
		return max(w-n, 0)
	case 7:
		return sat(n + w)
	case 8:
		if w <= n {
			return 255
		}
		return n - w + 256
	case 9:
		if n <= w {
			return 255
		}
		return w - n + 256
	case 10:
		return (n + w) & 255
	case 11:
		return (n - w) & 255
	case 12:
		return (w - n) & 255
	case 13:
		return (n + w) >> 1
	case 14:
		// Second stage halves the 9-bit complemented sum in both branches.
		return 255 - ((255 - n + w) >> 1)
	case 15:
		return 255 - ((255 - w + n) >> 1)
	case 16:
		// Absolute difference; the overflow side reads one low, matching
		// the LUT pipeline exactly.
		if w <= n {
			return n - w
		}
		return w - n - 1
	case 17:
		if n >= w {
			return 255
		}
		return 0
	case 18:
		if w >= n {
			return 255
		}
		return 0
	default:
		panic("invalid PE function")
	}
}

func sat(v int) int {
	if v > 255 {
		return 255
	}
	return v
}

func clamp(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v >= limit {
		return limit - 1
	}
	return v
}
