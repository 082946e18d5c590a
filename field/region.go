package field

// Point is a single grid coordinate.
type Point struct {
	X, Y int
}

// Region is an inclusive rectangular selection. Top is the larger y.
type Region struct {
	Left, Right int
	Top, Bottom int
}

// NewRegion builds a region from two opposite corners in any order,
// so the result is never inverted.
func NewRegion(a, b Point) Region {
	r := Region{Left: a.X, Right: b.X, Top: a.Y, Bottom: b.Y}
	if r.Left > r.Right {
		r.Left, r.Right = r.Right, r.Left
	}
	if r.Bottom > r.Top {
		r.Bottom, r.Top = r.Top, r.Bottom
	}
	return r
}

// RegionOf returns the full extent of f. Empty fields give an invalid region.
func RegionOf(f Field) Region {
	return Region{Left: 0, Right: f.Width() - 1, Bottom: 0, Top: f.Height() - 1}
}

// Valid is false for literals built with inverted bounds.
func (r Region) Valid() bool {
	return r.Left <= r.Right && r.Bottom <= r.Top
}

func (r Region) Width() int {
	if r.Left > r.Right {
		return 0
	}
	return r.Right - r.Left + 1
}

func (r Region) Height() int {
	if r.Bottom > r.Top {
		return 0
	}
	return r.Top - r.Bottom + 1
}

func (r Region) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Bottom && p.Y <= r.Top
}

// Points returns every coordinate of the region in row-major order.
func (r Region) Points() []Point {
	if !r.Valid() {
		return nil
	}
	pts := make([]Point, 0, r.Width()*r.Height())
	for y := r.Bottom; y <= r.Top; y++ {
		for x := r.Left; x <= r.Right; x++ {
			pts = append(pts, Point{X: x, Y: y})
		}
	}
	return pts
}
