package field

import (
	"github.com/pkg/errors"
)

// Grid is row-major cell storage whose length always equals width*height.
type Grid[T any] struct {
	width  int
	height int
	cells  []T
}

func NewGrid[T any](width, height int, fill T) (Grid[T], error) {
	if width < 0 || height < 0 {
		return Grid[T]{}, errors.Wrapf(ErrPreconditionViolation, "negative size %dx%d", width, height)
	}
	g := Grid[T]{width: width, height: height, cells: make([]T, width*height)}
	for i := range g.cells {
		g.cells[i] = fill
	}
	return g, nil
}

// GridFromCells takes ownership of cells, which must hold width*height items.
func GridFromCells[T any](width, height int, cells []T) (Grid[T], error) {
	if width < 0 || height < 0 || len(cells) != width*height {
		return Grid[T]{}, errors.Wrapf(ErrPreconditionViolation,
			"%d cells do not fit %dx%d", len(cells), width, height)
	}
	return Grid[T]{width: width, height: height, cells: cells}, nil
}

func (g *Grid[T]) Width() int  { return g.width }
func (g *Grid[T]) Height() int { return g.height }

// Cells exposes the backing slice.
func (g *Grid[T]) Cells() []T { return g.cells }

func (g *Grid[T]) index(x, y int) (int, error) {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return 0, outOfBounds(x, y, g.width, g.height)
	}
	return y*g.width + x, nil
}

func (g *Grid[T]) At(x, y int) (T, error) {
	i, err := g.index(x, y)
	if err != nil {
		var zero T
		return zero, err
	}
	return g.cells[i], nil
}

func (g *Grid[T]) Put(x, y int, v T) error {
	i, err := g.index(x, y)
	if err != nil {
		return err
	}
	g.cells[i] = v
	return nil
}

// Resize reallocates storage, keeping cells valid in both sizes and
// filling the rest. It reports whether the dimensions changed.
func (g *Grid[T]) Resize(width, height int, fill T) (bool, error) {
	if width < 0 || height < 0 {
		return false, errors.Wrapf(ErrPreconditionViolation, "negative size %dx%d", width, height)
	}
	if width == g.width && height == g.height {
		return false, nil
	}

	cells := make([]T, width*height)
	copyW, copyH := min(width, g.width), min(height, g.height)
	for y := 0; y < height; y++ {
		row := cells[y*width : (y+1)*width]
		n := 0
		if y < copyH {
			n = copy(row[:copyW], g.cells[y*g.width:y*g.width+copyW])
		}
		for x := n; x < width; x++ {
			row[x] = fill
		}
	}

	g.width, g.height, g.cells = width, height, cells
	return true, nil
}
