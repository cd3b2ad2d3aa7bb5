package detection

import (
	"image"
	"sort"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Contour is the outer boundary of one connected foreground region.
type Contour struct {
	// Points are the region's boundary pixels in raster order: foreground
	// pixels with a 4-neighbor that lies outside the region or off the mask.
	Points []Point

	// Area is the number of pixels enclosed by the boundary, holes included.
	Area int
}

// FindExternalContours extracts the outer contours of a binary mask.
//
// Nonzero mask pixels are foreground. Foreground is 8-connected and background
// is 4-connected, so a background pocket that cannot reach the mask border
// through edge-adjacent background pixels is a hole. Holes, and any blobs
// sitting inside them, belong to the enclosing region and never produce a
// contour of their own.
//
// Contours are returned in raster order of their topmost-leftmost pixel.
// Point coordinates are relative to the mask's bounds.
//
// # Algorithm
//
//  1. Flood the background from every border pixel (4-connected) to find
//     the pixels outside all regions
//  2. Group the remaining pixels into 8-connected components; each
//     component is one region with its holes filled
//  3. Collect the component's pixels adjacent to the outside as its boundary
func FindExternalContours(mask *image.Gray) []Contour {
	bounds := mask.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	g := newCellGrid(width, height)
	for y := 0; y < height; y++ {
		row := mask.Pix[mask.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		for x := 0; x < width; x++ {
			if row[x] != 0 {
				g.cells[y*width+x] = cellForeground
			}
		}
	}

	g.floodOutside()

	contours := make([]Contour, 0)
	for i, c := range g.cells {
		if c == cellBackground || c == cellForeground {
			contours = append(contours, g.traceRegion(i))
		}
	}

	return contours
}

// Largest returns the contour with the greatest area, or nil if there are
// none. On equal areas the earliest contour wins.
func Largest(contours []Contour) *Contour {
	var best *Contour
	for i := range contours {
		if best == nil || contours[i].Area > best.Area {
			best = &contours[i]
		}
	}
	return best
}

// Cell states of a cellGrid.
const (
	cellBackground uint8 = iota // background not yet reached from the border
	cellForeground              // foreground not yet assigned to a region
	cellOutside                 // background connected to the border
	cellRegion                  // assigned to a traced region
)

// cellGrid is a flat, row-major state buffer over a mask. Both fills mark a
// cell when it is pushed, so every cell enters a stack at most once.
type cellGrid struct {
	cells         []uint8
	width, height int
	stack         []int
}

func newCellGrid(width, height int) *cellGrid {
	return &cellGrid{
		cells:  make([]uint8, width*height),
		width:  width,
		height: height,
	}
}

// floodOutside marks background cells reachable from the mask border
// through 4-connected background.
func (g *cellGrid) floodOutside() {
	w, h := g.width, g.height
	g.stack = g.stack[:0]

	push := func(i int) {
		if g.cells[i] == cellBackground {
			g.cells[i] = cellOutside
			g.stack = append(g.stack, i)
		}
	}

	for x := 0; x < w; x++ {
		push(x)
		push((h-1)*w + x)
	}
	for y := 0; y < h; y++ {
		push(y * w)
		push(y*w + w - 1)
	}

	for len(g.stack) > 0 {
		i := g.stack[len(g.stack)-1]
		g.stack = g.stack[:len(g.stack)-1]

		x, y := i%w, i/w
		if x > 0 {
			push(i - 1)
		}
		if x < w-1 {
			push(i + 1)
		}
		if y > 0 {
			push(i - w)
		}
		if y < h-1 {
			push(i + w)
		}
	}
}

// traceRegion flood-fills one 8-connected region of non-outside cells
// starting at cell start, counting its area and gathering its boundary.
func (g *cellGrid) traceRegion(start int) Contour {
	w, h := g.width, g.height
	var c Contour

	g.cells[start] = cellRegion
	g.stack = append(g.stack[:0], start)

	for len(g.stack) > 0 {
		i := g.stack[len(g.stack)-1]
		g.stack = g.stack[:len(g.stack)-1]

		x, y := i%w, i/w
		c.Area++
		if g.onBoundary(x, y) {
			c.Points = append(c.Points, Point{X: x, Y: y})
		}

		// 8-connected neighbors
		for dy := -1; dy <= 1; dy++ {
			ny := y + dy
			if ny < 0 || ny >= h {
				continue
			}
			for dx := -1; dx <= 1; dx++ {
				nx := x + dx
				if (dx == 0 && dy == 0) || nx < 0 || nx >= w {
					continue
				}
				n := ny*w + nx
				if s := g.cells[n]; s == cellBackground || s == cellForeground {
					g.cells[n] = cellRegion
					g.stack = append(g.stack, n)
				}
			}
		}
	}

	sortRaster(c.Points)
	return c
}

func (g *cellGrid) onBoundary(x, y int) bool {
	w := g.width
	if x == 0 || y == 0 || x == w-1 || y == g.height-1 {
		return true
	}
	i := y*w + x
	return g.cells[i-1] == cellOutside || g.cells[i+1] == cellOutside ||
		g.cells[i-w] == cellOutside || g.cells[i+w] == cellOutside
}

// sortRaster orders points top-to-bottom, then left-to-right.
func sortRaster(points []Point) {
	sort.Slice(points, func(i, j int) bool {
		if points[i].Y != points[j].Y {
			return points[i].Y < points[j].Y
		}
		return points[i].X < points[j].X
	})
}
