package detection

import (
	"math"
	"math/rand"
)

// Circle is a circle in continuous pixel coordinates.
type Circle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// containsEps absorbs floating point error when testing boundary points.
const containsEps = 1e-7

func (c Circle) contains(x, y float64) bool {
	return math.Hypot(x-c.X, y-c.Y) <= c.Radius+containsEps*math.Max(1, c.Radius)
}

// MinEnclosingCircle returns the smallest circle containing every point.
//
// Parameters:
//   - points: Pixel centers. Not modified; the shuffle works on a copy.
//
// Returns:
//   - Circle: The enclosing circle. An empty slice yields the zero Circle and
//     a single point a circle of radius 0.
//
// Uses Welzl's randomized incremental algorithm in expected O(n) time. The
// shuffle is seeded with a constant, so the result is deterministic.
func MinEnclosingCircle(points []Point) Circle {
	if len(points) == 0 {
		return Circle{}
	}

	pts := make([][2]float64, len(points))
	for i, p := range points {
		pts[i] = [2]float64{float64(p.X), float64(p.Y)}
	}
	rng := rand.New(rand.NewSource(1))
	rng.Shuffle(len(pts), func(i, j int) { pts[i], pts[j] = pts[j], pts[i] })

	c := Circle{X: pts[0][0], Y: pts[0][1]}
	for i := 1; i < len(pts); i++ {
		if c.contains(pts[i][0], pts[i][1]) {
			continue
		}
		c = Circle{X: pts[i][0], Y: pts[i][1]}
		for j := 0; j < i; j++ {
			if c.contains(pts[j][0], pts[j][1]) {
				continue
			}
			c = circleFrom2(pts[i], pts[j])
			for k := 0; k < j; k++ {
				if !c.contains(pts[k][0], pts[k][1]) {
					c = circleFrom3(pts[i], pts[j], pts[k])
				}
			}
		}
	}

	return c
}

// circleFrom2 is the circle with segment ab as its diameter.
func circleFrom2(a, b [2]float64) Circle {
	return Circle{
		X:      (a[0] + b[0]) / 2,
		Y:      (a[1] + b[1]) / 2,
		Radius: math.Hypot(a[0]-b[0], a[1]-b[1]) / 2,
	}
}

// circleFrom3 is the circumcircle of a, b and c. Collinear points have no
// circumcircle, so the widest two-point circle is used instead.
func circleFrom3(a, b, c [2]float64) Circle {
	bx, by := b[0]-a[0], b[1]-a[1]
	cx, cy := c[0]-a[0], c[1]-a[1]

	d := 2 * (bx*cy - by*cx)
	if math.Abs(d) < 1e-12 {
		best := circleFrom2(a, b)
		for _, cand := range []Circle{circleFrom2(a, c), circleFrom2(b, c)} {
			if cand.Radius > best.Radius {
				best = cand
			}
		}
		return best
	}

	bb := bx*bx + by*by
	cc := cx*cx + cy*cy
	ux := (cy*bb - by*cc) / d
	uy := (bx*cc - cx*bb) / d

	return Circle{X: a[0] + ux, Y: a[1] + uy, Radius: math.Hypot(ux, uy)}
}
