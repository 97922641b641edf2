package viz

import "strings"

// Braille patterns pack a 2x4 dot block into one rune:
//
//	1 4
//	2 5
//	3 6
//	7 8
//
// Unicode offset 0x2800.
var dotMask = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille pixel grid addressed in world coordinates. A canvas of
// W x H character cells resolves 2W x 4H dots; the world window maps onto the
// full dot grid with y increasing upward.
type Canvas struct {
	Width, Height          int
	grid                   [][]rune
	xmin, xmax, ymin, ymax float64
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, grid: make([][]rune, h), xmax: 1, ymax: 1}
	for i := range c.grid {
		c.grid[i] = make([]rune, w)
		for j := range c.grid[i] {
			c.grid[i][j] = 0x2800
		}
	}
	return c
}

// SetWindow fixes the world rectangle the dot grid covers. Degenerate spans
// are widened so a single point still lands on the canvas.
func (c *Canvas) SetWindow(xmin, xmax, ymin, ymax float64) {
	if xmax <= xmin {
		xmin, xmax = xmin-0.5, xmin+0.5
	}
	if ymax <= ymin {
		ymin, ymax = ymin-0.5, ymin+0.5
	}
	c.xmin, c.xmax, c.ymin, c.ymax = xmin, xmax, ymin, ymax
}

// Window returns the current world rectangle.
func (c *Canvas) Window() (xmin, xmax, ymin, ymax float64) {
	return c.xmin, c.xmax, c.ymin, c.ymax
}

// Mark sets the dot nearest to a world point. Points outside the window are
// dropped.
func (c *Canvas) Mark(x, y float64) {
	px, py, ok := c.toDot(x, y)
	if ok {
		c.set(px, py)
	}
}

// Line draws a world-coordinate segment with Bresenham's algorithm.
func (c *Canvas) Line(x0, y0, x1, y1 float64) {
	p0x, p0y, ok0 := c.toDot(x0, y0)
	p1x, p1y, ok1 := c.toDot(x1, y1)
	if !ok0 || !ok1 {
		return
	}

	dx := absInt(p1x - p0x)
	dy := absInt(p1y - p0y)
	sx, sy := -1, -1
	if p0x < p1x {
		sx = 1
	}
	if p0y < p1y {
		sy = 1
	}
	err := dx - dy

	for {
		c.set(p0x, p0y)
		if p0x == p1x && p0y == p1y {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			p0x += sx
		}
		if e2 < dx {
			err += dx
			p0y += sy
		}
	}
}

func (c *Canvas) Clear() {
	for i := range c.grid {
		for j := range c.grid[i] {
			c.grid[i][j] = 0x2800
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// toDot maps a world point to dot coordinates, y flipped so the window's
// ymax sits on the top row.
func (c *Canvas) toDot(x, y float64) (int, int, bool) {
	if x < c.xmin || x > c.xmax || y < c.ymin || y > c.ymax {
		return 0, 0, false
	}
	dotsX := float64(c.Width*2 - 1)
	dotsY := float64(c.Height*4 - 1)
	px := int(dotsX * (x - c.xmin) / (c.xmax - c.xmin))
	py := int(dotsY * (c.ymax - y) / (c.ymax - c.ymin))
	return px, py, true
}

func (c *Canvas) set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.grid[row][col] |= dotMask[y%4][x%2]
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
