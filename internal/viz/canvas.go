package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Each cell is a braille glyph holding a 2x4 grid of dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
const brailleBlank rune = 0x2800

var brailleDots = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of braille cells addressed in dot coordinates. The dot
// resolution is (Width*2) x (Height*4). A cell takes the color of the last
// dot set in it.
type Canvas struct {
	Width, Height int
	cells         []rune
	colors        []lipgloss.Color
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		cells:  make([]rune, w*h),
		colors: make([]lipgloss.Color, w*h),
	}
	c.Clear()
	return c
}

// Dots returns the canvas size in dots.
func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = brailleBlank
		c.colors[i] = ""
	}
}

func (c *Canvas) cell(x, y int) (int, bool) {
	if x < 0 || y < 0 {
		return 0, false
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, false
	}
	return row*c.Width + col, true
}

func (c *Canvas) Set(x, y int) { c.SetColor(x, y, "") }

// SetColor sets the dot at (x, y); an empty color keeps the cell's color.
func (c *Canvas) SetColor(x, y int, color lipgloss.Color) {
	idx, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.cells[idx] |= brailleDots[y%4][x%2]
	if color != "" {
		c.colors[idx] = color
	}
}

func (c *Canvas) IsSet(x, y int) bool {
	idx, ok := c.cell(x, y)
	if !ok {
		return false
	}
	return c.cells[idx]&brailleDots[y%4][x%2] != 0
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, color lipgloss.Color) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.SetColor(x0, y0, color)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Disc fills a disc of radius r dots centred on (x, y).
func (c *Canvas) Disc(x, y, r int, color lipgloss.Color) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				c.SetColor(x+dx, y+dy, color)
			}
		}
	}
}

// String renders the canvas without color.
func (c *Canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.Height; row++ {
		b.WriteString(string(c.cells[row*c.Width : (row+1)*c.Width]))
		b.WriteByte('\n')
	}
	return b.String()
}

// Render renders the canvas with each cell in its color.
func (c *Canvas) Render() string {
	var b strings.Builder
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			idx := row*c.Width + col
			glyph := string(c.cells[idx])
			if color := c.colors[idx]; color != "" && c.cells[idx] != brailleBlank {
				glyph = lipgloss.NewStyle().Foreground(color).Render(glyph)
			}
			b.WriteString(glyph)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
