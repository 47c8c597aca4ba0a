package experiment

import "slices"

// Cell is one combination of the two factor levels
type Cell struct {
	Filter   bool
	Tutorial bool
}

// CellOrder is the canonical cell ordering: (T,T), (T,F), (F,T), (F,F)
var CellOrder = [4]Cell{
	{Filter: true, Tutorial: true},
	{Filter: true, Tutorial: false},
	{Filter: false, Tutorial: true},
	{Filter: false, Tutorial: false},
}

func (c Cell) index() int {
	switch {
	case c.Filter && c.Tutorial:
		return 0
	case c.Filter:
		return 1
	case c.Tutorial:
		return 2
	default:
		return 3
	}
}

// Code is the two-letter filter/tutorial code, e.g. "TF" for filters without tutorial
func (c Cell) Code() string {
	code := []byte("FF")
	if c.Filter {
		code[0] = 'T'
	}
	if c.Tutorial {
		code[1] = 'T'
	}
	return string(code)
}

// Label describes the condition the way the study protocol names it
func (c Cell) Label() string {
	switch c.index() {
	case 0:
		return "Filters and tutorial"
	case 1:
		return "Filters without tutorial"
	case 2:
		return "No filters with tutorial"
	default:
		return "Control (no filters, no tutorial)"
	}
}

// Cells holds the values of one measure split into the four factor cells.
// Values keep their insertion order within a cell.
type Cells struct {
	Measure Measure
	groups  [4][]float64
}

// NewCells allocates four buffers, each with room for capacity values
func NewCells(measure Measure, capacity int) *Cells {
	c := &Cells{Measure: measure}
	for i := range c.groups {
		c.groups[i] = make([]float64, 0, capacity)
	}
	return c
}

// Add appends a value to the given cell
func (c *Cells) Add(cell Cell, value float64) {
	i := cell.index()
	c.groups[i] = append(c.groups[i], value)
}

// Group returns a copy of the values in one cell
func (c *Cells) Group(cell Cell) []float64 {
	return slices.Clone(c.groups[cell.index()])
}

// Size returns the number of values in one cell
func (c *Cells) Size(cell Cell) int {
	return len(c.groups[cell.index()])
}

// Len is the total number of values across all cells
func (c *Cells) Len() int {
	n := 0
	for _, g := range c.groups {
		n += len(g)
	}
	return n
}

// Sizes maps cell codes to their sizes
func (c *Cells) Sizes() map[string]int {
	sizes := make(map[string]int, len(CellOrder))
	for _, cell := range CellOrder {
		sizes[cell.Code()] = c.Size(cell)
	}
	return sizes
}

// Balanced reports whether all four cells hold the same number of values
func (c *Cells) Balanced() bool {
	n := len(c.groups[0])
	for _, g := range c.groups[1:] {
		if len(g) != n {
			return false
		}
	}
	return true
}

// Concat returns the values of the given cells, in argument order
func (c *Cells) Concat(cells ...Cell) []float64 {
	var n int
	for _, cell := range cells {
		n += c.Size(cell)
	}
	out := make([]float64, 0, n)
	for _, cell := range cells {
		out = append(out, c.groups[cell.index()]...)
	}
	return out
}
