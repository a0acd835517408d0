package tui

import "github.com/verte-zerg/tracer/internal/geometry"

// canvasGrid maps the trace canvas onto a terminal cell grid. Terminal
// cells are roughly twice as tall as wide, so the grid uses two columns
// per row step to keep shapes visually square.
type canvasGrid struct {
	canvas geometry.Rect
	cols   int
	rows   int
	// originX/originY locate the grid's top-left cell on screen.
	originX int
	originY int
}

func newCanvasGrid(canvas geometry.Rect, cols, rows, originX, originY int) canvasGrid {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return canvasGrid{canvas: canvas, cols: cols, rows: rows, originX: originX, originY: originY}
}

// cellSize returns the canvas extent of one terminal cell.
func (g canvasGrid) cellSize() (w, h float64) {
	return g.canvas.Width / float64(g.cols), g.canvas.Height / float64(g.rows)
}

// cellCenter returns the canvas point at the center of cell (col, row).
func (g canvasGrid) cellCenter(col, row int) geometry.Point {
	cw, ch := g.cellSize()
	return geometry.Pt(
		g.canvas.MinX+(float64(col)+0.5)*cw,
		g.canvas.MinY+(float64(row)+0.5)*ch,
	)
}

// screenToCanvas converts a terminal coordinate to a canvas point. The
// second result is false when the coordinate falls outside the grid;
// the point is still returned, extrapolated past the canvas edge, so
// off-canvas touches keep a meaningful position.
func (g canvasGrid) screenToCanvas(x, y int) (geometry.Point, bool) {
	col := x - g.originX
	row := y - g.originY
	cw, ch := g.cellSize()
	p := geometry.Pt(
		g.canvas.MinX+(float64(col)+0.5)*cw,
		g.canvas.MinY+(float64(row)+0.5)*ch,
	)
	inside := col >= 0 && col < g.cols && row >= 0 && row < g.rows
	return p, inside
}
