// internal/render/board.go
//
// Text rendering of a lesson for terminals and plain-text clients.
// Blocks snap to grid cells (position / layout.Unit); the first group draws
// as '■', the second as '□', empty cells as '·'.

package render

import (
	"strings"

	"github.com/robalobadob/blocksum/internal/layout"
)

const (
	cellFirst  = '■'
	cellSecond = '□'
	cellEmpty  = '·'
)

// Board draws blocks at their active positions. No blocks draws nothing.
func Board(blocks []layout.Block) string {
	return draw(blocks, func(b layout.Block) layout.Point { return b.Position })
}

// Frame draws blocks at explicit positions, e.g. from layout.Frame.
func Frame(blocks []layout.Block, at []layout.Point) string {
	return draw(blocks, func(b layout.Block) layout.Point { return at[b.Global] })
}

func draw(blocks []layout.Block, pos func(layout.Block) layout.Point) string {
	if len(blocks) == 0 {
		return ""
	}
	type cell struct{ row, col int }
	cells := make(map[cell]rune, len(blocks))
	rows, cols := 0, 0
	for _, b := range blocks {
		p := pos(b)
		c := cell{row: int(p.Y+layout.Unit/2) / layout.Unit, col: int(p.X+layout.Unit/2) / layout.Unit}
		r := cellFirst
		if b.Group == layout.GroupSecond {
			r = cellSecond
		}
		cells[c] = r
		rows = max(rows, c.row+1)
		cols = max(cols, c.col+1)
	}

	var sb strings.Builder
	for row := 0; row < rows; row++ {
		line := make([]rune, cols)
		for col := range line {
			if r, ok := cells[cell{row, col}]; ok {
				line[col] = r
			} else {
				line[col] = cellEmpty
			}
		}
		sb.WriteString(strings.TrimRight(string(line), string(cellEmpty)))
		sb.WriteByte('\n')
	}
	return sb.String()
}
