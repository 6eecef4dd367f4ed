// internal/layout/layout.go
//
// Block layout for the addition board.
// Responsibilities:
//   - Generate one Block per counted unit of each operand.
//   - Compute each block's resting position (two separate 10-column grids)
//     and assembled position (one combined 10-column grid at the answer anchor).
//   - Attach transition timing so renderers can stagger the second group.
//
// Generate is a pure function: identical inputs always yield identical output.

package layout

import (
	"strconv"
	"time"
)

// Board geometry, in board pixels.
const (
	Unit      = 30 // grid pitch
	BlockSize = 25 // drawn block edge
	Columns   = 10

	FirstRowOffset  = 50  // y of the first group's resting grid
	SecondRowOffset = 150 // y of the second group's resting grid

	AnchorX = 150 // top-left of the assembled grid
	AnchorY = 100
)

// Transition timing.
const (
	Duration         = time.Second
	SecondGroupDelay = 500 * time.Millisecond
)

// Group identifies which operand a block counts toward.
type Group string

const (
	GroupFirst  Group = "first"
	GroupSecond Group = "second"
)

// Color returns the fill color of the group.
func (g Group) Color() string {
	if g == GroupSecond {
		return "#99CCFF"
	}
	return "#FF9999"
}

// Arrangement selects which of a block's two positions is active.
type Arrangement int

const (
	Rest Arrangement = iota
	Assembled
)

func (a Arrangement) String() string {
	if a == Assembled {
		return "assembled"
	}
	return "rest"
}

// Point is a board position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Block is one visual unit. ID is stable across arrangements for the same
// group and index, which keeps animations continuous.
type Block struct {
	ID        string        `json:"id"`
	Group     Group         `json:"group"`
	Color     string        `json:"color"`
	Index     int           `json:"index"`  // within the group
	Global    int           `json:"global"` // across both groups, first group first
	Rest      Point         `json:"rest"`
	Assembled Point         `json:"assembled"`
	Position  Point         `json:"position"` // active position
	Delay     time.Duration `json:"delay"`
}

// At returns the block's position for arrangement a.
func (b Block) At(a Arrangement) Point {
	if a == Assembled {
		return b.Assembled
	}
	return b.Rest
}

// Generate lays out a blocks for the first group and b for the second.
// Negative counts produce no blocks.
func Generate(a, b int, arr Arrangement) []Block {
	a, b = max(a, 0), max(b, 0)
	out := make([]Block, 0, a+b)
	global := 0
	for _, grp := range []struct {
		group  Group
		count  int
		offset int
		delay  time.Duration
	}{
		{GroupFirst, a, FirstRowOffset, 0},
		{GroupSecond, b, SecondRowOffset, SecondGroupDelay},
	} {
		for i := 0; i < grp.count; i++ {
			blk := Block{
				ID:        string(grp.group) + "-" + strconv.Itoa(i),
				Group:     grp.group,
				Color:     grp.group.Color(),
				Index:     i,
				Global:    global,
				Rest:      cell(i, 0, grp.offset),
				Assembled: cell(global, AnchorX, AnchorY),
				Delay:     grp.delay,
			}
			blk.Position = blk.At(arr)
			out = append(out, blk)
			global++
		}
	}
	return out
}

// cell places index i in a Columns-wide grid whose top-left is (x0, y0).
func cell(i, x0, y0 int) Point {
	return Point{
		X: float64(x0 + (i%Columns)*Unit),
		Y: float64(y0 + (i/Columns)*Unit),
	}
}
