// internal/lesson/types.go
//
// Core type definitions for the addition lesson.
// Defines:
//   - Phase: lifecycle state (idle → animating → awaiting_reveal → revealed).
//   - StatusKey: message catalog key describing the phase to the learner.
//   - Snapshot: immutable copy of a lesson's state handed to observers.

package lesson

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/robalobadob/blocksum/internal/layout"
)

// Phase is the lifecycle state of a lesson.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseAnimating      Phase = "animating"
	PhaseAwaitingReveal Phase = "awaiting_reveal"
	PhaseRevealed       Phase = "revealed"
)

// Operand bounds and defaults.
const (
	MinOperand = 0
	MaxOperand = 30

	DefaultA = 10
	DefaultB = 12
)

// Timing defaults.
const (
	DefaultAnimationDuration = 2000 * time.Millisecond
	DefaultSettleDelay       = 100 * time.Millisecond
)

// StatusKey names the learner-facing status line for a phase.
type StatusKey string

const (
	StatusReady     StatusKey = "status.ready"
	StatusAnimating StatusKey = "status.animating"
	StatusAwaiting  StatusKey = "status.awaiting"
	StatusRevealed  StatusKey = "status.revealed"
)

// Status returns the status key for p.
func (p Phase) Status() StatusKey {
	switch p {
	case PhaseAnimating:
		return StatusAnimating
	case PhaseAwaitingReveal:
		return StatusAwaiting
	case PhaseRevealed:
		return StatusRevealed
	default:
		return StatusReady
	}
}

// Arrangement maps the phase to the block arrangement shown for it.
func (p Phase) Arrangement() layout.Arrangement {
	if p == PhaseIdle {
		return layout.Rest
	}
	return layout.Assembled
}

// Snapshot is a point-in-time copy of a lesson.
type Snapshot struct {
	ID       string    `json:"id"`
	Seq      uint64    `json:"seq"` // increments on every effective transition
	OperandA int       `json:"operandA"`
	OperandB int       `json:"operandB"`
	Phase    Phase     `json:"phase"`
	Sum      *int      `json:"sum,omitempty"` // set only when revealed
	Settling bool      `json:"settling"`      // new problem is being prepared
	Locked   bool      `json:"locked"`        // operands cannot be edited
	Status   StatusKey `json:"status"`
}

// Blocks is the block layout for the snapshot.
func (s Snapshot) Blocks() []layout.Block {
	return Layout(s.OperandA, s.OperandB, s.Phase)
}

// Layout maps operands and phase to positioned blocks: resting grids while
// idle, the combined answer grid otherwise.
func Layout(a, b int, p Phase) []layout.Block {
	return layout.Generate(a, b, p.Arrangement())
}

// Clamp limits v to [MinOperand, MaxOperand].
func Clamp(v int) int {
	switch {
	case v < MinOperand:
		return MinOperand
	case v > MaxOperand:
		return MaxOperand
	}
	return v
}

// ParseOperand converts free-form input to an operand. Non-numeric input is 0;
// numbers beyond the int range clamp like any other out-of-range value.
func ParseOperand(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return Clamp(n)
}
