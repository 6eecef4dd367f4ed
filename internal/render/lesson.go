package render

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/robalobadob/blocksum/internal/i18n"
	"github.com/robalobadob/blocksum/internal/lesson"
	"github.com/robalobadob/blocksum/internal/numerals"
)

// Lesson renders the equation line, status, kanji line (once revealed) and board.
func Lesson(s lesson.Snapshot, tag language.Tag) string {
	var sb strings.Builder
	answer := "?"
	if s.Sum != nil {
		answer = fmt.Sprint(*s.Sum)
	}
	fmt.Fprintf(&sb, "%d + %d = %s\n", s.OperandA, s.OperandB, answer)
	sb.WriteString(i18n.Status(tag, s))
	sb.WriteByte('\n')
	if s.Sum != nil {
		if eq, err := numerals.Equation(s.OperandA, s.OperandB, *s.Sum); err == nil {
			sb.WriteString(eq)
			sb.WriteByte('\n')
		}
	}
	sb.WriteString(Board(s.Blocks()))
	return sb.String()
}
