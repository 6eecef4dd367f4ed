// internal/daily/daily.go
//
// Problem of the day: a deterministic operand pair per UTC date, derived
// from HMAC(salt, YYYY-MM-DD) so every learner gets the same problem.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/robalobadob/blocksum/internal/lesson"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Operands returns the operand pair for a date, each in [0,30].
func Operands(date time.Time, salt string) (a, b int) {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	span := uint64(lesson.MaxOperand - lesson.MinOperand + 1)
	// first and second 8 bytes pick the two operands independently
	a = lesson.MinOperand + int(binary.BigEndian.Uint64(sum[:8])%span)
	b = lesson.MinOperand + int(binary.BigEndian.Uint64(sum[8:16])%span)
	return a, b
}
