// internal/numerals/numerals.go
//
// Japanese numeral word forms for lesson operands and sums.
//
// Composition:
//   - A fixed table of place buckets (tens, ones) is walked left to right.
//   - Tens: 1 → "十", 2..9 → digit + "十".
//   - Ones: digit, omitted when zero (except for 0 itself → "零").
//
// Defined range is 0..99, which covers every sum two operands in 0..30
// can produce. Anything else is rejected with ErrOutOfRange.

package numerals

import (
	"errors"
	"fmt"
	"strings"
)

// Max is the largest value with a defined word form.
const Max = 99

// ErrOutOfRange is returned for values outside 0..Max.
var ErrOutOfRange = errors.New("numerals: value out of range")

var digits = [10]string{"零", "一", "二", "三", "四", "五", "六", "七", "八", "九"}

// place is one bucket of the composition table.
type place struct {
	value int
	word  func(d int) string
}

var places = []place{
	{value: 10, word: func(d int) string {
		if d == 1 {
			return "十"
		}
		return digits[d] + "十"
	}},
	{value: 1, word: func(d int) string { return digits[d] }},
}

// Kanji returns the word form of n, e.g. 22 → "二十二", 60 → "六十".
func Kanji(n int) (string, error) {
	if n < 0 || n > Max {
		return "", fmt.Errorf("%w: %d", ErrOutOfRange, n)
	}
	if n == 0 {
		return digits[0], nil
	}
	var sb strings.Builder
	rest := n
	for _, p := range places {
		d := rest / p.value
		rest %= p.value
		if d == 0 {
			continue
		}
		sb.WriteString(p.word(d))
	}
	return sb.String(), nil
}

// MustKanji is Kanji for values known to be in range.
func MustKanji(n int) string {
	s, err := Kanji(n)
	if err != nil {
		panic(err)
	}
	return s
}

// Equation renders "a + b = sum" with every term in word form.
func Equation(a, b, sum int) (string, error) {
	terms := make([]string, 0, 3)
	for _, n := range []int{a, b, sum} {
		w, err := Kanji(n)
		if err != nil {
			return "", err
		}
		terms = append(terms, w)
	}
	return terms[0] + " + " + terms[1] + " = " + terms[2], nil
}
