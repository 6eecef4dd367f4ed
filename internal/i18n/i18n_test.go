package i18n

import (
	"net/http/httptest"
	"testing"

	"golang.org/x/text/language"

	"github.com/robalobadob/blocksum/internal/lesson"
)

func TestInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
}

func TestStatusPerPhase(t *testing.T) {
	cases := []struct {
		phase lesson.Phase
		tag   language.Tag
		want  string
	}{
		{lesson.PhaseIdle, language.Japanese, "計算してみよう！"},
		{lesson.PhaseAnimating, language.Japanese, "ブロックが動いているよ..."},
		{lesson.PhaseAwaitingReveal, language.Japanese, "いくつになったかな？「答えを見る」ボタンをおしてね！"},
		{lesson.PhaseIdle, language.English, "Let's calculate!"},
		{lesson.PhaseAnimating, language.English, "The blocks are moving..."},
	}
	for _, tc := range cases {
		s := lesson.Snapshot{Phase: tc.phase, Status: tc.phase.Status()}
		if got := Status(tc.tag, s); got != tc.want {
			t.Fatalf("Status(%s, %s) = %q, want %q", tc.tag, tc.phase, got, tc.want)
		}
	}
}

func TestStatusRevealed(t *testing.T) {
	sum := 22
	s := lesson.Snapshot{OperandA: 10, OperandB: 12, Phase: lesson.PhaseRevealed, Status: lesson.StatusRevealed, Sum: &sum}
	if got := Status(language.Japanese, s); got != "10 + 12 = 22" {
		t.Fatalf("revealed status = %q", got)
	}
	if got := SumLabel(language.Japanese, 22); got != "合計: 22" {
		t.Fatalf("sum label = %q", got)
	}
	if got := SumLabel(language.English, 22); got != "Total: 22" {
		t.Fatalf("sum label = %q", got)
	}
}

func TestText(t *testing.T) {
	if got := Text(language.Japanese, "action.reveal"); got != "答えを見る" {
		t.Fatalf("action.reveal = %q", got)
	}
}

func TestResolveTag(t *testing.T) {
	cases := []struct {
		url    string
		accept string
		want   language.Tag
	}{
		{"/lesson", "", language.Japanese},
		{"/lesson?lang=en", "", language.English},
		{"/lesson?lang=ja", "en-US", language.Japanese},
		{"/lesson", "en-GB,en;q=0.8", language.English},
		{"/lesson", "fr-FR", language.Japanese},
		{"/lesson?lang=zz", "en", language.English},
	}
	for _, tc := range cases {
		r := httptest.NewRequest("GET", tc.url, nil)
		if tc.accept != "" {
			r.Header.Set("Accept-Language", tc.accept)
		}
		if got := ResolveTag(r, language.Japanese); got != tc.want {
			t.Fatalf("ResolveTag(%q, %q) = %s, want %s", tc.url, tc.accept, got, tc.want)
		}
	}
}
