// internal/i18n/i18n.go
//
// Learner-facing text for the lesson in Japanese (default) and English.
//
// Catalogs are read once from the embedded assets into an x/text catalog;
// callers get a *message.Printer per request tag. Tag resolution order:
// ?lang= query parameter, Accept-Language header, configured default.

package i18n

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/robalobadob/blocksum/assets"
	"github.com/robalobadob/blocksum/internal/lesson"
)

// LangParam is the query parameter used to select a language.
const LangParam = "lang"

var supported = []language.Tag{language.Japanese, language.English}

var matcher = language.NewMatcher(supported)

var (
	initOnce sync.Once
	builder  *catalog.Builder
	initErr  error
)

// Init loads the embedded catalogs. Safe to call more than once.
func Init() error {
	initOnce.Do(func() {
		b := catalog.NewBuilder(catalog.Fallback(language.Japanese))
		for _, tag := range supported {
			base, _ := tag.Base()
			msgs, err := assets.Messages(base.String())
			if err != nil {
				initErr = fmt.Errorf("load %s catalog: %w", tag, err)
				return
			}
			for k, v := range msgs {
				if err := b.SetString(tag, k, v); err != nil {
					initErr = fmt.Errorf("set %s/%s: %w", tag, k, err)
					return
				}
			}
		}
		builder = b
	})
	return initErr
}

// Supported returns the supported language tags, default first.
func Supported() []language.Tag { return supported }

// Parse maps a language string to the closest supported tag.
// ok is false when nothing supported is close.
func Parse(s string) (tag language.Tag, ok bool) {
	t, err := language.Parse(strings.TrimSpace(s))
	if err != nil {
		return language.Und, false
	}
	return match(t)
}

func match(tags ...language.Tag) (language.Tag, bool) {
	_, idx, conf := matcher.Match(tags...)
	return supported[idx], conf != language.No
}

// ResolveTag determines the language for a request.
func ResolveTag(r *http.Request, def language.Tag) language.Tag {
	if r == nil {
		return def
	}
	if v := r.URL.Query().Get(LangParam); v != "" {
		if tag, ok := Parse(v); ok {
			return tag
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			if tag, ok := match(tags...); ok {
				return tag
			}
		}
	}
	return def
}

// Printer returns a message printer for tag.
func Printer(tag language.Tag) *message.Printer {
	if err := Init(); err != nil {
		return message.NewPrinter(tag)
	}
	return message.NewPrinter(tag, message.Catalog(builder))
}

// Text returns the message for key with no arguments.
func Text(tag language.Tag, key string) string {
	return Printer(tag).Sprintf(key)
}

// Status returns the status line for a snapshot.
func Status(tag language.Tag, s lesson.Snapshot) string {
	p := Printer(tag)
	if s.Status == lesson.StatusRevealed && s.Sum != nil {
		return p.Sprintf(string(s.Status), s.OperandA, s.OperandB, *s.Sum)
	}
	return p.Sprintf(string(s.Status))
}

// SumLabel returns the "total" badge for a revealed sum.
func SumLabel(tag language.Tag, sum int) string {
	return Printer(tag).Sprintf("lesson.sum", sum)
}
