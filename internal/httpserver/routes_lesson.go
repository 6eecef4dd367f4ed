// internal/httpserver/routes_lesson.go
//
// HTTP routes for a lesson session. Mounted under /lesson:
//   - POST   /lesson/new          → create a lesson, issue its session token
//   - GET    /lesson              → current view (snapshot, blocks, localized text)
//   - DELETE /lesson              → end the session
//   - PUT    /lesson/operands     → set operands from free-form input (clamped)
//   - POST   /lesson/start        → begin the animation
//   - POST   /lesson/reveal       → show the sum
//   - POST   /lesson/reset        → back to idle, operands kept
//   - POST   /lesson/new-problem  → back to idle with default operands
//   - POST   /lesson/daily        → load the problem of the day
//   - GET    /lesson/blocks       → block layout only
//   - GET    /lesson/board        → text/plain rendering
//   - GET    /lesson/events       → Server-Sent Events stream of views
//
// Transitions that do not apply to the current phase are no-ops: the response
// is still 200 with the unchanged view and "changed": false.

package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/language"

	"github.com/robalobadob/blocksum/internal/daily"
	"github.com/robalobadob/blocksum/internal/i18n"
	"github.com/robalobadob/blocksum/internal/layout"
	"github.com/robalobadob/blocksum/internal/lesson"
	"github.com/robalobadob/blocksum/internal/numerals"
	"github.com/robalobadob/blocksum/internal/render"
	"github.com/robalobadob/blocksum/internal/store"
)

// eventBuffer is how many undelivered views an SSE client may lag behind
// before older ones are dropped.
const eventBuffer = 16

// mountLesson registers all /lesson routes.
func (s *Server) mountLesson(r chi.Router) {
	r.With(chimw.Timeout(s.timeout)).Post("/new", s.handleNewLesson)

	r.Group(func(r chi.Router) {
		r.Use(s.requireLesson)

		// The event stream is long-lived and must not inherit the timeout.
		r.Get("/events", s.handleEvents)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(s.timeout))
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleEnd)
			r.Put("/operands", s.handleOperands)
			r.Post("/start", s.transition((*lesson.Lesson).Start))
			r.Post("/reveal", s.transition((*lesson.Lesson).Reveal))
			r.Post("/reset", s.transition((*lesson.Lesson).Reset))
			r.Post("/new-problem", s.transition((*lesson.Lesson).NewProblem))
			r.Post("/daily", s.handleDaily)
			r.Get("/blocks", s.handleBlocks)
			r.Get("/board", s.handleBoard)
		})
	})
}

// ------------------------------- views -------------------------------------

// lessonView is the JSON shape of a lesson sent to clients.
type lessonView struct {
	lesson.Snapshot
	Changed    *bool          `json:"changed,omitempty"`
	Lang       string         `json:"lang"`
	StatusText string         `json:"statusText"`
	SumLabel   string         `json:"sumLabel,omitempty"`
	Kanji      string         `json:"kanji,omitempty"` // "十 + 十二 = 二十二" once revealed
	Blocks     []layout.Block `json:"blocks"`
}

func (s *Server) newView(snap lesson.Snapshot, tag language.Tag) lessonView {
	v := lessonView{
		Snapshot:   snap,
		Lang:       tag.String(),
		StatusText: i18n.Status(tag, snap),
		Blocks:     snap.Blocks(),
	}
	if snap.Sum != nil {
		v.SumLabel = i18n.SumLabel(tag, *snap.Sum)
		if eq, err := numerals.Equation(snap.OperandA, snap.OperandB, *snap.Sum); err == nil {
			v.Kanji = eq
		} else {
			s.logger.Warn().Err(err).Str("lesson", snap.ID).Msg("numeral word form")
		}
	}
	return v
}

func (s *Server) writeView(w http.ResponseWriter, r *http.Request, status int, l *lesson.Lesson, changed *bool) {
	v := s.newView(l.Snapshot(), i18n.ResolveTag(r, s.lang))
	v.Changed = changed
	s.writeJSON(w, status, v)
}

// ------------------------------ handlers -----------------------------------

// newLessonRes is the payload for POST /lesson/new.
type newLessonRes struct {
	ID      string     `json:"id"`
	Token   string     `json:"token"`
	Expires time.Time  `json:"expires"`
	Lesson  lessonView `json:"lesson"`
}

// handleNewLesson creates a lesson in the store and issues its session token
// (returned in the body and set as a cookie).
func (s *Server) handleNewLesson(w http.ResponseWriter, r *http.Request) {
	id := store.NewID()
	logger := s.logger
	l := lesson.New(lesson.Options{
		ID:                id,
		Scheduler:         s.sched,
		AnimationDuration: s.cfg.AnimationDuration,
		SettleDelay:       s.cfg.SettleDelay,
		Logger:            &logger,
	})
	if err := s.store.Save(r.Context(), l); err != nil {
		s.logger.Error().Err(err).Msg("save lesson")
		s.writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	tok, exp, err := s.signToken(id)
	if err != nil {
		s.logger.Error().Err(err).Msg("sign session token")
		s.writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setSessionCookie(w, tok, exp)
	s.logger.Info().Str("lesson", id).Int("active", s.store.Len()).Msg("lesson created")

	s.writeJSON(w, http.StatusCreated, newLessonRes{
		ID:      id,
		Token:   tok,
		Expires: exp,
		Lesson:  s.newView(l.Snapshot(), i18n.ResolveTag(r, s.lang)),
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.writeView(w, r, http.StatusOK, lessonFrom(r.Context()), nil)
}

// handleEnd deletes the lesson and clears the session cookie.
func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	l := lessonFrom(r.Context())
	if err := s.store.Delete(r.Context(), l.ID()); err != nil {
		s.logger.Warn().Err(err).Str("lesson", l.ID()).Msg("delete lesson")
	}
	s.clearSessionCookie(w)
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// operandsReq accepts numbers or strings; absent fields are left unchanged.
type operandsReq struct {
	A json.RawMessage `json:"a"`
	B json.RawMessage `json:"b"`
}

// handleOperands applies free-form operand input. Non-numeric input becomes 0
// and everything is clamped to [0,30]; it is ignored outside the idle phase.
func (s *Server) handleOperands(w http.ResponseWriter, r *http.Request) {
	var req operandsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	l := lessonFrom(r.Context())
	changed := false
	if req.A != nil {
		changed = l.SetOperandAText(operandText(req.A)) || changed
	}
	if req.B != nil {
		changed = l.SetOperandBText(operandText(req.B)) || changed
	}
	s.writeView(w, r, http.StatusOK, l, &changed)
}

// operandText turns a JSON string or number into the text an input box would hold.
func operandText(raw json.RawMessage) string {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return strings.TrimSpace(string(raw))
}

// transition adapts a lesson action to a handler.
func (s *Server) transition(action func(*lesson.Lesson) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := lessonFrom(r.Context())
		changed := action(l)
		s.writeView(w, r, http.StatusOK, l, &changed)
	}
}

// handleDaily loads today's deterministic operands (idle lessons only).
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	l := lessonFrom(r.Context())
	now := s.now()
	a, b := daily.Operands(now, s.cfg.DailySalt)
	changed := l.SetOperands(a, b)
	s.logger.Debug().Str("lesson", l.ID()).Str("date", daily.DateKey(now)).Int("a", a).Int("b", b).Bool("changed", changed).Msg("daily problem")
	s.writeView(w, r, http.StatusOK, l, &changed)
}

func (s *Server) handleBlocks(w http.ResponseWriter, r *http.Request) {
	snap := lessonFrom(r.Context()).Snapshot()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"phase":       snap.Phase,
		"arrangement": snap.Phase.Arrangement().String(),
		"blocks":      snap.Blocks(),
	})
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	snap := lessonFrom(r.Context()).Snapshot()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(render.Lesson(snap, i18n.ResolveTag(r, s.lang))))
}

// handleEvents streams a view on every lesson transition until the client
// disconnects or the lesson is closed. The current view is sent first. Each
// event and heartbeat counts as use of the lesson, so a watched lesson is
// not swept.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming_unsupported")
		return
	}
	ctx := r.Context()
	l := lessonFrom(ctx)
	tag := i18n.ResolveTag(r, s.lang)

	updates := make(chan lesson.Snapshot, eventBuffer)
	unsubscribe := l.Subscribe(func(snap lesson.Snapshot) {
		select {
		case updates <- snap:
		default:
			s.logger.Warn().Str("lesson", snap.ID).Uint64("seq", snap.Seq).Msg("event client lagging, dropped update")
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(snap lesson.Snapshot) error {
		b, err := json.Marshal(s.newView(snap, tag))
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "id: %d\nevent: lesson\ndata: %s\n\n", snap.Seq, b); err != nil {
			return err
		}
		flusher.Flush()
		return s.store.Touch(ctx, snap.ID)
	}

	if err := send(l.Snapshot()); err != nil {
		return
	}

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.Done():
			s.logger.Debug().Str("lesson", l.ID()).Msg("lesson closed, ending event stream")
			return
		case snap := <-updates:
			if err := send(snap); err != nil {
				s.logger.Debug().Err(err).Str("lesson", snap.ID).Msg("event stream closed")
				return
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
			if err := s.store.Touch(ctx, l.ID()); err != nil {
				s.logger.Debug().Err(err).Str("lesson", l.ID()).Msg("event stream lesson gone")
				return
			}
		}
	}
}
