// internal/lesson/lesson.go
//
// Lesson state machine for one addition problem.
//
// Transitions:
//   - idle            --Start-->       animating        (operands locked, timer scheduled)
//   - animating       --timer-->       awaiting_reveal
//   - awaiting_reveal --Reveal-->      revealed         (sum frozen)
//   - revealed        --NewProblem-->  idle             (operands zeroed, defaults after settle delay)
//   - any             --Reset-->       idle             (operands kept, pending timer cancelled)
//
// Transitions outside their source phase are silent no-ops. Every effective
// transition bumps Seq and notifies subscribers with a fresh Snapshot.
// Subscribers see snapshots in Seq order; one overtaken by a newer
// transition before delivery is dropped.
//
// Timers fire on their own goroutine, so state is guarded by a mutex. Each
// scheduled task carries a generation number; a callback whose generation no
// longer matches (because Reset or another schedule superseded it) does nothing.

package lesson

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/blocksum/internal/layout"
)

// Options configures a Lesson. Zero values select the defaults.
type Options struct {
	ID                string
	Scheduler         Scheduler
	AnimationDuration time.Duration
	SettleDelay       time.Duration
	Logger            *zerolog.Logger
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// Lesson owns one LessonState and its pending timer.
type Lesson struct {
	mu sync.Mutex

	id       string
	a, b     int
	phase    Phase
	sum      int
	settling bool
	seq      uint64
	closed   bool

	sched       Scheduler
	animation   time.Duration
	settleDelay time.Duration
	pending     Timer
	gen         uint64

	subs    []subscriber
	nextSub int
	done    chan struct{}

	notifyMu  sync.Mutex // serializes delivery
	delivered uint64     // Seq of the last delivered snapshot

	log zerolog.Logger
}

// New creates a lesson with default operands in the idle phase.
func New(opts Options) *Lesson {
	l := &Lesson{
		id:          opts.ID,
		a:           DefaultA,
		b:           DefaultB,
		phase:       PhaseIdle,
		sched:       opts.Scheduler,
		animation:   opts.AnimationDuration,
		settleDelay: opts.SettleDelay,
		log:         zerolog.Nop(),
		done:        make(chan struct{}),
	}
	if l.sched == nil {
		l.sched = WallClock
	}
	if l.animation <= 0 {
		l.animation = DefaultAnimationDuration
	}
	if l.settleDelay <= 0 {
		l.settleDelay = DefaultSettleDelay
	}
	if opts.Logger != nil {
		l.log = opts.Logger.With().Str("lesson", opts.ID).Logger()
	}
	return l
}

// ID returns the lesson identifier.
func (l *Lesson) ID() string { return l.id }

// ------------------------------ actions -----------------------------------

// SetOperandA sets the first operand, clamped to [0,30]. Ignored unless idle.
func (l *Lesson) SetOperandA(v int) bool {
	return l.apply("set_operand_a", func() bool { return l.setOperandsLocked(Clamp(v), l.b) })
}

// SetOperandB sets the second operand, clamped to [0,30]. Ignored unless idle.
func (l *Lesson) SetOperandB(v int) bool {
	return l.apply("set_operand_b", func() bool { return l.setOperandsLocked(l.a, Clamp(v)) })
}

// SetOperandAText parses free-form input for the first operand.
func (l *Lesson) SetOperandAText(s string) bool { return l.SetOperandA(ParseOperand(s)) }

// SetOperandBText parses free-form input for the second operand.
func (l *Lesson) SetOperandBText(s string) bool { return l.SetOperandB(ParseOperand(s)) }

// SetOperands sets both operands in one transition.
func (l *Lesson) SetOperands(a, b int) bool {
	return l.apply("set_operands", func() bool { return l.setOperandsLocked(Clamp(a), Clamp(b)) })
}

func (l *Lesson) setOperandsLocked(a, b int) bool {
	if l.lockedLocked() || (a == l.a && b == l.b) {
		return false
	}
	l.a, l.b = a, b
	return true
}

// Start begins the block animation. Ignored unless idle.
func (l *Lesson) Start() bool {
	return l.apply("start", func() bool {
		if l.lockedLocked() {
			return false
		}
		l.phase = PhaseAnimating
		l.scheduleLocked(l.animation, l.finishAnimation)
		return true
	})
}

func (l *Lesson) finishAnimation(gen uint64) {
	l.apply("animation_done", func() bool {
		if gen != l.gen || l.phase != PhaseAnimating {
			return false
		}
		l.pending = nil
		l.phase = PhaseAwaitingReveal
		return true
	})
}

// Reveal freezes and shows the sum. Ignored unless awaiting reveal.
func (l *Lesson) Reveal() bool {
	return l.apply("reveal", func() bool {
		if l.phase != PhaseAwaitingReveal {
			return false
		}
		l.sum = l.a + l.b
		l.phase = PhaseRevealed
		return true
	})
}

// NewProblem returns a revealed lesson to idle. Operands drop to zero at once
// and settle to the defaults after the settle delay.
func (l *Lesson) NewProblem() bool {
	return l.apply("new_problem", func() bool {
		if l.phase != PhaseRevealed {
			return false
		}
		l.phase = PhaseIdle
		l.sum = 0
		l.a, l.b = 0, 0
		l.settling = true
		l.scheduleLocked(l.settleDelay, l.finishSettle)
		return true
	})
}

func (l *Lesson) finishSettle(gen uint64) {
	l.apply("settled", func() bool {
		if gen != l.gen || !l.settling {
			return false
		}
		l.pending = nil
		l.settleLocked()
		return true
	})
}

func (l *Lesson) settleLocked() {
	l.a, l.b = DefaultA, DefaultB
	l.settling = false
}

// Reset returns to idle keeping the operands, and cancels any pending timer.
// A reset during the settle delay applies the defaults immediately.
func (l *Lesson) Reset() bool {
	return l.apply("reset", func() bool {
		if l.phase == PhaseIdle && !l.settling {
			return false
		}
		l.cancelLocked()
		if l.settling {
			l.settleLocked()
		}
		l.phase = PhaseIdle
		l.sum = 0
		return true
	})
}

// Close cancels pending timers, drops all subscribers and closes Done.
// Later actions are ignored.
func (l *Lesson) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.cancelLocked()
	l.closed = true
	l.subs = nil
	close(l.done)
}

// Done is closed once the lesson is closed.
func (l *Lesson) Done() <-chan struct{} { return l.done }

// ------------------------------- queries ----------------------------------

// Phase returns the current phase.
func (l *Lesson) Phase() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

// Operands returns the current operands.
func (l *Lesson) Operands() (a, b int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a, l.b
}

// Sum returns the revealed sum. ok is false until the lesson is revealed.
func (l *Lesson) Sum() (sum int, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.phase != PhaseRevealed {
		return 0, false
	}
	return l.sum, true
}

// Blocks returns the block layout for the current state.
func (l *Lesson) Blocks() []layout.Block { return l.Snapshot().Blocks() }

// Snapshot returns a copy of the current state.
func (l *Lesson) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Lesson) snapshotLocked() Snapshot {
	s := Snapshot{
		ID:       l.id,
		Seq:      l.seq,
		OperandA: l.a,
		OperandB: l.b,
		Phase:    l.phase,
		Settling: l.settling,
		Locked:   l.lockedLocked(),
		Status:   l.phase.Status(),
	}
	if l.phase == PhaseRevealed {
		sum := l.sum
		s.Sum = &sum
	}
	return s
}

// Subscribe registers fn for change notifications and returns a function
// that removes it. fn runs outside the lesson lock and must not block or
// call lesson actions.
func (l *Lesson) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return func() {}
	}
	l.nextSub++
	id := l.nextSub
	l.subs = append(l.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			for i, s := range l.subs {
				if s.id == id {
					l.subs = append(l.subs[:i:i], l.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// ------------------------------- internals --------------------------------

// lockedLocked reports whether operands and Start are currently refused.
func (l *Lesson) lockedLocked() bool {
	return l.phase != PhaseIdle || l.settling
}

// apply runs mutate under the lock; when it reports a change, the new
// snapshot is published to subscribers after the lock is released.
func (l *Lesson) apply(name string, mutate func() bool) bool {
	l.mu.Lock()
	if l.closed || !mutate() {
		phase := l.phase
		l.mu.Unlock()
		l.log.Trace().Str("action", name).Str("phase", string(phase)).Msg("ignored")
		return false
	}
	l.seq++
	snap := l.snapshotLocked()
	subs := append([]subscriber(nil), l.subs...)
	l.mu.Unlock()

	l.log.Debug().
		Str("action", name).
		Str("phase", string(snap.Phase)).
		Int("a", snap.OperandA).
		Int("b", snap.OperandB).
		Uint64("seq", snap.Seq).
		Msg("transition")
	l.notify(snap, subs)
	return true
}

// notify delivers snap unless a newer snapshot already went out.
func (l *Lesson) notify(snap Snapshot, subs []subscriber) {
	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()
	if snap.Seq <= l.delivered {
		return
	}
	l.delivered = snap.Seq
	for _, s := range subs {
		s.fn(snap)
	}
}

// scheduleLocked replaces any pending timer with one running fire after d.
func (l *Lesson) scheduleLocked(d time.Duration, fire func(gen uint64)) {
	l.cancelLocked()
	gen := l.gen
	l.pending = l.sched.AfterFunc(d, func() { fire(gen) })
}

// cancelLocked stops the pending timer and invalidates any callback that
// already fired but has not yet taken the lock.
func (l *Lesson) cancelLocked() {
	if l.pending != nil {
		l.pending.Stop()
		l.pending = nil
	}
	l.gen++
}
