package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robalobadob/blocksum/internal/lesson"
)

func newLesson(id string, sched lesson.Scheduler) *lesson.Lesson {
	return lesson.New(lesson.Options{ID: id, Scheduler: sched})
}

func TestSaveGetDelete(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore(time.Hour)
	l := newLesson(NewID(), lesson.NewManualScheduler())
	if err := st.Save(ctx, l); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := st.Get(ctx, l.ID())
	if err != nil || got != l {
		t.Fatalf("get = %v, %v", got, err)
	}
	if err := st.Delete(ctx, l.ID()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.Get(ctx, l.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete err = %v", err)
	}
	if err := st.Delete(ctx, l.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestSaveRequiresID(t *testing.T) {
	st := NewMemoryStore(time.Hour)
	if err := st.Save(context.Background(), newLesson("", nil)); err == nil {
		t.Fatalf("saved lesson without id")
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestSweepEvictsIdleAndClosesThem(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	st := NewMemoryStore(time.Hour).(*memory)
	st.now = func() time.Time { return clock }

	sched := lesson.NewManualScheduler()
	old := newLesson("old", sched)
	_ = st.Save(ctx, old)
	old.Start()

	clock = clock.Add(50 * time.Minute)
	fresh := newLesson("fresh", sched)
	_ = st.Save(ctx, fresh)

	if n := st.Sweep(ctx, clock.Add(20*time.Minute)); n != 1 {
		t.Fatalf("swept = %d, want 1", n)
	}
	if st.Len() != 1 {
		t.Fatalf("len = %d, want 1", st.Len())
	}
	if _, err := st.Get(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old still present: %v", err)
	}
	// Closing cancelled the evicted lesson's animation timer.
	if sched.Pending() != 0 {
		t.Fatalf("pending timers = %d, want 0", sched.Pending())
	}
}

func TestGetRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	st := NewMemoryStore(time.Hour).(*memory)
	st.now = func() time.Time { return clock }

	_ = st.Save(ctx, newLesson("a", nil))
	clock = clock.Add(55 * time.Minute)
	if _, err := st.Get(ctx, "a"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if n := st.Sweep(ctx, clock.Add(30*time.Minute)); n != 0 {
		t.Fatalf("swept recently used lesson")
	}
}

func TestTouchKeepsLessonAlive(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	st := NewMemoryStore(time.Hour).(*memory)
	st.now = func() time.Time { return clock }

	_ = st.Save(ctx, newLesson("a", nil))
	clock = clock.Add(50 * time.Minute)
	if err := st.Touch(ctx, "a"); err != nil {
		t.Fatalf("touch: %v", err)
	}
	if n := st.Sweep(ctx, clock.Add(30*time.Minute)); n != 0 {
		t.Fatalf("swept touched lesson")
	}
	if err := st.Touch(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("touch missing err = %v", err)
	}
}
