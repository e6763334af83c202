package composer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonicalchemist/api/internal/model"
	"github.com/sonicalchemist/api/internal/notify"
	"github.com/sonicalchemist/api/internal/schema"
)

func newTestRegistry(ttl time.Duration) (*Registry, *time.Time) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(func(id string, sink notify.Sink) *Controller {
		gen := &staticGenerator{result: &model.SoundtrackResult{Description: "d"}}
		return NewController(gen, schema.New(), sink)
	}, ttl)
	r.now = func() time.Time { return now }
	return r, &now
}

func TestRegistry_GetOrCreate(t *testing.T) {
	r, _ := newTestRegistry(time.Minute)

	s := r.GetOrCreate("")
	require.NotEmpty(t, s.ID)
	assert.Same(t, s, r.GetOrCreate(s.ID))
	assert.NotEqual(t, s.ID, r.GetOrCreate("unknown").ID)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_ToastsRoutedToSession(t *testing.T) {
	r, _ := newTestRegistry(time.Minute)
	s := r.GetOrCreate("")

	_, err := s.Controller.Submit(context.Background(), model.DefaultComposerForm())
	require.NoError(t, err)

	toasts := s.Toasts.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, "Soundtrack Generated!", toasts[0].Title)
}

func TestRegistry_SweepEvictsIdle(t *testing.T) {
	r, now := newTestRegistry(10 * time.Minute)

	idle := r.GetOrCreate("")
	*now = now.Add(6 * time.Minute)
	active := r.GetOrCreate("")
	*now = now.Add(6 * time.Minute)

	assert.Equal(t, 1, r.Sweep())
	_, ok := r.Get(idle.ID)
	assert.False(t, ok)
	_, ok = r.Get(active.ID)
	assert.True(t, ok)

	_, err := idle.Controller.Submit(context.Background(), model.DefaultComposerForm())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRegistry_Close(t *testing.T) {
	r, _ := newTestRegistry(time.Minute)
	s := r.GetOrCreate("")

	r.Close()
	assert.Zero(t, r.Len())
	_, err := s.Controller.Submit(context.Background(), model.DefaultComposerForm())
	assert.ErrorIs(t, err, ErrClosed)
}

type recordingBroadcaster struct {
	states []Status
	toasts *notify.Recorder
}

func (b *recordingBroadcaster) SessionSink(string) notify.Sink { return b.toasts }

func (b *recordingBroadcaster) BroadcastState(_ string, state interface{}) {
	b.states = append(b.states, state.(FormState).Status)
}

func TestSessionFactory(t *testing.T) {
	b := &recordingBroadcaster{toasts: notify.NewRecorder()}
	gen := &staticGenerator{result: &model.SoundtrackResult{Description: "d"}}
	local := notify.NewRecorder()

	c := SessionFactory(gen, schema.New(), PolicyReject, b)("s1", local)
	_, err := c.Submit(context.Background(), model.DefaultComposerForm())
	require.NoError(t, err)

	assert.Equal(t, []Status{StatusLoading, StatusSuccess}, b.states)
	assert.Len(t, local.All(), 1)
	assert.Len(t, b.toasts.All(), 1)
}
