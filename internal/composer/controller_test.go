package composer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonicalchemist/api/internal/model"
	"github.com/sonicalchemist/api/internal/notify"
	"github.com/sonicalchemist/api/internal/schema"
)

type reply struct {
	result *model.SoundtrackResult
	err    error
}

// blockingGenerator parks every call until a reply is sent or ctx ends.
type blockingGenerator struct {
	started chan model.SoundtrackRequest
	replies chan reply
}

func newBlockingGenerator() *blockingGenerator {
	return &blockingGenerator{
		started: make(chan model.SoundtrackRequest, 4),
		replies: make(chan reply),
	}
}

func (g *blockingGenerator) Generate(ctx context.Context, req model.SoundtrackRequest) (*model.SoundtrackResult, error) {
	g.started <- req
	select {
	case r := <-g.replies:
		return r.result, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type staticGenerator struct {
	result *model.SoundtrackResult
	err    error
	last   model.SoundtrackRequest
}

func (g *staticGenerator) Generate(ctx context.Context, req model.SoundtrackRequest) (*model.SoundtrackResult, error) {
	g.last = req
	return g.result, g.err
}

type submitOutcome struct {
	state FormState
	err   error
}

func waitStarted(t *testing.T, g *blockingGenerator) model.SoundtrackRequest {
	t.Helper()
	select {
	case req := <-g.started:
		return req
	case <-time.After(2 * time.Second):
		t.Fatal("generation did not start")
		return model.SoundtrackRequest{}
	}
}

func form(genre, mood string, length int, loop bool) model.ComposerForm {
	return model.ComposerForm{Genre: genre, Mood: mood, LengthMinutes: length, Loop: loop, MoodIntensity: 80}
}

func TestController_InitialState(t *testing.T) {
	c := NewController(&staticGenerator{}, schema.New(), nil)

	want := FormState{Status: StatusIdle, Form: model.DefaultComposerForm()}
	if diff := cmp.Diff(want, c.State()); diff != "" {
		t.Errorf("initial state mismatch (-want +got):\n%s", diff)
	}
}

func TestController_SubmitSuccess(t *testing.T) {
	rec := notify.NewRecorder()
	gen := &staticGenerator{result: &model.SoundtrackResult{Description: "Epic brass", AudioDataURI: "data:audio/wav;base64,UklGRg=="}}
	var transitions []Status
	c := NewController(gen, schema.New(), rec, WithObserver(func(st FormState) {
		transitions = append(transitions, st.Status)
	}))

	f := form("Cinematic", "Epic", 2, true)
	st, err := c.Submit(context.Background(), f)
	require.NoError(t, err)

	want := FormState{
		Status:      StatusSuccess,
		Result:      gen.result,
		LoopEnabled: true,
		Form:        f,
		Generation:  1,
	}
	if diff := cmp.Diff(want, st); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []Status{StatusLoading, StatusSuccess}, transitions)
	assert.Equal(t, 2, gen.last.Length())
	assert.Equal(t, []notify.Notification{{
		Title:    "Soundtrack Generated!",
		Message:  "Your custom track is ready for preview.",
		Severity: notify.SeverityDefault,
	}}, rec.Drain())
}

func TestController_SubmitFailure(t *testing.T) {
	rec := notify.NewRecorder()
	gen := &staticGenerator{err: errors.New("upstream unavailable")}
	c := NewController(gen, schema.New(), rec)

	st, err := c.Submit(context.Background(), form("Jazz", "Calm", 1, false))
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, st.Status)
	assert.False(t, st.IsLoading)
	assert.Nil(t, st.Result)
	require.NotNil(t, st.Error)
	assert.Equal(t, "Failed to generate soundtrack: upstream unavailable", *st.Error)
	assert.Equal(t, []notify.Notification{{
		Title:    "Generation Failed",
		Message:  "upstream unavailable",
		Severity: notify.SeverityDestructive,
	}}, rec.Drain())
}

func TestController_NextSubmitClearsPreviousError(t *testing.T) {
	gen := &staticGenerator{err: errors.New("boom")}
	c := NewController(gen, schema.New(), nil)

	_, _ = c.Submit(context.Background(), form("Jazz", "Calm", 1, false))
	gen.err = nil
	gen.result = &model.SoundtrackResult{Description: "ok"}

	st, err := c.Submit(context.Background(), form("Jazz", "Calm", 1, false))
	require.NoError(t, err)
	assert.Nil(t, st.Error)
	assert.Equal(t, StatusSuccess, st.Status)
	assert.Equal(t, uint64(2), st.Generation)
}

func TestController_ValidationBlocksSubmit(t *testing.T) {
	gen := newBlockingGenerator()
	c := NewController(gen, schema.New(), nil)

	tests := []model.ComposerForm{
		form("", "Epic", 1, false),
		form("Cinematic", "", 1, false),
		form("Cinematic", "Epic", 4, false),
		form("Cinematic", "Epic", 0, false),
		{Genre: "Cinematic", Mood: "Epic", LengthMinutes: 1, MoodIntensity: 101},
		form("Polka", "Epic", 1, false),
	}
	for _, f := range tests {
		st, err := c.Submit(context.Background(), f)
		_, ok := schema.AsValidationError(err)
		assert.True(t, ok, "form %+v: %v", f, err)
		assert.Equal(t, StatusIdle, st.Status)
	}
	assert.Empty(t, gen.started)
}

func TestController_MoodIntensityNotForwarded(t *testing.T) {
	gen := &staticGenerator{result: &model.SoundtrackResult{Description: "d"}}
	c := NewController(gen, schema.New(), nil)

	_, err := c.Submit(context.Background(), form("Ambient", "Calm", 3, false))
	require.NoError(t, err)
	assert.Equal(t, model.NewSoundtrackRequest("Ambient", "Calm", 3), gen.last)
}

func TestController_RapidSubmissions_Reject(t *testing.T) {
	rec := notify.NewRecorder()
	gen := newBlockingGenerator()
	c := NewController(gen, schema.New(), rec, WithPolicy(PolicyReject))

	first := form("Cinematic", "Epic", 1, false)
	done := make(chan submitOutcome, 1)
	go func() {
		st, err := c.Submit(context.Background(), first)
		done <- submitOutcome{st, err}
	}()
	waitStarted(t, gen)

	st, err := c.Submit(context.Background(), form("Jazz", "Calm", 3, true))
	assert.ErrorIs(t, err, ErrBusy)
	assert.True(t, st.IsLoading)

	gen.replies <- reply{result: &model.SoundtrackResult{Description: "first"}}
	out := <-done
	require.NoError(t, out.err)

	want := FormState{
		Status:     StatusSuccess,
		Result:     &model.SoundtrackResult{Description: "first"},
		Form:       first,
		Generation: 1,
	}
	if diff := cmp.Diff(want, c.State()); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, rec.Drain(), 1)
}

func TestController_RapidSubmissions_Supersede(t *testing.T) {
	rec := notify.NewRecorder()
	gen := newBlockingGenerator()
	c := NewController(gen, schema.New(), rec, WithPolicy(PolicySupersede))

	firstDone := make(chan submitOutcome, 1)
	go func() {
		st, err := c.Submit(context.Background(), form("Cinematic", "Epic", 1, false))
		firstDone <- submitOutcome{st, err}
	}()
	waitStarted(t, gen)

	second := form("Jazz", "Calm", 3, true)
	secondDone := make(chan submitOutcome, 1)
	go func() {
		st, err := c.Submit(context.Background(), second)
		secondDone <- submitOutcome{st, err}
	}()
	req := waitStarted(t, gen)
	assert.Equal(t, "Jazz", req.Genre)

	out := <-firstDone
	assert.ErrorIs(t, out.err, ErrSuperseded)

	gen.replies <- reply{result: &model.SoundtrackResult{Description: "second"}}
	out = <-secondDone
	require.NoError(t, out.err)

	want := FormState{
		Status:      StatusSuccess,
		Result:      &model.SoundtrackResult{Description: "second"},
		LoopEnabled: true,
		Form:        second,
		Generation:  2,
	}
	if diff := cmp.Diff(want, c.State()); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []notify.Notification{{
		Title:    "Soundtrack Generated!",
		Message:  "Your custom track is ready for preview.",
		Severity: notify.SeverityDefault,
	}}, rec.Drain())
}

func TestController_CloseCancelsInFlight(t *testing.T) {
	rec := notify.NewRecorder()
	gen := newBlockingGenerator()
	c := NewController(gen, schema.New(), rec)

	done := make(chan submitOutcome, 1)
	go func() {
		st, err := c.Submit(context.Background(), form("Pop", "Happy", 1, false))
		done <- submitOutcome{st, err}
	}()
	waitStarted(t, gen)

	c.Close()
	out := <-done
	assert.ErrorIs(t, out.err, ErrClosed)
	assert.Empty(t, rec.All())

	_, err := c.Submit(context.Background(), form("Pop", "Happy", 1, false))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestController_Export(t *testing.T) {
	gen := &staticGenerator{result: &model.SoundtrackResult{Description: "no audio"}}
	c := NewController(gen, schema.New(), nil)

	_, err := c.Export(model.ExportMP3)
	assert.ErrorIs(t, err, ErrExportUnavailable)

	_, _ = c.Submit(context.Background(), form("Pop", "Happy", 1, false))
	_, err = c.Export(model.ExportWAV)
	assert.ErrorIs(t, err, ErrExportUnavailable)

	gen.result = &model.SoundtrackResult{Description: "with audio", AudioDataURI: "data:audio/wav;base64,UklGRg=="}
	_, _ = c.Submit(context.Background(), form("Pop", "Happy", 1, false))

	notice, err := c.Export(model.ExportMP3)
	require.NoError(t, err)
	assert.Equal(t, "MP3 export functionality not implemented yet.", notice)

	notice, err = c.Export(model.ExportWAV)
	require.NoError(t, err)
	assert.Equal(t, "WAV export functionality not implemented yet.", notice)
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, PolicySupersede, ParsePolicy(" Supersede "))
	assert.Equal(t, PolicyReject, ParsePolicy("reject"))
	assert.Equal(t, PolicyReject, ParsePolicy("unknown"))
}
