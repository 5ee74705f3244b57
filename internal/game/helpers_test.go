package game

import (
	"sync"
	"testing"
	"time"

	"github.com/JakobPriesner/GeoGuesser/internal/catalog"
	"github.com/stretchr/testify/require"
)

// --- Scheduler ---

type fakeTask struct {
	sched   *fakeScheduler
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTask) Stop() bool {
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()
	wasLive := !t.stopped && !t.fired
	t.stopped = true
	return wasLive
}

type fakeScheduler struct {
	mu    sync.Mutex
	tasks []*fakeTask
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTask{sched: s, d: d, f: f}
	s.tasks = append(s.tasks, t)
	return t
}

func (s *fakeScheduler) live() []*fakeTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*fakeTask
	for _, t := range s.tasks {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// fireNext runs the oldest live task and returns its delay.
func (s *fakeScheduler) fireNext(t *testing.T) time.Duration {
	t.Helper()
	s.mu.Lock()
	var next *fakeTask
	for _, task := range s.tasks {
		if !task.stopped && !task.fired {
			next = task
			break
		}
	}
	require.NotNil(t, next, "no live timer to fire")
	next.fired = true
	s.mu.Unlock()

	next.f()
	return next.d
}

// fireN fires n consecutive tasks.
func (s *fakeScheduler) fireN(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		s.fireNext(t)
	}
}

// --- Emitter ---

type sent struct {
	to  string
	msg Message
}

type recordingEmitter struct {
	mu   sync.Mutex
	sent []sent
}

func (e *recordingEmitter) Send(playerID string, msg Message) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sent = append(e.sent, sent{to: playerID, msg: msg})
}

func (e *recordingEmitter) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sent = nil
}

// to returns the payloads of event delivered to playerID, in order.
func (e *recordingEmitter) to(playerID, event string) []any {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []any
	for _, s := range e.sent {
		if s.to == playerID && s.msg.Type == event {
			out = append(out, s.msg.Data)
		}
	}
	return out
}

func (e *recordingEmitter) count(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, s := range e.sent {
		if s.msg.Type == event {
			n++
		}
	}
	return n
}

// --- LocationPicker ---

// sequencePicker serves locations in order, skipping used indices and
// wrapping once all are used.
type sequencePicker struct {
	locations []catalog.Location
	err       error
	calls     [][]int
}

func (p *sequencePicker) PickUnusedLocation(_ string, used []int) (catalog.Location, int, error) {
	p.calls = append(p.calls, append([]int(nil), used...))
	if p.err != nil {
		return catalog.Location{}, -1, p.err
	}
	taken := map[int]bool{}
	for _, i := range used {
		taken[i] = true
	}
	for i, loc := range p.locations {
		if !taken[i] {
			return loc, i, nil
		}
	}
	return p.locations[0], 0, nil
}

// --- Fixture ---

type fixture struct {
	sched   *fakeScheduler
	emitter *recordingEmitter
	picker  *sequencePicker
	rooms   *Registry
	coord   *Coordinator
}

func newFixture(locations ...catalog.Location) *fixture {
	if len(locations) == 0 {
		locations = []catalog.Location{
			{Name: "Berlin", Lat: 52.52, Lng: 13.405},
			{Name: "Hamburg", Lat: 53.5511, Lng: 9.9937},
			{Name: "München", Lat: 48.1351, Lng: 11.582},
		}
	}
	f := &fixture{
		sched:   &fakeScheduler{},
		emitter: &recordingEmitter{},
		picker:  &sequencePicker{locations: locations},
		rooms:   NewRegistry(),
	}
	f.coord = NewCoordinator(f.rooms, f.picker, f.emitter, WithScheduler(f.sched))
	return f
}

func defaultSettings(mode string) Settings {
	return Settings{GameMode: mode, RoundDuration: 30, TotalRounds: 2, ResultDelay: 5}
}

// twoPlayerRoom creates a room hosted by alice and joined by bob.
func (f *fixture) twoPlayerRoom(t *testing.T, settings Settings) string {
	t.Helper()
	room := f.coord.CreateRoom("alice-id", "Alice", settings)
	_, err := f.coord.JoinRoom("bob-id", room.Code(), "Bob")
	require.NoError(t, err)
	return room.Code()
}

func (f *fixture) snapshot(t *testing.T, code string) roomSnapshot {
	t.Helper()
	room, ok := f.rooms.Get(code)
	require.True(t, ok, "room %s not registered", code)
	return room.snapshot()
}

func playerByName(s roomSnapshot, name string) Player {
	for _, p := range s.Players {
		if p.Username == name {
			return p
		}
	}
	return Player{}
}
