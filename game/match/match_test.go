package match

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/tank-battle/game/engine"
)

// startLoop runs a loop in the background and stops it when the test ends
func startLoop(t *testing.T, opts ...Option) *Loop {
	t.Helper()
	l := New(engine.NewEngineWithDefaults(), opts...)
	go l.Run(context.Background())
	t.Cleanup(func() {
		l.Stop()
		<-l.Done()
	})
	return l
}

func TestLoop_ManualStepping(t *testing.T) {
	l := startLoop(t, WithInterval(0))
	ctx := context.Background()

	fired, err := l.Fire(ctx, engine.Player1)
	require.NoError(t, err)
	require.True(t, fired.Applied)
	require.Len(t, fired.State.Projectiles, 1)

	reports, err := l.Step(ctx, 3)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, []engine.Position{{X: 1, Y: 4}}, reports[2].WallsDestroyed)

	state, err := l.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Tick)
	assert.Empty(t, state.Projectiles)
	assert.Equal(t, engine.Empty, state.Grid[4][1])
}

func TestLoop_TickerAdvancesProjectiles(t *testing.T) {
	l := startLoop(t, WithInterval(5*time.Millisecond))
	ctx := context.Background()

	_, err := l.Fire(ctx, engine.Player1)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		state, err := l.Snapshot(ctx)
		return err == nil && state.Grid[4][1] == engine.Empty && len(state.Projectiles) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestLoop_PressKey(t *testing.T) {
	l := startLoop(t, WithInterval(0))
	ctx := context.Background()

	res, err := l.PressKey(ctx, "d")
	require.NoError(t, err)
	assert.True(t, res.Bound)
	assert.True(t, res.Applied)
	assert.Equal(t, engine.Player1, res.Binding.Player)

	res, err = l.PressKey(ctx, "x")
	require.NoError(t, err)
	assert.False(t, res.Bound)
	assert.False(t, res.Applied)

	state, err := l.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.Position{X: 2, Y: 1}, state.Tanks[0].Pos)
	assert.Equal(t, engine.Right, state.Tanks[0].Facing)
}

func TestLoop_MoveBlocked(t *testing.T) {
	l := startLoop(t, WithInterval(0))

	moved, err := l.Move(context.Background(), engine.Player1, engine.Up)
	require.NoError(t, err)
	assert.False(t, moved.Applied)
	assert.Equal(t, engine.Position{X: 1, Y: 1}, moved.State.Tanks[0].Pos)
}

func TestLoop_CommandStateMatchesCommand(t *testing.T) {
	// A fast ticker keeps other loop turns running between commands
	l := startLoop(t, WithInterval(time.Millisecond))
	ctx := context.Background()

	moved, err := l.Move(ctx, engine.Player1, engine.Right)
	require.NoError(t, err)
	require.True(t, moved.Applied)
	assert.Equal(t, engine.Position{X: 2, Y: 1}, moved.State.Tanks[0].Pos)
	assert.Equal(t, engine.ActionNameMove, moved.State.History[len(moved.State.History)-1].Action)

	res, err := l.PressKey(ctx, "a")
	require.NoError(t, err)
	require.True(t, res.Applied)
	require.NotNil(t, res.State)
	assert.Equal(t, engine.Position{X: 1, Y: 1}, res.State.Tanks[0].Pos)
	assert.Equal(t, engine.Left, res.State.Tanks[0].Facing)

	// The returned state is a copy
	res.State.Tanks[0].Pos = engine.Position{X: 9, Y: 9}
	state, err := l.Snapshot(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, engine.Position{X: 9, Y: 9}, state.Tanks[0].Pos)
}

func TestLoop_OnUpdateReceivesCopies(t *testing.T) {
	var mu sync.Mutex
	var updates []*engine.GameState

	l := startLoop(t, WithInterval(0), WithOnUpdate(func(s *engine.GameState) {
		mu.Lock()
		defer mu.Unlock()
		updates = append(updates, s)
	}))
	ctx := context.Background()

	_, err := l.Move(ctx, engine.Player1, engine.Right)
	require.NoError(t, err)

	mu.Lock()
	require.GreaterOrEqual(t, len(updates), 2, "expected initial and post-move updates")
	last := updates[len(updates)-1]
	last.Tanks[0].Pos = engine.Position{X: 9, Y: 9}
	mu.Unlock()

	state, err := l.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.Position{X: 2, Y: 1}, state.Tanks[0].Pos)
}

func TestLoop_SnapshotIsIsolated(t *testing.T) {
	l := startLoop(t, WithInterval(0))
	ctx := context.Background()

	state, err := l.Snapshot(ctx)
	require.NoError(t, err)
	state.Grid[1][4] = engine.Empty

	again, err := l.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.DestructibleWall, again.Grid[1][4])
}

func TestLoop_Reset(t *testing.T) {
	l := startLoop(t, WithInterval(0))
	ctx := context.Background()

	_, err := l.Move(ctx, engine.Player1, engine.Right)
	require.NoError(t, err)

	state, err := l.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.Position{X: 1, Y: 1}, state.Tanks[0].Pos)
	assert.Equal(t, engine.ActionNameReset, state.History[len(state.History)-1].Action)
}

func TestLoop_SetConfig(t *testing.T) {
	l := startLoop(t, WithInterval(0))
	ctx := context.Background()

	bad := engine.DefaultGameConfig()
	bad.Rows = 1
	assert.Error(t, l.SetConfig(ctx, bad))

	small := &engine.GameConfig{
		Name:        "small",
		Description: "small arena",
		Rows:        5,
		Cols:        5,
		Layout:      []string{"22222", "20002", "20002", "20002", "22222"},
	}
	require.NoError(t, l.SetConfig(ctx, small))

	state, err := l.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, state.Rows)
	assert.Equal(t, "small", state.ConfigName)
}

func TestLoop_StopRejectsCommands(t *testing.T) {
	l := New(engine.NewEngineWithDefaults(), WithInterval(time.Millisecond))
	errc := make(chan error, 1)
	go func() { errc <- l.Run(context.Background()) }()

	_, err := l.Snapshot(context.Background())
	require.NoError(t, err)

	l.Stop()
	l.Stop()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}

	_, err = l.Fire(context.Background(), engine.Player1)
	assert.ErrorIs(t, err, ErrStopped)
	_, err = l.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrStopped)
}

func TestLoop_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := New(engine.NewEngineWithDefaults())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("loop did not exit on cancel")
	}

	<-l.Done()
	_, err := l.PressKey(context.Background(), "w")
	assert.ErrorIs(t, err, ErrStopped)
}

func TestLoop_RunTwice(t *testing.T) {
	l := startLoop(t, WithInterval(0))

	_, err := l.Snapshot(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, l.Run(context.Background()), ErrAlreadyRunning)
}

func TestLoop_CommandContextDeadline(t *testing.T) {
	// Run never started, so the inbox is never drained
	l := New(engine.NewEngineWithDefaults())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := l.Snapshot(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoop_ConcurrentCommands(t *testing.T) {
	l := startLoop(t, WithInterval(time.Millisecond))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = l.Fire(ctx, engine.Player2)
		}()
		go func() {
			defer wg.Done()
			_, _ = l.Snapshot(ctx)
		}()
	}
	wg.Wait()

	state, err := l.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, countFires(state))
}

func TestNew_DefaultInterval(t *testing.T) {
	l := New(engine.NewEngineWithDefaults())
	assert.Equal(t, 100*time.Millisecond, l.Interval())
}

func countFires(state *engine.GameState) int {
	n := 0
	for _, e := range state.History {
		if e.Action == engine.ActionNameFire && e.Success {
			n++
		}
	}
	return n
}
