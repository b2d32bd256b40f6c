package render_test

import (
	"context"
	"errors"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/eak1mov/go-tileview/internal"
	"github.com/eak1mov/go-tileview/render"
	"github.com/eak1mov/go-tileview/tile"
	"github.com/eak1mov/go-tileview/view"
	"github.com/google/go-cmp/cmp"
)

type states struct{ state *view.State }

func (s *states) State() *view.State { return s.state }

type fixture struct {
	states    *states
	supplier  *internal.Supplier
	surface   *internal.Surface
	scheduler *render.Scheduler
}

func newFixture(t *testing.T, offsetX, offsetY int) *fixture {
	t.Helper()
	state, err := view.NewState(view.Config{Width: 800, Height: 480, TileSize: 256})
	if err != nil {
		t.Fatalf("NewState failed: %v", err)
	}
	state.ApplyOffset(offsetX, offsetY)

	f := &fixture{
		states:   &states{state},
		supplier: internal.NewSupplier(256),
		surface:  &internal.Surface{},
	}
	f.scheduler = render.NewScheduler(f.states, f.supplier, f.surface, render.WithFrameInterval(time.Millisecond))
	return f
}

func (f *fixture) frame(t *testing.T) bool {
	t.Helper()
	drawn, err := f.scheduler.Frame()
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	return drawn
}

func TestFrameNotConfigured(t *testing.T) {
	surface := &internal.Surface{}
	s := render.NewScheduler(&states{}, internal.NewSupplier(256), surface)
	if drawn, err := s.Frame(); drawn || err != nil {
		t.Errorf("Frame() = %v, %v, want = false, nil", drawn, err)
	}

	state, err := view.NewState(view.Config{Width: 800, Height: 480, TileSize: 256})
	if err != nil {
		t.Fatalf("NewState failed: %v", err)
	}
	s = render.NewScheduler(&states{state}, internal.NewSupplier(256), surface)
	if drawn, err := s.Frame(); drawn || err != nil {
		t.Errorf("Frame() before first offset = %v, %v, want = false, nil", drawn, err)
	}
	if got := surface.Locks(); got != 0 {
		t.Errorf("surface locked %d times", got)
	}
}

func TestFrameSkipsUnchanged(t *testing.T) {
	f := newFixture(t, 0, 0)
	f.supplier.Set(tile.ID{X: 0, Y: 0}, internal.Solid(color.White))

	if !f.frame(t) {
		t.Fatalf("first frame not drawn")
	}
	if f.frame(t) {
		t.Errorf("frame without changes was drawn")
	}

	// fresh data flag without any content change
	f.supplier.MarkFresh()
	if f.frame(t) {
		t.Errorf("frame with identical content hashes was drawn")
	}
	if got, want := f.surface.Frames(), 1; got != want {
		t.Errorf("Frames() = %d, want = %d", got, want)
	}
}

func TestFrameContentChanges(t *testing.T) {
	f := newFixture(t, 0, 0)
	f.frame(t)

	id := tile.ID{X: 1, Y: 1}
	f.supplier.Set(id, internal.Solid(color.White))
	if !f.frame(t) {
		t.Errorf("appeared content not drawn")
	}
	if diff := cmp.Diff([]internal.DrawCall{{ID: id, Left: 256, Top: 256, Size: 256}}, f.surface.Draws()); diff != "" {
		t.Errorf("Draws mismatch (-want+got):\n%v", diff)
	}

	f.supplier.Set(id, internal.Solid(color.Black))
	if !f.frame(t) {
		t.Errorf("changed content not drawn")
	}

	f.supplier.Remove(id)
	if !f.frame(t) {
		t.Errorf("disappeared content not drawn")
	}
	if got := f.surface.Draws(); len(got) != 0 {
		t.Errorf("placeholder drawn: %v", got)
	}

	// content outside of the grid does not matter
	f.supplier.Set(tile.ID{X: 100, Y: 100}, internal.Solid(color.White))
	if f.frame(t) {
		t.Errorf("frame drawn for invisible tile")
	}
}

func TestFrameContentWithoutFreshFlag(t *testing.T) {
	f := newFixture(t, 0, 0)
	f.frame(t)

	f.supplier.Set(tile.ID{X: 0, Y: 0}, internal.Solid(color.White))
	f.supplier.HasFreshData() // consumed elsewhere
	if f.frame(t) {
		t.Errorf("matrix refreshed without fresh data, offset change or rerender request")
	}

	f.scheduler.RequestRerender()
	if !f.frame(t) {
		t.Errorf("rerender request not drawn")
	}
	if got := len(f.surface.Draws()); got != 1 {
		t.Errorf("len(Draws()) = %d, want = 1", got)
	}
}

func TestFrameOffsetChange(t *testing.T) {
	f := newFixture(t, 0, 0)
	f.supplier.Set(tile.ID{X: 0, Y: 0}, internal.Solid(color.White))
	f.frame(t)

	// within the same tile range
	f.states.state.ApplyOffsetRelative(-10, -20)
	if !f.frame(t) {
		t.Fatalf("offset change not drawn")
	}
	if diff := cmp.Diff([]internal.DrawCall{{ID: tile.ID{X: 0, Y: 0}, Left: -10, Top: -20, Size: 256}}, f.surface.Draws()); diff != "" {
		t.Errorf("Draws mismatch (-want+got):\n%v", diff)
	}
	if f.frame(t) {
		t.Errorf("unchanged offset drawn again")
	}
}

func TestFrameCenteredPositions(t *testing.T) {
	f := newFixture(t, 272, 112)
	f.supplier.Set(tile.ID{X: 0, Y: 0}, internal.Solid(color.White))
	f.supplier.Set(tile.ID{X: -2, Y: -1}, internal.Solid(color.White))
	f.supplier.Set(tile.ID{X: 2, Y: 1}, internal.Solid(color.White))
	f.frame(t)

	want := []internal.DrawCall{
		{ID: tile.ID{X: -2, Y: -1}, Left: -240, Top: -144, Size: 256},
		{ID: tile.ID{X: 0, Y: 0}, Left: 272, Top: 112, Size: 256},
		{ID: tile.ID{X: 2, Y: 1}, Left: 784, Top: 368, Size: 256},
	}
	if diff := cmp.Diff(want, f.surface.Draws()); diff != "" {
		t.Errorf("Draws mismatch (-want+got):\n%v", diff)
	}
}

func TestFrameDrawError(t *testing.T) {
	f := newFixture(t, 0, 0)
	f.supplier.Set(tile.ID{X: 0, Y: 0}, internal.Solid(color.White))
	f.surface.DrawErr = internal.ErrInjected

	_, err := f.scheduler.Frame()
	if !errors.Is(err, render.ErrDraw) || !errors.Is(err, internal.ErrInjected) {
		t.Errorf("Frame() error = %v, want %v wrapping %v", err, render.ErrDraw, internal.ErrInjected)
	}
	if f.surface.Locked() {
		t.Errorf("surface left locked after draw error")
	}

	f.surface.DrawErr = nil
	if !f.frame(t) {
		t.Errorf("frame after failed draw not retried")
	}
}

func TestFrameLockError(t *testing.T) {
	f := newFixture(t, 0, 0)
	f.surface.LockErr = internal.ErrInjected
	if _, err := f.scheduler.Frame(); !errors.Is(err, render.ErrDraw) {
		t.Errorf("Frame() error = %v, want = %v", err, render.ErrDraw)
	}
	f.surface.LockErr = nil
	if !f.frame(t) {
		t.Errorf("frame after lock failure not retried")
	}
}

func TestFrameDrawPanicUnlocks(t *testing.T) {
	f := newFixture(t, 0, 0)
	f.supplier.Set(tile.ID{X: 0, Y: 0}, internal.Solid(color.White))
	f.surface.DrawPanic = true

	func() {
		defer func() {
			if recover() == nil {
				t.Errorf("Frame() did not panic")
			}
		}()
		f.scheduler.Frame()
	}()
	if f.surface.Locked() {
		t.Errorf("surface left locked after panic")
	}
}

func TestFrameDebugOverlay(t *testing.T) {
	f := newFixture(t, 0, 0)
	f.scheduler.SetDebug(true)
	if !f.scheduler.Debug() {
		t.Fatalf("Debug() = false")
	}
	f.frame(t)

	if got, want := len(f.surface.Outlines()), 5*3; got != want {
		t.Errorf("len(Outlines()) = %d, want = %d", got, want)
	}
	status := strings.Join(f.surface.Status(), "\n")
	for _, want := range []string{"800x480, s=1.000", "TR[x=0 to 4,y=0 to 2,n=5*3=15]", "fake", "heap="} {
		if !strings.Contains(status, want) {
			t.Errorf("status %q does not contain %q", status, want)
		}
	}

	f.scheduler.SetDebug(false)
	f.frame(t)
	if got := f.surface.Outlines(); len(got) != 0 {
		t.Errorf("outlines drawn with debug disabled: %v", got)
	}
}

func TestFrameReconfigure(t *testing.T) {
	f := newFixture(t, 0, 0)
	f.frame(t)

	state, err := view.NewState(view.Config{Width: 256, Height: 256, TileSize: 256})
	if err != nil {
		t.Fatalf("NewState failed: %v", err)
	}
	state.ApplyOffset(0, 0)
	f.states.state = state

	f.supplier.Set(tile.ID{X: 1, Y: 1}, internal.Solid(color.White))
	f.supplier.HasFreshData()
	if !f.frame(t) {
		t.Fatalf("new configuration not drawn")
	}
	f.scheduler.SetDebug(true)
	f.frame(t)
	if got, want := len(f.surface.Outlines()), 2*2; got != want {
		t.Errorf("len(Outlines()) = %d, want = %d", got, want)
	}
}

func TestStartStop(t *testing.T) {
	f := newFixture(t, 0, 0)
	if err := f.scheduler.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := f.scheduler.Start(context.Background()); !errors.Is(err, render.ErrAlreadyRunning) {
		t.Errorf("second Start error = %v, want = %v", err, render.ErrAlreadyRunning)
	}

	f.supplier.Set(tile.ID{X: 0, Y: 0}, internal.Solid(color.White))
	deadline := time.Now().Add(5 * time.Second)
	for len(f.surface.Draws()) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("render loop did not draw the new tile")
		}
		time.Sleep(time.Millisecond)
	}

	f.scheduler.Stop()
	f.scheduler.Stop()
	if f.surface.Locked() {
		t.Errorf("surface locked after Stop")
	}
	frames := f.surface.Frames()
	f.states.state.ApplyOffsetRelative(1, 1)
	time.Sleep(20 * time.Millisecond)
	if got := f.surface.Frames(); got != frames {
		t.Errorf("frames drawn after Stop: %d -> %d", frames, got)
	}

	if err := f.scheduler.Start(context.Background()); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	f.scheduler.Stop()
}

func TestFrameWholeTileScroll(t *testing.T) {
	f := newFixture(t, 0, 0)
	f.supplier.Set(tile.ID{X: 1, Y: 0}, internal.Solid(color.White))
	f.frame(t)

	f.states.state.ApplyOffsetRelative(256, 0)
	if !f.frame(t) {
		t.Fatalf("scroll by one tile not drawn")
	}
	if diff := cmp.Diff([]internal.DrawCall{{ID: tile.ID{X: 1, Y: 0}, Left: 512, Top: 0, Size: 256}}, f.surface.Draws()); diff != "" {
		t.Errorf("Draws mismatch (-want+got):\n%v", diff)
	}
}

func TestStartAfterContextCancelled(t *testing.T) {
	f := newFixture(t, 0, 0)
	ctx, cancel := context.WithCancel(context.Background())
	if err := f.scheduler.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	cancel()

	deadline := time.Now().Add(5 * time.Second)
	for {
		err := f.scheduler.Start(context.Background())
		if err == nil {
			break
		}
		if !errors.Is(err, render.ErrAlreadyRunning) {
			t.Fatalf("Start error = %v, want = nil", err)
		}
		if time.Now().After(deadline) {
			t.Fatalf("Start after the loop exited: %v", err)
		}
		time.Sleep(time.Millisecond)
	}
	f.scheduler.Stop()
	if f.surface.Locked() {
		t.Errorf("surface locked after Stop")
	}
}
