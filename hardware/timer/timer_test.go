package timer_test

import (
	"testing"

	"github.com/avrxmega/xmsim/hardware/block"
	"github.com/avrxmega/xmsim/hardware/clocks"
	"github.com/avrxmega/xmsim/hardware/timer"
)

// fakeHandle is a minimal block.Handle that records scheduling and
// raised IVs without running a real scheduler, letting tests drive
// TC.onEvent directly via the *clocks.Event they capture.
type fakeHandle struct {
	scheduled map[*clocks.Event]bool
	levels    map[int]block.IntLvl
	ccp       uint8
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{scheduled: map[*clocks.Event]bool{}, levels: map[int]block.IntLvl{}}
}

func (f *fakeHandle) SetIVLvl(iv int, lvl block.IntLvl) { f.levels[iv] = lvl }
func (f *fakeHandle) Schedule(e *clocks.Event, ticks uint32) { f.scheduled[e] = true }
func (f *fakeHandle) Unschedule(e *clocks.Event)              { delete(f.scheduled, e) }
func (f *fakeHandle) CCPState() uint8                         { return f.ccp }
func (f *fakeHandle) ClockScale(d clocks.Domain) uint32       { return 1 }
func (f *fakeHandle) ClockFrequency(d clocks.Domain) uint32   { return 1 }
func (f *fakeHandle) Logf(tag, format string, args ...interface{}) {}

func TestCTRLAArmsAndDisarms(t *testing.T) {
	h := newFakeHandle()
	tc := timer.New(h, "tc0", 0x0800, 2)

	tc.SetIO(0x00, 3) // clksel -> prescaler 4
	if got := tc.GetIO(0x00); got != 3 {
		t.Errorf("expected CTRLA readback 3, got %d", got)
	}

	if len(h.scheduled) != 1 {
		t.Errorf("expected the counter event scheduled after a non-zero clksel")
	}

	tc.SetIO(0x00, 0) // clksel 0 -> off, unschedules
	if len(h.scheduled) != 0 {
		t.Errorf("expected the counter event unscheduled after clksel 0")
	}
}

func TestOverflowRaisesOVFAndWraps(t *testing.T) {
	h := newFakeHandle()
	tc := timer.New(h, "tc0", 0x0800, 2)
	tc.SetIO(0x00, 1) // prescaler 1, scheduled

	// PER = 2 (low byte then high byte, TEMP latch pattern)
	tc.SetIO(0x26, 2)
	tc.SetIO(0x27, 0)

	tc.SetIO(0x09, 0) // CTRLFSET with no dir bit: up-counting

	// drive three ticks by calling the scheduled event directly
	ev := firstScheduled(h)
	for i := 0; i < 3; i++ {
		ev.Callback()
	}

	// OVF interrupt level defaults to LvlNone unless INTCTRLA set it,
	// so SetIVLvl(ivOVF, LvlNone) is expected — just confirm it was
	// actually invoked for the OVF IV.
	if _, ok := h.levels[2+0]; !ok {
		t.Errorf("expected SetIVLvl to be invoked for the OVF IV")
	}
	if got := tc.GetIO(0x0C); got&0x01 == 0 {
		t.Errorf("expected OVF flag set in INTFLAGS, got %#02x", got)
	}
	if got := tc.GetIO(0x20); got >= 2 {
		t.Errorf("expected CNT to wrap below PER after overflow, got %d", got)
	}
}

func TestCompareMatchRaisesCCA(t *testing.T) {
	h := newFakeHandle()
	tc := timer.New(h, "tc0", 0x0800, 2)
	tc.SetIO(0x00, 1)
	tc.SetIO(0x26, 5) // PER low
	tc.SetIO(0x27, 0)
	tc.SetIO(0x28, 3) // CCA low
	tc.SetIO(0x29, 0)

	ev := firstScheduled(h)
	for i := 0; i < 3; i++ {
		ev.Callback()
	}

	if got := tc.GetIO(0x0C); got&0x04 == 0 {
		t.Errorf("expected CCA flag set once CNT reaches CCA, got %#02x", got)
	}
}

func TestDoubleBufferFlushesOnOverflow(t *testing.T) {
	h := newFakeHandle()
	tc := timer.New(h, "tc0", 0x0800, 2)
	tc.SetIO(0x00, 1)
	tc.SetIO(0x26, 2) // PER = 2
	tc.SetIO(0x27, 0)
	tc.SetIO(0x36, 9) // PERBUF low = 9
	tc.SetIO(0x37, 0) // PERBUF high, sets CTRLG perbv bit

	ev := firstScheduled(h)
	for i := 0; i < 2; i++ {
		ev.Callback()
	}

	if got := tc.GetIO(0x26); got != 9 {
		t.Errorf("expected PER flushed from PERBUF to 9 on overflow, got %d", got)
	}
}

func TestExecuteIVClearsFlag(t *testing.T) {
	h := newFakeHandle()
	tc := timer.New(h, "tc0", 0x0800, 2)
	tc.SetIO(0x0C, 0) // no-op, just establish baseline

	tc.SetIO(0x00, 1)
	tc.SetIO(0x26, 1)
	tc.SetIO(0x27, 0)
	ev := firstScheduled(h)
	ev.Callback()

	if tc.GetIO(0x0C)&0x01 == 0 {
		t.Fatalf("expected OVF flag before ExecuteIV")
	}
	tc.ExecuteIV(0) // ivOVF
	if tc.GetIO(0x0C)&0x01 != 0 {
		t.Errorf("expected OVF flag cleared after ExecuteIV")
	}
}

func TestResetStopsAndZeroes(t *testing.T) {
	h := newFakeHandle()
	tc := timer.New(h, "tc0", 0x0800, 2)
	tc.SetIO(0x00, 1)
	tc.SetIO(0x26, 5)
	tc.SetIO(0x27, 0)

	tc.Reset()

	if got := tc.GetIO(0x26); got != 0 {
		t.Errorf("expected PER zeroed after Reset, got %d", got)
	}
	if len(h.scheduled) != 0 {
		t.Errorf("expected event unscheduled after Reset")
	}
}

func firstScheduled(h *fakeHandle) *clocks.Event {
	for e := range h.scheduled {
		return e
	}
	return nil
}
