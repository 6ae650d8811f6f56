package clocks_test

import (
	"testing"

	"github.com/avrxmega/xmsim/hardware/clocks"
)

// fixedScales implements clocks.Scales with scales that can be mutated
// between calls, to exercise OnClockConfigChange.
type fixedScales struct {
	scale map[clocks.Domain]uint32
}

func newFixedScales() *fixedScales {
	return &fixedScales{scale: map[clocks.Domain]uint32{
		clocks.SYS: 1, clocks.PER4: 1, clocks.PER2: 1, clocks.PER: 1, clocks.CPU: 1, clocks.ASY: 1,
	}}
}

func (f *fixedScales) ClockScale(d clocks.Domain) uint32 { return f.scale[d] }

func TestStepAdvancesTickPerCPUEvent(t *testing.T) {
	scales := newFixedScales()
	s := clocks.NewScheduler(scales)

	steps := 0
	ev := clocks.NewEvent("cpu-step", clocks.CPU, 100, func() clocks.Result {
		steps++
		return clocks.Requeue(1)
	})
	s.Schedule(ev, 1)

	const n = 10
	for i := 0; i < n; i++ {
		s.Step()
	}

	if s.Now() != n {
		t.Errorf("expected SYS tick == %d, got %d", n, s.Now())
	}
	if steps != n {
		t.Errorf("expected %d callback invocations, got %d", n, steps)
	}
}

func TestStopDropsEvent(t *testing.T) {
	scales := newFixedScales()
	s := clocks.NewScheduler(scales)

	fired := 0
	ev := clocks.NewEvent("one-shot", clocks.SYS, 0, func() clocks.Result {
		fired++
		return clocks.Stop
	})
	s.Schedule(ev, 1)
	s.Step()

	if fired != 1 {
		t.Fatalf("expected exactly one invocation, got %d", fired)
	}
	if !s.Empty() {
		t.Errorf("expected queue empty after Stop, got non-empty")
	}
}

func TestUnschedule(t *testing.T) {
	scales := newFixedScales()
	s := clocks.NewScheduler(scales)

	fired := false
	ev := clocks.NewEvent("cancel-me", clocks.SYS, 0, func() clocks.Result {
		fired = true
		return clocks.Stop
	})
	s.Schedule(ev, 5)
	s.Unschedule(ev)

	if !s.Empty() {
		t.Fatalf("expected queue empty after Unschedule")
	}
	_ = fired
}

func TestPriorityOrderingAtSameTick(t *testing.T) {
	scales := newFixedScales()
	s := clocks.NewScheduler(scales)

	var order []string
	low := clocks.NewEvent("low-priority", clocks.SYS, 10, func() clocks.Result {
		order = append(order, "low")
		return clocks.Stop
	})
	high := clocks.NewEvent("high-priority", clocks.SYS, 1, func() clocks.Result {
		order = append(order, "high")
		return clocks.Stop
	})
	s.Schedule(low, 1)
	s.Schedule(high, 1)
	s.Step()

	if len(order) != 2 || order[0] != "high" || order[1] != "low" {
		t.Errorf("expected high-priority event to run first at a tied tick, got %v", order)
	}
}

func TestRescaleOnPrescalerChange(t *testing.T) {
	scales := newFixedScales()
	s := clocks.NewScheduler(scales)

	ev := clocks.NewEvent("cpu-event", clocks.CPU, 0, func() clocks.Result {
		return clocks.Stop
	})
	s.Schedule(ev, 100)

	scales.scale[clocks.CPU] = 4
	s.OnClockConfigChange()

	if ev.Tick() != 400 {
		t.Errorf("expected rescaled tick 400, got %d", ev.Tick())
	}
	if ev.Scale() != 4 {
		t.Errorf("expected rescaled scale 4, got %d", ev.Scale())
	}
}
