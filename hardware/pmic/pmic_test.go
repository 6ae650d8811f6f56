package pmic_test

import (
	"testing"

	"github.com/avrxmega/xmsim/hardware/pmic"
)

type nullHandle struct{}

func (nullHandle) Logf(tag, format string, args ...interface{}) {}

func newPMIC() *pmic.PMIC {
	p := pmic.New(nullHandle{})
	p.Reset()
	return p
}

func TestSetIVLvlIsExclusive(t *testing.T) {
	p := newPMIC()
	p.SetIVLvl(5, pmic.LvlHi)
	if p.LevelOf(5) != pmic.LvlHi {
		t.Fatalf("expected iv 5 pending at Hi")
	}
	p.SetIVLvl(5, pmic.LvlLo)
	if p.LevelOf(5) != pmic.LvlLo {
		t.Fatalf("expected iv 5 to move to Lo")
	}
	p.SetIVLvl(5, pmic.LvlNone)
	if p.LevelOf(5) != pmic.LvlNone {
		t.Fatalf("expected iv 5 cleared")
	}
}

func TestSelectSmallestIVWinsWithinLevel(t *testing.T) {
	p := newPMIC()
	p.SetIO(0x02, 0x07) // enable lo/med/hi
	p.SetIVLvl(9, pmic.LvlLo)
	p.SetIVLvl(3, pmic.LvlLo)

	iv, lvl, ok := p.Select()
	if !ok || iv != 3 || lvl != pmic.LvlLo {
		t.Fatalf("expected iv=3 lvl=Lo ok=true, got iv=%d lvl=%v ok=%v", iv, lvl, ok)
	}
}

func TestSelectPriorityOrder(t *testing.T) {
	p := newPMIC()
	p.SetIO(0x02, 0x07) // enable lo/med/hi
	p.SetIVLvl(1, pmic.LvlLo)
	p.SetIVLvl(2, pmic.LvlHi)

	iv, lvl, ok := p.Select()
	if !ok || iv != 2 || lvl != pmic.LvlHi {
		t.Fatalf("expected the Hi-level IV to win over Lo, got iv=%d lvl=%v", iv, lvl)
	}
}

func TestNMIAlwaysWinsRegardlessOfEnable(t *testing.T) {
	p := newPMIC()
	// no levels enabled in ctrl
	p.SetIVLvl(4, pmic.LvlNMI)

	iv, lvl, ok := p.Select()
	if !ok || iv != 4 || lvl != pmic.LvlNMI {
		t.Fatalf("expected NMI to be selected unconditionally, got iv=%d lvl=%v ok=%v", iv, lvl, ok)
	}
}

func TestAcknowledgeAndRETI(t *testing.T) {
	p := newPMIC()
	p.SetIO(0x02, 0x01) // enable lo
	p.SetIVLvl(7, pmic.LvlLo)

	iv, lvl, ok := p.Select()
	if !ok {
		t.Fatalf("expected a pending interrupt")
	}
	p.Acknowledge(iv, lvl)

	if p.LevelOf(7) != pmic.LvlNone {
		t.Errorf("expected iv removed from pending set after acknowledge")
	}
	if p.CurrentIntLvl() != pmic.LvlLo {
		t.Errorf("expected CurrentIntLvl == Lo after acknowledge")
	}

	p.RETI()
	if p.CurrentIntLvl() != pmic.LvlNone {
		t.Errorf("expected CurrentIntLvl == None after RETI")
	}
}

func TestHigherLevelNestsOverLower(t *testing.T) {
	p := newPMIC()
	p.SetIO(0x02, 0x07)
	p.SetIVLvl(1, pmic.LvlLo)
	iv, lvl, _ := p.Select()
	p.Acknowledge(iv, lvl) // now executing Lo

	p.SetIVLvl(2, pmic.LvlLo)
	if _, _, ok := p.Select(); ok {
		t.Errorf("expected no Lo-level selection while a Lo interrupt is already executing")
	}

	p.SetIVLvl(3, pmic.LvlHi)
	iv, lvl, ok := p.Select()
	if !ok || iv != 3 || lvl != pmic.LvlHi {
		t.Errorf("expected Hi to nest over an executing Lo, got iv=%d lvl=%v ok=%v", iv, lvl, ok)
	}
}
