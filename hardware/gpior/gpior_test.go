package gpior_test

import (
	"testing"

	"github.com/avrxmega/xmsim/hardware/gpior"
)

func TestReadWriteIsIdentity(t *testing.T) {
	g := gpior.New()
	g.SetIO(3, 0x42)
	if got := g.GetIO(3); got != 0x42 {
		t.Errorf("expected readback 0x42, got %#02x", got)
	}
}

func TestResetZeroes(t *testing.T) {
	g := gpior.New()
	g.SetIO(0, 0xff)
	g.Reset()
	if got := g.GetIO(0); got != 0 {
		t.Errorf("expected 0 after Reset, got %#02x", got)
	}
}
