package model_test

import (
	"testing"

	"github.com/avrxmega/xmsim/hardware/model"
)

func TestCatalogEntriesValidate(t *testing.T) {
	for _, cfg := range []model.Config{model.Catalog128, model.Catalog32} {
		if _, err := cfg.Validate(); err != nil {
			t.Errorf("%s: unexpected validation error: %v", cfg.Name, err)
		}
	}
}

func TestDerivedExSRAM(t *testing.T) {
	d, err := model.Catalog128.Validate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ExSRAMSize == 0 {
		t.Errorf("expected Catalog128 (has_exsram) to derive a non-zero ExSRAMSize")
	}

	d2, err := model.Catalog32.Validate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d2.ExSRAMSize != 0 {
		t.Errorf("expected Catalog32 (no exsram) to derive ExSRAMSize == 0, got %d", d2.ExSRAMSize)
	}
}

func TestRejectsOddPageSize(t *testing.T) {
	cfg := model.Catalog32
	cfg.FlashPageSize = 0x101
	if _, err := cfg.Validate(); err == nil {
		t.Errorf("expected error for odd flash_page_size")
	}
}

func TestRejectsBootSizeNotMultipleOfPage(t *testing.T) {
	cfg := model.Catalog32
	cfg.FlashBootSize = 0x150
	if _, err := cfg.Validate(); err == nil {
		t.Errorf("expected error for flash_boot_size not a multiple of flash_page_size")
	}
}

func TestRejectsBootSizeNotLessThanAppSize(t *testing.T) {
	cfg := model.Catalog32
	cfg.FlashBootSize = cfg.FlashSize
	if _, err := cfg.Validate(); err == nil {
		t.Errorf("expected error when flash_boot_size consumes the whole flash")
	}
}

func TestRejectsOversizedEEPROM(t *testing.T) {
	cfg := model.Catalog32
	cfg.EEPROMSize = 0x1001
	if _, err := cfg.Validate(); err == nil {
		t.Errorf("expected error for eeprom_size > 0x1000")
	}
}
