package ipldcfg

import (
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Multibase != "base32" {
		t.Fatalf("Default().Multibase = %q, want base32", cfg.Multibase)
	}
	if cfg.Codecs["dag-cbor"] != 0x71 {
		t.Fatalf("Default().Codecs[dag-cbor] = %#x, want 0x71", cfg.Codecs["dag-cbor"])
	}
	if cfg.Codecs["dag-json"] != 0x0129 {
		t.Fatalf("Default().Codecs[dag-json] = %#x, want 0x129", cfg.Codecs["dag-json"])
	}
	if len(cfg.ADLDefaults) != 0 {
		t.Fatalf("Default().ADLDefaults = %v, want empty", cfg.ADLDefaults)
	}
}

func TestLoadLayersOverDefault(t *testing.T) {
	doc := `
multibase: base36
adlDefaults:
  - HAMT
`
	cfg, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Multibase != "base36" {
		t.Fatalf("Multibase = %q, want base36", cfg.Multibase)
	}
	if len(cfg.ADLDefaults) != 1 || cfg.ADLDefaults[0] != "HAMT" {
		t.Fatalf("ADLDefaults = %v, want [HAMT]", cfg.ADLDefaults)
	}
	// A document that doesn't mention codecs should keep the defaults
	// layered underneath.
	if cfg.Codecs["dag-cbor"] != 0x71 {
		t.Fatalf("Codecs[dag-cbor] = %#x, want 0x71 to survive layering", cfg.Codecs["dag-cbor"])
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	if _, err := Load(strings.NewReader("not: valid: yaml: at: all:")); err == nil {
		t.Fatal("Load with malformed YAML should return an error")
	}
}
