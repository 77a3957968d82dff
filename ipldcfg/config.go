// Package ipldcfg holds the optional, YAML-loadable defaults an embedder
// may use to build a resolver/patcher System: preferred multibase
// encoding for canonical CID display, the codec name table, and the
// list of ADLs to register by default. None of this is required by the
// core contract; it mirrors the shape of configuration/configuration.go
// without any of that package's HTTP/storage/auth sections, which have
// no analog here.
package ipldcfg

import (
	"fmt"
	"io"
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// Config is a YAML-tagged bag of canonicalization and wiring defaults.
type Config struct {
	// Multibase is the default base used to render a CIDv1 when a URL
	// is built from a bare CID rather than parsed (ipldurl.NewWithBase)
	// — e.g. the new root URL a Patch call returns (e.g. base32, base36).
	Multibase string `yaml:"multibase"`

	// Codecs admits additional multicodec codes, by name, that
	// cidcodec.CodecFor should accept alongside the built-in
	// dag-cbor/dag-json pair, letting an embedder widen what patch is
	// willing to re-save under without forking the cidcodec package.
	Codecs map[string]uint64 `yaml:"codecs"`

	// ADLDefaults names ADLs this config expects the caller's
	// adl.Registry to already carry. ADL functions are always
	// user-supplied, so ipldsys.New cannot register one itself from a
	// bare name — it only verifies each name here is present on the
	// registry it's given, panicking on a mismatch.
	ADLDefaults []string `yaml:"adlDefaults"`
}

// Default returns the configuration the core assumes when no Config is
// supplied: base32 multibase, the two codecs spec.md names, no default
// ADLs.
func Default() *Config {
	return &Config{
		Multibase: "base32",
		Codecs: map[string]uint64{
			"dag-cbor": 0x71,
			"dag-json": 0x0129,
		},
	}
}

// Load parses a YAML document into a Config, layering it over Default()
// so a partial document only overrides what it names.
func Load(r io.Reader) (*Config, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
