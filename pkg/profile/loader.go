package profile

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"printgen/pkg/textenc"
)

//go:embed capabilities.yaml
var embeddedDB []byte

// database mirrors the on-disk shape of the capability file: a profiles
// section plus optional literal encoding tables for code pages that have
// no native codec.
type database struct {
	Profiles  map[string]rawProfile  `yaml:"profiles"`
	Encodings map[string]rawEncoding `yaml:"encodings"`
}

type rawProfile struct {
	Name      string            `yaml:"name"`
	Vendor    string            `yaml:"vendor"`
	Features  map[string]bool   `yaml:"features"`
	CodePages map[string]string `yaml:"codePages"`
	Fonts     map[string]Font   `yaml:"fonts"`
	Media     Media             `yaml:"media"`
}

type rawEncoding struct {
	Name string `yaml:"name"`
	// Data is the literal table of the 128 high-range characters, one
	// string of exactly 128 runes (split across lines for readability).
	Data []string `yaml:"data"`
}

// Load returns a profile from the embedded capability database.
func Load(name string) (*Profile, error) {
	return load(embeddedDB, name)
}

// LoadFile returns a profile from an external capability database file.
func LoadFile(path, name string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read capability database: %w", err)
	}
	return load(raw, name)
}

// Names lists the profiles available in the embedded database.
func Names() []string {
	var db database
	if err := yaml.Unmarshal(embeddedDB, &db); err != nil {
		return nil
	}
	names := make([]string, 0, len(db.Profiles))
	for name := range db.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func load(raw []byte, name string) (*Profile, error) {
	var db database
	if err := yaml.Unmarshal(raw, &db); err != nil {
		return nil, fmt.Errorf("parse capability database: %w", err)
	}

	for encName, enc := range db.Encodings {
		if len(enc.Data) == 0 {
			continue
		}
		table, err := dataTable(enc.Data)
		if err != nil {
			return nil, fmt.Errorf("encoding %q: %w", encName, err)
		}
		textenc.RegisterTable(encName, table)
	}

	if name == "" {
		name = "default"
	}
	rp, ok := db.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("printer profile %q not found", name)
	}

	p := &Profile{
		Name:      rp.Name,
		Vendor:    rp.Vendor,
		Features:  rp.Features,
		CodePages: make(map[string]int, len(rp.CodePages)),
		Fonts:     rp.Fonts,
		Media:     rp.Media,
	}
	if p.Features == nil {
		p.Features = map[string]bool{}
	}

	// Invert the database's index->name mapping and verify, while still at
	// load time, that every referenced code page resolves to an encoding
	// this build can actually produce bytes for.
	for idx, cpName := range rp.CodePages {
		seq, err := strconv.Atoi(idx)
		if err != nil || seq < 0 || seq > 255 {
			return nil, fmt.Errorf("profile %q: invalid code page index %q", name, idx)
		}
		canonical := textenc.CanonicalName(cpName)
		if !textenc.Known(canonical) {
			return nil, fmt.Errorf("profile %q: code page %q (index %d): %w",
				name, cpName, seq, textenc.ErrUnknownCodePage)
		}
		p.CodePages[canonical] = seq
	}

	return p, nil
}

func dataTable(lines []string) ([128]rune, error) {
	var table [128]rune
	i := 0
	for _, line := range lines {
		for _, r := range line {
			if i >= 128 {
				return table, fmt.Errorf("literal table longer than 128 entries")
			}
			if r != ' ' {
				table[i] = r
			}
			i++
		}
	}
	if i != 128 {
		return table, fmt.Errorf("literal table has %d entries, want 128", i)
	}
	return table, nil
}
