package textenc

import (
	"fmt"
	"sort"
	"sync"
)

// Encoder answers encodability questions for the code pages of one
// capability profile and encodes text once a code page has been fixed.
//
// High-range character maps are built on first use and cached for the
// lifetime of the instance: building one may probe a codec over all 128
// code points and must not be repeated per character. The cache and the
// used-encodings preference list are guarded by a mutex so that a shared
// instance at worst degrades tie-break quality, never map consistency.
type Encoder struct {
	codePages map[string]int

	mu       sync.Mutex
	charMaps map[string]map[rune]byte
	used     []string
	usedSet  map[string]bool
}

// NewEncoder builds an Encoder over a profile's code page table
// (canonical name to ESC t index).
func NewEncoder(codePages map[string]int) *Encoder {
	pages := make(map[string]int, len(codePages))
	for name, seq := range codePages {
		pages[CanonicalName(name)] = seq
	}
	return &Encoder{
		codePages: pages,
		charMaps:  make(map[string]map[rune]byte),
		usedSet:   make(map[string]bool),
	}
}

// Sequence returns the protocol index the profile assigns to a code page.
func (e *Encoder) Sequence(name string) (int, error) {
	seq, ok := e.codePages[CanonicalName(name)]
	if !ok {
		return 0, fmt.Errorf("code page %q not in profile: %w", name, ErrUnknownCodePage)
	}
	return seq, nil
}

// charMap returns the cached rune-to-byte map for a code page's high range,
// building it on first use.
func (e *Encoder) charMap(name string) (map[rune]byte, error) {
	name = CanonicalName(name)

	e.mu.Lock()
	defer e.mu.Unlock()
	if m, ok := e.charMaps[name]; ok {
		return m, nil
	}

	chars, err := highRangeChars(name)
	if err != nil {
		return nil, err
	}
	m := make(map[rune]byte, 128)
	for i, r := range chars {
		if r == 0 {
			continue
		}
		m[r] = byte(128 + i)
	}
	e.charMaps[name] = m
	return m, nil
}

// CanEncode reports whether a single character is representable under the
// given code page. A registry miss means "not usable" for every character,
// ASCII included, so the search loop skips broken or unknown entries
// instead of selecting a page no encoding backs.
func (e *Encoder) CanEncode(name string, r rune) bool {
	m, err := e.charMap(name)
	if err != nil {
		return false
	}
	if r < 128 {
		return true
	}
	_, ok := m[r]
	return ok
}

// Encode maps text to bytes under a fixed code page. ASCII passes through
// as its ordinal, high-range characters go through the code page table and
// anything else becomes defaultChar. Callers are expected to have checked
// encodability already; Encode substitutes rather than fails.
func (e *Encoder) Encode(text, name string, defaultChar byte) []byte {
	m, err := e.charMap(name)
	if err != nil {
		m = nil
	}
	out := make([]byte, 0, len(text))
	for _, r := range text {
		switch {
		case r < 128:
			out = append(out, byte(r))
		default:
			if b, ok := m[r]; ok {
				out = append(out, b)
			} else {
				out = append(out, defaultChar)
			}
		}
	}
	return out
}

// FindSuitable searches the profile's code pages for one that can encode r.
// Code pages already used win first (fewer switch commands later); the
// remainder are tried by ascending protocol index, so an incomplete profile
// still resolves to its most basic pages first.
func (e *Encoder) FindSuitable(r rune) (string, bool) {
	for _, name := range e.usedSnapshot() {
		if e.CanEncode(name, r) {
			return name, true
		}
	}
	for _, name := range e.bySequence() {
		if e.usedContains(name) {
			continue
		}
		if e.CanEncode(name, r) {
			e.Memorize(name)
			return name, true
		}
	}
	return "", false
}

// Memorize records a code page as used, raising its priority in later
// searches. Recording order is preserved.
func (e *Encoder) Memorize(name string) {
	name = CanonicalName(name)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.usedSet[name] {
		return
	}
	e.usedSet[name] = true
	e.used = append(e.used, name)
}

func (e *Encoder) usedSnapshot() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.used))
	copy(out, e.used)
	return out
}

func (e *Encoder) usedContains(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.usedSet[name]
}

func (e *Encoder) bySequence() []string {
	names := make([]string, 0, len(e.codePages))
	for name := range e.codePages {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		si, sj := e.codePages[names[i]], e.codePages[names[j]]
		if si != sj {
			return si < sj
		}
		return names[i] < names[j]
	})
	return names
}
