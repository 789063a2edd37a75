package archspec

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Channel is one entry of a channel-scale string. Suffix keeps the scale
// exactly as written (`*8`, `/2` or empty); the lattice layer evaluates it.
type Channel struct {
	Name   string
	Suffix string
}

// ParseChannels parses a channel-scale string such as `x*8_y*8_z/2`.
func ParseChannels(s string) ([]Channel, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: empty channel list", ErrSyntax)
	}

	var out []Channel
	for _, tok := range strings.Split(s, "_") {
		ch := Channel{Name: tok}
		if i := strings.IndexAny(tok, "*/"); i >= 0 {
			ch.Name = tok[:i]
			ch.Suffix = tok[i:]
			f, err := strconv.ParseFloat(tok[i+1:], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: channel %q in %q has invalid scale", ErrSyntax, tok, s)
			}
			if tok[i] == '/' && f == 0 {
				return nil, fmt.Errorf("%w: channel %q in %q divides by zero", ErrSyntax, tok, s)
			}
		}
		if ch.Name == "" {
			return nil, fmt.Errorf("%w: channel %q in %q has no name", ErrSyntax, tok, s)
		}
		out = append(out, ch)
	}
	return out, nil
}

// ChannelNames returns the channel names of s in order.
func ChannelNames(s string) ([]string, error) {
	chs, err := ParseChannels(s)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(chs))
	for i, ch := range chs {
		names[i] = ch.Name
	}
	return names, nil
}

// MergeChannels concatenates the lists, keeping the first occurrence of
// every name.
func MergeChannels(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		for _, name := range l {
			if !slices.Contains(out, name) {
				out = append(out, name)
			}
		}
	}
	return out
}

// MapChannels rewrites every channel name in s to its index in refs,
// keeping the scale suffix: `y*8_x*8` with refs [x y] becomes `1*8_0*8`.
func MapChannels(s string, refs []string) (string, error) {
	chs, err := ParseChannels(s)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(chs))
	for i, ch := range chs {
		idx := slices.Index(refs, ch.Name)
		if idx < 0 {
			return "", fmt.Errorf("%w: channel %q is not one of %v", ErrSyntax, ch.Name, refs)
		}
		parts[i] = strconv.Itoa(idx) + ch.Suffix
	}
	return strings.Join(parts, "_"), nil
}

// ExpandLattices returns one lattice string per bilateral block. A single
// entry is shared by all n blocks.
func ExpandLattices(lattices []string, n int) ([]string, error) {
	if n == 0 {
		return nil, nil
	}
	switch len(lattices) {
	case 0:
		return nil, fmt.Errorf("%w: %d bilateral blocks need lattice dims", ErrSyntax, n)
	case 1:
		out := make([]string, n)
		for i := range out {
			out[i] = lattices[0]
		}
		return out, nil
	}
	if len(lattices) != n {
		return nil, fmt.Errorf("%w: %d lattices should be provided, got %d", ErrSyntax, n, len(lattices))
	}
	return slices.Clone(lattices), nil
}
