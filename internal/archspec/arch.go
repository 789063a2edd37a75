// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the architecture token list. An architecture string is
// an underscore separated sequence of blocks; each block is a 1x1
// convolution (`c64` or plain `64`) or a bilateral lattice filter (`b64`).
package archspec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax is wrapped by every parse failure in this package.
var ErrSyntax = errors.New("archspec: syntax error")

// BlockKind tags a block in the architecture string.
type BlockKind byte

const (
	// Conv is a 1x1 convolution block.
	Conv BlockKind = 'c'
	// Bilateral is a permutohedral lattice filtering block.
	Bilateral BlockKind = 'b'
)

// String returns the single-letter tag of the kind.
func (k BlockKind) String() string {
	return string(rune(k))
}

// Block is one entry of a parsed architecture string.
type Block struct {
	Kind    BlockKind
	Outputs int
}

// String renders the block in its canonical tagged form, e.g. `b128`.
func (b Block) String() string {
	return b.Kind.String() + strconv.Itoa(b.Outputs)
}

// ParseArch parses an architecture string such as `64_128_b256_c256`.
func ParseArch(s string) ([]Block, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: empty architecture string", ErrSyntax)
	}

	tokens := strings.Split(s, "_")
	blocks := make([]Block, 0, len(tokens))
	for i, tok := range tokens {
		if tok == "" {
			return nil, fmt.Errorf("%w: empty block at position %d in %q", ErrSyntax, i+1, s)
		}

		kind := Conv
		digits := tok
		switch tok[0] {
		case byte(Conv), byte(Bilateral):
			kind = BlockKind(tok[0])
			digits = tok[1:]
		}

		n, err := strconv.Atoi(digits)
		if err != nil {
			return nil, fmt.Errorf("%w: block %q in %q is not <c|b><width>", ErrSyntax, tok, s)
		}
		if n <= 0 {
			return nil, fmt.Errorf("%w: block %q in %q must have a positive width", ErrSyntax, tok, s)
		}
		blocks = append(blocks, Block{Kind: kind, Outputs: n})
	}
	return blocks, nil
}

// FormatArch is the inverse of ParseArch using tagged tokens.
func FormatArch(blocks []Block) string {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.String()
	}
	return strings.Join(parts, "_")
}

// CountBilateral returns the number of bilateral blocks.
func CountBilateral(blocks []Block) int {
	n := 0
	for _, b := range blocks {
		if b.Kind == Bilateral {
			n++
		}
	}
	return n
}
