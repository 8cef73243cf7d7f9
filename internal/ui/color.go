package ui

import (
	"encoding/binary"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/crypto/blake2b"
)

// DefaultColor is ANSI yellow.
const DefaultColor = lipgloss.Color("3")

// TrackColor picks one of the 15 non-black ANSI colors from a hash of
// the track name, so a track always gets the same color.
func TrackColor(name string, useDefault bool) lipgloss.Color {
	if useDefault {
		return DefaultColor
	}
	sum := blake2b.Sum256([]byte(name))
	idx := binary.BigEndian.Uint64(sum[:8])%15 + 1
	return lipgloss.Color(strconv.FormatUint(idx, 10))
}
