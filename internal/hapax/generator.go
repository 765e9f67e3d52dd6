// Package hapax renders Squarp Hapax instrument definition files from
// extracted track records. Definitions are plain newline-joined text in the
// hardware's line-based grammar; one definition corresponds to one instrument
// rack, or to one pad group of a drum rack.
package hapax

import (
	"fmt"
	"strings"

	"github.com/mrletourneau/inst-death/internal/domain"
)

const (
	// MaxNameLength is the hardware's display limit for any emitted name.
	MaxNameLength = 32

	// MacroSlots is the number of CC slots an instrument definition carries.
	MacroSlots = 8

	// DefaultGroupSize is the pad count per definition when auto-splitting a
	// drum rack.
	DefaultGroupSize = 8

	outPort = "USBD"
)

// Instrument renders the definition for an instrument rack on the given MIDI
// channel. Macro slots map 1:1 to CC numbers 1-8.
func Instrument(track domain.Track, channel int) (string, error) {
	if err := checkChannel(channel); err != nil {
		return "", err
	}
	if !track.IsInstrument() {
		return "", fmt.Errorf("%w: expected %s, got %s", ErrWrongKind, domain.KindInstrumentRack, track.Kind)
	}

	lines := []string{
		"VERSION 1",
		"TRACKNAME " + SanitizeName(track.Name),
		"TYPE POLY",
		"OUTPORT " + outPort,
		fmt.Sprintf("OUTCHAN %d", channel),
		"",
		"[CC]",
	}

	macros := track.Macros
	if len(macros) > MacroSlots {
		macros = macros[:MacroSlots]
	}
	for i, name := range macros {
		lines = append(lines, fmt.Sprintf("%d %s", i+1, SanitizeName(name)))
	}
	lines = append(lines, "[/CC]", "", "[ASSIGN]")
	for i := 1; i <= len(macros); i++ {
		lines = append(lines, fmt.Sprintf("%d CC:%d", i, i))
	}
	lines = append(lines, "[/ASSIGN]")

	return strings.Join(lines, "\n"), nil
}

// Drum renders the definition for one pad group of a drum rack. Lane numbers
// restart at 1 for every call: they are local to the definition, not to the
// rack's full pad list. A part > 0 suffixes the track name with "_p{part}".
func Drum(track domain.Track, channel int, pads []domain.Pad, part int) (string, error) {
	if err := checkChannel(channel); err != nil {
		return "", err
	}
	if !track.IsDrum() {
		return "", fmt.Errorf("%w: expected %s, got %s", ErrWrongKind, domain.KindDrumRack, track.Kind)
	}

	name := SanitizeName(track.Name)
	if part > 0 {
		name = fmt.Sprintf("%s_p%d", name, part)
	}

	lines := []string{
		"VERSION 1",
		"TRACKNAME " + name,
		"TYPE DRUM",
		"OUTPORT " + outPort,
		fmt.Sprintf("OUTCHAN %d", channel),
		"",
		"[DRUMLANES]",
	}
	for i, pad := range pads {
		// lane:trig:choke:note name
		lines = append(lines, fmt.Sprintf("%d:NULL:NULL:%d %s", i+1, pad.Note, SanitizeName(pad.Name)))
	}
	lines = append(lines, "[/DRUMLANES]")

	return strings.Join(lines, "\n"), nil
}

// GroupPads partitions pads into consecutive groups of at most groupSize,
// preserving order. An empty input yields no groups.
func GroupPads(pads []domain.Pad, groupSize int) [][]domain.Pad {
	if groupSize <= 0 {
		groupSize = DefaultGroupSize
	}

	var groups [][]domain.Pad
	for start := 0; start < len(pads); start += groupSize {
		end := start + groupSize
		if end > len(pads) {
			end = len(pads)
		}
		groups = append(groups, pads[start:end])
	}
	return groups
}

// SanitizeName makes a name safe for a definition file: carriage returns are
// stripped, embedded newlines become spaces, the result is capped at the
// hardware's display limit and trimmed. Idempotent.
func SanitizeName(name string) string {
	s := strings.ReplaceAll(name, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	if runes := []rune(s); len(runes) > MaxNameLength {
		s = string(runes[:MaxNameLength])
	}
	return strings.TrimSpace(s)
}

var filenameReplacer = strings.NewReplacer(
	"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-",
	"\"", "-", "<", "-", ">", "-", "|", "-",
)

// SafeName replaces filesystem-unsafe characters in a name for use in file
// names.
func SafeName(name string) string {
	return strings.TrimSpace(filenameReplacer.Replace(name))
}

// Filename suggests a file name for one definition unit.
func Filename(trackName string, part int) string {
	name := SafeName(SanitizeName(trackName))
	if part > 0 {
		name = fmt.Sprintf("%s_p%d", name, part)
	}
	return name + ".txt"
}

func checkChannel(channel int) error {
	if channel < 1 || channel > 16 {
		return fmt.Errorf("%w: %d", ErrInvalidChannel, channel)
	}
	return nil
}
