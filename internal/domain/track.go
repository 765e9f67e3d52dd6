package domain

// TrackKind identifies which of the two rack types a track carries.
type TrackKind string

const (
	KindInstrumentRack TrackKind = "instrument_rack"
	KindDrumRack       TrackKind = "drum_rack"
)

// Pad represents one note-addressable slot in a drum rack.
type Pad struct {
	Note int    `json:"note"`
	Name string `json:"name"`
}

// Track represents a single classified track extracted from a project.
// Exactly one of Macros or Pads is set, depending on Kind.
type Track struct {
	Index  int       `json:"index"`
	Name   string    `json:"name"`
	Kind   TrackKind `json:"type"`
	Macros []string  `json:"macros,omitempty"`
	Pads   []Pad     `json:"pads,omitempty"`
}

// IsInstrument reports whether the track is an instrument rack.
func (t Track) IsInstrument() bool {
	return t.Kind == KindInstrumentRack
}

// IsDrum reports whether the track is a drum rack.
func (t Track) IsDrum() bool {
	return t.Kind == KindDrumRack
}

// PadGroup is an explicit grouping of pads for one drum definition file.
type PadGroup struct {
	MidiChannel int   `json:"midi_channel,omitempty"`
	PadIndices  []int `json:"pad_indices"`
	PartNumber  int   `json:"part_number,omitempty"`
}

// Selection describes one requested export unit: a track, the MIDI channel to
// assign, and (for drum racks) how to group the pads. An empty PadGroups list
// means auto-split into consecutive groups of 8.
type Selection struct {
	TrackIndex  int        `json:"track_index"`
	MidiChannel int        `json:"midi_channel"`
	PadGroups   []PadGroup `json:"pad_groups,omitempty"`
}
