// Package als extracts track and device information from Ableton Live Set
// (.als) files. Only two device shapes are recognised: instrument racks, which
// contribute their eight macro names, and drum racks, which contribute their
// pad layout. Every other track is invisible to the rest of the pipeline.
package als

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/mrletourneau/inst-death/internal/domain"
)

// MacroCount is the number of macro slots an instrument rack exposes.
const MacroCount = 8

// Parse decodes raw .als bytes and returns the classified tracks in document
// order. Track indices are dense over classified tracks only; tracks carrying
// neither rack type do not consume an index.
func Parse(raw []byte) ([]domain.Track, error) {
	xmlBytes, err := decompress(raw)
	if err != nil {
		return nil, err
	}

	doc, err := xmlquery.Parse(bytes.NewReader(xmlBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	var tracks []domain.Track
	index := 1
	for _, node := range xmlquery.Find(doc, "//Tracks/MidiTrack") {
		track, ok := classifyTrack(node, index)
		if !ok {
			continue
		}
		tracks = append(tracks, track)
		index++
	}
	return tracks, nil
}

// decompress unwraps the gzip layer .als files normally carry. Bytes without
// a gzip header are assumed to be already-decompressed XML.
func decompress(raw []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return raw, nil
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt gzip stream: %v", ErrMalformedDocument, err)
	}
	return data, nil
}

// classifyTrack resolves a MidiTrack node into a Track record. The drum rack
// check runs first: drum racks commonly sit inside an instrument-group
// wrapper, so the reverse order would misclassify them.
func classifyTrack(node *xmlquery.Node, index int) (domain.Track, bool) {
	name := trackName(node, index)

	if drum := xmlquery.FindOne(node, ".//DeviceChain//DrumGroupDevice"); drum != nil {
		return domain.Track{
			Index: index,
			Name:  name,
			Kind:  domain.KindDrumRack,
			Pads:  extractPads(drum),
		}, true
	}

	if rack := xmlquery.FindOne(node, ".//DeviceChain//InstrumentGroupDevice"); rack != nil {
		return domain.Track{
			Index:  index,
			Name:   name,
			Kind:   domain.KindInstrumentRack,
			Macros: extractMacros(rack),
		}, true
	}

	return domain.Track{}, false
}

func trackName(node *xmlquery.Node, index int) string {
	for _, path := range []string{".//Name/EffectiveName", ".//Name/UserName"} {
		if n := xmlquery.FindOne(node, path); n != nil {
			if v := n.SelectAttr("Value"); v != "" {
				return v
			}
		}
	}
	return fmt.Sprintf("Track %d", index)
}

// extractMacros returns exactly MacroCount display names for an instrument
// rack. Names are resolved per slot through the nested MacroControls path;
// if that yields nothing but placeholders, a second pass scans for
// MacroDisplayNames nodes directly under the rack, a shallower layout some
// document versions use.
func extractMacros(rack *xmlquery.Node) []string {
	macros := make([]string, 0, MacroCount)
	if controls := xmlquery.FindOne(rack, ".//Macros"); controls != nil {
		for i := 0; i < MacroCount; i++ {
			macros = append(macros, macroSlotName(controls, i))
		}
	}

	if allPlaceholders(macros) {
		for i := 0; i < MacroCount; i++ {
			node := xmlquery.FindOne(rack, fmt.Sprintf(".//MacroDisplayNames.%d", i))
			if node == nil {
				continue
			}
			v := node.SelectAttr("Value")
			if v == "" {
				continue
			}
			if i < len(macros) {
				macros[i] = v
			} else {
				macros = append(macros, v)
			}
		}
	}

	for len(macros) < MacroCount {
		macros = append(macros, macroPlaceholder(len(macros)))
	}
	return macros[:MacroCount]
}

func macroSlotName(controls *xmlquery.Node, i int) string {
	slot := xmlquery.FindOne(controls, fmt.Sprintf(".//MacroControls.%d", i))
	if slot == nil {
		return macroPlaceholder(i)
	}

	for _, path := range []string{fmt.Sprintf(".//MacroDisplayNames.%d", i), ".//CustomName"} {
		if n := xmlquery.FindOne(slot, path); n != nil {
			if v := n.SelectAttr("Value"); v != "" {
				return v
			}
		}
	}

	if n := xmlquery.FindOne(slot, ".//Name"); n != nil {
		if v := n.SelectAttr("Value"); v != "" {
			return v
		}
	}
	return macroPlaceholder(i)
}

func macroPlaceholder(i int) string {
	return fmt.Sprintf("Macro %d", i+1)
}

// allPlaceholders is true for an empty slice as well: no Macros node at all
// should still trigger the shallow-path rescue pass.
func allPlaceholders(macros []string) bool {
	for _, m := range macros {
		if !strings.HasPrefix(m, "Macro ") {
			return false
		}
	}
	return true
}

// extractPads collects the named pads of a drum rack. Branches without a
// parseable ReceivingNote cannot be addressed and are skipped rather than
// defaulted to note 0; branches with an empty name are unused slots.
func extractPads(drum *xmlquery.Node) []domain.Pad {
	branches := xmlquery.FindOne(drum, ".//Branches")
	if branches == nil {
		return nil
	}

	var pads []domain.Pad
	for _, branch := range xmlquery.Find(branches, ".//DrumBranch") {
		recv := xmlquery.FindOne(branch, ".//ReceivingNote")
		if recv == nil {
			continue
		}
		note, err := strconv.Atoi(recv.SelectAttr("Value"))
		if err != nil {
			continue
		}

		name := padName(branch)
		if name == "" {
			continue
		}
		pads = append(pads, domain.Pad{Note: note, Name: name})
	}

	// Internal note ids are inverted relative to MIDI pitch: descending id
	// order yields ascending musical order, which is what the hardware expects.
	sort.SliceStable(pads, func(i, j int) bool { return pads[i].Note > pads[j].Note })
	return pads
}

func padName(branch *xmlquery.Node) string {
	nameEl := xmlquery.FindOne(branch, ".//Name")
	if nameEl == nil {
		return ""
	}
	if eff := xmlquery.FindOne(nameEl, ".//EffectiveName"); eff != nil {
		return eff.SelectAttr("Value")
	}
	if user := xmlquery.FindOne(nameEl, ".//UserName"); user != nil {
		return user.SelectAttr("Value")
	}
	return ""
}
