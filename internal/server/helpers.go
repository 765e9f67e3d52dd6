package server

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/mrletourneau/inst-death/internal/domain"
	"github.com/mrletourneau/inst-death/internal/hapax"
	"github.com/mrletourneau/inst-death/internal/project"
)

// Unit is one rendered definition, ready for archiving.
type Unit struct {
	Filename string
	Content  string
}

// buildUnits renders every valid export unit for the given selections.
// Invalid units are skipped with a warning so one bad selection never aborts
// the rest of the batch; the skip count is returned for reporting.
func buildUnits(p *project.Project, selections []domain.Selection) ([]Unit, int) {
	var units []Unit
	skipped := 0

	for _, sel := range selections {
		track, ok := p.Track(sel.TrackIndex)
		if !ok {
			slog.Warn("Skipping selection", "projectId", p.ID, "trackIndex", sel.TrackIndex,
				"error", fmt.Sprintf("%v: unknown track index", ErrInvalidSelection))
			skipped++
			continue
		}

		channel := sel.MidiChannel
		if channel == 0 {
			channel = 1
		}

		if track.IsInstrument() {
			text, err := hapax.Instrument(track, channel)
			if err != nil {
				slog.Warn("Skipping selection", "projectId", p.ID, "trackIndex", sel.TrackIndex, "error", err)
				skipped++
				continue
			}
			units = append(units, Unit{Filename: hapax.Filename(track.Name, 0), Content: text})
			continue
		}

		if len(sel.PadGroups) == 0 {
			built, failures := autoSplitUnits(track, channel)
			units = append(units, built...)
			skipped += failures
			continue
		}

		for _, group := range sel.PadGroups {
			unit, err := explicitGroupUnit(track, channel, group)
			if err != nil {
				slog.Warn("Skipping pad group", "projectId", p.ID, "trackIndex", sel.TrackIndex,
					"part", group.PartNumber, "error", err)
				skipped++
				continue
			}
			units = append(units, unit)
		}
	}

	return units, skipped
}

// autoSplitUnits splits a drum rack's full pad list into consecutive groups
// of 8. Part suffixes are only used when the rack splits into more than one
// definition.
func autoSplitUnits(track domain.Track, channel int) ([]Unit, int) {
	groups := hapax.GroupPads(track.Pads, hapax.DefaultGroupSize)

	var units []Unit
	failures := 0
	for i, group := range groups {
		part := 0
		if len(groups) > 1 {
			part = i + 1
		}
		text, err := hapax.Drum(track, channel, group, part)
		if err != nil {
			slog.Warn("Skipping pad group", "track", track.Name, "part", part, "error", err)
			failures++
			continue
		}
		units = append(units, Unit{Filename: hapax.Filename(track.Name, part), Content: text})
	}
	return units, failures
}

func explicitGroupUnit(track domain.Track, channel int, group domain.PadGroup) (Unit, error) {
	if group.MidiChannel != 0 {
		channel = group.MidiChannel
	}

	pads, err := resolvePads(track.Pads, group.PadIndices)
	if err != nil {
		return Unit{}, err
	}

	text, err := hapax.Drum(track, channel, pads, group.PartNumber)
	if err != nil {
		return Unit{}, err
	}
	return Unit{Filename: hapax.Filename(track.Name, group.PartNumber), Content: text}, nil
}

func resolvePads(pads []domain.Pad, indices []int) ([]domain.Pad, error) {
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: empty pad group", ErrInvalidSelection)
	}

	selected := make([]domain.Pad, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(pads) {
			return nil, fmt.Errorf("%w: pad index %d out of range", ErrInvalidSelection, idx)
		}
		selected = append(selected, pads[idx])
	}
	return selected, nil
}

// archiveName derives the download name for the generated zip from the
// uploaded project's filename.
func archiveName(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	base = hapax.SafeName(base)
	if base == "" {
		base = "project"
	}
	return base + "_hapax.zip"
}
