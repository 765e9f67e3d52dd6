package als

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrletourneau/inst-death/internal/domain"
)

func liveSet(tracks ...string) []byte {
	return []byte(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<Ableton MajorVersion="5" MinorVersion="11.0_11202" Creator="Ableton Live 11.2">
	<LiveSet>
		<Tracks>
%s
		</Tracks>
	</LiveSet>
</Ableton>`, strings.Join(tracks, "\n")))
}

// instrumentTrack builds a MidiTrack with an instrument rack whose macro
// display names live on the nested MacroControls path.
func instrumentTrack(name string, macros map[int]string) string {
	var slots strings.Builder
	for i := 0; i < MacroCount; i++ {
		if display, ok := macros[i]; ok {
			fmt.Fprintf(&slots, `<MacroControls.%d><MacroDisplayNames.%d Value=%q/></MacroControls.%d>`, i, i, display, i)
		} else {
			fmt.Fprintf(&slots, `<MacroControls.%d></MacroControls.%d>`, i, i)
		}
	}
	return fmt.Sprintf(`<MidiTrack>
		<Name><EffectiveName Value=%q/><UserName Value=""/></Name>
		<DeviceChain><DeviceChain><Devices>
			<InstrumentGroupDevice>
				<Macros>%s</Macros>
			</InstrumentGroupDevice>
		</Devices></DeviceChain></DeviceChain>
	</MidiTrack>`, name, slots.String())
}

func drumTrack(name string, branches ...string) string {
	return fmt.Sprintf(`<MidiTrack>
		<Name><EffectiveName Value=%q/><UserName Value=""/></Name>
		<DeviceChain><DeviceChain><Devices>
			<DrumGroupDevice>
				<Branches>%s</Branches>
			</DrumGroupDevice>
		</Devices></DeviceChain></DeviceChain>
	</MidiTrack>`, name, strings.Join(branches, ""))
}

func drumBranch(note int, name string) string {
	return fmt.Sprintf(`<DrumBranch>
		<Name><EffectiveName Value=%q/><UserName Value=""/></Name>
		<ZoneSettings><ReceivingNote Value="%d"/><SendingNote Value="60"/></ZoneSettings>
	</DrumBranch>`, name, note)
}

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestParseGzipEquivalence(t *testing.T) {
	plain := liveSet(instrumentTrack("1-Lead", map[int]string{0: "Cutoff"}))

	fromPlain, err := Parse(plain)
	require.NoError(t, err)

	fromGzip, err := Parse(gzipped(t, plain))
	require.NoError(t, err)

	assert.Equal(t, fromPlain, fromGzip)
}

func TestParseMalformedXML(t *testing.T) {
	tracks, err := Parse([]byte(`<Ableton><LiveSet></Ableton>`))
	assert.ErrorIs(t, err, ErrMalformedDocument)
	assert.Nil(t, tracks)
}

func TestParseCorruptGzipStream(t *testing.T) {
	full := gzipped(t, liveSet(instrumentTrack("1-Lead", nil)))

	// A valid gzip header followed by a truncated deflate stream must not be
	// retried as plain XML.
	tracks, err := Parse(full[:12])
	assert.ErrorIs(t, err, ErrMalformedDocument)
	assert.Nil(t, tracks)
}

func TestParseEmptyProject(t *testing.T) {
	tracks, err := Parse(liveSet())
	require.NoError(t, err)
	assert.Empty(t, tracks)
}

func TestExtractMacrosAlwaysEight(t *testing.T) {
	doc := liveSet(instrumentTrack("1-Lead", map[int]string{0: "Cutoff", 1: "Reso"}))

	tracks, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, tracks, 1)

	track := tracks[0]
	assert.Equal(t, domain.KindInstrumentRack, track.Kind)
	require.Len(t, track.Macros, MacroCount)
	assert.Equal(t, "Cutoff", track.Macros[0])
	assert.Equal(t, "Reso", track.Macros[1])
	for i := 2; i < MacroCount; i++ {
		assert.Equal(t, fmt.Sprintf("Macro %d", i+1), track.Macros[i])
	}
}

func TestExtractMacrosNoMacrosNode(t *testing.T) {
	doc := liveSet(`<MidiTrack>
		<Name><EffectiveName Value="1-Bare"/></Name>
		<DeviceChain><DeviceChain><Devices>
			<InstrumentGroupDevice></InstrumentGroupDevice>
		</Devices></DeviceChain></DeviceChain>
	</MidiTrack>`)

	tracks, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, []string{
		"Macro 1", "Macro 2", "Macro 3", "Macro 4",
		"Macro 5", "Macro 6", "Macro 7", "Macro 8",
	}, tracks[0].Macros)
}

func TestExtractMacrosShallowDisplayNames(t *testing.T) {
	// Display names directly under the device, not nested in the control
	// slots. The first pass yields only placeholders, which triggers the
	// shallow rescue pass.
	doc := liveSet(`<MidiTrack>
		<Name><EffectiveName Value="1-Wob"/></Name>
		<DeviceChain><DeviceChain><Devices>
			<InstrumentGroupDevice>
				<MacroDisplayNames.0 Value="Drive"/>
				<MacroDisplayNames.1 Value="Space"/>
			</InstrumentGroupDevice>
		</Devices></DeviceChain></DeviceChain>
	</MidiTrack>`)

	tracks, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "Drive", tracks[0].Macros[0])
	assert.Equal(t, "Space", tracks[0].Macros[1])
	assert.Equal(t, "Macro 3", tracks[0].Macros[2])
	assert.Len(t, tracks[0].Macros, MacroCount)
}

func TestExtractMacrosShallowPassNotTriggeredByPartialNames(t *testing.T) {
	// One real name from the nested pass means the shallow variant is ignored.
	doc := liveSet(`<MidiTrack>
		<Name><EffectiveName Value="1-Mixed"/></Name>
		<DeviceChain><DeviceChain><Devices>
			<InstrumentGroupDevice>
				<Macros>
					<MacroControls.0><MacroDisplayNames.0 Value="Cutoff"/></MacroControls.0>
				</Macros>
				<MacroDisplayNames.1 Value="ShadowName"/>
			</InstrumentGroupDevice>
		</Devices></DeviceChain></DeviceChain>
	</MidiTrack>`)

	tracks, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "Cutoff", tracks[0].Macros[0])
	assert.Equal(t, "Macro 2", tracks[0].Macros[1])
}

func TestExtractMacrosCustomNameAndNameFallbacks(t *testing.T) {
	doc := liveSet(`<MidiTrack>
		<Name><EffectiveName Value="1-Fallbacks"/></Name>
		<DeviceChain><DeviceChain><Devices>
			<InstrumentGroupDevice>
				<Macros>
					<MacroControls.0><CustomName Value="Wobble"/></MacroControls.0>
					<MacroControls.1><Name Value="Pitch Env"/></MacroControls.1>
				</Macros>
			</InstrumentGroupDevice>
		</Devices></DeviceChain></DeviceChain>
	</MidiTrack>`)

	tracks, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "Wobble", tracks[0].Macros[0])
	assert.Equal(t, "Pitch Env", tracks[0].Macros[1])
	assert.Equal(t, "Macro 3", tracks[0].Macros[2])
}

func TestExtractPadsOrderAndSkips(t *testing.T) {
	doc := liveSet(drumTrack("2-Drums",
		drumBranch(60, "Mid Tom"),
		drumBranch(36, "Crash"),
		drumBranch(92, "Kick"),
		drumBranch(91, ""), // unused slot, no name
		`<DrumBranch><Name><EffectiveName Value="Ghost"/></Name></DrumBranch>`, // no ReceivingNote
	))

	tracks, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, tracks, 1)

	track := tracks[0]
	assert.Equal(t, domain.KindDrumRack, track.Kind)
	assert.Equal(t, []domain.Pad{
		{Note: 92, Name: "Kick"},
		{Note: 60, Name: "Mid Tom"},
		{Note: 36, Name: "Crash"},
	}, track.Pads)
}

func TestExtractPadsUserNameFallback(t *testing.T) {
	doc := liveSet(drumTrack("2-Drums",
		`<DrumBranch>
			<Name><UserName Value="Renamed Snare"/></Name>
			<ZoneSettings><ReceivingNote Value="90"/></ZoneSettings>
		</DrumBranch>`,
	))

	tracks, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, []domain.Pad{{Note: 90, Name: "Renamed Snare"}}, tracks[0].Pads)
}

func TestDrumRackWinsOverInstrumentRack(t *testing.T) {
	// Drum racks nested inside an instrument-group wrapper must classify as
	// drum racks.
	doc := liveSet(fmt.Sprintf(`<MidiTrack>
		<Name><EffectiveName Value="2-Kit"/></Name>
		<DeviceChain><DeviceChain><Devices>
			<InstrumentGroupDevice>
				<Branches><InstrumentBranch><DeviceChain><Devices>
					<DrumGroupDevice>
						<Branches>%s</Branches>
					</DrumGroupDevice>
				</Devices></DeviceChain></InstrumentBranch></Branches>
			</InstrumentGroupDevice>
		</Devices></DeviceChain></DeviceChain>
	</MidiTrack>`, drumBranch(92, "Kick")))

	tracks, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, domain.KindDrumRack, tracks[0].Kind)
	assert.Equal(t, []domain.Pad{{Note: 92, Name: "Kick"}}, tracks[0].Pads)
}

func TestUnclassifiedTracksSkipped(t *testing.T) {
	doc := liveSet(
		instrumentTrack("1-Lead", map[int]string{0: "Cutoff"}),
		`<MidiTrack>
			<Name><EffectiveName Value="2-Plain"/></Name>
			<DeviceChain><Devices></Devices></DeviceChain>
		</MidiTrack>`,
		drumTrack("3-Drums", drumBranch(92, "Kick")),
	)

	tracks, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	// Indices are dense over classified tracks, so the drum track takes 2.
	assert.Equal(t, 1, tracks[0].Index)
	assert.Equal(t, "1-Lead", tracks[0].Name)
	assert.Equal(t, 2, tracks[1].Index)
	assert.Equal(t, "3-Drums", tracks[1].Name)
}

func TestTrackNameFallbacks(t *testing.T) {
	doc := liveSet(
		`<MidiTrack>
			<Name><EffectiveName Value=""/><UserName Value="My Synth"/></Name>
			<DeviceChain><DeviceChain><Devices>
				<InstrumentGroupDevice></InstrumentGroupDevice>
			</Devices></DeviceChain></DeviceChain>
		</MidiTrack>`,
		`<MidiTrack>
			<DeviceChain><DeviceChain><Devices>
				<InstrumentGroupDevice></InstrumentGroupDevice>
			</Devices></DeviceChain></DeviceChain>
		</MidiTrack>`,
	)

	tracks, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "My Synth", tracks[0].Name)
	assert.Equal(t, "Track 2", tracks[1].Name)
}
