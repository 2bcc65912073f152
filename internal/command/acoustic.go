package command

import (
	"encoding/binary"
	"time"
	"unicode/utf8"
)

// #region layout

// AcousticSize is the fixed byte budget for low-bandwidth acoustic links.
// The packet is a serialization profile of a decision, not a separate model.
const AcousticSize = 32

const acousticSchemaVersion = 1

// interpretation gets whatever the fixed header leaves over.
const acousticTextLen = AcousticSize - 12

// Validation outcome codes carried in the packet flags.
const (
	AcousticAccepted = 0
	AcousticClamped  = 1
	AcousticFailSafe = 2
)

// #endregion layout

// #region types

// AcousticDecision is the subset of a decision that fits the acoustic budget.
type AcousticDecision struct {
	Mode           Mode
	ConditionMask  uint16
	Timestamp      time.Time
	AltMeters      float64
	BatteryPct     int // -1 when unknown
	DarkWindow     bool
	Validation     int // AcousticAccepted | AcousticClamped | AcousticFailSafe
	Interpretation string
}

// #endregion types

// #region mode-codes

var modeCodes = map[Mode]byte{
	ModeAltHold:    1,
	ModeLoiter:     2,
	ModeLand:       3,
	ModeStabilize:  4,
	ModeRTL:        5,
	ModeDepthHold:  6,
	ModeSurface:    7,
	ModeManualHold: 8,
}

var codeModes = func() map[byte]Mode {
	m := make(map[byte]Mode, len(modeCodes))
	for k, v := range modeCodes {
		m[v] = k
	}
	return m
}()

// #endregion mode-codes

// #region pack

// PackAcoustic encodes a decision into the fixed 32-byte acoustic frame.
// The interpretation is truncated to the remaining budget on a rune boundary.
func PackAcoustic(d AcousticDecision) [AcousticSize]byte {
	var out [AcousticSize]byte
	out[0] = acousticSchemaVersion
	out[1] = modeCodes[d.Mode]
	binary.LittleEndian.PutUint16(out[2:4], d.ConditionMask)
	binary.LittleEndian.PutUint32(out[4:8], uint32(d.Timestamp.Unix()))

	dm := int(d.AltMeters * 10) // decimeters
	if dm > 32767 {
		dm = 32767
	} else if dm < -32768 {
		dm = -32768
	}
	binary.LittleEndian.PutUint16(out[8:10], uint16(int16(dm)))

	if d.BatteryPct < 0 || d.BatteryPct > 100 {
		out[10] = 255
	} else {
		out[10] = byte(d.BatteryPct)
	}

	var flags byte
	if d.DarkWindow {
		flags |= 1
	}
	flags |= byte(d.Validation&0x3) << 1
	out[11] = flags

	copy(out[12:], truncateRunes(d.Interpretation, acousticTextLen))
	return out
}

// UnpackAcoustic decodes a 32-byte acoustic frame.
func UnpackAcoustic(b [AcousticSize]byte) AcousticDecision {
	d := AcousticDecision{
		Mode:          codeModes[b[1]],
		ConditionMask: binary.LittleEndian.Uint16(b[2:4]),
		Timestamp:     time.Unix(int64(binary.LittleEndian.Uint32(b[4:8])), 0).UTC(),
		AltMeters:     float64(int16(binary.LittleEndian.Uint16(b[8:10]))) / 10,
		DarkWindow:    b[11]&1 != 0,
		Validation:    int(b[11]>>1) & 0x3,
	}
	if b[10] == 255 {
		d.BatteryPct = -1
	} else {
		d.BatteryPct = int(b[10])
	}
	text := b[12:]
	end := len(text)
	for i, c := range text {
		if c == 0 {
			end = i
			break
		}
	}
	d.Interpretation = string(text[:end])
	return d
}

// #endregion pack

// #region helpers

// truncateRunes cuts s to at most n bytes without splitting a rune.
func truncateRunes(s string, n int) []byte {
	if len(s) <= n {
		return []byte(s)
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return []byte(s[:cut])
}

// #endregion helpers
