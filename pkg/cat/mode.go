package cat

import "strings"

// Mode is an operating mode as a radio can be asked to set it. Generic
// labels like "SSB" or "FT8" are never sent on the wire; Resolve turns them
// into a sideband variant first.
type Mode string

// Radio-settable modes.
const (
	ModeUSB    Mode = "USB"
	ModeLSB    Mode = "LSB"
	ModeCWU    Mode = "CW-U"
	ModeCWL    Mode = "CW-L"
	ModeDataU  Mode = "DATA-U"
	ModeDataL  Mode = "DATA-L"
	ModeFM     Mode = "FM"
	ModeAM     Mode = "AM"
	ModeRTTYU  Mode = "RTTY-U"
	ModeRTTYL  Mode = "RTTY-L"
	ModePSKNat Mode = "PSK"
)

// sidebandThresholdHz is the conventional HF split: bands below 10 MHz run
// lower sideband, 10 MHz and up run upper sideband.
const sidebandThresholdHz = 10_000_000

// digitalModes are the generic labels that resolve to a DATA sideband.
var digitalModes = map[string]bool{
	"FT8":     true,
	"FT4":     true,
	"PSK31":   true,
	"PSK":     true,
	"RTTY":    true,
	"JS8":     true,
	"JS8CALL": true,
}

// Resolve maps a generic mode to the variant a radio can be set to, based on
// the operating frequency. SSB becomes LSB/USB, CW becomes CW-L/CW-U, and
// digital modes become DATA-L/DATA-U, split at 10 MHz. Anything else is
// assumed to already be radio-native and passes through unchanged. Resolve
// is total: it never fails, and it is never applied on the read path.
func Resolve(mode Mode, freqHz int64) Mode {
	upper := strings.ToUpper(strings.TrimSpace(string(mode)))
	low := freqHz < sidebandThresholdHz

	switch {
	case upper == "SSB":
		if low {
			return ModeLSB
		}
		return ModeUSB
	case upper == "CW":
		if low {
			return ModeCWL
		}
		return ModeCWU
	case digitalModes[upper]:
		if low {
			return ModeDataL
		}
		return ModeDataU
	}
	return mode
}

// Kenwood MD/IF two-character mode codes. The same table serves both
// directions: IF status parsing and MD set commands.
var kenwoodModeCodes = map[string]Mode{
	"01": ModeLSB,
	"02": ModeUSB,
	"03": ModeCWU,
	"04": ModeFM,
	"05": ModeAM,
	"06": ModeRTTYL,
	"07": ModeCWL,
	"08": ModeDataL,
	"09": ModeRTTYU,
	"10": ModePSKNat,
	"0C": ModeDataU,
}

var kenwoodModeNames = invertModeCodes(kenwoodModeCodes)

// Yaesu status-frame mode bytes.
var yaesuModeCodes = map[byte]Mode{
	0x01: ModeLSB,
	0x02: ModeUSB,
	0x03: Mode("CW"),
	0x04: ModeFM,
	0x05: ModeAM,
	0x06: Mode("RTTY-LSB"),
	0x07: Mode("CW-R"),
	0x08: Mode("PKT-LSB"),
	0x09: Mode("RTTY-USB"),
	0x0A: Mode("PKT-FM"),
	0x0B: Mode("FM-N"),
	0x0C: Mode("PKT-USB"),
	0x0D: Mode("AM-N"),
	0x82: Mode("C4FM"),
}

var yaesuModeBytes = invertByteCodes(yaesuModeCodes)

// Resolved sideband variants mapped onto the nearest Yaesu-native mode, so a
// resolved DATA-U still lands on a binary-protocol radio.
func init() {
	yaesuModeBytes[ModeCWU] = 0x03   // CW
	yaesuModeBytes[ModeCWL] = 0x07   // CW-R
	yaesuModeBytes[ModeDataU] = 0x0C // PKT-USB
	yaesuModeBytes[ModeDataL] = 0x08 // PKT-LSB
	yaesuModeBytes[ModeRTTYU] = 0x09 // RTTY-USB
	yaesuModeBytes[ModeRTTYL] = 0x06 // RTTY-LSB
}

// Icom CI-V mode bytes.
var icomModeCodes = map[byte]Mode{
	0x00: ModeLSB,
	0x01: ModeUSB,
	0x02: ModeAM,
	0x03: Mode("CW"),
	0x04: Mode("RTTY"),
	0x05: ModeFM,
	0x06: Mode("WFM"),
	0x07: Mode("CW-R"),
	0x08: Mode("RTTY-R"),
	0x17: Mode("DATA"),
}

var icomModeBytes = invertByteCodes(icomModeCodes)

func init() {
	icomModeBytes[ModeCWU] = 0x03   // CW
	icomModeBytes[ModeCWL] = 0x07   // CW-R
	icomModeBytes[ModeDataU] = 0x17 // DATA
	icomModeBytes[ModeDataL] = 0x17
	icomModeBytes[ModeRTTYU] = 0x04 // RTTY
	icomModeBytes[ModeRTTYL] = 0x08 // RTTY-R
}

func invertModeCodes(codes map[string]Mode) map[Mode]string {
	out := make(map[Mode]string, len(codes))
	for code, mode := range codes {
		out[mode] = code
	}
	return out
}

func invertByteCodes(codes map[byte]Mode) map[Mode]byte {
	out := make(map[Mode]byte, len(codes))
	for code, mode := range codes {
		out[mode] = code
	}
	return out
}
