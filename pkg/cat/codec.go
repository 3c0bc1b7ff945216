package cat

import "time"

// Codec builds request frames and parses response frames for one protocol
// family. Each implementation covers exactly the four CAT operations; the
// controller picks which codec handles each operation via the profile's
// override-then-base lookup.
type Codec interface {
	GetFrequency(t Transport) (int64, error)
	SetFrequency(t Transport, hz int64) error
	GetMode(t Transport) (Mode, error)
	SetMode(t Transport, mode Mode) error
}

// newCodec constructs the codec for proto, carrying the per-model framing
// parameters out of the profile.
func newCodec(proto Protocol, profile *RadioProfile, readTimeout time.Duration) Codec {
	switch proto {
	case ProtocolKenwood:
		return &kenwoodCodec{
			Digits:      profile.freqDigits(),
			UnitHz:      profile.freqUnitHz(),
			ModeOffset:  profile.modeOffset(),
			Settle:      defaultSettle,
			ReadTimeout: readTimeout,
		}
	case ProtocolYaesu:
		return &yaesuCodec{ReadTimeout: readTimeout}
	case ProtocolIcom:
		return &icomCodec{Address: profile.CIVAddress, ReadTimeout: readTimeout}
	}
	return nil
}
