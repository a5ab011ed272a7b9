package model

import (
	"encoding/json"
	"fmt"
)

// Tier is a time-of-use pricing band. The zero value is TierFlat so that
// an unset schedule cell prices at the flat rate.
type Tier int

const (
	TierFlat Tier = iota
	TierSpike
	TierPeak
	TierValley
	TierDeep

	numTiers
)

var tierNames = [numTiers]string{"flat", "spike", "peak", "valley", "deep"}

func (t Tier) String() string {
	if t < 0 || t >= numTiers {
		return "flat"
	}
	return tierNames[t]
}

func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Tier) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTier(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func ParseTier(s string) (Tier, error) {
	for i, name := range tierNames {
		if s == name {
			return Tier(i), nil
		}
	}
	return TierFlat, fmt.Errorf("unknown tier %q", s)
}

// Mode is the operating instruction for one schedule hour. The zero value
// is ModeStandby so an unset cell does nothing.
type Mode int

const (
	ModeStandby Mode = iota
	ModeCharge
	ModeDischarge
)

var modeNames = [...]string{"standby", "charge", "discharge"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "standby"
	}
	return modeNames[m]
}

func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Mode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if s == name {
			return Mode(i), nil
		}
	}
	return ModeStandby, fmt.Errorf("unknown mode %q", s)
}
