package srs

import (
	"encoding/json"
	"fmt"
)

// NumRadios is the fixed number of radio slots a client always carries.
// Slot IntercomSlot is reserved for intercom.
const NumRadios = 11

// IntercomSlot is the index of the slot reserved for intercom.
const IntercomSlot = 10

// disabledFreq is the sentinel frequency (Hz) that, paired with modulation
// Disabled, marks a radio slot as unused.
const disabledFreq = 1

// RadioInformation is a single radio slot.
type RadioInformation struct {
	Enc        bool                `json:"enc"`
	EncKey     int                 `json:"encKey"`
	Freq       float64             `json:"freq"`
	Modulation Modulation          `json:"modulation"`
	SecFreq    float64             `json:"secFreq"`
	Retransmit bool                `json:"retransmit"`
	Switch     RadioSwitchControls `json:"switchControls,omitempty"`
	Volume     VolumeMode          `json:"volMode,omitempty"`
	FreqMode   FreqMode            `json:"freqMode,omitempty"`
	RetransMod RetransmitMode      `json:"rtMode,omitempty"`
	Encryption EncryptionMode      `json:"encMode,omitempty"`
}

// NewRadioInformation builds a radio slot tuned to frequency/modulation,
// with all other fields at their default (off) values.
func NewRadioInformation(frequency float64, modulation Modulation) RadioInformation {
	return RadioInformation{
		Freq:       frequency,
		Modulation: modulation,
		SecFreq:    1,
	}
}

// disabledRadio returns a slot in the "disabled" state per spec: freq=1,
// modulation=Disabled.
func disabledRadio() RadioInformation {
	return NewRadioInformation(disabledFreq, Disabled)
}

// Transponder is the IFF transponder record.
type Transponder struct {
	Control IFFControlMode `json:"control"`
	Mode1   int            `json:"mode1"` // -1 = off
	Mode2   int            `json:"mode2"` // -1 = off
	Mode3   int            `json:"mode3"` // -1 = off
	Mode4   bool           `json:"mode4"`
	Mic     int            `json:"mic"`
	Status  IFFStatus      `json:"status"`
}

// Ambient describes the ambient noise configuration of a client.
type Ambient struct {
	Vol    float64 `json:"vol"`
	ABType string  `json:"abType"`
}

// RadioInfo is the full radio configuration of a client: exactly NumRadios
// slots plus the unit, transponder and ambient records.
type RadioInfo struct {
	Radios  [NumRadios]RadioInformation `json:"radios"`
	Unit    string                      `json:"unit"`
	UnitID  uint32                      `json:"unitId"`
	IFF     Transponder                 `json:"iff"`
	Ambient Ambient                     `json:"ambient"`
}

// MarshalJSON flattens Radios to a plain JSON array, matching the wire
// shape servers expect (a list, not a fixed-size tuple).
func (r RadioInfo) MarshalJSON() ([]byte, error) {
	type wire struct {
		Radios  []RadioInformation `json:"radios"`
		Unit    string             `json:"unit"`
		UnitID  uint32             `json:"unitId"`
		IFF     Transponder        `json:"iff"`
		Ambient Ambient            `json:"ambient"`
	}
	w := wire{
		Radios:  r.Radios[:],
		Unit:    r.Unit,
		UnitID:  r.UnitID,
		IFF:     r.IFF,
		Ambient: r.Ambient,
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads a variable-length "radios" array but always yields a
// RadioInfo with exactly NumRadios slots: missing slots are filled in
// disabled, extra ones are rejected.
func (r *RadioInfo) UnmarshalJSON(data []byte) error {
	var w struct {
		Radios  []RadioInformation `json:"radios"`
		Unit    string             `json:"unit"`
		UnitID  uint32             `json:"unitId"`
		IFF     Transponder        `json:"iff"`
		Ambient Ambient            `json:"ambient"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if len(w.Radios) > NumRadios {
		return fmt.Errorf("srs: radio info carries %d radios, want at most %d", len(w.Radios), NumRadios)
	}

	var radios [NumRadios]RadioInformation
	for i := range radios {
		radios[i] = disabledRadio()
	}
	copy(radios[:], w.Radios)

	r.Radios = radios
	r.Unit = w.Unit
	r.UnitID = w.UnitID
	r.IFF = w.IFF
	r.Ambient = w.Ambient
	return nil
}

// defaultRadioInfo builds the RadioInfo of a freshly created client: 11
// disabled slots, no unit, transponder off.
func defaultRadioInfo() RadioInfo {
	info := RadioInfo{
		IFF: Transponder{
			Control: IFFDisabled,
			Mode1:   -1,
			Mode2:   -1,
			Mode3:   -1,
			Mode4:   false,
			Mic:     -1,
			Status:  IFFOff,
		},
		Ambient: Ambient{Vol: 1.0},
	}
	for i := range info.Radios {
		info.Radios[i] = disabledRadio()
	}
	return info
}

// LatLngPosition is a client's reported world position.
type LatLngPosition struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
	Alt float64 `json:"alt"`
}
