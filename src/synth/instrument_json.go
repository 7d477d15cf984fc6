package synth

import (
	"encoding/json"
	"fmt"
)

// ----- Instrument JSON ----- //

type instrumentJSON struct {
	TotalGain          float32 `json:"totalGain"`
	AttackSlopeTime    float32 `json:"attackSlopeTime"`
	DecayHalfLifeTime  float32 `json:"decayHalfLifeTime"`
	SustainRate        float32 `json:"sustainRate"`
	ReleaseSlopeTime   float32 `json:"releaseSlopeTime"`
	BaseVsOthersRatio  float32 `json:"baseVsOthersRatio"`
	Side1VsSide2Ratio  float32 `json:"side1VsSide2Ratio"`
	BaseOffsetCent1    float32 `json:"baseOffsetCent1"`
	BaseWave1          int     `json:"baseWave1"`
	BaseOffsetCent2    float32 `json:"baseOffsetCent2"`
	BaseWave2          int     `json:"baseWave2"`
	BaseOffsetCent3    float32 `json:"baseOffsetCent3"`
	BaseWave3          int     `json:"baseWave3"`
	NoiseRatio         float32 `json:"noiseRatio"`
	NoiseColorType     int     `json:"noiseColorType"`
	Delay0Time         float32 `json:"delay0Time"`
	Delay1Time         float32 `json:"delay1Time"`
	Delay2Time         float32 `json:"delay2Time"`
	Delay0Ratio        float32 `json:"delay0Ratio"`
	Delay1Ratio        float32 `json:"delay1Ratio"`
	Delay2Ratio        float32 `json:"delay2Ratio"`
	FreqNoiseCentRange float32 `json:"freqNoiseCentRange"`
	FreqNoiseType      int     `json:"freqNoiseType"`
	FmCentRange        float32 `json:"fmCentRange"`
	FmFreq             float32 `json:"fmFreq"`
	FmPhaseOffset      float32 `json:"fmPhaseOffset"`
	FmSync             int     `json:"fmSync"`
	FmWave             int     `json:"fmWave"`
	AmLevel            float32 `json:"amLevel"`
	AmFreq             float32 `json:"amFreq"`
	AmPhaseOffset      float32 `json:"amPhaseOffset"`
	AmSync             int     `json:"amSync"`
	AmWave             int     `json:"amWave"`
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (inst *Instrument) toJSON() instrumentJSON {
	return instrumentJSON{
		TotalGain:          inst.TotalGain,
		AttackSlopeTime:    inst.AttackSlopeTime,
		DecayHalfLifeTime:  inst.DecayHalfLifeTime,
		SustainRate:        inst.SustainRate,
		ReleaseSlopeTime:   inst.ReleaseSlopeTime,
		BaseVsOthersRatio:  inst.BaseVsOthersRatio,
		Side1VsSide2Ratio:  inst.Side1VsSide2Ratio,
		BaseOffsetCent1:    inst.BaseOffsetCent[0],
		BaseWave1:          int(inst.BaseWave[0]),
		BaseOffsetCent2:    inst.BaseOffsetCent[1],
		BaseWave2:          int(inst.BaseWave[1]),
		BaseOffsetCent3:    inst.BaseOffsetCent[2],
		BaseWave3:          int(inst.BaseWave[2]),
		NoiseRatio:         inst.NoiseRatio,
		NoiseColorType:     int(inst.NoiseColor),
		Delay0Time:         inst.DelayTime[0],
		Delay1Time:         inst.DelayTime[1],
		Delay2Time:         inst.DelayTime[2],
		Delay0Ratio:        inst.DelayRatio[0],
		Delay1Ratio:        inst.DelayRatio[1],
		Delay2Ratio:        inst.DelayRatio[2],
		FreqNoiseCentRange: inst.FreqNoiseCentRange,
		FreqNoiseType:      int(inst.FreqNoiseType),
		FmCentRange:        inst.FM.Depth,
		FmFreq:             inst.FM.Freq,
		FmPhaseOffset:      inst.FM.PhaseOffset,
		FmSync:             boolToInt(inst.FM.Sync),
		FmWave:             int(inst.FM.Wave),
		AmLevel:            inst.AM.Depth,
		AmFreq:             inst.AM.Freq,
		AmPhaseOffset:      inst.AM.PhaseOffset,
		AmSync:             boolToInt(inst.AM.Sync),
		AmWave:             int(inst.AM.Wave),
	}
}

// applyJSON overwrites the fields present in data and clamps the result.
func (inst *Instrument) applyJSON(data json.RawMessage) error {
	j := inst.toJSON()
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*inst = Instrument{
		TotalGain:          j.TotalGain,
		AttackSlopeTime:    j.AttackSlopeTime,
		DecayHalfLifeTime:  j.DecayHalfLifeTime,
		SustainRate:        j.SustainRate,
		ReleaseSlopeTime:   j.ReleaseSlopeTime,
		BaseVsOthersRatio:  j.BaseVsOthersRatio,
		Side1VsSide2Ratio:  j.Side1VsSide2Ratio,
		BaseOffsetCent:     [3]float32{j.BaseOffsetCent1, j.BaseOffsetCent2, j.BaseOffsetCent3},
		BaseWave:           [3]Wave{Wave(j.BaseWave1), Wave(j.BaseWave2), Wave(j.BaseWave3)},
		NoiseRatio:         j.NoiseRatio,
		NoiseColor:         NoiseColor(j.NoiseColorType),
		DelayTime:          [3]float32{j.Delay0Time, j.Delay1Time, j.Delay2Time},
		DelayRatio:         [3]float32{j.Delay0Ratio, j.Delay1Ratio, j.Delay2Ratio},
		FreqNoiseCentRange: j.FreqNoiseCentRange,
		FreqNoiseType:      NoiseDistribution(j.FreqNoiseType),
		FM: Modulation{
			Depth:       j.FmCentRange,
			Freq:        j.FmFreq,
			PhaseOffset: j.FmPhaseOffset,
			Sync:        j.FmSync >= 1,
			Wave:        Wave(j.FmWave),
		},
		AM: Modulation{
			Depth:       j.AmLevel,
			Freq:        j.AmFreq,
			PhaseOffset: j.AmPhaseOffset,
			Sync:        j.AmSync >= 1,
			Wave:        Wave(j.AmWave),
		},
	}
	*inst = inst.Clamped()
	return nil
}

type percussionJSON struct {
	Program int `json:"program"`
	Key     int `json:"key"`
}

type controlJSON struct {
	DivisionNum float32 `json:"divisionNum"`
	LogLevel    int     `json:"logLevel"`
}

// presetJSON is the on-disk preset: any part may be omitted.
type presetJSON struct {
	Instruments []json.RawMessage `json:"instruments,omitempty"`
	Percussions []json.RawMessage `json:"percussions,omitempty"`
	Control     *controlJSON      `json:"control,omitempty"`
}

func toRawMessage(v interface{}) json.RawMessage {
	bytes, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return json.RawMessage(bytes)
}

func (s *Synth) instrumentsJSON() []json.RawMessage {
	items := make([]json.RawMessage, NumInstruments)
	for i := range s.instruments {
		items[i] = toRawMessage(s.instruments[i].toJSON())
	}
	return items
}

func (s *Synth) percussionsJSON() []json.RawMessage {
	items := make([]json.RawMessage, NumPercussions)
	for i, p := range s.percussions {
		items[i] = toRawMessage(&percussionJSON{Program: p.Program, Key: p.Key})
	}
	return items
}

// InstrumentBankJSON encodes the instrument bank as a JSON array.
func (s *Synth) InstrumentBankJSON() []byte {
	return toRawMessage(s.instrumentsJSON())
}

// PercussionBankJSON encodes the percussion map as a JSON array.
func (s *Synth) PercussionBankJSON() []byte {
	return toRawMessage(s.percussionsJSON())
}

// ApplyInstrumentsJSON applies a JSON array of instruments with the same
// clamping as SetInstruments. Keys missing from an entry keep their value.
func (s *Synth) ApplyInstrumentsJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("instruments: %w", err)
	}
	return s.applyInstruments(items)
}

// ApplyPercussionsJSON ...
func (s *Synth) ApplyPercussionsJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("percussions: %w", err)
	}
	return s.applyPercussions(items)
}

func (s *Synth) applyInstruments(items []json.RawMessage) error {
	for i := 0; i < len(items) && i < NumInstruments; i++ {
		inst := s.instruments[i]
		if err := inst.applyJSON(items[i]); err != nil {
			return fmt.Errorf("instrument %d: %w", i, err)
		}
		s.instruments[i] = inst
	}
	if len(items) != NumInstruments {
		s.bankSizeWarning("instruments", len(items))
		return fmt.Errorf("%d instruments: %w", len(items), ErrBankSize)
	}
	return nil
}

func (s *Synth) applyPercussions(items []json.RawMessage) error {
	for i := 0; i < len(items) && i < NumPercussions; i++ {
		j := percussionJSON{Program: s.percussions[i].Program, Key: s.percussions[i].Key}
		if err := json.Unmarshal(items[i], &j); err != nil {
			return fmt.Errorf("percussion %d: %w", i, err)
		}
		s.percussions[i] = Percussion{Program: j.Program, Key: j.Key}.Clamped()
	}
	if len(items) != NumPercussions {
		s.bankSizeWarning("percussions", len(items))
		return fmt.Errorf("%d percussions: %w", len(items), ErrBankSize)
	}
	return nil
}

// ApplyPresetJSON applies whichever of instruments, percussions and control
// the preset carries. A bank of the wrong size is reported but the rest of
// the preset is still applied.
func (s *Synth) ApplyPresetJSON(data []byte) error {
	var j presetJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return fmt.Errorf("preset: %w", err)
	}
	var bankErr error
	if j.Instruments != nil {
		if err := s.applyInstruments(j.Instruments); err != nil {
			bankErr = err
		}
	}
	if j.Percussions != nil {
		if err := s.applyPercussions(j.Percussions); err != nil && bankErr == nil {
			bankErr = err
		}
	}
	if j.Control != nil {
		s.SetControlParams(ControlParams{DivisionNum: j.Control.DivisionNum, LogLevel: j.Control.LogLevel})
	}
	return bankErr
}

// PresetJSON encodes the whole state as a preset.
func (s *Synth) PresetJSON() []byte {
	return toRawMessage(&presetJSON{
		Instruments: s.instrumentsJSON(),
		Percussions: s.percussionsJSON(),
		Control:     &controlJSON{DivisionNum: s.control.DivisionNum, LogLevel: s.control.LogLevel},
	})
}
