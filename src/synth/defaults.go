package synth

// ----- Default Banks ----- //

// familyTimbres holds one timbre per General MIDI family of eight programs.
// The last two families (0x70..0x7f) are percussive and sound effects.
var familyTimbres = [16]Instrument{
	{ // piano
		TotalGain: 0.9, AttackSlopeTime: 2, DecayHalfLifeTime: 400, SustainRate: 0.05, ReleaseSlopeTime: 250,
		BaseVsOthersRatio: 0.6, Side1VsSide2Ratio: 0.5,
		BaseOffsetCent: [3]float32{0, 1200, 1902}, BaseWave: [3]Wave{WaveTriangle, WaveSine, WaveSine},
		NoiseRatio: 0.01, FreqNoiseCentRange: 2,
	},
	{ // chromatic percussion
		TotalGain: 0.8, AttackSlopeTime: 1, DecayHalfLifeTime: 250, SustainRate: 0, ReleaseSlopeTime: 400,
		BaseVsOthersRatio: 0.7, Side1VsSide2Ratio: 0.7,
		BaseOffsetCent: [3]float32{0, 2400, 3100}, BaseWave: [3]Wave{WaveSine, WaveSine, WaveTriangle},
		DelayTime: [3]float32{120, 0, 0}, DelayRatio: [3]float32{0.15, 0, 0},
	},
	{ // organ
		TotalGain: 0.7, AttackSlopeTime: 8, DecayHalfLifeTime: 5000, SustainRate: 1, ReleaseSlopeTime: 60,
		BaseVsOthersRatio: 0.5, Side1VsSide2Ratio: 0.6,
		BaseOffsetCent: [3]float32{0, 1200, -1200}, BaseWave: [3]Wave{WaveSine, WaveSine, WaveSquare},
		AM: Modulation{Depth: 0.1, Freq: 6},
	},
	{ // guitar
		TotalGain: 0.8, AttackSlopeTime: 3, DecayHalfLifeTime: 300, SustainRate: 0.1, ReleaseSlopeTime: 150,
		BaseVsOthersRatio: 0.5, Side1VsSide2Ratio: 0.5,
		BaseOffsetCent: [3]float32{0, 5, -5}, BaseWave: [3]Wave{WaveSaw, WaveTriangle, WaveTriangle},
		NoiseRatio: 0.02, FreqNoiseCentRange: 3, FreqNoiseType: DistTriangular,
	},
	{ // bass
		TotalGain: 1, AttackSlopeTime: 4, DecayHalfLifeTime: 350, SustainRate: 0.3, ReleaseSlopeTime: 80,
		BaseVsOthersRatio: 0.7, Side1VsSide2Ratio: 0.5,
		BaseOffsetCent: [3]float32{0, 1200, 0}, BaseWave: [3]Wave{WaveSaw, WaveSine, WaveSquare},
	},
	{ // strings
		TotalGain: 0.7, AttackSlopeTime: 120, DecayHalfLifeTime: 2000, SustainRate: 0.8, ReleaseSlopeTime: 300,
		BaseVsOthersRatio: 0.4, Side1VsSide2Ratio: 0.5,
		BaseOffsetCent: [3]float32{0, 7, -7}, BaseWave: [3]Wave{WaveSaw, WaveSaw, WaveSaw},
		FreqNoiseCentRange: 4, FreqNoiseType: DistCos4,
		FM: Modulation{Depth: 12, Freq: 5.5},
	},
	{ // ensemble
		TotalGain: 0.6, AttackSlopeTime: 200, DecayHalfLifeTime: 3000, SustainRate: 0.85, ReleaseSlopeTime: 400,
		BaseVsOthersRatio: 0.34, Side1VsSide2Ratio: 0.5,
		BaseOffsetCent: [3]float32{0, 12, -12}, BaseWave: [3]Wave{WaveSaw, WaveTriangle, WaveSaw},
		NoiseRatio: 0.03, NoiseColor: NoisePink, FreqNoiseCentRange: 6,
		DelayTime: [3]float32{80, 190, 0}, DelayRatio: [3]float32{0.15, 0.1, 0},
	},
	{ // brass
		TotalGain: 0.75, AttackSlopeTime: 40, DecayHalfLifeTime: 600, SustainRate: 0.7, ReleaseSlopeTime: 120,
		BaseVsOthersRatio: 0.6, Side1VsSide2Ratio: 0.5,
		BaseOffsetCent: [3]float32{0, 1200, 3}, BaseWave: [3]Wave{WaveSaw, WaveSquare, WaveSaw},
		FM: Modulation{Depth: 8, Freq: 5},
	},
	{ // reed
		TotalGain: 0.7, AttackSlopeTime: 25, DecayHalfLifeTime: 1000, SustainRate: 0.75, ReleaseSlopeTime: 90,
		BaseVsOthersRatio: 0.6, Side1VsSide2Ratio: 0.6,
		BaseOffsetCent: [3]float32{0, 1200, 1902}, BaseWave: [3]Wave{WaveSquare, WaveSaw, WaveSine},
		NoiseRatio: 0.02, NoiseColor: NoisePink,
		FM: Modulation{Depth: 10, Freq: 5, PhaseOffset: 0.5},
	},
	{ // pipe
		TotalGain: 0.7, AttackSlopeTime: 30, DecayHalfLifeTime: 1500, SustainRate: 0.8, ReleaseSlopeTime: 100,
		BaseVsOthersRatio: 0.8, Side1VsSide2Ratio: 0.5,
		BaseOffsetCent: [3]float32{0, 1200, 0}, BaseWave: [3]Wave{WaveSine, WaveTriangle, WaveSine},
		NoiseRatio: 0.06, NoiseColor: NoisePink, FreqNoiseCentRange: 3,
	},
	{ // synth lead
		TotalGain: 0.7, AttackSlopeTime: 5, DecayHalfLifeTime: 800, SustainRate: 0.7, ReleaseSlopeTime: 100,
		BaseVsOthersRatio: 0.5, Side1VsSide2Ratio: 0.5,
		BaseOffsetCent: [3]float32{0, 10, -1195}, BaseWave: [3]Wave{WaveSquare, WaveSaw, WaveSinSaw2},
		FM: Modulation{Depth: 20, Freq: 2, Sync: true, Wave: WaveTriangle},
		DelayTime: [3]float32{250, 0, 0}, DelayRatio: [3]float32{0.2, 0, 0},
	},
	{ // synth pad
		TotalGain: 0.6, AttackSlopeTime: 400, DecayHalfLifeTime: 3000, SustainRate: 0.9, ReleaseSlopeTime: 800,
		BaseVsOthersRatio: 0.4, Side1VsSide2Ratio: 0.5,
		BaseOffsetCent: [3]float32{0, 8, -8}, BaseWave: [3]Wave{WaveSinSaw2, WaveTriangle, WaveTriangle},
		AM: Modulation{Depth: 0.2, Freq: 0.5, Sync: true},
		DelayTime: [3]float32{150, 300, 450}, DelayRatio: [3]float32{0.2, 0.15, 0.1},
	},
	{ // synth effects
		TotalGain: 0.6, AttackSlopeTime: 150, DecayHalfLifeTime: 1200, SustainRate: 0.5, ReleaseSlopeTime: 600,
		BaseVsOthersRatio: 0.5, Side1VsSide2Ratio: 0.3,
		BaseOffsetCent: [3]float32{0, 700, 1900}, BaseWave: [3]Wave{WaveTriangle, WaveSinSaw2, WaveSine},
		NoiseRatio: 0.1, NoiseColor: NoisePink,
		FM: Modulation{Depth: 50, Freq: 0.25, Wave: WaveSinSaw2},
		DelayTime: [3]float32{333, 0, 0}, DelayRatio: [3]float32{0.3, 0, 0},
	},
	{ // ethnic
		TotalGain: 0.8, AttackSlopeTime: 2, DecayHalfLifeTime: 350, SustainRate: 0.05, ReleaseSlopeTime: 300,
		BaseVsOthersRatio: 0.6, Side1VsSide2Ratio: 0.6,
		BaseOffsetCent: [3]float32{0, 1200, 2786}, BaseWave: [3]Wave{WaveSaw, WaveSine, WaveSine},
		FreqNoiseCentRange: 5, FreqNoiseType: DistTriangular,
	},
	{ // percussive
		TotalGain: 1, AttackSlopeTime: 0.5, DecayHalfLifeTime: 60, SustainRate: 0, ReleaseSlopeTime: 80,
		BaseVsOthersRatio: 0.8, Side1VsSide2Ratio: 0.5,
		BaseOffsetCent: [3]float32{0, 600, 1500}, BaseWave: [3]Wave{WaveSine, WaveTriangle, WaveSquare},
		NoiseRatio: 0.5, NoiseColor: NoisePink,
		FM: Modulation{Depth: -1200, Freq: 4, PhaseOffset: 0.5, Wave: WaveSinSaw2},
	},
	{ // sound effects
		TotalGain: 0.7, AttackSlopeTime: 20, DecayHalfLifeTime: 500, SustainRate: 0.3, ReleaseSlopeTime: 400,
		BaseVsOthersRatio: 0.5, Side1VsSide2Ratio: 0.5,
		BaseOffsetCent: [3]float32{0, 3, -3}, BaseWave: [3]Wave{WaveSaw, WaveSquare, WaveSine},
		NoiseRatio: 0.85, NoiseColor: NoiseWhite, FreqNoiseCentRange: 200,
		AM: Modulation{Depth: 0.6, Freq: 3, Wave: WaveTriangle},
	},
}

// DefaultInstruments returns the built-in bank. Programs 0x80..0xff are
// brighter, detuned variants of 0x00..0x7f with an extra echo.
func DefaultInstruments() [NumInstruments]Instrument {
	var insts [NumInstruments]Instrument
	for p := 0; p < 128; p++ {
		inst := familyTimbres[p/8]
		member := float32(p % 8)
		// spread the eight members of a family a little
		inst.BaseOffsetCent[1] += member
		inst.BaseOffsetCent[2] -= member
		inst.DecayHalfLifeTime *= 1 + member/16
		inst.Side1VsSide2Ratio = clampf(inst.Side1VsSide2Ratio+(member-3.5)/20, 0, 1)
		insts[p] = inst.Clamped()

		v := inst
		v.BaseWave[1] = WaveSaw
		v.BaseOffsetCent[1] += 6
		v.BaseOffsetCent[2] -= 6
		v.TotalGain *= 0.9
		if v.DelayRatio[2] == 0 {
			v.DelayTime[2] = 210
			v.DelayRatio[2] = 0.12
		}
		insts[p+128] = v.Clamped()
	}
	for p, inst := range drumTimbres {
		insts[p] = inst.Clamped()
	}
	return insts
}

// percussion program layout of the default bank
const (
	percKick = 0x70 + iota
	percSnare
	percClosedHat
	percOpenHat
	percTom
	percClap
	percCymbal
	percBlock
)

var drumTimbres = map[int]Instrument{
	percKick: {
		TotalGain: 1, AttackSlopeTime: 0.5, DecayHalfLifeTime: 40, ReleaseSlopeTime: 60,
		BaseVsOthersRatio: 1, BaseWave: [3]Wave{WaveSine, WaveSine, WaveSine},
		NoiseRatio: 0.1, NoiseColor: NoisePink,
		FM: Modulation{Depth: 1200, Freq: 6, PhaseOffset: 1, Wave: WaveSinSaw2},
	},
	percSnare: {
		TotalGain: 0.9, AttackSlopeTime: 0.5, DecayHalfLifeTime: 45, ReleaseSlopeTime: 90,
		BaseVsOthersRatio: 0.7, Side1VsSide2Ratio: 0.5,
		BaseOffsetCent: [3]float32{0, 700, 1500}, BaseWave: [3]Wave{WaveTriangle, WaveSine, WaveSine},
		NoiseRatio: 0.7, NoiseColor: NoiseWhite,
	},
	percClosedHat: {
		TotalGain: 0.6, AttackSlopeTime: 0.2, DecayHalfLifeTime: 15, ReleaseSlopeTime: 30,
		BaseVsOthersRatio: 0.5, Side1VsSide2Ratio: 0.5, BaseWave: [3]Wave{WaveSquare, WaveSquare, WaveSquare},
		BaseOffsetCent: [3]float32{0, 317, 771}, NoiseRatio: 0.95,
	},
	percOpenHat: {
		TotalGain: 0.6, AttackSlopeTime: 0.2, DecayHalfLifeTime: 120, SustainRate: 0.1, ReleaseSlopeTime: 200,
		BaseVsOthersRatio: 0.5, Side1VsSide2Ratio: 0.5, BaseWave: [3]Wave{WaveSquare, WaveSquare, WaveSquare},
		BaseOffsetCent: [3]float32{0, 317, 771}, NoiseRatio: 0.95,
	},
	percTom: {
		TotalGain: 0.9, AttackSlopeTime: 0.5, DecayHalfLifeTime: 90, ReleaseSlopeTime: 120,
		BaseVsOthersRatio: 0.9, Side1VsSide2Ratio: 0.5, BaseWave: [3]Wave{WaveSine, WaveTriangle, WaveSine},
		NoiseRatio: 0.15, NoiseColor: NoisePink,
		FM: Modulation{Depth: 500, Freq: 4, PhaseOffset: 1, Wave: WaveSinSaw2},
	},
	percClap: {
		TotalGain: 0.8, AttackSlopeTime: 1, DecayHalfLifeTime: 60, ReleaseSlopeTime: 100,
		BaseVsOthersRatio: 1, BaseWave: [3]Wave{WaveSine, WaveSine, WaveSine},
		NoiseRatio: 0.9, NoiseColor: NoisePink,
		DelayTime: [3]float32{11, 23, 0}, DelayRatio: [3]float32{0.3, 0.2, 0},
	},
	percCymbal: {
		TotalGain: 0.5, AttackSlopeTime: 0.5, DecayHalfLifeTime: 400, SustainRate: 0.05, ReleaseSlopeTime: 800,
		BaseVsOthersRatio: 0.4, Side1VsSide2Ratio: 0.5, BaseWave: [3]Wave{WaveSquare, WaveSquare, WaveSaw},
		BaseOffsetCent: [3]float32{0, 563, 1129}, NoiseRatio: 0.9,
		FreqNoiseCentRange: 100, FreqNoiseType: DistCos4,
	},
	percBlock: {
		TotalGain: 0.8, AttackSlopeTime: 0.3, DecayHalfLifeTime: 25, ReleaseSlopeTime: 40,
		BaseVsOthersRatio: 0.6, Side1VsSide2Ratio: 0.5,
		BaseOffsetCent: [3]float32{0, 1586, 2700}, BaseWave: [3]Wave{WaveSine, WaveSine, WaveTriangle},
		NoiseRatio: 0.05,
	},
}

// DefaultPercussions maps the General MIDI drum keys onto the percussive
// programs. Entries 0x70..0x7f double as the map for percussive programs.
func DefaultPercussions() [NumPercussions]Percussion {
	var ps [NumPercussions]Percussion
	for k := range ps {
		ps[k] = Percussion{Program: 0x70 + k%16, Key: k}
	}
	set := func(program, key int, keys ...int) {
		for _, k := range keys {
			ps[k] = Percussion{Program: program, Key: key}
		}
	}
	set(percKick, 28, 35, 36)
	set(percSnare, 50, 38, 40)
	set(percClap, 60, 39)
	set(percClosedHat, 96, 42, 44)
	set(percOpenHat, 96, 46)
	set(percCymbal, 100, 49, 51, 52, 55, 57, 59)
	set(percBlock, 79, 56, 75, 76, 77)
	for i, k := range []int{41, 43, 45, 47, 48, 50} {
		ps[k] = Percussion{Program: percTom, Key: 40 + 4*i}
	}
	for p := 0x70; p <= 0x7f; p++ {
		ps[p] = Percussion{Program: p, Key: 60}
	}
	return ps
}
