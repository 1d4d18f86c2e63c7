// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"math"
	"testing"
)

// settleAndMeasure processes one second of mono tone through comp and
// returns the peak of the final fifth, past attack and ramp transients.
func settleAndMeasure(t *testing.T, comp Component, amp float64) float64 {
	t.Helper()

	const (
		rate   = 44100
		frames = 44100
	)

	buf := makeTone(440, rate, frames, amp)
	comp.Process(buf)

	peak := 0.0
	for _, s := range buf[frames*4/5:] {
		if v := math.Abs(float64(s)); v > peak {
			peak = v
		}
	}
	return peak
}

func TestCompressor_StaticCurve(t *testing.T) {
	t.Parallel()

	comp := NewCompressor(1)
	comp.Prepare(44100, 44100)
	err := comp.Update(CompressorParams{
		ThresholdDB: -18,
		Ratio:       4,
		AttackMs:    1,
		ReleaseMs:   50,
		KneeDB:      0,
		MakeupDB:    0,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	// -6 dB input, 12 dB over threshold, 4:1 ratio: expect about
	// -6 - 12*(3/4) = -15 dB out.
	peak := settleAndMeasure(t, comp, 0.5)
	peakDB := 20 * math.Log10(peak)

	if peakDB < -16 || peakDB > -14 {
		t.Errorf("output peak = %.2f dB, want -15 dB within 1 dB", peakDB)
	}
}

func TestCompressor_BelowThresholdBitExact(t *testing.T) {
	t.Parallel()

	comp := NewCompressor(1)
	comp.Prepare(4096, 44100)
	err := comp.Update(CompressorParams{
		ThresholdDB: -18,
		Ratio:       4,
		AttackMs:    1,
		ReleaseMs:   50,
		KneeDB:      0,
		MakeupDB:    0,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	// Drain the parameter ramp before the comparison run.
	comp.Process(make([]float32, 4096))

	// -20 dB stays under the -18 dB threshold: unity gain, and unity
	// multiplication preserves bit patterns.
	buf := makeTone(440, 44100, 4096, 0.1)
	want := append([]float32(nil), buf...)

	comp.Process(buf)

	for i := range buf {
		if math.Float32bits(buf[i]) != math.Float32bits(want[i]) {
			t.Fatalf("sample %d changed below threshold: got %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestCompressor_MakeupGain(t *testing.T) {
	t.Parallel()

	comp := NewCompressor(1)
	comp.Prepare(44100, 44100)
	err := comp.Update(CompressorParams{
		ThresholdDB: -18,
		Ratio:       4,
		AttackMs:    1,
		ReleaseMs:   50,
		KneeDB:      0,
		MakeupDB:    6,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	peak := settleAndMeasure(t, comp, 0.1)
	want := 0.1 * math.Pow(10, 6.0/20)

	if math.Abs(peak-want) > 0.01*want {
		t.Errorf("peak with +6 dB makeup = %.4f, want %.4f", peak, want)
	}
}

func TestLimiter_CeilingHolds(t *testing.T) {
	t.Parallel()

	lim := NewLimiter(1)
	lim.Prepare(44100, 44100)
	if err := lim.Update(LimiterParams{CeilingDB: -6, ReleaseMs: 50}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	peak := settleAndMeasure(t, lim, 0.9)
	ceiling := math.Pow(10, -6.0/20)

	if peak > ceiling*1.02 {
		t.Errorf("peak %.4f exceeds -6 dB ceiling %.4f", peak, ceiling)
	}
	if peak < ceiling*0.85 {
		t.Errorf("peak %.4f sits far below the ceiling %.4f, over-attenuated", peak, ceiling)
	}
}

func TestLimiter_TransparentBelowCeiling(t *testing.T) {
	t.Parallel()

	lim := NewLimiter(1)
	lim.Prepare(4096, 44100)

	// Default -1 dB ceiling, -10 dB signal: unity gain path.
	buf := makeTone(440, 44100, 4096, 0.316)
	want := append([]float32(nil), buf...)

	lim.Process(buf)

	for i := range buf {
		if math.Float32bits(buf[i]) != math.Float32bits(want[i]) {
			t.Fatalf("sample %d changed below ceiling: got %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestLimiter_RecoversAfterTransient(t *testing.T) {
	t.Parallel()

	lim := NewLimiter(1)
	lim.Prepare(44100, 44100)
	if err := lim.Update(LimiterParams{CeilingDB: -6, ReleaseMs: 20}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	lim.Process(make([]float32, 4096))

	// A single full-scale spike, then a quiet tone. The gain must
	// return to unity once the envelope releases.
	buf := makeTone(440, 44100, 44100, 0.1)
	buf[0] = 1.0
	lim.Process(buf)

	peak := 0.0
	for _, s := range buf[44100*4/5:] {
		if v := math.Abs(float64(s)); v > peak {
			peak = v
		}
	}
	if math.Abs(peak-0.1) > 0.005 {
		t.Errorf("tail peak = %.4f, want 0.1 after release", peak)
	}
}
