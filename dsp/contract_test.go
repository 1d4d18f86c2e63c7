// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"errors"
	"math"
	"testing"
)

// allComponents returns one fresh instance of every effect, stereo,
// prepared for the standard test block.
func allComponents() []Component {
	comps := []Component{
		NewEqualizer(2),
		NewCompressor(2),
		NewLimiter(2),
		NewCrossfeed(2),
		NewWidth(2),
		NewConvolver(2),
	}
	for _, c := range comps {
		c.Prepare(512, 44100)
	}
	return comps
}

// smoothnessUpdate pairs each component with a representative live
// parameter change for the derivative test.
func smoothnessUpdate(id string) Params {
	switch id {
	case "equalizer":
		return EQParams{Bands: []Band{{Type: Peak, Freq: 1000, Gain: 9, Q: 1.0}}}
	case "compressor":
		return CompressorParams{ThresholdDB: -30, Ratio: 8, AttackMs: 5, ReleaseMs: 80, KneeDB: 3, MakeupDB: 2}
	case "limiter":
		return LimiterParams{CeilingDB: -12, ReleaseMs: 60}
	case "crossfeed":
		return CrossfeedParams{FeedDB: -3, CutoffHz: 1200}
	case "width":
		return WidthParams{Width: 1.8}
	case "convolver":
		return ConvolverParams{Impulse: []float32{0.4, 0.3, 0.2}, WetDry: 0.7}
	default:
		return nil
	}
}

func TestComponents_DisabledBypassBitExact(t *testing.T) {
	t.Parallel()

	// Demanding values: zero, full scale, subnormals, huge.
	pattern := []float32{0, 1, -1, 0.5, -0.5, 1e-39, -1e-45, 3.4e38, 1e-20, -1e-39}

	for _, comp := range allComponents() {
		t.Run(comp.ID(), func(t *testing.T) {
			buf := make([]float32, 512*2)
			for i := range buf {
				buf[i] = pattern[i%len(pattern)]
			}
			want := append([]float32(nil), buf...)

			comp.SetEnabled(false)
			comp.Process(buf)

			for i := range buf {
				if math.Float32bits(buf[i]) != math.Float32bits(want[i]) {
					t.Fatalf("sample %d changed while disabled: got %v (bits %#08x), want %v (bits %#08x)",
						i, buf[i], math.Float32bits(buf[i]), want[i], math.Float32bits(want[i]))
				}
			}
		})
	}
}

func TestComponents_EnabledByDefault(t *testing.T) {
	t.Parallel()

	for _, comp := range allComponents() {
		if !comp.Enabled() {
			t.Errorf("%s starts disabled, want enabled", comp.ID())
		}
	}
}

func TestComponents_UpdateRejectsForeignParams(t *testing.T) {
	t.Parallel()

	type foreign struct{ Params }

	for _, comp := range allComponents() {
		t.Run(comp.ID(), func(t *testing.T) {
			if err := comp.Update(foreign{}); !errors.Is(err, ErrParamType) {
				t.Errorf("Update(foreign) error = %v, want %v", err, ErrParamType)
			}
		})
	}
}

// TestComponents_SmoothUnderParameterChange feeds a steady tone, applies
// a live parameter change mid-stream, and verifies the sample-to-sample
// derivative never exceeds three times what the tone itself can produce
// at the observed amplitude. A snap would blow far past that bound.
func TestComponents_SmoothUnderParameterChange(t *testing.T) {
	t.Parallel()

	const (
		rate   = 44100
		freq   = 440.0
		frames = 512
		blocks = 60
	)

	for _, comp := range allComponents() {
		t.Run(comp.ID(), func(t *testing.T) {
			t.Parallel()

			var left, right []float32
			pos := 0

			for block := range blocks {
				buf := make([]float32, frames*2)
				for f := range frames {
					s := math.Sin(2 * math.Pi * freq * float64(pos) / rate)
					buf[f*2] = float32(0.5 * s)
					buf[f*2+1] = float32(0.4 * s)
					pos++
				}

				if block == 20 {
					if err := comp.Update(smoothnessUpdate(comp.ID())); err != nil {
						t.Fatalf("Update() error = %v", err)
					}
				}

				comp.Process(buf)
				for f := range frames {
					left = append(left, buf[f*2])
					right = append(right, buf[f*2+1])
				}
			}

			for name, ch := range map[string][]float32{"left": left, "right": right} {
				maxAbs, maxDelta := 0.0, 0.0
				for i, s := range ch {
					if a := math.Abs(float64(s)); a > maxAbs {
						maxAbs = a
					}
					if i > 0 {
						if d := math.Abs(float64(s) - float64(ch[i-1])); d > maxDelta {
							maxDelta = d
						}
					}
				}

				bound := 3*maxAbs*2*math.Pi*freq/rate + 1e-4
				if maxDelta > bound {
					t.Errorf("%s channel: max sample delta %.6f exceeds bound %.6f (peak %.4f)",
						name, maxDelta, bound, maxAbs)
				}
			}
		})
	}
}

func TestComponents_ResetSilencesState(t *testing.T) {
	t.Parallel()

	for _, comp := range allComponents() {
		t.Run(comp.ID(), func(t *testing.T) {
			tone := makeStereoTone(440, 44100, 512, 0.5, 0.4)
			comp.Process(tone)

			comp.Reset()

			silence := make([]float32, 512*2)
			comp.Process(silence)

			for i, s := range silence {
				if s != 0 {
					t.Fatalf("sample %d = %v after Reset on silence, want 0", i, s)
				}
			}
		})
	}
}

func TestComponents_ZeroAllocProcess(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping alloc test in short mode")
	}

	for _, comp := range allComponents() {
		t.Run(comp.ID(), func(t *testing.T) {
			buf := makeStereoTone(440, 44100, 512, 0.5, 0.4)

			// Warm up, including one staged update so the apply path is
			// exercised before measuring.
			if err := comp.Update(smoothnessUpdate(comp.ID())); err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			for range 4 {
				comp.Process(buf)
			}

			allocs := testing.AllocsPerRun(50, func() {
				comp.Process(buf)
			})
			if allocs != 0 {
				t.Errorf("Process allocated %.1f times per call, want 0", allocs)
			}
		})
	}
}

func BenchmarkComponents_Process(b *testing.B) {
	for _, comp := range allComponents() {
		b.Run(comp.ID(), func(b *testing.B) {
			buf := makeStereoTone(440, 44100, 512, 0.5, 0.4)
			comp.Process(buf)

			b.ReportAllocs()
			b.ResetTimer()
			for b.Loop() {
				comp.Process(buf)
			}
		})
	}
}
