// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"errors"
	"math"
	"testing"
)

func TestChain_OrderPreserved(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		order []Component
		want  float32
	}{
		{
			name:  "add then double",
			order: []Component{newFakeEffect("add", opAddOne), newFakeEffect("double", opDouble)},
			want:  4, // (1+1)*2
		},
		{
			name:  "double then add",
			order: []Component{newFakeEffect("double", opDouble), newFakeEffect("add", opAddOne)},
			want:  3, // 1*2+1
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			chain := NewChain(tt.order...)
			buf := []float32{1, 1}
			chain.Process(buf)

			if buf[0] != tt.want || buf[1] != tt.want {
				t.Errorf("Process() = %v, want all %v", buf, tt.want)
			}
		})
	}
}

func TestChain_DisabledComponentSkipped(t *testing.T) {
	t.Parallel()

	double := newFakeEffect("double", opDouble)
	add := newFakeEffect("add", opAddOne)
	double.SetEnabled(false)

	chain := NewChain(double, add)
	buf := []float32{1}
	chain.Process(buf)

	if buf[0] != 2 {
		t.Errorf("Process() = %v, want 2 with double disabled", buf[0])
	}
}

func TestChain_UpdateRouting(t *testing.T) {
	t.Parallel()

	eq := NewEqualizer(2)
	width := NewWidth(2)
	chain := NewChain(eq, width)
	chain.Prepare(512, 44100)

	if err := chain.Update("width", WidthParams{Width: 0}); err != nil {
		t.Errorf("Update(width) error = %v", err)
	}
	if err := chain.Update("equalizer", WidthParams{}); !errors.Is(err, ErrParamType) {
		t.Errorf("Update(equalizer, WidthParams) error = %v, want %v", err, ErrParamType)
	}
	if err := chain.Update("reverb", WidthParams{}); !errors.Is(err, ErrUnknownComponent) {
		t.Errorf("Update(reverb) error = %v, want %v", err, ErrUnknownComponent)
	}
}

func TestChain_ComponentLookup(t *testing.T) {
	t.Parallel()

	eq := NewEqualizer(2)
	chain := NewChain(eq, NewLimiter(2))

	got, ok := chain.Component("equalizer")
	if !ok || got != Component(eq) {
		t.Errorf("Component(equalizer) = %v, %v; want the equalizer, true", got, ok)
	}
	if _, ok := chain.Component("reverb"); ok {
		t.Error("Component(reverb) reported present")
	}
}

func TestChain_SetComponentsSwapsComposition(t *testing.T) {
	t.Parallel()

	chain := NewChain(newFakeEffect("double", opDouble))

	buf := []float32{1}
	chain.Process(buf)
	if buf[0] != 2 {
		t.Fatalf("initial composition: got %v, want 2", buf[0])
	}

	chain.SetComponents(newFakeEffect("add", opAddOne))
	buf[0] = 1
	chain.Process(buf)
	if buf[0] != 2 {
		t.Errorf("swapped composition: got %v, want 2 (1+1)", buf[0])
	}

	if comps := chain.Components(); len(comps) != 1 || comps[0].ID() != "add" {
		t.Errorf("Components() = %d entries, want the single add effect", len(comps))
	}
}

func TestChain_PrepareAndResetPropagate(t *testing.T) {
	t.Parallel()

	a := newFakeEffect("a", opAddOne)
	b := newFakeEffect("b", opDouble)
	chain := NewChain(a, b)

	chain.Prepare(2048, 48000)
	for _, f := range []*fakeEffect{a, b} {
		if !f.prepared || f.maxBlock != 2048 || f.rate != 48000 {
			t.Errorf("%s: Prepare not propagated (prepared=%v block=%d rate=%d)",
				f.id, f.prepared, f.maxBlock, f.rate)
		}
	}

	chain.Reset()
	chain.Reset()
	for _, f := range []*fakeEffect{a, b} {
		if f.resets != 2 {
			t.Errorf("%s: resets = %d, want 2", f.id, f.resets)
		}
	}
}

func TestChain_EmptyChainIsIdentity(t *testing.T) {
	t.Parallel()

	chain := NewChain()
	buf := []float32{0.25, -0.75}
	want := append([]float32(nil), buf...)

	chain.Process(buf)

	for i := range buf {
		if math.Float32bits(buf[i]) != math.Float32bits(want[i]) {
			t.Errorf("sample %d = %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestChain_ProcessZeroAlloc(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping alloc test in short mode")
	}

	chain := NewChain(allComponents()...)
	buf := makeStereoTone(440, 44100, 512, 0.5, 0.4)
	for range 4 {
		chain.Process(buf)
	}

	allocs := testing.AllocsPerRun(50, func() {
		chain.Process(buf)
	})
	if allocs != 0 {
		t.Errorf("Process allocated %.1f times per call, want 0", allocs)
	}
}

func BenchmarkChain_Process(b *testing.B) {
	chain := NewChain(allComponents()...)
	buf := makeStereoTone(440, 44100, 512, 0.5, 0.4)
	chain.Process(buf)

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		chain.Process(buf)
	}
}
