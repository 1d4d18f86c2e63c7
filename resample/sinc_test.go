// SPDX-License-Identifier: EPL-2.0

package resample

import (
	"math"
	"testing"
)

func TestSincTable_RowsNormalized(t *testing.T) {
	t.Parallel()

	for _, q := range []Quality{Balanced, High, Maximum} {
		t.Run(q.String(), func(t *testing.T) {
			t.Parallel()

			for _, step := range []float64{0.5, 1.0, 2.0} {
				table := newSincTable(q, step)

				for p := 0; p <= table.phases; p++ {
					sum := 0.0
					for _, v := range table.rows[p*table.taps : (p+1)*table.taps] {
						sum += float64(v)
					}
					if math.Abs(sum-1.0) > 1e-5 {
						t.Errorf("step %.1f phase %d sums to %.8f, want 1", step, p, sum)
					}
				}
			}
		})
	}
}

func TestSincTable_Interpolate(t *testing.T) {
	t.Parallel()

	table := newSincTable(Balanced, 1.0)
	coef := make([]float32, table.taps)

	// frac 0 must reproduce row 0 exactly.
	table.interpolate(coef, 0)
	for j := range coef {
		if coef[j] != table.rows[j] {
			t.Fatalf("tap %d at frac 0 = %v, want row 0 value %v", j, coef[j], table.rows[j])
		}
	}

	// Halfway between two phase rows blends them evenly.
	frac := 0.5 / float64(table.phases)
	table.interpolate(coef, frac)
	for j := range coef {
		want := 0.5 * (table.rows[j] + table.rows[table.taps+j])
		if math.Abs(float64(coef[j]-want)) > 1e-7 {
			t.Errorf("tap %d at frac %.6f = %v, want %v", j, frac, coef[j], want)
		}
	}
}

func TestSincTable_DownsampleLowersCutoff(t *testing.T) {
	t.Parallel()

	// Halving the rate should roughly halve the center tap, since the
	// passband carries half the bandwidth.
	full := newSincTable(High, 1.0)
	halved := newSincTable(High, 2.0)

	center := full.taps/2 - 1
	ratio := float64(halved.rows[center]) / float64(full.rows[center])
	if ratio < 0.4 || ratio > 0.6 {
		t.Errorf("center tap ratio = %.3f, want about 0.5", ratio)
	}
}

func TestSinc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		x         float64
		want      float64
		tolerance float64
	}{
		{
			name:      "zero",
			x:         0,
			want:      1,
			tolerance: 0,
		},
		{
			name:      "half",
			x:         0.5,
			want:      2 / math.Pi,
			tolerance: 1e-12,
		},
		{
			name:      "first null",
			x:         1,
			want:      0,
			tolerance: 1e-15,
		},
		{
			name:      "negative mirrors positive",
			x:         -0.5,
			want:      2 / math.Pi,
			tolerance: 1e-12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := sinc(tt.x); math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("sinc(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

func TestBesselI0(t *testing.T) {
	t.Parallel()

	tests := []struct {
		x    float64
		want float64
	}{
		{0, 1.0},
		{1, 1.2660658777520084},
		{2, 2.2795853023360673},
		{5, 27.239871823604442},
	}

	for _, tt := range tests {
		if got := besselI0(tt.x); math.Abs(got-tt.want) > 1e-9*tt.want {
			t.Errorf("besselI0(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestKaiser(t *testing.T) {
	t.Parallel()

	const beta = 8.6
	i0 := besselI0(beta)

	if got := kaiser(0, beta, i0); math.Abs(got-1) > 1e-12 {
		t.Errorf("kaiser(0) = %v, want 1", got)
	}
	if got := kaiser(1.5, beta, i0); got != 0 {
		t.Errorf("kaiser(1.5) = %v, want 0 outside the window", got)
	}

	// Strictly decreasing away from the center.
	prev := kaiser(0, beta, i0)
	for _, x := range []float64{0.25, 0.5, 0.75, 1.0} {
		cur := kaiser(x, beta, i0)
		if cur >= prev {
			t.Errorf("kaiser(%v) = %v, not below kaiser at previous position %v", x, cur, prev)
		}
		prev = cur
	}
}
