// SPDX-License-Identifier: EPL-2.0

package dsp

// Component is the uniform contract for an in-place audio transform.
// Implementations live in this package; the headroom manager implements
// it as well so the gain stage can sit in a chain.
type Component interface {
	// ID returns the stable identity used to route parameter updates
	// and to persist per-effect settings.
	ID() string

	// Prepare sizes working buffers and derives rate-dependent
	// coefficients. It must run off the audio path, before the first
	// Process call and again if the output rate changes.
	Prepare(maxBlock, sampleRate int)

	// Process transforms buf (interleaved frames) in place. Called from
	// the audio callback: it must not allocate, block, or touch buf at
	// all while the component is disabled.
	Process(buf []float32)

	// Reset clears internal filter and envelope state. Only for
	// discontinuous events such as seek or source change; a parameter
	// change must never reset state.
	Reset()

	// SetEnabled toggles the component. Safe to call while audio flows.
	SetEnabled(enabled bool)

	// Enabled reports whether Process currently transforms audio.
	Enabled() bool

	// Update stages a typed parameter bundle, applied at the next block
	// boundary with smoothing. A bundle of the wrong family returns
	// ErrParamType.
	Update(p Params) error
}
