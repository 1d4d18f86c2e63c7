// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"
	"sync/atomic"
)

// Chain runs components in a fixed, configured order. DSP stages do not
// commute, so the order is preserved exactly as given.
//
// The component list is swapped wholesale through an atomic pointer: the
// control side builds a new slice, the audio callback observes either the
// old or the new composition, never a torn one. Parameter updates route
// to the component's own pending cell, so Chain never holds a lock the
// audio thread could contend on.
type Chain struct {
	comps atomic.Pointer[[]Component]
}

// NewChain builds a chain processing comps in the given order.
func NewChain(comps ...Component) *Chain {
	c := &Chain{}
	c.SetComponents(comps...)
	return c
}

// SetComponents replaces the composition. Control side only; takes effect
// for the next Process call.
func (c *Chain) SetComponents(comps ...Component) {
	snapshot := make([]Component, len(comps))
	copy(snapshot, comps)
	c.comps.Store(&snapshot)
}

// Components returns a copy of the current composition.
func (c *Chain) Components() []Component {
	cur := *c.comps.Load()
	out := make([]Component, len(cur))
	copy(out, cur)
	return out
}

// Component returns the component carrying id.
func (c *Chain) Component(id string) (Component, bool) {
	for _, comp := range *c.comps.Load() {
		if comp.ID() == id {
			return comp, true
		}
	}
	return nil, false
}

// Prepare sizes every component for the block size and rate. Off the
// audio path.
func (c *Chain) Prepare(maxBlock, sampleRate int) {
	for _, comp := range *c.comps.Load() {
		comp.Prepare(maxBlock, sampleRate)
	}
}

// Process runs every component over buf in order. Disabled components
// leave the buffer untouched.
func (c *Chain) Process(buf []float32) {
	for _, comp := range *c.comps.Load() {
		comp.Process(buf)
	}
}

// Reset clears the state of every component. Call from the processing
// context, on discontinuous events only.
func (c *Chain) Reset() {
	for _, comp := range *c.comps.Load() {
		comp.Reset()
	}
}

// Update stages a parameter bundle for the component carrying id. The
// type check happens synchronously; the values apply at the next block
// boundary.
func (c *Chain) Update(id string, p Params) error {
	comp, ok := c.Component(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownComponent, id)
	}
	return comp.Update(p)
}
