// SPDX-License-Identifier: EPL-2.0

package dsp

import "errors"

var (
	// ErrParamType is returned by Update when the bundle does not belong
	// to the component's family.
	ErrParamType = errors.New("parameter bundle type does not match component")

	// ErrUnknownComponent is returned by Chain.Update when no component
	// carries the requested ID.
	ErrUnknownComponent = errors.New("no component with that id in the chain")

	// ErrImpulseTooLong is returned by the convolver when the impulse
	// response exceeds its fixed capacity.
	ErrImpulseTooLong = errors.New("impulse response exceeds convolver capacity")
)
