// SPDX-License-Identifier: EPL-2.0

package resample

import "errors"

var (
	// ErrInvalidRate is returned by New when either sample rate is not
	// positive.
	ErrInvalidRate = errors.New("sample rates must be positive")

	// ErrInvalidChannels is returned by New when the channel count is not
	// positive.
	ErrInvalidChannels = errors.New("channel count must be positive")

	// ErrInvalidSrcSize is returned by Process when the input length is
	// not a multiple of the channel count.
	ErrInvalidSrcSize = errors.New("src size must be a multiple of the channel count")

	// ErrUnknownQuality is returned by ParseQuality for an unrecognized
	// tier name.
	ErrUnknownQuality = errors.New("unknown quality name")
)
