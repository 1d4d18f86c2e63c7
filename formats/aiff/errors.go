// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	// ErrNotAiffFile reports an input that is not a readable AIFF
	// container.
	ErrNotAiffFile = errors.New("not an AIFF file")
	// ErrUnsupportedBitDepth reports a sample size outside 8, 16, 24
	// or 32 bits.
	ErrUnsupportedBitDepth = errors.New("unsupported AIFF bit depth")
	// ErrUnsupportedAiffLayout reports a valid container the decoder
	// cannot interpret.
	ErrUnsupportedAiffLayout = errors.New("unsupported AIFF layout")
)
