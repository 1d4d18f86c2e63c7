// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	// ErrNotWavFile reports an input without a RIFF/WAVE signature.
	ErrNotWavFile = errors.New("not a WAV file")
	// ErrUnsupportedWavLayout reports a well-formed container the
	// decoder cannot interpret, such as a missing fmt chunk.
	ErrUnsupportedWavLayout = errors.New("unsupported WAV layout")
	// ErrOnlyPCM16bitSupported reports a sample format other than
	// 16-bit integer PCM.
	ErrOnlyPCM16bitSupported = errors.New("only PCM 16-bit supported")
)
