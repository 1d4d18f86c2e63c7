// SPDX-License-Identifier: EPL-2.0

package player

import (
	"io"
	"time"

	"github.com/soulaudio/legato/audio"
	"github.com/soulaudio/legato/resample"
)

// rawChunkFrames is how many source-rate frames each refill pulls from
// the decoder before conversion.
const rawChunkFrames = 1024

// activeSource bundles one open source with its per-source conversion
// state: the channel-layout mixer, the rate converter, and a FIFO of
// converted samples that absorbs the mismatch between converter output
// batches and callback block sizes.
//
// An activeSource is built and primed on the control side, then handed
// to the audio callback through the command ring. After the handoff
// only the callback touches it, until it comes back through the retire
// ring for closing.
type activeSource struct {
	track Track
	src   audio.Source
	conv  *resample.Converter

	raw     []float32 // source-rate read chunk
	pending []float32 // converted samples not yet served
	pendOff int

	eof       bool  // stream exhausted and converter flushed
	failed    error // sticky read failure
	announced bool  // end or failure already posted to the event ring

	served int // output frames served, output-rate position

	srcErr *SourceError // preallocated so the callback can fail without allocating
}

// newActiveSource opens the conversion pipeline for src at the given
// output format and primes it with one chunk, so the mixer scratch and
// the converter history are grown before the callback ever reads.
// Control side only. On error the caller keeps ownership of src.
func newActiveSource(t Track, src audio.Source, outRate, outChannels int, q resample.Quality) (*activeSource, error) {
	mixed := audio.NewChannelMixer(src, outChannels)
	conv, err := resample.New(mixed.SampleRate(), outRate, outChannels, q)
	if err != nil {
		return nil, err
	}

	// One refill appends at most one conversion batch plus, on the EOF
	// chunk, the flush tail. Doubling the bound keeps append from ever
	// reallocating on the callback.
	ratio := float64(outRate) / float64(mixed.SampleRate())
	bound := int(float64(rawChunkFrames+128)*ratio) + 64

	a := &activeSource{
		track:   t,
		src:     mixed,
		conv:    conv,
		raw:     make([]float32, rawChunkFrames*outChannels),
		pending: make([]float32, 0, 2*bound*outChannels),
		srcErr:  &SourceError{Track: t},
	}
	a.refill()
	return a, nil
}

// refill converts one more chunk of source data into the pending FIFO.
// Only called when the FIFO is drained.
func (a *activeSource) refill() {
	if a.eof || a.failed != nil {
		return
	}
	a.pending = a.pending[:0]
	a.pendOff = 0

	n, err := a.src.ReadSamples(a.raw)
	if n > 0 {
		out, cerr := a.conv.Process(a.raw[:n])
		if cerr != nil {
			a.failed = cerr
			return
		}
		a.pending = append(a.pending, out...)
	}
	switch {
	case err == nil:
	case err == io.EOF:
		a.eof = true
		a.pending = append(a.pending, a.conv.Flush()...)
	default:
		a.failed = err
	}
}

// readInto serves converted samples into dst, refilling as needed.
// Returns the count written, io.EOF once the stream is exhausted and
// the FIFO drained, or the sticky failure.
func (a *activeSource) readInto(dst []float32) (int, error) {
	n := 0
	for n < len(dst) {
		if a.pendOff < len(a.pending) {
			c := copy(dst[n:], a.pending[a.pendOff:])
			n += c
			a.pendOff += c
			continue
		}
		if a.failed != nil {
			a.recountServed(n)
			return n, a.failed
		}
		if a.eof {
			a.recountServed(n)
			return n, io.EOF
		}
		a.refill()
		if a.pendOff >= len(a.pending) && !a.eof && a.failed == nil {
			// Upstream produced nothing without ending. Serve short and
			// retry next block rather than spin on the audio thread.
			break
		}
	}
	a.recountServed(n)
	return n, nil
}

func (a *activeSource) recountServed(samples int) {
	a.served += samples / a.src.Channels()
}

// seekTo repositions the underlying source and discards every sample
// still in flight. Callback side, between blocks.
func (a *activeSource) seekTo(pos time.Duration, outRate int) error {
	if err := a.src.Seek(pos); err != nil {
		a.failed = err
		return err
	}
	a.conv.Reset()
	a.pending = a.pending[:0]
	a.pendOff = 0
	a.eof = false
	a.announced = false
	a.served = int(pos.Seconds() * float64(outRate))
	return nil
}

// wrapErr returns the preallocated source error carrying err.
func (a *activeSource) wrapErr(err error) error {
	a.srcErr.Err = err
	return a.srcErr
}

func (a *activeSource) close() error {
	return a.src.Close()
}
