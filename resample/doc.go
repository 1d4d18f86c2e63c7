// SPDX-License-Identifier: EPL-2.0

// Package resample converts audio blocks between sample rates.
//
// The playback pipeline runs at whatever rate the output device was
// opened with, while tracks arrive at whatever rate they were mastered
// at. A Converter bridges the two, streaming: it accepts arbitrary block
// sizes, carries filter history across calls, and accumulates fractional
// positions so chunk boundaries never land in the output.
//
// # Quality Tiers
//
// Four tiers trade CPU for stopband rejection:
//
//   - Fast: Catmull-Rom cubic interpolation, plus a one-pole smoothing
//     filter when downsampling. Cheapest.
//   - Balanced: 16-tap Kaiser-windowed polyphase sinc, 64 phases.
//   - High: 32-tap, 128 phases.
//   - Maximum: 64-tap, 256 phases.
//
// The sinc tiers lower their cutoff when downsampling so aliasing bands
// are rejected before decimation. Each phase row is normalized to unity
// DC gain, and fractional positions between rows interpolate linearly.
//
// # Bypass
//
// When source and output rates match, Process returns its input slice
// unmodified. No filtering, no copy, no latency: conversion at 1:1 is
// bit-transparent.
//
// # Statefulness
//
// The converter's history is part of the signal path. Feeding it blocks
// from two unrelated positions (after a seek, or a new track) smears the
// discontinuity across the filter window; call Reset first. At end of
// stream, Flush drains the frames still held by the window.
//
// # Usage
//
//	conv, err := resample.New(44100, 48000, 2, resample.High)
//	if err != nil {
//		return err
//	}
//	for {
//		block, err := readBlock()
//		if err == io.EOF {
//			play(conv.Flush())
//			break
//		}
//		out, err := conv.Process(block)
//		if err != nil {
//			return err
//		}
//		play(out)
//	}
package resample
