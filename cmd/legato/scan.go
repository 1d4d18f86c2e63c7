// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/soulaudio/legato"
	"github.com/soulaudio/legato/loudness"
)

func init() {
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan [files...]",
	Short: "Measure loudness and suggest replay gain",
	Long: `Decode each file and measure its integrated loudness per ITU-R
BS.1770, its sample peak, and the gain adjustment that would bring it to
the -18 LUFS reference level.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("%-44s %13s %12s %10s\n", "file", "loudness", "peak", "gain")

	failed := 0
	for _, path := range args {
		if err := scanFile(path); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "scan %s: %v\n", path, err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func scanFile(path string) error {
	src, _, err := legato.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	meter, err := loudness.NewMeter(src.SampleRate(), src.Channels())
	if err != nil {
		return err
	}

	buf := make([]float32, src.BufSize())
	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			meter.Process(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}

	peakDB := math.Inf(-1)
	if p := meter.SamplePeak(); p > 0 {
		peakDB = 20 * math.Log10(p)
	}
	fmt.Printf("%-44s %8.2f LUFS %7.2f dBFS %+7.2f dB\n",
		filepath.Base(path), meter.Integrated(), peakDB, meter.TrackGain())
	return nil
}
