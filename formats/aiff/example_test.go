// SPDX-License-Identifier: EPL-2.0

package aiff_test

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/soulaudio/legato/formats/aiff"
)

func Example() {
	f, err := os.Open("take.aiff")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	src, err := (aiff.Decoder{}).Decode(f)
	if err != nil {
		log.Fatal(err)
	}
	defer src.Close()

	fmt.Printf("%d Hz, %d channels, %v long\n",
		src.SampleRate(), src.Channels(), src.Duration())

	buf := make([]float32, 4096)
	for {
		n, err := src.ReadSamples(buf)
		process(buf[:n])
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
	}
}

func process([]float32) {}
