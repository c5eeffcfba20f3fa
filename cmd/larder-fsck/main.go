// larder-fsck checks a larderfs image for cross-structure damage and
// exits nonzero if it finds any. It never writes to the image.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/larderfs/larderfs/common"
	"github.com/larderfs/larderfs/disk"
	"github.com/larderfs/larderfs/fsck"
)

func main() {
	var filename string

	flag.StringVar(&filename, "file", "", "the image filename")
	flag.Parse()

	if len(filename) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s -file <filename>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	d, err := disk.NewFileDisk(filename, common.NBlocks)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening image file '%s': %s\n", filename, err)
		os.Exit(1)
	}
	defer d.Close()

	report, err := fsck.Check(d)
	if err != nil {
		fmt.Fprintf(os.Stderr, "I/O error checking '%s': %s\n", filename, err)
		os.Exit(1)
	}
	for _, p := range report.Problems {
		fmt.Println(p)
	}
	if !report.Ok() {
		fmt.Printf("%d problem(s) found\n", len(report.Problems))
		os.Exit(1)
	}
	fmt.Println("clean")
}
