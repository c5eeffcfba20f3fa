// larder-mkfs creates a new larderfs image, or reports on an existing
// one with -query.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/larderfs/larderfs/buf"
	"github.com/larderfs/larderfs/common"
	"github.com/larderfs/larderfs/disk"
	"github.com/larderfs/larderfs/mkfs"
	"github.com/larderfs/larderfs/super"
)

func ferr(f string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, f, a...)
}

func main() {
	var filename string
	var query bool

	flag.StringVar(&filename, "file", "", "the image filename")
	flag.BoolVar(&query, "query", false, "query the image file rather than create")
	flag.Parse()

	if len(filename) == 0 {
		ferr("Usage: %s -file <filename>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	d, err := disk.NewFileDisk(filename, common.NBlocks)
	if err != nil {
		ferr("Error opening image file '%s': %s\n", filename, err)
		os.Exit(1)
	}
	defer d.Close()

	if !query {
		if err := mkfs.Format(d); err != nil {
			ferr("Error formatting '%s': %s\n", filename, err)
			os.Exit(1)
		}
	}

	s, err := super.LoadSuper(buf.MkStore(d))
	if err != nil {
		ferr("Error reading superblock from '%s': %s\n", filename, err)
		os.Exit(1)
	}
	fmt.Printf("Magic: 0x%x\n", common.Magic)
	fmt.Printf("Version: %d\n", common.Version)
	fmt.Printf("Block size: %d\n", common.BlockSize)
	fmt.Printf("Blocks: %d\n", common.NBlocks)
	fmt.Printf("Inode slots: %d\n", common.NInodes)
	fmt.Printf("Free inodes: %d\n", s.NumFreeInodes())
	fmt.Printf("Free data blocks: %d\n", s.NumFreeDataBlocks())
}
