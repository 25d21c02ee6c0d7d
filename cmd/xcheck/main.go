// Command xcheck validates an xv6 file system image.
//
//	usage: xcheck <file_system_image>
//
// It exits 0 without output if the image is consistent. Otherwise it prints
// one diagnostic line to stderr and exits 1.
package main

import (
	"fmt"
	"os"

	"github.com/mit-pdos/go-fsck/util"
)

func main() {
	l, err := util.NewLogger(util.DefaultLoggerConfig())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	util.SetLogger(l)
	code := run(os.Args[1:], os.Stderr)
	_ = l.Sync()
	os.Exit(code)
}
