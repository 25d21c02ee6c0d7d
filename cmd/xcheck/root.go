package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mit-pdos/go-fsck/check"
	"github.com/mit-pdos/go-fsck/common"
)

var errUsage = errors.New("usage: xcheck <file_system_image>")

func newRootCmd(stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xcheck <file_system_image>",
		Short: "Check the consistency of an xv6 file system image",
		Long: `xcheck reads an xv6 file system image and reports the first
inconsistency it finds. The image is never modified. There are no flags;
every argument is taken as an image path.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errUsage
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return check.CheckFile(args[0])
		},
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
	}
	cmd.SetOut(stderr)
	cmd.SetErr(stderr)
	return cmd
}

// run checks the image named by args and returns the exit status. At most
// one line is written to stderr.
func run(args []string, stderr io.Writer) int {
	if args == nil {
		args = []string{}
	}
	cmd := newRootCmd(stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		if c := common.Category(err); c != nil {
			err = c
		}
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
