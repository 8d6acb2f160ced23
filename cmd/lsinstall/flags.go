package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// extensionFlag is the long form of the two-letter -ld switch.
const extensionFlag = "langgraph-platform"

// normalizeArgs rewrites -ld to --langgraph-platform. pflag reads a single
// dash followed by several letters as combined shorthands, so the literal
// switch has to be translated before parsing. Arguments after "--" are left
// alone.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, a := range args {
		if a == "--" {
			return append(out, args[i:]...)
		}
		if a == "-ld" {
			a = "--" + extensionFlag
		}
		out = append(out, a)
	}
	return out
}

// findFlag looks a flag up in the local, persistent, then inherited flag sets.
func findFlag(cmd *cobra.Command, name string) *pflag.Flag {
	for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags(), cmd.InheritedFlags()} {
		if f := fs.Lookup(name); f != nil {
			return f
		}
	}
	return nil
}

// flagChanged reports whether the named flag was set on the command line.
func flagChanged(cmd *cobra.Command, name string) bool {
	f := findFlag(cmd, name)
	return f != nil && f.Changed
}
