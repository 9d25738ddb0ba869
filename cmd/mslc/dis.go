package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/mslc/bytecode"
	"github.com/gogpu/mslc/metadata"
)

func (a *app) disCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dis FILE.bc",
		Short: "Print a bytecode listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			listing, err := bytecode.Disassemble(code)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), listing)
			return err
		},
	}
}

func (a *app) metaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "meta FILE.md",
		Short: "Print interface metadata as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			m, err := metadata.Decode(data)
			if err != nil {
				return err
			}
			out, err := metadata.DumpYAML(m)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
