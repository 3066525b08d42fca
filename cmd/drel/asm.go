package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezrec/drel/cpu"
	drelio "github.com/ezrec/drel/io"
)

// imageName is the default image name for a source file.
func imageName(source string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + ".drel"
}

// saveImage writes a program image to a host path.
func saveImage(path string, prog *cpu.Program) (rom *drelio.Rom, err error) {
	rom = &drelio.Rom{Data: prog.Binary()}
	err = rom.Save(drelio.DirFS(filepath.Dir(path)), filepath.Base(path))
	if err != nil {
		return
	}

	fmt.Printf("[ASM] Binary saved to '%s' (%d bytes).\n", path, len(rom.Data)*drelio.ROM_WORD_SIZE)
	return
}

func newAsmCmd(verbose *bool) *cobra.Command {
	var output string
	var defines []string

	cmd := &cobra.Command{
		Use:   "asm [flags] source.s",
		Short: "Assemble a source file into a program image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			source := args[0]
			if len(output) == 0 {
				output = imageName(source)
			}

			asm := &cpu.Assembler{Verbose: *verbose}
			for _, define := range defines {
				var name, value string
				name, value, err = splitAssign(define)
				if err != nil {
					return
				}
				asm.Predefine(name, value)
			}

			inf, err := os.Open(source)
			if err != nil {
				return
			}
			defer inf.Close()

			prog, err := asm.Parse(inf)
			if err != nil {
				return fmt.Errorf("%v: %w", source, err)
			}

			_, err = saveImage(output, prog)
			return
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Image file to write (default: source with .drel extension)")
	cmd.Flags().StringArrayVarP(&defines, "define", "D", nil, "NAME=VALUE visible to $(...) operand expressions")

	return cmd
}
