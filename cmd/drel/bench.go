package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ezrec/drel/bench"
	"github.com/ezrec/drel/cpu"
	"github.com/ezrec/drel/emulator"
)

func newBenchCmd(verbose *bool) *cobra.Command {
	var iterations uint64
	var seed uint64
	var output string

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare DREL decode cycles with a simulated legacy decoder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}

			bn := bench.NewBench(iterations, seed)

			asm := &cpu.Assembler{Verbose: *verbose}
			prog := bn.Program(asm)

			if len(output) != 0 {
				_, err = saveImage(output, prog)
				if err != nil {
					return
				}
			}

			emu := emulator.NewEmulator()
			defer emu.Close()
			emu.Verbose = *verbose
			emu.Program = prog

			fmt.Printf("\n=== ARCHITECTURE BENCHMARK (Simulated Decoder Overhead) ===\n")
			fmt.Printf("Executing loop logic...\n\n")

			res, err := bn.Run(emu)
			if err != nil {
				return
			}

			fmt.Println()
			return res.Report(os.Stdout)
		},
	}

	cmd.Flags().Uint64VarP(&iterations, "iterations", "n", bench.ITERATIONS, "Loop iterations")
	cmd.Flags().Uint64VarP(&seed, "seed", "s", 0, "Legacy decoder penalty seed (default: time based)")
	cmd.Flags().StringVarP(&output, "output", "o", "bench.drel", "Image file to write, empty to skip")

	return cmd
}
