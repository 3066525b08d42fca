// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"log"

	"github.com/spf13/cobra"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("drel: ")

	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "drel",
		Short: "DREL fixed width instruction set assembler and emulator",
		Long: `drel assembles DREL source text into raw program images, runs
images on the DREL register machine, and benchmarks fixed width decode
against a simulated variable width legacy decoder.`,
		SilenceUsage: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose mode")

	rootCmd.AddCommand(
		newAsmCmd(&verbose),
		newRunCmd(&verbose),
		newBenchCmd(&verbose),
	)

	err := rootCmd.Execute()
	if err != nil {
		log.Fatalf("%v", err)
	}
}
