package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezrec/drel/cpu"
	"github.com/ezrec/drel/emulator"
)

var (
	ErrAssign   = errors.New("expected NAME=VALUE")
	ErrRegister = errors.New("register must be R1 through R31")
)

// splitAssign splits a NAME=VALUE flag argument.
func splitAssign(arg string) (name, value string, err error) {
	name, value, ok := strings.Cut(arg, "=")
	if !ok || len(name) == 0 || len(value) == 0 {
		err = fmt.Errorf("%q: %w", arg, ErrAssign)
	}

	return
}

// presetRegister parses a Rn=VALUE flag argument.
func presetRegister(arg string) (reg int, value uint64, err error) {
	name, str, err := splitAssign(arg)
	if err != nil {
		return
	}

	reg, err = strconv.Atoi(strings.TrimLeft(name, "Rr"))
	if err != nil || reg < 1 || reg >= cpu.REGISTER_COUNT {
		err = fmt.Errorf("%q: %w", arg, ErrRegister)
		return
	}

	v64, err := strconv.ParseInt(str, 0, 64)
	if err != nil {
		return
	}

	value = uint64(v64)
	return
}

// report prints how the emulator halted, and the register state.
func report(emu *emulator.Emulator, fault error) {
	if fault != nil {
		fmt.Printf("[FAULT] %v\n", fault)
	} else {
		fmt.Printf("[EXEC] EXIT at PC=%d\n", emu.Cpu.Exit)
	}

	fmt.Printf("\n--- DREL STATE ---\n%v------------------\n", emu.Cpu.String())
}

func newRunCmd(verbose *bool) *cobra.Command {
	var presets []string

	cmd := &cobra.Command{
		Use:   "run [flags] image.drel",
		Short: "Run a program image until it halts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			path := args[0]

			emu := emulator.NewEmulator()
			defer emu.Close()
			emu.Verbose = *verbose

			err = emu.Rom.Open(os.DirFS(filepath.Dir(path)), filepath.Base(path))
			if err != nil {
				return
			}

			err = emu.Reset()
			if err != nil {
				return
			}

			fmt.Printf("[CPU] Loaded binary '%s' (%d bytes).\n", path, len(emu.Rom.Data)*cpu.CODE_SIZE)

			for _, preset := range presets {
				var reg int
				var value uint64
				reg, value, err = presetRegister(preset)
				if err != nil {
					return
				}
				emu.Cpu.Register[reg] = value
			}

			// A fault halts the program, not the host.
			fault := emu.Run()
			report(emu, fault)

			return
		},
	}

	cmd.Flags().StringArrayVarP(&presets, "register", "r", nil, "Rn=VALUE register preset applied after loading")

	return cmd
}
