// Command dispatchbench runs one guest program against one dispatch
// engine and reports how the CPU ended up. Flag handling goes through
// github.com/urfave/cli/v2; diagnostics go through
// github.com/sirupsen/logrus, scoped to harness-level events only —
// engine selection, program load, termination — never per-instruction,
// since that would dwarf the guest program's own output.
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"dispatchbench/config"
	"dispatchbench/engine"
	_ "dispatchbench/engine/calljit"
	_ "dispatchbench/engine/inlinejit"
	_ "dispatchbench/engine/predecoded"
	_ "dispatchbench/engine/subroutine"
	_ "dispatchbench/engine/switchengine"
	_ "dispatchbench/engine/tailcall"
	_ "dispatchbench/engine/threaded"
	"dispatchbench/program"
	"dispatchbench/vm"
)

var log = logrus.New()

// defaultProgram is used when --inp-prog is omitted: push two values,
// print their sum, halt.
var defaultProgram = []uint32{
	uint32(vm.Push), 2,
	uint32(vm.Push), 3,
	uint32(vm.Add),
	uint32(vm.Print),
	uint32(vm.Halt),
}

func main() {
	os.Exit(run(os.Args))
}

// Exit statuses: 0 for a Halted or step-limited run, 1 for a guest
// fault, 2 for command-line misuse or startup failure.
const (
	exitCodeHalted = 0
	exitCodeBreak  = 1
	exitCodeUsage  = 2
)

func run(args []string) int {
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	code := exitCodeUsage
	app := &cli.App{
		Name:      "dispatchbench",
		Usage:     "run a guest stack-machine program against one interpreter dispatch engine",
		HideHelp:  true,
		ArgsUsage: " ",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "help", Aliases: []string{"h"}},
			&cli.Uint64Flag{
				Name:  "steplimit",
				Usage: "maximum number of instructions to execute",
				Value: math.MaxInt64,
			},
			&cli.StringFlag{
				Name:  "inp-prog",
				Usage: "path to a raw little-endian program image",
			},
			&cli.StringFlag{
				Name:  "engine",
				Usage: "dispatch engine to run (see list-engines)",
				Value: "switch",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "optional dispatchbench.toml path",
				Value: "dispatchbench.toml",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log engine selection and program load to stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the program (same as invoking with no subcommand)",
				Action: func(c *cli.Context) error {
					result, err := runHarness(c)
					code = result
					return err
				},
			},
			{
				Name:  "list-engines",
				Usage: "print every registered engine name",
				Action: func(c *cli.Context) error {
					for _, name := range engine.Names() {
						fmt.Println(name)
					}
					code = exitCodeHalted
					return nil
				},
			},
		},
		Action: func(c *cli.Context) error {
			// --help counts as a usage query: it exits 2 rather than
			// the 0 a typical CLI would use for it.
			if c.Bool("help") {
				cli.ShowAppHelp(c)
				code = exitCodeUsage
				return nil
			}
			result, err := runHarness(c)
			code = result
			return err
		},
	}

	if err := app.Run(args); err != nil {
		log.Error(err)
		return exitCodeUsage
	}
	return code
}

func runHarness(c *cli.Context) (int, error) {
	if !c.Bool("verbose") {
		log.SetLevel(logrus.WarnLevel)
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return exitCodeUsage, err
	}

	engineName := c.String("engine")
	if !c.IsSet("engine") && cfg.Engine != "" {
		engineName = cfg.Engine
	}
	stepLimit := c.Uint64("steplimit")
	if !c.IsSet("steplimit") && cfg.StepLimit != 0 {
		stepLimit = cfg.StepLimit
	}
	progPath := c.String("inp-prog")
	if progPath == "" {
		progPath = cfg.Program
	}

	make, ok := engine.Registry[engineName]
	if !ok {
		return exitCodeUsage, fmt.Errorf("unknown engine %q (see list-engines)", engineName)
	}
	eng := make()

	var mem *vm.ProgramMemory
	if progPath == "" {
		log.Info("no --inp-prog given, running the built-in default program")
		mem = vm.NewProgramMemory(defaultProgram)
	} else {
		data, err := os.ReadFile(progPath)
		if err != nil {
			return exitCodeUsage, fmt.Errorf("reading %s: %w", progPath, err)
		}
		mem, err = program.Load(data)
		if err != nil {
			return exitCodeUsage, err
		}
		log.WithField("path", progPath).Info("loaded program image")
	}

	log.WithFields(logrus.Fields{
		"engine":    eng.Name(),
		"steplimit": stepLimit,
	}).Info("starting run")

	cpu := vm.New(mem)
	if err := eng.Run(cpu, stepLimit); err != nil {
		return exitCodeUsage, err
	}

	report(cpu)

	log.WithFields(logrus.Fields{
		"steps": cpu.Steps,
		"state": cpu.State.String(),
	}).Info("run finished")

	if cpu.State == vm.StateBreak {
		return exitCodeBreak, nil
	}
	return exitCodeHalted, nil
}

func report(cpu *vm.CPU) {
	fmt.Printf("CPU executed %d steps. End state %q.\n", cpu.Steps, cpu.State.String())
	fmt.Printf("PC = 0x%x, SP = %d\n", cpu.PC, cpu.SP())

	stack := cpu.Stack()
	if len(stack) == 0 {
		fmt.Println("Stack: (empty)")
		return
	}
	// Top of stack first.
	fmt.Print("Stack:")
	for i := len(stack) - 1; i >= 0; i-- {
		fmt.Printf(" 0x%x", stack[i])
	}
	fmt.Println()
}
