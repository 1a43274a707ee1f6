// TactiCore is a deterministic tactical decision engine for grid-based
// combat encounters.
// Usage: tacticore [--version] [--plain] [--script <file>] [--trace]
//
//	[--seed <n>] [--difficulty <d>] [--rounds <n>] [--db <file>]
//	<scenario_directory>
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/caarlos0/env/v11"

	"github.com/nathoo/tacticore/cli"
	"github.com/nathoo/tacticore/engine"
	"github.com/nathoo/tacticore/loader"
	"github.com/nathoo/tacticore/sim"
	"github.com/nathoo/tacticore/sink"
	"github.com/nathoo/tacticore/tui"
	"github.com/nathoo/tacticore/types"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// config holds environment defaults; flags override them.
type config struct {
	DBPath     string `env:"TACTICORE_DB"`
	Difficulty string `env:"TACTICORE_DIFFICULTY"`
	Rounds     int    `env:"TACTICORE_ROUNDS"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading environment: %v\n", err)
		os.Exit(1)
	}

	plain := false
	trace := false
	seedSet := false
	var seed int64
	var scenarioDir string
	var scriptFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("tacticore %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--script":
			scriptFile = stringArg(args, &i, "--script")
		case "--db":
			cfg.DBPath = stringArg(args, &i, "--db")
		case "--difficulty":
			cfg.Difficulty = stringArg(args, &i, "--difficulty")
		case "--seed":
			n, err := strconv.ParseInt(stringArg(args, &i, "--seed"), 10, 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "--seed requires an integer\n")
				os.Exit(1)
			}
			seed, seedSet = n, true
		case "--rounds":
			n, err := strconv.Atoi(stringArg(args, &i, "--rounds"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "--rounds requires an integer\n")
				os.Exit(1)
			}
			cfg.Rounds = n
		default:
			if scenarioDir == "" {
				scenarioDir = args[i]
			}
		}
	}

	if scenarioDir == "" {
		fmt.Fprintf(os.Stderr, "Usage: tacticore [--version] [--plain] [--script <file>] [--trace] [--seed <n>] [--difficulty <d>] [--rounds <n>] [--db <file>] <scenario_directory>\n")
		os.Exit(1)
	}

	// Load and compile Lua scenario content.
	sc, err := loader.Load(scenarioDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading scenario: %v\n", err)
		os.Exit(1)
	}
	if seedSet {
		sc.Seed = seed
	}
	if cfg.Difficulty != "" {
		if err := applyDifficulty(sc, cfg.Difficulty); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	var decisionSink engine.DecisionSink
	if cfg.DBPath != "" {
		db, err := sink.OpenSQLite(cfg.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening decision db: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
		decisionSink = db
	}

	enc, trees := sc.Build()
	agent := engine.New(trees, decisionSink)
	runner := sim.NewRunner(enc, agent)
	if cfg.Rounds > 0 {
		runner.MaxRounds = cfg.Rounds
	} else if sc.MaxRounds > 0 {
		runner.MaxRounds = sc.MaxRounds
	}

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		fmt.Printf("%s\n\n", sc.Name)
		c := cli.New(runner)
		c.In = f
		c.EchoInput = true
		c.Trace = trace
		c.Run()
		return
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		fmt.Printf("%s\n\n", sc.Name)
		c := cli.New(runner)
		c.Trace = trace
		c.Run()
		return
	}

	if err := tui.Run(runner); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func stringArg(args []string, i *int, flag string) string {
	if *i+1 >= len(args) {
		fmt.Fprintf(os.Stderr, "%s requires a value\n", flag)
		os.Exit(1)
	}
	*i++
	return args[*i]
}

func applyDifficulty(sc *loader.Scenario, d string) error {
	switch d {
	case "easy":
		sc.Difficulty = types.DifficultyEasy
	case "normal":
		sc.Difficulty = types.DifficultyNormal
	case "hard":
		sc.Difficulty = types.DifficultyHard
	default:
		return fmt.Errorf("unknown difficulty %q", d)
	}
	return nil
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
