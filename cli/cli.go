// Package cli provides terminal I/O and command dispatch for driving a
// TactiCore encounter turn by turn.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nathoo/tacticore/sim"
	"github.com/nathoo/tacticore/types"
)

// CLI handles terminal interaction with the operator.
type CLI struct {
	Runner    *sim.Runner
	In        io.Reader
	Out       io.Writer
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)
}

// New creates a CLI wired to the given runner.
func New(r *sim.Runner) *CLI {
	return &CLI{
		Runner: r,
		In:     os.Stdin,
		Out:    os.Stdout,
	}
}

// Run starts the command loop: prompt → input → dispatch → output. An
// empty line steps one turn.
func (c *CLI) Run() {
	c.printLine(fmt.Sprintf("Round %d. Press enter to step, 'help' for commands.", c.Runner.Round()))

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput && input != "" {
			c.printLine(input)
		}

		switch input {
		case "", "step", "s":
			c.cmdStep()

		case "round", "r":
			c.cmdRound()

		case "run":
			c.cmdRun()

		case "status":
			c.cmdStatus()

		case "trace", "t":
			c.Trace = !c.Trace
			if c.Trace {
				c.printSystem("Trace output enabled.")
			} else {
				c.printSystem("Trace output disabled.")
			}

		case "help", "h":
			c.cmdHelp()

		case "quit", "q", "exit":
			c.printSystem("Goodbye.")
			return

		default:
			c.printSystem(fmt.Sprintf("Unknown command: %s. Type 'help' for available commands.", input))
		}

		if c.Runner.Over() {
			c.printOutcome()
			return
		}
	}
}

func (c *CLI) cmdStep() {
	res, err := c.Runner.Step()
	if err != nil {
		c.printSystem(fmt.Sprintf("Turn failed: %v", err))
		return
	}
	c.printResult(res)
}

func (c *CLI) cmdRound() {
	results, err := c.Runner.RunRound()
	for _, res := range results {
		c.printResult(res)
	}
	if err != nil {
		c.printSystem(fmt.Sprintf("Round failed: %v", err))
	}
}

func (c *CLI) cmdRun() {
	_, results, err := c.Runner.Run()
	for _, res := range results {
		c.printResult(res)
	}
	if err != nil {
		c.printSystem(fmt.Sprintf("Run failed: %v", err))
	}
}

func (c *CLI) cmdStatus() {
	c.printSystem(fmt.Sprintf("Round: %d", c.Runner.Round()))
	for _, cr := range c.Runner.Enc.Creatures() {
		pos, _ := c.Runner.Enc.Position(cr.ID)
		state := fmt.Sprintf("%d/%d HP", cr.HP, cr.MaxHP)
		if cr.HP <= 0 {
			state = "down"
		}
		c.printSystem(fmt.Sprintf("  %-16s %-10s (%d,%d)  %s", cr.Name, cr.Team, pos.X, pos.Y, state))
	}
}

func (c *CLI) cmdHelp() {
	help := []string{
		"Commands:",
		"  step (s, enter)  — Run the next creature's turn",
		"  round (r)        — Finish the current round",
		"  run              — Play the encounter to its end",
		"  status           — Show every combatant's state",
		"  trace (t)        — Toggle decision trace output",
		"  help (h)         — Show this help",
		"  quit (q)         — Exit",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) printResult(res sim.TurnResult) {
	if res.RoundEnd {
		c.printSystem(fmt.Sprintf("Round %d begins.", c.Runner.Round()))
		return
	}
	for _, line := range res.Narration {
		c.printLine(line)
	}
	if c.Trace && res.Decision != nil {
		c.printTrace(res.Decision)
	}
}

func (c *CLI) printTrace(d *types.TacticalDecision) {
	r := d.Reasoning
	c.printSystem(fmt.Sprintf("[trace] %s: %s via %s", d.ActorID, d.Action.Type,
		strings.Join(r.TreePath, " > ")))
	for _, sc := range r.TopCandidates {
		target := ""
		if sc.TargetID != "" {
			target = " @ " + sc.TargetID
		}
		c.printSystem(fmt.Sprintf("[trace]   %.2f %s%s", sc.Total, candidateName(sc.Candidate), target))
	}
	if r.Fallback != "" {
		c.printSystem(fmt.Sprintf("[trace] fallback: %s", r.Fallback))
	}
	if r.BudgetExceeded {
		c.printSystem("[trace] decision budget exceeded")
	}
	for _, n := range r.Notes {
		c.printSystem(fmt.Sprintf("[trace] note: %s", n))
	}
}

func (c *CLI) printOutcome() {
	if winner, ok := c.Runner.Enc.Winner(); ok {
		c.printSystem(fmt.Sprintf("Encounter over: %s wins in round %d.", winner, c.Runner.Round()))
	} else {
		c.printSystem("Encounter over.")
	}
}

func candidateName(cand types.ActionCandidate) string {
	switch {
	case cand.Attack != nil:
		return fmt.Sprintf("%s (%s)", cand.Type, cand.Attack.Name)
	case cand.Spell != nil:
		return fmt.Sprintf("%s (%s)", cand.Type, cand.Spell.Name)
	case cand.AbilityID != "":
		return fmt.Sprintf("%s (%s)", cand.Type, cand.AbilityID)
	default:
		return string(cand.Type)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
