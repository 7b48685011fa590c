package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/njchilds90/equationshift"
	"github.com/njchilds90/equationshift/token"
)

const playHelp = `commands:
  show                     print the equation and its token ids
  move ID left|right [I]   drag a token to a side, optionally to position I
  divide ID                drop a token on the division zone
  preview ID left|right    show a move without committing it
  step STEP                apply STEP to both sides, e.g. "*2" or "^2"
  activate ID              invert a sqrt or power token
  history                  committed conversions as JSON
  results                  current and correct results
  quit`

// play reads one command per line from in until quit or EOF. Move errors are
// reported and the session continues.
func play(in io.Reader, out io.Writer, e *equationshift.Equation) error {
	show(out, e)
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := dispatch(out, e, fields); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func dispatch(out io.Writer, e *equationshift.Equation, fields []string) error {
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "help":
		fmt.Fprintln(out, playHelp)
	case "show":
		show(out, e)
	case "move", "preview":
		if len(args) < 2 {
			return fmt.Errorf("usage: %s ID left|right [INDEX]", cmd)
		}
		var target equationshift.Container
		if err := target.UnmarshalText([]byte(args[1])); err != nil {
			return err
		}
		index := -1
		if len(args) > 2 {
			n, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[2])
			}
			index = n
		}
		return drag(out, e, args[0], target, index, cmd == "move")
	case "divide":
		if len(args) != 1 {
			return fmt.Errorf("usage: divide ID")
		}
		return drag(out, e, args[0], equationshift.FirstDivisionZone, -1, true)
	case "step":
		if len(args) == 0 {
			return fmt.Errorf("usage: step STEP")
		}
		res, err := e.ApplyStep(strings.Join(args, ""))
		if err != nil {
			return err
		}
		report(out, e, res)
	case "activate":
		if len(args) != 1 {
			return fmt.Errorf("usage: activate ID")
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid token id %q", args[0])
		}
		res, err := e.Activate(id, true)
		if err != nil {
			return err
		}
		report(out, e, res)
	case "history":
		b, err := json.MarshalIndent(e.History(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(b))
	case "results":
		current, solved := e.CurrentResult()
		correct, err := e.CorrectResults()
		if err != nil {
			return err
		}
		if solved {
			fmt.Fprintf(out, "current: %s\n", current)
		} else {
			fmt.Fprintln(out, "current: not solved")
		}
		fmt.Fprintf(out, "correct: %s\n", strings.Join(correct, ", "))
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return nil
}

func drag(out io.Writer, e *equationshift.Equation, arg string, target equationshift.Container, index int, commit bool) error {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid token id %q", arg)
	}
	source := equationshift.Right
	if _, ok := e.Left().Token(id); ok {
		source = equationshift.Left
	}
	snap, err := e.Grab(id)
	if err != nil {
		return err
	}
	m := equationshift.Move{Token: id, Source: source, Target: target, Index: index}
	var res equationshift.Result
	if commit {
		res, err = e.Drop(snap, m)
	} else {
		res, err = e.Preview(snap, m)
	}
	if err != nil {
		return err
	}
	report(out, e, res)
	return nil
}

func report(out io.Writer, e *equationshift.Equation, res equationshift.Result) {
	switch {
	case res.Kind == equationshift.NoOp:
		fmt.Fprintln(out, "nothing to do")
		return
	case !res.Committed:
		fmt.Fprintf(out, "would give %s = %s (%s)\n", res.Left, res.Right, res.Step)
		return
	}
	fmt.Fprintf(out, "%s: %s = %s\n", res.Step, res.Left, res.Right)
	show(out, e)
	if result, ok := e.CurrentResult(); ok {
		fmt.Fprintf(out, "solved: %s = %s\n", e.Target(), result)
	}
}

func show(out io.Writer, e *equationshift.Equation) {
	fmt.Fprintln(out, e.String())
	fmt.Fprintf(out, "  left:  %s\n", tokenList(e.Left()))
	fmt.Fprintf(out, "  right: %s\n", tokenList(e.Right()))
}

func tokenList(seq *token.Sequence) string {
	flat := seq.Flat()
	parts := make([]string, len(flat))
	for i, t := range flat {
		parts[i] = fmt.Sprintf("%d:%s", t.ID, t.Text)
	}
	return strings.Join(parts, " ")
}
