// Package trace parses instruction scripts and replays them through the
// profiler so sections can be measured without a live runtime.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Op is the kind of a script event.
type Op string

const (
	OpConsume Op = "consume"
	OpStart   Op = "start"
	OpEnd     Op = "end"
	OpLog     Op = "log"
	OpUnits   Op = "units"
)

// Event is one line of an instruction body.
type Event struct {
	Op    Op
	ID    string
	Units uint64
	Heap  uint64
	Text  string
	Line  int
}

// Instruction is a named unit of work and its events.
type Instruction struct {
	Name   string
	Budget uint64 // 0 means use the replay default
	Events []Event
}

// ParseFile parses the script at path.
func ParseFile(path string) ([]Instruction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open script: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads an instruction script:
//
//	instruction <name> [budget=<units>]
//	consume <units>
//	start <id> [heap=<n>]
//	end <id> [heap=<n>]
//	log <message...>
//	units
//
// Blank lines and lines starting with '#' are ignored.
func Parse(r io.Reader) ([]Instruction, error) {
	var (
		instrs  []Instruction
		current *Instruction
		lineNo  int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		directive := fields[0]

		if directive == "instruction" {
			instr, err := parseInstruction(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			instrs = append(instrs, instr)
			current = &instrs[len(instrs)-1]
			continue
		}

		if current == nil {
			return nil, fmt.Errorf("line %d: %q outside of an instruction", lineNo, directive)
		}

		ev, err := parseEvent(directive, fields[1:], line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		ev.Line = lineNo
		current.Events = append(current.Events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read script: %w", err)
	}
	return instrs, nil
}

func parseInstruction(args []string) (Instruction, error) {
	if len(args) == 0 {
		return Instruction{}, fmt.Errorf("instruction needs a name")
	}
	instr := Instruction{Name: args[0]}
	for _, arg := range args[1:] {
		v, ok := strings.CutPrefix(arg, "budget=")
		if !ok {
			return Instruction{}, fmt.Errorf("unknown instruction option %q", arg)
		}
		budget, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Instruction{}, fmt.Errorf("invalid budget %q: %w", v, err)
		}
		instr.Budget = budget
	}
	return instr, nil
}

func parseEvent(directive string, args []string, line string) (Event, error) {
	switch Op(directive) {
	case OpConsume:
		if len(args) != 1 {
			return Event{}, fmt.Errorf("consume takes one argument")
		}
		units, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return Event{}, fmt.Errorf("invalid units %q: %w", args[0], err)
		}
		return Event{Op: OpConsume, Units: units}, nil

	case OpStart, OpEnd:
		if len(args) == 0 || len(args) > 2 {
			return Event{}, fmt.Errorf("%s takes an id and an optional heap=<n>", directive)
		}
		ev := Event{Op: Op(directive), ID: args[0]}
		if len(args) == 2 {
			v, ok := strings.CutPrefix(args[1], "heap=")
			if !ok {
				return Event{}, fmt.Errorf("unknown %s option %q", directive, args[1])
			}
			heap, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return Event{}, fmt.Errorf("invalid heap %q: %w", v, err)
			}
			ev.Heap = heap
		}
		return ev, nil

	case OpLog:
		text := strings.TrimSpace(strings.TrimPrefix(line, directive))
		return Event{Op: OpLog, Text: text}, nil

	case OpUnits:
		if len(args) != 0 {
			return Event{}, fmt.Errorf("units takes no arguments")
		}
		return Event{Op: OpUnits}, nil
	}
	return Event{}, fmt.Errorf("unknown directive %q", directive)
}
