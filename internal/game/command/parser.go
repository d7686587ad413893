package command

import (
	"fmt"
	"strings"
)

// ParseResult holds the parsed command word and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
	// RawArgs is the raw text after the command.
	RawArgs string
}

// Parse splits a text line into a command word and arguments.
//
// Postcondition: Returns a ParseResult. If line is empty, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	spaceIdx := strings.IndexByte(line, ' ')
	if spaceIdx < 0 {
		return ParseResult{
			Command: strings.ToLower(line),
		}
	}

	cmd := strings.ToLower(line[:spaceIdx])
	rest := strings.TrimSpace(line[spaceIdx+1:])

	var args []string
	if rest != "" {
		args = strings.Fields(rest)
	}

	return ParseResult{
		Command: cmd,
		Args:    args,
		RawArgs: rest,
	}
}

// Order is a resolved command with its options, ready for Issue.
type Order struct {
	Command *Command
	Options Options
}

// ParseOrder resolves a text line such as "attack goblin" or "defensive"
// into an Order. Target arguments are returned as typed; the caller maps
// names to combatant ids.
//
// Postcondition: Returns ErrUnknownCommand (wrapped) for unknown words and an
// error when a required argument is missing.
func (r *Registry) ParseOrder(line string) (Order, error) {
	pr := Parse(line)
	if pr.Command == "" {
		return Order{}, fmt.Errorf("%w: empty input", ErrUnknownCommand)
	}
	cmd, ok := r.Resolve(pr.Command)
	if !ok {
		return Order{}, fmt.Errorf("%w: %q", ErrUnknownCommand, pr.Command)
	}
	var opts Options
	switch cmd.Arg {
	case ArgTarget:
		if pr.RawArgs == "" {
			return Order{}, fmt.Errorf("%s needs a target", cmd.Name)
		}
		opts.TargetID = pr.RawArgs
	case ArgAbility:
		if pr.RawArgs == "" {
			return Order{}, fmt.Errorf("%s needs an ability", cmd.Name)
		}
		opts.Ability = pr.RawArgs
	}
	return Order{Command: cmd, Options: opts}, nil
}
