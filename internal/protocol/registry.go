package protocol

import (
	"errors"
	"fmt"
)

// ErrUnknownProtocol is returned by Lookup for names that match no
// registered protocol. It signals bad operator input, not a defect.
var ErrUnknownProtocol = errors.New("unknown protocol")

// Definition describes one registered protocol implementation.
type Definition struct {
	// Name is the canonical selection name.
	Name string

	// Aliases are additional accepted selection names.
	Aliases []string

	// Description is a one-line operator-facing summary.
	Description string

	// New constructs an instance for one agent.
	New Factory
}

var definitions = []Definition{
	{
		Name:        "counter",
		Aliases:     []string{"leader-counter"},
		Description: "agent 0 counts single raises from every other agent",
		New: func(id, nAgents int) Protocol {
			return NewLeaderCounter(id, nAgents)
		},
	},
	{
		Name:        "token",
		Aliases:     []string{"token-merge"},
		Description: "staged binary token merging until one agent holds the full mass",
		New: func(id, nAgents int) Protocol {
			return NewTokenMerge(id, nAgents)
		},
	},
}

// Definitions returns the registered protocols in registration order.
func Definitions() []Definition {
	return append([]Definition(nil), definitions...)
}

// Lookup returns the definition registered under name, matching the
// canonical name or any alias. Unknown names return ErrUnknownProtocol.
func Lookup(name string) (Definition, error) {
	for _, d := range definitions {
		if d.Name == name {
			return d, nil
		}
		for _, alias := range d.Aliases {
			if alias == name {
				return d, nil
			}
		}
	}
	return Definition{}, fmt.Errorf("%w: %q", ErrUnknownProtocol, name)
}
