package slash

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCommand   = errors.New("slash: invalid command")
	ErrDuplicateCommand = errors.New("slash: duplicate command id")
	ErrUnknownCommand   = errors.New("slash: unknown command")
	ErrCommandFailed    = errors.New("slash: command failed")
)

// Registry is an ordered, immutable command catalog. Registration order is
// the tie-break for every ranking.
type Registry struct {
	cmds []*Command
	byID map[string]int
}

// NewRegistry builds a registry from cmds in the given order.
func NewRegistry(cmds ...Command) (*Registry, error) {
	r := &Registry{
		cmds: make([]*Command, 0, len(cmds)),
		byID: make(map[string]int, len(cmds)),
	}
	for i := range cmds {
		c := cmds[i]
		if strings.TrimSpace(c.ID) == "" || strings.TrimSpace(c.Label) == "" {
			return nil, fmt.Errorf("command #%d: %w: id and label are required", i, ErrInvalidCommand)
		}
		if _, dup := r.byID[c.ID]; dup {
			return nil, fmt.Errorf("command %q: %w", c.ID, ErrDuplicateCommand)
		}
		c.Keywords = append([]string(nil), c.Keywords...)
		r.byID[c.ID] = len(r.cmds)
		r.cmds = append(r.cmds, &c)
	}
	return r, nil
}

func (r *Registry) Len() int { return len(r.cmds) }

// Commands returns the catalog in registration order.
func (r *Registry) Commands() []*Command {
	return append([]*Command(nil), r.cmds...)
}

// Lookup returns the command registered under id.
func (r *Registry) Lookup(id string) (*Command, bool) {
	i, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return r.cmds[i], true
}

// Filter narrows the catalog with SubstringFilter.
func (r *Registry) Filter(query string) []*Command {
	return SubstringFilter(query, r.cmds)
}
