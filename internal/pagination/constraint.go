package pagination

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

type constraintKind uint8

const (
	kindDefault constraintKind = iota
	kindAny
	kindChoices
	kindStatic
)

// Constraint reconciles a client-requested limit with the configured
// default.  The zero value is Default().
type Constraint struct {
	kind    constraintKind
	choices []Limit
	static  Limit
}

// Default always uses the configured default.
func Default() Constraint { return Constraint{kind: kindDefault} }

// Any accepts whatever the client asked for.
func Any() Constraint { return Constraint{kind: kindAny} }

// Choices accepts the requested limit only when it is one of set.
func Choices(set ...Limit) Constraint {
	return Constraint{kind: kindChoices, choices: slices.Clone(set)}
}

// Static always uses v.
func Static(v Limit) Constraint { return Constraint{kind: kindStatic, static: v} }

// Limit applies the policy.
func (c Constraint) Limit(requested, def Limit) Limit {
	switch c.kind {
	case kindAny:
		return requested
	case kindChoices:
		if slices.Contains(c.choices, requested) {
			return requested
		}
		return def
	case kindStatic:
		return c.static
	}
	return def
}

func (c Constraint) String() string {
	switch c.kind {
	case kindAny:
		return "any"
	case kindChoices:
		parts := make([]string, len(c.choices))
		for i, v := range c.choices {
			parts[i] = strconv.FormatUint(uint64(v), 10)
		}
		return "choices(" + strings.Join(parts, ",") + ")"
	case kindStatic:
		return "static(" + strconv.FormatUint(uint64(c.static), 10) + ")"
	}
	return "default"
}

// ParseConstraint builds a Constraint from configuration values.  policy is
// one of default, any, choices, static.
func ParseConstraint(policy string, choices []uint64, static uint64) (Constraint, error) {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case "", "default":
		return Default(), nil
	case "any":
		return Any(), nil
	case "choices":
		if len(choices) == 0 {
			return Constraint{}, fmt.Errorf("pagination: policy %q needs at least one choice", policy)
		}
		set := make([]Limit, 0, len(choices))
		for _, v := range choices {
			if v == 0 {
				return Constraint{}, fmt.Errorf("pagination: choice 0 is not a valid limit")
			}
			set = append(set, Limit(v))
		}
		return Choices(set...), nil
	case "static":
		if static == 0 {
			return Constraint{}, fmt.Errorf("pagination: static policy needs a positive limit")
		}
		return Static(Limit(static)), nil
	}
	return Constraint{}, fmt.Errorf("pagination: unknown policy %q", policy)
}
