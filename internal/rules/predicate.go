package rules

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Predicate is a pure test against the posting under inspection.
type Predicate interface {
	Match(ctx *Context) bool
}

// True always matches.
type True struct{}

// AllOf matches when every child matches; empty matches.
type AllOf []Predicate

// AnyOf matches when at least one child matches; empty does not match.
type AnyOf []Predicate

// Not inverts its child.
type Not struct{ Pred Predicate }

// Account matches the posting's account name.
type Account struct{ StrMatch StringMatch }

// Description matches the parent transaction's description.
type Description struct{ StrMatch StringMatch }

// HasFlagTag matches when the posting carries the named flag tag.
type HasFlagTag string

// FlagTag matches when any posting flag tag matches.
type FlagTag struct{ StrMatch StringMatch }

// HasValueTag matches when the named value tag is present.
type HasValueTag string

// ValueTag matches when the named value tag is present and its value
// matches.
type ValueTag struct {
	Name     string
	StrMatch StringMatch
}

func (True) Match(*Context) bool { return true }

func (p AllOf) Match(ctx *Context) bool {
	for _, sub := range p {
		if !sub.Match(ctx) {
			return false
		}
	}
	return true
}

func (p AnyOf) Match(ctx *Context) bool {
	for _, sub := range p {
		if sub.Match(ctx) {
			return true
		}
	}
	return false
}

func (p Not) Match(ctx *Context) bool { return !p.Pred.Match(ctx) }

func (p Account) Match(ctx *Context) bool { return p.StrMatch.Matches(ctx.Post.Account) }

func (p Description) Match(ctx *Context) bool { return p.StrMatch.Matches(ctx.Trn.Description) }

func (p HasFlagTag) Match(ctx *Context) bool { return ctx.Post.Comment.Flags[string(p)] }

func (p FlagTag) Match(ctx *Context) bool {
	for flag := range ctx.Post.Comment.Flags {
		if p.StrMatch.Matches(flag) {
			return true
		}
	}
	return false
}

func (p HasValueTag) Match(ctx *Context) bool {
	_, ok := ctx.Post.Comment.Values[string(p)]
	return ok
}

func (p ValueTag) Match(ctx *Context) bool {
	value, ok := ctx.Post.Comment.Values[p.Name]
	return ok && p.StrMatch.Matches(value)
}

// StringMatch is the string-matching sublanguage used by predicates.
type StringMatch interface {
	Matches(s string) bool
}

// Eq matches by exact equality.
type Eq string

// Contains matches substrings.
type Contains string

// RegexMatch matches an unanchored regular expression.
type RegexMatch struct{ Rx *regexp.Regexp }

// AsLower lowercases the candidate before delegating.
type AsLower struct{ Match StringMatch }

func (m Eq) Matches(s string) bool         { return string(m) == s }
func (m Contains) Matches(s string) bool   { return strings.Contains(s, string(m)) }
func (m RegexMatch) Matches(s string) bool { return m.Rx.MatchString(s) }
func (m AsLower) Matches(s string) bool    { return m.Match.Matches(strings.ToLower(s)) }

func decodePredicate(node *yaml.Node) (Predicate, error) {
	if node.Kind == yaml.ScalarNode {
		if node.Value == "true" {
			return True{}, nil
		}
		return nil, fmt.Errorf("line %d: unknown predicate %q", node.Line, node.Value)
	}

	key, value, err := singleKey(node)
	if err != nil {
		return nil, err
	}

	switch key {
	case "true":
		return True{}, nil
	case "all":
		preds, err := decodePredicateList(value)
		return AllOf(preds), err
	case "any":
		preds, err := decodePredicateList(value)
		return AnyOf(preds), err
	case "not":
		pred, err := decodePredicate(value)
		if err != nil {
			return nil, err
		}
		return Not{Pred: pred}, nil
	case "account":
		match, err := decodeStringMatch(value)
		if err != nil {
			return nil, err
		}
		return Account{StrMatch: match}, nil
	case "description":
		match, err := decodeStringMatch(value)
		if err != nil {
			return nil, err
		}
		return Description{StrMatch: match}, nil
	case "posting-has-flag-tag":
		return HasFlagTag(value.Value), nil
	case "posting-flag-tag":
		match, err := decodeStringMatch(value)
		if err != nil {
			return nil, err
		}
		return FlagTag{StrMatch: match}, nil
	case "posting-has-value-tag":
		return HasValueTag(value.Value), nil
	case "posting-value-tag":
		var aux struct {
			Name  string    `yaml:"name"`
			Match yaml.Node `yaml:"match"`
		}
		if err := value.Decode(&aux); err != nil {
			return nil, err
		}
		if aux.Name == "" || aux.Match.Kind == 0 {
			return nil, fmt.Errorf("line %d: posting-value-tag needs name and match", value.Line)
		}
		match, err := decodeStringMatch(&aux.Match)
		if err != nil {
			return nil, err
		}
		return ValueTag{Name: aux.Name, StrMatch: match}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown predicate %q", node.Line, key)
	}
}

func decodePredicateList(node *yaml.Node) ([]Predicate, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a list of predicates", node.Line)
	}
	preds := make([]Predicate, 0, len(node.Content))
	for _, sub := range node.Content {
		pred, err := decodePredicate(sub)
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}
	return preds, nil
}

func decodeStringMatch(node *yaml.Node) (StringMatch, error) {
	if node.Kind == yaml.ScalarNode {
		// Bare string is shorthand for eq.
		return Eq(node.Value), nil
	}

	key, value, err := singleKey(node)
	if err != nil {
		return nil, err
	}
	switch key {
	case "eq":
		return Eq(value.Value), nil
	case "contains":
		return Contains(value.Value), nil
	case "regex":
		rx, err := regexp.Compile(value.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad regex: %w", value.Line, err)
		}
		return RegexMatch{Rx: rx}, nil
	case "as-lower":
		match, err := decodeStringMatch(value)
		if err != nil {
			return nil, err
		}
		return AsLower{Match: match}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown string match %q", node.Line, key)
	}
}
