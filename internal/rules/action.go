package rules

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ledgerfold-dev/ledgerfold/internal/model"
)

// Action mutates the posting under inspection. Actions compose
// sequentially; each sees the effects of its predecessors.
type Action interface {
	apply(ev *evaluator, ctx *Context) error
}

// Noop does nothing.
type Noop struct{}

// SetAccount overwrites the posting's account name.
type SetAccount string

// AddFlagTag adds a flag tag; adding an existing tag is a no-op.
type AddFlagTag string

// RemoveFlagTag removes a flag tag; removing a missing tag is a no-op.
type RemoveFlagTag string

// SetValueTag sets a value tag, replacing any existing value.
type SetValueTag struct {
	Name  string
	Value string
}

// RemoveValueTag removes a value tag. Removing a fingerprint is permitted
// but warned, since it discards the posting's merge identity.
type RemoveValueTag string

// All runs its children in order; empty is a no-op.
type All []Action

// JumpChain transfers control to the named chain and resumes here when it
// returns.
type JumpChain string

func (Noop) apply(*evaluator, *Context) error { return nil }

func (a SetAccount) apply(_ *evaluator, ctx *Context) error {
	ctx.Post.Account = string(a)
	return nil
}

func (a AddFlagTag) apply(_ *evaluator, ctx *Context) error {
	ctx.Post.Comment.Flags[string(a)] = true
	return nil
}

func (a RemoveFlagTag) apply(_ *evaluator, ctx *Context) error {
	delete(ctx.Post.Comment.Flags, string(a))
	return nil
}

func (a SetValueTag) apply(_ *evaluator, ctx *Context) error {
	ctx.Post.Comment.Values[a.Name] = a.Value
	return nil
}

func (a RemoveValueTag) apply(ev *evaluator, ctx *Context) error {
	name := string(a)
	if _, ok := ctx.Post.Comment.Values[name]; ok && model.IsFingerprint(name) {
		ev.warnf("rules removed fingerprint tag %q from posting %q", name, ctx.Post.Account)
	}
	delete(ctx.Post.Comment.Values, name)
	return nil
}

func (a All) apply(ev *evaluator, ctx *Context) error {
	for _, sub := range a {
		if err := sub.apply(ev, ctx); err != nil {
			return err
		}
	}
	return nil
}

func (a JumpChain) apply(ev *evaluator, ctx *Context) error {
	return ev.runChain(string(a), ctx)
}

func decodeAction(node *yaml.Node) (Action, error) {
	if node.Kind == yaml.ScalarNode {
		if node.Value == "noop" {
			return Noop{}, nil
		}
		return nil, fmt.Errorf("line %d: unknown action %q", node.Line, node.Value)
	}

	key, value, err := singleKey(node)
	if err != nil {
		return nil, err
	}

	switch key {
	case "noop":
		return Noop{}, nil
	case "set-account":
		return SetAccount(value.Value), nil
	case "add-flag-tag":
		return AddFlagTag(value.Value), nil
	case "remove-flag-tag":
		return RemoveFlagTag(value.Value), nil
	case "set-value-tag":
		var aux struct {
			Name  string `yaml:"name"`
			Value string `yaml:"value"`
		}
		if err := value.Decode(&aux); err != nil {
			return nil, err
		}
		if aux.Name == "" {
			return nil, fmt.Errorf("line %d: set-value-tag needs a name", value.Line)
		}
		return SetValueTag{Name: aux.Name, Value: aux.Value}, nil
	case "remove-value-tag":
		return RemoveValueTag(value.Value), nil
	case "all":
		if value.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("line %d: all expects a list of actions", value.Line)
		}
		var actions All
		for _, sub := range value.Content {
			action, err := decodeAction(sub)
			if err != nil {
				return nil, err
			}
			actions = append(actions, action)
		}
		return actions, nil
	case "jump":
		return JumpChain(value.Value), nil
	default:
		return nil, fmt.Errorf("line %d: unknown action %q", node.Line, key)
	}
}
