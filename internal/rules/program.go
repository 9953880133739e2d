// Package rules interprets rule programs: named chains of
// (predicate, actions, flow-result) rules that classify and annotate
// postings one at a time.
package rules

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ledgerfold-dev/ledgerfold/internal/model"
)

// StartChain is the entry-point chain every program must define.
const StartChain = "start"

// DefaultStepBudget bounds rule evaluations per posting.
const DefaultStepBudget = 10000

// Chain jumps deeper than this abort evaluation.
const maxChainDepth = 64

// FlowResult says what happens after a rule's actions run.
type FlowResult int

const (
	// Continue advances to the next rule in the chain.
	Continue FlowResult = iota
	// Return ends the current chain immediately.
	Return
)

// Rule fires its actions when its predicate matches the posting under
// inspection.
type Rule struct {
	When   Predicate
	Then   []Action
	Result FlowResult
}

// Chain is an ordered list of rules.
type Chain []*Rule

// Context is the posting under inspection inside its parent transaction.
type Context struct {
	Trn  *model.Transaction
	Post *model.Posting
}

// Error is a rule-engine failure, carrying the chain stack at the point of
// failure.
type Error struct {
	Chains []string
	Msg    string
}

func (e *Error) Error() string {
	if len(e.Chains) == 0 {
		return "rule error: " + e.Msg
	}
	return fmt.Sprintf("rule error in chain %s: %s", strings.Join(e.Chains, " > "), e.Msg)
}

// Program is an immutable rule program: a mapping from chain name to chain.
type Program struct {
	chains map[string]Chain

	// StepBudget bounds rule evaluations per posting.
	StepBudget int
	// Warn receives rule warnings; defaults to stderr.
	Warn io.Writer
}

// Load reads and validates a YAML rule program.
func Load(r io.Reader) (*Program, error) {
	var doc struct {
		Chains map[string][]yaml.Node `yaml:"chains"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing rule program: %w", err)
	}

	prog := &Program{
		chains:     make(map[string]Chain, len(doc.Chains)),
		StepBudget: DefaultStepBudget,
		Warn:       os.Stderr,
	}
	for name, nodes := range doc.Chains {
		chain := make(Chain, 0, len(nodes))
		for i := range nodes {
			rule, err := decodeRule(&nodes[i])
			if err != nil {
				return nil, fmt.Errorf("chain %q rule %d: %w", name, i+1, err)
			}
			chain = append(chain, rule)
		}
		prog.chains[name] = chain
	}

	if err := prog.validate(); err != nil {
		return nil, err
	}
	return prog, nil
}

// LoadFile reads a rule program from a file.
func LoadFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rules %s: %w", path, err)
	}
	defer f.Close()
	prog, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

func (p *Program) validate() error {
	if _, ok := p.chains[StartChain]; !ok {
		return &Error{Msg: fmt.Sprintf("chain %q not found", StartChain)}
	}
	for name, chain := range p.chains {
		for _, rule := range chain {
			for _, action := range rule.Then {
				if err := p.validateAction(name, action); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (p *Program) validateAction(chain string, action Action) error {
	switch a := action.(type) {
	case JumpChain:
		if _, ok := p.chains[string(a)]; !ok {
			return &Error{
				Chains: []string{chain},
				Msg:    fmt.Sprintf("jump to undefined chain %q", string(a)),
			}
		}
	case All:
		for _, sub := range a {
			if err := p.validateAction(chain, sub); err != nil {
				return err
			}
		}
	}
	return nil
}

// ApplyJournal runs the program over every posting of every transaction.
func (p *Program) ApplyJournal(journal *model.Journal) error {
	for _, trn := range journal.Transactions {
		if err := p.ApplyTransaction(trn); err != nil {
			return err
		}
	}
	return nil
}

// ApplyTransaction runs the program over each posting of trn in order.
func (p *Program) ApplyTransaction(trn *model.Transaction) error {
	for _, post := range trn.Postings {
		ev := &evaluator{prog: p}
		if err := ev.runChain(StartChain, &Context{Trn: trn, Post: post}); err != nil {
			return err
		}
	}
	return nil
}

// evaluator holds per-posting evaluation state: the chain stack and the
// step counter. Nothing survives between postings.
type evaluator struct {
	prog  *Program
	steps int
	stack []string
}

func (ev *evaluator) runChain(name string, ctx *Context) error {
	chain, ok := ev.prog.chains[name]
	if !ok {
		return &Error{Chains: ev.stackCopy(), Msg: fmt.Sprintf("chain %q not found", name)}
	}
	if len(ev.stack) >= maxChainDepth {
		return &Error{Chains: ev.stackCopy(), Msg: fmt.Sprintf("chain depth exceeds %d", maxChainDepth)}
	}
	ev.stack = append(ev.stack, name)
	defer func() { ev.stack = ev.stack[:len(ev.stack)-1] }()

	for _, rule := range chain {
		ev.steps++
		if ev.steps > ev.budget() {
			return &Error{Chains: ev.stackCopy(), Msg: fmt.Sprintf("step budget of %d exceeded", ev.budget())}
		}
		if !rule.When.Match(ctx) {
			continue
		}
		for _, action := range rule.Then {
			if err := action.apply(ev, ctx); err != nil {
				return err
			}
		}
		if rule.Result == Return {
			break
		}
	}
	return nil
}

func (ev *evaluator) budget() int {
	if ev.prog.StepBudget > 0 {
		return ev.prog.StepBudget
	}
	return DefaultStepBudget
}

func (ev *evaluator) stackCopy() []string {
	return append([]string(nil), ev.stack...)
}

func (ev *evaluator) warnf(format string, args ...any) {
	if ev.prog.Warn != nil {
		fmt.Fprintf(ev.prog.Warn, "warning: "+format+"\n", args...)
	}
}

func decodeRule(node *yaml.Node) (*Rule, error) {
	var aux struct {
		When   yaml.Node   `yaml:"when"`
		Then   []yaml.Node `yaml:"then"`
		Result string      `yaml:"result"`
	}
	if err := node.Decode(&aux); err != nil {
		return nil, err
	}

	rule := &Rule{When: True{}}
	if aux.When.Kind != 0 {
		pred, err := decodePredicate(&aux.When)
		if err != nil {
			return nil, err
		}
		rule.When = pred
	}
	for i := range aux.Then {
		action, err := decodeAction(&aux.Then[i])
		if err != nil {
			return nil, err
		}
		rule.Then = append(rule.Then, action)
	}
	switch aux.Result {
	case "", "continue":
		rule.Result = Continue
	case "return":
		rule.Result = Return
	default:
		return nil, fmt.Errorf("line %d: bad result %q (want continue or return)", node.Line, aux.Result)
	}
	return rule, nil
}

// singleKey unpacks a mapping node that must have exactly one entry.
func singleKey(node *yaml.Node) (key string, value *yaml.Node, err error) {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return "", nil, fmt.Errorf("line %d: expected a mapping with a single key", node.Line)
	}
	return node.Content[0].Value, node.Content[1], nil
}
