package model

import (
	"regexp"
	"sort"
	"strings"
)

// Tags longer than this go onto a comment line of their own.
const maxInlineTagLen = 12

var (
	valueTagRx = regexp.MustCompile(`^[ ]*([^: ]+):(?:[ ]+(.+))?$`)
	flagTagRx  = regexp.MustCompile(`:((?:[^: ]+:)+)`)
)

// Comment is the parsed content of a Ledger comment attached to a posting or
// transaction: free text lines, flag tags (":name:") and value tags
// ("name: value"). A comment carries at most one value per value-tag name.
type Comment struct {
	Lines  []string
	Flags  map[string]bool
	Values map[string]string
}

// NewComment creates an empty Comment.
func NewComment() Comment {
	return Comment{Flags: make(map[string]bool), Values: make(map[string]string)}
}

// ParseComment parses the text of a Ledger comment (joined by newlines) into
// its lines, flag tags, and value tags.
//
// A value tag occupies a whole line ("name: value"); flag tag groups
// (":a:b:") may be mixed into a line with free text.
func ParseComment(text string) Comment {
	c := NewComment()
	if text == "" {
		return c
	}

	for _, line := range strings.Split(text, "\n") {
		if m := valueTagRx.FindStringSubmatch(line); m != nil {
			c.Values[m[1]] = m[2]
			continue
		}

		leadingStart := 0
		for _, group := range flagTagRx.FindAllStringSubmatchIndex(line, -1) {
			allStart, allEnd := group[0], group[1]
			if leadingStart < allStart {
				if text := strings.TrimSpace(line[leadingStart:allStart]); text != "" {
					c.Lines = append(c.Lines, text)
				}
			}
			leadingStart = allEnd

			flags := strings.TrimSuffix(line[group[2]:group[3]], ":")
			for _, flag := range strings.Split(flags, ":") {
				c.Flags[flag] = true
			}
		}
		if leadingStart < len(line) {
			if text := strings.TrimSpace(line[leadingStart:]); text != "" {
				c.Lines = append(c.Lines, text)
			}
		}
	}
	return c
}

// IsEmpty reports whether the comment carries no text or tags.
func (c Comment) IsEmpty() bool {
	return len(c.Lines) == 0 && len(c.Flags) == 0 && len(c.Values) == 0
}

// Format renders the comment back into Ledger comment text. Output is
// deterministic: flag tags sorted (long tags on their own line), then text
// lines, then value tags sorted by name.
func (c Comment) Format() string {
	var out []string

	if len(c.Flags) > 0 {
		var short, long []string
		for flag := range c.Flags {
			if len(flag) <= maxInlineTagLen {
				short = append(short, flag)
			} else {
				long = append(long, flag)
			}
		}
		sort.Strings(short)
		sort.Strings(long)
		if len(short) > 0 {
			out = append(out, ":"+strings.Join(short, ":")+":")
		}
		for _, flag := range long {
			out = append(out, ":"+flag+":")
		}
	}

	for i, line := range c.Lines {
		if i == 0 && len(out) > 0 {
			// Join the first text line onto the tag line to keep output
			// compact.
			out[0] += " " + strings.TrimSpace(line)
		} else {
			out = append(out, strings.TrimSpace(line))
		}
	}

	names := make([]string, 0, len(c.Values))
	for name := range c.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, name+": "+strings.TrimSpace(c.Values[name]))
	}

	return strings.Join(out, "\n")
}

// MergeFrom folds other into c: text lines are appended unless an identical
// line already exists, flag tags are unioned, and other's value tags
// overwrite c's where names collide.
func (c *Comment) MergeFrom(other Comment) {
	for _, line := range other.Lines {
		exists := false
		for _, have := range c.Lines {
			if have == line {
				exists = true
				break
			}
		}
		if !exists {
			c.Lines = append(c.Lines, line)
		}
	}
	for flag := range other.Flags {
		c.Flags[flag] = true
	}
	for name, value := range other.Values {
		c.Values[name] = value
	}
}

// Clone returns a deep copy of the comment.
func (c Comment) Clone() Comment {
	out := Comment{
		Lines:  append([]string(nil), c.Lines...),
		Flags:  make(map[string]bool, len(c.Flags)),
		Values: make(map[string]string, len(c.Values)),
	}
	for flag := range c.Flags {
		out.Flags[flag] = true
	}
	for name, value := range c.Values {
		out.Values[name] = value
	}
	return out
}
