// Package ledgerfmt reads and writes Ledger-compatible plain-text journals.
//
// A transaction is a date-led header line followed by indented posting
// lines. Tags ride in comments: ":name:" flags and "name: value" pairs.
// Any journal accepted by Parse is written back by Format without semantic
// change.
package ledgerfmt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerfold-dev/ledgerfold/internal/model"
)

// Layouts with single-digit components accept both padded and unpadded
// dates.
var dateFormats = []string{"2006-1-2", "2006/1/2", "2006.1.2"}

// ParseError is an input-format error with its source location.
type ParseError struct {
	Name string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Name, e.Line, e.Msg)
}

type parser struct {
	name string
	line int

	journal *model.Journal
	current *model.Transaction
	// Pending comment text for the element comment lines attach to: the
	// latest posting, or the transaction header before any posting.
	trnComment  []string
	postComment map[*model.Posting][]string
}

// Parse reads a journal from r. name labels errors (usually the file path).
func Parse(r io.Reader, name string) (*model.Journal, error) {
	p := &parser{
		name:        name,
		journal:     model.NewJournal(),
		postComment: make(map[*model.Posting][]string),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.line++
		if err := p.consume(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	p.flush()
	return p.journal, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Name: p.name, Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) consume(line string) error {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	indented := line[0] == ' ' || line[0] == '\t'
	if !indented {
		if trimmed[0] == ';' || trimmed[0] == '#' {
			// File-level comment.
			return nil
		}
		return p.beginTransaction(trimmed)
	}

	if trimmed[0] == ';' {
		if p.current == nil {
			// Indented comment before any transaction.
			return nil
		}
		p.attachComment(strings.TrimPrefix(trimmed, ";"))
		return nil
	}
	if p.current == nil {
		return p.errorf("posting line outside a transaction")
	}
	return p.addPosting(trimmed)
}

func (p *parser) beginTransaction(header string) error {
	p.flush()

	dateStr, rest := splitToken(header)
	var date time.Time
	var err error
	for _, layout := range dateFormats {
		date, err = time.Parse(layout, dateStr)
		if err == nil {
			break
		}
	}
	if err != nil {
		return p.errorf("bad transaction date %q", dateStr)
	}

	trn := model.NewTransaction(date, "")

	if rest != "" && (rest[0] == '!' || rest[0] == '*') {
		trn.Status = rest[:1]
		rest = strings.TrimSpace(rest[1:])
	}
	if strings.HasPrefix(rest, "(") {
		end := strings.Index(rest, ")")
		if end < 0 {
			return p.errorf("unterminated transaction code")
		}
		trn.Code = rest[1:end]
		rest = strings.TrimSpace(rest[end+1:])
	}
	if i := strings.Index(rest, ";"); i >= 0 {
		p.trnComment = append(p.trnComment, strings.TrimSpace(rest[i+1:]))
		rest = strings.TrimSpace(rest[:i])
	}
	trn.Description = rest

	p.current = trn
	return nil
}

func (p *parser) addPosting(line string) error {
	account, rest := splitAccount(line)
	post := model.NewPosting(account)

	if i := strings.Index(rest, ";"); i >= 0 {
		p.postComment[post] = append(p.postComment[post], strings.TrimSpace(rest[i+1:]))
		rest = strings.TrimSpace(rest[:i])
	}

	if rest != "" {
		amountStr, balanceStr := rest, ""
		if i := strings.Index(rest, "="); i >= 0 {
			amountStr = strings.TrimSpace(rest[:i])
			balanceStr = strings.TrimSpace(rest[i+1:])
		}
		if amountStr != "" {
			amount, err := ParseAmount(amountStr)
			if err != nil {
				return p.errorf("bad amount %q: %v", amountStr, err)
			}
			post.Amount = &amount
		}
		if balanceStr != "" {
			balance, err := ParseAmount(balanceStr)
			if err != nil {
				return p.errorf("bad balance %q: %v", balanceStr, err)
			}
			post.Balance = &balance
		}
	}

	p.current.AddPosting(post)
	return nil
}

func (p *parser) attachComment(text string) {
	text = strings.TrimSpace(text)
	if len(p.current.Postings) == 0 {
		p.trnComment = append(p.trnComment, text)
		return
	}
	post := p.current.Postings[len(p.current.Postings)-1]
	p.postComment[post] = append(p.postComment[post], text)
}

// flush finalizes the transaction being built, parsing accumulated comment
// text into tags.
func (p *parser) flush() {
	if p.current == nil {
		return
	}
	p.current.Comment = model.ParseComment(strings.Join(p.trnComment, "\n"))
	for _, post := range p.current.Postings {
		post.Comment = model.ParseComment(strings.Join(p.postComment[post], "\n"))
	}
	p.journal.AddTransaction(p.current)
	p.current = nil
	p.trnComment = nil
	p.postComment = make(map[*model.Posting][]string)
}

// splitToken splits off the first space-separated token.
func splitToken(s string) (token, rest string) {
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

// splitAccount splits a posting line into the account name and the rest.
// Account names may contain single spaces; two or more spaces or a tab end
// the name.
func splitAccount(line string) (account, rest string) {
	for i := 0; i < len(line); i++ {
		if line[i] == '\t' || (line[i] == ' ' && i+1 < len(line) && line[i+1] == ' ') {
			return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i:])
		}
	}
	return strings.TrimSpace(line), ""
}

// ParseAmount parses an amount such as "GBP 10.00", "$-1.25", or
// "10.00 USD".
func ParseAmount(s string) (model.Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.Amount{}, fmt.Errorf("empty amount")
	}

	neg := false
	body := s
	if body[0] == '-' {
		neg = true
		body = strings.TrimSpace(body[1:])
	}
	if body == "" {
		return model.Amount{}, fmt.Errorf("missing quantity")
	}

	if isQuantityStart(body[0]) {
		// Quantity first: optional commodity on the right.
		numEnd := quantityEnd(body)
		quantity, err := decimal.NewFromString(strings.ReplaceAll(body[:numEnd], ",", ""))
		if err != nil {
			return model.Amount{}, err
		}
		if neg {
			quantity = quantity.Neg()
		}
		commodity := strings.TrimSpace(body[numEnd:])
		side := model.CommodityRight
		if commodity == "" {
			side = model.CommodityLeft
		}
		return model.Amount{
			Quantity:  quantity,
			Commodity: model.Commodity{Name: commodity, Side: side},
		}, nil
	}

	// Commodity first.
	comEnd := 0
	for comEnd < len(body) && body[comEnd] != ' ' && body[comEnd] != '-' && !isQuantityStart(body[comEnd]) {
		comEnd++
	}
	commodity := body[:comEnd]
	numStr := strings.TrimSpace(body[comEnd:])
	if numStr == "" {
		return model.Amount{}, fmt.Errorf("missing quantity after commodity %q", commodity)
	}
	quantity, err := decimal.NewFromString(numStr)
	if err != nil {
		return model.Amount{}, err
	}
	if neg {
		quantity = quantity.Neg()
	}
	return model.Amount{
		Quantity:  quantity,
		Commodity: model.Commodity{Name: commodity, Side: model.CommodityLeft},
	}, nil
}

func isQuantityStart(c byte) bool {
	return c >= '0' && c <= '9' || c == '.'
}

func quantityEnd(s string) int {
	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.' || s[i] == ',') {
		i++
	}
	return i
}
