package collection

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Search term kinds.
const (
	TermText = "text"
	TermTag  = "tag"
	TermDeck = "deck"
	TermNote = "note"
	TermNID  = "nid"
	TermIs   = "is"
)

// Term is one parsed search term.
type Term struct {
	Kind   string
	Value  string
	Negate bool
}

// QueryError reports a search string that cannot be parsed or compiled.
type QueryError struct {
	Query  string
	Reason string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid search %q: %s", e.Query, e.Reason)
}

var filterKinds = map[string]bool{
	TermTag:  true,
	TermDeck: true,
	TermNote: true,
	TermNID:  true,
	TermIs:   true,
}

// ParseQuery splits an Anki-style search string into terms. Terms are
// separated by whitespace and all must match. Double quotes group text,
// a leading '-' negates a term, and "kind:value" selects a filter when kind
// is tag, deck, note, nid or is. Anything else is matched as text.
func ParseQuery(query string) ([]Term, error) {
	var terms []Term
	var tok strings.Builder
	inQuote := false
	started := false
	negate := false

	emit := func() {
		if !started {
			negate = false
			return
		}
		terms = append(terms, classify(tok.String(), negate))
		tok.Reset()
		started = false
		negate = false
	}

	for _, r := range query {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case unicode.IsSpace(r) && !inQuote:
			emit()
		case r == '-' && !inQuote && !started && !negate:
			negate = true
		default:
			tok.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, &QueryError{Query: query, Reason: "unclosed quote"}
	}
	emit()

	for _, t := range terms {
		if t.Value == "" && t.Kind != TermText {
			return nil, &QueryError{Query: query, Reason: fmt.Sprintf("empty %s: term", t.Kind)}
		}
		if t.Kind == TermIs && t.Value != "new" && t.Value != "suspended" {
			return nil, &QueryError{Query: query, Reason: fmt.Sprintf("unsupported is:%s", t.Value)}
		}
	}
	return terms, nil
}

func classify(tok string, negate bool) Term {
	if kind, value, ok := strings.Cut(tok, ":"); ok {
		kind = strings.ToLower(kind)
		if filterKinds[kind] {
			if kind == TermIs {
				value = strings.ToLower(value)
			}
			return Term{Kind: kind, Value: value, Negate: negate}
		}
	}
	return Term{Kind: TermText, Value: tok, Negate: negate}
}

// compile turns terms into a WHERE clause over notes aliased n.
func (c *Collection) compile(terms []Term) (string, []any, error) {
	var clauses []string
	var args []any

	for _, t := range terms {
		clause, clauseArgs, err := c.compileTerm(t)
		if err != nil {
			return "", nil, err
		}
		if clause == "" {
			continue
		}
		if t.Negate {
			clause = "NOT (" + clause + ")"
		}
		clauses = append(clauses, clause)
		args = append(args, clauseArgs...)
	}
	return strings.Join(clauses, " AND "), args, nil
}

func (c *Collection) compileTerm(t Term) (string, []any, error) {
	switch t.Kind {
	case TermText:
		if t.Value == "" {
			return "", nil, nil
		}
		return `n.flds LIKE ? ESCAPE '\'`, []any{"%" + likePattern(t.Value) + "%"}, nil

	case TermTag:
		pat := likePattern(t.Value)
		return `(' ' || n.tags || ' ' LIKE ? ESCAPE '\' OR ' ' || n.tags || ' ' LIKE ? ESCAPE '\')`,
			[]any{"% " + pat + " %", "% " + pat + "::%"}, nil

	case TermDeck:
		ids := c.matchDecks(t.Value)
		if len(ids) == 0 {
			return "0", nil, nil
		}
		in, inArgs := inList(ids)
		return `EXISTS (SELECT 1 FROM cards c WHERE c.nid = n.id AND (c.did IN ` + in + ` OR c.odid IN ` + in + `))`,
			append(inArgs, inArgs...), nil

	case TermNote:
		ids := c.matchNoteTypes(t.Value)
		if len(ids) == 0 {
			return "0", nil, nil
		}
		in, inArgs := inList(ids)
		return `n.mid IN ` + in, inArgs, nil

	case TermNID:
		var ids []int64
		for _, part := range strings.Split(t.Value, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return "", nil, &QueryError{Query: "nid:" + t.Value, Reason: fmt.Sprintf("bad note id %q", part)}
			}
			ids = append(ids, id)
		}
		in, inArgs := inList(ids)
		return `n.id IN ` + in, inArgs, nil

	case TermIs:
		if t.Value == "new" {
			return `EXISTS (SELECT 1 FROM cards c WHERE c.nid = n.id AND c.type = 0)`, nil, nil
		}
		return `EXISTS (SELECT 1 FROM cards c WHERE c.nid = n.id AND c.queue = -1)`, nil, nil
	}
	return "", nil, fmt.Errorf("unhandled search term kind %q", t.Kind)
}

// matchDecks returns the ids of decks whose name matches pattern, together
// with all their subdecks.
func (c *Collection) matchDecks(pattern string) []int64 {
	re := globRegexp(pattern, `(::.*)?`)
	var ids []int64
	for id, name := range c.decks {
		if re.MatchString(name) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (c *Collection) matchNoteTypes(pattern string) []int64 {
	re := globRegexp(pattern, "")
	var ids []int64
	for id, nt := range c.noteTypes {
		if re.MatchString(nt.name) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// globRegexp compiles a case-insensitive whole-string match where '*'
// matches any run of characters.
func globRegexp(pattern, suffix string) *regexp.Regexp {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?is)^` + strings.Join(parts, ".*") + suffix + `$`)
}

// likePattern escapes LIKE metacharacters and turns '*' into '%'.
func likePattern(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '%', '_':
			b.WriteRune('\\')
			b.WriteRune(r)
		case '*':
			b.WriteRune('%')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func inList(ids []int64) (string, []any) {
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		args[i] = id
	}
	return "(" + strings.Join(marks, ", ") + ")", args
}
