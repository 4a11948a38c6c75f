package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// AST types for Participle grammar

// patternExpr is one pattern token: a sequence of operators and text runs,
// e.g. "foo~i~aamd64" -> Text(foo) Operator(~i) Operator(~a) Text(amd64).
type patternExpr struct {
	Terms []*termExpr `parser:"@@*"`
}

type termExpr struct {
	Pos      lexer.Position
	Operator *string `parser:"  @Operator"`
	Text     *string `parser:"| @Text"`
}

// Text runs stop at the next unescaped '~'; "\~" is a literal tilde.
var patternLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Operator", Pattern: `~.?`},
	{Name: "Text", Pattern: `(?:\\.|[^~\\]|\\)+`},
})

var patternParser = participle.MustBuild[patternExpr](
	participle.Lexer(patternLexer),
)

// Pattern errors
var (
	ErrUnknownOperator = errors.New("unknown pattern operator")
	ErrMissingOperator = errors.New("missing pattern operator")
)

// PatternError reports a pattern token that cannot be compiled.
type PatternError struct {
	Token  string
	Offset int
	Err    error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q at offset %d: %v", e.Token, e.Offset, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// parseOperator converts a lexed "~x" operator.
func parseOperator(s string) (Operator, error) {
	if len(s) < 2 {
		return 0, ErrMissingOperator
	}
	switch op := Operator([]rune(s[1:])[0]); op {
	case OpName, OpDesc, OpInstalled, OpArch, OpNonvirtual:
		return op, nil
	default:
		return 0, fmt.Errorf("%w %q", ErrUnknownOperator, string(op))
	}
}

// unescape resolves "\x" to "x".
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// regexpArgument returns the expression of a "/re/" argument. Backslash
// escapes are kept for the regexp engine, except "\~".
func regexpArgument(raw string) (string, bool) {
	if len(raw) < 2 || raw[0] != '/' || raw[len(raw)-1] != '/' {
		return "", false
	}
	return strings.ReplaceAll(raw[1:len(raw)-1], `\~`, "~"), true
}

// textPredicate matches a ~n or ~d argument: a substring, or a regular
// expression when written as "/re/". Description matching ignores case.
func textPredicate(raw string, fold bool) (Predicate, error) {
	if expr, ok := regexpArgument(raw); ok {
		if fold {
			expr = "(?i)" + expr
		}
		return CompileRegexp(expr)
	}
	if fold {
		return ContainsFold(unescape(raw)), nil
	}
	return Contains(unescape(raw)), nil
}

// clause builds the matcher for a single operator and its raw argument.
func clause(op Operator, raw string, opts Options) (Matcher, error) {
	switch op {
	case OpDesc:
		p, err := textPredicate(raw, true)
		if err != nil {
			return nil, err
		}
		return MatchDesc(p), nil
	case OpInstalled:
		return MatchInstalled(), nil
	case OpNonvirtual:
		return MatchNonvirtual(), nil
	case OpArch:
		var archs []string
		for _, arch := range strings.Split(unescape(raw), ",") {
			if arch != "" {
				archs = append(archs, arch)
			}
		}
		if len(archs) == 0 {
			archs = opts.defaultArchitectures()
		}
		return MatchArch(archs...), nil
	default:
		p, err := textPredicate(raw, false)
		if err != nil {
			return nil, err
		}
		return MatchName(p), nil
	}
}

// CompilePattern compiles one pattern token. Its clauses are joined with
// And; a token without any ~a clause is restricted to the default
// architectures, and "~aany" lifts the architecture restriction. A token
// without clauses never matches.
func CompilePattern(token string, opts Options) (Matcher, error) {
	if token == "" {
		return Nothing(), nil
	}

	ast, err := patternParser.ParseString("", token)
	if err != nil {
		return nil, &PatternError{Token: token, Err: err}
	}

	var clauses []Matcher
	hasArch := false
	terms := ast.Terms

	for i := 0; i < len(terms); i++ {
		term := terms[i]
		op := OpName
		raw := ""
		offset := term.Pos.Offset

		if term.Operator != nil {
			op, err = parseOperator(*term.Operator)
			if err != nil {
				return nil, &PatternError{Token: token, Offset: offset, Err: err}
			}
			if op.takesArgument() && i+1 < len(terms) && terms[i+1].Text != nil {
				i++
				raw = *terms[i].Text
			}
		} else {
			raw = *term.Text
		}

		if op == OpArch {
			hasArch = true
			if unescape(raw) == "any" {
				continue
			}
		}
		c, err := clause(op, raw, opts)
		if err != nil {
			return nil, &PatternError{Token: token, Offset: offset, Err: err}
		}
		clauses = append(clauses, c)
	}

	if len(clauses) == 0 {
		return Nothing(), nil
	}
	if !hasArch {
		clauses = append(clauses, MatchArch(opts.defaultArchitectures()...))
	}

	m := clauses[0]
	for _, c := range clauses[1:] {
		m = And(m, c)
	}
	return m, nil
}

// Compile compiles pattern tokens into one query: the tokens are joined
// with Or. No tokens means no query, and a nil Matcher is returned.
func Compile(tokens []string, opts Options) (Matcher, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	matchers := make([]Matcher, len(tokens))
	for i, token := range tokens {
		m, err := CompilePattern(token, opts)
		if err != nil {
			return nil, err
		}
		matchers[i] = m
	}

	q := matchers[len(matchers)-1]
	for i := len(matchers) - 2; i >= 0; i-- {
		q = Or(matchers[i], q)
	}
	return q, nil
}
