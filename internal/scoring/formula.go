package scoring

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	maxFormulaLength = 4096
	maxNestingDepth  = 128
)

var (
	// ErrMalformedFormula matches every *SyntaxError
	ErrMalformedFormula = errors.New("malformed formula")
	// ErrNonFiniteScore means evaluation produced Inf or NaN (e.g. division by zero)
	ErrNonFiniteScore = errors.New("formula produced a non-finite score")

	identifierPattern = regexp.MustCompile(`\bQ\d+\b`)
	allowedPattern    = regexp.MustCompile(`^[\w+\-*/().\s]*$`)
)

// SyntaxError reports where an arithmetic expression stopped making sense
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("malformed formula at offset %d: %s", e.Pos, e.Msg)
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrMalformedFormula
}

// Finite reports whether v can be shown as a score
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ExtractIdentifiers returns the question identifiers referenced by formula,
// deduplicated, in order of first appearance.
func ExtractIdentifiers(formula string) []string {
	matches := identifierPattern.FindAllString(formula, -1)
	seen := make(map[string]bool, len(matches))
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			ids = append(ids, m)
		}
	}
	return ids
}

// Substitute replaces every identifier occurrence with its parenthesized weight.
// Identifiers without a weight become (0.01).
func Substitute(formula string, weights map[string]float64) string {
	return identifierPattern.ReplaceAllStringFunc(formula, func(id string) string {
		w, ok := weights[id]
		if !ok {
			w = FallbackWeight
		}
		return "(" + strconv.FormatFloat(w, 'f', -1, 64) + ")"
	})
}

// Evaluate substitutes weights into formula and evaluates it. Division by zero
// is not an error here: the IEEE-754 result (Inf/NaN) is returned as-is.
func Evaluate(formula string, weights map[string]float64) (float64, error) {
	return EvalExpression(Substitute(formula, weights))
}

// EvalExpression evaluates an arithmetic expression made only of numeric
// literals, + - * / ( ) and whitespace, with the usual precedence and
// left-to-right associativity.
func EvalExpression(expr string) (float64, error) {
	if len(expr) > maxFormulaLength {
		return 0, &SyntaxError{Pos: maxFormulaLength, Msg: "expression too long"}
	}
	tokens, err := tokenize(expr)
	if err != nil {
		return 0, err
	}
	p := &parser{tokens: tokens}
	if p.peek().kind == tokEOF {
		return 0, &SyntaxError{Pos: 0, Msg: "empty expression"}
	}
	v, err := p.expr(0)
	if err != nil {
		return 0, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return 0, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
	}
	return v, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind  tokenKind
	text  string
	value float64
	pos   int
}

func tokenize(s string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '+' || c == '-' || c == '*' || c == '/':
			tokens = append(tokens, token{kind: tokOp, text: string(c), pos: i})
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		case isDigit(c) || c == '.':
			start := i
			i = scanNumber(s, i)
			text := s[start:i]
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, &SyntaxError{Pos: start, Msg: fmt.Sprintf("invalid number %q", text)}
			}
			tokens = append(tokens, token{kind: tokNumber, text: text, value: v, pos: start})
		default:
			return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	return append(tokens, token{kind: tokEOF, pos: len(s)}), nil
}

// scanNumber consumes digits, one optional fraction and one optional exponent
func scanNumber(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

// expr := term (('+' | '-') term)*
func (p *parser) expr(depth int) (float64, error) {
	left, err := p.term(depth)
	if err != nil {
		return 0, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.term(depth)
		if err != nil {
			return 0, err
		}
		if t.text == "+" {
			left += right
		} else {
			left -= right
		}
	}
}

// term := unary (('*' | '/') unary)*
func (p *parser) term(depth int) (float64, error) {
	left, err := p.unary(depth)
	if err != nil {
		return 0, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "*" && t.text != "/") {
			return left, nil
		}
		p.next()
		right, err := p.unary(depth)
		if err != nil {
			return 0, err
		}
		if t.text == "*" {
			left *= right
		} else {
			left /= right
		}
	}
}

// unary := ('+' | '-') unary | primary
func (p *parser) unary(depth int) (float64, error) {
	if depth > maxNestingDepth {
		return 0, &SyntaxError{Pos: p.peek().pos, Msg: "expression nested too deeply"}
	}
	t := p.peek()
	if t.kind == tokOp && (t.text == "+" || t.text == "-") {
		p.next()
		v, err := p.unary(depth + 1)
		if err != nil {
			return 0, err
		}
		if t.text == "-" {
			return -v, nil
		}
		return v, nil
	}
	return p.primary(depth)
}

// primary := number | '(' expr ')'
func (p *parser) primary(depth int) (float64, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return t.value, nil
	case tokLParen:
		v, err := p.expr(depth + 1)
		if err != nil {
			return 0, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return 0, &SyntaxError{Pos: closing.pos, Msg: "missing closing parenthesis"}
		}
		return v, nil
	case tokEOF:
		return 0, &SyntaxError{Pos: t.pos, Msg: "unexpected end of expression"}
	}
	return 0, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
}

// FormulaErrorKind classifies authoring-time formula rejections
type FormulaErrorKind string

const (
	FormulaEmpty             FormulaErrorKind = "empty"
	FormulaInvalidCharacters FormulaErrorKind = "invalid_characters"
	FormulaUnknownIdentifier FormulaErrorKind = "unknown_identifier"
	FormulaMalformed         FormulaErrorKind = "malformed"
)

// FormulaError is a user-facing rejection of a formula being authored
type FormulaError struct {
	Kind       FormulaErrorKind
	Identifier string
	Err        error
}

func (e *FormulaError) Error() string {
	switch e.Kind {
	case FormulaEmpty:
		return "formula is empty"
	case FormulaInvalidCharacters:
		return "formula contains invalid characters"
	case FormulaUnknownIdentifier:
		return fmt.Sprintf("formula references identifier %q which is not a question", e.Identifier)
	}
	return "formula is malformed or cannot be evaluated"
}

func (e *FormulaError) Unwrap() error { return e.Err }

// ValidateFormulaSyntax checks a formula at authoring time: allowed characters,
// known identifiers, and a smoke evaluation with every identifier set to 1.
func ValidateFormulaSyntax(formula string, known []string) error {
	if strings.TrimSpace(formula) == "" {
		return &FormulaError{Kind: FormulaEmpty}
	}
	if !allowedPattern.MatchString(formula) {
		return &FormulaError{Kind: FormulaInvalidCharacters}
	}

	knownSet := make(map[string]bool, len(known))
	for _, id := range known {
		knownSet[id] = true
	}
	for _, id := range ExtractIdentifiers(formula) {
		if !knownSet[id] {
			return &FormulaError{Kind: FormulaUnknownIdentifier, Identifier: id}
		}
	}

	smoke := identifierPattern.ReplaceAllString(formula, "1")
	if _, err := EvalExpression(smoke); err != nil {
		return &FormulaError{Kind: FormulaMalformed, Err: err}
	}
	return nil
}
