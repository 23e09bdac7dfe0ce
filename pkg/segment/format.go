package segment

import "strings"

// TokenKind distinguishes renderable tokens.
type TokenKind int

const (
	TokenComponent TokenKind = iota // a dim = value pair
	TokenAnd                        // the conjunction between pairs
)

// Token is one renderable piece of a formatted key. Renderers decide how
// emphasis looks; the core only says which components are emphasized.
type Token struct {
	Kind       TokenKind
	Dimension  string
	Value      string
	Emphasized bool
}

// String renders the token as plain text.
func (t Token) String() string {
	if t.Kind == TokenAnd {
		return "AND"
	}
	return t.Dimension + " = " + t.Value
}

// Format renders key as "dim = value AND dim = value" tokens in canonical order.
// Components already present in relativeTo (typically the parent key) are not
// emphasized. With an empty relativeTo every component is emphasized.
func Format(key, relativeTo Key) []Token {
	canon := key.Canonical()
	tokens := make([]Token, 0, len(canon)*2)
	for i, c := range canon {
		if i > 0 {
			tokens = append(tokens, Token{Kind: TokenAnd})
		}
		tokens = append(tokens, Token{
			Kind:       TokenComponent,
			Dimension:  c.Dimension,
			Value:      c.Value,
			Emphasized: !relativeTo.contains(c),
		})
	}
	return tokens
}

// Label joins formatted tokens into a single plain-text line.
func Label(key, relativeTo Key) string {
	tokens := Format(key, relativeTo)
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

func (k Key) contains(c Component) bool {
	for _, own := range k {
		if own == c {
			return true
		}
	}
	return false
}
