package text

// TokenKind is the lexical class of a Token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenNewline
	TokenIdent
	TokenNumber
	TokenLBracket
	TokenRBracket
	TokenLBrace
	TokenRBrace
	TokenComma
	TokenDot
	TokenDotDot
	TokenColon
	TokenPipe
	TokenMinus
	TokenPlus
)

var tokenKindNames = [...]string{
	TokenEOF:      "end of input",
	TokenNewline:  "newline",
	TokenIdent:    "identifier",
	TokenNumber:   "number",
	TokenLBracket: "'['",
	TokenRBracket: "']'",
	TokenLBrace:   "'{'",
	TokenRBrace:   "'}'",
	TokenComma:    "','",
	TokenDot:      "'.'",
	TokenDotDot:   "'..'",
	TokenColon:    "':'",
	TokenPipe:     "'|'",
	TokenMinus:    "'-'",
	TokenPlus:     "'+'",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "unknown"
}

// Token is one lexical token.
type Token struct {
	Kind TokenKind
	Text string
	Pos  Position
}

// Lexer splits assembly source into tokens. Newlines are significant;
// '#' starts a comment that runs to the end of the line.
type Lexer struct {
	source string
	pos    int
	line   int
	column int
}

// NewLexer creates a lexer over source.
func NewLexer(source string) *Lexer {
	return &Lexer{source: source, line: 1, column: 1}
}

// Tokenize returns every token followed by a single EOF token.
func (l *Lexer) Tokenize() ([]Token, error) {
	tokens := make([]Token, 0, len(l.source)/3+1)
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) next() (Token, error) {
	l.skipSpace()
	start := Position{Line: l.line, Column: l.column}
	if l.pos >= len(l.source) {
		return Token{Kind: TokenEOF, Pos: start}, nil
	}

	c := l.source[l.pos]
	single := func(kind TokenKind) (Token, error) {
		l.advance()
		return Token{Kind: kind, Text: string(c), Pos: start}, nil
	}
	switch c {
	case '\n':
		l.pos++
		l.line++
		l.column = 1
		return Token{Kind: TokenNewline, Pos: start}, nil
	case '[':
		return single(TokenLBracket)
	case ']':
		return single(TokenRBracket)
	case '{':
		return single(TokenLBrace)
	case '}':
		return single(TokenRBrace)
	case ',':
		return single(TokenComma)
	case ':':
		return single(TokenColon)
	case '|':
		return single(TokenPipe)
	case '-':
		return single(TokenMinus)
	case '+':
		return single(TokenPlus)
	case '.':
		if l.peek(1) == '.' {
			l.advance()
			l.advance()
			return Token{Kind: TokenDotDot, Text: "..", Pos: start}, nil
		}
		if isDigit(l.peek(1)) {
			return l.number(start), nil
		}
		return single(TokenDot)
	}
	switch {
	case isDigit(c):
		return l.number(start), nil
	case isIdentStart(c):
		begin := l.pos
		for l.pos < len(l.source) && isIdentChar(l.source[l.pos]) {
			l.advance()
		}
		return Token{Kind: TokenIdent, Text: l.source[begin:l.pos], Pos: start}, nil
	}
	return Token{}, newErrorf(start, l.source, "unexpected character %q", c)
}

// number scans a decimal or hexadecimal literal. A literal running straight
// into letters, such as "2D" or "1D_ARRAY", is an identifier instead.
func (l *Lexer) number(start Position) Token {
	begin := l.pos
	if l.source[l.pos] == '0' && (l.peek(1) == 'x' || l.peek(1) == 'X') && isHexDigit(l.peek(2)) {
		l.advance()
		l.advance()
		for l.pos < len(l.source) && isHexDigit(l.source[l.pos]) {
			l.advance()
		}
		return Token{Kind: TokenNumber, Text: l.source[begin:l.pos], Pos: start}
	}
	for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
		l.advance()
	}
	if l.peek(0) == '.' && l.peek(1) != '.' {
		l.advance()
		for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
			l.advance()
		}
	}
	if e := l.peek(0); e == 'e' || e == 'E' {
		sign := l.peek(1)
		if isDigit(sign) || ((sign == '+' || sign == '-') && isDigit(l.peek(2))) {
			l.advance()
			l.advance()
			for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
				l.advance()
			}
		}
	}
	if isIdentStart(l.peek(0)) {
		for l.pos < len(l.source) && isIdentChar(l.source[l.pos]) {
			l.advance()
		}
		return Token{Kind: TokenIdent, Text: l.source[begin:l.pos], Pos: start}
	}
	return Token{Kind: TokenNumber, Text: l.source[begin:l.pos], Pos: start}
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.source) {
		switch c := l.source[l.pos]; {
		case c == ' ' || c == '\t' || c == '\r':
			l.advance()
		case c == '#':
			for l.pos < len(l.source) && l.source[l.pos] != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) advance() {
	l.pos++
	l.column++
}

func (l *Lexer) peek(offset int) byte {
	if l.pos+offset < len(l.source) {
		return l.source[l.pos+offset]
	}
	return 0
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentChar(c byte) bool { return isIdentStart(c) || isDigit(c) }
