package tokenize

import "github.com/quillkit/quill/internal/buffer"

// DefaultTokenizer returns a dependency-free, language-neutral tokenizer
// used for buffers whose mode has no registered grammar (new scratch
// buffers, directory listings, or files in a language without a compiled
// tree-sitter grammar). It recognizes line comments ("//", "#"), C-style
// block comments, single/double-quoted strings, paired brackets,
// identifiers, numbers, and falls back to one-byte punctuation tokens — mirroring the
// coarse, build-file-oriented scanner the source uses for untyped content
// rather than attempting full language grammars.
func DefaultTokenizer() buffer.Tokenizer {
	return func(it *buffer.Iterator, state uint64) (buffer.Token, uint64, bool) {
		start := it.Position()

		b, ok := it.Get()
		if !ok {
			return buffer.Token{}, state, false
		}

		switch {
		case b == '/' && peek(it, 1) == '/':
			scanLineComment(it)
			return buffer.Token{Start: start, End: it.Position(), Type: buffer.TokenComment}, state, true

		case b == '#':
			scanLineComment(it)
			return buffer.Token{Start: start, End: it.Position(), Type: buffer.TokenComment}, state, true

		case b == '/' && peek(it, 1) == '*':
			scanBlockComment(it)
			return buffer.Token{Start: start, End: it.Position(), Type: buffer.TokenComment}, state, true

		case b == '"' || b == '\'' || b == '`':
			scanQuoted(it, b)
			return buffer.Token{Start: start, End: it.Position(), Type: buffer.TokenString}, state, true

		case isOpenPair(b):
			it.Advance(1)
			return buffer.Token{Start: start, End: it.Position(), Type: buffer.TokenOpenPair}, state, true

		case isClosePair(b):
			it.Advance(1)
			return buffer.Token{Start: start, End: it.Position(), Type: buffer.TokenClosePair}, state, true

		case isDigit(b):
			scanWhile(it, isDigitOrDot)
			return buffer.Token{Start: start, End: it.Position(), Type: buffer.TokenNumber}, state, true

		case isIdentStart(b):
			scanWhile(it, isIdentCont)

			tok := buffer.Token{Start: start, End: it.Position(), Type: buffer.TokenIdentifier}
			if keywords[string(it.ContentsRef().Slice(start, it.Position()))] {
				tok.Type = buffer.TokenKeyword
			}

			return tok, state, true

		case isSpace(b):
			scanWhile(it, isSpace)
			return buffer.Token{Start: start, End: it.Position(), Type: buffer.TokenDefault}, state, true

		default:
			it.Advance(1)
			return buffer.Token{Start: start, End: it.Position(), Type: buffer.TokenPunctuation}, state, true
		}
	}
}

// keywords is a small, language-agnostic set shared across C-family and
// scripting languages, enough to give the fallback tokenizer some keyword
// highlighting without a real grammar.
var keywords = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "return": true,
	"func": true, "function": true, "def": true, "class": true, "struct": true,
	"const": true, "var": true, "let": true, "import": true, "package": true,
	"true": true, "false": true, "nil": true, "null": true, "break": true, "continue": true,
}

func peek(it *buffer.Iterator, ahead uint64) byte {
	save := it.Position()
	it.Advance(ahead)

	b, ok := it.Get()
	it.GoTo(save)

	if !ok {
		return 0
	}

	return b
}

func scanWhile(it *buffer.Iterator, fn func(byte) bool) {
	it.AdvanceTo(func(b byte) bool { return !fn(b) })
}

func scanLineComment(it *buffer.Iterator) {
	it.AdvanceTo(func(b byte) bool { return b == '\n' })
}

func scanBlockComment(it *buffer.Iterator) {
	it.Advance(2)

	for {
		b, ok := it.Get()
		if !ok {
			return
		}

		if b == '*' && peek(it, 1) == '/' {
			it.Advance(2)
			return
		}

		it.Advance(1)
	}
}

func scanQuoted(it *buffer.Iterator, quote byte) {
	it.Advance(1)

	for {
		b, ok := it.Get()
		if !ok {
			return
		}

		if b == '\\' {
			it.Advance(2)
			continue
		}

		it.Advance(1)

		if b == quote {
			return
		}
	}
}

func isDigit(b byte) bool      { return b >= '0' && b <= '9' }
func isDigitOrDot(b byte) bool { return isDigit(b) || b == '.' }
func isSpace(b byte) bool      { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }
func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
func isIdentCont(b byte) bool { return isIdentStart(b) || isDigit(b) }
func isOpenPair(b byte) bool  { return b == '(' || b == '[' || b == '{' }
func isClosePair(b byte) bool { return b == ')' || b == ']' || b == '}' }
