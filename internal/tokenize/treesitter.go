package tokenize

import (
	"context"
	"fmt"
	"sort"
	"sync"

	forest "github.com/alexaandru/go-sitter-forest"
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	_ "github.com/alexaandru/go-sitter-forest/c"
	_ "github.com/alexaandru/go-sitter-forest/cpp"
	_ "github.com/alexaandru/go-sitter-forest/go"
	_ "github.com/alexaandru/go-sitter-forest/javascript"
	_ "github.com/alexaandru/go-sitter-forest/markdown"
	_ "github.com/alexaandru/go-sitter-forest/python"

	"github.com/quillkit/quill/internal/buffer"
)

// leafSpan is one named leaf node of a parsed tree, flattened and sorted by
// start offset.
type leafSpan struct {
	start, end uint64
	tokenType  buffer.TokenType
}

// TreeSitterTokenizer adapts a tree-sitter grammar to the §4.4 one-token-
// at-a-time Tokenizer contract. Tree-sitter itself parses a whole document
// at once rather than incrementally streaming tokens, so this tokenizer
// re-parses the full buffer whenever its cached byte length goes stale and
// serves tokens out of the flattened leaf-node list by position. The
// rolling state parameter is unused (always 0): the next token is fully
// determined by the iterator's position, which keeps this tokenizer
// stateless and trivially satisfies the check-point cache's "state must be
// reproducible from scratch" invariant.
type TreeSitterTokenizer struct {
	mu       sync.Mutex
	language *sitter.Language
	parser   *sitter.Parser

	cachedLen uint64
	leaves    []leafSpan
}

// NewTreeSitterTokenizer builds a tokenizer for the named grammar (as
// registered with go-sitter-forest, e.g. "go", "python", "javascript",
// "markdown", "c", "cpp"). It returns an error if the grammar isn't
// compiled into the binary.
func NewTreeSitterTokenizer(language string) (*TreeSitterTokenizer, error) {
	lang, err := lookupLanguage(language)
	if err != nil {
		return nil, err
	}

	p := sitter.NewParser()
	p.SetLanguage(lang)

	return &TreeSitterTokenizer{language: lang, parser: p}, nil
}

func lookupLanguage(name string) (lang *sitter.Language, err error) {
	defer func() {
		if r := recover(); r != nil {
			lang, err = nil, fmt.Errorf("tokenize: tree-sitter grammar %q panicked on load: %v", name, r)
		}
	}()

	lang = forest.GetLanguage(name)
	if lang == nil {
		return nil, fmt.Errorf("tokenize: tree-sitter grammar %q not registered", name)
	}

	return lang, nil
}

// Tokenizer returns the buffer.Tokenizer closure bound to this grammar.
func (t *TreeSitterTokenizer) Tokenizer() buffer.Tokenizer {
	return func(it *buffer.Iterator, state uint64) (buffer.Token, uint64, bool) {
		t.mu.Lock()
		defer t.mu.Unlock()

		t.ensureParsed(it)

		pos := it.Position()

		i := sort.Search(len(t.leaves), func(i int) bool { return t.leaves[i].end > pos })
		if i >= len(t.leaves) {
			return buffer.Token{}, 0, false
		}

		leaf := t.leaves[i]
		if leaf.start < pos {
			leaf.start = pos
		}

		it.GoTo(leaf.end)

		return buffer.Token{Start: leaf.start, End: leaf.end, Type: leaf.tokenType}, 0, true
	}
}

// ensureParsed re-parses the full contents backing it if the cached leaf
// list was built against a different length. An edit that keeps the length
// unchanged (an equal-length replace) is not detected: the cached leaves
// stay in use until the length next changes.
func (t *TreeSitterTokenizer) ensureParsed(it *buffer.Iterator) {
	contents := it.ContentsRef()

	length := contents.Len()
	if length == t.cachedLen && t.leaves != nil {
		return
	}

	source := contents.StringifyInto(make([]byte, 0, length))

	tree, err := t.parser.ParseString(context.Background(), nil, source)
	if err != nil {
		t.leaves = nil
		t.cachedLen = length

		return
	}
	defer tree.Close()

	root := tree.RootNode()

	leaves := make([]leafSpan, 0, len(source)/4+1)
	flattenLeaves(root, &leaves)

	t.leaves = leaves
	t.cachedLen = length
}

// flattenLeaves walks n depth-first, appending every leaf (childless) named
// node as a leafSpan.
func flattenLeaves(n sitter.Node, out *[]leafSpan) {
	if n.IsNull() {
		return
	}

	count := n.ChildCount()
	if count == 0 {
		if n.IsNamed() {
			*out = append(*out, leafSpan{
				start:     uint64(n.StartByte()),
				end:       uint64(n.EndByte()),
				tokenType: classify(n.Type()),
			})
		}

		return
	}

	for i := uint32(0); i < count; i++ {
		flattenLeaves(n.Child(int(i)), out)
	}
}

// classify maps a grammar-specific node type name onto the language-neutral
// TokenType categories §3 describes. Grammars vary in naming, so this is a
// best-effort heuristic rather than an exhaustive per-language table.
func classify(nodeType string) buffer.TokenType {
	switch nodeType {
	case "comment", "line_comment", "block_comment":
		return buffer.TokenComment
	case "string", "string_literal", "interpreted_string_literal", "raw_string_literal", "template_string":
		return buffer.TokenString
	case "identifier", "field_identifier", "type_identifier", "property_identifier":
		return buffer.TokenIdentifier
	case "(", "[", "{":
		return buffer.TokenOpenPair
	case ")", "]", "}":
		return buffer.TokenClosePair
	case "number", "int_literal", "float_literal":
		return buffer.TokenNumber
	}

	return buffer.TokenDefault
}
