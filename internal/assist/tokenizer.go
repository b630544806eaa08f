// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package assist

import (
	"regexp"
	"slices"
	"strings"
)

// Category is a syntax highlighting category.
type Category string

// Available categories.
const (
	Comment      = Category("comment")
	Preprocessor = Category("preprocessor")
	Keyword      = Category("keyword")
	Type         = Category("type")
	Qualifier    = Category("qualifier")
	Builtin      = Category("builtin")
	Number       = Category("number")
	Identifier   = Category("identifier")
	Operator     = Category("operator")
	Delimiter    = Category("delimiter")
	Whitespace   = Category("whitespace")
	Invalid      = Category("invalid")
)

// State is a tokenizer state carried from one line to the next.
type State string

// Tokenizer states.
const (
	Root         = State("root")
	BlockComment = State("comment")
)

// Rule assigns a category to text matched by a pattern. If Next is set, the
// tokenizer switches to that state after the match.
type Rule struct {
	Pattern  *regexp.Regexp
	Category Category
	Next     State
}

// Rules is the ordered list of tokenizer rules. At each position the first
// rule that matches wins.
var Rules = []Rule{
	rule(`//.*`, Comment),
	rule(`/\*.*?\*/`, Comment),
	enter(`/\*.*`, Comment, BlockComment),
	rule(`#\s*[a-z]+.*`, Preprocessor),
	rule(words(keywords), Keyword),
	rule(words(mapKeys(types)), Type),
	rule(words(qualifiers), Qualifier),
	rule(words(append(mapKeys(functions), mapKeys(variables)...)), Builtin),
	rule(`0[xX][0-9a-fA-F]+`, Number),
	rule(`(?:\d+\.\d*|\.\d+|\d+)(?:[eE][+-]?\d+)?`, Number),
	rule(`[A-Za-z_]\w*`, Identifier),
	rule(`<<=|>>=|\+\+|--|&&|\|\||\^\^|<<|>>|[-+*/%=<>!&|^]=|[-+*/%=<>!&|^~?:]`, Operator),
	rule(`[{}()\[\];,.]`, Delimiter),
	rule(`\s+`, Whitespace),
	rule(`.`, Invalid),
}

// CommentRules are the rules inside a block comment that spans lines.
var CommentRules = []Rule{
	enter(`.*?\*/`, Comment, Root),
	rule(`.+`, Comment),
}

// rule anchors pattern at the start of the input.
func rule(pattern string, c Category) Rule {
	return Rule{Pattern: regexp.MustCompile(`^(?:` + pattern + `)`), Category: c}
}

func enter(pattern string, c Category, next State) Rule {
	r := rule(pattern, c)
	r.Next = next
	return r
}

// words returns a pattern matching any of ws as a whole word. Longer words
// come first so that a word is never matched by its own prefix.
func words(ws []string) string {
	ws = slices.Clone(ws)
	slices.SortFunc(ws, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})
	quoted := make([]string, len(ws))
	for i, w := range ws {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return `(?:` + strings.Join(quoted, "|") + `)\b`
}

func mapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// Token is a piece of a line with its category.
type Token struct {
	Text     string
	Category Category
}

// Tokenize splits a single line into tokens using Rules.
func Tokenize(line string) []Token {
	toks, _ := TokenizeState(line, Root)
	return toks
}

// TokenizeState splits line into tokens starting in state, and returns the
// state the next line starts in.
func TokenizeState(line string, state State) ([]Token, State) {
	var toks []Token
	for rest := line; rest != ""; {
		rules := Rules
		if state == BlockComment {
			rules = CommentRules
		}
		for _, r := range rules {
			m := r.Pattern.FindString(rest)
			if m == "" {
				continue
			}
			toks = append(toks, Token{Text: m, Category: r.Category})
			rest = rest[len(m):]
			if r.Next != "" {
				state = r.Next
			}
			break
		}
	}
	return toks, state
}

// MonarchRule is a tokenizer rule in the form accepted by the editor widget.
// Next is "@comment" to enter a block comment and "@pop" to leave it.
type MonarchRule struct {
	Pattern  string   `json:"pattern"`
	Category Category `json:"category"`
	Next     string   `json:"next,omitempty"`
}

// MonarchTokenizer returns Rules and CommentRules keyed by state name, with
// patterns as strings without the leading anchor.
func MonarchTokenizer() map[State][]MonarchRule {
	return map[State][]MonarchRule{
		Root:         monarchRules(Rules),
		BlockComment: monarchRules(CommentRules),
	}
}

func monarchRules(rules []Rule) []MonarchRule {
	res := make([]MonarchRule, 0, len(rules))
	for _, r := range rules {
		mr := MonarchRule{
			Pattern:  strings.TrimPrefix(r.Pattern.String(), "^"),
			Category: r.Category,
		}
		switch r.Next {
		case Root:
			mr.Next = "@pop"
		case "":
		default:
			mr.Next = "@" + string(r.Next)
		}
		res = append(res, mr)
	}
	return res
}
