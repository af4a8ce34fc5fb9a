package main

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

var (
	cypherLexer     chroma.Lexer
	cypherFormatter chroma.Formatter
	cypherStyle     *chroma.Style
)

func init() {
	cypherLexer = lexers.Get("cypher")
	if cypherLexer == nil {
		// Chroma ships no dedicated Cypher lexer in every release; its SQL
		// lexer tokenizes Cypher's keyword-and-clause shape well enough for
		// terminal display.
		cypherLexer = lexers.Get("sql")
	}
	cypherFormatter = formatters.Get("terminal256")
	cypherStyle = styles.Get("monokai")
}

// highlightCypher returns s with ANSI terminal syntax highlighting applied.
// On error or empty input, the original string is returned unchanged.
func highlightCypher(s string) string {
	if s == "" {
		return s
	}

	iterator, err := cypherLexer.Tokenise(nil, s)
	if err != nil {
		return s
	}

	var buf bytes.Buffer
	if err := cypherFormatter.Format(&buf, cypherStyle, iterator); err != nil {
		return s
	}

	return strings.TrimRight(buf.String(), "\n")
}
