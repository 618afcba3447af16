package main

import (
	"fmt"
	"io"
	"strings"
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// WriteTokensXML lists tokens in the <tokens> format the course tools
// compare against.
func WriteTokensXML(w io.Writer, tokens []Token) error {
	if _, err := io.WriteString(w, "<tokens>\n"); err != nil {
		return err
	}
	for _, token := range tokens {
		if _, err := fmt.Fprintf(w, "<%s> %s </%s>\n", token.tokenType, xmlEscaper.Replace(token.terminal), token.tokenType); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</tokens>\n")
	return err
}
