package tracking

import "strings"

// jsEscaper escapes a value for embedding inside a quoted string in an inline
// script block. Besides quote and backslash escaping it neutralizes "</" so a
// value can never close the surrounding script tag, and the JS line
// separators U+2028/U+2029 which are invalid inside string literals.
var jsEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
	"</", `<\/`,
	"\u2028", `\u2028`,
	"\u2029", `\u2029`,
)

// EscapeJS escapes user-controlled text for safe embedding inside a quoted
// string in a script context.
func EscapeJS(s string) string {
	return jsEscaper.Replace(s)
}

// jsString returns the value as an escaped, double-quoted JS string literal.
func jsString(s string) string {
	return `"` + EscapeJS(s) + `"`
}
