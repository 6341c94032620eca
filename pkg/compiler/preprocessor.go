package compiler

import (
	"fmt"
	"strings"
	"unicode"
)

// SplitStatements trims every source line, concatenates them with no
// separator and splits the result on ';'. Line breaks therefore never end a
// statement on their own.
func SplitStatements(lines []string) []string {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(strings.TrimSpace(line))
	}
	return strings.Split(sb.String(), ";")
}

// stripSpace removes every whitespace rune from a statement.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// decodeText turns the source escapes for a literal space into spaces.
func decodeText(s string) string {
	return strings.NewReplacer(`\s`, " ", `\c`, " ").Replace(s)
}

// applyMacro handles `using_name name=replacement`. The substitution is
// plain text replacement over every statement that has not been recognized
// yet, so it can match inside longer identifiers.
func applyMacro(stmts []string, from int, def string) error {
	name, repl, ok := strings.Cut(def, "=")
	if !ok {
		return fmt.Errorf("using_name expects name=replacement, got %q", def)
	}
	if name == "" {
		return fmt.Errorf("using_name with empty name")
	}
	for i := from; i < len(stmts); i++ {
		stmts[i] = strings.ReplaceAll(stmts[i], name, repl)
	}
	return nil
}
