package main

import (
	"fmt"
	"os"
	"strings"
)

// CleanCode strips the formatting artifacts a code generator wraps around
// its output: surrounding whitespace and fenced-code markers, with or
// without a language tag. Best-effort normalization, not a parser.
func CleanCode(code string) string {
	code = strings.TrimSpace(code)

	if strings.HasPrefix(code, "```") {
		if idx := strings.IndexByte(code, '\n'); idx >= 0 {
			code = code[idx+1:]
		} else {
			code = strings.TrimPrefix(code, "```")
		}
	}
	if strings.HasSuffix(code, "```") {
		code = code[:len(code)-3]
	}

	return strings.TrimSpace(code)
}

// MaterializeCode writes a cleaned version of generated code to filename,
// overwriting any existing file. If nothing remains after cleaning, it
// fails without touching the target.
func MaterializeCode(code, filename string) error {
	cleaned := CleanCode(code)
	if cleaned == "" {
		return &ValidationError{Field: "code", Reason: "generated code is empty after cleaning"}
	}

	if err := os.WriteFile(filename, []byte(cleaned), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	return nil
}
