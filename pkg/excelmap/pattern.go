package excelmap

import (
	"fmt"
	"strings"
	"unicode"
)

// datePattern is a compiled date pattern such as "yyyy-MM-dd HH:mm:ss".
// The same pattern drives both the Go layout used for text and the
// number format handed to the workbook for DATE and TIME cells.
type datePattern struct {
	source    string
	layout    string
	numFmt    string
	subSecond bool
}

// excelLiterals are passed through unescaped in number formats.
const excelLiterals = " -:/.,()"

// goLayoutTokens would be read as layout elements if they appeared in a literal.
var goLayoutTokens = []string{"Jan", "Mon", "MST", "PM", "pm", "Z07", "_2"}

func compilePattern(p string) (datePattern, error) {
	dp := datePattern{source: p}
	if strings.TrimSpace(p) == "" {
		return dp, fmt.Errorf("empty date pattern")
	}
	var layout, numFmt strings.Builder
	runes := []rune(p)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == '\'':
			lit, next, err := readQuoted(runes, i)
			if err != nil {
				return dp, fmt.Errorf("pattern %q: %w", p, err)
			}
			if err := writeLiteral(&layout, &numFmt, lit); err != nil {
				return dp, fmt.Errorf("pattern %q: %w", p, err)
			}
			i = next
		case isPatternLetter(r):
			n := 1
			for i+n < len(runes) && runes[i+n] == r {
				n++
			}
			goTok, xlTok, err := patternToken(r, n)
			if err != nil {
				return dp, fmt.Errorf("pattern %q: %w", p, err)
			}
			if r == 'S' {
				prev := layout.String()
				if !strings.HasSuffix(prev, ".") && !strings.HasSuffix(prev, ",") {
					return dp, fmt.Errorf("pattern %q: fraction of second must follow '.' or ','", p)
				}
				dp.subSecond = true
			}
			layout.WriteString(goTok)
			numFmt.WriteString(xlTok)
			i += n
		default:
			if err := writeLiteral(&layout, &numFmt, string(r)); err != nil {
				return dp, fmt.Errorf("pattern %q: %w", p, err)
			}
			i++
		}
	}
	dp.layout = layout.String()
	dp.numFmt = numFmt.String()
	return dp, nil
}

func isPatternLetter(r rune) bool {
	return r < unicode.MaxASCII && unicode.IsLetter(r)
}

// readQuoted reads a quoted literal starting at the quote at runes[start].
// A doubled quote stands for a single quote, inside or outside a literal.
func readQuoted(runes []rune, start int) (string, int, error) {
	if start+1 < len(runes) && runes[start+1] == '\'' {
		return "'", start + 2, nil
	}
	var sb strings.Builder
	for i := start + 1; i < len(runes); i++ {
		if runes[i] != '\'' {
			sb.WriteRune(runes[i])
			continue
		}
		if i+1 < len(runes) && runes[i+1] == '\'' {
			sb.WriteRune('\'')
			i++
			continue
		}
		return sb.String(), i + 1, nil
	}
	return "", 0, fmt.Errorf("unterminated quote at offset %d", start)
}

func writeLiteral(layout, numFmt *strings.Builder, lit string) error {
	if strings.ContainsAny(lit, "0123456789") {
		return fmt.Errorf("literal %q contains digits", lit)
	}
	for _, tok := range goLayoutTokens {
		if strings.Contains(lit, tok) {
			return fmt.Errorf("literal %q cannot be expressed in a time layout", lit)
		}
	}
	layout.WriteString(lit)
	for _, r := range lit {
		if !strings.ContainsRune(excelLiterals, r) {
			numFmt.WriteRune('\\')
		}
		numFmt.WriteRune(r)
	}
	return nil
}

func patternToken(letter rune, n int) (string, string, error) {
	switch letter {
	case 'y':
		if n == 2 {
			return "06", "yy", nil
		}
		return "2006", "yyyy", nil
	case 'M':
		switch n {
		case 1:
			return "1", "m", nil
		case 2:
			return "01", "mm", nil
		case 3:
			return "Jan", "mmm", nil
		}
		return "January", "mmmm", nil
	case 'd':
		if n == 1 {
			return "2", "d", nil
		}
		return "02", "dd", nil
	case 'H':
		if n == 1 {
			return "15", "h", nil
		}
		return "15", "hh", nil
	case 'h':
		if n == 1 {
			return "3", "h", nil
		}
		return "03", "hh", nil
	case 'm':
		if n == 1 {
			return "4", "m", nil
		}
		return "04", "mm", nil
	case 's':
		if n == 1 {
			return "5", "s", nil
		}
		return "05", "ss", nil
	case 'S':
		if n > 9 {
			n = 9
		}
		return strings.Repeat("0", n), strings.Repeat("0", n), nil
	case 'a':
		return "PM", "AM/PM", nil
	case 'E':
		if n <= 3 {
			return "Mon", "ddd", nil
		}
		return "Monday", "dddd", nil
	}
	return "", "", fmt.Errorf("unsupported pattern letter %q", letter)
}
