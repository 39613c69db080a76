package post4

import (
	"strconv"
	"strings"

	"github.com/jcorbin/post4/cell"
)

// parseNumber implements the numeric literal recognizer spec.md section 4.7
// describes: an explicit radix prefix ($ hex, # decimal, % binary, a leading
// 0x also hex, a leading 0 followed by another digit octal), a quoted
// character literal, plain or escaped ('c' or '\c'), and -- only when the
// current Base is 10 -- a floating point literal recognized by a '.', 'e',
// or 'E' that a plain integer parse would reject.
//
// It reports ok=false for anything that isn't recognized as a literal at
// all, in which case the outer interpreter's caller treats the token as an
// undefined word.
func (vm *VM) parseNumber(tok string) (v cell.Cell, isFloat bool, ok bool) {
	if tok == "" {
		return 0, false, false
	}

	if lit, ok := parseCharLiteral(tok); ok {
		return cell.FromInt(int(lit)), false, true
	}

	base := vm.base()
	text := tok
	neg := false
	if strings.HasPrefix(text, "-") && len(text) > 1 {
		neg = true
		text = text[1:]
	}

	switch {
	case strings.HasPrefix(text, "$"):
		base, text = 16, text[1:]
	case strings.HasPrefix(text, "#"):
		base, text = 10, text[1:]
	case strings.HasPrefix(text, "%"):
		base, text = 2, text[1:]
	case strings.HasPrefix(text, "0x"), strings.HasPrefix(text, "0X"):
		base, text = 16, text[2:]
	case len(text) > 1 && text[0] == '0' && text[1] >= '0' && text[1] <= '9' && base == 10:
		base, text = 8, text[1:]
	}

	if text == "" {
		return 0, false, false
	}

	if base == 10 {
		if looksFloat(text) {
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return 0, false, false
			}
			if neg {
				f = -f
			}
			return cell.FromFloat(f), true, true
		}
	}

	n, err := strconv.ParseInt(text, base, 64)
	if err != nil {
		return 0, false, false
	}
	if neg {
		n = -n
	}
	return cell.FromInt(int(n)), false, true
}

// base reads the current numeric radix from its data-space cell.
func (vm *VM) base() int { return vm.Space.Load(vm.baseAddr).Int() }

func looksFloat(text string) bool {
	return strings.ContainsAny(text, ".eE")
}

// parseCharLiteral recognizes 'c' and '\c' (escaped) character literals,
// spec.md section 4.7's plain and escaped forms.
func parseCharLiteral(tok string) (rune, bool) {
	if len(tok) >= 3 && tok[0] == '\'' && tok[len(tok)-1] == '\'' {
		body := tok[1 : len(tok)-1]
		if len(body) == 1 {
			return rune(body[0]), true
		}
		if len(body) == 2 && body[0] == '\\' {
			return unescape(body[1]), true
		}
	}
	return 0, false
}

// unescape implements spec.md section 4.6's fixed backslash-escape table,
// shared by character literals (section 4.7's '\c') and any string parse
// that asks for escape processing.
func unescape(c byte) rune {
	switch c {
	case 'a':
		return '\a' // BEL
	case 'b':
		return '\b' // BS
	case 'e':
		return 0x1B // ESC
	case 'f':
		return '\f' // FF
	case 'n':
		return '\n' // LF
	case 'r':
		return '\r' // CR
	case 's':
		return ' ' // SPACE
	case 't':
		return '\t' // TAB
	case 'v':
		return '\v' // VT
	case 'z', '0':
		return 0 // NUL
	case '?':
		return 0x7F // DEL
	default:
		return rune(c)
	}
}
