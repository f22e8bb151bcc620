package shell

import (
	"regexp"
	"strings"
)

var safeWord = regexp.MustCompile(`^[A-Za-z0-9_@%+=:,./-]+$`)

// Quote returns s in a form a POSIX shell would read back as one word.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	if safeWord.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Render prints a tree as shell text. Nested compounds whose operator differs
// from their parent's are parenthesized.
func Render(n Node) string {
	var sb strings.Builder
	render(&sb, n, nil)
	return sb.String()
}

func render(sb *strings.Builder, n Node, parent *Compound) {
	switch n := n.(type) {
	case *Simple:
		renderSimple(sb, n)
	case *Compound:
		grouped := parent != nil && parent.Op != n.Op
		if grouped {
			sb.WriteString("(")
		}
		render(sb, n.Left, n)
		if n.Op == OpSequential {
			sb.WriteString(n.Op.Symbol())
			sb.WriteString(" ")
		} else {
			sb.WriteString(" ")
			sb.WriteString(n.Op.Symbol())
			sb.WriteString(" ")
		}
		render(sb, n.Right, n)
		if grouped {
			sb.WriteString(")")
		}
	}
}

func renderSimple(sb *strings.Builder, s *Simple) {
	for i, word := range s.Argv() {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(Quote(word))
	}
	renderRedirect(sb, "<", s.Stdin)
	renderRedirect(sb, ">", s.Stdout)
	renderRedirect(sb, "2>", s.Stderr)
}

func renderRedirect(sb *strings.Builder, op string, r *Redirection) {
	if r == nil {
		return
	}
	sb.WriteString(" ")
	sb.WriteString(op)
	if r.Mode == Append && op != "<" {
		sb.WriteString(">")
	}
	sb.WriteString(" ")
	sb.WriteString(Quote(r.Path))
}
