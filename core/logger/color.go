package logger

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"golang.org/x/term"
)

type Color func() PrintFunc
type PrintFunc func(io.Writer, string, ...interface{})

// Default prints without any escape codes.
func Default() PrintFunc {
	return func(w io.Writer, format string, a ...interface{}) {
		fmt.Fprintf(w, format, a...)
	}
}
func Cyan() PrintFunc {
	return forced(envColor("TREESH_COLOR_CYAN", color.FgCyan))
}
func Red() PrintFunc {
	return forced(envColor("TREESH_COLOR_RED", color.FgRed))
}

// forced ignores color.NoColor; Logger.Color has already decided.
func forced(attr color.Attribute) PrintFunc {
	c := color.New(attr)
	c.EnableColor()
	return c.FprintfFunc()
}

func envColor(env string, defaultColor color.Attribute) color.Attribute {
	override, err := strconv.Atoi(os.Getenv(env))
	if err == nil {
		return color.Attribute(override)
	}
	return defaultColor
}

const (
	ColorAlways = "always"
	ColorAuto   = "auto"
	ColorNever  = "never"
)

// ShouldColor resolves a color mode for the given writer. In auto mode only
// terminals get color.
func ShouldColor(mode string, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
