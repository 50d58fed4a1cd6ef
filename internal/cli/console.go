package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// console prints colored status lines. It implements deploy.Reporter.
type console struct {
	w io.Writer
}

func newConsole(w io.Writer) *console {
	return &console{w: w}
}

func (c *console) Info(format string, args ...interface{}) {
	fmt.Fprintln(c.w, color.CyanString(format, args...))
}

func (c *console) Progress(format string, args ...interface{}) {
	fmt.Fprintln(c.w, color.CyanString("→ "+format, args...))
}

func (c *console) Success(format string, args ...interface{}) {
	fmt.Fprintln(c.w, color.GreenString("✓ "+format, args...))
}

func (c *console) Warn(format string, args ...interface{}) {
	fmt.Fprintln(c.w, color.YellowString("⚠ "+format, args...))
}

func (c *console) Error(format string, args ...interface{}) {
	fmt.Fprintln(c.w, color.RedString("✗ "+format, args...))
}
