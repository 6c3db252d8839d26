// Package clipboard copies artifacts to the system clipboard through the
// platform's command-line tools.
package clipboard

import (
	"bytes"
	"os/exec"
	"runtime"

	"github.com/m-mizutani/goerr/v2"

	"github.com/webcreatorLuke/roblox-code-bot/internal/ports"
)

// candidate is a clipboard tool and the arguments that make it read stdin.
type candidate struct {
	name string
	args []string
}

var linuxTools = []candidate{
	{name: "wl-copy"},
	{name: "xclip", args: []string{"-selection", "clipboard"}},
	{name: "xsel", args: []string{"--clipboard", "--input"}},
}

// Clipboard implements ports.Clipboard using platform-specific tools.
type Clipboard struct {
	goos     string
	lookPath func(string) (string, error)
	run      func(name string, args []string, stdin []byte) error
}

// New builds the clipboard helper for the running platform.
func New() *Clipboard {
	return &Clipboard{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		run:      runTool,
	}
}

// Enabled reports whether a usable clipboard tool exists.
func (c *Clipboard) Enabled() bool {
	_, ok := c.tool()
	return ok
}

// Copy copies text to the system clipboard.
func (c *Clipboard) Copy(text string) error {
	tool, ok := c.tool()
	if !ok {
		return goerr.New("no clipboard tool available", goerr.V("os", c.goos))
	}
	if err := c.run(tool.name, tool.args, []byte(text)); err != nil {
		return goerr.Wrap(err, "clipboard copy failed", goerr.V("tool", tool.name))
	}
	return nil
}

func (c *Clipboard) tool() (candidate, bool) {
	var tools []candidate
	switch c.goos {
	case "darwin":
		tools = []candidate{{name: "pbcopy"}}
	case "windows":
		tools = []candidate{{name: "clip"}}
	case "linux", "freebsd", "openbsd":
		tools = linuxTools
	}
	for _, tool := range tools {
		if _, err := c.lookPath(tool.name); err == nil {
			return tool, true
		}
	}
	return candidate{}, false
}

func runTool(name string, args []string, stdin []byte) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	return cmd.Run()
}

var _ ports.Clipboard = (*Clipboard)(nil)
