// Package fortune gets quotes from the fortune program.
package fortune

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner produces fortunes by running a program.
type Runner struct {
	// Path is the program to run. If empty, "fortune" is found on PATH.
	Path string
	// Args are the arguments to the program, e.g. fortune databases.
	Args []string
}

// Fortune runs the program and returns its output unchanged.
func (r *Runner) Fortune(ctx context.Context) (string, error) {
	p := r.Path
	if p == "" {
		p = "fortune"
	}
	var out, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p, r.Args...)
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("couldn't run %s: %w (%s)", p, err, strings.TrimSpace(stderr.String()))
	}
	return out.String(), nil
}
