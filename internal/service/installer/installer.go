package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/oshokin/jlink-updater/internal/logger"
)

// errNoInstallCommand is returned when Install is called without a command.
var errNoInstallCommand = errors.New("no install command for this system")

// Installer runs the package manager, elevated when the manager asks for it.
type Installer struct {
	// elevate prefixes elevated commands, "sudo" by default.
	elevate []string
	// stdin, stdout and stderr are handed to the child process.
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Option configures the installer.
type Option func(*Installer)

// WithElevation replaces the "sudo" prefix; no arguments run the command as is.
func WithElevation(prefix ...string) Option {
	return func(i *Installer) {
		i.elevate = prefix
	}
}

// WithOutput redirects the child's output.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(i *Installer) {
		i.stdout = stdout
		i.stderr = stderr
	}
}

// New creates an installer attached to the terminal.
func New(opts ...Option) *Installer {
	i := &Installer{
		elevate: []string{"sudo"},
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// Install runs manager on filePath and returns the child's exit code:
// "sudo <command...> <absolute filePath>" for an elevated manager, the command
// as is otherwise, or the file itself when the package installs itself.
// The error is only set when the process could not run at all.
func (i *Installer) Install(ctx context.Context, manager PackageManager, filePath string) (int, error) {
	if !manager.CanInstall() {
		return 0, errNoInstallCommand
	}

	absolutePath, err := filepath.Abs(filePath)
	if err != nil {
		return 0, fmt.Errorf("resolve %s: %w", filePath, err)
	}

	args := make([]string, 0, len(i.elevate)+len(manager.Command)+1)
	if manager.Elevate {
		args = append(args, i.elevate...)
	}

	args = append(args, manager.Command...)
	args = append(args, absolutePath)

	//nolint:gosec // The command comes from a fixed table of package managers or the user.
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = i.stdin
	cmd.Stdout = i.stdout
	cmd.Stderr = i.stderr

	logger.Infof(ctx, "Executing %s", strings.Join(args, " "))

	err = cmd.Run()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}

	if err != nil {
		return 0, fmt.Errorf("run %s: %w", args[0], err)
	}

	return 0, nil
}
