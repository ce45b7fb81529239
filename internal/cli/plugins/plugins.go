// Package plugins implements git-style external subcommands for ucitap.
// An unknown command is resolved to a ucitap-<command> binary and exec'd
// with the remaining arguments.
package plugins

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// KnownPlugins maps plugin names with published implementations to a short
// description shown when the binary is missing.
var KnownPlugins = map[string]string{
	"watch": "Continuous engine log following. Available at: https://github.com/joeljk13/ucitap-watch",
}

// ErrPluginNotFound means no matching plugin binary exists in any search
// location.
var ErrPluginNotFound = errors.New("plugin not found")

// FindPlugin searches for a plugin binary named ucitap-<command>.
// It searches, in order: the directory holding the ucitap binary,
// ~/.ucitap/plugins/, then PATH. Returns the full path when found.
func FindPlugin(command string) (string, error) {
	pluginName := "ucitap-" + command

	var candidates []string
	if execPath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(execPath), pluginName))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(homeDir, ".ucitap", "plugins", pluginName))
	}
	for _, candidate := range candidates {
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	if path, err := exec.LookPath(pluginName); err == nil {
		return path, nil
	}

	return "", ErrPluginNotFound
}

// Execute runs a plugin with the given arguments, passing the process
// stdio through, and returns the plugin's exit code.
func Execute(pluginPath string, args []string) int {
	cmd := exec.Command(pluginPath, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing plugin: %v\n", err)
		return 1
	}

	return 0
}

// FormatNotFoundError returns the error message for an unknown command,
// pointing at the plugin install locations. Known plugins get a line
// saying where to obtain them.
func FormatNotFoundError(command string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("unknown command %q for \"ucitap\"\n", command))

	if info, ok := KnownPlugins[command]; ok {
		sb.WriteString(fmt.Sprintf("\n%q is available as a plugin.\n", command))
		sb.WriteString(info)
		sb.WriteString("\n\nInstall the plugin binary as one of:\n")
	} else {
		sb.WriteString("\nIf this is a plugin, install the binary as one of:\n")
	}

	sb.WriteString(fmt.Sprintf("  - ucitap-%s in the same directory as ucitap\n", command))
	sb.WriteString(fmt.Sprintf("  - ~/.ucitap/plugins/ucitap-%s\n", command))
	sb.WriteString(fmt.Sprintf("  - ucitap-%s anywhere in your PATH\n", command))

	sb.WriteString("\nRun 'ucitap --help' for usage.")

	return sb.String()
}

// isExecutable reports whether path is a regular file with an execute
// bit set.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode()&0111 != 0
}
