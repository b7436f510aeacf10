// Package compose wraps docker-compose subprocess invocations shared by
// the lifecycle, status and task engines (spec §4.7, §4.8, §4.11). Styled
// on the teacher's internal/gitrepo use of os/exec: build an *exec.Cmd,
// capture combined output, wrap a non-zero exit in a typed error.
package compose

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/tormodhaugland/de/internal/deerrors"
)

// ResolvePath resolves a project's compose file: manifestPath if set
// (resolved relative to projectDir when not absolute), else the
// conventional docker-compose.yml sibling (spec §4.7).
func ResolvePath(projectDir, manifestPath string) string {
	if manifestPath != "" {
		if filepath.IsAbs(manifestPath) {
			return manifestPath
		}
		return filepath.Join(projectDir, manifestPath)
	}
	return filepath.Join(projectDir, "docker-compose.yml")
}

// Exists reports whether path names a regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// binary resolves which compose invocation to use: standalone
// docker-compose if present on PATH, else the docker-cli's compose
// subcommand (spec §4.11: "If standalone docker-compose is absent, fall
// back to docker compose …").
func binary() (name string, prefixArgs []string) {
	if _, err := exec.LookPath("docker-compose"); err == nil {
		return "docker-compose", nil
	}
	return "docker", []string{"compose"}
}

// run executes docker-compose (or docker compose) -f composePath args...
// and returns combined stdout+stderr. A non-zero exit is reported as
// *deerrors.SubprocessError.
func run(ctx context.Context, composePath string, args ...string) (string, error) {
	bin, prefix := binary()
	full := append(append(prefix, "-f", composePath), args...)

	cmd := exec.CommandContext(ctx, bin, full...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return out.String(), &deerrors.SubprocessError{
			Command:  bin + " " + joinArgs(full),
			ExitCode: exitCode,
			Stderr:   out.String(),
		}
	}
	return out.String(), nil
}

// Up runs `docker-compose -f <composePath> up -d`. A missing compose file
// is reported as applied=false, not an error.
func Up(ctx context.Context, composePath string) (applied bool, err error) {
	if !Exists(composePath) {
		return false, nil
	}
	_, err = run(ctx, composePath, "up", "-d")
	return err == nil, err
}

// Down runs `docker-compose -f <composePath> down`.
func Down(ctx context.Context, composePath string) (applied bool, err error) {
	if !Exists(composePath) {
		return false, nil
	}
	_, err = run(ctx, composePath, "down")
	return err == nil, err
}

// PSAll runs `docker-compose -f <composePath> ps -a` and returns the raw
// table text for the status engine to parse.
func PSAll(ctx context.Context, composePath string) (string, error) {
	return run(ctx, composePath, "ps", "-a")
}

// Exec runs `docker-compose -f <composePath> exec <service> <args...>`,
// streaming stdio through to the caller's terminal (the task engine
// invokes this interactively).
func Exec(ctx context.Context, composePath, service string, args []string) error {
	bin, prefix := binary()
	full := append(append(prefix, "-f", composePath, "exec", service), args...)

	cmd := exec.CommandContext(ctx, bin, full...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return &deerrors.SubprocessError{Command: bin + " " + joinArgs(full), ExitCode: exitCode}
	}
	return nil
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += a
	}
	return out
}
