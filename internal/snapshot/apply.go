package snapshot

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"

	"github.com/tormodhaugland/de/internal/deerrors"
	"github.com/tormodhaugland/de/internal/fsutil"
	"github.com/tormodhaugland/de/internal/gitrepo"
	"github.com/tormodhaugland/de/internal/manifest"
	"github.com/tormodhaugland/de/internal/shellsplit"
)

// ApplyOptions configures one snapshot application run.
type ApplyOptions struct {
	ZipPath   string
	TargetDir string
}

// ApplyResult reports per-project failures without aborting the rest,
// matching the cross-project-loop continuation behavior spec §5 describes
// for recoverable per-project failures.
type ApplyResult struct {
	Failures map[string]error
}

// Apply implements spec §4.12's snapshot application algorithm: verify and
// prepare TargetDir, extract the zip (zip-slip guarded) to a temp
// directory, read manifest.json, then for each project clone its git URL,
// checkout its branch, and run its steps in order.
func Apply(ctx context.Context, opts ApplyOptions) (ApplyResult, error) {
	result := ApplyResult{Failures: make(map[string]error)}

	info, err := os.Stat(opts.TargetDir)
	if err != nil {
		if os.IsNotExist(err) {
			if err := fsutil.EnsureDir(opts.TargetDir); err != nil {
				return result, err
			}
		} else {
			return result, err
		}
	} else if !info.IsDir() {
		return result, &deerrors.SchemaViolationError{Field: "target", Message: "exists and is not a directory"}
	} else {
		empty, err := fsutil.IsDirEmpty(opts.TargetDir)
		if err != nil {
			return result, err
		}
		if !empty {
			return result, &deerrors.ConflictError{ID: opts.TargetDir, Message: "target directory is not empty"}
		}
	}

	extractRoot, err := os.MkdirTemp("", "de-snapshot-extract-*")
	if err != nil {
		return result, err
	}
	defer os.RemoveAll(extractRoot)

	if err := extractZip(opts.ZipPath, extractRoot); err != nil {
		return result, err
	}

	manifestBytes, err := os.ReadFile(filepath.Join(extractRoot, "manifest.json"))
	if err != nil {
		return result, err
	}
	var m Manifest
	if err := json.Unmarshal(manifestBytes, &m); err != nil {
		return result, err
	}

	for projectName, ps := range m.Projects {
		if err := applyProject(ctx, extractRoot, opts.TargetDir, projectName, ps); err != nil {
			result.Failures[projectName] = err
		}
	}

	return result, nil
}

func applyProject(ctx context.Context, snapshotRoot, targetDir, projectName string, ps ProjectSnapshot) error {
	projectDir := filepath.Join(targetDir, projectName)
	if err := fsutil.EnsureDir(projectDir); err != nil {
		return err
	}

	if ps.Git.URL != "" {
		if err := gitrepo.Clone(ps.Git.URL, projectDir); err != nil {
			return err
		}
		if ps.Git.Branch != "" {
			if err := gitrepo.Checkout(projectDir, ps.Git.Branch, false); err != nil {
				return err
			}
		}
	}

	for _, step := range ps.Steps {
		if err := applyStep(ctx, snapshotRoot, projectDir, step); err != nil {
			return err
		}
	}
	return nil
}

func applyStep(ctx context.Context, snapshotRoot, projectDir string, step StepRecord) error {
	switch step.Kind {
	case "copy_files":
		return applyCopyFiles(projectDir, step)
	case "basic":
		return applyCommands(ctx, snapshotRoot, projectDir, step.Command)
	case "complex":
		return applyCommands(ctx, snapshotRoot, projectDir, step.Apply)
	}
	return &deerrors.SchemaViolationError{Field: "step.kind", Message: "unknown kind " + step.Kind}
}

// applyCopyFiles walks projectDir for files whose name matches step.Source
// as a regex, computes a destination name via regex-replace into
// step.Dest, and copies into the same parent directory, skipping when the
// destination already exists and !Overwrite (spec §4.12).
func applyCopyFiles(projectDir string, step StepRecord) error {
	re, err := regexp.Compile(step.Source)
	if err != nil {
		return err
	}

	return filepath.WalkDir(projectDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if !re.MatchString(entry.Name()) {
			return nil
		}
		destName := re.ReplaceAllString(entry.Name(), step.Dest)
		destPath := filepath.Join(filepath.Dir(path), destName)
		if _, err := os.Stat(destPath); err == nil && !step.Overwrite {
			return nil
		}
		return fsutil.CopyFile(path, destPath)
	})
}

// applyCommands runs each ApplyCommand in order, cwd=projectDir. A
// non-empty Stdin.File is opened from snapshotRoot after canonicalizing
// and checking it resolves under snapshotRoot (spec §4.12 security
// invariant), and routed to the command's stdin. A non-zero exit fails the
// step.
func applyCommands(ctx context.Context, snapshotRoot, projectDir string, commands []manifest.ApplyCommand) error {
	for _, c := range commands {
		tokens, err := shellsplit.Split(c.Command)
		if err != nil {
			return err
		}
		if len(tokens) == 0 {
			continue
		}

		cmd := exec.CommandContext(ctx, tokens[0], tokens[1:]...)
		cmd.Dir = projectDir
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if c.Stdin != nil {
			escapes, err := fsutil.PathEscapes(snapshotRoot, c.Stdin.File)
			if err != nil {
				return err
			}
			if escapes {
				return &deerrors.SecurityError{Path: c.Stdin.File, Reason: "stdin file escapes snapshot root"}
			}
			f, err := os.Open(filepath.Join(snapshotRoot, c.Stdin.File))
			if err != nil {
				return err
			}
			cmd.Stdin = f
		}

		runErr := cmd.Run()
		if closer, ok := cmd.Stdin.(*os.File); ok {
			closer.Close()
		}
		if runErr != nil {
			exitCode := -1
			if exitErr, ok := runErr.(*exec.ExitError); ok {
				exitCode = exitErr.ExitCode()
			}
			return &deerrors.SubprocessError{Command: c.Command, ExitCode: exitCode}
		}
	}
	return nil
}
