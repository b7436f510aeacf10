package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/tormodhaugland/de/internal/deerrors"
	"github.com/tormodhaugland/de/internal/fsutil"
	"github.com/tormodhaugland/de/internal/manifest"
	"github.com/tormodhaugland/de/internal/shellsplit"
	"github.com/tormodhaugland/de/internal/slug"
)

// CreateInput names one project's contribution to a snapshot.
type CreateInput struct {
	ID      slug.Slug
	Dir     string
	Man     *manifest.ProjectManifest
	Profile string
}

// CreateOptions configures one snapshot creation run.
type CreateOptions struct {
	WorkspaceName string
	Projects      []CreateInput
	Out           string // destination zip path
	WithChecksum  bool
	// Warn receives a human-readable line for projects skipped because
	// they have no setup config (spec §4.12 step 2: "warn and skip").
	Warn func(string)
}

// Create builds a snapshot zip at opts.Out following spec §4.12's
// creation algorithm: temp dir with a files/ subdir, per-project export
// commands run and captured, manifest.json written, then zipped
// (optionally with a checksum pass that rewrites the zip).
func Create(ctx context.Context, opts CreateOptions) error {
	tempRoot, err := os.MkdirTemp("", "de-snapshot-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tempRoot)

	filesDir := filepath.Join(tempRoot, "files")
	if err := fsutil.EnsureDir(filesDir); err != nil {
		return err
	}

	manifestOut := Manifest{
		WorkspaceName: opts.WorkspaceName,
		Projects:      make(map[string]ProjectSnapshot),
		CreatedAt:     time.Now().UTC(),
	}

	for _, input := range opts.Projects {
		if input.Man.Setup == nil {
			if opts.Warn != nil {
				opts.Warn(fmt.Sprintf("%s: no setup config, skipping", input.ID))
			}
			continue
		}

		ps, err := captureProject(ctx, input, filesDir)
		if err != nil {
			return err
		}
		manifestOut.Projects[input.ID.String()] = ps
	}

	if err := writeManifestJSON(tempRoot, manifestOut); err != nil {
		return err
	}
	if err := writeZip(tempRoot, opts.Out); err != nil {
		return err
	}

	if opts.WithChecksum {
		sum, err := ComputeChecksum(tempRoot, manifestOut)
		if err != nil {
			return err
		}
		manifestOut.Checksum = sum
		if err := writeManifestJSON(tempRoot, manifestOut); err != nil {
			return err
		}
		if err := writeZip(tempRoot, opts.Out); err != nil {
			return err
		}
	}

	return nil
}

func writeManifestJSON(tempRoot string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(tempRoot, "manifest.json"), data, 0o644)
}

func captureProject(ctx context.Context, input CreateInput, filesDir string) (ProjectSnapshot, error) {
	setup := input.Man.Setup
	steps := setup.ResolvedSteps(input.Profile)
	gitCfg := setup.ResolvedGit(input.Profile)

	projectFilesDir := filepath.Join(filesDir, input.ID.String())

	ps := ProjectSnapshot{Git: GitRef{URL: gitCfg.URL, Branch: gitCfg.Branch}}

	names := setup.ResolvedStepOrder(input.Profile)
	for _, name := range names {
		step := steps[name]
		switch step.Kind {
		case manifest.StepCopyFiles:
			ps.Steps = append(ps.Steps, StepRecord{
				Name: name, Kind: "copy_files",
				Source: step.Source, Dest: step.Destination, Overwrite: step.Overwrite,
			})

		case manifest.StepComplex:
			resolvedEnv := ResolveEnv(step.Env)
			rec := StepRecord{Name: name, Kind: "complex"}
			for _, exp := range step.Export {
				cmdline := Substitute(exp.Command, resolvedEnv)
				var pipeFile string
				if exp.Stdout != nil {
					pipeFile = Substitute(exp.Stdout.File, resolvedEnv)
				}
				relPath, err := runExport(ctx, input.Dir, cmdline, pipeFile, projectFilesDir, input.ID.String())
				if err != nil {
					return ProjectSnapshot{}, err
				}
				if relPath != "" {
					ps.Files = append(ps.Files, relPath)
				}
			}
			for _, a := range step.Apply {
				rec.Apply = append(rec.Apply, manifest.ApplyCommand{
					Command: Substitute(a.Command, resolvedEnv),
					Stdin:   a.Stdin,
				})
			}
			ps.Steps = append(ps.Steps, rec)

		case manifest.StepBasic:
			resolvedEnv := ResolveEnv(step.Env)
			rec := StepRecord{Name: name, Kind: "basic"}
			for _, c := range step.Command {
				rec.Command = append(rec.Command, manifest.ApplyCommand{
					Command: Substitute(c.Command, resolvedEnv),
					Stdin:   c.Stdin,
				})
			}
			ps.Steps = append(ps.Steps, rec)
		}
	}

	return ps, nil
}

// runExport runs cmdline in projectDir, capturing stdout to
// <filesDir>/<pipeFile> if pipeFile is set (else discarding it), and
// returns the snapshot-relative path recorded on the project's Files list.
// pipeFile must contain no ".." parent component (spec §4.12 security
// invariant).
func runExport(ctx context.Context, projectDir, cmdline, pipeFile, filesDir, projectID string) (string, error) {
	tokens, err := shellsplit.Split(cmdline)
	if err != nil {
		return "", err
	}
	if len(tokens) == 0 {
		return "", &deerrors.SchemaViolationError{Field: "export.command", Message: "empty command"}
	}

	cmd := exec.CommandContext(ctx, tokens[0], tokens[1:]...)
	cmd.Dir = projectDir

	if pipeFile == "" {
		return "", cmd.Run()
	}

	if containsParentComponent(pipeFile) {
		return "", &deerrors.SecurityError{Path: pipeFile, Reason: "export pipe file name contains a parent component"}
	}

	if err := fsutil.EnsureDir(filesDir); err != nil {
		return "", err
	}
	outPath := filepath.Join(filesDir, pipeFile)
	if err := fsutil.EnsureDir(filepath.Dir(outPath)); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	cmd.Stdout = &buf
	if err := cmd.Run(); err != nil {
		return "", err
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return "", err
	}

	rel := filepath.Join("files", projectID, pipeFile)
	return filepath.ToSlash(rel), nil
}

func containsParentComponent(p string) bool {
	clean := filepath.ToSlash(filepath.Clean(p))
	if clean == ".." {
		return true
	}
	return len(clean) >= 3 && clean[:3] == "../"
}
