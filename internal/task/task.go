// Package task implements the task engine's run resolution chain (spec
// §4.8): workspace resolution, project-task lookup, workspace-task
// fallback, and the two invocation shapes (docker-compose exec vs. a
// shell-split local command).
package task

import (
	"context"
	"os"
	"os/exec"

	"github.com/tormodhaugland/de/internal/compose"
	"github.com/tormodhaugland/de/internal/deerrors"
	"github.com/tormodhaugland/de/internal/manifest"
	"github.com/tormodhaugland/de/internal/shellsplit"
	"github.com/tormodhaugland/de/internal/slug"
	"github.com/tormodhaugland/de/internal/workspace"
)

// Request names everything Run needs to resolve and invoke a task.
type Request struct {
	Task           slug.Slug
	Args           []string
	ProjectHint    *slug.Slug
	WorkspaceHint  *slug.Slug
	ActiveWorkspace *slug.Slug
	// CurrentProjectDir is the project directory the caller is currently
	// inside, if any (used for the "no project_hint" fallback in step 3).
	CurrentProjectDir string
}

// ResolveWorkspaceName picks the workspace per spec §4.8 step 1: explicit name > active
// > current. "current" resolution (loading the workspace a CurrentProjectDir
// belongs to) is the caller's responsibility via ProjectManifest.Project.Workspace,
// surfaced here as a plain precedence helper.
func ResolveWorkspaceName(req Request, currentProjectWorkspace *slug.Slug) (slug.Slug, error) {
	if req.WorkspaceHint != nil {
		return *req.WorkspaceHint, nil
	}
	if req.ActiveWorkspace != nil {
		return *req.ActiveWorkspace, nil
	}
	if currentProjectWorkspace != nil {
		return *currentProjectWorkspace, nil
	}
	return "", &deerrors.NotFoundError{Kind: "workspace", Name: "<none resolvable>"}
}

// Run executes req.Task against ws, following the spec §4.8 resolution
// chain: an explicit ProjectHint's tasks, else the current project's tasks
// (when CurrentProjectDir is set and belongs to ws), else a workspace-level
// task. Returns *deerrors.NotFoundError when nothing matches.
func Run(ctx context.Context, ws *workspace.Config, req Request) error {
	if req.ProjectHint != nil {
		wp, ok := ws.Projects[*req.ProjectHint]
		if !ok {
			return &deerrors.NotFoundError{Kind: "project", Name: req.ProjectHint.String()}
		}
		m, err := manifest.Load(wp.Dir)
		if err != nil {
			return err
		}
		t, ok := m.Tasks[req.Task]
		if !ok {
			return &deerrors.NotFoundError{Kind: "task", Name: req.Task.String()}
		}
		return runProjectTask(ctx, m, wp.Dir, t, req.Args)
	}

	if req.CurrentProjectDir != "" {
		if id, dir, m, ok := findCurrentProject(ws, req.CurrentProjectDir); ok {
			if t, ok := m.Tasks[req.Task]; ok {
				return runProjectTask(ctx, m, dir, t, req.Args)
			}
			_ = id
		}
	}

	if cmdline, ok := ws.Tasks[req.Task]; ok {
		return runWorkspaceTask(cmdline, req.Args, ws)
	}

	return &deerrors.NotFoundError{Kind: "task", Name: req.Task.String()}
}

// findCurrentProject returns the registered project (if any) whose
// directory matches currentDir.
func findCurrentProject(ws *workspace.Config, currentDir string) (slug.Slug, string, *manifest.ProjectManifest, bool) {
	for id, wp := range ws.Projects {
		if wp.Dir != currentDir {
			continue
		}
		m, err := manifest.Load(wp.Dir)
		if err != nil {
			return "", "", nil, false
		}
		return id, wp.Dir, m, true
	}
	return "", "", nil, false
}

func runProjectTask(ctx context.Context, m *manifest.ProjectManifest, dir string, t manifest.Task, extraArgs []string) error {
	if t.Kind == manifest.TaskCompose {
		composePath := m.ComposePath(dir)
		tokens, err := shellsplit.Split(t.Command)
		if err != nil {
			return err
		}
		tokens = append(tokens, extraArgs...)
		return compose.Exec(ctx, composePath, t.Service, tokens)
	}

	tokens, err := shellsplit.Split(t.Command)
	if err != nil {
		return err
	}
	tokens = append(tokens, extraArgs...)
	return runLocal(ctx, dir, tokens)
}

func runWorkspaceTask(cmdline string, extraArgs []string, ws *workspace.Config) error {
	dir, err := workspace.Dir(ws)
	if err != nil {
		return err
	}
	tokens, err := shellsplit.Split(cmdline)
	if err != nil {
		return err
	}
	tokens = append(tokens, extraArgs...)
	return runLocal(context.Background(), dir, tokens)
}

func runLocal(ctx context.Context, dir string, tokens []string) error {
	if len(tokens) == 0 {
		return &deerrors.SchemaViolationError{Field: "command", Message: "empty command"}
	}
	cmd := exec.CommandContext(ctx, tokens[0], tokens[1:]...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return &deerrors.SubprocessError{Command: tokens[0], ExitCode: exitCode}
	}
	return nil
}
