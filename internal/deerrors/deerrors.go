// Package deerrors defines the semantic error kinds shared across de's
// components (spec §7). Callers compare with errors.As, not string
// matching, and wrap these with fmt.Errorf("...: %w", err) the way the
// rest of the codebase wraps stdlib errors.
package deerrors

import "fmt"

// NotFoundError reports a missing workspace, project, or task.
type NotFoundError struct {
	Kind string // "workspace", "project", "task", ...
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Name)
}

// ConflictError reports two registrations disagreeing on the same id.
type ConflictError struct {
	ID      string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict for %q: %s", e.ID, e.Message)
}

// SchemaViolationError reports a field that failed a domain rule.
type SchemaViolationError struct {
	Field   string
	Message string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SubprocessError reports a non-zero exit from an external command.
type SubprocessError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *SubprocessError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: exit %d: %s", e.Command, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s: exit %d", e.Command, e.ExitCode)
}

// UserAbortedError reports that an interactive prompt was declined or
// cancelled by the operator.
type UserAbortedError struct {
	Reason string
}

func (e *UserAbortedError) Error() string {
	if e.Reason == "" {
		return "aborted by user"
	}
	return fmt.Sprintf("aborted by user: %s", e.Reason)
}

// UnsupportedError reports a request the current platform or build cannot
// satisfy (e.g. the shim installer on an unknown OS).
type UnsupportedError struct {
	Feature string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported: %s", e.Feature)
}

// SecurityError reports a rejected zip-slip or path-traversal attempt.
type SecurityError struct {
	Path   string
	Reason string
}

func (e *SecurityError) Error() string {
	return fmt.Sprintf("security: %s (%s)", e.Reason, e.Path)
}

// GraphError is returned by DependencyGraph operations (circular or missing
// dependency).
type GraphError struct {
	Circular []string // non-empty for a cycle report
	Missing  []MissingDependency
}

// MissingDependency names a dependent project and the dependency it
// declared that was never registered.
type MissingDependency struct {
	Dependent  string
	Dependency string
}

func (e *GraphError) Error() string {
	if len(e.Circular) > 0 {
		return fmt.Sprintf("circular dependency among: %v", e.Circular)
	}
	return fmt.Sprintf("missing dependencies: %v", e.Missing)
}
