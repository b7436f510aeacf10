package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tormodhaugland/de/internal/compose"
	"github.com/tormodhaugland/de/internal/deerrors"
	"github.com/tormodhaugland/de/internal/lifecycle"
	"github.com/tormodhaugland/de/internal/manifest"
)

// doctorIssue is one diagnostic line with a suggested next command.
type doctorIssue struct {
	Project    string `json:"project,omitempty"`
	Problem    string `json:"problem"`
	Suggestion string `json:"suggestion,omitempty"`
}

var doctorCmd = &cobra.Command{
	Use:   "doctor [workspace]",
	Short: "Diagnose cross-file invariant violations without changing anything",
	Long: `Reports every cross-file invariant violation (workspace/name mismatch,
missing de.toml, docker-compose file absent, task referencing an
undeclared compose service, dependency cycle, missing dependency) as a
structured list with a suggested next command. Unlike update, doctor
never writes anything. Exits non-zero if anything is wrong.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wsName := ""
		if len(args) == 1 {
			wsName = args[0]
		}
		ws, err := resolveWorkspace(wsName)
		if err != nil {
			return err
		}

		var issues []doctorIssue
		loaded, loadErrs := lifecycle.LoadProjects(ws)
		for id, loadErr := range loadErrs {
			var notFound *deerrors.NotFoundError
			suggestion := fmt.Sprintf("de update --workspace %s", ws.Name)
			if !errors.As(loadErr, &notFound) {
				suggestion = ""
			}
			issues = append(issues, doctorIssue{Project: id.String(), Problem: "de.toml missing or unreadable: " + loadErr.Error(), Suggestion: suggestion})
		}

		for id, p := range loaded {
			if p.Man.Project.Workspace != ws.Name {
				issues = append(issues, doctorIssue{
					Project: id.String(),
					Problem: fmt.Sprintf("manifest claims workspace %q, registered under %q", p.Man.Project.Workspace, ws.Name),
					Suggestion: fmt.Sprintf("de update --workspace %s", ws.Name),
				})
			}
			if p.Man.Project.Name != id {
				issues = append(issues, doctorIssue{
					Project:    id.String(),
					Problem:    fmt.Sprintf("manifest name %q differs from registration id %q", p.Man.Project.Name, id),
					Suggestion: fmt.Sprintf("de update --workspace %s", ws.Name),
				})
			}

			composePath := compose.ResolvePath(p.Dir, p.Man.Project.DockerCompose)
			if !compose.Exists(composePath) {
				issues = append(issues, doctorIssue{
					Project: id.String(),
					Problem: "no docker-compose file at " + composePath,
				})
			} else if services, err := composeServices(composePath); err == nil {
				for taskName, t := range p.Man.Tasks {
					if t.Kind != manifest.TaskCompose {
						continue
					}
					if !services[t.Service] {
						issues = append(issues, doctorIssue{
							Project: id.String(),
							Problem: fmt.Sprintf("task %q references undeclared compose service %q", taskName, t.Service),
						})
					}
				}
			}
		}

		graph := lifecycle.BuildGraph(loaded)
		if err := graph.ValidateDependencies(); err != nil {
			issues = append(issues, doctorIssue{Problem: err.Error(), Suggestion: "fix depends_on in the offending project's de.toml"})
		}
		if _, err := graph.ResolveStartupOrder(); err != nil {
			issues = append(issues, doctorIssue{Problem: err.Error()})
		}

		if jsonOut {
			if err := jsonEncode(issues); err != nil {
				return err
			}
		} else if len(issues) == 0 {
			fmt.Println("no issues found")
		} else {
			for _, i := range issues {
				if i.Project != "" {
					fmt.Printf("- [%s] %s\n", i.Project, i.Problem)
				} else {
					fmt.Printf("- %s\n", i.Problem)
				}
				if i.Suggestion != "" {
					fmt.Printf("  suggestion: %s\n", i.Suggestion)
				}
			}
		}

		if len(issues) > 0 {
			return fmt.Errorf("%d issue(s) found", len(issues))
		}
		return nil
	},
}

type composeDoc struct {
	Services map[string]any `yaml:"services"`
}

func composeServices(path string) (map[string]bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc composeDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(doc.Services))
	for name := range doc.Services {
		out[name] = true
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
