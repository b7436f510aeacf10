package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/de/internal/deerrors"
	"github.com/tormodhaugland/de/internal/manifest"
	"github.com/tormodhaugland/de/internal/slug"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage the tasks table of a project's de.toml",
}

var taskAddService string

var taskCheckCmd = &cobra.Command{
	Use:   "check <name>",
	Short: "Report whether a task is declared in the current project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := currentManifest()
		if err != nil {
			return err
		}
		name, err := slug.From(args[0])
		if err != nil {
			return err
		}
		t, ok := m.Tasks[name]
		if !ok {
			return &deerrors.NotFoundError{Kind: "task", Name: name.String()}
		}
		if jsonOut {
			return jsonEncode(t)
		}
		fmt.Printf("%s: %s\n", name, describeTask(t))
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks declared in the current project",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := currentManifest()
		if err != nil {
			return err
		}
		if jsonOut {
			return jsonEncode(m.Tasks)
		}
		for _, name := range m.SortedTaskNames() {
			fmt.Printf("%s: %s\n", name, describeTask(m.Tasks[name]))
		}
		return nil
	},
}

var taskAddCmd = &cobra.Command{
	Use:   "add <name> <command>",
	Short: "Add or replace a task in the current project's de.toml",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := findCurrentProjectDir()
		if dir == "" {
			return fmt.Errorf("not inside a registered project")
		}
		m, err := manifest.Load(dir)
		if err != nil {
			return err
		}
		name, err := slug.From(args[0])
		if err != nil {
			return err
		}

		t := manifest.Task{Kind: manifest.TaskRaw, Command: args[1]}
		if taskAddService != "" {
			t = manifest.Task{Kind: manifest.TaskCompose, Service: taskAddService, Command: args[1]}
		}
		if m.Tasks == nil {
			m.Tasks = make(map[slug.Slug]manifest.Task)
		}
		m.Tasks[name] = t
		return m.Save(dir)
	},
}

var taskRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a task from the current project's de.toml",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := findCurrentProjectDir()
		if dir == "" {
			return fmt.Errorf("not inside a registered project")
		}
		m, err := manifest.Load(dir)
		if err != nil {
			return err
		}
		name, err := slug.From(args[0])
		if err != nil {
			return err
		}
		if _, ok := m.Tasks[name]; !ok {
			return &deerrors.NotFoundError{Kind: "task", Name: name.String()}
		}
		delete(m.Tasks, name)
		return m.Save(dir)
	},
}

func currentManifest() (*manifest.ProjectManifest, error) {
	dir := findCurrentProjectDir()
	if dir == "" {
		return nil, fmt.Errorf("not inside a registered project")
	}
	return manifest.Load(dir)
}

func describeTask(t manifest.Task) string {
	if t.Kind == manifest.TaskCompose {
		return fmt.Sprintf("compose(%s): %s", t.Service, t.Command)
	}
	return t.Command
}

func init() {
	taskAddCmd.Flags().StringVar(&taskAddService, "service", "", "make this a compose task targeting this service")
	taskCmd.AddCommand(taskCheckCmd, taskListCmd, taskAddCmd, taskRemoveCmd)
	rootCmd.AddCommand(taskCmd)
}
