package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"testlens/cmd/testlens/ui"
	"testlens/internal/scaffold"
)

var scaffoldProject string

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "Create a test project for untested code",
	Long: `Analyzes the workspace and creates a <Project>.Tests project next to the
source project, wired to the testing stack the solution already uses (or
xunit, Moq, FluentAssertions, AutoFixture and coverlet when starting fresh).

Skeleton test classes are generated for the least testable classes. Existing
files are never overwritten.`,
	RunE: runScaffold,
}

func init() {
	scaffoldCmd.Flags().StringVarP(&scaffoldProject, "project", "p", "", "Source project to scaffold tests for (default: first project)")
}

func runScaffold(cmd *cobra.Command, args []string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}

	report, _, err := analyzeWorkspace(ws)
	if err != nil {
		return err
	}

	result, err := scaffold.NewScaffolder(report).Generate(ws, scaffoldProject)
	if err != nil {
		return err
	}

	fmt.Println(ui.TitleStyle.Render("Scaffold: " + filepath.Base(result.ProjectDir)))
	for _, path := range result.Created {
		rel, _ := filepath.Rel(ws, path)
		fmt.Printf("  %s %s\n", ui.SuccessStyle.Render("created"), rel)
	}
	for _, path := range result.Skipped {
		rel, _ := filepath.Rel(ws, path)
		fmt.Printf("  %s %s\n", ui.MutedStyle.Render("skipped"), rel)
	}
	if len(result.Created) == 0 {
		fmt.Println(ui.MutedStyle.Render("  nothing to do; all files already exist"))
		return nil
	}

	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("  dotnet sln add %s\n", filepath.Base(result.ProjectDir))
	fmt.Println("  dotnet test")
	return nil
}
