package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/openfga-dslc/openfga-dslc/internal/cli/ui"
)

var (
	newInteractive bool
	newStore       string
)

// validateProjectName validates project name with security checks.
func validateProjectName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) == 0 || len(name) > 100 {
		return fmt.Errorf("project name must be 1-100 characters")
	}

	if filepath.IsAbs(name) {
		return fmt.Errorf("project name cannot be an absolute path")
	}

	// This regex already prevents dots (including ".."), so no additional check needed.
	matched, _ := regexp.MatchString(`^[a-zA-Z0-9_-]+$`, name)
	if !matched {
		return fmt.Errorf("project name can only contain letters, numbers, dashes, and underscores")
	}

	return nil
}

const sampleModel = `type user

type document
  relations
    define owner as self
    define editor as self or owner
    define viewer as self or editor
`

const configTemplate = `project_name: %s
store:
  driver: %s
  url: ""
server:
  port: 8080
  host: localhost
  auth: none
`

const readmeTemplate = `# %s

An OpenFGA authorization model built with fgac.

## Usage

Compile the model to OpenFGA authorization-model JSON:

` + "```" + `sh
fgac compile model.fga
` + "```" + `

Watch for changes and recompile automatically:

` + "```" + `sh
fgac watch model.fga
` + "```" + `
`

// NewNewCommand creates the new command.
func NewNewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new [project-name]",
		Short: "Scaffold a new fgac project",
		Long: `Create a new fgac project directory with a starter .fga model,
an fgac.yaml config, and a README.`,
		Example: `  fgac new my-auth-model
  fgac new my-auth-model --store postgres`,
		Args: cobra.MaximumNArgs(1),
		RunE: runNew,
	}

	cmd.Flags().BoolVarP(&newInteractive, "interactive", "i", true, "Prompt for project options")
	cmd.Flags().StringVar(&newStore, "store", "memory", "Compiled-model store backend (postgres, sqlite, memory)")

	return cmd
}

func runNew(cmd *cobra.Command, args []string) error {
	infoColor := color.New(color.FgCyan)
	successColor := color.New(color.FgGreen, color.Bold)

	var projectName string
	if len(args) > 0 {
		projectName = args[0]
	}

	store := newStore

	if newInteractive && projectName == "" {
		prompts := []*survey.Question{
			{
				Name:     "name",
				Prompt:   &survey.Input{Message: "Project name:"},
				Validate: survey.Required,
			},
			{
				Name: "store",
				Prompt: &survey.Select{
					Message: "Compiled-model store:",
					Options: []string{"memory", "postgres", "sqlite"},
					Default: "memory",
				},
			},
		}

		answers := struct {
			Name  string
			Store string
		}{}

		if err := survey.Ask(prompts, &answers); err != nil {
			return fmt.Errorf("prompt cancelled: %w", err)
		}

		projectName = answers.Name
		store = answers.Store
	}

	if err := validateProjectName(projectName); err != nil {
		return err
	}

	switch store {
	case "postgres", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown store backend %q", store)
	}

	if _, err := os.Stat(projectName); err == nil {
		return fmt.Errorf("directory %s already exists", projectName)
	}

	spinner := ui.NewSpinner(os.Stdout, ui.SpinnerOptions{Message: fmt.Sprintf("Creating project %s...", projectName)})
	spinner.Start()

	if err := os.MkdirAll(projectName, 0755); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	files := map[string]string{
		"model.fga": sampleModel,
		"fgac.yaml": fmt.Sprintf(configTemplate, projectName, store),
		"README.md": fmt.Sprintf(readmeTemplate, projectName),
	}

	for name, content := range files {
		path := filepath.Join(projectName, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			spinner.Stop()
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	spinner.Stop()

	successColor.Printf("Created %s\n", projectName)
	infoColor.Println("Next steps:")
	fmt.Printf("  cd %s\n", projectName)
	fmt.Println("  fgac compile model.fga")

	return nil
}
