package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"appdna/internal/config"
	"appdna/internal/logging"
	"appdna/internal/model"
	"appdna/internal/storage"
)

var objectsFormat string

// objectsResponseCLI is the printable data-object projection of a model
// file, shared by the json, yaml, and human formatters.
type objectsResponseCLI struct {
	ModelFile string         `json:"modelFile" yaml:"modelFile"`
	Objects   []objectRowCLI `json:"objects" yaml:"objects"`
}

type objectRowCLI struct {
	Name             string `json:"name" yaml:"name"`
	IsLookup         bool   `json:"isLookup" yaml:"isLookup"`
	ParentObjectName string `json:"parentObjectName,omitempty" yaml:"parentObjectName,omitempty"`
	CodeDescription  string `json:"codeDescription,omitempty" yaml:"codeDescription,omitempty"`
	Namespace        string `json:"namespace" yaml:"namespace"`
}

var objectsCmd = &cobra.Command{
	Use:   "objects [FILE]",
	Short: "List the data objects in a model file",
	Long: `Print the data-object projection of a model file: every object with
its namespace, lookup flag, parent, and description.

Without FILE the configured model file is read.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot()
		if err != nil {
			return err
		}

		var path string
		if len(args) == 1 {
			path = resolvePath(root, args[0])
		} else {
			cfg, err := config.LoadConfig(root)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			path = resolvePath(root, cfg.ModelFile)
		}

		logger := logging.NewLogger(logging.Config{
			Format: logging.HumanFormat,
			Level:  logging.WarnLevel,
			Output: os.Stderr,
		})
		provider := storage.NewProvider(logger)

		rootModel, err := provider.LoadRootModel(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}

		resp := buildObjectsResponse(path, rootModel)
		output, err := FormatResponse(resp, OutputFormat(objectsFormat))
		if err != nil {
			return err
		}
		fmt.Println(output)
		return nil
	},
}

func buildObjectsResponse(path string, rootModel *model.RootModel) *objectsResponseCLI {
	resp := &objectsResponseCLI{
		ModelFile: path,
		Objects:   []objectRowCLI{},
	}
	for _, obj := range model.Objects(rootModel) {
		row := objectRowCLI{
			Name:             obj.Name,
			IsLookup:         obj.IsLookupObject(),
			ParentObjectName: obj.ParentObjectName,
			CodeDescription:  obj.CodeDescription,
		}
		if ns := model.NamespaceOfObject(rootModel, obj.Name); ns != nil {
			row.Namespace = ns.Name
		}
		resp.Objects = append(resp.Objects, row)
	}
	return resp
}

func init() {
	objectsCmd.Flags().StringVar(&objectsFormat, "format", "json", "Output format (json, yaml, human)")
	rootCmd.AddCommand(objectsCmd)
}
