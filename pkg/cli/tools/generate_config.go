package tools

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

// DefaultConfigPath is where generate-config writes when --output is not given
const DefaultConfigPath = "shopdesk.yaml"

// CmdGenerateConfig returns the generate-config command
func CmdGenerateConfig() *cli.Command {
	var (
		outputPath string
		force      bool
	)

	return &cli.Command{
		Name:    "generate-config",
		Aliases: []string{"g"},
		Usage:   "Generate configuration file template",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "output",
				Usage:       "Output file path",
				Value:       DefaultConfigPath,
				Destination: &outputPath,
			},
			&cli.BoolFlag{
				Name:        "force",
				Usage:       "Overwrite existing file",
				Destination: &force,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := WriteConfig(outputPath, force); err != nil {
				return err
			}

			ctxlog.From(ctx).Info("configuration template generated", "path", outputPath)
			fmt.Printf("✅ configuration template generated: %s\n", outputPath)
			fmt.Println("\nNext steps:")
			fmt.Println("1. Set api.base_url to your API server")
			fmt.Println("2. Choose a credential backend")
			fmt.Println("3. Use --config flag to load the configuration")

			return nil
		},
	}
}

// WriteConfig writes the configuration template to path. An existing file is
// kept unless force is set.
func WriteConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return goerr.New("file already exists, use --force to overwrite", goerr.V("path", path))
	}
	return config.GenerateConfigFile(path)
}
