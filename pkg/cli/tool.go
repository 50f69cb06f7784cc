package cli

import (
	"github.com/m-mizutani/shopdesk/pkg/cli/tools"
	"github.com/urfave/cli/v3"
)

// cmdTool groups maintenance commands that need neither a credential nor the
// remote API
func cmdTool() *cli.Command {
	return &cli.Command{
		Name:    "tool",
		Aliases: []string{"t"},
		Usage:   "Maintenance tools (config template generation)",
		Commands: []*cli.Command{
			tools.CmdGenerateConfig(),
		},
	}
}
