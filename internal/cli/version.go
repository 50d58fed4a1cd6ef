package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stack-deploy/internal/config"
	"github.com/blackwell-systems/stack-deploy/internal/logger"
	"github.com/blackwell-systems/stack-deploy/internal/runner"
)

func newVersionCmd(d deps) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "stack-deploy version %s\n", cmd.Root().Version)

			tools := config.ToolConfig{AWS: "aws", Docker: "docker", Terraform: "terraform"}
			if cfg, err := config.Load(); err == nil {
				tools = cfg.Tools
			}

			r := d.newRunner(logger.L())
			fmt.Fprintln(w, "\nTools:")
			fmt.Fprintf(w, "  aws:        %s\n", toolVersion(cmd, r, tools.AWS))
			fmt.Fprintf(w, "  docker:     %s\n", toolVersion(cmd, r, tools.Docker))
			fmt.Fprintf(w, "  terraform:  %s\n", toolVersion(cmd, r, tools.Terraform))
		},
	}
}

// toolVersion returns the first line a tool prints for --version.
func toolVersion(cmd *cobra.Command, r runner.Runner, bin string) string {
	res, err := r.Run(cmd.Context(), runner.Cmd{Name: bin, Args: []string{"--version"}})
	if err != nil {
		return "not found"
	}

	// aws v1 prints its version on stderr
	out := strings.TrimSpace(string(res.Stdout))
	if out == "" {
		out = strings.TrimSpace(string(res.Stderr))
	}
	if out == "" {
		return "unknown"
	}
	return strings.SplitN(out, "\n", 2)[0]
}
