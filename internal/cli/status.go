package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stack-deploy/internal/config"
	"github.com/blackwell-systems/stack-deploy/internal/docker"
	"github.com/blackwell-systems/stack-deploy/internal/logger"
	"github.com/blackwell-systems/stack-deploy/internal/terraform"
)

func newStatusCmd(d deps) *cobra.Command {
	var timeout = docker.DefaultProbeTimeout

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the health of the deployed application",
		Long: `Read the load balancer DNS name from the Terraform outputs and
probe the application's health endpoint through it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			out := newConsole(cmd.OutOrStdout())

			tf := terraform.NewClient(cfg.Tools.Terraform, cfg.TerraformDir, d.newRunner(logger.L()))
			dns, err := tf.Output(cmd.Context(), cfg.ALBOutput)
			if err != nil {
				out.Error("Failed to read load balancer address: %v", err)
				return err
			}

			url := "http://" + dns + cfg.HealthPath
			status := docker.Probe(cmd.Context(), url, timeout)

			out.Info("Endpoint                                   Status")
			out.Info("────────────────────────────────────────────────────")
			printServiceStatus(out, url, status)

			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", timeout, "Health check timeout")
	return cmd
}

func printServiceStatus(out *console, url string, status docker.ServiceStatus) {
	var statusText string
	switch status {
	case docker.ServiceUp:
		statusText = color.GreenString("✓ UP")
	case docker.ServiceDown:
		statusText = color.RedString("✗ DOWN")
	default:
		statusText = color.RedString("✗ UNKNOWN")
	}

	fmt.Fprintf(out.w, "%-42s %s\n", url, statusText)
}
