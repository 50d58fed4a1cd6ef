package cli

import (
	"errors"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stack-deploy/internal/config"
	"github.com/blackwell-systems/stack-deploy/internal/deploy"
	"github.com/blackwell-systems/stack-deploy/internal/logger"
	"github.com/blackwell-systems/stack-deploy/internal/terraform"
)

func newOutputsCmd(d deps) *cobra.Command {
	return &cobra.Command{
		Use:   "outputs",
		Short: "Show the deployed endpoints and the last deployment",
		Long: `Print the load balancer address from the Terraform outputs and the
record written by the last successful deployment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			out := newConsole(cmd.OutOrStdout())

			tf := terraform.NewClient(cfg.Tools.Terraform, cfg.TerraformDir, d.newRunner(logger.L()))
			if dns, err := tf.Output(cmd.Context(), cfg.ALBOutput); err != nil {
				out.Warn("Load balancer: unavailable (%v)", err)
			} else {
				out.Info("Load balancer:  %s", dns)
				out.Info("URL:            http://%s", dns)
			}

			rec, err := deploy.LoadRecord(d.fs, cfg.RecordFile)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					out.Warn("No deployment record at %s", cfg.RecordFile)
					return nil
				}
				return err
			}

			out.Info("\nLast deployment (%s):", rec.DeployedAt.Local().Format("2006-01-02 15:04:05"))
			out.Info("  Mode:         %s", rec.Mode)
			out.Info("  Account:      %s", rec.AccountID)
			out.Info("  Region:       %s", rec.Region)
			out.Info("  Project:      %s", rec.Project)
			out.Info("  Registry:     %s", rec.Registry)
			for _, ref := range rec.Images {
				out.Info("  Image:        %s", ref)
			}

			return nil
		},
	}
}
