// Package cli implements the stack-deploy commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blackwell-systems/stack-deploy/internal/config"
	"github.com/blackwell-systems/stack-deploy/internal/deploy"
	"github.com/blackwell-systems/stack-deploy/internal/logger"
	"github.com/blackwell-systems/stack-deploy/internal/runner"
)

// deps are the pieces tests swap out
type deps struct {
	fs        afero.Fs
	newRunner func(log zerolog.Logger) runner.Runner
}

func defaultDeps() deps {
	return deps{
		fs: afero.NewOsFs(),
		newRunner: func(log zerolog.Logger) runner.Runner {
			return runner.New(log)
		},
	}
}

// Execute builds the command tree and runs it. Errors are printed here.
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(version, defaultDeps())
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("✗ %v", err))
		return err
	}
	return nil
}

func newRootCmd(version string, d deps) *cobra.Command {
	var (
		buildOnly bool
		infraOnly bool
		verbose   bool
		envFile   string
	)

	cmd := &cobra.Command{
		Use:   "stack-deploy",
		Short: "Build, push and deploy the application stack to AWS",
		Long: `Deploy the application stack to AWS.

Applies the Terraform configuration, builds the backend and frontend
images with Docker, and pushes them to ECR.

Options:
  (no flag)       Full deployment: check tfvars and AWS credentials, apply
                  infrastructure, build and push images
  --build-only    Only build and push the Docker images
  --infra-only    Only deploy the infrastructure with Terraform
  -h, --help      Show this help message`,
		Example: `  stack-deploy
  stack-deploy --infra-only
  stack-deploy --build-only --tag v1.4.0`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(envFile); err != nil {
				return err
			}
			logger.Setup(logger.Config{Verbose: verbose, Out: cmd.ErrOrStderr()})
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Usage is only useful for flag errors
			cmd.SilenceUsage = true

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			mode := deploy.ModeFull
			switch {
			case buildOnly:
				mode = deploy.ModeBuildOnly
			case infraOnly:
				mode = deploy.ModeInfraOnly
			}

			return runDeploy(cmd, d, cfg, mode)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every external command")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Load environment variables from this file if it exists")

	cmd.Flags().BoolVar(&buildOnly, "build-only", false, "Only build and push the Docker images")
	cmd.Flags().BoolVar(&infraOnly, "infra-only", false, "Only deploy the infrastructure with Terraform")
	cmd.MarkFlagsMutuallyExclusive("build-only", "infra-only")

	cmd.PersistentFlags().String("project", "", "Project name (default: project_name from tfvars)")
	cmd.PersistentFlags().String("region", "", "AWS region (default: AWS_REGION, tfvars, CLI profile)")
	cmd.PersistentFlags().String("terraform-dir", "", "Terraform configuration directory")
	cmd.Flags().String("tag", "", "Image tag to build and push")

	// Bind flags to viper
	viper.BindPFlag("project-name", cmd.PersistentFlags().Lookup("project"))
	viper.BindPFlag("region", cmd.PersistentFlags().Lookup("region"))
	viper.BindPFlag("terraform-dir", cmd.PersistentFlags().Lookup("terraform-dir"))
	viper.BindPFlag("image-tag", cmd.Flags().Lookup("tag"))

	cmd.AddCommand(newStatusCmd(d))
	cmd.AddCommand(newOutputsCmd(d))
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd(d))

	return cmd
}

func runDeploy(cmd *cobra.Command, d deps, cfg *config.Config, mode deploy.Mode) error {
	out := newConsole(cmd.OutOrStdout())
	log := logger.L()

	out.Info("Starting %s deployment...", mode)

	deployer := deploy.New(cfg, deploy.Options{
		Runner:   d.newRunner(log),
		Fs:       d.fs,
		Reporter: out,
		Logger:   log,
	})

	s, err := deployer.Run(cmd.Context(), mode)
	if err != nil {
		return err
	}

	out.Success("Deployment complete")
	if len(s.Images) > 0 {
		out.Info("\nImages:")
		for _, ref := range s.Images {
			out.Info("  %s", ref)
		}
	}
	if s.URL() != "" {
		out.Info("\nApplication URL: %s", s.URL())
		out.Info("Run 'stack-deploy status' to check health")
	}

	return nil
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}
