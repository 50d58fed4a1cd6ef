// Package deploy sequences the deployment steps.
//
// A run is a fixed, ordered list of steps chosen by Mode. Steps share a
// Session and the first failure ends the run; nothing is retried or rolled
// back.
package deploy

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/blackwell-systems/stack-deploy/internal/aws"
	"github.com/blackwell-systems/stack-deploy/internal/config"
	"github.com/blackwell-systems/stack-deploy/internal/docker"
	"github.com/blackwell-systems/stack-deploy/internal/runner"
	"github.com/blackwell-systems/stack-deploy/internal/terraform"
	"github.com/blackwell-systems/stack-deploy/internal/tfvars"
)

// Mode selects which steps run.
type Mode int

const (
	ModeFull Mode = iota
	ModeBuildOnly
	ModeInfraOnly
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeBuildOnly:
		return "build-only"
	case ModeInfraOnly:
		return "infra-only"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Step names, in the order they can appear.
const (
	StepPrerequisites  = "prerequisites"
	StepCredentials    = "credentials"
	StepInfrastructure = "infrastructure"
	StepBuild          = "build"
	StepPush           = "push"
)

// Session is the state shared between steps of one run.
type Session struct {
	Mode        Mode
	AccountID   string
	Region      string
	ProjectName string
	Registry    string
	ALBDNSName  string

	// Images holds the pushed registry references.
	Images []string

	tfvarsRegion string
}

// URL is the application address behind the load balancer.
func (s *Session) URL() string {
	if s.ALBDNSName == "" {
		return ""
	}
	return "http://" + s.ALBDNSName
}

// Step is one unit of the deployment.
type Step struct {
	Name string
	Run  func(ctx context.Context, s *Session) error
}

// StepError wraps the failure of a step.
type StepError struct {
	Step string
	Err  error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// Reporter receives operator-facing progress messages.
type Reporter interface {
	Progress(format string, args ...interface{})
	Success(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

// Deployer runs deployments against the wrapped tools.
type Deployer struct {
	cfg       *config.Config
	fs        afero.Fs
	aws       *aws.Client
	terraform *terraform.Client
	docker    *docker.Client
	tfvars    *tfvars.Inspector
	report    Reporter
	log       zerolog.Logger
	now       func() time.Time
}

// Options carries the collaborators of a Deployer.
type Options struct {
	Runner   runner.Runner
	Fs       afero.Fs
	Reporter Reporter
	Logger   zerolog.Logger
}

// New creates a Deployer.
func New(cfg *config.Config, opts Options) *Deployer {
	return &Deployer{
		cfg:       cfg,
		fs:        opts.Fs,
		aws:       aws.NewClient(cfg.Tools.AWS, opts.Runner),
		terraform: terraform.NewClient(cfg.Tools.Terraform, cfg.TerraformDir, opts.Runner),
		docker:    docker.NewClient(cfg.Tools.Docker, opts.Runner),
		tfvars:    tfvars.NewInspector(opts.Fs, cfg.Placeholders),
		report:    opts.Reporter,
		log:       opts.Logger,
		now:       time.Now,
	}
}

// WithAWS replaces the AWS client (tests use it to pin the environment).
func (d *Deployer) WithAWS(c *aws.Client) *Deployer {
	d.aws = c
	return d
}

// Steps returns the ordered steps for mode.
func (d *Deployer) Steps(mode Mode) []Step {
	prereq := Step{Name: StepPrerequisites, Run: d.checkPrerequisites}
	creds := Step{Name: StepCredentials, Run: d.checkCredentials}
	infra := Step{Name: StepInfrastructure, Run: d.deployInfrastructure}
	build := Step{Name: StepBuild, Run: d.buildImages}
	push := Step{Name: StepPush, Run: d.pushImages}

	switch mode {
	case ModeBuildOnly:
		return []Step{creds, build, push}
	case ModeInfraOnly:
		return []Step{prereq, creds, infra}
	default:
		return []Step{prereq, creds, infra, build, push}
	}
}

// Run executes the steps for mode. The returned Session is populated as far
// as the run got, even on error.
func (d *Deployer) Run(ctx context.Context, mode Mode) (*Session, error) {
	s := &Session{Mode: mode}
	d.resolveProject(s)

	for _, step := range d.Steps(mode) {
		start := d.now()
		d.log.Debug().Str("step", step.Name).Str("mode", mode.String()).Msg("step start")

		if err := step.Run(ctx, s); err != nil {
			d.log.Error().Str("step", step.Name).Err(err).Msg("step failed")
			return s, &StepError{Step: step.Name, Err: err}
		}

		d.log.Debug().Str("step", step.Name).Dur("duration", d.now().Sub(start)).Msg("step done")
	}

	if mode != ModeBuildOnly {
		d.lookupALB(ctx, s)
	}

	d.writeRecord(s)
	return s, nil
}

// resolveProject reads project_name and aws_region from tfvars when
// possible. Any problem here is left to the prerequisite step to report.
func (d *Deployer) resolveProject(s *Session) {
	s.ProjectName = d.cfg.ProjectName

	values, err := d.tfvars.Values(d.cfg.TfvarsPath())
	if err != nil {
		d.log.Debug().Err(err).Msg("tfvars values unavailable")
	} else {
		s.tfvarsRegion = values[tfvars.KeyRegion]
		if s.ProjectName == "" {
			s.ProjectName = values[tfvars.KeyProjectName]
		}
	}

	if s.ProjectName == "" {
		s.ProjectName = config.DefaultProjectName
	}
}

func (d *Deployer) checkPrerequisites(_ context.Context, _ *Session) error {
	d.report.Progress("Checking prerequisites...")

	if err := d.tfvars.Inspect(d.cfg.TfvarsPath()); err != nil {
		return err
	}

	d.report.Success("%s looks configured", d.cfg.TfvarsPath())
	return nil
}

func (d *Deployer) checkCredentials(ctx context.Context, s *Session) error {
	d.report.Progress("Checking AWS credentials...")

	id, err := d.aws.CallerIdentity(ctx)
	if err != nil {
		return err
	}

	s.AccountID = id.Account
	s.Region = d.aws.ResolveRegion(ctx, d.cfg.Region, s.tfvarsRegion)
	s.Registry = aws.RegistryURL(s.AccountID, s.Region)

	d.report.Success("AWS account %s, region %s", s.AccountID, s.Region)
	return nil
}

func (d *Deployer) deployInfrastructure(ctx context.Context, _ *Session) error {
	d.report.Progress("Deploying infrastructure with Terraform...")

	if err := d.terraform.Deploy(ctx); err != nil {
		return err
	}

	d.report.Success("Infrastructure deployed")
	return nil
}

func (d *Deployer) buildImages(ctx context.Context, s *Session) error {
	for _, img := range d.cfg.Images {
		ref := docker.LocalRef(s.ProjectName, img.Name, d.cfg.ImageTag)
		d.report.Progress("Building %s from %s...", ref, img.Context)

		if err := d.docker.Build(ctx, ref, img.Context); err != nil {
			return err
		}
	}

	d.report.Success("Images built")
	return nil
}

func (d *Deployer) pushImages(ctx context.Context, s *Session) error {
	d.report.Progress("Logging in to ECR %s...", s.Registry)

	pw, err := d.aws.ECRLoginPassword(ctx, s.Region)
	if err != nil {
		return err
	}
	if err := d.docker.Login(ctx, s.Registry, pw); err != nil {
		return err
	}

	for _, img := range d.cfg.Images {
		local := docker.LocalRef(s.ProjectName, img.Name, d.cfg.ImageTag)
		remote := docker.RemoteRef(s.Registry, s.ProjectName, img.Name, d.cfg.ImageTag)
		d.report.Progress("Pushing %s...", remote)

		if err := d.docker.Tag(ctx, local, remote); err != nil {
			return err
		}
		if err := d.docker.Push(ctx, remote); err != nil {
			return err
		}
		s.Images = append(s.Images, remote)
	}

	d.report.Success("Images pushed to ECR")
	return nil
}

func (d *Deployer) lookupALB(ctx context.Context, s *Session) {
	dns, err := d.terraform.Output(ctx, d.cfg.ALBOutput)
	if err != nil {
		d.report.Warn("Could not read load balancer DNS name: %v", err)
		return
	}
	s.ALBDNSName = dns
}

func (d *Deployer) writeRecord(s *Session) {
	rec := NewRecord(s, d.now())

	// Runs that skip Terraform keep the address from the previous record
	if s.Mode == ModeBuildOnly && rec.ALBDNSName == "" {
		if prev, err := LoadRecord(d.fs, d.cfg.RecordFile); err == nil {
			rec.ALBDNSName = prev.ALBDNSName
		}
	}

	if err := SaveRecord(d.fs, rec, d.cfg.RecordFile); err != nil {
		d.report.Warn("Could not write deployment record: %v", err)
		return
	}
	d.log.Debug().Str("path", d.cfg.RecordFile).Msg("deployment record written")
}
