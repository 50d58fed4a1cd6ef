// Package config provides configuration management for the stack-deploy CLI.
//
// It implements the disciplined Viper pattern where Viper stays contained
// in this package and the rest of the codebase receives explicit Config structs.
// Configuration sources are resolved in this order: flags > env > config file > defaults.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides (STACK_DEPLOY_REGION, ...).
const EnvPrefix = "STACK_DEPLOY"

// DefaultProjectName is used when neither the config nor the tfvars file names a project.
const DefaultProjectName = "app"

// ImageNames are the images every deployment builds, in build order.
var ImageNames = []string{"backend", "frontend"}

// Config is the explicit configuration struct
// This is what the rest of the codebase sees
type Config struct {
	TerraformDir string
	TfvarsFile   string
	Placeholders []string
	ProjectName  string
	Region       string
	Images       []Image
	ImageTag     string
	ALBOutput    string
	HealthPath   string
	RecordFile   string
	Tools        ToolConfig
}

// Image is a container image and the directory it is built from
type Image struct {
	Name    string
	Context string
}

// ToolConfig names the external binaries that are invoked
type ToolConfig struct {
	AWS       string
	Docker    string
	Terraform string
}

// readErr holds a config file that exists but could not be read. It is
// reported by Load so that commands not needing config (help) still work.
var readErr error

// Init initializes viper with defaults and config file paths
func Init() {
	InitWithPaths("$HOME/.stack-deploy", ".")
}

// InitWithPaths is Init with explicit config file search paths
func InitWithPaths(paths ...string) {
	// Set config file name and type
	viper.SetConfigName("stack-deploy")
	viper.SetConfigType("yaml")

	// Add config file search paths
	for _, p := range paths {
		viper.AddConfigPath(p)
	}

	setDefaults()

	// Bind environment variables with prefix
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Read config file (ignore if not found)
	readErr = nil
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			readErr = fmt.Errorf("failed to read config file: %w", err)
		}
	}
}

func setDefaults() {
	viper.SetDefault("terraform-dir", "terraform")
	viper.SetDefault("tfvars-file", "terraform.tfvars")
	viper.SetDefault("placeholders", []string{"your-", "CHANGE_ME"})
	viper.SetDefault("project-name", "")
	viper.SetDefault("region", "")
	viper.SetDefault("backend-dir", "./backend")
	viper.SetDefault("frontend-dir", "./frontend")
	viper.SetDefault("image-tag", "latest")
	viper.SetDefault("alb-output", "alb_dns_name")
	viper.SetDefault("health-path", "/health")
	viper.SetDefault("record-file", ".stack-deploy/last-deploy.yaml")
	viper.SetDefault("aws-bin", "aws")
	viper.SetDefault("docker-bin", "docker")
	viper.SetDefault("terraform-bin", "terraform")
}

// Load reads from all sources and returns explicit Config
func Load() (*Config, error) {
	if readErr != nil {
		return nil, readErr
	}

	cfg := &Config{
		TerraformDir: viper.GetString("terraform-dir"),
		TfvarsFile:   viper.GetString("tfvars-file"),
		Placeholders: viper.GetStringSlice("placeholders"),
		ProjectName:  viper.GetString("project-name"),
		Region:       viper.GetString("region"),
		Images: []Image{
			{Name: "backend", Context: viper.GetString("backend-dir")},
			{Name: "frontend", Context: viper.GetString("frontend-dir")},
		},
		ImageTag:   viper.GetString("image-tag"),
		ALBOutput:  viper.GetString("alb-output"),
		HealthPath: viper.GetString("health-path"),
		RecordFile: viper.GetString("record-file"),
		Tools: ToolConfig{
			AWS:       viper.GetString("aws-bin"),
			Docker:    viper.GetString("docker-bin"),
			Terraform: viper.GetString("terraform-bin"),
		},
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures config is sane
func (c *Config) Validate() error {
	if c.TerraformDir == "" {
		return fmt.Errorf("invalid terraform-dir: must not be empty")
	}

	if c.TfvarsFile == "" {
		return fmt.Errorf("invalid tfvars-file: must not be empty")
	}

	if len(c.Placeholders) == 0 {
		return fmt.Errorf("invalid placeholders: at least one marker is required")
	}
	for _, p := range c.Placeholders {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("invalid placeholders: empty marker")
		}
	}

	if len(c.Images) != len(ImageNames) {
		return fmt.Errorf("invalid images: expected %d, got %d", len(ImageNames), len(c.Images))
	}
	for _, img := range c.Images {
		if img.Context == "" {
			return fmt.Errorf("invalid build context for image %s: must not be empty", img.Name)
		}
	}

	if c.ImageTag == "" || strings.ContainsAny(c.ImageTag, ":/ ") {
		return fmt.Errorf("invalid image-tag: %q", c.ImageTag)
	}

	if c.ALBOutput == "" {
		return fmt.Errorf("invalid alb-output: must not be empty")
	}

	if !strings.HasPrefix(c.HealthPath, "/") {
		return fmt.Errorf("invalid health-path: %s (must start with /)", c.HealthPath)
	}

	if c.Tools.AWS == "" || c.Tools.Docker == "" || c.Tools.Terraform == "" {
		return fmt.Errorf("invalid tool paths: aws, docker and terraform binaries must be set")
	}

	return nil
}

// TfvarsPath returns the tfvars location, resolved against the Terraform directory
func (c *Config) TfvarsPath() string {
	if filepath.IsAbs(c.TfvarsFile) {
		return c.TfvarsFile
	}
	return filepath.Join(c.TerraformDir, c.TfvarsFile)
}

// Save writes the resolved config to path
func Save(cfg *Config, path string) error {
	v := viper.New()
	v.Set("terraform-dir", cfg.TerraformDir)
	v.Set("tfvars-file", cfg.TfvarsFile)
	v.Set("placeholders", cfg.Placeholders)
	v.Set("project-name", cfg.ProjectName)
	v.Set("region", cfg.Region)
	for _, img := range cfg.Images {
		v.Set(img.Name+"-dir", img.Context)
	}
	v.Set("image-tag", cfg.ImageTag)
	v.Set("alb-output", cfg.ALBOutput)
	v.Set("health-path", cfg.HealthPath)
	v.Set("record-file", cfg.RecordFile)
	v.Set("aws-bin", cfg.Tools.AWS)
	v.Set("docker-bin", cfg.Tools.Docker)
	v.Set("terraform-bin", cfg.Tools.Terraform)

	if err := v.SafeWriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Display shows current config (for stack-deploy config show)
func Display() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = "(not found)"
	}

	project := cfg.ProjectName
	if project == "" {
		project = "(from tfvars)"
	}
	region := cfg.Region
	if region == "" {
		region = "(auto)"
	}

	return fmt.Sprintf(`Configuration:
  terraform-dir:      %s
  tfvars-file:        %s
  placeholders:       %s
  project-name:       %s
  region:             %s
  image-tag:          %s
  alb-output:         %s
  health-path:        %s
  record-file:        %s

Images:
  backend:            %s
  frontend:           %s

Tools:
  aws:                %s
  docker:             %s
  terraform:          %s

Sources:
  Config file:        %s
  Environment:        %s_*
  Flags:              (per command)
`,
		cfg.TerraformDir,
		cfg.TfvarsPath(),
		strings.Join(cfg.Placeholders, ", "),
		project,
		region,
		cfg.ImageTag,
		cfg.ALBOutput,
		cfg.HealthPath,
		cfg.RecordFile,
		cfg.Images[0].Context,
		cfg.Images[1].Context,
		cfg.Tools.AWS,
		cfg.Tools.Docker,
		cfg.Tools.Terraform,
		configFile,
		EnvPrefix,
	), nil
}
