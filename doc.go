// Package stackdeploy provides the stack-deploy CLI, a thin orchestration
// layer over the AWS CLI, Docker and Terraform.
//
// It applies the Terraform stack, builds the backend and frontend container
// images, and pushes them to the ECR registry the stack creates.
//
// # Installation
//
//	go install github.com/blackwell-systems/stack-deploy/cmd/stack-deploy@latest
//
// # Quick Start
//
//	cp terraform/terraform.tfvars.example terraform/terraform.tfvars
//	$EDITOR terraform/terraform.tfvars
//	stack-deploy                 # full deployment
//	stack-deploy --infra-only    # terraform only
//	stack-deploy --build-only    # images only
//	stack-deploy status
//
// # Configuration
//
// Settings resolve in this order: flags > STACK_DEPLOY_* environment >
// stack-deploy.yaml > defaults. A .env file is loaded first when present.
//
// # License
//
// Apache 2.0 - See LICENSE file for details.
package stackdeploy
