package runner

import (
	"fmt"

	"github.com/terraops-io/terraops/internal/store"
	"gopkg.in/yaml.v3"
)

// BuildspecInput parameterizes the job template. The rendered buildspec is
// attached to the CodeBuild project by the infrastructure description; the
// generator lives here so the artifact keys stay consistent with the store
// package that reads them.
type BuildspecInput struct {
	WorkDir string
}

type buildspecPhase struct {
	Commands []string `yaml:"commands"`
}

type buildspec struct {
	Version string `yaml:"version"`
	Phases  struct {
		Install   buildspecPhase `yaml:"install"`
		PreBuild  buildspecPhase `yaml:"pre_build"`
		Build     buildspecPhase `yaml:"build"`
		PostBuild buildspecPhase `yaml:"post_build"`
	} `yaml:"phases"`
}

// RenderBuildspec produces the CodeBuild job template. The job installs the
// Terraform toolchain, syncs the source tree from S3, initializes, runs the
// one requested operation, and persists result artifacts. Toolchain or init
// failures abort the job before any operation is attempted; apply/destroy
// re-check the approval flag even though the dispatcher already gates them.
func RenderBuildspec(in BuildspecInput) (string, error) {
	workdir := in.WorkDir
	if workdir == "" {
		workdir = "/workspace"
	}

	var spec buildspec
	spec.Version = "0.2"

	spec.Phases.Install.Commands = []string{
		`curl -sSLo /tmp/terraform.zip "https://releases.hashicorp.com/terraform/${TERRAFORM_VERSION}/terraform_${TERRAFORM_VERSION}_linux_amd64.zip"`,
		`unzip -o /tmp/terraform.zip -d /usr/local/bin`,
		`terraform version`,
	}

	spec.Phases.PreBuild.Commands = []string{
		fmt.Sprintf(`mkdir -p %s && cd %s`, workdir, workdir),
		fmt.Sprintf(`SRC="${SOURCE_LOCATION:-s3://${TERRAFORM_BUCKET}/%s}"`, store.DefaultSourcePrefix),
		fmt.Sprintf(`cd %s && aws s3 sync "$SRC" .`, workdir),
		fmt.Sprintf(`cd %s && terraform init -input=false`, workdir),
	}

	spec.Phases.Build.Commands = []string{fmt.Sprintf(`set -e
cd %s
case "$TF_OPERATION" in
  init)
    terraform init -input=false -reconfigure ;;
  plan)
    terraform plan -input=false -out=tfplan
    terraform show -json tfplan > plan.json ;;
  apply)
    if [ "$TF_AUTO_APPROVE" != "true" ]; then
      echo "refusing to apply without TF_AUTO_APPROVE=true"
      exit 1
    fi
    terraform apply -input=false -auto-approve ;;
  destroy)
    if [ "$TF_AUTO_APPROVE" != "true" ]; then
      echo "refusing to destroy without TF_AUTO_APPROVE=true"
      exit 1
    fi
    terraform destroy -input=false -auto-approve ;;
  validate)
    terraform validate ;;
  output)
    terraform output -json > outputs.json ;;
  state)
    terraform state list ;;
  *)
    echo "unknown operation: $TF_OPERATION"
    exit 1 ;;
esac`, workdir)}

	spec.Phases.PostBuild.Commands = []string{fmt.Sprintf(`cd %s
if [ "$CODEBUILD_BUILD_SUCCEEDING" = "1" ]; then
  case "$TF_OPERATION" in
    plan)
      aws s3 cp plan.json "s3://${STATE_BUCKET}/%s" ;;
    apply)
      terraform output -json > outputs.json
      aws s3 cp outputs.json "s3://${STATE_BUCKET}/%s" ;;
    output)
      aws s3 cp outputs.json "s3://${STATE_BUCKET}/%s" ;;
  esac
fi`, workdir, store.PlanKey, store.OutputsKey, store.OutputsKey)}

	data, err := yaml.Marshal(&spec)
	if err != nil {
		return "", fmt.Errorf("failed to render buildspec: %w", err)
	}
	return string(data), nil
}
