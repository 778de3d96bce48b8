package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

type PushTrigger struct {
	Branches []string `yaml:"branches,omitempty"`
	Tags     []string `yaml:"tags,omitempty"`
}

type Trigger struct {
	Push        PushTrigger `yaml:"push,omitempty"`
	PullRequest PushTrigger `yaml:"pull_request,omitempty"`
}

type Args map[string]interface{}

type Step struct {
	Name string `yaml:"name,omitempty"`
	If   string `yaml:"if,omitempty"`
	Uses string `yaml:"uses,omitempty"`
	ID   string `yaml:"id,omitempty"`
	Run  string `yaml:"run,omitempty"`
	With Args   `yaml:"with,omitempty"`
	Env  Args   `yaml:"env,omitempty"`
}

type Strategy struct {
	Matrix map[string][]string `yaml:"matrix"`
}

type Job struct {
	RunsOn   string    `yaml:"runs-on"`
	Needs    []string  `yaml:"needs,omitempty"`
	If       string    `yaml:"if,omitempty"`
	Strategy *Strategy `yaml:"strategy,omitempty"`
	Steps    []Step    `yaml:"steps"`
}

type Workflow struct {
	Name string  `yaml:"name"`
	On   Trigger `yaml:"on,omitempty"`
	Jobs map[string]Job
}

// Binary is a command built and attached to tagged releases.
type Binary struct {
	// The name of the executable and of its release artifact.
	Name string

	// The package path relative to the repo root.
	Package string

	// GOOS/GOARCH pairs to cross-compile for.
	Platforms []string
}

const goVersion = "1.18"

func setupSteps() []Step {
	return []Step{{
		Name: "Checkout",
		Uses: "actions/checkout@v3",
	}, {
		Name: "Set up Go",
		Uses: "actions/setup-go@v3",
		With: Args{"go-version": goVersion, "cache": true},
	}}
}

func JobTest() Job {
	return Job{
		RunsOn: "ubuntu-latest",
		Steps: append(setupSteps(), Step{
			Name: "Vet",
			Run:  "go vet ./...",
		}, Step{
			Name: "Test",
			Run:  "go test -race ./...",
		}),
	}
}

func JobRelease(binary *Binary) Job {
	return Job{
		RunsOn:   "ubuntu-latest",
		Needs:    []string{"test"},
		If:       "startsWith(github.ref, 'refs/tags/')",
		Strategy: &Strategy{Matrix: map[string][]string{"platform": binary.Platforms}},
		Steps: append(setupSteps(), Step{
			Name: "Build",
			ID:   "build",
			Run: fmt.Sprintf(`GOOS=${PLATFORM%%/*}
GOARCH=${PLATFORM#*/}
OUT=%s-${GITHUB_REF#refs/tags/}-${GOOS}-${GOARCH}
CGO_ENABLED=0 GOOS=$GOOS GOARCH=$GOARCH go build -o "$OUT" %s
echo "artifact=$OUT" >> "$GITHUB_OUTPUT"`, binary.Name, binary.Package),
			Env: Args{"PLATFORM": "${{ matrix.platform }}"},
		}, Step{
			Name: "Release",
			Uses: "softprops/action-gh-release@v1",
			With: Args{"files": "${{ steps.build.outputs.artifact }}"},
		}),
	}
}

func WorkflowCI(binaries ...*Binary) Workflow {
	jobs := make(map[string]Job, len(binaries)+1)
	jobs["test"] = JobTest()
	for _, binary := range binaries {
		jobs["release-"+binary.Name] = JobRelease(binary)
	}
	return Workflow{
		Name: "ci",
		On: Trigger{
			Push: PushTrigger{
				Branches: []string{"*"},
				Tags:     []string{"v*"},
			},
			PullRequest: PushTrigger{Branches: []string{"*"}},
		},
		Jobs: jobs,
	}
}

func MarshalToWriter(w io.Writer, v interface{}) error {
	yamlEncoder := yaml.NewEncoder(w)
	yamlEncoder.SetIndent(2)
	if err := yamlEncoder.Encode(v); err != nil {
		return fmt.Errorf("marshaling to YAML: %w", err)
	}
	return nil
}

func main() {
	if err := MarshalToWriter(
		os.Stdout,
		WorkflowCI(&Binary{
			Name:    "afs",
			Package: "./cmd/afs",
			Platforms: []string{
				"linux/amd64",
				"linux/arm64",
				"darwin/amd64",
				"darwin/arm64",
			},
		}),
	); err != nil {
		log.Fatalf("marshaling ci workflow: %v", err)
	}
}
