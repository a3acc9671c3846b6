// Package dapienv reads project defaults for job submission.
//
// A dapienv file looks like:
//
//	allocation: BCS20003
//	queue: skx-dev
//	archive:
//	    system: designsafe
//	    path: my-archive
//	monitor:
//	    interval: 30s
//	    timeout: 2h
//	tags:
//	    - opensees
package dapienv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the name of dapienv files looked up by Find.
const FileName = "dapienv.yaml"

var ErrInvalidDuration = errors.New("invalid duration")

type DapiEnv struct {
	Allocation string   `yaml:"allocation,omitempty"`
	Queue      string   `yaml:"queue,omitempty"`
	Archive    Archive  `yaml:"archive,omitempty"`
	Monitor    Monitor  `yaml:"monitor,omitempty"`
	Tags       []string `yaml:"tags,omitempty"`
}

type Archive struct {
	// "designsafe" or a TAPIS system id.
	System string `yaml:"system,omitempty"`
	Path   string `yaml:"path,omitempty"`
}

type Monitor struct {
	Interval Duration `yaml:"interval,omitempty"`
	Timeout  Duration `yaml:"timeout,omitempty"`
}

// Duration is time.Duration written as "30s", "2h".
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) IsZero() bool {
	return d == 0
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDuration, s)
	}
	*d = Duration(parsed)
	return nil
}

func New() *DapiEnv {
	return new(DapiEnv)
}

// LoadDapiEnv reads the dapienv file at path.
//
// When the file does not exist, it returns empty DapiEnv without error.
func LoadDapiEnv(path string) (*DapiEnv, error) {
	env := New()

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return env, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(content, env); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return env, nil
}

// Find looks for FileName from dir up to the root directory.
//
// It returns "" when no file is found.
func Find(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if stat, err := os.Stat(candidate); err == nil && !stat.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
