// Package tools provides the registry of external folding engines.
// Engines share the RNAfold command-line contract (FASTA on stdin,
// dot-bracket result line on stdout) and differ in binary path and
// extra invocation flags. Deployments can override or extend the
// built-in entries with a YAML file.
package tools

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrUnknownEngine is returned when an engine name is not registered.
var ErrUnknownEngine = errors.New("tools: unknown engine")

// DefaultEngine is the engine used when a request does not name one.
const DefaultEngine = "rnafold"

// Engine describes one external folding tool.
type Engine struct {
	// Name identifies the engine in requests and config.
	Name string `yaml:"name"`
	// Bin is the executable path, or a bare name resolved via PATH.
	Bin string `yaml:"bin"`
	// Args are extra invocation flags appended to the fixed set.
	Args []string `yaml:"args,omitempty"`
}

// registryFile is the on-disk YAML shape.
type registryFile struct {
	Engines []Engine `yaml:"engines"`
}

// Registry holds the known folding engines.
type Registry struct {
	engines map[string]Engine
}

// Default returns a registry with the built-in RNAfold entry.
func Default() *Registry {
	return &Registry{
		engines: map[string]Engine{
			DefaultEngine: {Name: DefaultEngine, Bin: "RNAfold"},
		},
	}
}

// Load reads engine definitions from a YAML file and merges them over
// the built-in defaults. Entries with an existing name override the
// default for that name.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from config
	if err != nil {
		return nil, fmt.Errorf("tools: read registry: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("tools: parse registry: %w", err)
	}

	reg := Default()
	for _, e := range file.Engines {
		if e.Name == "" || e.Bin == "" {
			return nil, fmt.Errorf("tools: engine entry requires name and bin")
		}
		reg.engines[e.Name] = e
	}
	return reg, nil
}

// Find returns the engine registered under name. An empty name selects
// the default engine.
func (r *Registry) Find(name string) (Engine, error) {
	if name == "" {
		name = DefaultEngine
	}
	e, ok := r.engines[name]
	if !ok {
		return Engine{}, fmt.Errorf("%w: %s", ErrUnknownEngine, name)
	}
	return e, nil
}

// SetBin replaces the binary path of a registered engine. Unknown
// names are ignored.
func (r *Registry) SetBin(name, bin string) {
	if e, ok := r.engines[name]; ok && bin != "" {
		e.Bin = bin
		r.engines[name] = e
	}
}

// Names lists the registered engine names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
