package seed

import (
	_ "embed"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoDataset []byte

type Building struct {
	Address   string  `yaml:"address"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

type Activity struct {
	Name   string `yaml:"name"`
	Parent string `yaml:"parent"`
}

// Organization refers to its building by address and to activities by name.
type Organization struct {
	Name       string   `yaml:"name"`
	Building   string   `yaml:"building"`
	Phones     []string `yaml:"phones"`
	Activities []string `yaml:"activities"`
}

type Dataset struct {
	Buildings     []Building     `yaml:"buildings"`
	Activities    []Activity     `yaml:"activities"`
	Organizations []Organization `yaml:"organizations"`
}

// Demo returns the bundled demo dataset.
func Demo() (*Dataset, error) {
	return parse(demoDataset)
}

func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read dataset %s", path)
	}
	return parse(data)
}

func parse(data []byte) (*Dataset, error) {
	var dataset Dataset
	if err := yaml.Unmarshal(data, &dataset); err != nil {
		return nil, errors.Wrap(err, "failed to parse dataset")
	}
	if err := dataset.Validate(); err != nil {
		return nil, err
	}
	return &dataset, nil
}

// Validate checks references: parents are declared before their children, and every
// organization names a declared building and declared activities.
func (d *Dataset) Validate() error {
	addresses := make(map[string]struct{}, len(d.Buildings))
	for _, b := range d.Buildings {
		addresses[b.Address] = struct{}{}
	}

	activities := make(map[string]struct{}, len(d.Activities))
	for _, a := range d.Activities {
		if a.Parent != "" {
			if _, ok := activities[a.Parent]; !ok {
				return errors.Errorf("activity %q references parent %q before it is declared", a.Name, a.Parent)
			}
		}
		activities[a.Name] = struct{}{}
	}

	for _, o := range d.Organizations {
		if _, ok := addresses[o.Building]; !ok {
			return errors.Errorf("organization %q references unknown building %q", o.Name, o.Building)
		}
		for _, name := range o.Activities {
			if _, ok := activities[name]; !ok {
				return errors.Errorf("organization %q references unknown activity %q", o.Name, name)
			}
		}
	}
	return nil
}
