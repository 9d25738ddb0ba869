package metadata

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/mslc/ir"
)

type yamlVariable struct {
	Name  string `yaml:"name"`
	Index uint16 `yaml:"index"`
	Type  string `yaml:"type"`
}

type yamlBuffer struct {
	Name    string         `yaml:"name"`
	Members []yamlVariable `yaml:"members"`
}

type yamlDocument struct {
	Kind            string         `yaml:"kind"`
	Version         string         `yaml:"version"`
	Inputs          []yamlVariable `yaml:"inputs,omitempty"`
	Outputs         []yamlVariable `yaml:"outputs,omitempty"`
	Textures        []yamlVariable `yaml:"textures,omitempty"`
	ConstantBuffers []yamlBuffer   `yaml:"constant_buffers,omitempty"`
}

// DumpYAML renders m as a human-readable YAML document.
func DumpYAML(m *Metadata) ([]byte, error) {
	doc := yamlDocument{
		Kind:     m.Kind.String(),
		Version:  fmt.Sprintf("%d.%d", m.Major, m.Minor),
		Inputs:   toYAML(m.Interface.Inputs),
		Outputs:  toYAML(m.Interface.Outputs),
		Textures: toYAML(m.Interface.Textures),
	}
	for _, cb := range m.Interface.ConstantBuffers {
		doc.ConstantBuffers = append(doc.ConstantBuffers, yamlBuffer{
			Name:    cb.Name,
			Members: toYAML(cb.Members),
		})
	}
	return yaml.Marshal(&doc)
}

func toYAML(vars []ir.Variable) []yamlVariable {
	if len(vars) == 0 {
		return nil
	}
	out := make([]yamlVariable, len(vars))
	for i, v := range vars {
		out[i] = yamlVariable{Name: v.Name, Index: v.Index, Type: v.Type.String()}
	}
	return out
}
