package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/mslc/ir"
)

func TestDumpYAMLDocument(t *testing.T) {
	out, err := DumpYAML(sample())
	require.NoError(t, err)

	var doc yamlDocument
	require.NoError(t, yaml.Unmarshal(out, &doc))

	assert.Equal(t, "pixel", doc.Kind)
	assert.Equal(t, "1.0", doc.Version)
	assert.Equal(t, []yamlVariable{
		{Name: "position", Index: 0, Type: "float4"},
		{Name: "uv", Index: 1, Type: "float2"},
	}, doc.Inputs)
	assert.Equal(t, []yamlVariable{{Name: "albedo", Index: 2, Type: "texture2d"}}, doc.Textures)
	require.Len(t, doc.ConstantBuffers, 2)
	assert.Equal(t, "Material", doc.ConstantBuffers[0].Name)
	assert.Equal(t, "float4x4", doc.ConstantBuffers[0].Members[1].Type)
}

func TestDumpYAMLOmitsEmpty(t *testing.T) {
	out, err := DumpYAML(New(ir.KindVertex, ir.Interface{}))
	require.NoError(t, err)
	assert.Equal(t, "kind: vertex\nversion: \"1.0\"\n", string(out))
}
