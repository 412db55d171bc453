package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactKind(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"synapse/api", "api"},
		{"synapse/sequence", "sequence"},
		{"synapse/endpoint/extra", "endpoint"},
		{"lib/", ""},
		{"/api", "api"},
		{"noslash", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ArtifactKind(tt.in))
		})
	}
}

// TestNewPackageView 验证依赖遍历顺序与失败产物过滤
func TestNewPackageView(t *testing.T) {
	p := &Package{
		Name:    "HealthCareCompositeApp",
		Version: "1.0.0",
		Dependencies: []Dependency{
			{Artifact: &Artifact{Name: "HealthcareAPI", Type: "synapse/api"}},
			{Artifact: &Artifact{Name: "", Type: "synapse/sequence"}},
			{Artifact: nil},
			{Artifact: &Artifact{Name: "GrandOakEP", Type: "synapse/endpoint"}},
		},
	}

	view := NewPackageView(p)
	require.NotNil(t, view)
	assert.Equal(t, "HealthCareCompositeApp", view.Name)
	assert.Equal(t, "1.0.0", view.Version)
	assert.Equal(t, []ArtifactView{
		{Name: "HealthcareAPI", Type: "api"},
		{Name: "GrandOakEP", Type: "endpoint"},
	}, view.Artifacts)
}

func TestNewPackageView_NoDependencies(t *testing.T) {
	view := NewPackageView(&Package{Name: "Empty", Version: "1.0.0"})
	require.NotNil(t, view)

	data, err := json.Marshal(view)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Empty","version":"1.0.0","artifacts":[]}`, string(data))
}

func TestNewPackageView_Nil(t *testing.T) {
	assert.Nil(t, NewPackageView(nil))
}

func TestNewPackageList(t *testing.T) {
	pkgs := []*Package{
		{Name: "b-app", Version: "2.0.0"},
		{Name: "a-app", Version: "1.0.0"},
	}

	list := NewPackageList(pkgs)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, []PackageSummary{
		{Name: "b-app", Version: "2.0.0"},
		{Name: "a-app", Version: "1.0.0"},
	}, list.List)

	empty := NewPackageList(nil)
	data, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":0,"list":[]}`, string(data))
}
