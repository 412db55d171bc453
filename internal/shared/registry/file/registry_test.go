package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotYAML = `applications:
  - name: HealthCareCompositeApp
    version: 1.0.0
    dependencies:
      - artifact: {name: HealthcareAPI, type: synapse/api}
      - artifact: {type: synapse/sequence}
  - name: StockQuoteApp
    version: 2.1.0
`

func writeSnapshot(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	writeSnapshot(t, path, snapshotYAML)

	pkgs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, pkgs, 2)

	assert.Equal(t, "HealthCareCompositeApp", pkgs[0].Name)
	assert.Equal(t, "1.0.0", pkgs[0].Version)
	require.Len(t, pkgs[0].Dependencies, 2)
	assert.Equal(t, "HealthcareAPI", pkgs[0].Dependencies[0].Artifact.Name)
	assert.Equal(t, "synapse/api", pkgs[0].Dependencies[0].Artifact.Type)
	assert.Empty(t, pkgs[0].Dependencies[1].Artifact.Name)

	assert.Equal(t, "StockQuoteApp", pkgs[1].Name)
	assert.Empty(t, pkgs[1].Dependencies)
}

func TestLoad_JSONSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	writeSnapshot(t, path, `{"applications":[{"name":"a","version":"1"}]}`)

	pkgs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	assert.Equal(t, "a", pkgs[0].Name)
}

func TestLoad_Missing(t *testing.T) {
	pkgs, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, pkgs)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	writeSnapshot(t, path, "applications: [unclosed")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestRegistry_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	reg, err := Open(path, nil)
	require.NoError(t, err)

	pkgs, err := reg.ListPackages(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pkgs)

	writeSnapshot(t, path, snapshotYAML)
	require.NoError(t, reg.Reload())

	pkgs, err = reg.ListPackages(context.Background())
	require.NoError(t, err)
	assert.Len(t, pkgs, 2)
}

func TestRegistry_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	reg, err := Open(path, nil)
	require.NoError(t, err)

	require.NoError(t, reg.Watch(WatcherConfig{Debounce: 20 * time.Millisecond}))
	defer reg.Close()

	writeSnapshot(t, path, snapshotYAML)

	assert.Eventually(t, func() bool {
		pkgs, _ := reg.ListPackages(context.Background())
		return len(pkgs) == 2
	}, 5*time.Second, 20*time.Millisecond)
}
