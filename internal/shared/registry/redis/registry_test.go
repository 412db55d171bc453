package redis

import (
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	r := NewFromClient(goredis.NewClient(&goredis.Options{Addr: "localhost:0"}), "")
	defer r.Close()

	assert.Equal(t, "capp:registry:apps", r.AppsKey())
	assert.Equal(t, "capp:registry:app:HealthCareCompositeApp", r.AppKey("HealthCareCompositeApp"))

	custom := NewFromClient(goredis.NewClient(&goredis.Options{Addr: "localhost:0"}), "mi-1")
	defer custom.Close()
	assert.Equal(t, "mi-1:apps", custom.AppsKey())
}

func TestDecodePackages(t *testing.T) {
	names := []string{"b-app", "gone", "a-app"}
	docs := []string{
		`{"name":"b-app","version":"2.0.0","dependencies":[{"artifact":{"name":"StockAPI","type":"synapse/api"}}]}`,
		"",
		`{"version":"1.0.0"}`,
	}

	pkgs, err := decodePackages(names, docs)
	require.NoError(t, err)
	require.Len(t, pkgs, 2)

	assert.Equal(t, "b-app", pkgs[0].Name)
	assert.Equal(t, "2.0.0", pkgs[0].Version)
	require.Len(t, pkgs[0].Dependencies, 1)
	assert.Equal(t, "StockAPI", pkgs[0].Dependencies[0].Artifact.Name)

	assert.Equal(t, "a-app", pkgs[1].Name)
	assert.Equal(t, "1.0.0", pkgs[1].Version)
}

func TestDecodePackages_Invalid(t *testing.T) {
	_, err := decodePackages([]string{"x"}, []string{"{not json"})
	assert.ErrorContains(t, err, "decode registry app x")
}
