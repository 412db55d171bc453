package deploydir

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDir(t *testing.T) *Dir {
	t.Helper()
	d := New(t.TempDir())
	require.NoError(t, d.Ensure())
	return d
}

func TestNew_Layout(t *testing.T) {
	d := New("/opt/mi")
	assert.Equal(t, filepath.Join("/opt/mi", "repository", "deployment", "server", "carbonapps"), d.Path())
}

func TestValidFileName(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		wantErr bool
	}{
		{"合法文件名", "SampleApp_1.0.0.car", false},
		{"空文件名", "", true},
		{"扩展名错误", "SampleApp.zip", true},
		{"扩展名大小写", "SampleApp.CAR", true},
		{"路径穿越", "../SampleApp.car", true},
		{"子目录", "sub/SampleApp.car", true},
		{"反斜杠", `..\SampleApp.car`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidFileName(tt.file)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidFileName), "err = %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestWrite_Overwrites(t *testing.T) {
	d := newTestDir(t)

	require.NoError(t, d.Write("app.car", []byte("v1")))
	require.NoError(t, d.Write("app.car", []byte("v2")))

	data, err := os.ReadFile(filepath.Join(d.Path(), "app.car"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestWrite_RejectsInvalidName(t *testing.T) {
	d := newTestDir(t)

	err := d.Write("../escape.car", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidFileName)
	_, statErr := os.Stat(filepath.Join(filepath.Dir(d.Path()), "escape.car"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestWrite_MissingDirectory(t *testing.T) {
	d := New(t.TempDir())
	err := d.Write("app.car", []byte("x"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidFileName)
}

func TestMatch(t *testing.T) {
	d := newTestDir(t)
	for _, name := range []string{"foo_1.0.0.car", "barfoo.car", "foo.txt", "other.car"} {
		require.NoError(t, os.WriteFile(filepath.Join(d.Path(), name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(d.Path(), "foo_dir.car"), 0755))

	names, err := d.Match("foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"barfoo.car", "foo_1.0.0.car"}, names)

	names, err = d.Match("missing")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMatch_MissingDirectory(t *testing.T) {
	d := New(t.TempDir())
	names, err := d.Match("foo")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRemove(t *testing.T) {
	d := newTestDir(t)
	require.NoError(t, d.Write("app.car", []byte("x")))

	require.NoError(t, d.Remove("app.car"))
	_, err := os.Stat(filepath.Join(d.Path(), "app.car"))
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, d.Remove("app.car"))
}
