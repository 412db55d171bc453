package objstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capp-admin/internal/config"
)

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.MinIOConfig
		wantErr string
	}{
		{"缺少 endpoint", config.MinIOConfig{AccessKey: "a", SecretKey: "b"}, "endpoint is required"},
		{"缺少密钥", config.MinIOConfig{Endpoint: "localhost:9000"}, "access_key and secret_key are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestNewClient_DefaultBucket(t *testing.T) {
	c, err := NewClient(config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	require.NoError(t, err)
	assert.Equal(t, "carbonapps", c.Bucket())
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "carbonapps/app_1.0.0.car", ObjectKey("app_1.0.0.car"))
	assert.Equal(t, "carbonapps/app.car", ObjectKey("nested/app.car"))
}

func TestContentType(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"zip 包", []byte("PK\x03\x04\x14\x00\x00\x00\x08\x00"), CarContentType},
		{"纯文本", []byte("payload"), "application/octet-stream"},
		{"空内容", nil, "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContentType(tt.data))
		})
	}
}
