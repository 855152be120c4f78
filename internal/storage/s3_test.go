package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReturnsNilWhenUnconfigured(t *testing.T) {
	cases := []struct {
		name                                  string
		endpoint, access, secret, bucketName string
	}{
		{"no endpoint", "", "ak", "sk", "b"},
		{"no access key", "https://s3.example.com", "", "sk", "b"},
		{"no secret", "https://s3.example.com", "ak", "", "b"},
		{"no bucket", "https://s3.example.com", "ak", "sk", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := New(tc.endpoint, "fsn1", tc.access, tc.secret, tc.bucketName)
			require.NoError(t, err)
			assert.Nil(t, c)
		})
	}
}

func TestNewConfigured(t *testing.T) {
	c, err := New("https://s3.example.com/", "fsn1", "ak", "sk", "templates")
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, "templates", c.Bucket())
	assert.Equal(t, "https://s3.example.com/templates/blog/templates/emails/welcome.html",
		c.ObjectURL("blog/templates/emails/welcome.html"))
}

func TestInvalidKeysRejectedBeforeRequest(t *testing.T) {
	c, err := New("https://s3.example.com", "fsn1", "ak", "sk", "templates")
	require.NoError(t, err)

	ctx := context.Background()
	for _, key := range []string{"", "/abs/key.html", "blog/../../secret"} {
		assert.Error(t, c.Put(ctx, key, []byte("x")), key)
		assert.Error(t, c.Delete(ctx, key), key)
	}
}
