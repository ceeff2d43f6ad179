package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRequiresMatchingTLSPair(t *testing.T) {
	c := &Config{Port: 8080, RedisAddr: "127.0.0.1:6379", JWTSecret: "s", TLSCert: "a"}
	require.Error(t, c.Validate())
}

func TestValidateRequiresAuthSource(t *testing.T) {
	c := &Config{Port: 8080, RedisAddr: "127.0.0.1:6379"}
	require.Error(t, c.Validate())
}

func TestValidateOK(t *testing.T) {
	c := &Config{Port: 8080, RedisAddr: "127.0.0.1:6379", JWTSecret: "s"}
	require.NoError(t, c.Validate())
}

func TestSchemeHTTPSWhenTLSConfigured(t *testing.T) {
	c := &Config{TLSCert: "a", TLSKey: "b"}
	require.Equal(t, "https", c.Scheme())
}
