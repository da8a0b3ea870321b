package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		EnableAuthorize:     true,
		FailedLoginAttempts: 3,
		DefaultUsername:     "test",
		DefaultPassword:     "test123",
	}
}

func TestAuthenticate_Success(t *testing.T) {
	a := New(func(string, string) (bool, error) { return true, nil }, testConfig())
	assert.NoError(t, a.Authenticate("user", "pass"))
}

func TestAuthenticate_Failure(t *testing.T) {
	a := New(func(string, string) (bool, error) { return false, nil }, testConfig())
	assert.Error(t, a.Authenticate("user", "wrong"))
}

func TestAuthenticate_DefaultCredentials(t *testing.T) {
	config := Config{
		EnableAuthorize:     true,
		FailedLoginAttempts: 0,
		DefaultUsername:     "admin",
		DefaultPassword:     "admin123",
	}
	a := NewDefault(config)

	assert.NoError(t, a.Authenticate("admin", "admin123"))
	assert.Error(t, a.Authenticate("admin", "wrong"))
	assert.Error(t, a.Authenticate("user", "admin123"))
}

func TestAuthenticate_DisabledAuthorizationAlwaysSucceeds(t *testing.T) {
	a := New(func(string, string) (bool, error) { return false, nil }, Config{EnableAuthorize: false})
	assert.NoError(t, a.Authenticate("anyone", "anything"))
}

func TestAuthenticate_EmptyCredentialsRejected(t *testing.T) {
	a := New(func(string, string) (bool, error) { return true, nil }, testConfig())
	assert.Error(t, a.Authenticate("", "pass"))
	assert.Error(t, a.Authenticate("user", ""))
}

func TestLoginAttemptLimit(t *testing.T) {
	config := Config{
		EnableAuthorize:     true,
		FailedLoginAttempts: 2,
		DefaultUsername:     "test",
		DefaultPassword:     "test123",
	}
	a := New(func(string, string) (bool, error) { return false, nil }, config)

	err1 := a.Authenticate("user", "wrong")
	require.Error(t, err1)
	assert.Contains(t, err1.Error(), "1 attempt")

	err2 := a.Authenticate("user", "wrong")
	require.Error(t, err2)
	assert.Contains(t, err2.Error(), "maximum login attempts")

	err3 := a.Authenticate("user", "wrong")
	require.Error(t, err3)
	assert.Contains(t, err3.Error(), "maximum login attempts")
}

func TestSuccessfulLoginResetsAttempts(t *testing.T) {
	config := Config{
		EnableAuthorize:     true,
		FailedLoginAttempts: 2,
		DefaultUsername:     "test",
		DefaultPassword:     "test123",
	}
	succeed := false
	a := New(func(string, string) (bool, error) { return succeed, nil }, config)

	assert.Error(t, a.Authenticate("user", "wrong"))

	succeed = true
	assert.NoError(t, a.Authenticate("user", "correct"))

	succeed = false
	err := a.Authenticate("user", "wrong")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "remaining")
	assert.Error(t, a.Authenticate("user", "wrong"))
}

func TestAuthenticatorFactory(t *testing.T) {
	var f Factory
	config := testConfig()

	created := f.Create(config, func(string, string) (bool, error) { return true, nil })
	assert.NoError(t, created.Authenticate("user", "pass"))

	defaultAuth := f.CreateDefault(config)
	assert.NoError(t, defaultAuth.Authenticate("test", "test123"))
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, VerifyPassword("correct horse battery staple", hash))
	assert.False(t, VerifyPassword("wrong password", hash))
}
