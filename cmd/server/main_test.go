package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeUIURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:8080/", makeUIURL("0.0.0.0:8080"))
	assert.Equal(t, "http://127.0.0.1:9000/", makeUIURL(":9000"))
	assert.Equal(t, "http://localhost:81/", makeUIURL("localhost:81"))
	assert.Equal(t, "http://weird/", makeUIURL(" weird "))
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("SAMMON_MAX_JOBS", "7")
	t.Setenv("SAMMON_ADDR", "")
	assert.Equal(t, 7, envInt("SAMMON_MAX_JOBS", 2))
	assert.Equal(t, "127.0.0.1:1", envStr("SAMMON_ADDR", "127.0.0.1:1"))

	t.Setenv("SAMMON_MAX_JOBS", "many")
	assert.Equal(t, 2, envInt("SAMMON_MAX_JOBS", 2))
}
