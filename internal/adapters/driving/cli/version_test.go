package cli

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	SetVersion("test-version-1.0.0")
	defer func() { version = originalVersion }()

	out, err := execute(t, "version")

	assert.NoError(t, err)
	assert.Contains(t, out, "listingtrail version test-version-1.0.0")
}

func TestVersionCmd_DisplaysDevByDefault(t *testing.T) {
	originalVersion := version
	version = "dev"
	defer func() { version = originalVersion }()

	out, err := execute(t, "version")

	assert.NoError(t, err)
	assert.Contains(t, out, "listingtrail version dev")
}

func TestVersionCmd_SkipsWiring(t *testing.T) {
	_, err := execute(t, "version", "--storage", "nonsense")

	assert.NoError(t, err)
	assert.Nil(t, application)
}

func TestVersionCmd_VerboseShowsPlatform(t *testing.T) {
	out, err := execute(t, "version", "-v")

	assert.NoError(t, err)
	assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)
}
