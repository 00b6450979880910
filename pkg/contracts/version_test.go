package contracts

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()

	assert.Equal(t, Version, info.Version)
	assert.Equal(t, DataFormatVersion, info.DataFormat)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.OS+"/"+info.Architecture)
}

func TestVersionStrings(t *testing.T) {
	assert.False(t, IsPrerelease())
	assert.Equal(t, "icwfixtures v"+Version, GetVersionString(), "release builds carry no suffix")

	full := GetFullVersionString()
	assert.True(t, strings.HasPrefix(full, GetVersionString()+" (data format v1"))
	assert.Contains(t, full, runtime.GOOS)
}
