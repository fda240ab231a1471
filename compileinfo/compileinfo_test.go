package compileinfo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	b := BuildInfo{Module: "github.com/carbocation/snpmix", Version: "(devel)", GoVersion: "go1.21.5", Commit: "abc123", Modified: true}

	s := b.String()
	assert.True(t, strings.HasPrefix(s, "github.com/carbocation/snpmix (devel) built with go1.21.5 at commit abc123"))
	assert.Contains(t, s, "modified after that commit")
	assert.Len(t, b.Fields(), 6)
}

func TestGet(t *testing.T) {
	// Test binaries carry build info, but not necessarily VCS settings.
	assert.NotEmpty(t, Get().GoVersion)
}
