package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinaryVersionDefault(t *testing.T) {
	assert.Equal(t, "dev", BinaryVersion)
}

func TestVersionPrefersLdflags(t *testing.T) {
	saved := BinaryVersion
	t.Cleanup(func() { BinaryVersion = saved })

	BinaryVersion = "v1.4.0"
	assert.Equal(t, "v1.4.0", Version())

	BinaryVersion = "dev"
	if mv := ModuleVersion(); mv != "" {
		assert.Equal(t, mv, Version())
	} else {
		assert.Equal(t, "dev", Version())
	}
}

func TestModuleVersionSkipsDevel(t *testing.T) {
	assert.NotEqual(t, "(devel)", ModuleVersion())
}
