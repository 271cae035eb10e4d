package descriptions

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetToolDescription(t *testing.T) {
	for _, name := range GetAllToolNames() {
		desc := GetToolDescription(name)
		assert.NotEmpty(t, desc, name)
		assert.True(t, strings.Contains(desc, "**When to use:**"), name)
	}
	assert.Equal(t, "Tool description not available", GetToolDescription("pdf_read_file"))
}

func TestGetAllToolNames(t *testing.T) {
	names := GetAllToolNames()
	assert.Len(t, names, 8)
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, GeneratePDF)
	assert.Contains(t, names, DeleteDraft)
}
