package rtf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBlockedDestination(t *testing.T) {
	assert.True(t, IsBlockedDestination("object"))
	assert.True(t, IsBlockedDestination("objemb"))
	assert.False(t, IsBlockedDestination("pict"))
	assert.False(t, IsBlockedDestination("fonttbl"))
}

func TestIsBlockedFieldInstruction(t *testing.T) {
	assert.True(t, IsBlockedFieldInstruction(" INCLUDETEXT \"c:\\\\secrets.txt\""))
	assert.True(t, IsBlockedFieldInstruction("dde server topic"))
	assert.True(t, IsBlockedFieldInstruction("macrobutton AutoOpen"))
	assert.False(t, IsBlockedFieldInstruction("HYPERLINK \"https://example.com\""))
	assert.False(t, IsBlockedFieldInstruction("PAGE"))
}

func TestIsBlockedGenerator(t *testing.T) {
	assert.True(t, IsBlockedGenerator("payload.exe"))
	assert.False(t, IsBlockedGenerator("Microsoft Word 16.0"))
}

func TestIsBlockedTemplate(t *testing.T) {
	assert.True(t, IsBlockedTemplate(`C:\templates\normal.dotm`))
	assert.True(t, IsBlockedTemplate("https://evil.example/x.dotm"))
	assert.False(t, IsBlockedTemplate("Normal"))
}
