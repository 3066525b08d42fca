package translate

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("cpu halted", From("cpu halted"))
	assert.Equal("line 7 'JMP' operand count", From("line %d '%v' %v", 7, "JMP", "operand count"))
}

func TestFprintf(t *testing.T) {
	assert := assert.New(t)

	buf := &bytes.Buffer{}
	n, err := Fprintf(buf, "Instructions: %d\n", 42)
	assert.NoError(err)
	assert.Equal(buf.Len(), n)
	assert.Equal("Instructions: 42\n", buf.String())
}
