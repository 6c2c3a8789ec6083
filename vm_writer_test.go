package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVMWriter(t *testing.T) {
	var out bytes.Buffer
	w := NewVMWriter(&out)

	w.WriteFunction("Main.main", 2)
	w.WritePush(ConstVMSegment, 7)
	w.WritePop(LocalVMSegment, 1)
	w.WriteArithmetic(ShiftLeftVMOperation)
	w.WriteLabel("WHILE_EXP0")
	w.WriteIf("WHILE_END0")
	w.WriteGoto("WHILE_EXP0")
	w.WriteCall("Math.multiply", 2)
	w.WriteReturn()

	assert.Empty(t, out.String(), "output is buffered until Close")
	require.NoError(t, w.Close())
	assert.Equal(t, `function Main.main 2
push constant 7
pop local 1
shiftleft
label WHILE_EXP0
if-goto WHILE_END0
goto WHILE_EXP0
call Math.multiply 2
return
`, out.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestVMWriterStickyError(t *testing.T) {
	w := NewVMWriter(failingWriter{})
	w.WriteReturn()
	err := w.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, err, w.Err())
}
