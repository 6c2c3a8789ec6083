package main

import (
	"bufio"
	"fmt"
	"io"
)

type VMSegmentType string

const (
	InvalidVMSegmentType VMSegmentType = ""
	ConstVMSegment       VMSegmentType = "constant"
	ArgumentVMSegment    VMSegmentType = "argument"
	LocalVMSegment       VMSegmentType = "local"
	StaticVMSegment      VMSegmentType = "static"
	ThisVMSegment        VMSegmentType = "this"
	ThatVMSegment        VMSegmentType = "that"
	PointerVMSegment     VMSegmentType = "pointer"
	TempVMSegment        VMSegmentType = "temp"
)

type VMOperation string

const (
	InvalidVMOperation    VMOperation = ""
	AddVMOperation        VMOperation = "add"
	SubVMOperation        VMOperation = "sub"
	NegVMOperation        VMOperation = "neg"
	EqVMOperation         VMOperation = "eq"
	GtVMOperation         VMOperation = "gt"
	LtVMOperation         VMOperation = "lt"
	AndVMOperation        VMOperation = "and"
	OrVMOperation         VMOperation = "or"
	NotVMOperation        VMOperation = "not"
	ShiftLeftVMOperation  VMOperation = "shiftleft"
	ShiftRightVMOperation VMOperation = "shiftright"
)

// CodeEmitter receives VM instructions one at a time, in program order.
type CodeEmitter interface {
	WritePush(segment VMSegmentType, index MachineWord)
	WritePop(segment VMSegmentType, index MachineWord)
	WriteArithmetic(operation VMOperation)
	WriteLabel(label string)
	WriteGoto(label string)
	WriteIf(label string)
	WriteCall(name string, nargs MachineWord)
	WriteFunction(name string, nlocals MachineWord)
	WriteReturn()
}

// VMWriter serializes instructions as VM text, one per line. The first write
// error sticks and is reported by Close.
type VMWriter struct {
	output *bufio.Writer
	err    error
}

func NewVMWriter(w io.Writer) *VMWriter {
	return &VMWriter{output: bufio.NewWriter(w)}
}

func (w *VMWriter) WriteCommand(format string, args ...interface{}) {
	if w.err != nil {
		return
	}
	if _, err := fmt.Fprintf(w.output, format, args...); err != nil {
		w.err = err
		return
	}
	w.err = w.output.WriteByte('\n')
}

func (w *VMWriter) WritePush(segment VMSegmentType, index MachineWord) {
	w.WriteCommand("push %s %d", segment, index)
}

func (w *VMWriter) WritePop(segment VMSegmentType, index MachineWord) {
	w.WriteCommand("pop %s %d", segment, index)
}

func (w *VMWriter) WriteArithmetic(operation VMOperation) {
	w.WriteCommand("%s", operation)
}

func (w *VMWriter) WriteLabel(label string) {
	w.WriteCommand("label %s", label)
}

func (w *VMWriter) WriteGoto(label string) {
	w.WriteCommand("goto %s", label)
}

func (w *VMWriter) WriteIf(label string) {
	w.WriteCommand("if-goto %s", label)
}

func (w *VMWriter) WriteCall(name string, nargs MachineWord) {
	w.WriteCommand("call %s %d", name, nargs)
}

func (w *VMWriter) WriteFunction(name string, nlocals MachineWord) {
	w.WriteCommand("function %s %d", name, nlocals)
}

func (w *VMWriter) WriteReturn() {
	w.WriteCommand("return")
}

func (w *VMWriter) Err() error {
	return w.err
}

// Close flushes buffered output. It does not close the underlying writer.
func (w *VMWriter) Close() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.output.Flush()
	return w.err
}

type discardEmitter struct{}

func (discardEmitter) WritePush(VMSegmentType, MachineWord) {}
func (discardEmitter) WritePop(VMSegmentType, MachineWord)  {}
func (discardEmitter) WriteArithmetic(VMOperation)          {}
func (discardEmitter) WriteLabel(string)                    {}
func (discardEmitter) WriteGoto(string)                     {}
func (discardEmitter) WriteIf(string)                       {}
func (discardEmitter) WriteCall(string, MachineWord)        {}
func (discardEmitter) WriteFunction(string, MachineWord)    {}
func (discardEmitter) WriteReturn()                         {}
