package main

import (
	"fmt"
	"io"
	"strconv"
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
	InvalidVMOperation VMOperation = ""
	AddVMOperation     VMOperation = "add"
	SubVMOperation     VMOperation = "sub"
	NegVMOperation     VMOperation = "neg"
	EqVMOperation      VMOperation = "eq"
	GtVMOperation      VMOperation = "gt"
	LtVMOperation      VMOperation = "lt"
	AndVMOperation     VMOperation = "and"
	OrVMOperation      VMOperation = "or"
	NotVMOperation     VMOperation = "not"
)

func (op VMOperation) valid() bool {
	switch op {
	case AddVMOperation, SubVMOperation, NegVMOperation, EqVMOperation, GtVMOperation,
		LtVMOperation, AndVMOperation, OrVMOperation, NotVMOperation:
		return true
	}
	return false
}

// VMWriter appends one VM command per line to its output, in call order.
// After the first failed write every further write is dropped and Err
// reports the failure.
type VMWriter struct {
	output io.Writer
	err    error
}

func NewVMWriter(w io.Writer) *VMWriter {
	return &VMWriter{output: w}
}

func (w *VMWriter) Err() error {
	return w.err
}

func (w *VMWriter) WriteCommand(command string) {
	if w.err != nil {
		return
	}
	if _, err := io.WriteString(w.output, command+"\n"); err != nil {
		w.err = fmt.Errorf("writing %q: %w", command, err)
	}
}

func (w *VMWriter) WritePush(segment VMSegmentType, index MachineWord) {
	w.WriteCommand(fmt.Sprintf("push %s %d", segment, index))
}

func (w *VMWriter) WritePop(segment VMSegmentType, index MachineWord) {
	w.WriteCommand(fmt.Sprintf("pop %s %d", segment, index))
}

func (w *VMWriter) WriteArithmetic(operation VMOperation) error {
	if !operation.valid() {
		return fmt.Errorf("unknown arithmetic operation %q", operation)
	}
	w.WriteCommand(string(operation))
	return nil
}

func (w *VMWriter) WriteLabel(label string) {
	w.WriteCommand("label " + label)
}

func (w *VMWriter) WriteGoto(label string) {
	w.WriteCommand("goto " + label)
}

func (w *VMWriter) WriteIf(label string) {
	w.WriteCommand("if-goto " + label)
}

func (w *VMWriter) WriteCall(label string, nargs MachineWord) {
	w.WriteCommand("call " + label + " " + strconv.Itoa(int(nargs)))
}

func (w *VMWriter) WriteFunction(label string, nlocals MachineWord) {
	w.WriteCommand("function " + label + " " + strconv.Itoa(int(nlocals)))
}

func (w *VMWriter) WriteReturn() {
	w.WriteCommand("return")
}
