// Package bytecode defines the instruction encoding shared by the compiler
// and the VM: opcode bytes, inline operand widths, and the constant pool.
// Grounded on the teacher's compiler/code.go (byte-slice Instructions,
// OpCodeDefinition{Name,OperandWidths}, big-endian MakeInstruction), expanded
// to the full opcode set of spec.md §4.1.
package bytecode

import (
	"encoding/binary"
	"fmt"
)

type Opcode byte

type Instructions []byte

const (
	// Constants & literals
	OpConstant Opcode = iota
	OpNull
	OpTrue
	OpFalse

	// Variables
	OpGetLocal
	OpSetLocal
	OpGetGlobal
	OpSetGlobal

	// Closures
	OpMakeClosure
	OpGetUpvalue
	OpSetUpvalue

	// Arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNegate

	// Comparison
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual

	// Logic
	OpNot

	// Control flow
	OpJump
	OpJumpIfFalse
	OpLoop

	// Functions
	OpCall
	OpReturn

	// Arrays
	OpArray
	OpGetIndex
	OpSetIndex

	// Stack
	OpPop
	OpDup

	// Pattern-matching primitives
	OpIsOptionSome
	OpIsOptionNone
	OpIsResultOk
	OpIsResultErr
	OpExtractOptionValue
	OpExtractResultValue
	OpIsArray
	OpGetArrayLen

	// Terminator
	OpHalt
)

// OpCodeDefinition names an opcode and the byte width of each of its inline
// operands, in stream order.
type OpCodeDefinition struct {
	Name          string
	OperandWidths []int
}

var definitions = map[Opcode]*OpCodeDefinition{
	OpConstant: {"Constant", []int{2}},
	OpNull:     {"Null", nil},
	OpTrue:     {"True", nil},
	OpFalse:    {"False", nil},

	OpGetLocal:  {"GetLocal", []int{2}},
	OpSetLocal:  {"SetLocal", []int{2}},
	OpGetGlobal: {"GetGlobal", []int{2}},
	OpSetGlobal: {"SetGlobal", []int{2}},

	OpMakeClosure: {"MakeClosure", []int{2, 2}},
	OpGetUpvalue:  {"GetUpvalue", []int{2}},
	OpSetUpvalue:  {"SetUpvalue", []int{2}},

	OpAdd:    {"Add", nil},
	OpSub:    {"Sub", nil},
	OpMul:    {"Mul", nil},
	OpDiv:    {"Div", nil},
	OpMod:    {"Mod", nil},
	OpNegate: {"Negate", nil},

	OpEqual:        {"Equal", nil},
	OpNotEqual:     {"NotEqual", nil},
	OpLess:         {"Less", nil},
	OpLessEqual:    {"LessEqual", nil},
	OpGreater:      {"Greater", nil},
	OpGreaterEqual: {"GreaterEqual", nil},

	OpNot: {"Not", nil},

	OpJump:        {"Jump", []int{2}},
	OpJumpIfFalse: {"JumpIfFalse", []int{2}},
	OpLoop:        {"Loop", []int{2}},

	OpCall:   {"Call", []int{1}},
	OpReturn: {"Return", nil},

	OpArray:    {"Array", []int{2}},
	OpGetIndex: {"GetIndex", nil},
	OpSetIndex: {"SetIndex", nil},

	OpPop: {"Pop", nil},
	OpDup: {"Dup", nil},

	OpIsOptionSome:       {"IsOptionSome", nil},
	OpIsOptionNone:       {"IsOptionNone", nil},
	OpIsResultOk:         {"IsResultOk", nil},
	OpIsResultErr:        {"IsResultErr", nil},
	OpExtractOptionValue: {"ExtractOptionValue", nil},
	OpExtractResultValue: {"ExtractResultValue", nil},
	OpIsArray:            {"IsArray", nil},
	OpGetArrayLen:        {"GetArrayLen", nil},

	OpHalt: {"Halt", nil},
}

func Get(op Opcode) (*OpCodeDefinition, error) {
	def, ok := definitions[op]
	if !ok {
		return nil, fmt.Errorf("bytecode: opcode %d undefined", op)
	}
	return def, nil
}

// MakeInstruction encodes an opcode plus operands (big-endian, 1/2-byte
// widths per the opcode's definition) into a single instruction.
//
// Jump offsets (Jump/JumpIfFalse/Loop) are encoded as signed 16-bit values
// via their unsigned bit pattern; ReadUint16 / int16 conversion at decode
// time recovers the sign (spec.md §4.1: "signed 16-bit jump offset").
func MakeInstruction(op Opcode, operands ...int) []byte {
	def, err := Get(op)
	if err != nil {
		return []byte{}
	}

	length := 1
	for _, w := range def.OperandWidths {
		length += w
	}
	instruction := make([]byte, length)
	instruction[0] = byte(op)

	offset := 1
	for i, width := range def.OperandWidths {
		o := operands[i]
		switch width {
		case 1:
			instruction[offset] = byte(o)
		case 2:
			binary.BigEndian.PutUint16(instruction[offset:], uint16(int16(o)))
		}
		offset += width
	}
	return instruction
}

// PutInt16 overwrites the 2-byte operand at ins[offset:] — used by the
// compiler to back-patch a jump placeholder once its target is known.
func PutInt16(ins Instructions, offset int, v int16) {
	binary.BigEndian.PutUint16(ins[offset:], uint16(v))
}

// ReadUint16 decodes a big-endian u16 operand at ins[offset:].
func ReadUint16(ins Instructions, offset int) uint16 {
	return binary.BigEndian.Uint16(ins[offset:])
}

// ReadInt16 decodes a big-endian signed 16-bit jump offset at ins[offset:].
func ReadInt16(ins Instructions, offset int) int16 {
	return int16(binary.BigEndian.Uint16(ins[offset:]))
}

// ReadUint8 decodes a single-byte operand at ins[offset].
func ReadUint8(ins Instructions, offset int) uint8 {
	return ins[offset]
}
