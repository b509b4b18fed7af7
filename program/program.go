// Package program loads an assembled program: an ordered instruction
// list plus an initial memory image, produced by an external assembler
// and consumed here as a read-only JSON document.
package program

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/m2sim-ooo/insts"
)

// Program is a fully decoded instruction stream plus the initial
// memory image it runs against. The program counter starts at word
// index 0; PC is a word index into Instructions, not a byte address.
type Program struct {
	Instructions []insts.Word
	Memory       []byte
}

// document is the on-disk JSON shape: instructions as a flat mnemonic
// record and the initial memory image base64-encoded.
type document struct {
	Instructions []wordRecord `json:"instructions"`
	Memory       string       `json:"memory"`
}

// wordRecord is the JSON-friendly form of insts.Word: insts.Register
// has unexported fields so it cannot round-trip through
// encoding/json directly, hence register names as strings.
type wordRecord struct {
	Shape string `json:"shape"`
	Op    string `json:"op"`
	Dst   string `json:"dst,omitempty"`
	Src   string `json:"src,omitempty"`
	SrcR  string `json:"src_r,omitempty"`
	Imm   int32  `json:"imm,omitempty"`
}

// Load reads a Program from a JSON file at path.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("program: reading %s: %w", path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("program: parsing %s: %w", path, err)
	}

	memory, err := base64.StdEncoding.DecodeString(doc.Memory)
	if err != nil {
		return nil, fmt.Errorf("program: decoding memory image in %s: %w", path, err)
	}

	words := make([]insts.Word, len(doc.Instructions))
	for i, rec := range doc.Instructions {
		word, err := rec.toWord()
		if err != nil {
			return nil, fmt.Errorf("program: instruction %d in %s: %w", i, path, err)
		}
		words[i] = word
	}

	return &Program{Instructions: words, Memory: memory}, nil
}

func (r wordRecord) toWord() (insts.Word, error) {
	op, err := insts.ParseOp(r.Op)
	if err != nil {
		return insts.Word{}, err
	}

	switch r.Shape {
	case "R":
		dst, err := insts.ParseRegister(r.Dst)
		if err != nil {
			return insts.Word{}, err
		}
		srcL, err := insts.ParseRegister(r.Src)
		if err != nil {
			return insts.Word{}, err
		}
		srcR, err := insts.ParseRegister(r.SrcR)
		if err != nil {
			return insts.Word{}, err
		}
		return insts.R(op, dst, srcL, srcR), nil

	case "I":
		dst, err := insts.ParseRegister(r.Dst)
		if err != nil {
			return insts.Word{}, err
		}
		src, err := insts.ParseRegister(r.Src)
		if err != nil {
			return insts.Word{}, err
		}
		return insts.I(op, dst, src, r.Imm), nil

	case "JI":
		return insts.JI(op, r.Imm), nil

	case "JR":
		reg, err := insts.ParseRegister(r.Src)
		if err != nil {
			return insts.Word{}, err
		}
		return insts.JR(op, reg), nil

	default:
		return insts.Word{}, fmt.Errorf("unknown word shape %q", r.Shape)
	}
}
