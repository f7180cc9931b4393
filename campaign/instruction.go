// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package campaign

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

type InstructionKind uint8

const (
	InstructionKindCreate InstructionKind = iota + 1
	InstructionKindDonate
	InstructionKindWithdraw
	InstructionKindClose
)

var instructionNames = map[InstructionKind]string{
	InstructionKindCreate:   "create_campaign",
	InstructionKindDonate:   "donate_to_campaign",
	InstructionKindWithdraw: "withdraw_from_campaign",
	InstructionKindClose:    "close_campaign",
}

func (k InstructionKind) String() string {
	if name, ok := instructionNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

// Discriminator returns the 8 byte prefix identifying the instruction
func (k InstructionKind) Discriminator() [DiscriminatorLength]byte {
	return discriminator("global", k.String())
}

// Instruction is the decoded argument set of one of the four handlers
type Instruction interface {
	Kind() InstructionKind
}

type CreateArgs struct {
	Name         string
	Description  string
	TargetAmount uint64
}

func (CreateArgs) Kind() InstructionKind { return InstructionKindCreate }

type DonateArgs struct {
	Amount uint64
}

func (DonateArgs) Kind() InstructionKind { return InstructionKindDonate }

type WithdrawArgs struct {
	Amount uint64
}

func (WithdrawArgs) Kind() InstructionKind { return InstructionKindWithdraw }

type CloseArgs struct{}

func (CloseArgs) Kind() InstructionKind { return InstructionKindClose }

// EncodeInstruction serializes an instruction as discriminator followed by
// its Borsh encoded arguments
func EncodeInstruction(ix Instruction) ([]byte, error) {
	buf := new(bytes.Buffer)
	disc := ix.Kind().Discriminator()
	buf.Write(disc[:])
	enc := bin.NewBorshEncoder(buf)
	var err error
	switch v := ix.(type) {
	case CreateArgs:
		err = encodeAll(enc, v.Name, v.Description, v.TargetAmount)
	case DonateArgs:
		err = enc.Encode(v.Amount)
	case WithdrawArgs:
		err = enc.Encode(v.Amount)
	case CloseArgs:
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidInstruction, ix)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ix.Kind(), err)
	}
	return buf.Bytes(), nil
}

func encodeAll(enc *bin.Encoder, vals ...any) error {
	for _, val := range vals {
		if err := enc.Encode(val); err != nil {
			return err
		}
	}
	return nil
}

// DecodeInstruction parses instruction data produced by EncodeInstruction
func DecodeInstruction(data []byte) (Instruction, error) {
	if len(data) < DiscriminatorLength {
		return nil, fmt.Errorf(
			"%w: data too short (%d bytes)",
			ErrInvalidInstruction,
			len(data),
		)
	}
	var kind InstructionKind
	for k := range instructionNames {
		disc := k.Discriminator()
		if bytes.Equal(data[:DiscriminatorLength], disc[:]) {
			kind = k
			break
		}
	}
	dec := bin.NewBorshDecoder(data[DiscriminatorLength:])
	var ret Instruction
	var err error
	switch kind {
	case InstructionKindCreate:
		var args CreateArgs
		if err = dec.Decode(&args.Name); err == nil {
			if err = dec.Decode(&args.Description); err == nil {
				err = dec.Decode(&args.TargetAmount)
			}
		}
		ret = args
	case InstructionKindDonate:
		var args DonateArgs
		err = dec.Decode(&args.Amount)
		ret = args
	case InstructionKindWithdraw:
		var args WithdrawArgs
		err = dec.Decode(&args.Amount)
		ret = args
	case InstructionKindClose:
		ret = CloseArgs{}
	default:
		return nil, fmt.Errorf(
			"%w: unknown discriminator %x",
			ErrInvalidInstruction,
			data[:DiscriminatorLength],
		)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidInstruction, kind, err)
	}
	if dec.Remaining() > 0 {
		return nil, fmt.Errorf(
			"%w: %s: %d trailing bytes",
			ErrInvalidInstruction,
			kind,
			dec.Remaining(),
		)
	}
	return ret, nil
}
