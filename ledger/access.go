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

package ledger

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blinklabs-io/crowdfund/campaign"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// MaxMessageAccounts bounds the account list of a message
const MaxMessageAccounts = 8

var ErrSignerKeyMismatch = errors.New("private key does not match message signer")

// Signer is the authenticated identity of an instruction. The zero value
// authorizes nothing; a Signer is only obtained from Authenticate or
// TrustedSigner.
type Signer struct {
	key solana.PublicKey
}

// TrustedSigner returns a Signer for an identity that the caller has already
// authenticated by other means
func TrustedSigner(key solana.PublicKey) Signer {
	return Signer{key: key}
}

func (s Signer) PublicKey() solana.PublicKey {
	return s.key
}

func (s Signer) IsZero() bool {
	return s.key.IsZero()
}

// Is reports whether the signer holds the given identity
func (s Signer) Is(key solana.PublicKey) bool {
	return !s.IsZero() && s.key.Equals(key)
}

func (s Signer) String() string {
	return s.key.String()
}

// Message is the signed portion of a transaction. Nonce keeps otherwise
// identical messages from producing the same signature.
type Message struct {
	Accounts  []solana.PublicKey
	Data      []byte
	ProgramID solana.PublicKey
	Signer    solana.PublicKey
	Nonce     uint64
}

func (m *Message) MarshalWithEncoder(encoder *bin.Encoder) error {
	if len(m.Accounts) > MaxMessageAccounts {
		return fmt.Errorf("too many accounts: %d", len(m.Accounts))
	}
	if err := encoder.WriteBytes(m.ProgramID[:], false); err != nil {
		return err
	}
	if err := encoder.WriteBytes(m.Signer[:], false); err != nil {
		return err
	}
	if err := encoder.WriteUint32(
		uint32(len(m.Accounts)), //nolint:gosec // bounded above
		binary.LittleEndian,
	); err != nil {
		return err
	}
	for _, account := range m.Accounts {
		if err := encoder.WriteBytes(account[:], false); err != nil {
			return err
		}
	}
	if err := encoder.WriteBytes(m.Data, true); err != nil {
		return err
	}
	return encoder.WriteUint64(m.Nonce, binary.LittleEndian)
}

func (m *Message) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	if err := readPublicKey(decoder, &m.ProgramID); err != nil {
		return err
	}
	if err := readPublicKey(decoder, &m.Signer); err != nil {
		return err
	}
	count, err := decoder.ReadUint32(binary.LittleEndian)
	if err != nil {
		return err
	}
	if count > MaxMessageAccounts {
		return fmt.Errorf("too many accounts: %d", count)
	}
	m.Accounts = make([]solana.PublicKey, count)
	for i := range m.Accounts {
		if err := readPublicKey(decoder, &m.Accounts[i]); err != nil {
			return err
		}
	}
	if m.Data, err = decoder.ReadByteSlice(); err != nil {
		return err
	}
	m.Nonce, err = decoder.ReadUint64(binary.LittleEndian)
	return err
}

func readPublicKey(decoder *bin.Decoder, dest *solana.PublicKey) error {
	buf, err := decoder.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(dest[:], buf)
	return nil
}

// MarshalBinary returns the bytes covered by the transaction signature
func (m *Message) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := m.MarshalWithEncoder(bin.NewBorshEncoder(buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *Message) UnmarshalBinary(data []byte) error {
	decoder := bin.NewBorshDecoder(data)
	if err := m.UnmarshalWithDecoder(decoder); err != nil {
		return err
	}
	if decoder.Remaining() > 0 {
		return fmt.Errorf("%d trailing bytes", decoder.Remaining())
	}
	return nil
}

// Instruction decodes the instruction carried in the message data
func (m *Message) Instruction() (campaign.Instruction, error) {
	return campaign.DecodeInstruction(m.Data)
}

type Transaction struct {
	Message   Message
	Signature solana.Signature
}

// NewMessage builds the message for an instruction
func NewMessage(
	programID solana.PublicKey,
	signer solana.PublicKey,
	accounts []solana.PublicKey,
	ix campaign.Instruction,
	nonce uint64,
) (*Message, error) {
	data, err := campaign.EncodeInstruction(ix)
	if err != nil {
		return nil, err
	}
	return &Message{
		ProgramID: programID,
		Signer:    signer,
		Accounts:  accounts,
		Data:      data,
		Nonce:     nonce,
	}, nil
}

// SignTransaction signs msg with the private key of its signer
func SignTransaction(
	msg *Message,
	key solana.PrivateKey,
) (*Transaction, error) {
	if !key.PublicKey().Equals(msg.Signer) {
		return nil, ErrSignerKeyMismatch
	}
	payload, err := msg.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	sig, err := key.Sign(payload)
	if err != nil {
		return nil, fmt.Errorf("sign message: %w", err)
	}
	return &Transaction{
		Message:   *msg,
		Signature: sig,
	}, nil
}

// Authenticate verifies the transaction signature against the message signer
func Authenticate(tx *Transaction) (Signer, error) {
	if tx == nil || tx.Message.Signer.IsZero() {
		return Signer{}, campaign.ErrInvalidSignature
	}
	payload, err := tx.Message.MarshalBinary()
	if err != nil {
		return Signer{}, fmt.Errorf("%w: %w", campaign.ErrInvalidSignature, err)
	}
	if !tx.Signature.Verify(tx.Message.Signer, payload) {
		return Signer{}, campaign.ErrInvalidSignature
	}
	return Signer{key: tx.Message.Signer}, nil
}

// MarshalBinary encodes the signature followed by the message
func (t *Transaction) MarshalBinary() ([]byte, error) {
	payload, err := t.Message.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(t.Signature[:], payload...), nil
}

func (t *Transaction) UnmarshalBinary(data []byte) error {
	if len(data) < solana.SignatureLength {
		return fmt.Errorf("transaction too short: %d bytes", len(data))
	}
	copy(t.Signature[:], data[:solana.SignatureLength])
	return t.Message.UnmarshalBinary(data[solana.SignatureLength:])
}
