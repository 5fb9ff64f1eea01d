// Package transaction implements the transaction record: inputs that
// reference and authorise spending an existing UTXO, outputs that create
// new ones, and the content-addressed id that binds them together.
package transaction

import (
	"errors"
	"fmt"

	"github.com/riftchain/utxonet/pkg/crypto"
	"github.com/riftchain/utxonet/pkg/keys"
	"github.com/riftchain/utxonet/pkg/types"
	"github.com/riftchain/utxonet/pkg/utxo"
	"github.com/riftchain/utxonet/pkg/wire"
)

// InputLen is the wire size of an Input (spec §6: 40-byte UtxoId, 64-byte
// compact signature).
const InputLen = utxo.IdLen + keys.SignatureLen

// OutputLen is the wire size of an Output; an Output is a UtxoData.
const OutputLen = utxo.DataLen

var (
	// ErrNoInputs is returned when a transaction carries zero inputs.
	ErrNoInputs = errors.New("transaction has no inputs")
	// ErrNoOutputs is returned when a transaction carries zero outputs.
	ErrNoOutputs = errors.New("transaction has no outputs")
	// ErrDoubleSpending is returned when a transaction repeats a UtxoId
	// across two of its own inputs.
	ErrDoubleSpending = errors.New("transaction spends the same utxo twice")
)

// Input references the output it consumes and authorises the spend.
type Input struct {
	UtxoId utxo.Id
	Sig    keys.Signature
}

// Serialize encodes the input as its fixed 104-byte wire record.
func (in Input) Serialize() []byte {
	buf := make([]byte, InputLen)
	copy(buf, in.UtxoId.Serialize())
	copy(buf[utxo.IdLen:], in.Sig.Bytes())
	return buf
}

// DeserializeInput decodes a 104-byte wire record into an Input.
func DeserializeInput(data []byte) (Input, error) {
	if err := wire.Require(data, InputLen, "transaction input"); err != nil {
		return Input{}, err
	}
	id, err := utxo.DeserializeId(data[:utxo.IdLen])
	if err != nil {
		return Input{}, err
	}
	sig, err := keys.ParseSignature(data[utxo.IdLen:InputLen])
	if err != nil {
		return Input{}, err
	}
	return Input{UtxoId: id, Sig: sig}, nil
}

// Output is a UtxoData: it creates a new unspent output owned by Owner.
type Output = utxo.Data

// Transaction is a content-addressed set of inputs and outputs.
type Transaction struct {
	id      types.Hash
	Inputs  []Input
	Outputs []Output
}

// New builds and signs a transaction spending the given utxo ids. Every
// input is signed with sk over the spend-digest, so sk must own every
// referenced utxo.
func New(utxoIds []utxo.Id, outputs []Output, sk *keys.PrivateKey) (*Transaction, error) {
	if len(utxoIds) == 0 {
		return nil, ErrNoInputs
	}
	if len(outputs) == 0 {
		return nil, ErrNoOutputs
	}
	digest := spendDigest(utxoIds, outputs)
	inputs := make([]Input, len(utxoIds))
	for i, id := range utxoIds {
		inputs[i] = Input{UtxoId: id, Sig: sk.Sign(digest)}
	}
	t := &Transaction{Inputs: inputs, Outputs: outputs}
	t.id = t.computeId()
	return t, nil
}

// Id returns the transaction's content-addressed id.
func (t *Transaction) Id() types.Hash {
	return t.id
}

func (t *Transaction) computeId() types.Hash {
	return crypto.Sha256(t.encodeBody())
}

func (t *Transaction) encodeBody() []byte {
	buf := make([]byte, 0, len(t.Inputs)*InputLen+len(t.Outputs)*OutputLen)
	for _, in := range t.Inputs {
		buf = append(buf, in.Serialize()...)
	}
	for _, out := range t.Outputs {
		buf = append(buf, out.Serialize()...)
	}
	return buf
}

// SpendDigest recomputes the digest that every input's signature must
// authenticate: SHA-256 over (input utxo ids ‖ output encodings).
func (t *Transaction) SpendDigest() [32]byte {
	ids := make([]utxo.Id, len(t.Inputs))
	for i, in := range t.Inputs {
		ids[i] = in.UtxoId
	}
	return spendDigest(ids, t.Outputs)
}

func spendDigest(utxoIds []utxo.Id, outputs []Output) [32]byte {
	buf := make([]byte, 0, len(utxoIds)*utxo.IdLen+len(outputs)*OutputLen)
	for _, id := range utxoIds {
		buf = append(buf, id.Serialize()...)
	}
	for _, out := range outputs {
		buf = append(buf, out.Serialize()...)
	}
	return crypto.Sha256(buf)
}

// CheckSelfConsistent enforces the structural invariants of spec §4.6
// steps 1–2: at least one input, at least one output, and no input
// repeating a UtxoId within the same transaction.
func (t *Transaction) CheckSelfConsistent() error {
	if len(t.Inputs) == 0 {
		return ErrNoInputs
	}
	if len(t.Outputs) == 0 {
		return ErrNoOutputs
	}
	seen := make(map[utxo.Id]struct{}, len(t.Inputs))
	for _, in := range t.Inputs {
		if _, ok := seen[in.UtxoId]; ok {
			return ErrDoubleSpending
		}
		seen[in.UtxoId] = struct{}{}
	}
	return nil
}

// SharesUtxoWith reports whether t and other spend at least one common
// UtxoId — the compatibility test used by the mempool and by block
// application to invalidate conflicting pending transactions.
func (t *Transaction) SharesUtxoWith(other *Transaction) bool {
	ids := make(map[utxo.Id]struct{}, len(t.Inputs))
	for _, in := range t.Inputs {
		ids[in.UtxoId] = struct{}{}
	}
	for _, in := range other.Inputs {
		if _, ok := ids[in.UtxoId]; ok {
			return true
		}
	}
	return false
}

// Serialize encodes the full transaction record (spec §6: tag 't', 8-byte
// total size, 8-byte input count, 8-byte output count, records).
func (t *Transaction) Serialize() []byte {
	body := t.encodeBody()
	header := make([]byte, 1+8+8+8)
	header[0] = 't'
	wire.PutUint64(header[1:], uint64(len(header)+len(body)))
	wire.PutUint64(header[9:], uint64(len(t.Inputs)))
	wire.PutUint64(header[17:], uint64(len(t.Outputs)))
	return append(header, body...)
}

// Deserialize decodes a transaction record, including its leading tag
// byte. It returns the transaction and the number of bytes consumed.
func Deserialize(data []byte) (*Transaction, int, error) {
	const headerLen = 1 + 8 + 8 + 8
	if err := wire.Require(data, headerLen, "transaction header"); err != nil {
		return nil, 0, err
	}
	if data[0] != 't' {
		return nil, 0, fmt.Errorf("unexpected transaction tag %q", data[0])
	}
	total := wire.Uint64(data[1:])
	inCount := wire.Uint64(data[9:])
	outCount := wire.Uint64(data[17:])
	if err := wire.Require(data, int(total), "transaction body"); err != nil {
		return nil, 0, err
	}

	offset := headerLen
	inputs := make([]Input, inCount)
	for i := range inputs {
		in, err := DeserializeInput(data[offset:])
		if err != nil {
			return nil, 0, fmt.Errorf("input %d: %w", i, err)
		}
		inputs[i] = in
		offset += InputLen
	}
	outputs := make([]Output, outCount)
	for i := range outputs {
		out, err := utxo.DeserializeData(data[offset:])
		if err != nil {
			return nil, 0, fmt.Errorf("output %d: %w", i, err)
		}
		outputs[i] = out
		offset += OutputLen
	}

	t := &Transaction{Inputs: inputs, Outputs: outputs}
	t.id = t.computeId()
	return t, offset, nil
}
