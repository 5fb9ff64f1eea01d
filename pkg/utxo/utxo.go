// Package utxo defines the unspent-output record: the id that names an
// output and the data it carries. The set of unspent outputs is kept by
// package pool.
package utxo

import (
	"fmt"

	"github.com/riftchain/utxonet/pkg/keys"
	"github.com/riftchain/utxonet/pkg/types"
	"github.com/riftchain/utxonet/pkg/wire"
)

// IdLen is the wire size of a UtxoId (spec §6: 32-byte txid, 8-byte vout).
const IdLen = 40

// DataLen is the wire size of a UtxoData (spec §6: 4-byte amount, 33-byte
// compressed public key).
const DataLen = 4 + keys.CompressedLen

// ZeroTxid is the producing txid recorded against the initial, genesis-
// assigned balances handed to every node's key at construction (spec §3).
var ZeroTxid types.Hash

// Id identifies an output uniquely: the id of the transaction that
// produced it and its position among that transaction's outputs.
type Id struct {
	Txid types.Hash
	Vout uint64
}

// Serialize encodes the id as its fixed 40-byte wire record.
func (id Id) Serialize() []byte {
	buf := make([]byte, IdLen)
	wire.PutHash(buf, id.Txid)
	wire.PutUint64(buf[32:], id.Vout)
	return buf
}

// DeserializeId decodes a 40-byte wire record into a Id.
func DeserializeId(data []byte) (Id, error) {
	if err := wire.Require(data, IdLen, "utxo id"); err != nil {
		return Id{}, err
	}
	return Id{
		Txid: wire.Hash(data),
		Vout: wire.Uint64(data[32:]),
	}, nil
}

// Data is the payload attached to an id: how much it is worth and who
// is allowed to spend it.
type Data struct {
	Amount uint32
	Owner  *keys.PublicKey
}

// Serialize encodes the data as its fixed 37-byte wire record.
func (d Data) Serialize() []byte {
	buf := make([]byte, DataLen)
	wire.PutUint32(buf, d.Amount)
	copy(buf[4:], d.Owner.Bytes())
	return buf
}

// DeserializeData decodes a 37-byte wire record into a Data.
func DeserializeData(data []byte) (Data, error) {
	if err := wire.Require(data, DataLen, "utxo data"); err != nil {
		return Data{}, err
	}
	owner, err := keys.ParsePublicKey(data[4:DataLen])
	if err != nil {
		return Data{}, fmt.Errorf("utxo data owner: %w", err)
	}
	return Data{
		Amount: wire.Uint32(data),
		Owner:  owner,
	}, nil
}

// Utxo pairs an Id with its Data — one unspent output.
type Utxo struct {
	Id   Id
	Data Data
}

// New builds a Utxo.
func New(id Id, data Data) Utxo {
	return Utxo{Id: id, Data: data}
}
