package messages

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tendermint/tendermint/crypto/ed25519"
	"github.com/tendermint/tendermint/crypto/tmhash"

	"tuition-node/crypto"
	"tuition-node/modules"
)

var (
	ErrMissingSignature = errors.New("missing signature")
	ErrBadSignature     = errors.New("invalid signature")
)

type AccountMeta struct {
	Key    crypto.Address `json:"key"`
	Signer bool           `json:"signer"`
}

type Instruction struct {
	Opcode   byte          `json:"opcode"`
	Data     []byte        `json:"data"`
	Accounts []AccountMeta `json:"accounts"`
}

type Signature struct {
	Address   crypto.Address `json:"address"`
	Signature []byte         `json:"signature"`
}

// Transaction carries one instruction. Time keeps otherwise identical transactions apart,
// a transaction hash is delivered at most once.
type Transaction struct {
	Instruction Instruction `json:"instruction"`
	Time        int64       `json:"time"`
	Signatures  []Signature `json:"signatures"`
}

func (tx *Transaction) SignBytes() []byte {
	bz, _ := json.Marshal(struct {
		Instruction Instruction `json:"instruction"`
		Time        int64       `json:"time"`
	}{tx.Instruction, tx.Time})
	return bz
}

// Hash identifies the transaction by what its signers signed, signatures excluded.
func (tx *Transaction) Hash() []byte {
	return tmhash.Sum(tx.SignBytes())
}

func (tx *Transaction) Sign(privKeys ...ed25519.PrivKeyEd25519) {
	message := tx.SignBytes()
	for _, privKey := range privKeys {
		tx.Signatures = append(tx.Signatures, Signature{
			Address:   crypto.AddressOf(privKey),
			Signature: crypto.SignED(privKey, message),
		})
	}
}

// Verify checks that every account marked as signer signed the transaction.
func (tx *Transaction) Verify() error {
	message := tx.SignBytes()
	signed := make(map[crypto.Address]bool, len(tx.Signatures))
	for _, signature := range tx.Signatures {
		if !crypto.VerifyED(signature.Address, message, signature.Signature) {
			return fmt.Errorf("%w: %s", ErrBadSignature, signature.Address)
		}
		signed[signature.Address] = true
	}
	for _, meta := range tx.Instruction.Accounts {
		if meta.Signer && !signed[meta.Key] {
			return fmt.Errorf("%w: %s", ErrMissingSignature, meta.Key)
		}
	}
	return nil
}

func (tx *Transaction) Handles() []modules.Handle {
	handles := make([]modules.Handle, len(tx.Instruction.Accounts))
	for i, meta := range tx.Instruction.Accounts {
		handles[i] = modules.Handle{Key: meta.Key, Signer: meta.Signer}
	}
	return handles
}

func Encode(value interface{}) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(data)))
	base64.StdEncoding.Encode(encoded, data)
	return encoded, nil
}

func Decode(encoded []byte, value interface{}) error {
	data := make([]byte, base64.StdEncoding.DecodedLen(len(encoded)))
	n, err := base64.StdEncoding.Decode(data, encoded)
	if err != nil {
		return err
	}
	data = bytes.Trim(data[:n], "\x00")
	return json.Unmarshal(data, value)
}

func DecodeTx(encoded []byte) (*Transaction, error) {
	tx := &Transaction{}
	if err := Decode(encoded, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

type QueryType string

const (
	QueryAccount      QueryType = "QueryAccount"
	QueryProtocol     QueryType = "QueryProtocol"
	QueryInstitution  QueryType = "QueryInstitution"
	QuerySubject      QueryType = "QuerySubject"
	QueryEnrollment   QueryType = "QueryEnrollment"
	QueryMint         QueryType = "QueryMint"
	QueryTokenAccount QueryType = "QueryTokenAccount"
)

type Query struct {
	QrType  QueryType
	Address crypto.Address
}
