package modules

/*
Ledger keeps every account of the chain in a tm-db database.
Writes of the block being executed are kept in memory until Commit.
Each transaction runs on a Cache on top of the ledger, its writes reach the block only if the transaction succeeds.
*/

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/tendermint/tendermint/crypto/merkle"
	"github.com/tendermint/tendermint/crypto/tmhash"
	dbm "github.com/tendermint/tm-db"

	"tuition-node/crypto"
)

var (
	accountPrefix = []byte("acct/")
	historyPrefix = []byte("hist/")
	txPrefix      = []byte("tx/")
	heightKey     = []byte("meta/height")
	appHashKey    = []byte("meta/apphash")
)

func accountKey(address crypto.Address) []byte {
	return append(append([]byte(nil), accountPrefix...), address[:]...)
}

// historyKey orders the versions of an account by the height that wrote them.
func historyKey(address crypto.Address, height int64) []byte {
	key := make([]byte, 0, len(historyPrefix)+crypto.AddressSize+8)
	key = append(append(key, historyPrefix...), address[:]...)
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, uint64(height))
	return append(key, bz...)
}

func txKey(hash []byte) []byte {
	return append(append([]byte(nil), txPrefix...), hash...)
}

// ------------------------------------------------------------------------------------------------------------------- //
// ACCOUNT

type Account struct {
	Owner    crypto.Address
	Lamports uint64
	Data     []byte
}

func (account *Account) IsEmpty() bool {
	return account == nil || (account.Lamports == 0 && len(account.Data) == 0)
}

func (account *Account) OwnedBy(program crypto.Address) bool {
	return account != nil && account.Owner == program
}

func (account *Account) encode() []byte {
	data := make([]byte, crypto.AddressSize+8, crypto.AddressSize+8+len(account.Data))
	copy(data, account.Owner[:])
	le.PutUint64(data[crypto.AddressSize:], account.Lamports)
	return append(data, account.Data...)
}

func decodeAccount(data []byte) (*Account, error) {
	if len(data) < crypto.AddressSize+8 {
		return nil, wrap(ErrInvalidAccountPayload, "%d bytes", len(data))
	}
	return &Account{
		Owner:    readAddress(data, 0),
		Lamports: le.Uint64(data[crypto.AddressSize:]),
		Data:     append([]byte(nil), data[crypto.AddressSize+8:]...),
	}, nil
}

func (account *Account) clone() *Account {
	if account == nil {
		return nil
	}
	return &Account{Owner: account.Owner, Lamports: account.Lamports, Data: append([]byte(nil), account.Data...)}
}

// ------------------------------------------------------------------------------------------------------------------- //
// LEDGER

type Ledger struct {
	db         dbm.DB
	pending    map[crypto.Address]*Account // written at deliverTx, flushed at commit
	pendingTxs map[string]bool
	Height     int64
	AppHash    []byte
}

func NewLedger(db dbm.DB) (*Ledger, error) {
	ledger := &Ledger{db: db, pending: make(map[crypto.Address]*Account), pendingTxs: make(map[string]bool)}
	height, err := db.Get(heightKey)
	if err != nil {
		return nil, err
	}
	if len(height) == 8 {
		ledger.Height = int64(le.Uint64(height))
	}
	ledger.AppHash, err = db.Get(appHashKey)
	if err != nil {
		return nil, err
	}
	return ledger, nil
}

// Get returns the committed account, nil when the address was never written.
func (ledger *Ledger) Get(address crypto.Address) (*Account, error) {
	data, err := ledger.db.Get(accountKey(address))
	if err != nil || data == nil {
		return nil, err
	}
	return decodeAccount(data)
}

// GetAt returns the account as committed at height, 0 meaning the last block.
func (ledger *Ledger) GetAt(address crypto.Address, height int64) (*Account, error) {
	if height > ledger.Height {
		return nil, fmt.Errorf("height %d not committed, last is %d", height, ledger.Height)
	}
	if height <= 0 || height == ledger.Height {
		return ledger.Get(address)
	}
	iterator, err := ledger.db.ReverseIterator(historyKey(address, 0), historyKey(address, height+1))
	if err != nil {
		return nil, err
	}
	defer iterator.Close()
	if !iterator.Valid() {
		return nil, nil
	}
	return decodeAccount(iterator.Value())
}

// Seen reports whether a transaction with this hash was already delivered.
func (ledger *Ledger) Seen(hash []byte) (bool, error) {
	if ledger.pendingTxs[string(hash)] {
		return true, nil
	}
	return ledger.db.Has(txKey(hash))
}

// MarkSeen records a delivered transaction, it is persisted at Commit.
func (ledger *Ledger) MarkSeen(hash []byte) {
	ledger.pendingTxs[string(hash)] = true
}

func (ledger *Ledger) get(address crypto.Address) (*Account, error) {
	if account, ok := ledger.pending[address]; ok {
		return account.clone(), nil
	}
	return ledger.Get(address)
}

func (ledger *Ledger) Begin() *Cache {
	return &Cache{ledger: ledger, writes: make(map[crypto.Address]*Account)}
}

// Commit persists the pending writes and returns the new app hash.
func (ledger *Ledger) Commit() ([]byte, error) {
	addresses := make([]crypto.Address, 0, len(ledger.pending))
	for address := range ledger.pending {
		addresses = append(addresses, address)
	}
	sort.Slice(addresses, func(i, j int) bool { return bytes.Compare(addresses[i][:], addresses[j][:]) < 0 })
	next := ledger.Height + 1
	for _, address := range addresses {
		data := ledger.pending[address].encode()
		if err := ledger.db.Set(accountKey(address), data); err != nil {
			return nil, err
		}
		if err := ledger.db.Set(historyKey(address, next), data); err != nil {
			return nil, err
		}
	}
	for hash := range ledger.pendingTxs {
		if err := ledger.db.Set(txKey([]byte(hash)), []byte{1}); err != nil {
			return nil, err
		}
	}
	ledger.pending = make(map[crypto.Address]*Account)
	ledger.pendingTxs = make(map[string]bool)
	hash, err := ledger.hash()
	if err != nil {
		return nil, err
	}
	ledger.Height = next
	height := make([]byte, 8)
	le.PutUint64(height, uint64(ledger.Height))
	if err := ledger.db.Set(heightKey, height); err != nil {
		return nil, err
	}
	if err := ledger.db.Set(appHashKey, hash); err != nil {
		return nil, err
	}
	ledger.AppHash = hash
	return hash, nil
}

func (ledger *Ledger) hash() ([]byte, error) {
	end := append([]byte(nil), accountPrefix...)
	end[len(end)-1]++
	iterator, err := ledger.db.Iterator(accountPrefix, end)
	if err != nil {
		return nil, err
	}
	defer iterator.Close()
	var leaves [][]byte
	for ; iterator.Valid(); iterator.Next() {
		leaf := append(append([]byte(nil), iterator.Key()...), tmhash.Sum(iterator.Value())...)
		leaves = append(leaves, leaf)
	}
	hash := merkle.SimpleHashFromByteSlices(leaves)
	if hash == nil {
		// tm-db refuses nil values
		hash = []byte{}
	}
	return hash, nil
}

// ------------------------------------------------------------------------------------------------------------------- //
// CACHE

// Cache is the view of one transaction. Nothing reaches the ledger before Write.
type Cache struct {
	ledger *Ledger
	writes map[crypto.Address]*Account
}

// Account returns a copy of the account at address, an empty account if there is none.
func (cache *Cache) Account(address crypto.Address) (*Account, error) {
	if account, ok := cache.writes[address]; ok {
		return account.clone(), nil
	}
	account, err := cache.ledger.get(address)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return &Account{}, nil
	}
	return account, nil
}

func (cache *Cache) Store(address crypto.Address, account *Account) {
	cache.writes[address] = account.clone()
}

func (cache *Cache) Write() {
	for address, account := range cache.writes {
		cache.ledger.pending[address] = account
	}
	cache.writes = make(map[crypto.Address]*Account)
}

func (cache *Cache) Discard() {
	cache.writes = make(map[crypto.Address]*Account)
}

// ReadRecord decodes the record stored at address, which must be owned by program.
func (cache *Cache) ReadRecord(program, address crypto.Address, record Record) error {
	account, err := cache.Account(address)
	if err != nil {
		return err
	}
	if !account.OwnedBy(program) {
		return wrap(ErrWrongOwner, "%s", address)
	}
	return record.UnmarshalBinary(account.Data)
}

// WriteRecord replaces the data of an existing account, keeping owner and lamports.
func (cache *Cache) WriteRecord(address crypto.Address, record Record) error {
	account, err := cache.Account(address)
	if err != nil {
		return err
	}
	data, err := record.MarshalBinary()
	if err != nil {
		return err
	}
	if len(data) != len(account.Data) {
		return wrap(ErrMalformedRecord, "%s holds %d bytes, record is %d", address, len(account.Data), len(data))
	}
	account.Data = data
	cache.Store(address, account)
	return nil
}
