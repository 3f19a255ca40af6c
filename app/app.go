package app

import (
	"encoding/json"
	"fmt"

	tendermint "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
	dbm "github.com/tendermint/tm-db"

	"tuition-node/messages"
	"tuition-node/modules"
)

const (
	CodespaceTx        = "tx"
	CodeEncodingError  = 1
	CodeSignatureError = 2
	CodeQueryError     = 3
	CodeDuplicateTx    = 4
)

// blockClock reports the time of the block being executed.
type blockClock struct {
	time int64
}

func (clock *blockClock) Now() int64 {
	return clock.time
}

type TuitionChain struct {
	Ledger *modules.Ledger
	Config Config
	clock  blockClock
	logger log.Logger
}

var _ tendermint.Application = (*TuitionChain)(nil)

func NewTuitionChain(db dbm.DB, config Config, logger log.Logger) (*TuitionChain, error) {
	ledger, err := modules.NewLedger(db)
	if err != nil {
		return nil, err
	}
	return &TuitionChain{
		Ledger: ledger,
		Config: config,
		logger: logger.With("module", "tuition"),
	}, nil
}

func (chain *TuitionChain) Info(requestInfo tendermint.RequestInfo) tendermint.ResponseInfo {
	responseInfo := tendermint.ResponseInfo{
		Data:             "tuition-node",
		Version:          "V1",
		AppVersion:       1,
		LastBlockHeight:  chain.Ledger.Height,
		LastBlockAppHash: chain.Ledger.AppHash,
	}
	return responseInfo
}

func (chain *TuitionChain) SetOption(requestSetOption tendermint.RequestSetOption) tendermint.ResponseSetOption {
	responseSetOption := tendermint.ResponseSetOption{
		Code: 0,
		Log:  "",
		Info: "",
	}
	return responseSetOption
}

// Query answers from the committed block at the requested height, 0 meaning the last one.
func (chain *TuitionChain) Query(requestQuery tendermint.RequestQuery) tendermint.ResponseQuery {
	height := requestQuery.Height
	if height == 0 {
		height = chain.Ledger.Height
	}
	responseQuery := tendermint.ResponseQuery{
		Index:  -1,
		Key:    requestQuery.Data,
		Height: height,
	}
	var query messages.Query
	if err := messages.Decode(requestQuery.Data, &query); err != nil {
		responseQuery.Code = CodeEncodingError
		responseQuery.Codespace = CodespaceTx
		responseQuery.Log = err.Error()
		return responseQuery
	}
	value, err := chain.query(query, height)
	if err != nil {
		responseQuery.Code = CodeQueryError
		responseQuery.Codespace = CodespaceTx
		responseQuery.Log = err.Error()
		return responseQuery
	}
	responseQuery.Value = value
	return responseQuery
}

func (chain *TuitionChain) query(query messages.Query, height int64) ([]byte, error) {
	account, err := chain.Ledger.GetAt(query.Address, height)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("no account at %s", query.Address)
	}
	var record modules.Record
	switch query.QrType {
	case messages.QueryAccount:
		return json.Marshal(account)
	case messages.QueryProtocol:
		record = &modules.ProtocolState{}
	case messages.QueryInstitution:
		record = &modules.InstitutionState{}
	case messages.QuerySubject:
		record = &modules.SubjectState{}
	case messages.QueryEnrollment:
		record = &modules.EnrollmentState{}
	case messages.QueryMint:
		record = &modules.Mint{}
	case messages.QueryTokenAccount:
		record = &modules.TokenAccount{}
	default:
		return nil, fmt.Errorf("unknown query %q", query.QrType)
	}
	if err := record.UnmarshalBinary(account.Data); err != nil {
		return nil, err
	}
	return json.Marshal(record)
}

func (chain *TuitionChain) CheckTx(requestCheckTx tendermint.RequestCheckTx) tendermint.ResponseCheckTx {
	responseCheckTx := tendermint.ResponseCheckTx{}
	tx, err := messages.DecodeTx(requestCheckTx.Tx)
	if err != nil {
		responseCheckTx.Code, responseCheckTx.Codespace, responseCheckTx.Log = CodeEncodingError, CodespaceTx, err.Error()
		return responseCheckTx
	}
	if err := tx.Verify(); err != nil {
		responseCheckTx.Code, responseCheckTx.Codespace, responseCheckTx.Log = CodeSignatureError, CodespaceTx, err.Error()
		return responseCheckTx
	}
	if err := chain.checkReplay(tx); err != nil {
		responseCheckTx.Code, responseCheckTx.Codespace, responseCheckTx.Log = CodeDuplicateTx, CodespaceTx, err.Error()
	}
	return responseCheckTx
}

func (chain *TuitionChain) InitChain(requestInitChain tendermint.RequestInitChain) tendermint.ResponseInitChain {
	chain.clock.time = requestInitChain.Time.Unix()
	genesis, err := modules.ParseGenesis(requestInitChain.AppStateBytes)
	if err != nil {
		panic(fmt.Sprintf("invalid genesis app state: %v", err))
	}
	cache := chain.Ledger.Begin()
	if err := genesis.Apply(cache, chain.Config.Rent); err != nil {
		panic(fmt.Sprintf("failed applying genesis: %v", err))
	}
	cache.Write()
	chain.logger.Info("Applied genesis", "balances", len(genesis.Balances), "mints", len(genesis.Mints),
		"token_accounts", len(genesis.TokenAccounts))
	responseInitChain := tendermint.ResponseInitChain{
		ConsensusParams: nil,
		Validators:      nil,
	}
	return responseInitChain
}

func (chain *TuitionChain) BeginBlock(requestBeginBlock tendermint.RequestBeginBlock) tendermint.ResponseBeginBlock {
	chain.clock.time = requestBeginBlock.Header.Time.Unix()
	responseBeginBlock := tendermint.ResponseBeginBlock{
		Events: nil,
	}
	return responseBeginBlock
}

func (chain *TuitionChain) DeliverTx(requestDeliverTx tendermint.RequestDeliverTx) tendermint.ResponseDeliverTx {
	responseDeliverTx := tendermint.ResponseDeliverTx{}
	tx, err := messages.DecodeTx(requestDeliverTx.Tx)
	if err != nil {
		responseDeliverTx.Code, responseDeliverTx.Codespace, responseDeliverTx.Log = CodeEncodingError, CodespaceTx, err.Error()
		return responseDeliverTx
	}
	if err := tx.Verify(); err != nil {
		responseDeliverTx.Code, responseDeliverTx.Codespace, responseDeliverTx.Log = CodeSignatureError, CodespaceTx, err.Error()
		return responseDeliverTx
	}
	if err := chain.checkReplay(tx); err != nil {
		responseDeliverTx.Code, responseDeliverTx.Codespace, responseDeliverTx.Log = CodeDuplicateTx, CodespaceTx, err.Error()
		return responseDeliverTx
	}
	// failed transactions are recorded as well, they must not succeed on a later replay
	chain.Ledger.MarkSeen(tx.Hash())
	cache := chain.Ledger.Begin()
	program := modules.NewProgram(cache, chain.Config.Rent, &chain.clock, chain.logger, tx.Handles())
	opcode := modules.Opcode(tx.Instruction.Opcode)
	if err := program.Process(tx.Instruction.Opcode, tx.Instruction.Data); err != nil {
		cache.Discard()
		codespace, code := modules.ErrorCode(err)
		chain.logger.Error("Instruction failed", "op", opcode, "codespace", codespace, "code", code, "err", err)
		responseDeliverTx.Code, responseDeliverTx.Codespace, responseDeliverTx.Log = code, codespace, err.Error()
		return responseDeliverTx
	}
	cache.Write()
	responseDeliverTx.Info = opcode.String()
	return responseDeliverTx
}

func (chain *TuitionChain) checkReplay(tx *messages.Transaction) error {
	seen, err := chain.Ledger.Seen(tx.Hash())
	if err != nil {
		return err
	}
	if seen {
		return fmt.Errorf("transaction %X already delivered", tx.Hash())
	}
	return nil
}

func (chain *TuitionChain) EndBlock(requestEndBlock tendermint.RequestEndBlock) tendermint.ResponseEndBlock {
	responseEndBlock := tendermint.ResponseEndBlock{
		ValidatorUpdates:      nil,
		ConsensusParamUpdates: nil,
		Events:                nil,
	}
	return responseEndBlock
}

func (chain *TuitionChain) Commit() tendermint.ResponseCommit {
	hash, err := chain.Ledger.Commit()
	if err != nil {
		panic(fmt.Sprintf("failed committing block: %v", err))
	}
	responseCommit := tendermint.ResponseCommit{
		Data:         hash,
		RetainHeight: 0,
	}
	return responseCommit
}
