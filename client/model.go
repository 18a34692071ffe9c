package client

import (
	"encoding/json"

	"github.com/holiman/uint256"

	"github.com/brane-sdk/brane/hexutil"
)

// Quantity decodes a JSON-RPC hex quantity ("0x1b4") into a uint64, for
// fields (block number, nonce, gas) that never need more than 64 bits.
type Quantity uint64

func (q *Quantity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := parseQuantity(s)
	if err != nil {
		return err
	}
	*q = Quantity(v)
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(formatQuantity(uint64(q)))
}

// BigQuantity decodes a JSON-RPC hex quantity into a 256-bit integer, for
// fields (balance, value, fee-per-gas) that can exceed 64 bits.
type BigQuantity uint256.Int

func (q *BigQuantity) Int() *uint256.Int { return (*uint256.Int)(q) }

func (q *BigQuantity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := parseQuantityBig(s)
	if err != nil {
		return err
	}
	*q = BigQuantity(*v)
	return nil
}

func (q BigQuantity) MarshalJSON() ([]byte, error) {
	v := uint256.Int(q)
	return json.Marshal(formatQuantityBig(&v))
}

// HexBytes decodes a JSON-RPC "data" hex string (calldata, log data) into
// raw bytes.
type HexBytes []byte

func (b *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	raw, err := hexutil.Decode(s)
	if err != nil {
		return err
	}
	*b = raw
	return nil
}

func (b HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hexutil.Encode(b))
}

// Block is the subset of eth_getBlockBy{Number,Hash}'s result this SDK
// needs: enough header fields to drive the gas strategy and report basic
// block identity. Requested with full transaction objects set to false,
// so Transactions only carries hashes.
type Block struct {
	Number        Quantity       `json:"number"`
	Hash          hexutil.Hash   `json:"hash"`
	ParentHash    hexutil.Hash   `json:"parentHash"`
	Timestamp     Quantity       `json:"timestamp"`
	GasLimit      Quantity       `json:"gasLimit"`
	GasUsed       Quantity       `json:"gasUsed"`
	Miner         hexutil.Address `json:"miner"`
	BaseFeePerGas *BigQuantity   `json:"baseFeePerGas"` // nil on pre-London chains
	Transactions  []hexutil.Hash `json:"transactions"`
}

// Log is a single eth_getLogs / receipt log entry.
type Log struct {
	Address         hexutil.Address `json:"address"`
	Topics          []hexutil.Hash  `json:"topics"`
	Data            HexBytes        `json:"data"`
	BlockNumber     Quantity        `json:"blockNumber"`
	BlockHash       hexutil.Hash    `json:"blockHash"`
	TransactionHash hexutil.Hash    `json:"transactionHash"`
	LogIndex        Quantity        `json:"logIndex"`
	Removed         bool            `json:"removed"`
}

// Receipt is eth_getTransactionReceipt's result.
type Receipt struct {
	TransactionHash   hexutil.Hash     `json:"transactionHash"`
	BlockHash         hexutil.Hash     `json:"blockHash"`
	BlockNumber       Quantity         `json:"blockNumber"`
	From              hexutil.Address  `json:"from"`
	To                *hexutil.Address `json:"to"`
	ContractAddress   *hexutil.Address `json:"contractAddress"`
	CumulativeGasUsed Quantity         `json:"cumulativeGasUsed"`
	GasUsed           Quantity         `json:"gasUsed"`
	Status            Quantity         `json:"status"` // 1 success, 0 reverted
	Logs              []Log            `json:"logs"`
}

// Succeeded reports whether the receipt's status byte marks the
// transaction as having executed without reverting.
func (r Receipt) Succeeded() bool { return r.Status == 1 }

// RpcTransaction is eth_getTransactionByHash's result: enough fields to
// inspect a pending or mined transaction, not a full re-decoding of every
// variant's envelope.
type RpcTransaction struct {
	Hash                 hexutil.Hash     `json:"hash"`
	From                  hexutil.Address  `json:"from"`
	To                    *hexutil.Address `json:"to"`
	Nonce                 Quantity         `json:"nonce"`
	Value                 BigQuantity      `json:"value"`
	Input                 HexBytes         `json:"input"`
	Gas                   Quantity         `json:"gas"`
	GasPrice              *BigQuantity     `json:"gasPrice"`
	MaxFeePerGas          *BigQuantity     `json:"maxFeePerGas"`
	MaxPriorityFeePerGas  *BigQuantity     `json:"maxPriorityFeePerGas"`
	BlockNumber           *Quantity        `json:"blockNumber"`
	BlockHash             *hexutil.Hash    `json:"blockHash"`
	Type                  Quantity         `json:"type"`
}

// CallMsg is the message eth_call, eth_estimateGas, and
// eth_createAccessList all take as their first positional parameter.
type CallMsg struct {
	From     *hexutil.Address
	To       *hexutil.Address
	Gas      uint64
	GasPrice *uint256.Int
	Value    *uint256.Int
	Data     []byte
}

func (m CallMsg) MarshalJSON() ([]byte, error) {
	wire := map[string]any{}
	if m.From != nil {
		wire["from"] = m.From.Hex()
	}
	if m.To != nil {
		wire["to"] = m.To.Hex()
	}
	if m.Gas > 0 {
		wire["gas"] = formatQuantity(m.Gas)
	}
	if m.GasPrice != nil {
		wire["gasPrice"] = formatQuantityBig(m.GasPrice)
	}
	if m.Value != nil {
		wire["value"] = formatQuantityBig(m.Value)
	}
	if len(m.Data) > 0 {
		wire["data"] = hexutil.Encode(m.Data)
	}
	return json.Marshal(wire)
}

// FilterQuery is eth_getLogs's single positional parameter.
type FilterQuery struct {
	FromBlock BlockRef
	ToBlock   BlockRef
	Address   []hexutil.Address
	Topics    [][]hexutil.Hash
}

func (f FilterQuery) MarshalJSON() ([]byte, error) {
	wire := map[string]any{}
	if f.FromBlock != "" {
		wire["fromBlock"] = string(f.FromBlock)
	}
	if f.ToBlock != "" {
		wire["toBlock"] = string(f.ToBlock)
	}
	if len(f.Address) > 0 {
		wire["address"] = f.Address
	}
	if f.Topics != nil {
		wire["topics"] = f.Topics
	}
	return json.Marshal(wire)
}

// BlockRef selects a block by tag or number in a JSON-RPC call.
type BlockRef string

const (
	Latest    BlockRef = "latest"
	Pending   BlockRef = "pending"
	Earliest  BlockRef = "earliest"
	Safe      BlockRef = "safe"
	Finalized BlockRef = "finalized"
)

// AtBlock refers to a specific block number.
func AtBlock(n uint64) BlockRef { return BlockRef(formatQuantity(n)) }
