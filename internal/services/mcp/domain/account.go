package domain

// AirdropInput represents the MCP tool input for the dev faucet.
type AirdropInput struct {
	Address  string `json:"address" jsonschema:"address to fund"`
	Lamports uint64 `json:"lamports" jsonschema:"lamports to credit"`
}

// AirdropResult represents the MCP tool output for the dev faucet.
type AirdropResult struct {
	Address     string            `json:"address"`
	Lamports    uint64            `json:"lamports" jsonschema:"balance after the airdrop"`
	Transaction TransactionResult `json:"transaction"`
}

// BalanceInput represents the MCP tool input for reading a balance.
type BalanceInput struct {
	Address string `json:"address" jsonschema:"account address"`
}

// BalanceResult represents the MCP tool output for reading a balance.
type BalanceResult struct {
	Address  string `json:"address"`
	Lamports uint64 `json:"lamports"`
}

// TransactionGetInput represents the MCP tool input for a journal lookup.
type TransactionGetInput struct {
	Signature string `json:"signature" jsonschema:"transaction signature (base58)"`
}

// TransactionRecordResult is the readable form of a journal entry.
type TransactionRecordResult struct {
	Signature    string   `json:"signature"`
	Slot         uint64   `json:"slot"`
	Timestamp    string   `json:"timestamp" jsonschema:"RFC3339 block time"`
	Status       string   `json:"status"`
	ErrorCode    string   `json:"error_code,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
	Logs         []string `json:"logs,omitempty"`
}

// KeypairInput is empty; keypair generation takes no arguments.
type KeypairInput struct{}

// KeypairResult holds a fresh ed25519 keypair.
type KeypairResult struct {
	Address string `json:"address" jsonschema:"public key (base58)"`
	Secret  string `json:"secret" jsonschema:"secret key (base58); keep private"`
}
