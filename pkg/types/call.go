package types

// TxnVersion identifies the transaction wire version, which determines the
// fee token a transaction settles in.
type TxnVersion string

// Supported transaction versions. V3 transactions settle fees in STRK,
// earlier versions in ETH.
const (
	TxnVersionV1 TxnVersion = "0x1"
	TxnVersionV3 TxnVersion = "0x3"
)

// FeeToken names the asset a transaction's fee is denominated in.
type FeeToken string

// The two canonical fee tokens.
const (
	FeeTokenETH  FeeToken = "ETH"
	FeeTokenSTRK FeeToken = "STRK"
)

// Version returns the transaction version that settles in this fee token.
func (t FeeToken) Version() TxnVersion {
	if t == FeeTokenSTRK {
		return TxnVersionV3
	}
	return TxnVersionV1
}

// UnitForVersion returns the fee token a given transaction version settles in.
func UnitForVersion(version TxnVersion) FeeToken {
	if version == TxnVersionV3 {
		return FeeTokenSTRK
	}
	return FeeTokenETH
}

// Call is a single contract invocation: target contract, entrypoint
// selector name, and calldata words.
type Call struct {
	ContractAddress Felt   `json:"contractAddress"`
	Entrypoint      string `json:"entrypoint"`
	Calldata        []Felt `json:"calldata"`
}
