package types

import (
	"github.com/zeebo/blake3"
)

// Domain-separation prefixes for the content-derived hashing scheme.
// The contract address prefix matches the ASCII string used on-chain.
var (
	contractAddressPrefix = []byte("STARKNET_CONTRACT_ADDRESS")
	selectorPrefix        = []byte("STARKNET_SELECTOR")
	messagePrefix         = []byte("STARKNET_MESSAGE")
	transactionPrefix     = []byte("STARKNET_TRANSACTION")
	declarePrefix         = []byte("STARKNET_DECLARE")
)

// HashFelts hashes a sequence of felts with an optional domain prefix,
// reducing the digest into the felt range.
func HashFelts(prefix []byte, felts ...Felt) Felt {
	h := blake3.New()
	if len(prefix) > 0 {
		h.Write(prefix)
	}
	for _, f := range felts {
		b := f.Bytes32()
		h.Write(b[:])
	}
	return FeltFromBytes(h.Sum(nil)[:32])
}

// Selector derives the entrypoint selector for a function name.
// Deterministic: the same name always yields the same selector.
func Selector(name string) Felt {
	h := blake3.New()
	h.Write(selectorPrefix)
	h.Write([]byte(name))
	return FeltFromBytes(h.Sum(nil)[:32])
}

// MessageHash derives the signable digest of an off-chain message. The
// chain id and signer bind the signature to one account on one network.
func MessageHash(chainID, signer Felt, message ...Felt) Felt {
	inner := HashFelts(nil, message...)
	return HashFelts(messagePrefix, chainID, signer, inner)
}

// TransactionHash derives the signable digest of a call batch.
func TransactionHash(chainID, signer Felt, calls []Call) Felt {
	felts := make([]Felt, 0, 2+len(calls))
	felts = append(felts, chainID, signer)
	for _, call := range calls {
		felts = append(felts, HashFelts(nil,
			call.ContractAddress,
			Selector(call.Entrypoint),
			HashFelts(nil, call.Calldata...),
		))
	}
	return HashFelts(transactionPrefix, felts...)
}

// DeclareHash derives the signable digest of a class declaration.
func DeclareHash(chainID, signer, classHash, compiledClassHash Felt) Felt {
	return HashFelts(declarePrefix, chainID, signer, classHash, compiledClassHash)
}

// ComputeContractAddress derives the deterministic deployment address of a
// contract from its salt, class hash, and constructor calldata. The deployer
// address is fixed at zero: account contracts are counterfactually addressed
// before any deployer exists.
func ComputeContractAddress(salt Felt, classHash Felt, constructorCalldata []Felt) Felt {
	calldataHash := HashFelts(nil, constructorCalldata...)
	return HashFelts(
		contractAddressPrefix,
		Felt{}, // deployer
		salt,
		classHash,
		calldataHash,
	)
}
