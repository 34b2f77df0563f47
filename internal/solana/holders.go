package solana

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/rpc"
)

// DefaultHolderLimit caps a holders listing when the caller gives no limit.
const DefaultHolderLimit = 10

type holderRPC interface {
	GetTokenSupply(ctx context.Context, mintAddr string) (client.TokenAmount, error)
	GetProgramAccountsWithConfig(ctx context.Context, programID string, cfg rpc.GetProgramAccountsConfig) (rpc.JsonRpcResponse[rpc.GetProgramAccounts], error)
}

// bloctoHolderRPC exposes the raw program-accounts call next to the client's
// typed token supply call.
type bloctoHolderRPC struct {
	*client.Client
}

func (b bloctoHolderRPC) GetProgramAccountsWithConfig(ctx context.Context, programID string, cfg rpc.GetProgramAccountsConfig) (rpc.JsonRpcResponse[rpc.GetProgramAccounts], error) {
	return b.RpcClient.GetProgramAccountsWithConfig(ctx, programID, cfg)
}

// Holder is one wallet's balance of a coin, summed over its token accounts.
type Holder struct {
	Owner  string
	Amount uint64
}

type Holders struct {
	Mint     string
	Supply   uint64
	Decimals uint8
	Holders  []Holder
}

// HolderReader lists the wallets holding a coin.
type HolderReader struct {
	rpc holderRPC
}

func NewHolderReader(rpcURL string) *HolderReader {
	return NewHolderReaderWithRPC(bloctoHolderRPC{client.NewClient(rpcURL)})
}

func NewHolderReaderWithRPC(rpc holderRPC) *HolderReader {
	return &HolderReader{rpc: rpc}
}

// TopHolders returns the largest holders of mint, richest first. Empty token
// accounts are skipped. Ties are broken by owner address so listings are
// stable between calls.
func (r *HolderReader) TopHolders(ctx context.Context, mint string, limit int) (*Holders, error) {
	if !IsAddress(mint) {
		return nil, fmt.Errorf("mint %q is not a valid address", mint)
	}
	if limit <= 0 {
		limit = DefaultHolderLimit
	}

	supply, err := r.rpc.GetTokenSupply(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to get token supply: %w", err)
	}

	res, err := r.rpc.GetProgramAccountsWithConfig(ctx, common.TokenProgramID.ToBase58(), rpc.GetProgramAccountsConfig{
		Encoding: rpc.AccountEncodingBase64,
		Filters: []rpc.GetProgramAccountsConfigFilter{
			{DataSize: token.TokenAccountSize},
			{MemCmp: &rpc.GetProgramAccountsConfigFilterMemCmp{Offset: 0, Bytes: mint}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list token accounts: %w", err)
	}
	if res.Error != nil {
		return nil, fmt.Errorf("failed to list token accounts: %w", res.Error)
	}

	balances := make(map[string]uint64)
	for _, acc := range res.Result {
		data, err := accountData(acc.Account)
		if err != nil {
			return nil, fmt.Errorf("token account %s: %w", acc.Pubkey, err)
		}
		ta, err := token.TokenAccountFromData(data)
		if err != nil {
			return nil, fmt.Errorf("token account %s: %w", acc.Pubkey, err)
		}
		if ta.Mint.ToBase58() != mint || ta.Amount == 0 {
			continue
		}
		balances[ta.Owner.ToBase58()] += ta.Amount
	}

	holders := make([]Holder, 0, len(balances))
	for owner, amount := range balances {
		holders = append(holders, Holder{Owner: owner, Amount: amount})
	}
	sort.Slice(holders, func(i, j int) bool {
		if holders[i].Amount != holders[j].Amount {
			return holders[i].Amount > holders[j].Amount
		}
		return holders[i].Owner < holders[j].Owner
	})
	if len(holders) > limit {
		holders = holders[:limit]
	}

	return &Holders{
		Mint:     mint,
		Supply:   supply.Amount,
		Decimals: supply.Decimals,
		Holders:  holders,
	}, nil
}

// accountData decodes the ["<data>", "base64"] pair the RPC returns for
// base64-encoded accounts.
func accountData(info rpc.AccountInfo) ([]byte, error) {
	pair, ok := info.Data.([]any)
	if !ok || len(pair) != 2 {
		return nil, fmt.Errorf("unexpected account data shape %T", info.Data)
	}
	if enc, _ := pair[1].(string); enc != string(rpc.AccountEncodingBase64) {
		return nil, fmt.Errorf("unexpected account data encoding %v", pair[1])
	}
	raw, _ := pair[0].(string)
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode account data: %w", err)
	}
	return data, nil
}
