package solana

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
	"go.uber.org/zap"
)

type rpcClient interface {
	GetMinimumBalanceForRentExemption(ctx context.Context, dataLen uint64) (uint64, error)
	GetLatestBlockhash(ctx context.Context) (rpc.GetLatestBlockhashValue, error)
	SendTransaction(ctx context.Context, tx types.Transaction) (string, error)
}

// DeployerConfig fixes the network and coin economics for every deploy.
type DeployerConfig struct {
	RPCURL        string
	Cluster       string
	Decimals      uint8
	InitialSupply uint64
}

// Deployer creates a new SPL token per memory with Metaplex metadata pointing
// at the pinned metadata URI, and mints the initial supply to the payout
// recipient. The server-held authority pays fees and keeps mint authority.
type Deployer struct {
	rpc       rpcClient
	authority types.Account
	cfg       DeployerConfig
	logger    *zap.Logger
}

type DeployParams struct {
	Name   string
	Symbol string
	// URI is the ipfs:// metadata URI.
	URI             string
	PayoutRecipient string
}

type DeployResult struct {
	Address     string
	Txn         string
	ExplorerURL string
}

func NewDeployer(cfg DeployerConfig, authority types.Account, logger *zap.Logger) *Deployer {
	return NewDeployerWithRPC(client.NewClient(cfg.RPCURL), cfg, authority, logger)
}

func NewDeployerWithRPC(rpc rpcClient, cfg DeployerConfig, authority types.Account, logger *zap.Logger) *Deployer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deployer{rpc: rpc, authority: authority, cfg: cfg, logger: logger}
}

// AuthorityAddress is the base58 address of the fee payer.
func (d *Deployer) AuthorityAddress() string {
	return d.authority.PublicKey.ToBase58()
}

func (d *Deployer) Deploy(ctx context.Context, params DeployParams) (*DeployResult, error) {
	recipient := strings.TrimSpace(params.PayoutRecipient)
	if recipient == "" {
		recipient = d.AuthorityAddress()
	}
	if !IsAddress(recipient) {
		return nil, fmt.Errorf("payout recipient %q is not a valid address", recipient)
	}

	feePayer := d.authority
	owner := common.PublicKeyFromString(recipient)
	mint := types.NewAccount()

	ata, _, err := common.FindAssociatedTokenAddress(owner, mint.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("FindAssociatedTokenAddress: %w", err)
	}

	metadataPubkey, err := token_metadata.GetTokenMetaPubkey(mint.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("GetTokenMetaPubkey: %w", err)
	}

	mintRent, err := d.rpc.GetMinimumBalanceForRentExemption(ctx, token.MintAccountSize)
	if err != nil {
		return nil, fmt.Errorf("GetMinimumBalanceForRentExemption: %w", err)
	}

	recent, err := d.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetLatestBlockhash: %w", err)
	}

	amount, err := baseUnits(d.cfg.InitialSupply, d.cfg.Decimals)
	if err != nil {
		return nil, err
	}

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: []types.Account{feePayer, mint},
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        feePayer.PublicKey,
			RecentBlockhash: recent.Blockhash,
			Instructions: []types.Instruction{
				system.CreateAccount(system.CreateAccountParam{
					From:     feePayer.PublicKey,
					New:      mint.PublicKey,
					Owner:    common.TokenProgramID,
					Lamports: mintRent,
					Space:    token.MintAccountSize,
				}),
				token.InitializeMint(token.InitializeMintParam{
					Decimals: d.cfg.Decimals,
					Mint:     mint.PublicKey,
					MintAuth: feePayer.PublicKey,
				}),
				token_metadata.CreateMetadataAccountV3(
					token_metadata.CreateMetadataAccountV3Param{
						Metadata:                metadataPubkey,
						Mint:                    mint.PublicKey,
						MintAuthority:           feePayer.PublicKey,
						UpdateAuthority:         feePayer.PublicKey,
						Payer:                   feePayer.PublicKey,
						UpdateAuthorityIsSigner: true,
						IsMutable:               true,
						Data: token_metadata.DataV2{
							Name:   params.Name,
							Symbol: params.Symbol,
							Uri:    params.URI,
						},
					},
				),
				associated_token_account.CreateAssociatedTokenAccount(
					associated_token_account.CreateAssociatedTokenAccountParam{
						Funder:                 feePayer.PublicKey,
						Owner:                  owner,
						Mint:                   mint.PublicKey,
						AssociatedTokenAccount: ata,
					},
				),
				token.MintTo(token.MintToParam{
					Mint:   mint.PublicKey,
					To:     ata,
					Auth:   feePayer.PublicKey,
					Amount: amount,
				}),
			},
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("NewTransaction: %w", err)
	}

	d.logger.Info("deploying coin",
		zap.String("name", params.Name),
		zap.String("symbol", params.Symbol),
		zap.String("uri", params.URI),
		zap.String("mint", mint.PublicKey.ToBase58()),
		zap.String("payout_recipient", recipient),
	)

	sig, err := d.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("SendTransaction: %w", err)
	}

	address := mint.PublicKey.ToBase58()
	return &DeployResult{
		Address:     address,
		Txn:         sig,
		ExplorerURL: ExplorerURL(d.cfg.Cluster, address),
	}, nil
}

// ExplorerURL links to the Solana explorer for address on cluster.
func ExplorerURL(cluster, address string) string {
	url := "https://explorer.solana.com/address/" + address
	if cluster != "" && cluster != "mainnet-beta" {
		url += "?cluster=" + cluster
	}
	return url
}

func baseUnits(supply uint64, decimals uint8) (uint64, error) {
	n := new(big.Int).SetUint64(supply)
	n.Mul(n, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	if !n.IsUint64() {
		return 0, fmt.Errorf("initial supply %d with %d decimals overflows u64", supply, decimals)
	}
	return n.Uint64(), nil
}
