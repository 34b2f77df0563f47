// Package testutil holds in-memory collaborators for tests. Nothing here
// touches the network.
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/blocto/solana-go-sdk/types"
	"rewind-backend/internal/apperr"
	"rewind-backend/internal/imagen"
	"rewind-backend/internal/models"
	"rewind-backend/internal/pinata"
	"rewind-backend/internal/resolver"
	"rewind-backend/internal/solana"
)

// PNG is a minimal PNG header, enough for content sniffing.
var PNG = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

// CallLog records collaborator calls in order.
type CallLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *CallLog) Add(name string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *CallLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type Downloader struct {
	Log     *CallLog
	DataURI string
	Err     error
}

func (d *Downloader) FetchDataURI(ctx context.Context, url string) (string, error) {
	d.Log.Add("download")
	if d.Err != nil {
		return "", d.Err
	}
	return d.DataURI, nil
}

type Pinner struct {
	Log  *CallLog
	Err  error
	Last *pinata.CoinContent
}

func (p *Pinner) PinCoin(ctx context.Context, content pinata.CoinContent) (*pinata.PinnedCoin, error) {
	p.Log.Add("upload")
	if p.Err != nil {
		return nil, p.Err
	}
	p.Last = &content
	return &pinata.PinnedCoin{
		CID:      "ipfs://bafymeta",
		ImageCID: "bafyimage",
		Metadata: pinata.CoinMetadata{Name: content.Name, Symbol: content.Symbol, Image: "ipfs://bafyimage"},
	}, nil
}

type Deployer struct {
	Log     *CallLog
	Err     error
	Address string
	Last    *solana.DeployParams
}

func (d *Deployer) Deploy(ctx context.Context, params solana.DeployParams) (*solana.DeployResult, error) {
	d.Log.Add("mint")
	if d.Err != nil {
		return nil, d.Err
	}
	d.Last = &params
	address := d.Address
	if address == "" {
		address = types.NewAccount().PublicKey.ToBase58()
	}
	return &solana.DeployResult{
		Address:     address,
		Txn:         "txsig",
		ExplorerURL: solana.ExplorerURL("devnet", address),
	}, nil
}

// HolderLister serves a fixed holders listing.
type HolderLister struct {
	Holders []solana.Holder
	Err     error
	Limit   int
}

func (h *HolderLister) TopHolders(ctx context.Context, mint string, limit int) (*solana.Holders, error) {
	h.Limit = limit
	if h.Err != nil {
		return nil, h.Err
	}
	holders := h.Holders
	if len(holders) > limit {
		holders = holders[:limit]
	}
	return &solana.Holders{Mint: mint, Supply: 1_000_000_000, Decimals: 6, Holders: holders}, nil
}

type Generator struct {
	Log *CallLog
	Err error
}

func (g *Generator) Generate(ctx context.Context, prompt string) (*imagen.Image, error) {
	g.Log.Add("generate")
	if g.Err != nil {
		return nil, g.Err
	}
	return &imagen.Image{MIMEType: "image/png", Data: PNG}, nil
}

type Resolver struct {
	Log  *CallLog
	Post *resolver.Post
	Err  error
}

func (r *Resolver) Resolve(ctx context.Context, url string) (*resolver.Post, error) {
	r.Log.Add("resolve")
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Post, nil
}

type Mirror struct {
	Err  error
	URLs []string
}

func (m *Mirror) MirrorImage(imageCID, mimeType string, data []byte) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	url := "https://mirror.example/" + imageCID
	m.URLs = append(m.URLs, url)
	return url, nil
}

// FailingStore fails every write and finds nothing.
type FailingStore struct{}

var ErrStoreDown = errors.New("records file is read-only")

func (FailingStore) Init(ctx context.Context) error { return nil }

func (FailingStore) Append(ctx context.Context, rec models.MemoryRecord) (models.MemoryRecord, error) {
	return models.MemoryRecord{}, ErrStoreDown
}

func (FailingStore) List(ctx context.Context, owner string) ([]models.MemoryRecord, error) {
	return []models.MemoryRecord{}, nil
}

func (FailingStore) Stats(ctx context.Context) (models.RecordStats, error) {
	return models.RecordStats{Recent: []models.MemoryRecord{}}, nil
}

func (FailingStore) FindByCoin(ctx context.Context, coinAddress string) (models.MemoryRecord, error) {
	return models.MemoryRecord{}, apperr.NotFound("no memory minted as coin " + coinAddress)
}

func (FailingStore) Close() error { return nil }
