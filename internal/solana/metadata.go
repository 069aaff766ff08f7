package solana

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// offchainTimeout bounds the best-effort fetch of off-chain JSON.
const offchainTimeout = 10 * time.Second

// TokenMetadata is the merged on-chain and off-chain description of a
// mint.
type TokenMetadata struct {
	Name        string
	Symbol      string
	URI         string
	Decimals    int
	Description string
	Image       string
}

// MetadataFetcher resolves token metadata from the Metaplex metadata
// account, the mint's supply info, and the off-chain JSON document the
// metadata URI points to.
type MetadataFetcher struct {
	client Client
	http   *http.Client
	logger *log.Logger
}

// NewMetadataFetcher creates a fetcher on top of an RPC client.
func NewMetadataFetcher(client Client, logger *log.Logger) *MetadataFetcher {
	if logger == nil {
		logger = log.Default()
	}
	return &MetadataFetcher{
		client: client,
		http:   &http.Client{Timeout: offchainTimeout},
		logger: logger,
	}
}

// FetchTokenMetadata loads metadata for mint. Returns nil when the
// mint has no metadata account. The off-chain part is best effort:
// its failure only costs description and image.
func (f *MetadataFetcher) FetchTokenMetadata(ctx context.Context, mint string) (*TokenMetadata, error) {
	addr, err := MetadataAddress(mint)
	if err != nil {
		return nil, fmt.Errorf("derive metadata address: %w", err)
	}

	info, err := f.client.GetAccountInfo(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata account: %w", err)
	}
	if info == nil {
		return nil, nil
	}

	data, err := base64.StdEncoding.DecodeString(info.Data)
	if err != nil {
		return nil, fmt.Errorf("decode metadata account data: %w", err)
	}

	meta := &TokenMetadata{}
	meta.Name, meta.Symbol, meta.URI, err = parseMetadataAccount(data)
	if err != nil {
		return nil, fmt.Errorf("parse metadata account: %w", err)
	}

	supply, err := f.client.GetTokenSupply(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("fetch token supply: %w", err)
	}
	meta.Decimals = supply.Decimals

	if strings.HasPrefix(meta.URI, "http://") || strings.HasPrefix(meta.URI, "https://") {
		if err := f.fetchOffchain(ctx, meta); err != nil {
			f.logger.Printf("offchain metadata for %s unavailable: %v", mint, err)
		}
	}

	return meta, nil
}

// parseMetadataAccount reads the name, symbol and uri fields of a
// Metaplex metadata account. Layout: key u8, update authority 32,
// mint 32, then three length-prefixed strings padded with NULs.
func parseMetadataAccount(data []byte) (name, symbol, uri string, err error) {
	const header = 1 + 32 + 32
	if len(data) < header {
		return "", "", "", fmt.Errorf("account data too short: %d bytes", len(data))
	}

	off := header
	readString := func() (string, error) {
		if off+4 > len(data) {
			return "", fmt.Errorf("truncated string length at offset %d", off)
		}
		n := int(binary.LittleEndian.Uint32(data[off:]))
		off += 4
		if n < 0 || off+n > len(data) {
			return "", fmt.Errorf("string of %d bytes overruns account data", n)
		}
		s := data[off : off+n]
		off += n
		return strings.TrimRight(string(s), "\x00"), nil
	}

	if name, err = readString(); err != nil {
		return "", "", "", fmt.Errorf("read name: %w", err)
	}
	if symbol, err = readString(); err != nil {
		return "", "", "", fmt.Errorf("read symbol: %w", err)
	}
	if uri, err = readString(); err != nil {
		return "", "", "", fmt.Errorf("read uri: %w", err)
	}

	return strings.TrimSpace(name), strings.TrimSpace(symbol), strings.TrimSpace(uri), nil
}

// offchainMetadata is the subset of the off-chain JSON document we
// keep.
type offchainMetadata struct {
	Description string `json:"description"`
	Image       string `json:"image"`
}

func (f *MetadataFetcher) fetchOffchain(ctx context.Context, meta *TokenMetadata) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, meta.URI, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", meta.URI, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: status %d", meta.URI, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	var doc offchainMetadata
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}

	meta.Description = doc.Description
	meta.Image = doc.Image
	return nil
}
