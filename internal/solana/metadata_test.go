package solana

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"testing"
)

// metadataAccountData builds the borsh layout of a Metaplex metadata
// account: key, update authority, mint, then three length-prefixed
// strings padded with NULs as on-chain accounts are.
func metadataAccountData(name, symbol, uri string) []byte {
	data := make([]byte, 0, 256)
	data = append(data, 4) // key: MetadataV1
	data = append(data, make([]byte, 64)...)

	appendPadded := func(s string, width int) {
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(width))
		data = append(data, lenBuf[:]...)
		padded := make([]byte, width)
		copy(padded, s)
		data = append(data, padded...)
	}
	appendPadded(name, 32)
	appendPadded(symbol, 10)
	appendPadded(uri, 200)

	return data
}

func TestParseMetadataAccount(t *testing.T) {
	data := metadataAccountData("My Token", "MTK", "https://example.com/meta.json")

	name, symbol, uri, err := parseMetadataAccount(data)
	if err != nil {
		t.Fatalf("parseMetadataAccount: %v", err)
	}

	if name != "My Token" {
		t.Errorf("name: got %q", name)
	}
	if symbol != "MTK" {
		t.Errorf("symbol: got %q", symbol)
	}
	if uri != "https://example.com/meta.json" {
		t.Errorf("uri: got %q", uri)
	}
}

func TestParseMetadataAccount_Truncated(t *testing.T) {
	if _, _, _, err := parseMetadataAccount([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for short account data")
	}

	data := metadataAccountData("Name", "SYM", "uri")
	if _, _, _, err := parseMetadataAccount(data[:70]); err == nil {
		t.Error("expected error for truncated string section")
	}
}

// fakeRPC serves canned metadata account and supply responses.
type fakeRPC struct {
	accountData string // base64
	decimals    int
}

func (f *fakeRPC) GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error) {
	return nil, nil
}

func (f *fakeRPC) GetParsedTransaction(ctx context.Context, signature string) (*ParsedTransaction, error) {
	return nil, nil
}

func (f *fakeRPC) GetTokenSupply(ctx context.Context, mint string) (*TokenSupply, error) {
	return &TokenSupply{Amount: "1000000", Decimals: f.decimals}, nil
}

func (f *fakeRPC) GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error) {
	if f.accountData == "" {
		return nil, nil
	}
	return &AccountInfo{Data: f.accountData, Owner: MetadataProgram}, nil
}

func TestFetchTokenMetadata(t *testing.T) {
	offchain := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"description":"a token","image":"https://img.example/x.png"}`))
	}))
	defer offchain.Close()

	data := metadataAccountData("My Token", "MTK", offchain.URL)
	client := &fakeRPC{
		accountData: base64.StdEncoding.EncodeToString(data),
		decimals:    6,
	}

	fetcher := NewMetadataFetcher(client, nil)

	meta, err := fetcher.FetchTokenMetadata(context.Background(), WrappedSOLMint)
	if err != nil {
		t.Fatalf("FetchTokenMetadata: %v", err)
	}
	if meta == nil {
		t.Fatal("expected metadata, got nil")
	}

	if meta.Name != "My Token" || meta.Symbol != "MTK" {
		t.Errorf("unexpected on-chain fields: %+v", meta)
	}
	if meta.Decimals != 6 {
		t.Errorf("decimals: got %d", meta.Decimals)
	}
	if meta.Description != "a token" || meta.Image != "https://img.example/x.png" {
		t.Errorf("unexpected off-chain fields: %+v", meta)
	}
}

func TestFetchTokenMetadata_NoAccount(t *testing.T) {
	fetcher := NewMetadataFetcher(&fakeRPC{}, nil)

	meta, err := fetcher.FetchTokenMetadata(context.Background(), WrappedSOLMint)
	if err != nil {
		t.Fatalf("FetchTokenMetadata: %v", err)
	}
	if meta != nil {
		t.Errorf("expected nil for missing account, got %+v", meta)
	}
}

func TestFetchTokenMetadata_OffchainFailureIsNotFatal(t *testing.T) {
	offchain := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer offchain.Close()

	data := metadataAccountData("My Token", "MTK", offchain.URL)
	client := &fakeRPC{
		accountData: base64.StdEncoding.EncodeToString(data),
		decimals:    9,
	}

	fetcher := NewMetadataFetcher(client, nil)

	meta, err := fetcher.FetchTokenMetadata(context.Background(), WrappedSOLMint)
	if err != nil {
		t.Fatalf("FetchTokenMetadata: %v", err)
	}
	if meta == nil {
		t.Fatal("expected metadata despite off-chain failure")
	}
	if meta.Name != "My Token" || meta.Decimals != 9 {
		t.Errorf("on-chain fields lost: %+v", meta)
	}
	if meta.Description != "" || meta.Image != "" {
		t.Errorf("off-chain fields should be empty: %+v", meta)
	}
}
