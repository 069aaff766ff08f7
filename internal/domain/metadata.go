package domain

// TokenMetadata describes a mint. Populated on first lookup and
// treated as immutable afterwards.
type TokenMetadata struct {
	Address     string
	Name        string
	Symbol      string
	Decimals    int
	Description string
	Image       string
}
