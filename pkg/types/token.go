package types

import (
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// metadataExt is appended to every token URI.
const metadataExt = ".json"

// Token is one minted id bound to its owner and metadata location.
type Token struct {
	TokenID  uint64         // Sequential id starting at 1.
	Owner    common.Address // Address that received the token.
	BaseURI  string         // Directory holding the token's metadata document.
	MintedAt time.Time      // Commit time of the mint that created the token.
}

// URI returns the token's metadata URI.
func (t Token) URI() string {
	return TokenURI(t.BaseURI, t.TokenID)
}

// TokenURI joins a base URI and a token id into "<base>/<id>.json".
// A trailing slash on base is not duplicated.
func TokenURI(base string, tokenID uint64) string {
	return strings.TrimSuffix(base, "/") + "/" + strconv.FormatUint(tokenID, 10) + metadataExt
}
