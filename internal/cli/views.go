package cli

import (
	"strings"
	"time"

	"github.com/mesh-intelligence/mintfactory/pkg/types"
)

// JSON shapes. Addresses are checksummed hex and amounts are decimal wei
// strings so values above 2^53 survive JSON consumers.

type infoView struct {
	Name         string    `json:"name"`
	Symbol       string    `json:"symbol"`
	TotalSupply  uint64    `json:"total_supply"`
	MaxSupply    uint64    `json:"max_supply"`
	CostPerToken string    `json:"cost_per_token"`
	Owner        string    `json:"owner"`
	Balance      string    `json:"balance"`
	DeployedAt   time.Time `json:"deployed_at"`
}

type tokenView struct {
	TokenID    uint64 `json:"token_id"`
	Owner      string `json:"owner"`
	TokenURI   string `json:"token_uri"`
	GatewayURL string `json:"gateway_url,omitempty"`
}

type eventView struct {
	EventID      string    `json:"event_id"`
	Seq          uint64    `json:"seq"`
	Kind         string    `json:"kind"`
	Topic        string    `json:"topic"`
	Account      string    `json:"account"`
	Quantity     uint64    `json:"quantity,omitempty"`
	FirstTokenID uint64    `json:"first_token_id,omitempty"`
	Amount       string    `json:"amount"`
	CreatedAt    time.Time `json:"created_at"`
}

type mintView struct {
	Minter   string    `json:"minter"`
	TokenIDs []uint64  `json:"token_ids"`
	Paid     string    `json:"paid"`
	Event    eventView `json:"event"`
}

type withdrawView struct {
	Owner  string    `json:"owner"`
	Amount string    `json:"amount"`
	Event  eventView `json:"event"`
}

func newEventView(e types.Event) eventView {
	return eventView{
		EventID:      e.EventID,
		Seq:          e.Seq,
		Kind:         e.Kind,
		Topic:        e.Topic().Hex(),
		Account:      e.Account.Hex(),
		Quantity:     e.Quantity,
		FirstTokenID: e.FirstTokenID,
		Amount:       weiString(e.Amount),
		CreatedAt:    e.CreatedAt,
	}
}

func newTokenView(t types.Token, gateway string) tokenView {
	v := tokenView{
		TokenID:  t.TokenID,
		Owner:    t.Owner.Hex(),
		TokenURI: t.URI(),
	}
	if gateway != "" {
		v.GatewayURL = gatewayURL(gateway, v.TokenURI)
	}
	return v
}

// gatewayURL maps a token URI onto an IPFS HTTP gateway:
// https://<gateway>/ipfs/<path>. An ipfs:// scheme on the URI is dropped.
func gatewayURL(gateway, tokenURI string) string {
	host := strings.TrimSuffix(gateway, "/")
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	path := strings.TrimPrefix(tokenURI, "ipfs://")
	path = strings.TrimPrefix(path, "ipfs/")
	return host + "/ipfs/" + strings.TrimPrefix(path, "/")
}
