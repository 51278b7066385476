package types

import (
	"fmt"
	"strings"
	"time"
)

// Domain names one view-model area.
type Domain string

const (
	DomainStaking     Domain = "staking"
	DomainUserStaking Domain = "user-staking"
	DomainReferral    Domain = "referral"
	DomainToken       Domain = "token"
	DomainVault       Domain = "vault"
)

func (d Domain) String() string {
	return string(d)
}

// Domains lists every domain in a stable order.
func Domains() []Domain {
	return []Domain{DomainStaking, DomainUserStaking, DomainReferral, DomainToken, DomainVault}
}

func DomainFromString(s string) (Domain, error) {
	for _, d := range Domains() {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("invalid domain: %s", s)
}

// Enum values for a domain refresh
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

func (s Status) String() string {
	return string(s)
}

// State is the refresh state of one domain, optionally scoped to a wallet.
type State struct {
	Domain    Domain    `json:"domain"`
	Address   string    `json:"address,omitempty"`
	Status    Status    `json:"status"`
	Loading   bool      `json:"loading"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StateKey identifies the state of a domain for an address. Addresses are
// compared case-insensitively.
func StateKey(domain Domain, address string) string {
	if address == "" {
		return domain.String()
	}
	return domain.String() + ":" + strings.ToLower(address)
}

func (s State) Key() string {
	return StateKey(s.Domain, s.Address)
}
