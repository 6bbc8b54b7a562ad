package domain

import "time"

// APIKeySecretPrefix marks key strings as ours and makes leaked secrets easy
// to grep for.
const APIKeySecretPrefix = "sk_"

// APIKey is a long-lived opaque credential. The key string itself is the
// primary lookup key; ownership is fixed at creation and revocation is a
// soft flag so the record stays visible for auditing.
type APIKey struct {
	Key       string // full secret, "sk_" prefixed
	UserID    string
	Name      string
	Active    bool
	CreatedAt time.Time
	LastUsed  *time.Time
}

// Masked returns the key string safe for listing: a short recognisable
// prefix of the secret followed by asterisks. The full secret is only ever
// shown once, at generation time.
func (k APIKey) Masked() string {
	const visible = 10
	if len(k.Key) <= visible {
		return k.Key + "***"
	}
	return k.Key[:visible] + "***"
}
