package model

import "time"

// LockLease is a time-bounded mutual-exclusion token for a named resource.
// Leases are ephemeral coordination state, never part of the durable model:
// an expired lease may be taken over by any other holder.
type LockLease struct {
	Resource  string    `bson:"_id" json:"resource"`
	Holder    string    `bson:"holder" json:"holder"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
