package domain

// ActorID identifies a customer, provider, inspector or admin. The hosting
// environment authenticates it; the ledger only compares it.
type ActorID string

// Height is the caller-supplied logical clock (a block height when hosted
// on a chain). It never decreases between calls but may repeat.
type Height uint64

type Caller struct {
	ID    ActorID
	Admin bool
}

// Call carries the ambient inputs of one mutation: who is calling and at
// which height. Services receive it explicitly on every mutation.
type Call struct {
	Caller Caller
	Height Height
}
