package sqlite

// Schema DDL for all tables. The ledger table holds a single row.
const (
	createLedger = `CREATE TABLE ledger (
    ledger_id INTEGER PRIMARY KEY CHECK (ledger_id = 1),
    name TEXT NOT NULL,
    symbol TEXT NOT NULL,
    max_supply INTEGER NOT NULL,
    cost_per_token TEXT NOT NULL,
    owner TEXT NOT NULL,
    balance TEXT NOT NULL,
    deployed_at TEXT NOT NULL
);`

	createTokens = `CREATE TABLE tokens (
    token_id INTEGER PRIMARY KEY,
    owner TEXT NOT NULL,
    base_uri TEXT NOT NULL,
    minted_at TEXT NOT NULL
);`

	createEvents = `CREATE TABLE events (
    seq INTEGER PRIMARY KEY,
    event_id TEXT NOT NULL UNIQUE,
    kind TEXT NOT NULL,
    account TEXT NOT NULL,
    quantity INTEGER NOT NULL,
    first_token_id INTEGER NOT NULL,
    amount TEXT NOT NULL,
    created_at TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxTokensOwner   = `CREATE INDEX idx_tokens_owner ON tokens(owner, token_id);`
	idxEventsKind    = `CREATE INDEX idx_events_kind ON events(kind);`
	idxEventsAccount = `CREATE INDEX idx_events_account ON events(account);`
)

// schemaDDL lists all CREATE TABLE statements.
var schemaDDL = []string{
	createLedger,
	createTokens,
	createEvents,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxTokensOwner,
	idxEventsKind,
	idxEventsAccount,
}
