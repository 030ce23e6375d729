package ledger

import (
	"math/big"
)

// journalEntry is a modification of ledger state that can be reverted.
type journalEntry interface {
	// revert undoes the change introduced by this entry.
	revert(*Ledger)
}

// journal records the modifications applied by the operation in progress.
// An operation either discards the journal on commit or reverts it, so
// no partial state survives a failed call.
type journal struct {
	entries []journalEntry
}

func newJournal() *journal {
	return &journal{}
}

// append inserts a new modification entry at the end of the journal.
func (j *journal) append(entry journalEntry) {
	j.entries = append(j.entries, entry)
}

// revert undoes, newest first, every entry recorded since snapshot.
func (j *journal) revert(l *Ledger, snapshot int) {
	for i := len(j.entries) - 1; i >= snapshot; i-- {
		j.entries[i].revert(l)
	}
	j.entries = j.entries[:snapshot]
}

// reset drops all entries once the operation has committed.
func (j *journal) reset() {
	j.entries = j.entries[:0]
}

// length returns the current number of entries in the journal.
func (j *journal) length() int {
	return len(j.entries)
}

type (
	// A token appended to the id space.
	tokenAppend struct{}

	// The retained balance before a change.
	balanceChange struct {
		prev *big.Int
	}

	// The event sequence before an event was recorded.
	eventSeqChange struct {
		prev uint64
	}
)

func (tokenAppend) revert(l *Ledger) {
	last := l.tokens[len(l.tokens)-1]
	l.tokens = l.tokens[:len(l.tokens)-1]

	ids := l.wallets[last.Owner]
	ids = ids[:len(ids)-1]
	if len(ids) == 0 {
		delete(l.wallets, last.Owner)
		return
	}
	l.wallets[last.Owner] = ids
}

func (ch balanceChange) revert(l *Ledger) {
	l.balance = ch.prev
}

func (ch eventSeqChange) revert(l *Ledger) {
	l.eventSeq = ch.prev
}

// appendToken assigns the next id to owner and journals the change.
func (l *Ledger) appendToken(t tokenTemplate) uint64 {
	id := uint64(len(l.tokens)) + 1
	l.tokens = append(l.tokens, t.bind(id))
	l.wallets[t.owner] = append(l.wallets[t.owner], id)
	l.journal.append(tokenAppend{})
	return id
}

// setBalance replaces the retained balance and journals the previous value.
func (l *Ledger) setBalance(v *big.Int) {
	l.journal.append(balanceChange{prev: l.balance})
	l.balance = v
}

// nextEventSeq advances the event sequence and journals the previous value.
func (l *Ledger) nextEventSeq() uint64 {
	l.journal.append(eventSeqChange{prev: l.eventSeq})
	l.eventSeq++
	return l.eventSeq
}
