package sqlite

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mintfactory/pkg/types"
)

const (
	ledgerLine = `{"ledger_id":1,"name":"Mint Factory","symbol":"MF","max_supply":10,"cost_per_token":"1000","owner":"0x1000000000000000000000000000000000000001","balance":"3000","deployed_at":"2026-03-01T12:00:00Z"}`
	tokenLine1 = `{"token_id":1,"owner":"0x2000000000000000000000000000000000000002","base_uri":"ipfs://a","minted_at":"2026-03-01T12:00:00Z"}`
	tokenLine2 = `{"token_id":2,"owner":"0x2000000000000000000000000000000000000002","base_uri":"ipfs://b","minted_at":"2026-03-01T12:00:00Z"}`
	eventLine  = `{"seq":1,"event_id":"e1","kind":"Mint","account":"0x2000000000000000000000000000000000000002","quantity":2,"first_token_id":1,"amount":"3000","created_at":"2026-03-01T12:00:00Z"}`
)

func writeJSONLFile(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func TestLoadHandWrittenFiles(t *testing.T) {
	dir := t.TempDir()
	writeJSONLFile(t, dir, ledgerJSONL, ledgerLine)
	writeJSONLFile(t, dir, tokensJSONL, tokenLine1, tokenLine2)
	writeJSONLFile(t, dir, eventsJSONL, eventLine)

	b := attachTest(t, dir)
	snap, err := b.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint64(10), snap.Info.MaxSupply)
	assert.Equal(t, big.NewInt(1000), snap.Info.CostPerToken)
	assert.Equal(t, deployer, snap.Info.Owner)
	assert.Equal(t, big.NewInt(3000), snap.Balance)
	require.Len(t, snap.Tokens, 2)
	assert.Equal(t, alice, snap.Tokens[1].Owner)
	assert.Equal(t, uint64(1), snap.EventCount)
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	writeJSONLFile(t, dir, ledgerJSONL, ledgerLine)
	writeJSONLFile(t, dir, tokensJSONL,
		tokenLine1,
		`{"token_id":2,"owner":`,
		``,
		`not json at all`,
		`[1,2,3]`,
		tokenLine2,
	)

	b := attachTest(t, dir)
	snap, err := b.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Tokens, 2)
	assert.Equal(t, "ipfs://b", snap.Tokens[1].BaseURI)
}

func TestLoadIgnoresUnknownFields(t *testing.T) {
	dir := t.TempDir()
	writeJSONLFile(t, dir, ledgerJSONL, ledgerLine)
	writeJSONLFile(t, dir, tokensJSONL,
		`{"token_id":1,"owner":"0x2000000000000000000000000000000000000002","base_uri":"ipfs://a","minted_at":"2026-03-01T12:00:00Z","rarity":"legendary","traits":[1,2]}`)

	b := attachTest(t, dir)
	snap, err := b.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Tokens, 1)
	assert.Equal(t, "ipfs://a", snap.Tokens[0].BaseURI)
}

func TestLoadConstraintViolationFailsAttach(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		lines []string
	}{
		{name: "duplicate token id", file: tokensJSONL, lines: []string{tokenLine1, tokenLine1}},
		{name: "missing required column", file: tokensJSONL, lines: []string{`{"token_id":1,"owner":"0x2000000000000000000000000000000000000002"}`}},
		{name: "second ledger row", file: ledgerJSONL, lines: []string{ledgerLine, strings.Replace(ledgerLine, `"ledger_id":1`, `"ledger_id":2`, 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeJSONLFile(t, dir, tt.file, tt.lines...)

			b := NewBackend()
			err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir})
			require.Error(t, err)

			_, err = b.Load(context.Background())
			require.ErrorIs(t, err, types.ErrStoreDetached)
		})
	}
}

func TestStageTablesWritesSortedRecords(t *testing.T) {
	dir := t.TempDir()
	b := attachTest(t, dir)
	ctx := context.Background()

	require.NoError(t, b.Deploy(ctx, testInfo()))
	require.NoError(t, b.CommitMint(ctx, mintReceipt(1, 1, alice, 500, "ipfs://a", "ipfs://b")))

	records, err := readJSONL(currentFile(t, b, "tokens"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Contains(t, string(records[0]), `"token_id":1`)
	assert.Contains(t, string(records[1]), `"token_id":2`)
	assert.Contains(t, string(records[0]), `"base_uri":"ipfs://a"`)

	ledger, err := readJSONL(currentFile(t, b, "ledger"))
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Contains(t, string(ledger[0]), `"balance":"500"`)
}

func TestMappingForUnknownTablePanics(t *testing.T) {
	assert.Panics(t, func() { mappingFor("collections") })
}
