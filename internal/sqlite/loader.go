package sqlite

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// tableMapping ties a JSONL file to its SQLite table. Column names double
// as JSON field names.
type tableMapping struct {
	file    string
	table   string
	key     string
	columns []string
}

// jsonlTableMapping lists every persisted table.
var jsonlTableMapping = []tableMapping{
	{ledgerJSONL, "ledger", "ledger_id", []string{"ledger_id", "name", "symbol", "max_supply", "cost_per_token", "owner", "balance", "deployed_at"}},
	{tokensJSONL, "tokens", "token_id", []string{"token_id", "owner", "base_uri", "minted_at"}},
	{eventsJSONL, "events", "seq", []string{"seq", "event_id", "kind", "account", "quantity", "first_token_id", "amount", "created_at"}},
}

// mappingFor returns the mapping of a table name. It panics on unknown
// names, which only a programming error can produce.
func mappingFor(table string) tableMapping {
	for _, m := range jsonlTableMapping {
		if m.table == table {
			return m
		}
	}
	panic("sqlite: no JSONL mapping for table " + table)
}

// loadAllJSONL reads the JSONL file m names for each table and inserts its
// records into that table. Loading is transactional: all files load or
// the database stays empty. Malformed lines are skipped and unknown fields
// are ignored; a record that violates a constraint fails the load.
func loadAllJSONL(db *sql.DB, dataDir string, m manifest) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, mapping := range jsonlTableMapping {
		file := m.file(mapping.table)
		records, err := readJSONL(filepath.Join(dataDir, file))
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
		if len(records) == 0 {
			continue
		}
		if err := insertRecords(tx, mapping, records); err != nil {
			return fmt.Errorf("loading %s into %s: %w", file, mapping.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// insertRecords inserts parsed JSONL records into a table. Only the mapped
// columns are extracted.
func insertRecords(tx *sql.Tx, mapping tableMapping, records []json.RawMessage) error {
	placeholders := make([]string, len(mapping.columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		mapping.table,
		strings.Join(mapping.columns, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("preparing insert for %s: %w", mapping.table, err)
	}
	defer stmt.Close()

	for n, rec := range records {
		dec := json.NewDecoder(bytes.NewReader(rec))
		dec.UseNumber()
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			// Valid JSON that is not an object.
			continue
		}

		args := make([]any, len(mapping.columns))
		for i, col := range mapping.columns {
			switch v := obj[col].(type) {
			case json.Number:
				args[i] = v.String()
			default:
				args[i] = v
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("record %d: %w", n+1, err)
		}
	}
	return nil
}

// exportTable reads every row of a table, ordered by its key, as JSONL
// records.
func exportTable(tx *sql.Tx, mapping tableMapping) ([]json.RawMessage, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(mapping.columns, ", "), mapping.table, mapping.key)
	rows, err := tx.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", mapping.table, err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		vals := make([]any, len(mapping.columns))
		ptrs := make([]any, len(mapping.columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", mapping.table, err)
		}
		obj := make(map[string]any, len(mapping.columns))
		for i, col := range mapping.columns {
			if b, ok := vals[i].([]byte); ok {
				obj[col] = string(b)
				continue
			}
			obj[col] = vals[i]
		}
		rec, err := json.Marshal(obj)
		if err != nil {
			return nil, fmt.Errorf("encoding %s row: %w", mapping.table, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// stageTables writes the tables touched by tx as fresh generation files
// and returns the manifest naming them together with the written files.
// Nothing is visible until the manifest is swapped; on error the written
// files are removed.
func stageTables(tx *sql.Tx, dataDir string, cur manifest, tables ...string) (manifest, []string, error) {
	next := cur.next(tables...)
	var written []string

	for _, table := range tables {
		mapping := mappingFor(table)
		records, err := exportTable(tx, mapping)
		if err != nil {
			removeFiles(dataDir, written)
			return manifest{}, nil, err
		}
		name := next.file(table)
		tmp, err := stageJSONL(filepath.Join(dataDir, name), records)
		if err != nil {
			removeFiles(dataDir, written)
			return manifest{}, nil, fmt.Errorf("persisting %s: %w", mapping.file, err)
		}
		if err := renameFile(tmp, filepath.Join(dataDir, name)); err != nil {
			os.Remove(tmp)
			removeFiles(dataDir, written)
			return manifest{}, nil, fmt.Errorf("renaming %s: %w", name, err)
		}
		written = append(written, name)
	}
	return next, written, nil
}
