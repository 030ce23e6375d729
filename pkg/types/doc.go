// Package types defines the ledger's entity types, the Store and Payee
// interfaces, and the standard error values shared by every backend and
// by the mintfactory CLI.
package types
