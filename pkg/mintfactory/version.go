// Package mintfactory holds build metadata shared by the CLI and libraries.
package mintfactory

// Version is the mintfactory release version.
const Version = "0.1.0"

// ModulePath is the Go module path.
const ModulePath = "github.com/mesh-intelligence/mintfactory"
