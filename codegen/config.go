// Package codegen renders a generated client module from an
// inspect.Graph using github.com/dave/jennifer/jen, the same
// programmatic-AST approach the teacher's own compiler/gen package uses
// in place of text templates.
package codegen

import (
	"log/slog"
)

// Config configures one Generate invocation.
type Config struct {
	// Package is the Go package name the generated files declare.
	Package string
	// Dir is the directory generated files are written into.
	Dir string
	// RuntimeImport is the import path of the runtime package the
	// generated client calls into (package runtime in this module,
	// overridable for vendored/forked deployments).
	RuntimeImport string
	// QueryImport is the import path of the query package used for where
	// compilation. The generated files do not import it: where maps are
	// compiled inside the runtime Backend.
	QueryImport string
	// Workers caps how many files Generate writes concurrently. Zero
	// means unlimited.
	Workers int
	Logger  *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Package == "" {
		c.Package = "client"
	}
	if c.RuntimeImport == "" {
		c.RuntimeImport = "github.com/dclass/dclassql/runtime"
	}
	if c.QueryImport == "" {
		c.QueryImport = "github.com/dclass/dclassql/query"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
