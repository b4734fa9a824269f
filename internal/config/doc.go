// Package config builds the effective run configuration by layering defaults,
// an optional .gavel.toml file from the checkout, environment variables set by
// the CI trigger, and CLI flag overrides.
//
// All environment access in the program happens here. Components downstream
// receive explicit values through their constructors, which keeps them
// deterministic under test. Validate is the fail-fast gate: a run missing
// credentials stops before any context is gathered.
package config
