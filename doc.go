// Package strata merges configuration from heterogeneous sources (files,
// URLs, embedded resources, environment variables, in-memory maps) into a
// single layered view with typed, dotted-path access and optional live
// reload.
//
// A Config is a stack of immutable layers. Loading a source returns a new
// child Config with one more layer on top; the parent is never touched, so
// concurrently held parents and children are both safe to read without
// locking. Reading a path searches the stack top-down with deep map merging:
// map sections from different layers compose, while scalar and list values
// from a newer layer replace older ones wholesale.
//
//	cfg := strata.New()
//	cfg, err := cfg.FromFile("base.yml")
//	cfg, err = cfg.FromString("properties", "server.port = 9090")
//	port, err := cfg.Int("server.port") // 9090, from the top layer
//
// Watched layers re-fetch their source periodically (or on file events) and
// replace their content atomically in every config built on top of them; a
// failed refetch is logged and leaves the previous content in place.
//
// Format support is pluggable through the provider registry: importing a
// format package (provider/yaml, provider/json, provider/toml,
// provider/props) registers it for its file extensions.
package strata
