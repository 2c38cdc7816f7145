// Package pkg provides the libraries behind mealyetf, which serializes Mealy
// machines as ETF transition systems with alternating edges.
//
// # Overview
//
// ETF edges carry a single letter, Mealy transitions carry two (an input and
// an output). Each transition s --i/o--> t is therefore split at a fresh
// intermediate node (o,t):
//
//	s --i--> (o,t) --o--> t
//
// Intermediate nodes are shared: every transition that produces o and moves
// to t passes through the same (o,t). The pkg directory is organized into
// three areas:
//
//  1. Core: [bimap], [alphabet], [mealy], [etf]
//  2. Documents and views: [io], [render/nodelink]
//  3. Infrastructure: [pipeline], [cache], [observability], [errors], [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	machine document (JSON / YAML / TOML)
//	         ↓
//	    [io] package (decode + validate labels)
//	         ↓
//	    [mealy] package (transition table)
//	         ↓
//	    [etf] package (alternating expansion + sections)
//	         ↓
//	    ETF text, or DOT/SVG via [render/nodelink]
//
// # Quick Start
//
//	m, err := io.Import("turnstile.json")
//	if err != nil {
//	    return err
//	}
//	err = etf.WriteModel[string, string, string](os.Stdout, m, m.Inputs())
//
// # Main Packages
//
// [etf] - The writer. [etf.WriteModel] emits the full document,
// [etf.WriteBody] the init, trans and sort sections only, and [etf.Expand]
// returns the expansion as a value for other renderers.
//
// [mealy] - The [mealy.Machine] interface the writer reads, plus
// [mealy.Table], a map-backed implementation.
//
// [alphabet] - Ordered, duplicate-free input alphabets.
//
// [bimap] - Bidirectional value/index maps used to number states, letters
// and intermediate nodes in discovery order.
//
// [pipeline] - Load, convert and render with caching. Used by the CLI and
// the HTTP server so both produce identical artifacts.
//
// [cache] - Artifact cache with null, file, Bolt, Redis and MongoDB
// backends.
//
// [bimap]: https://pkg.go.dev/github.com/matzehuels/mealyetf/pkg/bimap
// [alphabet]: https://pkg.go.dev/github.com/matzehuels/mealyetf/pkg/alphabet
// [mealy]: https://pkg.go.dev/github.com/matzehuels/mealyetf/pkg/mealy
// [etf]: https://pkg.go.dev/github.com/matzehuels/mealyetf/pkg/etf
// [io]: https://pkg.go.dev/github.com/matzehuels/mealyetf/pkg/io
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/mealyetf/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/mealyetf/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/mealyetf/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/mealyetf/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/mealyetf/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/mealyetf/pkg/buildinfo
// [etf.WriteModel]: https://pkg.go.dev/github.com/matzehuels/mealyetf/pkg/etf#WriteModel
// [etf.WriteBody]: https://pkg.go.dev/github.com/matzehuels/mealyetf/pkg/etf#WriteBody
// [etf.Expand]: https://pkg.go.dev/github.com/matzehuels/mealyetf/pkg/etf#Expand
// [mealy.Machine]: https://pkg.go.dev/github.com/matzehuels/mealyetf/pkg/mealy#Machine
// [mealy.Table]: https://pkg.go.dev/github.com/matzehuels/mealyetf/pkg/mealy#Table
package pkg
