// Package pkg provides the core libraries for statblock rendering.
//
// # Overview
//
// statblock renders tabletop-game creature sheets from a declarative layout
// tree plus a monster record, then paginates the rendered blocks into
// height-balanced columns. The pkg directory is organized into four areas:
//
//  1. [statblock] - Layout tree model (items, layouts, registry, built-ins)
//  2. [monster] - Monster records, traits, and importers
//  3. [engine] - Expansion, measurement, and column balancing pipeline
//  4. [render] - Block producer/measurer interfaces and the sinks behind them
//
// # Architecture
//
// The typical data flow through a render pass:
//
//	Creature payload (5e.tools, TetraCube, ...)
//	         ↓
//	    [monster/importer] (normalize into a monster record)
//	         ↓
//	    [engine/expand] (layout tree → flat block sequence)
//	         ↓
//	    [engine/columns] (heights → column assignment)
//	         ↓
//	    terminal / HTML / JSON output
//
// # Quick Start
//
// Render a monster with the built-in layout:
//
//	import (
//	    "context"
//	    "github.com/pellig/statblock/pkg/engine"
//	    "github.com/pellig/statblock/pkg/render/term"
//	    "github.com/pellig/statblock/pkg/statblock"
//	)
//
//	eng, err := engine.New(engine.Config{
//	    Producer: term.NewProducer(46),
//	    Measurer: term.Measurer{},
//	    Layouts:  statblock.NewRegistry(),
//	})
//	result, err := eng.Build(context.Background(), m, engine.Options{Columns: 2})
//	fmt.Println(term.JoinColumns(result.Columns, 2))
//
// # Main Packages
//
// [statblock] - The declarative layout model. An item tree discriminated by
// type (group, inline, heading, property, traits, spells, ifelse, ...) loaded
// from TOML or JSON files into a Registry, plus the built-in "Basic 5e" layout.
//
// [monster] - Map-backed monster records with typed accessors for layout
// hints (columns, columnWidth, columnHeight, forceColumns) and trait/spell
// list coercion. [monster/importer] converts third-party creature payloads.
//
// [engine] - Orchestration of one render pass: expand → measure → balance.
//
//   - [engine/condition]: item visibility and sandboxed ifelse branch scripts
//   - [engine/spells]: raw spell list grouping into headed blocks
//   - [engine/expand]: recursive tree expansion into renderable blocks
//   - [engine/columns]: split-height policy and greedy column assignment
//
// [render] - The seam to display surfaces. [render/term] draws lipgloss
// boxes for the terminal, [render/htmlsink] emits HTML with estimated
// heights for server-side pagination, [render/jsonsink] serializes the
// column assignment for downstream tooling.
//
// [cache] - Content-addressed caching of rendered output (null, file, and
// Redis backends).
//
// [linkify] - Wikilink-style text cross-referencing used by spell lists.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...               # All tests
//	go test ./pkg/engine/...        # Engine only
//
// [statblock]: https://pkg.go.dev/github.com/pellig/statblock/pkg/statblock
// [monster]: https://pkg.go.dev/github.com/pellig/statblock/pkg/monster
// [monster/importer]: https://pkg.go.dev/github.com/pellig/statblock/pkg/monster/importer
// [engine]: https://pkg.go.dev/github.com/pellig/statblock/pkg/engine
// [engine/condition]: https://pkg.go.dev/github.com/pellig/statblock/pkg/engine/condition
// [engine/spells]: https://pkg.go.dev/github.com/pellig/statblock/pkg/engine/spells
// [engine/expand]: https://pkg.go.dev/github.com/pellig/statblock/pkg/engine/expand
// [engine/columns]: https://pkg.go.dev/github.com/pellig/statblock/pkg/engine/columns
// [render]: https://pkg.go.dev/github.com/pellig/statblock/pkg/render
// [render/term]: https://pkg.go.dev/github.com/pellig/statblock/pkg/render/term
// [render/htmlsink]: https://pkg.go.dev/github.com/pellig/statblock/pkg/render/htmlsink
// [render/jsonsink]: https://pkg.go.dev/github.com/pellig/statblock/pkg/render/jsonsink
// [cache]: https://pkg.go.dev/github.com/pellig/statblock/pkg/cache
// [linkify]: https://pkg.go.dev/github.com/pellig/statblock/pkg/linkify
package pkg
