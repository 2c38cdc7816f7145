// Package nodelink renders Mealy machines as node-link diagrams.
//
// # Overview
//
// This package produces Graphviz DOT for two views of a machine:
//
//   - [MachineDOT]: one node per state, one edge per transition labelled
//     "input / output"
//   - [AlternatingDOT]: the alternating transition system written to ETF,
//     with intermediate nodes drawn as small dashed circles and output edges
//     dashed
//
// Both mark the initial state with an arrow from a point node.
//
// # Usage
//
//	dot, err := nodelink.MachineDOT[string, string, string](m, m.Inputs())
//	svg, err := nodelink.RenderSVG(dot)
//
//	lts, err := etf.Expand[string, string, string](m, m.Inputs())
//	dot := nodelink.AlternatingDOT(lts)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
