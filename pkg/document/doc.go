// Package document defines the capability boundary between threadvoice and
// the live hierarchical document it reads.
//
// The document is external and mutates underneath us: activating a
// disclosure control causes previously hidden comment subtrees to appear at
// some later point, observable only by re-querying. The Probe interface
// captures exactly the queries and the single mutate operation the core
// needs, so the expansion and extraction layers stay independent of any
// rendering engine.
//
// Two implementations exist:
//
//   - document/shreddit: a Playwright-backed probe over a live thread page
//   - document/documenttest: a deterministic in-memory tree for tests
package document
