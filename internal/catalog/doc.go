// Package catalog describes collections and their indexes to the optimizer.
//
// The optimizer's index-substitution rule asks one question of the catalog:
// given the attribute paths a filter constrains, which indexes could serve a
// range scan? UsableIndexes answers it. How the catalog is populated is a
// separate concern: tests and small tools use the in-memory form, and the
// SQLite-backed store persists the same metadata for tooling that inspects a
// live database directory.
package catalog
