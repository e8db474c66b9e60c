// Package flume contains the core components of Flume, an engine for sharding
// a single large newline-delimited record file across a group of parallel
// workers and combining their partial aggregates into exact global results.
// This root package defines the data model and the narrow contracts between
// the engine and its pluggable collaborators, and is a good overview of
// Flume's key concepts.
package flume
