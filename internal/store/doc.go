// Package store persists the canonical collection, cached image blobs and the
// import journal in a single SQLite database.
//
// The collection lives in a named slot holding its JSON serialization;
// callers read it at startup and replace it wholesale after each mutation.
// Writers serialize through WithWriteLock, which holds an advisory file lock
// next to the database so two scentlog processes cannot interleave commits.
package store
