// Package view projects the canonical collection into the filtered, sorted
// sequence a caller paginates over.
//
// Projection runs in a fixed order: text search, brand filter, segment filter
// (only while no brand is selected), rating bounds, price bounds, then a
// stable sort. It is pure and never mutates the collection.
package view
