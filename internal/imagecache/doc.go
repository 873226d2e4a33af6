// Package imagecache resolves perfume images through a memory LRU, the
// SQLite blob table and finally the network.
//
// Every failure is local to one image: lookups log a warning and report a
// miss, and batch prefetches count failures without aborting the batch.
package imagecache
