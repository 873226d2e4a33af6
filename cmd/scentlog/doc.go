// Command scentlog browses and curates a personal perfume collection: import
// CSV exports, filter and sort the collection, repair missing fields, cache
// bottle images, export archives and inspect rating history.
package main
