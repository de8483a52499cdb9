// Package catalog holds the pure presentation operations over a fetched track list.
//
// [Group] builds the three-level folder [Tree] from track categories, [Filter] narrows a list
// by a free-text term and [Sample] picks the featured tracks. [FolderSet] records which
// folders are expanded in a browser.
//
// None of these functions mutate their input.
package catalog
