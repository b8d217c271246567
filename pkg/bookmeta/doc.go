// Package bookmeta reads book metadata from a book repository and prepares
// the repository's README and settings files.
//
// A book repository lists its collections in META-INF/books.xml. Each
// element carrying a slug attribute names one collection (by href,
// relative to META-INF), whose collxml metadata block holds the title and
// the license. A repository with a single collection gets the book README
// template; several collections share one bundle README, which requires
// them all to carry the same license.
package bookmeta
