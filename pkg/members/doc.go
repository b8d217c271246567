// Package members administers accounts on the legacy CMS: counting
// members, exporting them to CSV, listing their roles and revoking the
// roles of everyone outside an access list.
//
// All operations work on a Directory and on an inclusive index range
// [start, end] of its member ids, so large sites can be processed in
// batches. Per-member operations that touch roles are throttled.
package members
