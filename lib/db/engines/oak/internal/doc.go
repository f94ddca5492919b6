// Package internal holds the entry type of the oak engine together with the
// handles that link an entry to its positions in the expiry schedules.
package internal
