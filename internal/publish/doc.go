// Package publish delivers review text to a pull request as issue comments,
// splitting oversized reviews at line boundaries so no comment exceeds the
// platform limit. Posting is sequential and best-effort: a failed part does
// not retract the parts already posted.
package publish
