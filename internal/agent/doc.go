// Package agent drives review jobs on a session-based agent backend.
//
// The backend exposes registered sources, long-running sessions, and a
// per-session activity stream. The client covers the calls the pipeline
// needs (ListSources, CreateSession, GetSession, ListActivities); the Poller
// turns the activity stream into a single review result with a bounded
// attempt budget, checking session state each round so a remotely failed
// session surfaces as a failure instead of a timeout.
//
// Activity records arrive as a loosely-typed union and are normalized into
// the tagged Activity type, so the poller can match on kind exhaustively
// instead of probing field presence. The poll loop's sleep is injectable,
// letting tests run the full timeout path without real delays.
package agent
