// Package workflow implements the bill checking state machine: upload a
// bill, review its line items, choose a hospital and view the comparison.
//
// State is an immutable snapshot and Apply is the only way to move between
// snapshots. Apply never performs I/O; it returns an Effect describing the
// remote call to make, and the caller feeds the call's result back as a
// response Event. Every effect carries a Ticket and a response is applied
// only while its ticket is the latest for its class, which makes overlapping
// uploads, searches and comparisons resolve to the most recent request.
//
// Controller is a synchronous driver used by the command-line modes. The
// terminal UI runs Apply from its own update loop and executes effects as
// commands.
package workflow
