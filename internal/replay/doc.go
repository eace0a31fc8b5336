// Package replay copies exported ticket notes onto matching destination tickets.
//
// A Controller walks the exported tickets in order. Each ticket is resolved to a
// single destination ticket, checked for eligibility and then has its notes posted
// by a CommentReplayer. Run counters live in RunStatistics and are rendered as a
// RunSummary once the run ends. Progress is published to EventObserver values so
// that console and log reporting stay outside the package.
package replay
