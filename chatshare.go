// Package chatshare extracts role-tagged conversations from shared
// chat-transcript pages. It fetches a share URL safely, then tries several
// extraction strategies in priority order until one yields messages.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, rod/, trafilatura/).
package chatshare
