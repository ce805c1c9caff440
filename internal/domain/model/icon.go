package model

// IconSource says where an icon reference came from. The two default sources
// are deliberately distinct so callers can tell "the search API answered but
// had nothing" apart from "the search API never answered".
type IconSource int

const (
	IconFromSearch IconSource = iota
	IconDefaultEmpty
	IconDefaultExhausted
)

// IconRef points at a decorative icon, either a search hit or a default.
type IconRef struct {
	URL    string
	Source IconSource
}
