package model

// OutcomeKind classifies the terminal result of one work item.
type OutcomeKind int

const (
	OutcomeRendered OutcomeKind = iota
	OutcomeSkippedExisting
	OutcomeSkippedUnsupportedLang
	OutcomeNotFound
	OutcomeFailed
)

// Success reports whether the kind counts as success for batch retry
// purposes. NotFound is terminal but still lands in the failure tally so the
// caller sees it itemized.
func (k OutcomeKind) Success() bool {
	switch k {
	case OutcomeRendered, OutcomeSkippedExisting, OutcomeSkippedUnsupportedLang:
		return true
	}
	return false
}

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeRendered:
		return "rendered"
	case OutcomeSkippedExisting:
		return "skipped_existing"
	case OutcomeSkippedUnsupportedLang:
		return "skipped_unsupported_lang"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Outcome is the terminal, never-mutated result of one work item.
type Outcome struct {
	Item   WorkItem
	Kind   OutcomeKind
	Reason string
}

func Rendered(item WorkItem) Outcome        { return Outcome{Item: item, Kind: OutcomeRendered} }
func SkippedExisting(item WorkItem) Outcome { return Outcome{Item: item, Kind: OutcomeSkippedExisting} }

func SkippedUnsupportedLang(item WorkItem) Outcome {
	return Outcome{Item: item, Kind: OutcomeSkippedUnsupportedLang}
}

func NotFound(item WorkItem) Outcome {
	return Outcome{Item: item, Kind: OutcomeNotFound, Reason: "course not found"}
}

func Failed(item WorkItem, reason string) Outcome {
	return Outcome{Item: item, Kind: OutcomeFailed, Reason: reason}
}
