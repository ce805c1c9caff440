package model

// WorkItem is one (course, language) unit of generation work.
// Identity is the pair; items are immutable and consumed once.
type WorkItem struct {
	Course string
	Lang   string
}

func (w WorkItem) String() string { return w.Course + "/" + w.Lang }
