package model

// CourseMetadata is what the catalog API knows about a course. It is fetched
// fresh on every orchestration pass and never persisted; one fetch can be
// shared across all languages of the same course within a batch.
type CourseMetadata struct {
	Name   string
	TypeID int
	Langs  []string
}

// Supports reports whether the catalog lists lang for this course.
func (m *CourseMetadata) Supports(lang string) bool {
	for _, l := range m.Langs {
		if l == lang {
			return true
		}
	}
	return false
}

// CourseSummary is one entry of the bulk course listing.
type CourseSummary struct {
	Alias  string
	Name   string
	TypeID int
}

// PathSummary is one entry of the learning-path listing.
type PathSummary struct {
	Alias string
	Name  string
}

// PathLevel groups the courses of a path at one difficulty level.
type PathLevel struct {
	Level   int
	Courses []CourseSummary
}

// PathDetail is the full description of a learning path.
type PathDetail struct {
	Alias  string
	Name   string
	Levels []PathLevel
}

// Level1Aliases returns the aliases of all level-1 courses of the path.
func (p *PathDetail) Level1Aliases() []string {
	var aliases []string
	for _, lvl := range p.Levels {
		if lvl.Level != 1 {
			continue
		}
		for _, c := range lvl.Courses {
			if c.Alias != "" {
				aliases = append(aliases, c.Alias)
			}
		}
	}
	return aliases
}

// CourseTypeName maps the catalog's numeric course type to the template's
// display type. Unknown IDs fall back to "normal".
func CourseTypeName(id int) string {
	switch id {
	case 1:
		return "alibaba"
	case 3:
		return "project"
	default:
		return "normal"
	}
}
