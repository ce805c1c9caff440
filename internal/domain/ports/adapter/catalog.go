package adapter

import (
	"context"

	"course-cover-generator/internal/domain/model"
)

// CatalogAdapter reads course and path data from the remote catalog API.
//
// FetchCourse classifies the two terminal absences itself: a missing course
// returns domain.ErrCourseNotFound and a course that exists but does not list
// lang returns the metadata together with domain.ErrLangUnsupported. Any
// other error is transient and retryable at the batch level; the adapter
// itself never retries.
type CatalogAdapter interface {
	FetchCourse(ctx context.Context, alias, lang string) (*model.CourseMetadata, error)
	ListCourses(ctx context.Context, lang string) ([]model.CourseSummary, error)
	ListPaths(ctx context.Context) ([]model.PathSummary, error)
	FetchPath(ctx context.Context, alias string) (*model.PathDetail, error)
}
