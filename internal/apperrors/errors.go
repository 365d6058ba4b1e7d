package apperrors

import "fmt"

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// NewShowNotFoundError creates a specific error for when a title search
// yields no shows.
func NewShowNotFoundError(query string) *ErrNotFound {
	return &ErrNotFound{
		Resource: "show",
		ID:       query,
	}
}

// NewSeasonNotFoundError creates a specific error for when a show has no
// such season.
func NewSeasonNotFoundError(showID string, season int) *ErrNotFound {
	return &ErrNotFound{
		Resource: "season",
		ID:       fmt.Sprintf("%s season %d", showID, season),
	}
}

// ErrNoRatings is returned when a show resolved fine but none of its
// episodes carries a user rating, so there is nothing to draw.
type ErrNoRatings struct {
	ShowID string
	Title  string
}

// Error implements the error interface.
func (e *ErrNoRatings) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("no episode ratings found for %s (%s)", e.Title, e.ShowID)
	}
	return fmt.Sprintf("no episode ratings found for %s", e.ShowID)
}

// Is allows for error checking with errors.Is().
func (e *ErrNoRatings) Is(target error) bool {
	_, ok := target.(*ErrNoRatings)
	return ok
}

// NewNoRatingsError creates a new ErrNoRatings.
func NewNoRatingsError(showID, title string) *ErrNoRatings {
	return &ErrNoRatings{
		ShowID: showID,
		Title:  title,
	}
}
