package model

// PageDescriptor describes the position of a list page within the full result set.
// Construct it with NewPageDescriptor or SinglePage so the navigation flags
// always agree with CurrentPage and TotalPages.
type PageDescriptor struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

// NewPageDescriptor builds a descriptor and derives HasNextPage/HasPrevPage.
// TotalPages is never less than 1 and CurrentPage never less than 1.
func NewPageDescriptor(currentPage, totalPages, totalItems, itemsPerPage int) PageDescriptor {
	if totalPages < 1 {
		totalPages = 1
	}
	if currentPage < 1 {
		currentPage = 1
	}
	return PageDescriptor{
		CurrentPage:  currentPage,
		TotalPages:   totalPages,
		TotalItems:   totalItems,
		ItemsPerPage: itemsPerPage,
		HasNextPage:  currentPage < totalPages,
		HasPrevPage:  currentPage > 1,
	}
}

// SinglePage builds the descriptor for an unpaginated list of n items.
func SinglePage(n int) PageDescriptor {
	return NewPageDescriptor(1, 1, n, n)
}

// ListResult is a list response normalised at the API client boundary.
type ListResult[T any] struct {
	Items []T
	Page  PageDescriptor
	Shape ListShape
}
