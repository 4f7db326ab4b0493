package model

import (
	"net/url"
	"strconv"
)

// Paging describes the pagination parameters common to all list requests.
type Paging struct {
	Page           int
	PerPage        int
	IncludeDeleted bool
}

// AllPagesNotDeleted returns paging that spans all results, excluding deleted
// resources.
func AllPagesNotDeleted() Paging {
	return Paging{
		Page:           0,
		PerPage:        AllPerPage,
		IncludeDeleted: false,
	}
}

// AllPagesWithDeleted returns paging that spans all results, including
// deleted resources.
func AllPagesWithDeleted() Paging {
	return Paging{
		Page:           0,
		PerPage:        AllPerPage,
		IncludeDeleted: true,
	}
}

// AllPerPage signals the store to return all results in a single page.
const AllPerPage = -1

// AddToQuery adds the paging parameters to the given query values.
func (p *Paging) AddToQuery(q url.Values) {
	q.Add("page", strconv.Itoa(p.Page))
	q.Add("per_page", strconv.Itoa(p.PerPage))
	if p.IncludeDeleted {
		q.Add("include_deleted", "true")
	}
}
