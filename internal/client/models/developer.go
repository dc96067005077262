// Package models defines client-side data models used by the devsync client.
package models

import "fmt"

// Developer is a record of the remote developer collection.
//
// Server-assigned ids are positive. A record that was created while offline
// and is still waiting in the pending queue carries a negative temporary id
// (see PendingWrite.Placeholder).
type Developer struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name" validate:"required"`
	Age       int     `json:"age" validate:"min=18,max=100"`
	FullStack bool    `json:"fullStack"`
	EndDate   string  `json:"endDate" validate:"future"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	PhotoURL  string  `json:"photoURL,omitempty"`
}

// IsPending reports whether d is a local placeholder not yet known to the server.
func (d Developer) IsPending() bool {
	return d.ID < 0
}

// Input returns the mutable attributes of d as a create payload.
func (d Developer) Input() DeveloperInput {
	return DeveloperInput{
		Name:      d.Name,
		Age:       d.Age,
		FullStack: d.FullStack,
		EndDate:   d.EndDate,
		Lat:       d.Lat,
		Lng:       d.Lng,
	}
}

func (d Developer) String() string {
	kind := "backend/frontend"
	if d.FullStack {
		kind = "full stack"
	}
	id := fmt.Sprintf("%d", d.ID)
	if d.IsPending() {
		id = "pending"
	}
	return fmt.Sprintf("[%s] %s, %d, %s, until %s", id, d.Name, d.Age, kind, d.EndDate)
}

// DeveloperInput is the body of a create request. It has no id: the server
// assigns one.
type DeveloperInput struct {
	Name      string  `json:"name" validate:"required"`
	Age       int     `json:"age" validate:"min=18,max=100"`
	FullStack bool    `json:"fullStack"`
	EndDate   string  `json:"endDate" validate:"future"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

// WithID builds a Developer from the input.
func (in DeveloperInput) WithID(id int64) Developer {
	return Developer{
		ID:        id,
		Name:      in.Name,
		Age:       in.Age,
		FullStack: in.FullStack,
		EndDate:   in.EndDate,
		Lat:       in.Lat,
		Lng:       in.Lng,
	}
}

// Page is one page of the remote collection together with the total number
// of records matching the query.
type Page struct {
	Data  []Developer `json:"data"`
	Total int         `json:"total"`
}
