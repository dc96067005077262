package models

// Developer is one record of the shared collection. PhotoURL holds the
// object storage key of the avatar; clients resolve it through /public/{key}.
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

// ListQuery selects one page of developers. Page is 0-based. A nil
// FullStack does not filter on the flag.
type ListQuery struct {
	Page      int
	Size      int
	Name      string
	FullStack *bool
}

// Offset is the number of rows to skip for q.
func (q ListQuery) Offset() int {
	if q.Page <= 0 || q.Size <= 0 {
		return 0
	}
	return q.Page * q.Size
}

type Page struct {
	Data  []Developer `json:"data"`
	Total int         `json:"total"`
}
