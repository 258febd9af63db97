package domain

// Area is one node of the administrative division tree. Provinces have a nil
// parent; cities and districts point at their parent division.
type Area struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	ParentID *int64 `db:"parent_id" json:"-"`
	Subs     []Area `db:"-" json:"subs,omitempty"`
}
