package models

// Book is a single catalog entry. AuthorID must reference an existing
// Author row; the store enforces the constraint.
type Book struct {
	ID       int64  `json:"id"`
	AuthorID int64  `json:"author_id"`
	Title    string `json:"title"`
	PubYear  string `json:"pub_year"` // stored as text; source data carries free-form years
	Genre    string `json:"genre"`
}
