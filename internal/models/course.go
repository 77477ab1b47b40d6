package models

import "time"

// Course is a teaching unit identified by its natural-key code.
type Course struct {
	Code        string    `db:"code" json:"code"`
	Label       string    `db:"label" json:"label"`
	Description string    `db:"description" json:"description"`
	Credits     int       `db:"credits" json:"credits"`
	Hours       int       `db:"hours" json:"hours"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CourseRef is the compact projection embedded in session responses.
type CourseRef struct {
	Code    string `db:"code" json:"code"`
	Label   string `db:"label" json:"label"`
	Credits int    `db:"credits" json:"credits"`
	Hours   int    `db:"hours" json:"hours"`
}
