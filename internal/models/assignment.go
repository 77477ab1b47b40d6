package models

import "time"

// AssignmentKey is the composite identity of a Personnel↔Course link.
// Equality is structural, so the key can be used directly in maps.
type AssignmentKey struct {
	CourseCode    string `json:"course_code"`
	PersonnelCode string `json:"personnel_code"`
}

// Assignment links a personnel to a course. It carries no attributes of its
// own beyond the two references; it is either present or absent.
type Assignment struct {
	CourseCode    string    `db:"course_code" json:"course_code"`
	PersonnelCode string    `db:"personnel_code" json:"personnel_code"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Key returns the composite identity of the assignment.
func (a Assignment) Key() AssignmentKey {
	return AssignmentKey{CourseCode: a.CourseCode, PersonnelCode: a.PersonnelCode}
}

// AssignmentDetail is the response projection with resolved references.
type AssignmentDetail struct {
	CourseCode    string       `json:"course_code"`
	PersonnelCode string       `json:"personnel_code"`
	Course        CourseRef    `json:"course"`
	Personnel     PersonnelRef `json:"personnel"`
}

// AssignmentDetailRow is the flat shape produced by the joined listing query.
type AssignmentDetailRow struct {
	CourseCode    string `db:"course_code"`
	PersonnelCode string `db:"personnel_code"`
	CourseLabel   string `db:"course_label"`
	CourseCredits int    `db:"course_credits"`
	CourseHours   int    `db:"course_hours"`
	PersonnelName string `db:"personnel_name"`
}

// Detail expands the flat row into the nested response projection.
func (r AssignmentDetailRow) Detail() AssignmentDetail {
	return AssignmentDetail{
		CourseCode:    r.CourseCode,
		PersonnelCode: r.PersonnelCode,
		Course: CourseRef{
			Code:    r.CourseCode,
			Label:   r.CourseLabel,
			Credits: r.CourseCredits,
			Hours:   r.CourseHours,
		},
		Personnel: PersonnelRef{Code: r.PersonnelCode, Name: r.PersonnelName},
	}
}
