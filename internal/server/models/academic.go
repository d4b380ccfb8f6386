package models

// AcademicRecord is one subject result of a student in a semester.
// UserName is a soft reference to users.username and may dangle.
type AcademicRecord struct {
	ID         int64  `json:"-"`
	UserName   string `json:"username"`
	Semester   int    `json:"semester"`
	Subject    string `json:"subject"`
	Marks      int    `json:"marks"`
	Attendance int    `json:"attendance"`
}
