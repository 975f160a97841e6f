package models

// Teacher is the instructor profile owned by a TEACHER user.
type Teacher struct {
	ID         string `db:"id" json:"id"`
	UserID     string `db:"user_id" json:"user_id"`
	Department string `db:"department" json:"department"`
	Bio        string `db:"bio" json:"bio"`
}

// TeacherDetail joins the owning user's identity.
type TeacherDetail struct {
	Teacher
	FullName string `db:"full_name" json:"full_name"`
	Email    string `db:"email" json:"email"`
}
