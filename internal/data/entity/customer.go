package entity

type Customer struct {
	BaseSimple
	FullName string `db:"full_name"`
	Email    string `db:"email"`
	Phone    string `db:"phone"`
	Status   string `db:"status"`
	Notes    string `db:"notes"`
}
