package user

// User mirrors a row of the users table. Password holds the bcrypt hash and
// never serializes.
type User struct {
	ID       int32  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Age      int32  `json:"age" db:"age"`
	Email    string `json:"email" db:"email"`
	Password string `json:"-" db:"password"`
}

// UserWithPermissions carries the raw permission names joined from storage.
type UserWithPermissions struct {
	User
	Permissions []string
}

// Response is the read DTO returned by every user endpoint.
type Response struct {
	ID    int32  `json:"id"`
	Name  string `json:"name"`
	Age   int32  `json:"age"`
	Email string `json:"email"`
}

func toResponse(u *User) Response {
	return Response{
		ID:    u.ID,
		Name:  u.Name,
		Age:   u.Age,
		Email: u.Email,
	}
}
