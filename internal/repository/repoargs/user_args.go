package repoargs

type CreateUser struct {
	Email    string
	Name     string
	Password string
}
