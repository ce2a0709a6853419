package dto

// Session is the verified claim set of an identity provider token.
type Session struct {
	Subject   string
	Email     string
	FullName  string
	AvatarURL string
}
