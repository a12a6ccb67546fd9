package demos

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
)

// User is built from the registration form. The password never leaves the
// value.
type User struct {
	FirstName string
	LastName  string
	Email     string
	password  string
	DOB       string
}

// UserFromForm strips every tag from the submitted fields.
func UserFromForm(form url.Values) User {
	policy := bluemonday.StrictPolicy()
	clean := func(key string) string {
		return strings.TrimSpace(policy.Sanitize(form.Get(key)))
	}
	return User{
		FirstName: clean("fname"),
		LastName:  clean("lname"),
		Email:     SanitizeEmail(form.Get("email")),
		password:  form.Get("pwd"),
		DOB:       clean("dob"),
	}
}

// Call dispatches op on the user. Operations the type does not offer
// answer "Method not found".
func (u User) Call(op Operation) (string, error) {
	switch op {
	case OpCreate:
		return "User account created...", nil
	default:
		return "Method not found", ErrUnknownOperation
	}
}

// PasswordMatches compares the confirmation field with the password.
func (u User) PasswordMatches(confirm string) bool {
	return u.password == confirm
}

// Fields returns the displayable fields in form order.
func (u User) Fields() [][2]string {
	return [][2]string{
		{"fname", u.FirstName},
		{"lname", u.LastName},
		{"email", u.Email},
		{"dob", u.DOB},
	}
}

// Registration handles a submitted registration form. Without a submission
// it writes nothing.
func Registration() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		form := EnvFrom(ctx).Form
		if form == nil || !form.Has("submit") {
			return nil
		}

		p := newPrinter(w)
		user := UserFromForm(form)
		if !user.PasswordMatches(form.Get("con-pwd")) {
			p.para("Passwords do not match.")
			return p.err
		}

		for _, op := range []Operation{OpCreate, OpSave} {
			// unknown operations still print their answer
			result, _ := user.Call(op)
			p.para("%s", result)
		}

		p.raw(`<table class="table table-sm">` + "\n")
		for _, field := range user.Fields() {
			p.raw("<tr>")
			p.tag("th", "%s", field[0])
			p.tag("td", "%s", field[1])
			p.raw("</tr>\n")
		}
		p.raw("</table>\n")
		return p.err
	})
}
