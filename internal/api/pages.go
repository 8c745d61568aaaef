package api

import (
	"html/template"

	"github.com/labstack/echo/v4"

	"fileshare-backend/internal/models"
)

// The browser flow needs two rendered pages: the login form (with an
// inline error slot) and the file index. Anything richer belongs to a
// frontend, not this backend.

var loginTmpl = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>Sign in</title></head>
<body>
<h1>Sign in</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/login">
  <label>Username <input type="text" name="username" value="{{.Username}}"></label>
  <label>Password <input type="password" name="password"></label>
  <button type="submit">Sign in</button>
</form>
</body>
</html>
`))

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>Your files</title></head>
<body>
<h1>{{.User.DisplayName}}</h1>
<p><a href="/logout">Sign out</a></p>
<ul>
{{range .Files}}  <li><a href="{{.URL}}">{{.Name}}</a> ({{.Size}} bytes)</li>
{{else}}  <li>No files yet.</li>
{{end}}</ul>
<form method="post" action="/api/file-upload" enctype="multipart/form-data">
  <input type="file" name="file">
  <button type="submit">Upload</button>
</form>
</body>
</html>
`))

var errorTmpl = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<head><title>Error</title></head>
<body>
<p class="error">{{.Error}}</p>
<p><a href="/">Back</a></p>
</body>
</html>
`))

func (h *Handlers) renderLogin(c echo.Context, status int, username, errMsg string) error {
	return render(c, status, loginTmpl, map[string]string{
		"Username": username,
		"Error":    errMsg,
	})
}

func (h *Handlers) renderError(c echo.Context, status int, errMsg string) error {
	return render(c, status, errorTmpl, map[string]string{"Error": errMsg})
}

func (h *Handlers) renderIndex(c echo.Context, user *models.User, files []models.FileInfo) error {
	return render(c, 200, indexTmpl, map[string]interface{}{
		"User":  user.Public(),
		"Files": files,
	})
}

func render(c echo.Context, status int, tmpl *template.Template, data interface{}) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return tmpl.Execute(c.Response(), data)
}
