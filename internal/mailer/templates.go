package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

const serverName = "Blog"

var layout = template.Must(template.New("layout").Parse(`<div style="background-color: {{.Color}}; padding: 5px 15px;">
  <h1 style="color: white;">{{.Title}}</h1>
</div>
<div style="font-size: 16px; padding: 5px 15px;">
  <br>
  {{if .Name}}<div>Hi <b>{{.Name}}</b>!</div><br>{{end}}
  <div><b>{{.Lead}}</b></div>
  <br>
  {{if .Link}}<div><a href="{{.Link}}">{{.Link}}</a></div>{{end}}
  {{if .Text}}<div>{{.Text}}</div>{{end}}
  <br>
</div>
`))

type view struct {
	Color string
	Title string
	Name  string
	Lead  string
	Link  string
	Text  string
}

// Letter — готовое к отправке письмо.
type Letter struct {
	Subject string
	HTML    string
}

func render(v view) (Letter, error) {
	var buf bytes.Buffer
	if err := layout.Execute(&buf, v); err != nil {
		return Letter{}, fmt.Errorf("mailer.render: %w", err)
	}

	return Letter{Subject: v.Title, HTML: buf.String()}, nil
}

// link склеивает адрес фронтенда и путь со страницей-обработчиком кода.
func link(frontendURL, page, code string) string {
	return strings.TrimRight(frontendURL, "/") + "/" + page + "/" + code
}

// AccountRecovery — письмо со ссылкой разблокировки учётной записи.
func AccountRecovery(frontendURL, code, name string) (Letter, error) {
	return render(view{
		Color: "#006d0d",
		Title: serverName + ": Account Recovery",
		Name:  name,
		Lead:  "Your Account Recovery link:",
		Link:  link(frontendURL, "account-recovery", code),
	})
}

// PasswordRecovery — письмо со ссылкой сброса пароля.
func PasswordRecovery(frontendURL, code, name string) (Letter, error) {
	return render(view{
		Color: "#006d0d",
		Title: serverName + ": Password Recovery",
		Name:  name,
		Lead:  "Your Password Recovery link:",
		Link:  link(frontendURL, "password-recovery", code),
	})
}

// EmailVerification — письмо для подтверждения текущего адреса.
func EmailVerification(frontendURL, code, name string) (Letter, error) {
	return render(view{
		Color: "#006d0d",
		Title: serverName + ": Email Verification",
		Name:  name,
		Lead:  "Your Email Verification link:",
		Link:  link(frontendURL, "verify-email", code),
	})
}

// EmailChange — письмо на новый адрес при смене e-mail.
func EmailChange(frontendURL, code, name string) (Letter, error) {
	return render(view{
		Color: "#006d0d",
		Title: serverName + ": Email Change",
		Name:  name,
		Lead:  "Confirm your new email address:",
		Link:  link(frontendURL, "change-email", code),
	})
}

// InternalError — уведомление операторов о необработанной ошибке.
func InternalError(env, request, errText string, at time.Time) (Letter, error) {
	return render(view{
		Color: "#7a0004",
		Title: fmt.Sprintf("%s: INTERNAL SERVER ERROR [%s]", serverName, strings.ToUpper(env)),
		Lead:  "This is a notification about an internal error!",
		Text:  fmt.Sprintf("%s: %s (%s)", request, errText, at.UTC().Format(time.RFC3339)),
	})
}
