package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
)

const layout = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1E3A5F; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .button { display: inline-block; padding: 12px 24px; background: #1E3A5F; color: #fff; text-decoration: none; border-radius: 4px; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>{{template "title" .}}</h1></div>
        <div class="content">{{template "body" .}}</div>
        <div class="footer"><p>This is an automated message from the school careers portal.</p></div>
    </div>
</body>
</html>`

var templates = map[string]string{
	"verification": `{{define "title"}}Verify your email{{end}}
{{define "body"}}<p>Thanks for registering. Confirm your email address to continue your application.</p>
<p><a class="button" href="{{.Link}}">Verify email</a></p>
<p>This link expires in 24 hours. If you did not register, you can ignore this email.</p>{{end}}`,

	"login": `{{define "title"}}Your login link{{end}}
{{define "body"}}<p>Use the button below to sign in.</p>
<p><a class="button" href="{{.Link}}">Sign in</a></p>
<p>This link expires in 15 minutes and can only be used once.</p>{{end}}`,

	"welcome": `{{define "title"}}Welcome{{end}}
{{define "body"}}<p>Your email {{.Email}} is verified. You can now complete your profile and apply for open positions.</p>
<p><a class="button" href="{{.Link}}">Go to your profile</a></p>{{end}}`,

	"ops_new_candidate": `{{define "title"}}New verified candidate{{end}}
{{define "body"}}<p>A candidate just verified their email address.</p>
<p><strong>Email:</strong> {{.Email}}</p>{{end}}`,

	"application_received": `{{define "title"}}Application received{{end}}
{{define "body"}}<p>We received your application for <strong>{{.JobTitle}}</strong>.</p>
<p>Our team will review it and contact you at {{.Email}}.</p>{{end}}`,
}

var parsed = func() map[string]*template.Template {
	out := make(map[string]*template.Template, len(templates))
	for name, body := range templates {
		t := template.Must(template.New(name).Parse(layout))
		out[name] = template.Must(t.Parse(body))
	}
	return out
}()

// Data is the template input shared by all messages.
type Data struct {
	Email    string
	Link     string
	JobTitle string
}

// Message is a rendered email.
type Message struct {
	Subject string
	HTML    string
}

func render(name, subject string, data Data) (Message, error) {
	t, ok := parsed[name]
	if !ok {
		return Message{}, fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render %s email: %w", name, err)
	}
	return Message{Subject: subject, HTML: buf.String()}, nil
}

// ActionLink builds {base}{path}?token=..&email=.. with both values url-encoded.
func ActionLink(baseURL, path, token, email string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	return baseURL + path + "?" + q.Encode()
}

func Verification(link string) (Message, error) {
	return render("verification", "Verify your email address", Data{Link: link})
}

func LoginLink(link string) (Message, error) {
	return render("login", "Your sign-in link", Data{Link: link})
}

func Welcome(email, profileURL string) (Message, error) {
	return render("welcome", "Welcome to the careers portal", Data{Email: email, Link: profileURL})
}

func OpsNewCandidate(email string) (Message, error) {
	return render("ops_new_candidate", "New verified candidate: "+email, Data{Email: email})
}

func ApplicationReceived(email, jobTitle string) (Message, error) {
	return render("application_received", "Application received: "+jobTitle, Data{Email: email, JobTitle: jobTitle})
}
