package mail

import (
	"bytes"
	"fmt"
	"text/template"
)

// CodeMessage is the email carrying a one-time sign-in code. The code is kept
// as a structured field so callers and tests never have to scrape it back out
// of the rendered text.
type CodeMessage struct {
	Name string
	Code string
}

var codeTemplate = template.Must(template.New("code").Parse(`Hi {{.Name}},

your magic sign-in code is:

{{.Code}}

Enter it on the sign-in page within the next 10 minutes to continue.
If you did not request this code you can ignore this email.
`))

// Subject returns the message subject line.
func (CodeMessage) Subject() string {
	return "Your sketchbin magic code"
}

// Body renders the message text.
func (m CodeMessage) Body() (string, error) {
	var buf bytes.Buffer
	if err := codeTemplate.Execute(&buf, m); err != nil {
		return "", fmt.Errorf("render code message: %w", err)
	}
	return buf.String(), nil
}
