package mailer

import (
	"bytes"
	"html/template"
	"time"
)

// PairInvitation carries everything the pair notification email needs.
type PairInvitation struct {
	RecipientName string
	PartnerName   string
	PartnerEmail  string
	CampaignTitle string
	EndDate       time.Time
	EvaluationURL string
}

var pairHTMLTmpl = template.Must(template.New("pair").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2 style="color: #6f4e37;">You have a coffee meeting!</h2>
  <p>Hi {{.RecipientName}},</p>
  <p>As part of the <strong>{{.CampaignTitle}}</strong> campaign, you have been
  matched with <strong>{{.PartnerName}}</strong> ({{.PartnerEmail}}).</p>
  <p>Reach out and schedule a coffee together before
  <strong>{{.EndDate.Format "January 2, 2006"}}</strong>.</p>
  {{if .EvaluationURL}}
  <p>After your meeting, please share your feedback:</p>
  <p><a href="{{.EvaluationURL}}" style="background: #6f4e37; color: #fff; padding: 10px 20px; text-decoration: none; border-radius: 4px;">Evaluate your meeting</a></p>
  {{end}}
  <p>Enjoy your coffee!</p>
</body>
</html>`))

// RenderPairInvitation produces the HTML and plain-text bodies for a pair
// notification.
func RenderPairInvitation(inv PairInvitation) (html string, text string, err error) {
	var buf bytes.Buffer
	if err := pairHTMLTmpl.Execute(&buf, inv); err != nil {
		return "", "", err
	}

	plain := "Hi " + inv.RecipientName + ",\n\n" +
		"As part of the " + inv.CampaignTitle + " campaign, you have been matched with " +
		inv.PartnerName + " (" + inv.PartnerEmail + ").\n\n" +
		"Reach out and schedule a coffee together before " + inv.EndDate.Format("January 2, 2006") + ".\n"
	if inv.EvaluationURL != "" {
		plain += "\nAfter your meeting, please share your feedback: " + inv.EvaluationURL + "\n"
	}
	plain += "\nEnjoy your coffee!\n"

	return buf.String(), plain, nil
}
