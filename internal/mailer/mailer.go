package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"

	"github.com/inbucket/html2text"
	"github.com/wneessen/go-mail"

	"toyrental/internal/config"
	"toyrental/internal/domain"
)

// Sender delivers client-facing reservation mail. Implementations must
// be safe for concurrent use; callers treat every send as best-effort.
type Sender interface {
	SendConfirmation(ctx context.Context, res *domain.Reservation) error
	SendReminder(ctx context.Context, res *domain.Reservation) error
}

// SMTPMailer sends multipart mail (plain text derived from the HTML
// body) through a configured SMTP relay.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

func NewSMTP(cfg config.SMTPConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &SMTPMailer{client: client, from: cfg.From}, nil
}

func (m *SMTPMailer) SendConfirmation(ctx context.Context, res *domain.Reservation) error {
	html, err := render(confirmationTmpl, res)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Reservation confirmed: %s", equipmentName(res))
	return m.send(ctx, res.ClientContact, subject, html)
}

func (m *SMTPMailer) SendReminder(ctx context.Context, res *domain.Reservation) error {
	html, err := render(reminderTmpl, res)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Reminder: your %s rental starts tomorrow", equipmentName(res))
	return m.send(ctx, res.ClientContact, subject, html)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, htmlBody string) error {
	if to == "" {
		return fmt.Errorf("no recipient address")
	}

	text, err := html2text.FromString(htmlBody, html2text.Options{PrettyTables: true})
	if err != nil {
		return fmt.Errorf("text alternative: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, text)
	msg.AddAlternativeString(mail.TypeTextHTML, htmlBody)

	return m.client.DialAndSendWithContext(ctx, msg)
}

// LogMailer is the fallback when no SMTP relay is configured: outgoing
// mail is logged and reported as sent.
type LogMailer struct{}

func (LogMailer) SendConfirmation(_ context.Context, res *domain.Reservation) error {
	log.Printf("mail (not configured) confirmation reservation=%s to=%s", res.Reference, res.ClientContact)
	return nil
}

func (LogMailer) SendReminder(_ context.Context, res *domain.Reservation) error {
	log.Printf("mail (not configured) reminder reservation=%s to=%s", res.Reference, res.ClientContact)
	return nil
}

func render(t *template.Template, res *domain.Reservation) (string, error) {
	data := struct {
		ClientName    string
		EquipmentName string
		StartDate     string
		EndDate       string
		DurationDays  int
		Reference     string
	}{
		ClientName:    res.ClientName,
		EquipmentName: equipmentName(res),
		StartDate:     res.StartDate.Format("02/01/2006"),
		EndDate:       res.EndDate.Format("02/01/2006"),
		DurationDays:  res.DurationDays(),
		Reference:     res.Reference,
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func equipmentName(res *domain.Reservation) string {
	if res.Equipment != nil {
		return res.Equipment.Name
	}
	return fmt.Sprintf("equipment #%d", res.EquipmentID)
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`
<h2>Your reservation is confirmed!</h2>
<p>Hello {{.ClientName}},</p>
<p>We confirmed your reservation for the following item:</p>
<ul>
	<li><strong>Item:</strong> {{.EquipmentName}}</li>
	<li><strong>Period:</strong> {{.StartDate}} to {{.EndDate}} ({{.DurationDays}} days)</li>
	<li><strong>Reference:</strong> {{.Reference}}</li>
</ul>
<p>Pickup details will follow in a reminder the day before your rental starts.</p>
<p>Thank you!</p>
`))

var reminderTmpl = template.Must(template.New("reminder").Parse(`
<h2>Dear {{.ClientName}},</h2>
<p>Your reservation starts <strong>tomorrow</strong>, {{.StartDate}}.</p>
<h3>Pickup details:</h3>
<ul>
	<li><strong>Reserved item:</strong> {{.EquipmentName}}</li>
	<li><strong>Reference:</strong> {{.Reference}}</li>
	<li><strong>Required documents:</strong> photo ID and proof of address</li>
</ul>
<p>If anything changed, reply to this email before pickup.</p>
`))
