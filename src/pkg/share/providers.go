package share

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/mailgun/mailgun-go/v4"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

// sendSES sends a raw MIME message so attachments go through unchanged.
func sendSES(ctx context.Context, m message) error {
	raw, err := buildMIME(m)
	if err != nil {
		return err
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	output, err := sesv2.NewFromConfig(cfg).SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.sender),
		Destination:      &sestypes.Destination{ToAddresses: m.recipients},
		Content: &sestypes.EmailContent{
			Raw: &sestypes.RawMessage{Data: raw},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}

	tl.Log(tl.Verbose, palette.Cyan, "SES message id '%s'", aws.ToString(output.MessageId))
	return nil
}

func sendMailgun(ctx context.Context, m message) error {
	mg := mailgun.NewMailgun(os.Getenv("MAILGUN_DOMAIN"), os.Getenv("MAILGUN_API_KEY"))

	msg := mg.NewMessage(m.sender, m.subject, m.text, m.recipients...)
	if m.html != "" {
		msg.SetHtml(m.html)
	}
	for _, attachment := range m.attachments {
		msg.AddBufferAttachment(attachment.Filename, attachment.Data)
	}

	response, id, err := mg.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("mailgun send: %w", err)
	}

	tl.Log(tl.Verbose, palette.Cyan, "Mailgun accepted '%s': %s", id, response)
	return nil
}

func sendSendgrid(ctx context.Context, m message) error {
	v3 := mail.NewV3Mail()
	v3.SetFrom(mail.NewEmail("", m.sender))
	v3.Subject = m.subject

	personalization := mail.NewPersonalization()
	for _, recipient := range m.recipients {
		personalization.AddTos(mail.NewEmail("", recipient))
	}
	v3.AddPersonalizations(personalization)

	v3.AddContent(mail.NewContent("text/plain", m.text))
	if m.html != "" {
		v3.AddContent(mail.NewContent("text/html", m.html))
	}

	for _, attachment := range m.attachments {
		a := mail.NewAttachment()
		a.SetContent(base64.StdEncoding.EncodeToString(attachment.Data))
		a.SetType(contentType(attachment))
		a.SetFilename(attachment.Filename)
		a.SetDisposition("attachment")
		v3.AddAttachment(a)
	}

	response, err := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY")).SendWithContext(ctx, v3)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	return checkSendgridResponse(response)
}

// checkSendgridResponse turns non-2xx answers into errors; the client only
// fails on transport problems.
func checkSendgridResponse(response *rest.Response) error {
	if response == nil {
		return fmt.Errorf("sendgrid returned no response")
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("sendgrid status %d: %s", response.StatusCode, response.Body)
	}
	tl.Log(tl.Verbose, palette.Cyan, "SendGrid answered '%s'", response.StatusCode)
	return nil
}
