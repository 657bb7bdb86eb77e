package share

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"time"
)

func contentType(attachment Attachment) string {
	if attachment.ContentType != "" {
		return attachment.ContentType
	}
	if byExtension := mime.TypeByExtension(extension(attachment.Filename)); byExtension != "" {
		return byExtension
	}
	return "application/octet-stream"
}

func extension(filename string) string {
	dot := strings.LastIndex(filename, ".")
	if dot < 0 {
		return ""
	}
	return filename[dot:]
}

/*
buildMIME renders m as an RFC 5322 message: multipart/mixed holding a
multipart/alternative with the text and html bodies, then one base64 part per
attachment.
*/
func buildMIME(m message) ([]byte, error) {
	var buf bytes.Buffer
	mixed := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", m.sender)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(m.recipients, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mixed.Boundary())

	var alternativeBody bytes.Buffer
	alternative := multipart.NewWriter(&alternativeBody)
	bodies := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=utf-8", m.text},
		{"text/html; charset=utf-8", m.html},
	}
	for _, body := range bodies {
		if body.content == "" {
			continue
		}
		part, err := alternative.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {body.contentType},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		writer := quotedprintable.NewWriter(part)
		_, err = writer.Write([]byte(body.content))
		if err != nil {
			return nil, err
		}
		err = writer.Close()
		if err != nil {
			return nil, err
		}
	}
	err := alternative.Close()
	if err != nil {
		return nil, err
	}

	part, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {fmt.Sprintf("multipart/alternative; boundary=%q", alternative.Boundary())},
	})
	if err != nil {
		return nil, err
	}
	_, err = part.Write(alternativeBody.Bytes())
	if err != nil {
		return nil, err
	}

	for _, attachment := range m.attachments {
		part, err = mixed.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {fmt.Sprintf("%s; name=%q", contentType(attachment), attachment.Filename)},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", attachment.Filename)},
		})
		if err != nil {
			return nil, err
		}
		err = writeBase64Lines(part, attachment.Data)
		if err != nil {
			return nil, err
		}
	}

	err = mixed.Close()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeBase64Lines writes data base64-encoded in 76 character lines.
func writeBase64Lines(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		_, err := w.Write([]byte(encoded[:76] + "\r\n"))
		if err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err := w.Write([]byte(encoded + "\r\n"))
	return err
}

// SummaryHTML renders a plain-text summary as a minimal html body.
func SummaryHTML(summary string) string {
	lines := strings.Split(strings.TrimRight(summary, "\n"), "\n")
	for index, line := range lines {
		lines[index] = html.EscapeString(line)
	}
	return `<div style="font-family: Helvetica, Arial, sans-serif; font-size: 14px">` + strings.Join(lines, "<br>\n") + "</div>"
}

// ReportAttachment wraps a rendered PDF for SendMessage.
func ReportAttachment(filename string, pdf []byte) Attachment {
	return Attachment{Filename: filename, ContentType: "application/pdf", Data: pdf}
}
