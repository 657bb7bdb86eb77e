package share

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeProvider(t *testing.T, err error) *[]message {
	t.Helper()
	sent := []message{}
	original := senders[ProviderMailgun]
	senders[ProviderMailgun] = func(_ context.Context, m message) error {
		sent = append(sent, m)
		return err
	}
	t.Cleanup(func() {
		senders[ProviderMailgun] = original
	})
	return &sent
}

func TestSendMessageDryRun(t *testing.T) {
	sent := fakeProvider(t, nil)

	e := SendMessage(ProviderMailgun, nil, "shop@example.com", []string{"ana@example.com"}, "Report", "text", "", nil)
	assert.Nil(t, e)

	disabled := false
	e = SendMessage(ProviderMailgun, &disabled, "shop@example.com", []string{"ana@example.com"}, "Report", "text", "", nil)
	assert.Nil(t, e)
	assert.Empty(t, *sent)
}

func TestSendMessageSends(t *testing.T) {
	sent := fakeProvider(t, nil)
	enabled := true

	e := SendMessage(ProviderMailgun, &enabled, "shop@example.com", []string{" ana@example.com ", "", "luis@example.com"}, "Report", "text", "<p>html</p>",
		[]Attachment{ReportAttachment("report.pdf", []byte("%PDF-1.3"))})
	require.Nil(t, e)

	require.Len(t, *sent, 1)
	m := (*sent)[0]
	assert.Equal(t, []string{"ana@example.com", "luis@example.com"}, m.recipients)
	assert.Equal(t, "application/pdf", m.attachments[0].ContentType)
}

func TestSendMessageFailures(t *testing.T) {
	fakeProvider(t, errors.New("401 forbidden"))
	enabled := true

	assert.NotNil(t, SendMessage("pigeon", &enabled, "shop@example.com", []string{"ana@example.com"}, "s", "t", "", nil))
	assert.NotNil(t, SendMessage(ProviderMailgun, &enabled, "", []string{"ana@example.com"}, "s", "t", "", nil))
	assert.NotNil(t, SendMessage(ProviderMailgun, &enabled, "shop@example.com", []string{" "}, "s", "t", "", nil))
	assert.NotNil(t, SendMessage(ProviderMailgun, &enabled, "shop@example.com", []string{"ana@example.com"}, "s", "t", "", nil))
}

func TestSendMessageRejectsHeaderLineBreaks(t *testing.T) {
	sent := fakeProvider(t, nil)
	enabled := true

	tests := map[string]struct {
		sender     string
		recipients []string
		subject    string
	}{
		"sender":    {"shop@example.com\r\nBcc: all@example.com", []string{"ana@example.com"}, "Report"},
		"recipient": {"shop@example.com", []string{"ana@example.com\nBcc: all@example.com"}, "Report"},
		"subject":   {"shop@example.com", []string{"ana@example.com"}, "Report\r\nX-Spam: yes"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.NotNil(t, SendMessage(ProviderMailgun, &enabled, tt.sender, tt.recipients, tt.subject, "text", "", nil))
			assert.NotNil(t, SendMessage(ProviderMailgun, nil, tt.sender, tt.recipients, tt.subject, "text", "", nil))
		})
	}
	assert.Empty(t, *sent)
}

func TestBuildMIME(t *testing.T) {
	pdf := bytes.Repeat([]byte("%PDF-1.3 binary\x00\xff"), 20)
	raw, err := buildMIME(message{
		sender:      "shop@example.com",
		recipients:  []string{"ana@example.com", "luis@example.com"},
		subject:     "Reporte de marzo – Bogotá",
		text:        "Hola Ana,\nIncome: COP 500,00",
		html:        "<p>Hola Ana</p>",
		attachments: []Attachment{ReportAttachment("report-Acme-Co-20240305-1407.pdf", pdf)},
	})
	require.NoError(t, err)

	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)

	subject, err := new(mime.WordDecoder).DecodeHeader(parsed.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Reporte de marzo – Bogotá", subject)
	assert.Equal(t, "ana@example.com, luis@example.com", parsed.Header.Get("To"))

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	reader := multipart.NewReader(parsed.Body, params["boundary"])
	alternative, err := reader.NextPart()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(alternative.Header.Get("Content-Type"), "multipart/alternative"))

	attachment, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "report-Acme-Co-20240305-1407.pdf", attachment.FileName())
	encoded, err := io.ReadAll(attachment)
	require.NoError(t, err)
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, pdf, decoded)

	_, err = reader.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSummaryHTML(t *testing.T) {
	html := SummaryHTML("Hi <Ana> & co,\nNet: 5\n")

	assert.Contains(t, html, "Hi &lt;Ana&gt; &amp; co,<br>\nNet: 5</div>")
	assert.NotContains(t, html, "<br>\n</div>")
}

func TestCheckSendgridResponse(t *testing.T) {
	assert.NoError(t, checkSendgridResponse(&rest.Response{StatusCode: 202}))
	assert.Error(t, checkSendgridResponse(&rest.Response{StatusCode: 400, Body: `{"errors": []}`}))
	assert.Error(t, checkSendgridResponse(nil))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/plain", contentType(Attachment{Filename: "a.bin", ContentType: "text/plain"}))
	assert.Equal(t, "application/pdf", contentType(Attachment{Filename: "report.pdf"}))
	assert.Equal(t, "application/octet-stream", contentType(Attachment{Filename: "noext"}))
}
