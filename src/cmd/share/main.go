// in case you need to create an entrypoint with multiple subprograms
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"embroidery-reports/src/pkg/config"
	"embroidery-reports/src/pkg/share"
	"embroidery-reports/src/pkg/util"
)

/*
Email an already generated report. The summary file is the text the report
program printed; it becomes the plain text body and, escaped, the html body.
*/
func sendReport(subprogram string, flags []string) {
	// common flags
	subprogramCmd := flag.NewFlagSet(subprogram, flag.ExitOnError)
	configPath := subprogramCmd.String("config", "./cfg/config.json", "Path to your configuration file.")

	// custom flags
	provider := subprogramCmd.String("provider", "", "Provider to use when sending emails (default: share.provider)")
	senderAddress := subprogramCmd.String("sender", "", "Sender's address (default: share.sender)")
	recipientAddress := subprogramCmd.String("recipient", "", "Comma separated recipient addresses")
	subject := subprogramCmd.String("subject", "", "Subject of an email (default: file name)")
	pdfPath := subprogramCmd.String("pdf", "", "Report PDF to attach")
	summaryPath := subprogramCmd.String("summary", "", "Text file with the report summary")
	send := subprogramCmd.Bool("send", false, "Actually send; overrides share.send_emails")

	// parse and init config
	xerr.QuitIfError(subprogramCmd.Parse(flags), "Unable to subprogramCmd.Parse")
	config.InitializeConfig(*configPath)
	share.InitializeConfig(config.Section[share.Config]("share"))

	if *provider == "" {
		*provider = share.Cfg.Provider
	}
	if *senderAddress == "" {
		*senderAddress = share.Cfg.Sender
	}
	util.RequiredFlag(senderAddress, "sender")
	util.RequiredFlag(recipientAddress, "recipient")
	util.RequiredFlag(pdfPath, "pdf")
	util.RequiredFlag(summaryPath, "summary")
	util.EnsureFlags()

	config.RequireEnvVars(share.EnvVars[share.Provider(*provider)]...).QuitIf(xerr.ErrorTypeError)

	pdfBytes, err := os.ReadFile(*pdfPath)
	xerr.QuitIfError(err, fmt.Sprintf("Unable to read file '%s'", *pdfPath))
	summaryBytes, err := os.ReadFile(*summaryPath)
	xerr.QuitIfError(err, fmt.Sprintf("Unable to read file '%s'", *summaryPath))
	tl.Log(tl.Verbose, palette.BlueDim, "Summary:\n```\n%s\n```", summaryBytes)

	filename := filepath.Base(*pdfPath)
	if *subject == "" {
		*subject = strings.TrimSpace(share.Cfg.SubjectPrefix + " " + strings.TrimSuffix(filename, filepath.Ext(filename)))
	}

	sendEmails := share.Cfg.SendEmails
	if *send {
		sendEmails = send
	}

	summary := string(summaryBytes)
	e := share.SendMessage(
		share.Provider(*provider), sendEmails, *senderAddress, strings.Split(*recipientAddress, ","),
		*subject, summary, share.SummaryHTML(summary),
		[]share.Attachment{share.ReportAttachment(filename, pdfBytes)},
	)
	e.QuitIf(xerr.ErrorTypeError)
}

/*
Send a short test message through a provider to check credentials.
*/
func testProvider(subprogram string, flags []string) {
	subprogramCmd := flag.NewFlagSet(subprogram, flag.ExitOnError)
	configPath := subprogramCmd.String("config", "./cfg/config.json", "Path to your configuration file.")
	provider := subprogramCmd.String("provider", "mailgun", "Provider to use when sending emails")
	senderAddress := subprogramCmd.String("sender", "", "Sender's address")
	recipientAddress := subprogramCmd.String("recipient", "", "Recipient's address")

	xerr.QuitIfError(subprogramCmd.Parse(flags), "Unable to subprogramCmd.Parse")
	config.InitializeConfig(*configPath)
	share.InitializeConfig(config.Section[share.Config]("share"))

	util.RequiredFlag(senderAddress, "sender")
	util.RequiredFlag(recipientAddress, "recipient")
	util.RequiredFlag(provider, "provider")
	util.EnsureFlags()

	config.RequireEnvVars(share.EnvVars[share.Provider(*provider)]...).QuitIf(xerr.ErrorTypeError)

	sendEmails := true
	text := "Test message from the report mailer."
	e := share.SendMessage(share.Provider(*provider), &sendEmails, *senderAddress, strings.Split(*recipientAddress, ","), "Test subject", text, share.SummaryHTML(text), nil)
	e.QuitIf(xerr.ErrorTypeError)
}

func main() {
	// Check if there are enough arguments
	if len(os.Args) < 2 {
		tl.Log(tl.Error, palette.Red, "Usage: %s", "go run ./src/cmd/share subprogram_name (send-report or test-provider)")
		os.Exit(1)
	}
	subprogram := os.Args[1]
	flags := os.Args[2:]

	// Switch subprogram based on the first argument
	switch subprogram {
	case "send-report":
		sendReport(subprogram, flags)
	case "test-provider":
		testProvider(subprogram, flags)
	default:
		tl.Log(tl.Error, palette.Red, "Unknown subprogram: %s", subprogram)
		os.Exit(1)
	}
}
