package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"embroidery-reports/src/pkg/config"
	"embroidery-reports/src/pkg/reporting"
	"embroidery-reports/src/pkg/share"
	"embroidery-reports/src/pkg/store"
	"embroidery-reports/src/pkg/util"
)

/*
reportOptions holds the parsed command line.
*/
type reportOptions struct {
	Kind       reporting.Kind `json:"kind"`
	From       time.Time      `json:"from"`
	To         time.Time      `json:"to"`
	ClientID   string         `json:"client_id"`
	Category   string         `json:"category"`
	OutDir     string         `json:"out_dir"`
	ExportDir  string         `json:"export_dir"`
	TopClients int            `json:"top_clients"`

	Share      bool     `json:"share"`
	Provider   string   `json:"provider"`
	Sender     string   `json:"sender"`
	Recipients []string `json:"recipients"`
}

/*
main generates one report from a record export and writes it as PDF.

Example:

	go run ./src/cmd/report -kind client -client c-102 -from 2024-03-01 -to 2024-03-31 -out ./reports
*/
func main() {
	options := parseFlags()
	tl.LogJSON(tl.Verbose, palette.CyanDim, "Report options", options)

	tl.Log(tl.Notice, palette.BlueBold, "Generating '%s' report from '%s'", options.Kind, options.ExportDir)

	service := reporting.New(store.NewExportDir(options.ExportDir, store.Cfg.Location(reporting.Cfg.Location())), reporting.Cfg)

	output, err := service.Generate(context.Background(), reporting.Request{
		Kind:     options.Kind,
		From:     options.From,
		To:       options.To,
		ClientID: options.ClientID,
		Category: options.Category,
	})
	xerr.QuitIfError(err, "generate report")

	outputPath, e := writeReport(options.OutDir, output.Filename, output.PDF)
	e.QuitIf(xerr.ErrorTypeError)

	fmt.Print(output.Summary)

	if !options.Share {
		return
	}
	subject := strings.TrimSpace(share.Cfg.SubjectPrefix + " " + output.Metadata.Title + " " + output.Metadata.RangeLabel)
	e = share.SendMessage(
		share.Provider(options.Provider), share.Cfg.SendEmails, options.Sender, options.Recipients,
		subject, output.Summary, share.SummaryHTML(output.Summary),
		[]share.Attachment{share.ReportAttachment(output.Filename, output.PDF)},
	)
	e.QuitIf(xerr.ErrorTypeError)

	tl.Log(tl.Info1, palette.Green, "Shared '%s'", outputPath)
}

/*
parseFlags parses CLI flags, initializes config and returns validated options.

Defaults:
- range: first day of the current month until today, in the report timezone
- export directory: store.export_dir from the config file
*/
func parseFlags() reportOptions {
	configPath := flag.String("config", "./cfg/config.json", "Path to your configuration file.")

	kindFlag := flag.String("kind", "finance", "Report kind: cash, finance or client")
	fromFlag := flag.String("from", "", "First day YYYY-MM-DD (default: first day of the month of -to)")
	toFlag := flag.String("to", "", "Last day YYYY-MM-DD (default: today)")
	clientFlag := flag.String("client", "", "Client id, required for -kind client")
	categoryFlag := flag.String("category", "", "Only records of this category")
	outFlag := flag.String("out", "./reports", "Directory the PDF is written to")
	exportFlag := flag.String("export", "", "Record export directory (default: store.export_dir)")
	topClientsFlag := flag.Int("top-clients", 0, "Clients listed in the ranking, 1-50 (default: report.top_clients)")

	shareFlag := flag.Bool("share", false, "Email the report after writing it")
	providerFlag := flag.String("provider", "", "Email provider: ses, mailgun or sendgrid (default: share.provider)")
	senderFlag := flag.String("sender", "", "Sender address (default: share.sender)")
	recipientFlag := flag.String("recipient", "", "Comma separated recipient addresses")

	flag.Parse()

	config.InitializeConfig(*configPath)
	reporting.InitializeConfig(config.Section[reporting.Config]("report"))
	store.InitializeConfig(config.Section[store.Config]("store"))
	share.InitializeConfig(config.Section[share.Config]("share"))

	kind, err := reporting.ParseKind(*kindFlag)
	xerr.QuitIfError(err, "parse -kind")
	if kind == reporting.KindClient {
		util.RequiredFlag(clientFlag, "client")
	}

	options := reportOptions{
		Kind:      kind,
		ClientID:  strings.TrimSpace(*clientFlag),
		Category:  strings.TrimSpace(*categoryFlag),
		OutDir:    *outFlag,
		ExportDir: firstNonEmpty(*exportFlag, store.Cfg.ExportDir),
		Share:     *shareFlag,
		Provider:  firstNonEmpty(*providerFlag, share.Cfg.Provider),
		Sender:    firstNonEmpty(*senderFlag, share.Cfg.Sender),
	}

	if options.Share {
		config.RequireEnvVars(share.EnvVars[share.Provider(options.Provider)]...).QuitIf(xerr.ErrorTypeError)
		util.RequiredFlag(recipientFlag, "recipient")
		util.RequiredFlag(&options.Sender, "sender")
		options.Recipients = strings.Split(*recipientFlag, ",")
	}
	util.EnsureFlags()

	if *topClientsFlag != 0 {
		reporting.Cfg.TopClients = util.Clamp(*topClientsFlag, 1, 50)
	}
	options.TopClients = reporting.Cfg.TopClients

	var e *xerr.Error
	options.From, options.To, e = parseRange(*fromFlag, *toFlag, time.Now().In(reporting.Cfg.Location()))
	e.QuitIf(xerr.ErrorTypeError)

	return options
}

/*
parseRange turns the -from and -to flags into days in now's location.

An empty -to means today and an empty -from the first day of the month of
-to. Ordering is left to the report service, which rejects inverted ranges.
*/
func parseRange(fromRaw, toRaw string, now time.Time) (from time.Time, to time.Time, e *xerr.Error) {
	to = now
	if strings.TrimSpace(toRaw) != "" {
		parsed, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(toRaw), now.Location())
		if err != nil {
			return from, to, xerr.NewError(err, "parse -to", toRaw)
		}
		to = parsed
	}

	from = time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, now.Location())
	if strings.TrimSpace(fromRaw) != "" {
		parsed, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(fromRaw), now.Location())
		if err != nil {
			return from, to, xerr.NewError(err, "parse -from", fromRaw)
		}
		from = parsed
	}

	return from, to, nil
}

/*
writeReport saves the PDF as outDir/filename, creating outDir when needed.
*/
func writeReport(outDir string, filename string, pdf []byte) (outputPath string, e *xerr.Error) {
	if len(pdf) == 0 {
		return "", xerr.NewError(errors.New("empty document"), "write report", filename)
	}

	err := os.MkdirAll(outDir, 0o755)
	if err != nil {
		return "", xerr.NewError(err, "create output directory", outDir)
	}

	outputPath = filepath.Join(outDir, filename)
	err = os.WriteFile(outputPath, pdf, 0o644)
	if err != nil {
		return "", xerr.NewError(err, "write report file", outputPath)
	}

	tl.Log(tl.Info1, palette.Green, "Saved report to '%s'", outputPath)
	return outputPath, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
