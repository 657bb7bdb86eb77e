// Package reporting runs a report end to end: range check, record fetch,
// aggregation, composition and PDF rendering.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"embroidery-reports/src/pkg/aggregate"
	"embroidery-reports/src/pkg/canvas"
	"embroidery-reports/src/pkg/compose"
	"embroidery-reports/src/pkg/pdf"
	"embroidery-reports/src/pkg/record"
)

// Kind selects which records a report covers.
type Kind string

const (
	// KindCash covers cash movements only.
	KindCash Kind = "cash"
	// KindFinance covers orders and payments, with aging over every open order.
	KindFinance Kind = "finance"
	// KindClient is a statement of one client's orders and payments.
	KindClient Kind = "client"
)

var Kinds = []Kind{KindCash, KindFinance, KindClient}

var (
	ErrUnknownKind   = errors.New("unknown report kind")
	ErrMissingClient = errors.New("client report needs a client id")
	ErrUnknownClient = errors.New("unknown client")
)

func ParseKind(raw string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Kinds {
		if kind == known {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: '%s'", ErrUnknownKind, raw)
}

// Store is a record source that can also resolve clients.
type Store interface {
	aggregate.Source
	LookupClient(ctx context.Context, id string) (record.Client, bool, error)
}

type Request struct {
	Kind     Kind
	From     time.Time
	To       time.Time
	ClientID string
	Category string
	// Recipient is greeted in the share summary.
	Recipient string
	// GeneratedAt defaults to now.
	GeneratedAt time.Time
}

type Output struct {
	ReportID string
	Kind     Kind
	Result   *aggregate.Result
	Metadata compose.Metadata
	Client   *record.Client
	Document *canvas.Document
	// PDF is nil for Summarize.
	PDF      []byte
	Filename string
	Summary  string
}

/*
Service generates reports. Every call computes a fresh result from the store;
nothing is cached between requests apart from the shop logo.
*/
type Service struct {
	store      Store
	cfg        Config
	location   *time.Location
	aggregator *aggregate.Aggregator
	composer   *compose.Composer
	renderer   *pdf.Renderer
	logo       *compose.Logo
	now        func() time.Time
}

func New(store Store, cfg Config) *Service {
	location := cfg.Location()

	repeatHeaders := true
	if cfg.RepeatTableHeaders != nil {
		repeatHeaders = *cfg.RepeatTableHeaders
	}

	s := &Service{
		store:    store,
		cfg:      cfg,
		location: location,
		aggregator: aggregate.New(store, aggregate.Options{
			TopCategories:          cfg.TopCategories,
			CounterpartyCategories: cfg.CounterpartyCategories,
		}),
		composer: compose.New(pdf.NewMetrics(), compose.Options{
			RepeatTableHeaders: repeatHeaders,
			TopCounterparties:  cfg.TopClients,
			Currency:           cfg.Currency,
			ShopName:           cfg.ShopName,
		}),
		renderer: pdf.NewRenderer(),
		now:      time.Now,
	}

	if cfg.LogoPath != "" {
		logo, err := pdf.LoadLogo(cfg.LogoPath, cfg.LogoMaxWidth, cfg.LogoMaxHeight)
		if err != nil {
			tl.Log(tl.Warning, palette.PurpleBright, "Logo is %s, reports go without it: %s", "unavailable", err)
		} else {
			s.logo = logo
		}
	}

	return s
}

// Location is the timezone report dates are interpreted in.
func (s *Service) Location() *time.Location {
	return s.location
}

// Generate produces the PDF, its filename and the share summary.
func (s *Service) Generate(ctx context.Context, req Request) (*Output, error) {
	return s.run(ctx, req, true)
}

// Summarize does everything Generate does except rendering the PDF.
func (s *Service) Summarize(ctx context.Context, req Request) (*Output, error) {
	return s.run(ctx, req, false)
}

func (s *Service) run(ctx context.Context, req Request, render bool) (*Output, error) {
	kind, err := ParseKind(string(req.Kind))
	if err != nil {
		return nil, err
	}
	if kind == KindClient && strings.TrimSpace(req.ClientID) == "" {
		return nil, ErrMissingClient
	}

	// checked before anything touches the store
	rng, err := aggregate.NewRange(req.From.In(s.location), req.To.In(s.location))
	if err != nil {
		return nil, err
	}

	out := &Output{ReportID: uuid.NewString(), Kind: kind}
	generatedAt := req.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = s.now()
	}
	generatedAt = generatedAt.In(s.location)

	tl.Log(tl.Info, palette.BlueBold, "Generating '%s' report '%s' for '%s'", kind, out.ReportID, rng.Label())

	query := aggregate.Query{Range: rng, Category: req.Category}
	switch kind {
	case KindCash:
		query.Kinds = []record.Kind{record.KindCashMovement}
	case KindFinance:
		query.Kinds = []record.Kind{record.KindOrder, record.KindPayment}
		query.WithAging = true
	case KindClient:
		client, found, err := s.store.LookupClient(ctx, req.ClientID)
		if err != nil {
			return nil, &aggregate.SourceError{Op: "lookup client", Err: err}
		}
		if !found {
			return nil, fmt.Errorf("%w: '%s'", ErrUnknownClient, req.ClientID)
		}
		out.Client = &client
		query.Kinds = []record.Kind{record.KindOrder, record.KindPayment}
		query.ClientID = client.ID
		query.WithAging = true
	}

	out.Result, err = s.aggregator.Run(ctx, query)
	if err != nil {
		return nil, err
	}
	if out.Result.Empty() {
		tl.Log(tl.Warning, palette.Yellow, "No records in range '%s' for '%s' report", rng.Label(), kind)
	}
	tl.LogJSON(tl.Verbose, palette.CyanDim, "Report totals", out.Result.Totals)

	out.Metadata = s.metadata(kind, out.Client, rng, generatedAt, out.ReportID, req.Recipient)
	out.Filename = compose.Filename(out.Metadata.Entity, generatedAt, "pdf")
	out.Summary = compose.BuildShareSummary(out.Result, out.Metadata)
	if !render {
		return out, nil
	}

	out.Document, err = s.composer.Compose(out.Result, out.Metadata)
	if err != nil {
		return nil, err
	}
	out.PDF, err = s.renderer.Render(out.Document)
	if err != nil {
		return nil, err
	}

	tl.Log(tl.Info1, palette.Green, "Generated '%s' ('%s' pages)", out.Filename, len(out.Document.Pages))
	return out, nil
}

func (s *Service) metadata(kind Kind, client *record.Client, rng aggregate.Range, generatedAt time.Time, reportID, recipient string) compose.Metadata {
	meta := compose.Metadata{
		GeneratedAt: generatedAt,
		Author:      s.cfg.Author,
		RangeLabel:  rng.Label(),
		Entity:      s.cfg.ShopName,
		ReportID:    reportID,
		Recipient:   recipient,
		Currency:    s.cfg.Currency,
		Logo:        s.logo,
	}

	switch kind {
	case KindCash:
		meta.Title = "Cash report"
	case KindFinance:
		meta.Title = "Finance report"
	case KindClient:
		name := client.Name
		if strings.TrimSpace(name) == "" {
			name = client.ID
		}
		meta.Title = "Client statement: " + name
		meta.Entity = name
		meta.HighlightBalance = true
		if meta.Recipient == "" {
			meta.Recipient = name
		}
	}
	return meta
}
