package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"robora/internal/export"
	"robora/internal/query"
	"robora/internal/question"
	"robora/internal/schema"
	"robora/internal/store"
)

// OpenStore creates the storage provider for one namespace file. Injected
// so tests can substitute an in-memory provider.
type OpenStore func(path string) (store.Provider, error)

// PipelineConfig configures a batch run.
type PipelineConfig struct {
	OutputDir        string
	Workers          int
	MaxQuestions     int // 0 = unlimited
	FailureThreshold float64
	Retry            RetryConfig
}

// Pipeline runs the two-step ministry workflow for a list of domains.
//
// Step 1 collects the responsible organization for the domain across all
// reference countries. Step 2 takes the (organization, country) hand-off
// pairs from step 1 and assesses each organization's cybersecurity
// responsibility. Each step owns its own storage namespace under the
// domain's output directory.
type Pipeline struct {
	handler   query.Handler
	openStore OpenStore
	countries []string
	cfg       PipelineConfig
	log       *zap.Logger
}

// DomainResult is the per-domain entry of the batch report.
type DomainResult struct {
	Domain        string
	Organizations int // step-1 rows exported
	Assessments   int // step-2 rows exported
	Err           error
}

// NewPipeline builds a pipeline. openStore may be nil, in which case the
// SQLite provider is used.
func NewPipeline(handler query.Handler, countries []string, cfg PipelineConfig, log *zap.Logger) (*Pipeline, error) {
	if len(countries) == 0 {
		return nil, fmt.Errorf("pipeline requires a non-empty country list")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Retry.MaxRetries == 0 && cfg.Retry.BaseDelay == 0 {
		cfg.Retry = DefaultRetryConfig()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		handler: handler,
		openStore: func(path string) (store.Provider, error) {
			return store.NewSQLite(path)
		},
		countries: countries,
		cfg:       cfg,
		log:       log,
	}, nil
}

// SetOpenStore overrides the storage factory.
func (p *Pipeline) SetOpenStore(open OpenStore) { p.openStore = open }

// RunBatch processes the domains strictly sequentially. Sequencing between
// domains is a deliberate rate-limit control on the answering backend, so
// total concurrency never exceeds one domain's worker count. A domain
// failure is recorded and does not stop the remaining domains.
func (p *Pipeline) RunBatch(ctx context.Context, domains []string) []DomainResult {
	results := make([]DomainResult, 0, len(domains))
	for i, domain := range domains {
		p.log.Info("processing domain",
			zap.String("domain", domain),
			zap.Int("position", i+1),
			zap.Int("of", len(domains)))

		res := p.RunDomain(ctx, domain)
		if res.Err != nil {
			p.log.Error("domain failed", zap.String("domain", domain), zap.Error(res.Err))
		} else {
			p.log.Info("domain complete",
				zap.String("domain", domain),
				zap.Int("organizations", res.Organizations),
				zap.Int("assessments", res.Assessments))
		}
		results = append(results, res)
	}
	return results
}

// RunDomain executes both steps for one domain.
func (p *Pipeline) RunDomain(ctx context.Context, domain string) DomainResult {
	domain = titleCase(strings.TrimSpace(domain))
	res := DomainResult{Domain: domain}

	outDir := filepath.Join(p.cfg.OutputDir, domainSlug(domain))

	handoff, err := p.stepOrganizations(ctx, domain, outDir)
	if err != nil {
		res.Err = fmt.Errorf("step 1 (organizations): %w", err)
		return res
	}
	res.Organizations = len(handoff.organizations)

	assessed, err := p.stepCyberAssessment(ctx, domain, outDir, handoff)
	if err != nil {
		res.Err = fmt.Errorf("step 2 (cyber assessment): %w", err)
		return res
	}
	res.Assessments = assessed
	return res
}

// handoffTable is the flattened step-1 output consumed by step 2. Read-only
// once produced.
type handoffTable struct {
	organizations []string
	countries     []string
}

func (p *Pipeline) stepOrganizations(ctx context.Context, domain, outDir string) (*handoffTable, error) {
	st, err := p.openStore(filepath.Join(outDir, "organization.db"))
	if err != nil {
		return nil, err
	}
	defer st.Close()

	set := schema.OrganizationSet([]string{domain}, p.countries)
	set.MaxQuestions = p.cfg.MaxQuestions

	if err := p.dispatch(ctx, set, st); err != nil {
		return nil, err
	}

	answers, err := st.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("no answers produced for %s; check whether questions were processed", domain)
	}

	handoff := &handoffTable{}
	for _, ans := range answers {
		value, err := schema.Decode(schema.Kind(ans.Question.Schema), ans.Payload)
		if err != nil {
			return nil, fmt.Errorf("decode persisted answer: %w", err)
		}
		org, ok := value.(*schema.OrganizationAnswer)
		if !ok {
			return nil, fmt.Errorf("unexpected answer kind %q in organization namespace", ans.Question.Schema)
		}
		handoff.organizations = append(handoff.organizations, org.OrganizationName)
		handoff.countries = append(handoff.countries, ans.Question.Bindings["country"])
	}

	// Citation-enrichment columns are dropped from the step-1 CSV.
	table, err := export.Flatten(answers, []string{"domain", "country"}, false)
	if err != nil {
		return nil, err
	}
	csvPath := filepath.Join(outDir, fmt.Sprintf("organization_names_%s.csv", domainSlug(domain)))
	if err := export.WriteCSV(csvPath, table); err != nil {
		return nil, err
	}
	p.log.Info("saved organizations",
		zap.String("domain", domain),
		zap.Int("rows", len(table.Rows)),
		zap.String("path", csvPath))

	return handoff, nil
}

func (p *Pipeline) stepCyberAssessment(ctx context.Context, domain, outDir string, handoff *handoffTable) (int, error) {
	st, err := p.openStore(filepath.Join(outDir, "organization_cyber.db"))
	if err != nil {
		return 0, err
	}
	defer st.Close()

	set := schema.OrganizationCyberSet(handoff.organizations, handoff.countries)
	set.MaxQuestions = p.cfg.MaxQuestions

	if err := p.dispatch(ctx, set, st); err != nil {
		return 0, err
	}

	answers, err := st.All(ctx)
	if err != nil {
		return 0, err
	}
	if len(answers) == 0 {
		return 0, fmt.Errorf("no assessments produced for %s; check whether questions were processed", domain)
	}

	// Citation columns are retained in the spreadsheet.
	table, err := export.Flatten(answers, []string{"organization", "country"}, true)
	if err != nil {
		return 0, err
	}
	xlsxPath := filepath.Join(outDir, fmt.Sprintf("organization_cyber_%s.xlsx", domainSlug(domain)))
	if err := export.WriteXLSX(xlsxPath, table); err != nil {
		return 0, err
	}
	p.log.Info("saved assessments",
		zap.String("domain", domain),
		zap.Int("rows", len(table.Rows)),
		zap.String("path", xlsxPath))

	return len(table.Rows), nil
}

// dispatch runs one question set through the orchestrator under the
// batch-level retry wrapper.
func (p *Pipeline) dispatch(ctx context.Context, set question.Set, st store.Provider) error {
	wf := New(p.handler, st, p.cfg.Workers, p.log)
	if p.cfg.FailureThreshold > 0 {
		wf.SetFailureThreshold(p.cfg.FailureThreshold)
	}
	return Retry(ctx, p.cfg.Retry, p.log, func(ctx context.Context) error {
		_, _, err := wf.AskMultiple(ctx, set, false)
		return err
	})
}

// domainSlug normalizes a domain name into a filesystem-safe directory and
// file suffix.
func domainSlug(domain string) string {
	s := strings.ToLower(strings.TrimSpace(domain))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}

// titleCase uppercases the first letter of each word, matching how domain
// names appear in the reference list.
func titleCase(s string) string {
	prev := ' '
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(prev) {
			prev = r
			return unicode.ToUpper(r)
		}
		prev = r
		return unicode.ToLower(r)
	}, s)
}
