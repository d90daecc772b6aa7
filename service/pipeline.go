package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chrispoponi/contractflowai-web-sub001/model"
	"github.com/chrispoponi/contractflowai-web-sub001/pkg/logger"
)

// State is a step of a single parse run. Runs only move forward.
type State int

const (
	StateInit State = iota
	StatePrimaryAttempted
	StateFallbackAttempted
	StateNormalized
	StatePersisted
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StatePrimaryAttempted:
		return "primary_attempted"
	case StateFallbackAttempted:
		return "fallback_attempted"
	case StateNormalized:
		return "normalized"
	case StatePersisted:
		return "persisted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ParseRequest identifies the document to parse and who owns it.
type ParseRequest struct {
	ContractID  string
	StoragePath string
	UserID      string
	Persist     bool
}

// ParseResult is returned for every run that gets past extraction.
type ParseResult struct {
	ParsedContract model.NormalizedContract `json:"parsedContract"`
	RiskItems      []model.RiskItem         `json:"riskItems"`
	Diagnostics    model.ParserDiagnostics  `json:"diagnostics"`
	SummaryPath    *string                  `json:"summaryPath"`
	State          State                    `json:"-"`
}

// PipelineDeps are the collaborators a Pipeline is built from.
type PipelineDeps struct {
	Storage         ObjectStorage
	Primary         Extractor
	Renderer        PageRenderer
	Vision          VisionExtractor
	Contracts       ContractRepository
	SummariesPrefix string
}

// Pipeline turns a stored contract document into a normalized extraction.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	storage         ObjectStorage
	primary         Extractor
	renderer        PageRenderer
	vision          VisionExtractor
	contracts       ContractRepository
	summariesPrefix string

	now   func() time.Time
	newID func() string
}

func NewPipeline(deps PipelineDeps) *Pipeline {
	prefix := strings.Trim(path.Clean("/"+deps.SummariesPrefix), "/")
	if prefix == "" {
		prefix = "summaries"
	}
	return &Pipeline{
		storage:         deps.Storage,
		primary:         deps.Primary,
		renderer:        deps.Renderer,
		vision:          deps.Vision,
		contracts:       deps.Contracts,
		summariesPrefix: prefix,
		now:             time.Now,
		newID:           func() string { return uuid.New().String() },
	}
}

// run tracks one invocation's progress through the state machine.
type run struct {
	state    State
	terminal bool
	diag     model.ParserDiagnostics
}

func (r *run) advance(s State) { r.state = s }

func (r *run) fail(kind, err error) error {
	r.terminal = true
	return &PipelineError{Kind: kind, State: r.state, Err: err}
}

// Parse runs the full pipeline. Only validation, a missing source document,
// and failure of both extraction paths are returned as errors.
func (p *Pipeline) Parse(ctx context.Context, req ParseRequest) (*ParseResult, error) {
	r := &run{state: StateInit}

	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.StoragePath) == "" {
		return nil, r.fail(ErrValidation, errors.New("userId and storagePath are required"))
	}
	if req.ContractID != "" && !validContractID(req.ContractID) {
		return nil, r.fail(ErrValidation, fmt.Errorf("invalid contractId %q", req.ContractID))
	}

	ctx = logger.WithUserID(ctx, req.UserID)
	if req.ContractID != "" {
		ctx = logger.WithContractID(ctx, req.ContractID)
	}
	log := logger.WithContext(ctx)

	doc, err := p.storage.Download(ctx, req.StoragePath)
	if err != nil {
		log.Error("document fetch failed", "event", "storage_fetch_failed", "path", req.StoragePath, "error", err)
		return nil, r.fail(ErrStorageFetch, err)
	}
	log.Info("document fetched", "path", req.StoragePath, "mime_type", doc.ContentType, "bytes", len(doc.Data))

	raw, err := p.primary.Extract(ctx, doc)
	r.advance(StatePrimaryAttempted)
	if err != nil {
		msg := err.Error()
		r.diag.PrimaryError = &msg
		r.diag.UsedFallback = true
		r.diag.Parser = model.ParserVisionFallback
		log.Warn("primary parser failed, using vision fallback", "event", "primary_parser_failed", "error", err)

		raw, err = p.fallback(ctx, doc, r)
		r.advance(StateFallbackAttempted)
		if err != nil {
			log.Error("vision fallback failed", "event", "vision_parser_failed", "error", err)
			return nil, r.fail(ErrExtraction, err)
		}
	} else {
		r.diag.Parser = model.ParserPrimary
	}

	normalized := model.Normalize(raw)
	r.advance(StateNormalized)

	summaryPath := p.persistSummary(ctx, req, normalized, r.diag)

	if req.ContractID != "" && req.Persist {
		p.updateContract(ctx, req, normalized, summaryPath)
	}
	r.advance(StatePersisted)

	log.Info("contract parsed",
		"parser", r.diag.Parser,
		"used_fallback", r.diag.UsedFallback,
		"risk_items", len(normalized.RiskItems),
	)

	return &ParseResult{
		ParsedContract: normalized,
		RiskItems:      normalized.RiskItems,
		Diagnostics:    r.diag,
		SummaryPath:    summaryPath,
		State:          r.state,
	}, nil
}

// fallback renders the document to page images and hands them to the vision
// parser. A failed or empty render degrades to the raw document as a single
// data URI.
func (p *Pipeline) fallback(ctx context.Context, doc *Object, r *run) (model.RawExtraction, error) {
	var (
		images []string
		err    error
	)
	if p.renderer != nil {
		images, err = p.renderer.Render(ctx, doc)
	} else {
		err = fmt.Errorf("image converter: %w", ErrNotConfigured)
	}

	if err != nil || len(images) == 0 {
		if err == nil {
			err = errors.New("image converter returned no images")
		}
		msg := err.Error()
		r.diag.ImageConversionError = &msg
		logger.Warn(ctx, "image conversion failed, passing document through", "event", "image_conversion_failed", "error", err)
		images = []string{DataURI(doc)}
	}
	r.diag.ImagesUsed = len(images)

	return p.vision.ExtractImages(ctx, images)
}

// persistSummary writes the summary artifact and returns its key, or nil when
// the write did not happen.
func (p *Pipeline) persistSummary(ctx context.Context, req ParseRequest, normalized model.NormalizedContract, diag model.ParserDiagnostics) *string {
	id := req.ContractID
	if id == "" {
		id = p.newID()
	}
	key := path.Join(p.summariesPrefix, id+".json")
	if path.Dir(key) != p.summariesPrefix {
		logger.Error(ctx, "summary key escapes prefix", "event", "summary_write_failed", "key", key)
		return nil
	}

	artifact := model.SummaryArtifact{
		GeneratedAt:    p.now().UTC(),
		ParsedContract: normalized,
		Diagnostics:    diag,
	}

	data, err := json.Marshal(artifact)
	if err == nil {
		err = ValidateSummaryArtifact(data)
	}
	if err == nil {
		err = p.storage.Upload(ctx, key, data, "application/json")
	}
	if err != nil {
		logger.Error(ctx, "summary artifact write failed", "event", "summary_write_failed", "key", key, "error", err)
		return nil
	}
	logger.Debug(ctx, "summary artifact written", "key", key, "bytes", len(data))

	return &key
}

// validContractID reports whether id can be used as a single object-key
// segment under the summaries prefix.
func validContractID(id string) bool {
	if strings.TrimSpace(id) == "" || id == "." || id == ".." {
		return false
	}
	if strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return false
	}
	return id == path.Base(id)
}

func (p *Pipeline) updateContract(ctx context.Context, req ParseRequest, normalized model.NormalizedContract, summaryPath *string) {
	if p.contracts == nil {
		logger.Warn(ctx, "no contract repository configured, skipping record update", "event", "contract_update_failed")
		return
	}

	var pathValue string
	if summaryPath != nil {
		pathValue = *summaryPath
	}

	if err := p.contracts.UpdateSummary(ctx, req.ContractID, req.UserID, normalized.Summary, pathValue); err != nil {
		logger.Error(ctx, "contract record update failed", "event", "contract_update_failed", "error", err)
	}
}
