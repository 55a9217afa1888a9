package qms

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/cultivo/backend/internal/domain/cultivation"
	"github.com/cultivo/backend/internal/domain/identity"
	"github.com/cultivo/backend/internal/domain/qms"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/cultivo/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// EbrRepositories groups the stores the eBR workflow reads and writes
type EbrRepositories struct {
	Ebrs        qms.EbrRepository
	Checklists  qms.ChecklistRepository
	Batches     cultivation.BatchRepository
	Strains     cultivation.StrainRepository
	DailyLogs   cultivation.DailyLogRepository
	Deviations  qms.DeviationRepository
	Environment qms.EnvironmentRepository
	Profiles    identity.ProfileRepository
}

// EvidencePolicy limits evidence uploads
type EvidencePolicy struct {
	Expiration   time.Duration
	AllowedTypes []string
}

func (p EvidencePolicy) allows(contentType string) bool {
	if len(p.AllowedTypes) == 0 {
		return true
	}
	for _, t := range p.AllowedTypes {
		if strings.EqualFold(t, contentType) {
			return true
		}
	}
	return false
}

// EbrService runs the electronic batch record review workflow.
// Every write runs in a transaction so row-level policies see the reviewer.
type EbrService struct {
	repos   EbrRepositories
	tx      shared.Transactor
	storage EvidenceStorage
	policy  EvidencePolicy
	events  shared.EventPublisher
}

// NewEbrService creates a new EbrService
func NewEbrService(repos EbrRepositories, tx shared.Transactor, storage EvidenceStorage, policy EvidencePolicy) *EbrService {
	return &EbrService{repos: repos, tx: tx, storage: storage, policy: policy}
}

// SetEventPublisher sets the publisher for eBR events
func (s *EbrService) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// List returns a page of eBR records, newest first, with display fields resolved
func (s *EbrService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[EbrRecordResponse], error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
		filter.OrderDir = "desc"
	}
	page, err := shared.ListPage[qms.EbrRecord](ctx, s.repos.Ebrs, filter)
	if err != nil {
		return shared.PageResult[EbrRecordResponse]{}, err
	}
	records, err := s.decorate(ctx, page.Records)
	if err != nil {
		return shared.PageResult[EbrRecordResponse]{}, err
	}
	return shared.NewPageResult(records, page.Total, page.Page, page.Limit), nil
}

// GetByID returns an eBR record
func (s *EbrService) GetByID(ctx context.Context, id uuid.UUID) (*EbrRecordResponse, error) {
	record, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decorateOne(ctx, record)
}

// GetByBatch returns the eBR record of a batch, or nil when none exists
func (s *EbrService) GetByBatch(ctx context.Context, batchID uuid.UUID) (*EbrRecordResponse, error) {
	record, err := s.repos.Ebrs.FindByBatch(ctx, batchID)
	if err != nil || record == nil {
		return nil, err
	}
	return s.decorateOne(ctx, record)
}

// GetChecklist returns the review checklist of an eBR, oldest item first
func (s *EbrService) GetChecklist(ctx context.Context, ebrID uuid.UUID) ([]qms.ChecklistItem, error) {
	return s.repos.Checklists.FindByEbr(ctx, ebrID)
}

// GetDetails returns an eBR record with its checklist
func (s *EbrService) GetDetails(ctx context.Context, ebrID uuid.UUID) (*EbrDetailsResponse, error) {
	record, err := s.GetByID(ctx, ebrID)
	if err != nil {
		return nil, err
	}
	items, err := s.repos.Checklists.FindByEbr(ctx, ebrID)
	if err != nil {
		return nil, err
	}
	return &EbrDetailsResponse{Record: *record, Checklist: items}, nil
}

// GetStatistics aggregates the pass/fail outcome and scores of all records
func (s *EbrService) GetStatistics(ctx context.Context) (qms.EbrStatistics, error) {
	rows, err := s.repos.Ebrs.ScoreRows(ctx)
	if err != nil {
		return qms.EbrStatistics{}, err
	}
	return qms.ComputeEbrStatistics(rows), nil
}

// Create opens the eBR of a batch from a snapshot of the batch and its records
func (s *EbrService) Create(ctx context.Context, actorID uuid.UUID, req CreateEbrRecordRequest) (*EbrRecordResponse, error) {
	batch, err := s.repos.Batches.FindByID(ctx, req.BatchID)
	if err != nil {
		return nil, err
	}
	exists, err := s.repos.Ebrs.ExistsByBatch(ctx, batch.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewAlreadyExistsError("eBR record already exists for this batch")
	}

	snap, err := s.snapshot(ctx, batch)
	if err != nil {
		return nil, err
	}
	record, err := qms.NewEbrRecord(snap, actorID)
	if err != nil {
		return nil, err
	}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.repos.Ebrs.Create(ctx, record)
	})
	if err != nil {
		return nil, err
	}
	if err := shared.PublishPending(ctx, s.events, &record.EventSource); err != nil {
		return nil, err
	}
	return &EbrRecordResponse{EbrRecord: *record, BatchNumber: batch.BatchNumber}, nil
}

func (s *EbrService) snapshot(ctx context.Context, batch *cultivation.Batch) (qms.BatchSnapshot, error) {
	snap := qms.BatchSnapshot{
		BatchID:     batch.ID,
		BatchName:   batch.Name,
		Stage:       string(batch.CurrentStage),
		StartDate:   batch.StartDate,
		TotalPlants: batch.PlantCount,
	}
	strain, err := s.repos.Strains.FindByID(ctx, batch.StrainID)
	switch {
	case err == nil:
		snap.Strain = strain.Name
	case !shared.IsNotFound(err):
		return snap, err
	}

	logs, err := s.repos.DailyLogs.CountByBatch(ctx, batch.ID)
	if err != nil {
		return snap, err
	}
	critical, err := s.repos.Deviations.CountByBatchAndSeverity(ctx, batch.ID, qms.SeverityCritical)
	if err != nil {
		return snap, err
	}
	alerts, err := s.repos.Environment.CountAlertsByBatch(ctx, batch.ID)
	if err != nil {
		return snap, err
	}
	snap.DailyLogsCount = int(logs)
	snap.CriticalDeviationsCount = int(critical)
	snap.EnvironmentalAlertsCount = int(alerts)
	return snap, nil
}

// AddChecklistItem adds a review item to an existing eBR
func (s *EbrService) AddChecklistItem(ctx context.Context, reviewerID uuid.UUID, req AddChecklistItemRequest) (*qms.ChecklistItem, error) {
	if _, err := s.find(ctx, req.EbrID); err != nil {
		return nil, err
	}
	item, err := qms.NewChecklistItem(req.EbrID, reviewerID, req.ChecklistItem, qms.ItemCategory(req.ItemCategory), req.IsCompliant, req.Comments, req.EvidenceURLs)
	if err != nil {
		return nil, err
	}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.repos.Checklists.Create(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateChecklistItem applies a partial update to a checklist item
func (s *EbrService) UpdateChecklistItem(ctx context.Context, itemID uuid.UUID, req UpdateChecklistItemRequest) (*qms.ChecklistItem, error) {
	var item *qms.ChecklistItem
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		found, err := s.repos.Checklists.FindByID(ctx, itemID)
		if err != nil {
			return err
		}
		found.Apply(qms.ChecklistPatch{
			IsCompliant:  req.IsCompliant,
			Comments:     req.Comments,
			EvidenceURLs: req.EvidenceURLs,
			ReviewedAt:   req.ReviewedAt,
		})
		item = found
		return s.repos.Checklists.Save(ctx, found)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Approve gives the eBR a passing disposition
func (s *EbrService) Approve(ctx context.Context, approverID, id uuid.UUID, req ApproveEbrRequest) (*EbrRecordResponse, error) {
	return s.decide(ctx, "approve", id, func(r *qms.EbrRecord) error {
		return r.Approve(approverID, req.Reason)
	})
}

// Reject gives the eBR a failing disposition
func (s *EbrService) Reject(ctx context.Context, rejectorID, id uuid.UUID, req RejectEbrRequest) (*EbrRecordResponse, error) {
	return s.decide(ctx, "reject", id, func(r *qms.EbrRecord) error {
		return r.Reject(rejectorID, req.Reason, req.RequiresReprocessing)
	})
}

// Reopen returns a decided eBR to pending review
func (s *EbrService) Reopen(ctx context.Context, actorID, id uuid.UUID, req ReopenEbrRequest) (*EbrRecordResponse, error) {
	return s.decide(ctx, "reopen", id, func(r *qms.EbrRecord) error {
		return r.Reopen(actorID, req.Reason)
	})
}

// SetComplianceScore scores an eBR that is still pending
func (s *EbrService) SetComplianceScore(ctx context.Context, reviewerID, id uuid.UUID, req ComplianceScoreRequest) (*EbrRecordResponse, error) {
	return s.decide(ctx, "score", id, func(r *qms.EbrRecord) error {
		return r.ScoreCompliance(reviewerID, req.Score, req.Conditional, req.Notes)
	})
}

// UpdateCompleteness records packaging, stage review and hygiene completeness
func (s *EbrService) UpdateCompleteness(ctx context.Context, id uuid.UUID, req CompletenessRequest) (*EbrRecordResponse, error) {
	return s.decide(ctx, "completeness", id, func(r *qms.EbrRecord) error {
		return r.UpdateCompleteness(req.PackagingComplete, req.StageReviewsComplete, req.FailedHygieneChecksCount)
	})
}

func (s *EbrService) decide(ctx context.Context, op string, id uuid.UUID, apply func(*qms.EbrRecord) error) (_ *EbrRecordResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ebr", op, attribute.String("ebr.id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	var record *qms.EbrRecord
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		found, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		if err := apply(found); err != nil {
			return err
		}
		record = found
		return s.repos.Ebrs.Save(ctx, found)
	})
	if err != nil {
		return nil, err
	}
	if err := shared.PublishPending(ctx, s.events, &record.EventSource); err != nil {
		return nil, err
	}
	return s.decorateOne(ctx, record)
}

// RequestEvidenceUpload returns a presigned upload target for a checklist item's evidence
func (s *EbrService) RequestEvidenceUpload(ctx context.Context, itemID uuid.UUID, req EvidenceUploadRequest) (*EvidenceUploadResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Evidence storage is not configured")
	}
	if !s.policy.allows(req.ContentType) {
		return nil, shared.NewInvalidInputError(fmt.Sprintf("Content type %s is not allowed", req.ContentType))
	}
	item, err := s.repos.Checklists.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	key := evidenceKey(item.EbrID, item.ID, req.Filename)
	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, req.ContentType, s.policy.Expiration)
	if err != nil {
		return nil, fmt.Errorf("failed to presign evidence upload: %w", err)
	}
	return &EvidenceUploadResponse{
		UploadURL:  url,
		ObjectURL:  s.storage.ObjectURL(key),
		StorageKey: key,
		ExpiresAt:  expiresAt,
	}, nil
}

func evidenceKey(ebrID, itemID uuid.UUID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "." || name == ".." {
		name = "evidence"
	}
	return fmt.Sprintf("ebr/%s/%s/%s-%s", ebrID, itemID, uuid.New().String()[:8], name)
}

func (s *EbrService) find(ctx context.Context, id uuid.UUID) (*qms.EbrRecord, error) {
	record, err := s.repos.Ebrs.FindByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewNotFoundError("eBR record")
		}
		return nil, err
	}
	return record, nil
}

func (s *EbrService) decorateOne(ctx context.Context, record *qms.EbrRecord) (*EbrRecordResponse, error) {
	out, err := s.decorate(ctx, []qms.EbrRecord{*record})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// decorate resolves batch numbers and profile names in two lookups
func (s *EbrService) decorate(ctx context.Context, records []qms.EbrRecord) ([]EbrRecordResponse, error) {
	out := make([]EbrRecordResponse, len(records))
	if len(records) == 0 {
		return out, nil
	}

	batchIDs := make([]uuid.UUID, 0, len(records))
	profileIDs := make([]uuid.UUID, 0, len(records)*2)
	for _, r := range records {
		batchIDs = append(batchIDs, r.BatchID)
		if r.CreatedBy != nil {
			profileIDs = append(profileIDs, *r.CreatedBy)
		}
		if r.ApprovedBy != nil {
			profileIDs = append(profileIDs, *r.ApprovedBy)
		}
	}

	batches, err := s.repos.Batches.FindByIDs(ctx, batchIDs)
	if err != nil {
		return nil, err
	}
	batchNumbers := make(map[uuid.UUID]string, len(batches))
	for _, b := range batches {
		batchNumbers[b.ID] = b.BatchNumber
	}

	names := make(map[uuid.UUID]string)
	if len(profileIDs) > 0 {
		profiles, err := s.repos.Profiles.FindByIDs(ctx, profileIDs)
		if err != nil {
			return nil, err
		}
		for i := range profiles {
			names[profiles[i].ID] = profiles[i].DisplayName()
		}
	}

	for i, r := range records {
		out[i] = EbrRecordResponse{EbrRecord: r, BatchNumber: batchNumbers[r.BatchID]}
		if r.CreatedBy != nil {
			out[i].CreatorName = names[*r.CreatedBy]
		}
		if r.ApprovedBy != nil {
			out[i].ApproverName = names[*r.ApprovedBy]
		}
	}
	return out, nil
}
