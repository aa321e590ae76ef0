package requests

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"isdao/payment-portal/payment-portal-backend/internal/documents"
	"isdao/payment-portal/payment-portal-backend/internal/identity"
	"isdao/payment-portal/payment-portal-backend/pkg/workflows"
)

// ArtifactManager is the document collaborator: it renders the voucher PDF and
// locks it after final approval. Both calls sit outside the engine's own
// transaction; their failures are surfaced as warnings, never rolled back into
// the status mutation.
type ArtifactManager interface {
	Render(ctx context.Context, data documents.VoucherData, preparedBy string) (string, error)
	Lock(ctx context.Context, handle, signedBy string) (string, error)
}

// Directory resolves an actor's role and assigned manager. Every Process,
// Edit and Submit call is authorized against it.
type Directory interface {
	Resolve(ctx context.Context, id uuid.UUID) (identity.Actor, error)
}

// Notifier fans a lifecycle event out to delivery channels. Implementations
// must be best-effort and log their own failures.
type Notifier interface {
	RequestCreated(ctx context.Context, req *PaymentRequest)
	RequestDecided(ctx context.Context, req *PaymentRequest, entry AuditEntry)
}

// SearchIndex is an optional secondary index over requests.
type SearchIndex interface {
	Index(ctx context.Context, req *PaymentRequest)
	Search(ctx context.Context, term string) ([]uuid.UUID, error)
}

// ApprovalChain is the deployed two-stage chain: line manager, then executive
// director. The clerk role never gates a stage.
func ApprovalChain() *workflows.Chain {
	return workflows.NewChain(
		workflows.Role(identity.RoleClerk),
		[]workflows.Stage{
			{Name: "MANAGER", Role: workflows.Role(identity.RoleManager)},
			{Name: "ED", Role: workflows.Role(identity.RoleED)},
		},
	)
}

// Service orchestrates the approval workflow: it loads the aggregate, lets the
// chain validate the transition, persists status and audit entry atomically
// and triggers document generation/locking around the commit.
type Service struct {
	repo      Repository
	chain     *workflows.Chain
	directory Directory
	artifacts ArtifactManager
	notifier  Notifier
	indexer   SearchIndex
	log       *zap.Logger
}

// NewService wires the workflow service. notifier and indexer may be nil.
func NewService(repo Repository, chain *workflows.Chain, directory Directory, artifacts ArtifactManager, notifier Notifier, indexer SearchIndex, log *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		chain:     chain,
		directory: directory,
		artifacts: artifacts,
		notifier:  notifier,
		indexer:   indexer,
		log:       log,
	}
}

// LineItemInput is one particulars row of an incoming payload.
type LineItemInput struct {
	Particulars       string  `json:"particulars"`
	Amount            float64 `json:"amount"`
	AccountName       string  `json:"account_name"`
	FundingSourceCode string  `json:"funding_source_code"`
	QuickBooksCode    string  `json:"quickbooks_code"`
}

// CreateRequest is the payload for a new requisition.
type CreateRequest struct {
	Beneficiary       string          `json:"beneficiary"`
	BankName          string          `json:"bank_name"`
	AccountNumber     string          `json:"account_number"`
	AccountName       string          `json:"account_name"`
	Amount            float64         `json:"amount"`
	Currency          string          `json:"currency"`
	AmountInWords     string          `json:"amount_in_words"`
	FundingSourceCode string          `json:"funding_source_code"`
	QuickBooksCode    string          `json:"quickbooks_code"`
	DescriptionEn     string          `json:"description_en"`
	DescriptionFr     string          `json:"description_fr"`
	Body              string          `json:"body"`
	Items             []LineItemInput `json:"items"`
}

// EditRequest carries partial field changes; nil fields are untouched.
type EditRequest struct {
	Beneficiary       *string          `json:"beneficiary"`
	BankName          *string          `json:"bank_name"`
	AccountNumber     *string          `json:"account_number"`
	AccountName       *string          `json:"account_name"`
	Amount            *float64         `json:"amount"`
	Currency          *string          `json:"currency"`
	AmountInWords     *string          `json:"amount_in_words"`
	FundingSourceCode *string          `json:"funding_source_code"`
	QuickBooksCode    *string          `json:"quickbooks_code"`
	DescriptionEn     *string          `json:"description_en"`
	DescriptionFr     *string          `json:"description_fr"`
	Body              *string          `json:"body"`
	Items             *[]LineItemInput `json:"items"`
}

// Create validates the payload, assigns a fresh reference number and writes
// the initial aggregate with its CREATED entry. Document generation is
// attempted afterwards; its failure leaves the request standing and is
// returned as a warning.
func (s *Service) Create(ctx context.Context, actorID uuid.UUID, in CreateRequest) (*PaymentRequest, []string, error) {
	actor, err := s.resolve(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	if actor.ManagerID == nil {
		return nil, nil, &ValidationError{Reason: "you do not have an approval manager assigned to your account"}
	}
	if err := validatePayload(in); err != nil {
		return nil, nil, err
	}

	ref, err := s.repo.NextReference(ctx)
	if err != nil {
		return nil, nil, err
	}

	req := &PaymentRequest{
		ReferenceNumber:   ref,
		Status:            s.chain.Initial(),
		RequesterID:       actor.ID,
		ManagerID:         *actor.ManagerID,
		Beneficiary:       in.Beneficiary,
		BankName:          in.BankName,
		AccountNumber:     in.AccountNumber,
		AccountName:       in.AccountName,
		Amount:            in.Amount,
		Currency:          defaultCurrency(in.Currency),
		AmountInWords:     in.AmountInWords,
		FundingSourceCode: in.FundingSourceCode,
		QuickBooksCode:    in.QuickBooksCode,
		DescriptionEn:     in.DescriptionEn,
		DescriptionFr:     in.DescriptionFr,
		Body:              in.Body,
		Items:             buildItems(in.Items),
		History: []AuditEntry{{
			Action:  AuditCreated,
			ActorID: actor.ID,
			Comment: "Request created",
		}},
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, nil, err
	}

	var warnings []string
	handle, err := s.artifacts.Render(ctx, snapshotOf(req), actor.Username)
	if err != nil {
		cerr := &CollaboratorError{Op: "render", Err: err}
		s.log.Error("voucher generation failed on create",
			zap.String("reference", req.ReferenceNumber), zap.Error(err))
		warnings = append(warnings, cerr.Error())
	} else {
		req.ArtifactHandle = handle
		if err := s.repo.SetArtifactHandle(ctx, req.ID, handle); err != nil {
			return nil, nil, err
		}
	}

	if s.notifier != nil {
		s.notifier.RequestCreated(ctx, req)
	}
	if s.indexer != nil {
		s.indexer.Index(ctx, req)
	}
	return req, warnings, nil
}

// Submit resets a returned or still-pending request onto the first stage's
// queue. Only the requester may submit.
func (s *Service) Submit(ctx context.Context, id, actorID uuid.UUID) (*PaymentRequest, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorID != req.RequesterID {
		return nil, &AuthorizationError{Reason: "only the requester may submit this request"}
	}
	if !s.chain.CanSubmit(req.Status) {
		return nil, &InvalidTransitionError{Status: req.Status, Action: workflows.ActionSubmit}
	}

	prev := req.Status
	req.Status = s.chain.SubmitTarget()
	entry := &AuditEntry{
		Action:  AuditSubmitted,
		ActorID: actorID,
		Comment: "Request submitted",
	}
	if err := s.repo.SaveTransition(ctx, req, prev, entry); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Edit applies field changes under the editor-role/status matrix. It never
// changes status; when the letter body changed the unsigned voucher is
// regenerated and the prior handle replaced.
func (s *Service) Edit(ctx context.Context, id, actorID uuid.UUID, in EditRequest) (*PaymentRequest, []string, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	actor, err := s.resolve(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}

	var editorRole workflows.Role
	switch actorID {
	case req.RequesterID:
		editorRole = workflows.Role(identity.RoleClerk)
	case req.ManagerID:
		editorRole = workflows.Role(identity.RoleManager)
	default:
		return nil, nil, &AuthorizationError{Reason: "not authorized to edit this request"}
	}
	if !s.chain.CanEdit(req.Status, editorRole) {
		return nil, nil, &InvalidTransitionError{Status: req.Status, Action: workflows.ActionEdit}
	}

	bodyChanged := applyChanges(req, in)
	if err := validateAggregate(req); err != nil {
		return nil, nil, err
	}

	entry := &AuditEntry{Action: AuditEdited, ActorID: actorID}
	if err := s.repo.UpdateFields(ctx, req, req.Status, entry); err != nil {
		return nil, nil, err
	}

	var warnings []string
	if bodyChanged {
		handle, err := s.artifacts.Render(ctx, snapshotOf(req), actor.Username)
		if err != nil {
			cerr := &CollaboratorError{Op: "render", Err: err}
			s.log.Error("voucher regeneration failed on edit",
				zap.String("reference", req.ReferenceNumber), zap.Error(err))
			warnings = append(warnings, cerr.Error())
		} else if err := s.repo.SetArtifactHandle(ctx, req.ID, handle); err != nil {
			return nil, nil, err
		}
	}

	out, err := s.repo.Get(ctx, id)
	return out, warnings, err
}

// Process is the sole entry point for APPROVE/REJECT/RETURN decisions. The
// final approval locks the artifact strictly after the status commit; a lock
// failure degrades the response with a warning but the approval stands.
func (s *Service) Process(ctx context.Context, id, actorID uuid.UUID, action workflows.Action, comment string) (*PaymentRequest, []string, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	actor, err := s.resolve(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	role := workflows.Role(actor.Role)

	// The requester is never authorized to process, whatever the status.
	if actorID == req.RequesterID || !s.chain.HasStageRole(role) {
		return nil, nil, &AuthorizationError{Reason: fmt.Sprintf("role %s is not authorized to process requests", actor.Role)}
	}
	if role == workflows.Role(identity.RoleManager) && actorID != req.ManagerID {
		return nil, nil, &AuthorizationError{Reason: "you are not the manager assigned to this request"}
	}

	tr, err := s.chain.Decide(req.Status, role, action)
	if err != nil {
		var authErr *workflows.UnauthorizedError
		if errors.As(err, &authErr) {
			return nil, nil, &AuthorizationError{Reason: authErr.Error()}
		}
		return nil, nil, err
	}
	if tr.CommentRequired && strings.TrimSpace(comment) == "" {
		return nil, nil, &ValidationError{Reason: fmt.Sprintf("a comment is required to %s a request", strings.ToLower(string(action)))}
	}

	prev := req.Status
	req.Status = tr.Next
	entry := &AuditEntry{
		Action:  tr.Record,
		Comment: comment,
		ActorID: actorID,
	}
	if err := s.repo.SaveTransition(ctx, req, prev, entry); err != nil {
		return nil, nil, err
	}

	var warnings []string
	if tr.LocksArtifact {
		warnings = s.lockArtifact(ctx, req, actor.Username)
	}

	if s.notifier != nil {
		s.notifier.RequestDecided(ctx, req, *entry)
	}
	if s.indexer != nil {
		s.indexer.Index(ctx, req)
	}

	out, err := s.repo.Get(ctx, id)
	return out, warnings, err
}

func (s *Service) lockArtifact(ctx context.Context, req *PaymentRequest, signedBy string) []string {
	if req.ArtifactHandle == "" {
		s.log.Warn("approved request has no artifact to lock",
			zap.String("reference", req.ReferenceNumber))
		return []string{"approval recorded, but no document artifact exists to lock"}
	}
	handle, err := s.artifacts.Lock(ctx, req.ArtifactHandle, signedBy)
	if err != nil {
		cerr := &CollaboratorError{Op: "lock", Err: err}
		s.log.Error("artifact locking failed after approval",
			zap.String("reference", req.ReferenceNumber),
			zap.String("handle", req.ArtifactHandle),
			zap.Error(err))
		return []string{"approval recorded, but the document could not be locked: " + cerr.Error()}
	}
	if handle != req.ArtifactHandle {
		req.ArtifactHandle = handle
		if err := s.repo.SetArtifactHandle(ctx, req.ID, handle); err != nil {
			s.log.Error("failed to store locked artifact handle", zap.Error(err))
		}
	}
	return nil
}

// RetryLock re-attempts the locking of an approved request's artifact. The
// signature is attributed to the executive who approved, not the operator
// retrying.
func (s *Service) RetryLock(ctx context.Context, id, actorID uuid.UUID) (*PaymentRequest, []string, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	actor, err := s.resolve(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	if actor.Role != identity.RoleED && actor.Role != identity.RoleAdmin {
		return nil, nil, &AuthorizationError{Reason: "only an executive or administrator may retry locking"}
	}
	if req.Status != workflows.StatusApproved {
		return nil, nil, &InvalidTransitionError{Status: req.Status, Action: workflows.ActionApprove}
	}

	signer := actor.Username
	if approverID, ok := finalApprover(req.History); ok {
		if approver, err := s.directory.Resolve(ctx, approverID); err == nil {
			signer = approver.Username
		}
	}
	warnings := s.lockArtifact(ctx, req, signer)
	out, err := s.repo.Get(ctx, id)
	return out, warnings, err
}

// RegenerateArtifact re-renders the unsigned voucher on explicit request,
// covering the case where generation failed at creation time.
func (s *Service) RegenerateArtifact(ctx context.Context, id, actorID uuid.UUID) (*PaymentRequest, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	actor, err := s.resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actorID != req.RequesterID && actorID != req.ManagerID && actor.Role != identity.RoleAdmin {
		return nil, &AuthorizationError{Reason: "not authorized to regenerate this document"}
	}
	if req.Status == workflows.StatusApproved {
		return nil, &ValidationError{Reason: "cannot regenerate the document of an approved request"}
	}

	handle, err := s.artifacts.Render(ctx, snapshotOf(req), actor.Username)
	if err != nil {
		return nil, &CollaboratorError{Op: "render", Err: err}
	}
	if err := s.repo.SetArtifactHandle(ctx, req.ID, handle); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Get returns the aggregate with history, restricted to principals involved
// with the request (requester, assigned manager, executives, admins).
func (s *Service) Get(ctx context.Context, id, actorID uuid.UUID) (*PaymentRequest, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	actor, err := s.resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !s.mayView(req, actor) {
		return nil, &AuthorizationError{Reason: "not authorized to view this request"}
	}
	return req, nil
}

// History returns the audit trail in insertion order.
func (s *Service) History(ctx context.Context, id, actorID uuid.UUID) ([]AuditEntry, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	actor, err := s.resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !s.mayView(req, actor) {
		return nil, &AuthorizationError{Reason: "not authorized to view this request"}
	}
	return s.repo.History(ctx, id)
}

// ListMine lists the actor's own requests.
func (s *Service) ListMine(ctx context.Context, actorID uuid.UUID, statuses []workflows.Status, search string) ([]PaymentRequest, error) {
	q := Query{RequesterID: &actorID, Statuses: statuses}
	return s.list(ctx, q, search)
}

// ListSubordinate lists requests assigned to the actor as manager.
func (s *Service) ListSubordinate(ctx context.Context, actorID uuid.UUID, statuses []workflows.Status, search string) ([]PaymentRequest, error) {
	q := Query{ManagerID: &actorID, Statuses: statuses}
	return s.list(ctx, q, search)
}

// ListExecutiveQueue lists the executive stage's work: pending or returned at
// the ED stage unless a status filter overrides.
func (s *Service) ListExecutiveQueue(ctx context.Context, actorID uuid.UUID, statuses []workflows.Status, search string) ([]PaymentRequest, error) {
	actor, err := s.resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != identity.RoleED && actor.Role != identity.RoleAdmin {
		return nil, &AuthorizationError{Reason: "only an executive may view the executive queue"}
	}
	if len(statuses) == 0 {
		statuses = []workflows.Status{workflows.PendingStatus("ED"), workflows.ReturnedStatus("ED")}
	}
	return s.list(ctx, Query{Statuses: statuses}, search)
}

func (s *Service) list(ctx context.Context, q Query, search string) ([]PaymentRequest, error) {
	if search != "" && s.indexer != nil {
		if ids, err := s.indexer.Search(ctx, search); err == nil {
			q.IDs = ids
			return s.repo.List(ctx, q)
		}
		// Index unavailable; fall back to the repository's own matching.
	}
	q.Search = search
	return s.repo.List(ctx, q)
}

func (s *Service) mayView(req *PaymentRequest, actor identity.Actor) bool {
	if actor.ID == req.RequesterID || actor.ID == req.ManagerID {
		return true
	}
	return actor.Role == identity.RoleED || actor.Role == identity.RoleAdmin
}

func (s *Service) resolve(ctx context.Context, id uuid.UUID) (identity.Actor, error) {
	actor, err := s.directory.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return identity.Actor{}, &AuthorizationError{Reason: "unknown actor"}
		}
		return identity.Actor{}, err
	}
	return actor, nil
}

func finalApprover(history []AuditEntry) (uuid.UUID, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Action == "APPROVED" {
			return history[i].ActorID, true
		}
	}
	return uuid.Nil, false
}

func defaultCurrency(c string) string {
	if c == "" {
		return "USD"
	}
	return c
}

func buildItems(in []LineItemInput) []LineItem {
	items := make([]LineItem, 0, len(in))
	for i, it := range in {
		items = append(items, LineItem{
			Position:          i,
			Particulars:       it.Particulars,
			Amount:            it.Amount,
			AccountName:       it.AccountName,
			FundingSourceCode: it.FundingSourceCode,
			QuickBooksCode:    it.QuickBooksCode,
		})
	}
	return items
}

func validatePayload(in CreateRequest) error {
	switch {
	case strings.TrimSpace(in.Beneficiary) == "":
		return &ValidationError{Reason: "beneficiary is required"}
	case strings.TrimSpace(in.BankName) == "":
		return &ValidationError{Reason: "bank name is required"}
	case strings.TrimSpace(in.AccountNumber) == "":
		return &ValidationError{Reason: "account number is required"}
	case in.Amount <= 0:
		return &ValidationError{Reason: "amount must be positive"}
	}
	if len(in.Items) > 0 {
		var total float64
		for _, it := range in.Items {
			if strings.TrimSpace(it.Particulars) == "" {
				return &ValidationError{Reason: "every line item needs particulars"}
			}
			total += it.Amount
		}
		if math.Abs(total-in.Amount) > 0.005 {
			return &ValidationError{Reason: "declared total does not equal the sum of line items"}
		}
	}
	return nil
}

func validateAggregate(req *PaymentRequest) error {
	in := CreateRequest{
		Beneficiary:   req.Beneficiary,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		Amount:        req.Amount,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, LineItemInput{Particulars: it.Particulars, Amount: it.Amount})
	}
	return validatePayload(in)
}

func applyChanges(req *PaymentRequest, in EditRequest) (bodyChanged bool) {
	if in.Beneficiary != nil {
		req.Beneficiary = *in.Beneficiary
	}
	if in.BankName != nil {
		req.BankName = *in.BankName
	}
	if in.AccountNumber != nil {
		req.AccountNumber = *in.AccountNumber
	}
	if in.AccountName != nil {
		req.AccountName = *in.AccountName
	}
	if in.Amount != nil {
		req.Amount = *in.Amount
	}
	if in.Currency != nil {
		req.Currency = *in.Currency
	}
	if in.AmountInWords != nil {
		req.AmountInWords = *in.AmountInWords
	}
	if in.FundingSourceCode != nil {
		req.FundingSourceCode = *in.FundingSourceCode
	}
	if in.QuickBooksCode != nil {
		req.QuickBooksCode = *in.QuickBooksCode
	}
	if in.DescriptionEn != nil {
		req.DescriptionEn = *in.DescriptionEn
	}
	if in.DescriptionFr != nil {
		req.DescriptionFr = *in.DescriptionFr
	}
	if in.Body != nil && *in.Body != req.Body {
		req.Body = *in.Body
		bodyChanged = true
	}
	if in.Items != nil {
		req.Items = buildItems(*in.Items)
	}
	return bodyChanged
}

// snapshotOf maps the aggregate to the renderer's input.
func snapshotOf(req *PaymentRequest) documents.VoucherData {
	data := documents.VoucherData{
		ReferenceNumber:   req.ReferenceNumber,
		RequestDate:       req.CreatedAt,
		Beneficiary:       req.Beneficiary,
		BankName:          req.BankName,
		AccountNumber:     req.AccountNumber,
		AccountName:       req.AccountName,
		Amount:            req.Amount,
		Currency:          req.Currency,
		AmountInWords:     req.AmountInWords,
		FundingSourceCode: req.FundingSourceCode,
		QuickBooksCode:    req.QuickBooksCode,
		DescriptionEn:     req.DescriptionEn,
		DescriptionFr:     req.DescriptionFr,
		Body:              req.Body,
	}
	for _, it := range req.Items {
		data.Items = append(data.Items, documents.VoucherItem{
			Particulars:       it.Particulars,
			Amount:            it.Amount,
			AccountName:       it.AccountName,
			FundingSourceCode: it.FundingSourceCode,
			QuickBooksCode:    it.QuickBooksCode,
		})
	}
	return data
}
