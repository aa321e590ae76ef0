package requests

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"isdao/payment-portal/payment-portal-backend/internal/documents"
	"isdao/payment-portal/payment-portal-backend/internal/identity"
	"isdao/payment-portal/payment-portal-backend/pkg/workflows"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, req *PaymentRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRepository) Get(ctx context.Context, id uuid.UUID) (*PaymentRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaymentRequest), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, q Query) ([]PaymentRequest, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]PaymentRequest), args.Error(1)
}

func (m *MockRepository) SaveTransition(ctx context.Context, req *PaymentRequest, expected workflows.Status, entry *AuditEntry) error {
	args := m.Called(ctx, req, expected, entry)
	return args.Error(0)
}

func (m *MockRepository) UpdateFields(ctx context.Context, req *PaymentRequest, expected workflows.Status, entry *AuditEntry) error {
	args := m.Called(ctx, req, expected, entry)
	return args.Error(0)
}

func (m *MockRepository) SetArtifactHandle(ctx context.Context, id uuid.UUID, handle string) error {
	args := m.Called(ctx, id, handle)
	return args.Error(0)
}

func (m *MockRepository) NextReference(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) History(ctx context.Context, id uuid.UUID) ([]AuditEntry, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]AuditEntry), args.Error(1)
}

// MockDirectory is a mock implementation of the Directory interface
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Resolve(ctx context.Context, id uuid.UUID) (identity.Actor, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(identity.Actor), args.Error(1)
}

// MockArtifacts is a mock implementation of the ArtifactManager interface
type MockArtifacts struct {
	mock.Mock
}

func (m *MockArtifacts) Render(ctx context.Context, data documents.VoucherData, preparedBy string) (string, error) {
	args := m.Called(ctx, data, preparedBy)
	return args.String(0), args.Error(1)
}

func (m *MockArtifacts) Lock(ctx context.Context, handle, signedBy string) (string, error) {
	args := m.Called(ctx, handle, signedBy)
	return args.String(0), args.Error(1)
}

type fixture struct {
	repo      *MockRepository
	directory *MockDirectory
	artifacts *MockArtifacts
	service   *Service

	clerkID   uuid.UUID
	managerID uuid.UUID
	edID      uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		repo:      new(MockRepository),
		directory: new(MockDirectory),
		artifacts: new(MockArtifacts),
		clerkID:   uuid.New(),
		managerID: uuid.New(),
		edID:      uuid.New(),
	}
	f.service = NewService(f.repo, ApprovalChain(), f.directory, f.artifacts, nil, nil, zap.NewNop())
	return f
}

func (f *fixture) expectActors(ctx context.Context) {
	f.directory.On("Resolve", ctx, f.clerkID).Return(identity.Actor{
		ID: f.clerkID, Username: "aclerk", Role: identity.RoleClerk, ManagerID: &f.managerID,
	}, nil).Maybe()
	f.directory.On("Resolve", ctx, f.managerID).Return(identity.Actor{
		ID: f.managerID, Username: "amanager", Role: identity.RoleManager,
	}, nil).Maybe()
	f.directory.On("Resolve", ctx, f.edID).Return(identity.Actor{
		ID: f.edID, Username: "director", Role: identity.RoleED,
	}, nil).Maybe()
}

func (f *fixture) request(status workflows.Status) *PaymentRequest {
	return &PaymentRequest{
		ID:              uuid.New(),
		ReferenceNumber: "ONLINE-0101",
		Status:          status,
		RequesterID:     f.clerkID,
		ManagerID:       f.managerID,
		Beneficiary:     "Hotel Sarakawa",
		BankName:        "Ecobank",
		AccountNumber:   "0012345678",
		Amount:          1500,
		Currency:        "USD",
		ArtifactHandle:  "uploads/pdfs/request_ONLINE-0101_abc.pdf",
	}
}

func validPayload() CreateRequest {
	return CreateRequest{
		Beneficiary:   "Hotel Sarakawa",
		BankName:      "Ecobank",
		AccountNumber: "0012345678",
		Amount:        1500,
		Items: []LineItemInput{
			{Particulars: "Conference room", Amount: 1000},
			{Particulars: "Catering", Amount: 500},
		},
	}
}

func TestCreateRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	f.repo.On("NextReference", ctx).Return("ONLINE-0101", nil)
	f.repo.On("Create", ctx, mock.AnythingOfType("*requests.PaymentRequest")).Return(nil)
	f.artifacts.On("Render", ctx, mock.AnythingOfType("documents.VoucherData"), "aclerk").
		Return("uploads/pdfs/request_ONLINE-0101_abc.pdf", nil)
	f.repo.On("SetArtifactHandle", ctx, mock.AnythingOfType("uuid.UUID"), "uploads/pdfs/request_ONLINE-0101_abc.pdf").Return(nil)

	req, warnings, err := f.service.Create(ctx, f.clerkID, validPayload())

	assert.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "ONLINE-0101", req.ReferenceNumber)
	assert.Equal(t, workflows.PendingStatus("MANAGER"), req.Status)
	assert.Equal(t, f.managerID, req.ManagerID)
	assert.Len(t, req.History, 1)
	assert.Equal(t, AuditCreated, req.History[0].Action)
	f.repo.AssertExpectations(t)
	f.artifacts.AssertExpectations(t)
}

func TestCreateWithoutManagerAssigned(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	orphanID := uuid.New()
	f.directory.On("Resolve", ctx, orphanID).Return(identity.Actor{
		ID: orphanID, Username: "orphan", Role: identity.RoleClerk,
	}, nil)

	_, _, err := f.service.Create(ctx, orphanID, validPayload())

	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateRejectsMismatchedItemTotal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	in := validPayload()
	in.Items[1].Amount = 900

	_, _, err := f.service.Create(ctx, f.clerkID, in)

	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestCreateSucceedsWhenRenderFails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	f.repo.On("NextReference", ctx).Return("ONLINE-0102", nil)
	f.repo.On("Create", ctx, mock.AnythingOfType("*requests.PaymentRequest")).Return(nil)
	f.artifacts.On("Render", ctx, mock.AnythingOfType("documents.VoucherData"), "aclerk").
		Return("", errors.New("disk full"))

	req, warnings, err := f.service.Create(ctx, f.clerkID, validPayload())

	assert.NoError(t, err)
	assert.NotNil(t, req)
	assert.Len(t, warnings, 1)
	assert.Empty(t, req.ArtifactHandle)
	f.repo.AssertNotCalled(t, "SetArtifactHandle", mock.Anything, mock.Anything, mock.Anything)
}

func TestManagerApproveMovesToExecutive(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	req := f.request(workflows.PendingStatus("MANAGER"))
	f.repo.On("Get", ctx, req.ID).Return(req, nil)
	f.repo.On("SaveTransition", ctx, req, workflows.PendingStatus("MANAGER"), mock.AnythingOfType("*requests.AuditEntry")).Return(nil)

	out, warnings, err := f.service.Process(ctx, req.ID, f.managerID, workflows.ActionApprove, "")

	assert.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, workflows.PendingStatus("ED"), out.Status)
	f.artifacts.AssertNotCalled(t, "Lock", mock.Anything, mock.Anything, mock.Anything)
	f.repo.AssertExpectations(t)
}

func TestRejectRequiresComment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	req := f.request(workflows.PendingStatus("MANAGER"))
	f.repo.On("Get", ctx, req.ID).Return(req, nil)

	_, _, err := f.service.Process(ctx, req.ID, f.managerID, workflows.ActionReject, "   ")

	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
	f.repo.AssertNotCalled(t, "SaveTransition", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRequesterCannotProcess(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	req := f.request(workflows.PendingStatus("MANAGER"))
	f.repo.On("Get", ctx, req.ID).Return(req, nil)

	_, _, err := f.service.Process(ctx, req.ID, f.clerkID, workflows.ActionApprove, "")

	var authErr *AuthorizationError
	assert.ErrorAs(t, err, &authErr)
}

func TestOnlyAssignedManagerMayProcess(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	otherManager := uuid.New()
	f.directory.On("Resolve", ctx, otherManager).Return(identity.Actor{
		ID: otherManager, Username: "someoneelse", Role: identity.RoleManager,
	}, nil)

	req := f.request(workflows.PendingStatus("MANAGER"))
	f.repo.On("Get", ctx, req.ID).Return(req, nil)

	_, _, err := f.service.Process(ctx, req.ID, otherManager, workflows.ActionApprove, "")

	var authErr *AuthorizationError
	assert.ErrorAs(t, err, &authErr)
}

func TestEDCannotActBeforeManager(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	req := f.request(workflows.PendingStatus("MANAGER"))
	f.repo.On("Get", ctx, req.ID).Return(req, nil)

	_, _, err := f.service.Process(ctx, req.ID, f.edID, workflows.ActionApprove, "")

	var authErr *AuthorizationError
	assert.ErrorAs(t, err, &authErr)
	f.repo.AssertNotCalled(t, "SaveTransition", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFinalApproveLocksArtifact(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	req := f.request(workflows.PendingStatus("ED"))
	f.repo.On("Get", ctx, req.ID).Return(req, nil)
	f.repo.On("SaveTransition", ctx, req, workflows.PendingStatus("ED"), mock.AnythingOfType("*requests.AuditEntry")).Return(nil)
	f.artifacts.On("Lock", ctx, req.ArtifactHandle, "director").Return(req.ArtifactHandle, nil)

	out, warnings, err := f.service.Process(ctx, req.ID, f.edID, workflows.ActionApprove, "")

	assert.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, workflows.StatusApproved, out.Status)
	f.artifacts.AssertExpectations(t)
}

func TestLockFailureDegradesButApprovalStands(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	req := f.request(workflows.PendingStatus("ED"))
	f.repo.On("Get", ctx, req.ID).Return(req, nil)
	f.repo.On("SaveTransition", ctx, req, workflows.PendingStatus("ED"), mock.AnythingOfType("*requests.AuditEntry")).Return(nil)
	f.artifacts.On("Lock", ctx, req.ArtifactHandle, "director").Return("", errors.New("file vanished"))

	out, warnings, err := f.service.Process(ctx, req.ID, f.edID, workflows.ActionApprove, "")

	assert.NoError(t, err)
	assert.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "could not be locked")
	assert.Equal(t, workflows.StatusApproved, out.Status)
}

func TestConcurrentDecisionConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	req := f.request(workflows.PendingStatus("MANAGER"))
	f.repo.On("Get", ctx, req.ID).Return(req, nil)
	f.repo.On("SaveTransition", ctx, req, workflows.PendingStatus("MANAGER"), mock.AnythingOfType("*requests.AuditEntry")).Return(ErrConflict)

	_, _, err := f.service.Process(ctx, req.ID, f.managerID, workflows.ActionApprove, "")

	assert.ErrorIs(t, err, ErrConflict)
	f.artifacts.AssertNotCalled(t, "Lock", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessRejectedRequestIsTerminal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	req := f.request(workflows.RejectedStatus("MANAGER"))
	f.repo.On("Get", ctx, req.ID).Return(req, nil)

	_, _, err := f.service.Process(ctx, req.ID, f.managerID, workflows.ActionApprove, "")

	var transErr *InvalidTransitionError
	assert.ErrorAs(t, err, &transErr)
}

func TestManagerApprovesReturnedFromExecutive(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	req := f.request(workflows.ReturnedStatus("ED"))
	f.repo.On("Get", ctx, req.ID).Return(req, nil)
	f.repo.On("SaveTransition", ctx, req, workflows.ReturnedStatus("ED"), mock.AnythingOfType("*requests.AuditEntry")).Return(nil)

	out, _, err := f.service.Process(ctx, req.ID, f.managerID, workflows.ActionApprove, "checked and corrected")

	assert.NoError(t, err)
	assert.Equal(t, workflows.PendingStatus("ED"), out.Status)
}

func TestSubmitReturnedRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	req := f.request(workflows.ReturnedStatus("MANAGER"))
	f.repo.On("Get", ctx, req.ID).Return(req, nil)
	f.repo.On("SaveTransition", ctx, req, workflows.ReturnedStatus("MANAGER"), mock.AnythingOfType("*requests.AuditEntry")).Return(nil)

	out, err := f.service.Submit(ctx, req.ID, f.clerkID)

	assert.NoError(t, err)
	assert.Equal(t, workflows.PendingStatus("MANAGER"), out.Status)
}

func TestSubmitByNonRequester(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	req := f.request(workflows.ReturnedStatus("MANAGER"))
	f.repo.On("Get", ctx, req.ID).Return(req, nil)

	_, err := f.service.Submit(ctx, req.ID, f.managerID)

	var authErr *AuthorizationError
	assert.ErrorAs(t, err, &authErr)
}

func TestSubmitApprovedRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	req := f.request(workflows.StatusApproved)
	f.repo.On("Get", ctx, req.ID).Return(req, nil)

	_, err := f.service.Submit(ctx, req.ID, f.clerkID)

	var transErr *InvalidTransitionError
	assert.ErrorAs(t, err, &transErr)
}

func TestEditByManagerWhilePending(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	req := f.request(workflows.PendingStatus("MANAGER"))
	f.repo.On("Get", ctx, req.ID).Return(req, nil)
	f.repo.On("UpdateFields", ctx, req, workflows.PendingStatus("MANAGER"), mock.AnythingOfType("*requests.AuditEntry")).Return(nil)

	amount := 1500.0
	beneficiary := "Hotel 2 Fevrier"
	out, warnings, err := f.service.Edit(ctx, req.ID, f.managerID, EditRequest{
		Beneficiary: &beneficiary,
		Amount:      &amount,
		Items:       &[]LineItemInput{{Particulars: "Conference package", Amount: 1500}},
	})

	assert.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "Hotel 2 Fevrier", out.Beneficiary)
	f.artifacts.AssertNotCalled(t, "Render", mock.Anything, mock.Anything, mock.Anything)
}

func TestEditRegeneratesVoucherWhenBodyChanges(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	req := f.request(workflows.ReturnedStatus("MANAGER"))
	f.repo.On("Get", ctx, req.ID).Return(req, nil)
	f.repo.On("UpdateFields", ctx, req, workflows.ReturnedStatus("MANAGER"), mock.AnythingOfType("*requests.AuditEntry")).Return(nil)
	f.artifacts.On("Render", ctx, mock.AnythingOfType("documents.VoucherData"), "aclerk").
		Return("uploads/pdfs/request_ONLINE-0101_def.pdf", nil)
	f.repo.On("SetArtifactHandle", ctx, req.ID, "uploads/pdfs/request_ONLINE-0101_def.pdf").Return(nil)

	body := "<p>Revised justification letter.</p>"
	_, warnings, err := f.service.Edit(ctx, req.ID, f.clerkID, EditRequest{Body: &body})

	assert.NoError(t, err)
	assert.Empty(t, warnings)
	f.artifacts.AssertExpectations(t)
}

func TestEditByRequesterAfterManagerApproval(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	req := f.request(workflows.PendingStatus("ED"))
	f.repo.On("Get", ctx, req.ID).Return(req, nil)

	beneficiary := "Changed"
	_, _, err := f.service.Edit(ctx, req.ID, f.clerkID, EditRequest{Beneficiary: &beneficiary})

	var transErr *InvalidTransitionError
	assert.ErrorAs(t, err, &transErr)
}

func TestEditByStranger(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	req := f.request(workflows.PendingStatus("MANAGER"))
	f.repo.On("Get", ctx, req.ID).Return(req, nil)

	beneficiary := "Changed"
	_, _, err := f.service.Edit(ctx, req.ID, f.edID, EditRequest{Beneficiary: &beneficiary})

	var authErr *AuthorizationError
	assert.ErrorAs(t, err, &authErr)
}

func TestRetryLockSignsAsFinalApprover(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	adminID := uuid.New()
	f.directory.On("Resolve", ctx, adminID).Return(identity.Actor{
		ID: adminID, Username: "root", Role: identity.RoleAdmin,
	}, nil)

	req := f.request(workflows.StatusApproved)
	req.History = []AuditEntry{
		{Action: AuditCreated, ActorID: f.clerkID},
		{Action: "APPROVED", ActorID: f.managerID},
		{Action: "APPROVED", ActorID: f.edID},
	}
	f.repo.On("Get", ctx, req.ID).Return(req, nil)
	f.artifacts.On("Lock", ctx, req.ArtifactHandle, "director").Return(req.ArtifactHandle, nil)

	_, warnings, err := f.service.RetryLock(ctx, req.ID, adminID)

	assert.NoError(t, err)
	assert.Empty(t, warnings)
	f.artifacts.AssertExpectations(t)
}

func TestRetryLockRequiresExecutive(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	req := f.request(workflows.StatusApproved)
	f.repo.On("Get", ctx, req.ID).Return(req, nil)

	_, _, err := f.service.RetryLock(ctx, req.ID, f.clerkID)

	var authErr *AuthorizationError
	assert.ErrorAs(t, err, &authErr)
}

func TestRegenerateArtifactRefusedAfterApproval(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	req := f.request(workflows.StatusApproved)
	f.repo.On("Get", ctx, req.ID).Return(req, nil)

	_, err := f.service.RegenerateArtifact(ctx, req.ID, f.clerkID)

	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
	f.artifacts.AssertNotCalled(t, "Render", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetRestrictedToParticipants(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	strangerID := uuid.New()
	f.directory.On("Resolve", ctx, strangerID).Return(identity.Actor{
		ID: strangerID, Username: "stranger", Role: identity.RoleClerk,
	}, nil)

	req := f.request(workflows.PendingStatus("MANAGER"))
	f.repo.On("Get", ctx, req.ID).Return(req, nil)

	_, err := f.service.Get(ctx, req.ID, strangerID)

	var authErr *AuthorizationError
	assert.ErrorAs(t, err, &authErr)

	got, err := f.service.Get(ctx, req.ID, f.edID)
	assert.NoError(t, err)
	assert.Equal(t, req.ID, got.ID)
}

func TestFullApprovalRoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	f.repo.On("NextReference", ctx).Return("ONLINE-0103", nil)
	var req *PaymentRequest
	f.repo.On("Create", ctx, mock.AnythingOfType("*requests.PaymentRequest")).
		Run(func(args mock.Arguments) { req = args.Get(1).(*PaymentRequest) }).Return(nil)
	f.artifacts.On("Render", ctx, mock.AnythingOfType("documents.VoucherData"), "aclerk").
		Return("uploads/pdfs/request_ONLINE-0103_abc.pdf", nil)
	f.repo.On("SetArtifactHandle", ctx, mock.AnythingOfType("uuid.UUID"), "uploads/pdfs/request_ONLINE-0103_abc.pdf").Return(nil)

	created, _, err := f.service.Create(ctx, f.clerkID, validPayload())
	assert.NoError(t, err)
	assert.Equal(t, workflows.PendingStatus("MANAGER"), created.Status)

	f.repo.On("Get", ctx, req.ID).Return(req, nil)
	f.repo.On("SaveTransition", ctx, req, mock.AnythingOfType("workflows.Status"), mock.AnythingOfType("*requests.AuditEntry")).
		Run(func(args mock.Arguments) {
			req.History = append(req.History, *args.Get(3).(*AuditEntry))
		}).Return(nil)
	f.artifacts.On("Lock", ctx, req.ArtifactHandle, "director").Return(req.ArtifactHandle, nil)

	afterManager, _, err := f.service.Process(ctx, req.ID, f.managerID, workflows.ActionApprove, "")
	assert.NoError(t, err)
	assert.Equal(t, workflows.PendingStatus("ED"), afterManager.Status)

	final, warnings, err := f.service.Process(ctx, req.ID, f.edID, workflows.ActionApprove, "")
	assert.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, workflows.StatusApproved, final.Status)
	assert.Len(t, final.History, 3)
	assert.Equal(t, AuditCreated, final.History[0].Action)
	f.artifacts.AssertExpectations(t)
}

func TestExecutiveQueueDefaultsToEDStage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.expectActors(ctx)

	f.repo.On("List", ctx, Query{Statuses: []workflows.Status{
		workflows.PendingStatus("ED"), workflows.ReturnedStatus("ED"),
	}}).Return([]PaymentRequest{}, nil)

	_, err := f.service.ListExecutiveQueue(ctx, f.edID, nil, "")
	assert.NoError(t, err)
	f.repo.AssertExpectations(t)

	_, err = f.service.ListExecutiveQueue(ctx, f.clerkID, nil, "")
	var authErr *AuthorizationError
	assert.ErrorAs(t, err, &authErr)
}
