package notifications

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"isdao/payment-portal/payment-portal-backend/internal/identity"
	"isdao/payment-portal/payment-portal-backend/internal/requests"
	"isdao/payment-portal/payment-portal-backend/pkg/workflows"
)

// MockUsers is a mock implementation of the identity.Repository interface
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) GetByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUsers) GetByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUsers) ListByRole(ctx context.Context, role identity.Role) ([]identity.User, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]identity.User), args.Error(1)
}

type fakeSES struct {
	sent []*sesv2.SendEmailInput
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.sent = append(f.sent, params)
	return &sesv2.SendEmailOutput{}, nil
}

type fakeSNS struct {
	published []*sns.PublishInput
}

func (f *fakeSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.published = append(f.published, params)
	return &sns.PublishOutput{}, nil
}

func TestRequestCreatedEmailsManager(t *testing.T) {
	users := new(MockUsers)
	ses := &fakeSES{}
	topic := &fakeSNS{}
	log := zap.NewNop()
	n := NewNotifier(nil, NewMailer(ses, "noreply@example.org", log), NewPublisher(topic, "arn:aws:sns:topic", log), users, log)
	ctx := context.Background()

	managerID := uuid.New()
	users.On("GetByID", ctx, managerID).Return(&identity.User{
		ID: managerID, Username: "amanager", Email: "manager@example.org", Role: identity.RoleManager,
	}, nil)

	n.RequestCreated(ctx, &requests.PaymentRequest{
		ReferenceNumber: "ONLINE-0110",
		Status:          workflows.PendingStatus("MANAGER"),
		ManagerID:       managerID,
		Beneficiary:     "Hotel Sarakawa",
		Amount:          1500,
		Currency:        "USD",
	})

	assert.Len(t, ses.sent, 1)
	assert.Equal(t, []string{"manager@example.org"}, ses.sent[0].Destination.ToAddresses)
	assert.Len(t, topic.published, 1)
	assert.Contains(t, *topic.published[0].Message, "ONLINE-0110")
}

func TestManagerApprovalAlertsExecutives(t *testing.T) {
	users := new(MockUsers)
	ses := &fakeSES{}
	log := zap.NewNop()
	n := NewNotifier(nil, NewMailer(ses, "noreply@example.org", log), nil, users, log)
	ctx := context.Background()

	requesterID, edID := uuid.New(), uuid.New()
	users.On("GetByID", ctx, requesterID).Return(&identity.User{
		ID: requesterID, Email: "clerk@example.org", Role: identity.RoleClerk,
	}, nil)
	users.On("GetByID", ctx, edID).Return(&identity.User{
		ID: edID, Email: "director@example.org", Role: identity.RoleED,
	}, nil)
	users.On("ListByRole", ctx, identity.RoleED).Return([]identity.User{
		{ID: edID, Email: "director@example.org", Role: identity.RoleED},
	}, nil)

	n.RequestDecided(ctx, &requests.PaymentRequest{
		ReferenceNumber: "ONLINE-0111",
		Status:          workflows.PendingStatus("ED"),
		RequesterID:     requesterID,
		Beneficiary:     "Hotel Sarakawa",
		Amount:          1500,
		Currency:        "USD",
	}, requests.AuditEntry{Action: "APPROVED"})

	assert.Len(t, ses.sent, 2)
}

func TestRejectionNotifiesRequesterOnly(t *testing.T) {
	users := new(MockUsers)
	ses := &fakeSES{}
	log := zap.NewNop()
	n := NewNotifier(nil, NewMailer(ses, "noreply@example.org", log), nil, users, log)
	ctx := context.Background()

	requesterID := uuid.New()
	users.On("GetByID", ctx, requesterID).Return(&identity.User{
		ID: requesterID, Email: "clerk@example.org", Role: identity.RoleClerk,
	}, nil)

	n.RequestDecided(ctx, &requests.PaymentRequest{
		ReferenceNumber: "ONLINE-0112",
		Status:          workflows.RejectedStatus("MANAGER"),
		RequesterID:     requesterID,
	}, requests.AuditEntry{Action: "REJECTED", Comment: "no budget line"})

	assert.Len(t, ses.sent, 1)
	users.AssertNotCalled(t, "ListByRole", mock.Anything, mock.Anything)
}
