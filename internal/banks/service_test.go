package banks

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListBanks(ctx context.Context) ([]Bank, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Bank), args.Error(1)
}

func (m *MockRepository) CountBanks(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) CreateBanks(ctx context.Context, banks []Bank) error {
	args := m.Called(ctx, banks)
	return args.Error(0)
}

func (m *MockRepository) SearchAccounts(ctx context.Context, term string, limit int) ([]ChartOfAccount, error) {
	args := m.Called(ctx, term, limit)
	return args.Get(0).([]ChartOfAccount), args.Error(1)
}

func (m *MockRepository) ReplaceAccounts(ctx context.Context, accounts []ChartOfAccount) error {
	args := m.Called(ctx, accounts)
	return args.Error(0)
}

func listingWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		assert.NoError(t, err)
		assert.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	assert.NoError(t, f.Write(&buf))
	return &buf
}

func TestImportChart(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	buf := listingWorkbook(t, [][]interface{}{
		{"Chart of Account Listing", "", "", ""},
		{"", "", "4010000 · Grant income", "4010000"},
		{"", "", "7000000 · Administration expenses:7010010 · Administrative fee", "7010010"},
		{"", "", "", ""},
	})

	var got []ChartOfAccount
	mockRepo.On("ReplaceAccounts", ctx, mock.AnythingOfType("[]banks.ChartOfAccount")).
		Run(func(args mock.Arguments) { got = args.Get(1).([]ChartOfAccount) }).Return(nil)

	n, err := service.ImportChart(ctx, buf)

	assert.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, "4010000", got[0].Code)
	assert.Equal(t, "Grant income", got[0].Name)
	assert.False(t, got[0].IsSub)

	assert.Equal(t, "7010010", got[1].Code)
	assert.Equal(t, "Administrative fee", got[1].Name)
	assert.True(t, got[1].IsSub)
	assert.Equal(t, "7000000", got[1].ParentCode)
	assert.Equal(t, "7000000 · Administration expenses:7010010 · Administrative fee", got[1].FullName)
}

func TestImportChartEmptyWorkbook(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())

	buf := listingWorkbook(t, [][]interface{}{{"", "", "", ""}})

	_, err := service.ImportChart(context.Background(), buf)

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "ReplaceAccounts", mock.Anything, mock.Anything)
}

func TestSeedBanksOnlyWhenEmpty(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("CountBanks", ctx).Return(int64(4), nil)

	seeded, err := service.SeedBanks(ctx)
	assert.NoError(t, err)
	assert.False(t, seeded)
	mockRepo.AssertNotCalled(t, "CreateBanks", mock.Anything, mock.Anything)
}

func TestSeedBanksPopulatesDefaults(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("CountBanks", ctx).Return(int64(0), nil)
	mockRepo.On("CreateBanks", ctx, mock.AnythingOfType("[]banks.Bank")).Return(nil)

	seeded, err := service.SeedBanks(ctx)
	assert.NoError(t, err)
	assert.True(t, seeded)
	mockRepo.AssertExpectations(t)
}
