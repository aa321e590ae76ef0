package banks

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Service serves the reference data behind the requisition form: payout banks
// and the QuickBooks chart of accounts.
type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) ListBanks(ctx context.Context) ([]Bank, error) {
	return s.repo.ListBanks(ctx)
}

// SeedBanks loads the default bank list only when the table is empty.
func (s *Service) SeedBanks(ctx context.Context) (bool, error) {
	n, err := s.repo.CountBanks(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if err := s.repo.CreateBanks(ctx, defaultBanks()); err != nil {
		return false, err
	}
	s.log.Info("seeded default bank list")
	return true, nil
}

func defaultBanks() []Bank {
	return []Bank{
		{Name: "EcoBank", Accounts: []string{"1234567890", "0987654321", "1122334455"}},
		{Name: "UBA", Accounts: []string{"5566778899", "6677889900"}},
		{Name: "GTBank", Accounts: []string{"9988776655", "4433221100"}},
		{Name: "First Bank", Accounts: []string{"1029384756", "5647382910"}},
	}
}

func (s *Service) SearchAccounts(ctx context.Context, term string) ([]ChartOfAccount, error) {
	return s.repo.SearchAccounts(ctx, term, 50)
}

// ImportChart reads a "Chart of Account Listing" workbook and replaces the
// stored chart with its contents. The listing puts the account name in column
// C and the code in column D; detail rows above and below are skipped.
func (s *Service) ImportChart(ctx context.Context, workbook io.Reader) (int, error) {
	f, err := excelize.OpenReader(workbook)
	if err != nil {
		return 0, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := "Sheet1"
	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	var accounts []ChartOfAccount
	for _, row := range rows {
		if len(row) < 4 {
			continue
		}
		rawName := strings.TrimSpace(row[2])
		code := strings.TrimSpace(row[3])
		if rawName == "" || code == "" {
			continue
		}
		accounts = append(accounts, parseListingRow(rawName, code))
	}
	if len(accounts) == 0 {
		return 0, fmt.Errorf("no account rows found in %s", sheet)
	}

	if err := s.repo.ReplaceAccounts(ctx, accounts); err != nil {
		return 0, err
	}
	s.log.Info("chart of accounts imported", zap.Int("accounts", len(accounts)))
	return len(accounts), nil
}

// parseListingRow splits the QuickBooks display name. Sub-accounts come as
// "7000000 · Administration expenses:7010010 · Administrative fee"; top-level
// rows as "4010000 · Grant income".
func parseListingRow(rawName, code string) ChartOfAccount {
	acc := ChartOfAccount{Code: code, FullName: rawName}
	if parent, child, isSub := strings.Cut(rawName, ":"); isSub {
		parts := strings.Split(rawName, ":")
		child = parts[len(parts)-1]
		acc.IsSub = true
		acc.Name = afterDot(child)
		if pc, _, ok := strings.Cut(parent, "·"); ok {
			acc.ParentCode = strings.TrimSpace(pc)
		}
	} else {
		acc.Name = afterDot(rawName)
	}
	return acc
}

func afterDot(s string) string {
	if _, name, ok := strings.Cut(s, "·"); ok {
		return strings.TrimSpace(name)
	}
	return strings.TrimSpace(s)
}
