package documents

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// renderVoucher lays out the bilingual payment voucher. When signedBy is
// non-empty the approval block is filled in; that variant is only ever written
// by Lock, after which the file is made read-only.
func renderVoucher(data VoucherData, preparedBy, signedBy string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	// Header: org mark and voucher reference
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(90, 10, "ISDAO", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(90, 10, "PV "+data.Beneficiary, "", 1, "R", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(180, 8, "Bon de paiement // Payment Voucher", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	field := func(label, value string) {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(70, 7, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(110, 7, value, "B", 1, "L", false, 0, "")
	}
	field("Nom de la banque // Bank name:", data.BankName)
	field("Numero de reference // Reference number:", data.ReferenceNumber)
	field("Numero de compte // Account number:", data.AccountNumber)
	field("Date // Date:", data.RequestDate.Format("02/01/2006"))
	pdf.Ln(3)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(50, 7, "BENEFICIAIRE // PAYEE:", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(130, 7, data.Beneficiary, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// Amount box
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(180, 7, fmt.Sprintf("MONTANT EN %s // AMOUNT IN %s: %s",
		data.Currency, data.Currency, formatAmount(data.Amount)), "LTR", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(180, 6, data.AmountInWords, "LBR", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Items table
	pdf.SetFont("Arial", "B", 8)
	pdf.SetFillColor(243, 244, 246)
	pdf.CellFormat(62, 7, "Detail du paiement // Particulars", "1", 0, "C", true, 0, "")
	pdf.CellFormat(28, 7, fmt.Sprintf("Montant (%s)", data.Currency), "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Nom du compte // Account", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Code source", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Code QuickBooks", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 8)
	items := data.Items
	if len(items) == 0 {
		particulars := data.DescriptionFr
		if data.DescriptionEn != "" {
			particulars = strings.TrimSpace(particulars + "\n" + data.DescriptionEn)
		}
		items = []VoucherItem{{
			Particulars:       particulars,
			Amount:            data.Amount,
			AccountName:       data.AccountName,
			FundingSourceCode: data.FundingSourceCode,
			QuickBooksCode:    data.QuickBooksCode,
		}}
	}
	for _, it := range items {
		pdf.CellFormat(62, 7, it.Particulars, "1", 0, "L", false, 0, "")
		pdf.CellFormat(28, 7, formatAmount(it.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, it.AccountName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, it.FundingSourceCode, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, it.QuickBooksCode, "1", 1, "L", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 8)
	pdf.CellFormat(62, 7, "TOTAL", "1", 0, "R", false, 0, "")
	pdf.CellFormat(28, 7, formatAmount(data.Amount), "1", 0, "R", false, 0, "")
	pdf.CellFormat(90, 7, "", "1", 1, "L", false, 0, "")
	pdf.Ln(5)

	// Letter body
	if body := stripTags(data.Body); body != "" {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(180, 6, "Payment Request Details:", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(180, 5, body, "1", "L", false)
		pdf.Ln(5)
	}

	// Signature block
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(90, 6, "Prepared By: "+preparedBy, "", 0, "L", false, 0, "")
	if signedBy != "" {
		pdf.CellFormat(90, 6, "Approved By: "+signedBy, "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(90, 6, "Approved By: ____________________", "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(90, 6, "Date: "+time.Now().Format("02/01/2006"), "", 0, "L", false, 0, "")
	if signedBy != "" {
		pdf.SetFont("Arial", "I", 10)
		pdf.CellFormat(90, 6, "Signed by "+signedBy, "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(90, 6, "Signature: ____________________", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	dot := strings.Index(s, ".")
	intPart, frac := s[:dot], s[dot:]
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 && r != '-' {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String() + frac
}

// stripTags drops HTML markup from the rich text letter body, keeping line
// breaks for block-level tags.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	var tag strings.Builder
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
			tag.Reset()
		case r == '>' && inTag:
			inTag = false
			name := strings.ToLower(strings.TrimLeft(tag.String(), "/"))
			name = strings.SplitN(name, " ", 2)[0]
			switch name {
			case "p", "div", "br", "li", "h1", "h2", "h3", "h4":
				b.WriteByte('\n')
			}
		case inTag:
			tag.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
