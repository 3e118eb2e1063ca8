package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"cottonwood-backend/internal/membership"
	"cottonwood-backend/internal/models"
	"cottonwood-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

// ReportService renders the filtered roster as CSV or PDF
type ReportService struct {
	Members *MemberService
}

func NewReportService(members *MemberService) *ReportService {
	return &ReportService{Members: members}
}

// rosterRows returns the filtered roster in display order
func (s *ReportService) rosterRows(ctx context.Context, f membership.Filter) ([]membership.Resolved, error) {
	all, err := s.Members.Roster(ctx)
	if err != nil {
		return nil, err
	}
	return membership.Apply(all, f), nil
}

// GenerateRosterCSV exports the filtered roster
func (s *ReportService) GenerateRosterCSV(ctx context.Context, f membership.Filter) ([]byte, error) {
	rows, err := s.rosterRows(ctx, f)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	// Header
	w.Write([]string{
		"#", "Name", "Email", "Phone", "Status", "Tagged",
		"Join Date", "Last Renewal", "Due Date", "Days Until Renewal", "Override", "Last Order", "Notes",
	})

	for i, r := range rows {
		m := r.Member
		w.Write([]string{
			strconv.Itoa(i + 1),
			m.Name,
			m.Email,
			m.Phone,
			string(r.Status),
			strconv.FormatBool(m.HasQuackTag),
			formatOptDate(m.JoinDate),
			formatOptDate(m.LastRenewalDate),
			formatOptDate(r.DueDate),
			formatOptDays(r.DaysUntilRenewal),
			strconv.FormatBool(m.HasOverride),
			m.LastOrderNumber,
			m.Notes,
		})
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateRosterPDF renders the filtered roster as a landscape table
func (s *ReportService) GenerateRosterPDF(ctx context.Context, f membership.Filter) ([]byte, error) {
	rows, err := s.rosterRows(ctx, f)
	if err != nil {
		return nil, err
	}
	stats := membership.ComputeStats(rows, s.Members.Today(), nil)

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(277, 10, "Club Cottonwood - Member Roster", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(277, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format("Jan 2, 2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Summary
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 11)
	summary := []string{
		fmt.Sprintf("Members: %d", stats.TotalMembers),
		fmt.Sprintf("Active: %d", stats.ActiveMembers),
		fmt.Sprintf("Overdue: %d", stats.OverdueMembers),
		fmt.Sprintf("Expired: %d", stats.ExpiredMembers+stats.LapsedMembers),
		fmt.Sprintf("Prospects: %d", stats.ProspectCount),
	}
	for i, text := range summary {
		ln := 0
		if i == len(summary)-1 {
			ln = 1
		}
		pdf.CellFormat(55.4, 8, text, "1", ln, "C", true, 0, "")
	}
	pdf.Ln(4)

	// Table header
	widths := []float64{60, 70, 24, 26, 26, 26, 20, 25}
	headers := []string{"Name", "Email", "Status", "Joined", "Last Renewal", "Due", "Days", "Last Order"}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(92, 179, 229)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		ln := 0
		if i == len(headers)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 7, h, "1", ln, "C", true, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)

	pdf.SetFont("Arial", "", 9)
	for _, r := range rows {
		m := r.Member
		setStatusFill(pdf, r.Status)
		cells := []string{
			truncateText(m.Name, 32),
			truncateText(m.Email, 38),
			string(r.Status),
			formatOptDate(m.JoinDate),
			formatOptDate(m.LastRenewalDate),
			formatOptDate(r.DueDate),
			formatOptDays(r.DaysUntilRenewal),
			m.LastOrderNumber,
		}
		for i, c := range cells {
			ln := 0
			if i == len(cells)-1 {
				ln = 1
			}
			align := "L"
			if i >= 2 {
				align = "C"
			}
			pdf.CellFormat(widths[i], 6, c, "1", ln, align, i == 2, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setStatusFill(pdf *gofpdf.Fpdf, status models.MembershipStatus) {
	switch status {
	case models.StatusActive:
		pdf.SetFillColor(200, 255, 200)
	case models.StatusOverdue:
		pdf.SetFillColor(255, 235, 180)
	case models.StatusExpired, models.StatusLapsed:
		pdf.SetFillColor(255, 200, 200)
	default:
		pdf.SetFillColor(230, 230, 230)
	}
}

func formatOptDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return timeutil.FormatDate(*d)
}

func formatOptDays(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
