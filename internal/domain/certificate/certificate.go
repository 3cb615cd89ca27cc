// Package certificate renders internship completion certificates as PDF.
package certificate

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/okian/internxp/internal/domain/model"
)

// Page geometry in millimetres (A4 portrait).
const (
	pageW  = 210.0
	pageH  = 297.0
	margin = 12.7
	sigW   = 50.0
)

const defaultSupervisor = "Supervisor"

var whitespace = regexp.MustCompile(`\s+`) //nolint:gochecknoglobals // compiled once

// Data is everything printed on a certificate.
type Data struct {
	Name       string
	FromDate   string
	ToDate     string
	Badges     []model.Badge
	Supervisor string
	IssuedAt   time.Time
}

// FromCandidate assembles certificate data. The supervisor is taken from the
// hire details, then the override, then a generic title.
func FromCandidate(c *model.Candidate, supervisorOverride string, at time.Time) Data {
	d := Data{
		Name:     c.Name(),
		FromDate: "N/A",
		ToDate:   "N/A",
		Badges:   c.Badges,
		IssuedAt: at,
	}
	supervisor := ""
	if hd := c.HireDetails; hd != nil {
		if hd.FromDate != "" {
			d.FromDate = hd.FromDate
		}
		if hd.ToDate != "" {
			d.ToDate = hd.ToDate
		}
		supervisor = hd.Supervisor
	}
	if supervisor == "" {
		supervisor = strings.TrimSpace(supervisorOverride)
	}
	if supervisor == "" {
		supervisor = defaultSupervisor
	}
	d.Supervisor = supervisor
	return d
}

// FileName is certificate_<Name_With_Underscores>_<unixmillis>.pdf.
func FileName(name string, at time.Time) string {
	return fmt.Sprintf("certificate_%s_%d.pdf", whitespace.ReplaceAllString(strings.TrimSpace(name), "_"), at.UnixMilli())
}

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithLogo draws the image at path above the title when the file exists.
func WithLogo(path string) Option {
	return func(r *Renderer) { r.logoPath = path }
}

// WithSignature draws the image at path above the signature line when the file exists.
func WithSignature(path string) Option {
	return func(r *Renderer) { r.signaturePath = path }
}

// Renderer is stateless and safe for concurrent use.
type Renderer struct {
	logoPath      string
	signaturePath string
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render produces the PDF bytes for d.
func (r *Renderer) Render(d Data) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin*2, margin*2, margin*2)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle("Certificate of Internship Completion", true)
	pdf.SetCreator("internxp", true)
	pdf.SetCreationDate(d.IssuedAt)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetDrawColor(204, 204, 204)
	pdf.Rect(margin/2, margin/2, pageW-margin, pageH-margin, "D")

	y := 30.0
	if fileExists(r.logoPath) {
		pdf.ImageOptions(r.logoPath, pageW/2-14, 24, 28, 0, false, fpdf.ImageOptions{ReadDpi: true}, 0, "")
		y = 60
	}

	pdf.SetY(y)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 20)
	pdf.CellFormat(0, 12, tr("Certificate of Internship Completion"), "", 1, "C", false, 0, "")
	pdf.Ln(6)
	pdf.SetFont("Times", "", 12)
	pdf.CellFormat(0, 8, tr("This is to certify that"), "", 1, "C", false, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Times", "B", 26)
	pdf.CellFormat(0, 14, tr(d.Name), "", 1, "C", false, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Times", "", 12)
	pdf.MultiCell(0, 7, tr(fmt.Sprintf("has successfully completed the internship from %s to %s.", d.FromDate, d.ToDate)), "", "C", false)
	pdf.Ln(8)

	if len(d.Badges) == 0 {
		pdf.CellFormat(0, 7, tr("Achievements: -"), "", 1, "L", false, 0, "")
	} else {
		pdf.SetFont("Times", "U", 14)
		pdf.CellFormat(0, 8, tr("Achievements"), "", 1, "L", false, 0, "")
		pdf.SetFont("Times", "", 12)
		for _, b := range d.Badges {
			line := fmt.Sprintf("- %s: %d XP (by %s on %s)", b.Name, b.Points, b.AssignedBy, b.AwardedDate.Format("2006-01-02"))
			pdf.MultiCell(0, 6, tr(line), "", "L", false)
		}
	}

	sigX := pageW - 70
	sigY := pageH - 70
	if fileExists(r.signaturePath) {
		pdf.ImageOptions(r.signaturePath, sigX+5, sigY-20, 40, 0, false, fpdf.ImageOptions{ReadDpi: true}, 0, "")
	} else {
		pdf.SetDrawColor(0, 0, 0)
		pdf.Line(sigX, sigY, sigX+sigW, sigY)
	}
	pdf.SetXY(sigX, sigY+2)
	pdf.SetFont("Times", "", 12)
	pdf.CellFormat(sigW, 6, tr(d.Supervisor), "", 2, "C", false, 0, "")
	pdf.SetFont("Times", "", 10)
	pdf.CellFormat(sigW, 5, tr(defaultSupervisor), "", 0, "C", false, 0, "")

	pdf.SetXY(margin*2, pageH-margin*2-6)
	pdf.CellFormat(0, 5, tr("Date: "+d.IssuedAt.Format("2006-01-02")), "", 0, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
