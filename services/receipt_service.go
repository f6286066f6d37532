package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	config "github.com/anjiri1684/excursion_booking/configs"
	"github.com/anjiri1684/excursion_booking/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"gorm.io/gorm"
)

const receiptFolder = "excursion_receipts"

// ReceiptService renders a PDF receipt for a booking and stores its URL.
type ReceiptService struct {
	DB            *gorm.DB
	CloudinaryURL string
	ChromeTimeout time.Duration

	// swapped in tests
	renderPDF func(ctx context.Context, html string) ([]byte, error)
	upload    func(ctx context.Context, pdf []byte, bookingID string) (string, error)
}

func NewReceiptService(db *gorm.DB, cfg *config.Config) *ReceiptService {
	s := &ReceiptService{
		DB:            db,
		CloudinaryURL: cfg.CloudinaryURL,
		ChromeTimeout: cfg.ChromeTimeout,
		renderPDF:     generatePDFFromHTML,
	}
	s.upload = s.uploadToCloudinary
	return s
}

func (s *ReceiptService) Enabled() bool {
	return s != nil && s.CloudinaryURL != ""
}

// GenerateReceipt runs outside the request; failures are logged.
func (s *ReceiptService) GenerateReceipt(bookingID string) {
	if !s.Enabled() {
		log.Println("Receipt storage not configured, skipping receipt.")
		return
	}

	var booking models.Booking
	err := s.DB.Preload("User").Preload("Excursion.ExcursionType").Preload("Cruises").
		Where("id = ?", bookingID).First(&booking).Error
	if err != nil {
		log.Printf("🔥 Failed to load booking %s for receipt: %v", bookingID, err)
		return
	}

	htmlData, err := generateReceiptHTML(booking)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt HTML: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.ChromeTimeout)
	defer cancel()

	pdfBytes, err := s.renderPDF(ctx, htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate PDF: %v", err)
		return
	}

	uploadURL, err := s.upload(ctx, pdfBytes, booking.ID.String())
	if err != nil {
		log.Printf("🔥 Failed to upload receipt to Cloudinary: %v", err)
		return
	}

	if err := s.DB.Model(&models.Booking{}).Where("id = ?", booking.ID).Update("receipt_url", uploadURL).Error; err != nil {
		log.Printf("🔥 Failed to store receipt url for booking %s: %v", booking.ID, err)
		return
	}
	log.Printf("✅ Generated and uploaded receipt for booking %s.", booking.Reference)
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Receipt {{.Reference}}</title></head>
<body style="font-family: sans-serif">
<h1>Booking receipt</h1>
<p>Reference: <b>{{.Reference}}</b></p>
<p>Guest: {{.Guest}}</p>
<p>Excursion: {{.Excursion}} on {{.When}}</p>
<p>Cruises: {{range $i, $c := .Cruises}}{{if $i}}, {{end}}{{$c}}{{end}}</p>
<table>
<tr><td>Adults</td><td>{{.Adults}}</td></tr>
<tr><td>Kids</td><td>{{.Kids}}</td></tr>
<tr><td>Total</td><td>{{.Total}}</td></tr>
</table>
<p>Issued {{.Issued}}</p>
</body>
</html>`))

func generateReceiptHTML(booking models.Booking) (string, error) {
	cruises := make([]string, len(booking.Cruises))
	for i, cruise := range booking.Cruises {
		cruises[i] = cruise.ShipName
	}

	data := struct {
		Reference string
		Guest     string
		Excursion string
		When      string
		Cruises   []string
		Adults    int
		Kids      int
		Total     string
		Issued    string
	}{
		Reference: booking.Reference,
		Guest:     booking.User.FullName,
		Excursion: booking.Excursion.ExcursionType.Name,
		When:      booking.Excursion.StringDateTime(),
		Cruises:   cruises,
		Adults:    booking.Adults,
		Kids:      booking.Kids,
		Total:     booking.TotalPrice.String(),
		Issued:    booking.CreatedAt.Format("January 2, 2006"),
	}

	var renderedHTML bytes.Buffer
	if err := receiptTemplate.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(parent context.Context, htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(parent)
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func (s *ReceiptService) uploadToCloudinary(ctx context.Context, fileBytes []byte, bookingID string) (string, error) {
	cld, err := cloudinary.NewFromURL(s.CloudinaryURL)
	if err != nil {
		return "", err
	}

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("receipts/%s", bookingID),
		Folder:       receiptFolder,
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}
	return uploadResult.SecureURL, nil
}
