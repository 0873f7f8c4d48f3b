package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"
)

// donationCSVHeader is the export column order. Changing it breaks saved
// spreadsheets downstream, so treat it as an interface.
var donationCSVHeader = []string{
	"id", "created", "amount", "currency", "status",
	"donor_name", "donor_email", "payment_intent_id", "refunded",
}

// EncodeCSV serializes rows into a single RFC4180 payload, header first.
// Cells containing quotes, commas or line breaks are quoted with internal
// quotes doubled. The whole payload is buffered; callers bound row counts.
func EncodeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// DonationsCSV renders a donation set as the export payload.
func DonationsCSV(donations []Donation) ([]byte, error) {
	rows := make([][]string, 0, len(donations))
	for _, d := range donations {
		rows = append(rows, []string{
			d.ID,
			time.Unix(d.Created, 0).UTC().Format(time.RFC3339),
			fmt.Sprintf("%d", d.Amount),
			d.Currency,
			d.Status,
			d.DonorName,
			d.DonorEmail,
			d.PaymentIntentID,
			fmt.Sprintf("%t", d.Refunded),
		})
	}
	return EncodeCSV(donationCSVHeader, rows)
}
