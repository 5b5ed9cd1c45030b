// Package export serializes the run's collected leads to a tabular
// sink. Rows are ordered by descending relevancy so the best matches
// sit at the top of the file.
package export

import (
	"encoding/csv"
	"log/slog"
	"os"
	"sort"
	"strconv"

	"github.com/use-agent/leadmart/models"
)

// header is the fixed column order. Spreadsheet tools key on these
// names, so changing them is a breaking change for downstream users.
var header = []string{
	"Company Name",
	"Product Title/Description",
	"Price",
	"Address",
	"Phone Number",
	"Email",
	"Company Profile URL",
	"Relevancy Score (%)",
}

// utf8BOM keeps Excel from mangling non-ASCII company names.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ToCSV writes the leads to path, sorted by descending relevancy score.
// An empty slice is not an error: it logs a warning and writes nothing,
// leaving no file behind.
func ToCSV(leads []models.Lead, path string) error {
	if len(leads) == 0 {
		slog.Warn("no leads to export")
		return nil
	}

	sorted := make([]models.Lead, len(leads))
	copy(sorted, leads)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RelevancyScore > sorted[j].RelevancyScore
	})

	f, err := os.Create(path)
	if err != nil {
		return models.NewStageError(models.ErrCodeExport, "failed to create output file", err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return models.NewStageError(models.ErrCodeExport, "failed to write BOM", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return models.NewStageError(models.ErrCodeExport, "failed to write header", err)
	}
	for i := range sorted {
		l := &sorted[i]
		row := []string{
			l.CompanyName,
			l.Description,
			l.Price,
			l.Address,
			l.PhoneNumber,
			l.Email,
			l.ProfileURL,
			strconv.Itoa(l.RelevancyScore),
		}
		if err := w.Write(row); err != nil {
			return models.NewStageError(models.ErrCodeExport, "failed to write row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return models.NewStageError(models.ErrCodeExport, "failed to flush CSV", err)
	}

	slog.Info("exported leads", "count", len(sorted), "path", path)
	return nil
}
