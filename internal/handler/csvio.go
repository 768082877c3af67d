package handler

import (
	"encoding/csv"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/taskpro/storefront/internal/domain/catalog"
)

var csvHeader = []string{"name", "price", "category", "subcategory", "description", "image_path", "rating"}

// ownerExportCSV streams the owner's products as CSV. When the client
// accepts gzip, the body is compressed with pgzip.
func (h *Handler) ownerExportCSV(w http.ResponseWriter, r *http.Request) {
	oc, err := h.catalog.OwnerByEmail(r.Context(), h.ownerEmail(r))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="products.csv"`)

	var out io.Writer = w
	if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		w.Header().Set("Content-Encoding", "gzip")
		gz := pgzip.NewWriter(w)
		defer func() {
			_ = gz.Close()
		}()
		out = gz
	}

	cw := csv.NewWriter(out)
	_ = cw.Write(csvHeader)
	for _, p := range oc.Products {
		_ = cw.Write([]string{
			p.Name,
			p.Price.String(),
			p.Category,
			p.Subcategory,
			p.Description,
			p.ImagePath,
			strconv.Itoa(p.Rating),
		})
	}
	cw.Flush()
}

type importResponse struct {
	Imported int      `json:"imported"`
	Skipped  []string `json:"skipped,omitempty"`
}

// ownerImportCSV bulk-adds products from an uploaded CSV, transparently
// decompressing gzip bodies. Rows that fail validation or collide with an
// existing product are reported back, not fatal.
func (h *Handler) ownerImportCSV(w http.ResponseWriter, r *http.Request) {
	var body io.Reader = http.MaxBytesReader(w, r.Body, 8<<20)
	if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
		gz, err := pgzip.NewReader(body)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid gzip body")
			return
		}
		defer func() {
			_ = gz.Close()
		}()
		body = gz
	}

	cr := csv.NewReader(body)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil || !equalHeader(header) {
		respondError(w, http.StatusBadRequest, "csv header must be: "+strings.Join(csvHeader, ","))
		return
	}

	owner := h.ownerEmail(r)
	resp := importResponse{}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			respondError(w, http.StatusBadRequest, "malformed csv: "+err.Error())
			return
		}

		p, err := productFromRecord(record)
		if err != nil {
			resp.Skipped = append(resp.Skipped, record[0]+": "+err.Error())
			continue
		}
		if err := h.catalog.AddProduct(r.Context(), owner, p); err != nil {
			resp.Skipped = append(resp.Skipped, p.Name+": "+err.Error())
			continue
		}
		resp.Imported++
	}

	respondJSON(w, http.StatusOK, resp)
}

func equalHeader(got []string) bool {
	if len(got) != len(csvHeader) {
		return false
	}
	for i, f := range got {
		if strings.TrimSpace(strings.ToLower(f)) != csvHeader[i] {
			return false
		}
	}
	return true
}

func productFromRecord(record []string) (catalog.Product, error) {
	var p catalog.Product

	price, err := decimal.NewFromString(strings.TrimSpace(record[1]))
	if err != nil {
		return p, errors.New("invalid price")
	}
	if price.IsNegative() {
		return p, errors.New("negative price")
	}

	rating := 0
	if record[6] != "" {
		rating, err = strconv.Atoi(strings.TrimSpace(record[6]))
		if err != nil || rating < 0 || rating > 5 {
			return p, errors.New("invalid rating")
		}
	}

	p = catalog.Product{
		Name:        strings.TrimSpace(record[0]),
		Price:       price,
		Category:    strings.TrimSpace(record[2]),
		Subcategory: strings.TrimSpace(record[3]),
		Description: record[4],
		ImagePath:   record[5],
		Rating:      rating,
	}
	if p.Name == "" {
		return p, errors.New("name required")
	}
	if p.Category == "" {
		return p, errors.New("category required")
	}
	return p, nil
}
