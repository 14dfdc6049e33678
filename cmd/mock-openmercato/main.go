// Command mock-openmercato serves a canned GET /api/customers/deals for local
// development. Point OPEN_MERCATO_API_BASE_URL at http://localhost:8081/api.
package main

import (
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"deals-dashboard/internal/models"
)

func sampleDeals() []models.Deal {
	company := json.RawMessage(`{"id":"c-1","displayName":"Acme Corp"}`)
	person := json.RawMessage(`{"id":"p-1","displayName":"Ada Lovelace"}`)
	id := json.RawMessage(`"00000000-0000-0000-0000-000000000001"`)

	return []models.Deal{
		{ID: "deal-1", Title: "Acme platform renewal", Description: "Three-year renewal with expanded seats",
			Status: "open", PipelineStage: "Negotiation", ValueAmount: models.NewNumber(48000), ValueCurrency: "USD",
			CreatedAt: "2024-01-08T09:00:00Z", UpdatedAt: "2024-03-18T14:30:00Z",
			Companies: []json.RawMessage{company}, People: []json.RawMessage{person, person, person}},
		{ID: "deal-2", Title: "Globex pilot", Status: "open", PipelineStage: "Discovery",
			ValueAmount: models.NewNumber(7500.5), ValueCurrency: "EUR", CreatedAt: "2024-02-11T10:00:00Z",
			CompanyIDs: []json.RawMessage{id}, PersonIDs: []json.RawMessage{id, id}},
		{ID: "deal-3", Title: "Initech support add-on", Status: "won",
			ValueAmount: models.NewNumber(1200), ValueCurrency: "GBP",
			CreatedAt: "2023-11-20T08:15:00Z", UpdatedAt: "2024-03-01T16:45:00Z"},
		{ID: "deal-4", Title: "Umbrella data migration", Description: "Awaiting budget approval",
			Status: "lost", PipelineStage: "Closed", CreatedAt: "2023-10-02T12:00:00Z", UpdatedAt: "2024-01-15T09:20:00Z",
			Companies: []json.RawMessage{company, company}},
	}
}

func main() {
	deals := sampleDeals()
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/customers/deals", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(models.ErrorBody{Error: "Missing or invalid API key"})
			return
		}

		page := intParam(r, "page", 1)
		pageSize := intParam(r, "pageSize", 10)
		fmt.Printf("Deals request page=%d pageSize=%d sort=%s %s\n",
			page, pageSize, r.URL.Query().Get("sortField"), r.URL.Query().Get("sortDir"))

		items := sortDeals(deals, r.URL.Query().Get("sortField"), r.URL.Query().Get("sortDir"))
		start := (page - 1) * pageSize
		if start > len(items) {
			start = len(items)
		}
		end := start + pageSize
		if end > len(items) {
			end = len(items)
		}

		resp := models.DealsResponse{
			Items:      items[start:end],
			Total:      len(items),
			TotalPages: (len(items) + pageSize - 1) / pageSize,
			Page:       page,
			PageSize:   pageSize,
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	log.Println("Mock Open Mercato listening on :8081")
	if err := http.ListenAndServe(":8081", mux); err != nil {
		log.Fatal(err)
	}
}

func intParam(r *http.Request, name string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func sortDeals(deals []models.Deal, field, dir string) []models.Deal {
	out := append([]models.Deal(nil), deals...)
	key := func(d models.Deal) string {
		switch field {
		case "title":
			return strings.ToLower(d.Title)
		case "created_at":
			return d.CreatedAt
		default:
			if d.UpdatedAt != "" {
				return d.UpdatedAt
			}
			return d.CreatedAt
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if dir == "asc" {
			return key(out[i]) < key(out[j])
		}
		return key(out[i]) > key(out[j])
	})
	return out
}
