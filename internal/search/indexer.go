package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"isdao/payment-portal/payment-portal-backend/internal/requests"
)

const indexName = "payment-requests"

// Indexer mirrors payment requests into Elasticsearch so list screens can
// search beneficiary, reference and descriptions with fuzziness the database
// ILIKE fallback cannot offer. Indexing is best-effort: the database stays
// the system of record.
type Indexer struct {
	client *elasticsearch.Client
	log    *zap.Logger
}

func NewIndexer(client *elasticsearch.Client, log *zap.Logger) *Indexer {
	return &Indexer{client: client, log: log}
}

type document struct {
	ReferenceNumber string    `json:"reference_number"`
	Status          string    `json:"status"`
	Beneficiary     string    `json:"beneficiary"`
	BankName        string    `json:"bank_name"`
	DescriptionEn   string    `json:"description_en"`
	DescriptionFr   string    `json:"description_fr"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	CreatedAt       time.Time `json:"created_at"`
}

// Index upserts the request document keyed by the request id.
func (ix *Indexer) Index(ctx context.Context, req *requests.PaymentRequest) {
	body, err := json.Marshal(document{
		ReferenceNumber: req.ReferenceNumber,
		Status:          string(req.Status),
		Beneficiary:     req.Beneficiary,
		BankName:        req.BankName,
		DescriptionEn:   req.DescriptionEn,
		DescriptionFr:   req.DescriptionFr,
		Amount:          req.Amount,
		Currency:        req.Currency,
		CreatedAt:       req.CreatedAt,
	})
	if err != nil {
		return
	}
	res, err := ix.client.Index(indexName, bytes.NewReader(body),
		ix.client.Index.WithContext(ctx),
		ix.client.Index.WithDocumentID(req.ID.String()),
	)
	if err != nil {
		ix.log.Warn("request not indexed", zap.String("reference", req.ReferenceNumber), zap.Error(err))
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		ix.log.Warn("request not indexed",
			zap.String("reference", req.ReferenceNumber),
			zap.String("status", res.Status()))
	}
}

// Search returns the ids of requests matching the term, best first.
func (ix *Indexer) Search(ctx context.Context, term string) ([]uuid.UUID, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     term,
				"fields":    []string{"reference_number^2", "beneficiary", "bank_name", "description_en", "description_fr"},
				"fuzziness": "AUTO",
			},
		},
		"size": 100,
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	res, err := ix.client.Search(
		ix.client.Search.WithContext(ctx),
		ix.client.Search.WithIndex(indexName),
		ix.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search failed: %s", res.Status())
	}

	var out struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(out.Hits.Hits))
	for _, hit := range out.Hits.Hits {
		if id, err := uuid.Parse(hit.ID); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
