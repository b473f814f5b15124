package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/freight_quoting_app/internal/core/domain"
	"github.com/SscSPs/freight_quoting_app/internal/models"
	"github.com/shopspring/decimal"
)

// ToModelQuote converts a QuoteRecord to its row shape, encoding the JSONB columns.
func ToModelQuote(d domain.QuoteRecord) (models.Quote, error) {
	lines := d.Lines
	if lines == nil {
		lines = []domain.LineRecord{}
	}
	rates, err := json.Marshal(d.Rates)
	if err != nil {
		return models.Quote{}, fmt.Errorf("encode rates of quote %s: %w", d.QuoteID, err)
	}
	linesJSON, err := json.Marshal(lines)
	if err != nil {
		return models.Quote{}, fmt.Errorf("encode lines of quote %s: %w", d.QuoteID, err)
	}
	totals, err := json.Marshal(d.Totals)
	if err != nil {
		return models.Quote{}, fmt.Errorf("encode totals of quote %s: %w", d.QuoteID, err)
	}
	approval, err := json.Marshal(d.Approval)
	if err != nil {
		return models.Quote{}, fmt.Errorf("encode approval of quote %s: %w", d.QuoteID, err)
	}

	return models.Quote{
		QuoteID:        d.QuoteID,
		Reference:      d.Reference,
		ClientName:     d.ClientName,
		Status:         string(d.Status),
		BaseCurrency:   d.BaseCurrency,
		TargetCurrency: d.TargetCurrency,
		Rates:          rates,
		Lines:          linesJSON,
		Totals:         totals,
		Approval:       approval,
		Version:        d.Version,
		AuditFields:    toModelAuditFields(d.AuditFields),
	}, nil
}

// ToDomainQuote decodes a quote row. Totals are decoded for read models only.
func ToDomainQuote(m models.Quote) (domain.QuoteRecord, error) {
	rec := domain.QuoteRecord{
		QuoteID:        m.QuoteID,
		Reference:      m.Reference,
		ClientName:     m.ClientName,
		Status:         domain.QuoteStatus(m.Status),
		BaseCurrency:   m.BaseCurrency,
		TargetCurrency: m.TargetCurrency,
		Rates:          map[string]decimal.Decimal{},
		Version:        m.Version,
		AuditFields:    toDomainAuditFields(m.AuditFields),
	}
	if err := decodeJSONB(m.Rates, &rec.Rates); err != nil {
		return domain.QuoteRecord{}, fmt.Errorf("decode rates of quote %s: %w", m.QuoteID, err)
	}
	if err := decodeJSONB(m.Lines, &rec.Lines); err != nil {
		return domain.QuoteRecord{}, fmt.Errorf("decode lines of quote %s: %w", m.QuoteID, err)
	}
	if err := decodeJSONB(m.Totals, &rec.Totals); err != nil {
		return domain.QuoteRecord{}, fmt.Errorf("decode totals of quote %s: %w", m.QuoteID, err)
	}
	if err := decodeJSONB(m.Approval, &rec.Approval); err != nil {
		return domain.QuoteRecord{}, fmt.Errorf("decode approval of quote %s: %w", m.QuoteID, err)
	}
	return rec, nil
}

func decodeJSONB(raw []byte, into any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, into)
}

// ToModelQuoteActivity converts an activity entry for storage.
func ToModelQuoteActivity(activityID, quoteID string, e domain.ActivityEntry) models.QuoteActivity {
	return models.QuoteActivity{
		ActivityID: activityID,
		QuoteID:    quoteID,
		Text:       e.Text,
		Category:   string(e.Category),
		Tone:       string(e.Tone),
		Actor:      e.Actor,
		CreatedAt:  e.At,
	}
}

// ToDomainActivityEntry converts a stored activity row.
func ToDomainActivityEntry(m models.QuoteActivity) domain.ActivityEntry {
	return domain.ActivityEntry{
		Text:     m.Text,
		Category: domain.ActivityCategory(m.Category),
		Tone:     domain.ActivityTone(m.Tone),
		Actor:    m.Actor,
		At:       m.CreatedAt,
	}
}
