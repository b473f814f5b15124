package models

import "time"

// Quote is the row shape of the quotes table. Lines, rates, totals and the
// approval state are stored as JSONB documents.
type Quote struct {
	QuoteID        string `db:"quote_id"`
	Reference      string `db:"reference"`
	ClientName     string `db:"client_name"`
	Status         string `db:"status"`
	BaseCurrency   string `db:"base_currency"`
	TargetCurrency string `db:"target_currency"`
	Rates          []byte `db:"rates"`
	Lines          []byte `db:"lines"`
	Totals         []byte `db:"totals"`
	Approval       []byte `db:"approval"`
	Version        int    `db:"version"`
	AuditFields
}

// QuoteActivity is one row of the append-only quote_activity table.
type QuoteActivity struct {
	ActivityID string    `db:"activity_id"`
	QuoteID    string    `db:"quote_id"`
	Text       string    `db:"text"`
	Category   string    `db:"category"`
	Tone       string    `db:"tone"`
	Actor      string    `db:"actor"`
	CreatedAt  time.Time `db:"created_at"`
}
