// Package docstore persists a conversation's canonical message sequence and
// reads back what was previously persisted for reconciliation (spec
// section 4.7). Two implementations are provided: a MongoDB-backed one for
// the server mode, and a filesystem one for --local runs.
package docstore

import (
	"context"

	"github.com/tattle-made/whatsapp-scraper/internal/model"
)

// DocStore is the persistence collaborator the pipeline reconciles against.
type DocStore interface {
	// Existing returns every previously persisted message for key, sorted
	// by Order. An empty, nil-error result means the conversation has
	// never been persisted before.
	Existing(ctx context.Context, key model.ConversationKey) ([]model.Message, error)
	// Persist stores msgs for the conversation. MongoStore appends them to
	// the stored sequence (the pipeline passes the reconciler's tail);
	// LocalStore replaces its stored file with them (the pipeline passes the
	// full reconciled sequence).
	Persist(ctx context.Context, key model.ConversationKey, msgs []model.Message) error
}
