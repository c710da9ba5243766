package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carbonwallet/leads-service/internal/core/domain"
)

// indexSpecs lists the indexes each collection needs. The id indexes back the
// uniqueness of public identifiers; created_at backs the newest-first listing.
func indexSpecs() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		domain.LeadsCollection: {
			{
				Keys:    bson.D{{Key: domain.LeadFieldID, Value: 1}},
				Options: options.Index().SetName("uniq_lead_id").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: domain.LeadFieldCreatedAt, Value: -1}},
				Options: options.Index().SetName("created_at_desc"),
			},
		},
		domain.StatusChecksCollection: {
			{
				Keys:    bson.D{{Key: domain.StatusCheckFieldID, Value: 1}},
				Options: options.Index().SetName("uniq_status_check_id").SetUnique(true),
			},
		},
	}
}

// EnsureIndexes creates the indexes of every collection. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for name, models := range indexSpecs() {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", name, err)
		}
	}
	return nil
}
