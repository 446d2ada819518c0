package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/unihome/unihome-api/internal/core/domain"
)

const auditCollection = "auth_events"

// AuditRepository persists the authentication audit trail.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

// Record inserts one auth event. The domain type carries its own bson tags.
func (r *AuditRepository) Record(ctx context.Context, event *domain.AuthEvent) error {
	if _, err := r.coll.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}
