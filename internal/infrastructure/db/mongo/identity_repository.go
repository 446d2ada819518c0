package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unihome/unihome-api/internal/core/domain"
)

const identityCollection = "identities"

// IdentityRepository is the networked identity directory.
type IdentityRepository struct {
	coll *mongo.Collection
}

func NewIdentityRepository(db *mongo.Database) *IdentityRepository {
	return &IdentityRepository{coll: db.Collection(identityCollection)}
}

type mongoIdentity struct {
	ID               string `bson:"_id"`
	Email            string `bson:"email"`
	Role             string `bson:"role"`
	FirstName        string `bson:"first_name"`
	LastName         string `bson:"last_name"`
	UniversityID     string `bson:"university_id,omitempty"`
	UniversityName   string `bson:"university_name,omitempty"`
	OrganizationName string `bson:"organization_name,omitempty"`
	PasswordHash     string `bson:"password_hash"`
}

// EnsureIndexes creates the unique email index.
func (r *IdentityRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	if err != nil {
		return fmt.Errorf("create identity indexes: %w", err)
	}
	return nil
}

// Create inserts an identity whose PasswordHash is already set. An empty ID
// is assigned a UUID.
func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}

	doc := toMongoIdentity(identity)
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert identity: %w", err)
	}
	return fromMongoIdentity(doc), nil
}

func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	var doc mongoIdentity
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return fromMongoIdentity(doc), nil
}

// Count returns the number of stored identities.
func (r *IdentityRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return n, nil
}

func toMongoIdentity(i *domain.Identity) mongoIdentity {
	return mongoIdentity{
		ID:               i.ID,
		Email:            i.Email,
		Role:             string(i.Role),
		FirstName:        i.FirstName,
		LastName:         i.LastName,
		UniversityID:     i.UniversityID,
		UniversityName:   i.UniversityName,
		OrganizationName: i.OrganizationName,
		PasswordHash:     i.PasswordHash,
	}
}

func fromMongoIdentity(doc mongoIdentity) *domain.Identity {
	return &domain.Identity{
		ID:               doc.ID,
		Email:            doc.Email,
		Role:             domain.Role(doc.Role),
		FirstName:        doc.FirstName,
		LastName:         doc.LastName,
		UniversityID:     doc.UniversityID,
		UniversityName:   doc.UniversityName,
		OrganizationName: doc.OrganizationName,
		PasswordHash:     doc.PasswordHash,
	}
}
