package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/prasertw/voltbook/internal/domain/models"
	"github.com/prasertw/voltbook/internal/repository"
)

// UserRepository is the MongoDB-backed UserStore over the whitelist
// collection. Document ids are provider uids, or email addresses for
// accounts seeded before their first login.
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository builds the repository over the users collection.
func NewUserRepository(c *Client) *UserRepository {
	return &UserRepository{coll: c.collection(usersCollection)}
}

type userDoc struct {
	DocID string `bson:"_id"`
	Email string `bson:"email"`
	Name  string `bson:"name,omitempty"`
	Role  string `bson:"role,omitempty"`
}

func (d userDoc) toModel() models.UserAccount {
	return models.UserAccount{ID: d.DocID, Email: d.Email, Name: d.Name, Role: d.Role}
}

// GetByID fetches one whitelist entry by document id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.UserAccount, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, storeErr("get user", err)
	}

	account := doc.toModel()
	return &account, nil
}

// List returns every whitelisted account.
func (r *UserRepository) List(ctx context.Context) ([]models.UserAccount, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, storeErr("query users", err)
	}
	defer cursor.Close(ctx)

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storeErr("decode users", err)
	}

	accounts := make([]models.UserAccount, 0, len(docs))
	for _, doc := range docs {
		accounts = append(accounts, doc.toModel())
	}
	return accounts, nil
}

// UpdateRole sets the role field of one whitelist entry.
func (r *UserRepository) UpdateRole(ctx context.Context, id string, role string) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return storeErr("update user role", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
