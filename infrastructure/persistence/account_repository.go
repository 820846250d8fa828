package persistence

import (
	"context"
	"errors"

	"reelshare/domain/model"
	"reelshare/domain/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type AccountRepository struct {
	collection *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) repository.IAccount {
	return &AccountRepository{collection: db.Collection(accountCollection)}
}

func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	if account.ID.IsZero() {
		account.ID = bson.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, account)
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*model.Account, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *AccountRepository) ListIDsByRole(ctx context.Context, role model.Role) ([]string, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"role": role}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer closeCursor(ctx, cursor)

	var ids []string
	for cursor.Next(ctx) {
		var row struct {
			ID bson.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID.Hex())
	}
	return ids, cursor.Err()
}

// GetPublicByIDs resolves submitter ids in one round trip; unknown ids are absent from the map.
func (r *AccountRepository) GetPublicByIDs(ctx context.Context, ids []string) (map[string]model.AccountPublic, error) {
	out := make(map[string]model.AccountPublic, len(ids))
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return out, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}},
		options.Find().SetProjection(bson.M{"passwordHash": 0}))
	if err != nil {
		return nil, err
	}
	defer closeCursor(ctx, cursor)

	for cursor.Next(ctx) {
		var account model.Account
		if err := cursor.Decode(&account); err != nil {
			return nil, err
		}
		out[account.ID.Hex()] = account.Public()
	}
	return out, cursor.Err()
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*model.Account, error) {
	var account model.Account
	err := r.collection.FindOne(ctx, filter).Decode(&account)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}
