package persistence

import (
	"context"
	"time"

	"reelshare/domain/model"
	"reelshare/domain/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type PushSubscriptionRepository struct {
	collection *mongo.Collection
}

func NewPushSubscriptionRepository(db *mongo.Database) repository.IPushSubscription {
	return &PushSubscriptionRepository{collection: db.Collection(pushSubscriptionCollection)}
}

// Upsert keys on the endpoint; a browser re-subscribing under another account moves the endpoint over.
func (r *PushSubscriptionRepository) Upsert(ctx context.Context, sub *model.PushSubscription) error {
	now := time.Now().UTC()
	sub.UpdatedAt = now
	update := bson.M{
		"$set": bson.M{
			"account":   sub.Account,
			"keys":      sub.Keys,
			"userAgent": sub.UserAgent,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	var stored model.PushSubscription
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"endpoint": sub.Endpoint}, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&stored)
	if err != nil {
		return err
	}
	sub.ID = stored.ID
	sub.CreatedAt = stored.CreatedAt
	return nil
}

func (r *PushSubscriptionRepository) DeleteForAccount(ctx context.Context, endpoint, accountID string) (bool, error) {
	oid, err := bson.ObjectIDFromHex(accountID)
	if err != nil {
		return false, repository.ErrNotFound
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"endpoint": endpoint, "account": oid})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *PushSubscriptionRepository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"endpoint": endpoint})
	return err
}

func (r *PushSubscriptionRepository) ListByAccounts(ctx context.Context, accountIDs []string) ([]*model.PushSubscription, error) {
	oids := objectIDs(accountIDs)
	if len(oids) == 0 {
		return nil, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"account": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	defer closeCursor(ctx, cursor)

	var subs []*model.PushSubscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}
