package persistence

import (
	"context"
	"time"

	"reelshare/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	reelCollection             = "reels"
	accountCollection          = "accounts"
	pushSubscriptionCollection = "push_subscriptions"

	globalShortcodeIndex    = "shortcode_unique"
	submitterShortcodeIndex = "shortcode_submitter_unique"
)

func NewMongoDb(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetConnectTimeout(10 * time.Second))
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// EnsureIndexes creates the indexes the repositories rely on. With the
// "submitter" duplicate policy a shortcode is unique per submitter, otherwise
// it is unique across the whole collection. The unique index of the other
// policy is dropped so the policy can be switched on an existing database.
func EnsureIndexes(ctx context.Context, db *mongo.Database, perSubmitter bool) error {
	shortcodeKeys, name, stale := shortcodeIndex(perSubmitter)
	reels := db.Collection(reelCollection)
	if err := dropIndexIfPresent(ctx, reels, stale); err != nil {
		return err
	}
	if _, err := reels.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: shortcodeKeys, Options: options.Index().SetUnique(true).SetName(name)},
		{Keys: bson.D{{Key: "submittedBy", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
	}); err != nil {
		return err
	}
	if _, err := db.Collection(accountCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}
	if _, err := db.Collection(pushSubscriptionCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "endpoint", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "account", Value: 1}}},
	}); err != nil {
		return err
	}
	logger.GetLogger().WithField("perSubmitter", perSubmitter).Info("MongoDB indexes ensured")
	return nil
}

// shortcodeIndex returns the unique index keys and name for a duplicate
// policy, plus the name of the index the other policy uses.
func shortcodeIndex(perSubmitter bool) (bson.D, string, string) {
	if perSubmitter {
		return bson.D{{Key: "shortcode", Value: 1}, {Key: "submittedBy", Value: 1}}, submitterShortcodeIndex, globalShortcodeIndex
	}
	return bson.D{{Key: "shortcode", Value: 1}}, globalShortcodeIndex, submitterShortcodeIndex
}

func dropIndexIfPresent(ctx context.Context, coll *mongo.Collection, name string) error {
	specs, err := coll.Indexes().ListSpecifications(ctx)
	if err != nil {
		return err
	}
	for _, spec := range specs {
		if spec.Name != name {
			continue
		}
		if err := coll.Indexes().DropOne(ctx, name); err != nil {
			return err
		}
		logger.GetLogger().WithField("index", name).Warn("Dropped unique index of the previous duplicate policy")
	}
	return nil
}

func closeCursor(ctx context.Context, cursor *mongo.Cursor) {
	if err := cursor.Close(ctx); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while closing cursor")
	}
}

func objectIDs(ids []string) []bson.ObjectID {
	out := make([]bson.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := bson.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		out = append(out, oid)
	}
	return out
}
