package persistence

import (
	"context"
	"errors"
	"time"

	"reelshare/domain/dto"
	"reelshare/domain/model"
	"reelshare/domain/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type ReelRepository struct {
	collection *mongo.Collection
}

func NewReelRepository(db *mongo.Database) repository.IReel {
	return &ReelRepository{collection: db.Collection(reelCollection)}
}

func (r *ReelRepository) Create(ctx context.Context, reel *model.Reel) error {
	if reel.ID.IsZero() {
		reel.ID = bson.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, reel)
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *ReelRepository) GetByID(ctx context.Context, id string) (*model.Reel, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByShortcode looks the shortcode up for one submitter, or across all
// submitters when submittedBy is empty.
func (r *ReelRepository) FindByShortcode(ctx context.Context, shortcode string, submittedBy string) (*model.Reel, error) {
	filter := bson.M{"shortcode": shortcode}
	if submittedBy != "" {
		oid, err := bson.ObjectIDFromHex(submittedBy)
		if err != nil {
			return nil, repository.ErrNotFound
		}
		filter["submittedBy"] = oid
	}
	return r.findOne(ctx, filter)
}

func (r *ReelRepository) List(ctx context.Context, q dto.ReelListQuery) ([]*model.Reel, int64, error) {
	filter := bson.M{}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.SubmittedBy != "" {
		oid, err := bson.ObjectIDFromHex(q.SubmittedBy)
		if err != nil {
			return []*model.Reel{}, 0, nil
		}
		filter["submittedBy"] = oid
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	reels, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return reels, total, nil
}

// Complete moves a pending reel to success when payload is set, or to failed otherwise.
func (r *ReelRepository) Complete(ctx context.Context, id string, payload *model.ReelPayload, failure *model.FailureReason) (*model.Reel, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	filter, update := completion(oid, payload, failure, time.Now().UTC())
	return r.transition(ctx, filter, update)
}

// completion matches only a pending reel, so a reel reaches a terminal state once.
func completion(oid bson.ObjectID, payload *model.ReelPayload, failure *model.FailureReason, now time.Time) (bson.M, bson.M) {
	set := bson.M{"updatedAt": now, "resolvedAt": now}
	unset := bson.M{}
	if payload != nil {
		set["status"] = model.ReelStatusSuccess
		set["payload"] = payload
		unset["failure"] = ""
	} else {
		if failure == nil {
			failure = &model.FailureReason{Category: model.FailureInternal, Message: "resolution produced no result"}
		}
		set["status"] = model.ReelStatusFailed
		set["failure"] = failure
		unset["payload"] = ""
	}
	return bson.M{"_id": oid, "status": model.ReelStatusPending}, bson.M{"$set": set, "$unset": unset}
}

func (r *ReelRepository) ResetForRetry(ctx context.Context, id string) (*model.Reel, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	filter, update := retryReset(oid, time.Now().UTC())
	return r.transition(ctx, filter, update)
}

func retryReset(oid bson.ObjectID, now time.Time) (bson.M, bson.M) {
	return bson.M{"_id": oid, "status": model.ReelStatusFailed}, bson.M{
		"$set":   bson.M{"status": model.ReelStatusPending, "updatedAt": now},
		"$unset": bson.M{"failure": "", "payload": "", "resolvedAt": ""},
	}
}

func (r *ReelRepository) MarkAttempt(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}
	_, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "status": model.ReelStatusPending},
		bson.M{"$inc": bson.M{"attempts": 1}, "$set": bson.M{"updatedAt": time.Now().UTC()}},
	)
	return err
}

func (r *ReelRepository) IncrementViews(ctx context.Context, id string) (*model.Reel, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	reel, err := r.transition(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"viewCount": 1}})
	if errors.Is(err, repository.ErrStaleReel) {
		return nil, repository.ErrNotFound
	}
	return reel, err
}

func (r *ReelRepository) Delete(ctx context.Context, id string, submittedBy string) (bool, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	owner, err := bson.ObjectIDFromHex(submittedBy)
	if err != nil {
		return false, nil
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid, "submittedBy": owner})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *ReelRepository) CountByStatus(ctx context.Context, submittedBy string) (model.ReelStats, error) {
	var stats model.ReelStats
	match := bson.M{}
	if submittedBy != "" {
		oid, err := bson.ObjectIDFromHex(submittedBy)
		if err != nil {
			return stats, nil
		}
		match["submittedBy"] = oid
	}
	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$status"}, {Key: "count", Value: bson.M{"$sum": 1}}}}},
	})
	if err != nil {
		return stats, err
	}
	defer closeCursor(ctx, cursor)

	for cursor.Next(ctx) {
		var row struct {
			Status model.ReelStatus `bson:"_id"`
			Count  int64            `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return stats, err
		}
		switch row.Status {
		case model.ReelStatusSuccess:
			stats.Success = row.Count
		case model.ReelStatusPending:
			stats.Pending = row.Count
		case model.ReelStatusFailed:
			stats.Failed = row.Count
		}
		stats.Total += row.Count
	}
	return stats, cursor.Err()
}

func (r *ReelRepository) SumViews(ctx context.Context, submittedBy string) (int64, error) {
	oid, err := bson.ObjectIDFromHex(submittedBy)
	if err != nil {
		return 0, nil
	}
	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"submittedBy": oid}}},
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: nil}, {Key: "total", Value: bson.M{"$sum": "$viewCount"}}}}},
	})
	if err != nil {
		return 0, err
	}
	defer closeCursor(ctx, cursor)

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func (r *ReelRepository) CountSince(ctx context.Context, status model.ReelStatus, since time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"status": status, "createdAt": bson.M{"$gte": since}})
}

func (r *ReelRepository) CountSubmitters(ctx context.Context) (int64, error) {
	var ids []bson.ObjectID
	if err := r.collection.Distinct(ctx, "submittedBy", bson.M{}).Decode(&ids); err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

func (r *ReelRepository) FindStalePending(ctx context.Context, olderThan time.Time, limit int64) ([]*model.Reel, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return r.find(ctx, bson.M{"status": model.ReelStatusPending, "updatedAt": bson.M{"$lt": olderThan}}, opts)
}

func (r *ReelRepository) findOne(ctx context.Context, filter bson.M) (*model.Reel, error) {
	var reel model.Reel
	err := r.collection.FindOne(ctx, filter).Decode(&reel)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reel, nil
}

func (r *ReelRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]*model.Reel, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer closeCursor(ctx, cursor)

	reels := make([]*model.Reel, 0)
	for cursor.Next(ctx) {
		var reel model.Reel
		if err := cursor.Decode(&reel); err != nil {
			return nil, err
		}
		reels = append(reels, &reel)
	}
	return reels, cursor.Err()
}

// transition applies update only if filter still matches and returns the new document.
func (r *ReelRepository) transition(ctx context.Context, filter bson.M, update bson.M) (*model.Reel, error) {
	var reel model.Reel
	err := r.collection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&reel)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrStaleReel
	}
	if err != nil {
		return nil, err
	}
	return &reel, nil
}
