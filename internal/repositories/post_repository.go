package repositories

import (
	"context"
	"time"

	"github.com/anonto42/effisocial/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
	DeletePostsByGroup(ctx context.Context, groupID uint) (int64, error)
	CountPostsByGroup(ctx context.Context, groupID uint) (int64, error)
	ToggleLike(ctx context.Context, id string, userID uint) (*models.Post, error)
	RemoveLike(ctx context.Context, id string, userID uint) (*models.Post, error)
	AddComment(ctx context.Context, id string, comment *models.Comment) (*models.Post, error)
	UpdateComment(ctx context.Context, id, commentID, content string) (*models.Post, error)
	DeleteComment(ctx context.Context, id, commentID string) (*models.Post, error)
}

// PostStatsRepository exposes the aggregations behind the statistics pages
type PostStatsRepository interface {
	CountPosts(ctx context.Context) (int64, error)
	CountPostsByAuthor(ctx context.Context, authorID uint) (int64, error)
	CountByMediaType(ctx context.Context) (map[string]int64, error)
	PostsPerDay(ctx context.Context, since time.Time) ([]models.DailyCount, error)
	LikesReceived(ctx context.Context, authorID uint) (int64, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the indexes the listing filters rely on.
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "like_count", Value: -1}}},
	})
	return err
}

func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Likes == nil {
		post.Likes = []uint{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var post models.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post); err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// postFilter translates a PostFilter into a Mongo query document.
func postFilter(f models.PostFilter) bson.M {
	query := bson.M{}
	if f.GroupID != nil {
		query["group_id"] = *f.GroupID
	} else if f.VisibleGroups != nil {
		query["$or"] = bson.A{
			bson.M{"group_id": bson.M{"$exists": false}},
			bson.M{"group_id": bson.M{"$in": f.VisibleGroups}},
		}
	}
	if f.AuthorID != nil {
		query["author_id"] = *f.AuthorID
	}
	if f.MediaType != nil {
		if *f.MediaType == models.MediaNone {
			query["media_type"] = bson.M{"$exists": false}
		} else {
			query["media_type"] = *f.MediaType
		}
	}
	if f.StartDate != nil || f.EndDate != nil {
		created := bson.M{}
		if f.StartDate != nil {
			created["$gte"] = *f.StartDate
		}
		if f.EndDate != nil {
			created["$lte"] = *f.EndDate
		}
		query["created_at"] = created
	}
	return query
}

func (r *MongoPostRepository) ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	var sort bson.D
	switch filter.Sort {
	case models.SortOldest:
		sort = bson.D{{Key: "created_at", Value: 1}}
	case models.SortPopular:
		sort = bson.D{{Key: "like_count", Value: -1}, {Key: "created_at", Value: -1}}
	default:
		sort = bson.D{{Key: "created_at", Value: -1}}
	}

	findOptions := options.Find().SetSort(sort).SetSkip(filter.Skip)
	if filter.Limit > 0 {
		findOptions.SetLimit(filter.Limit)
	}
	cursor, err := r.collection.Find(ctx, postFilter(filter), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *MongoPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"content":    post.Content,
		"updated_at": post.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if post.Media == "" {
		update["$unset"] = bson.M{"media": "", "media_type": ""}
	} else {
		set["media"] = post.Media
		set["media_type"] = post.MediaType
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoPostRepository) DeletePostsByGroup(ctx context.Context, groupID uint) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoPostRepository) CountPostsByGroup(ctx context.Context, groupID uint) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"group_id": groupID})
}

// ToggleLike adds the user's like when absent and removes it otherwise. Each
// branch is a single conditional update so concurrent toggles never double
// count.
func (r *MongoPostRepository) ToggleLike(ctx context.Context, id string, userID uint) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID, "likes": bson.M{"$ne": userID}},
		bson.M{"$push": bson.M{"likes": userID}, "$inc": bson.M{"like_count": 1}},
		after,
	).Decode(&post)
	if err == nil {
		return &post, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}
	return r.RemoveLike(ctx, id, userID)
}

// RemoveLike pulls the user's like if present and returns the post.
func (r *MongoPostRepository) RemoveLike(ctx context.Context, id string, userID uint) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID, "likes": userID},
		bson.M{"$pull": bson.M{"likes": userID}, "$inc": bson.M{"like_count": -1}},
		after,
	).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return r.GetPostByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *MongoPostRepository) AddComment(ctx context.Context, id string, comment *models.Comment) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	comment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	return r.updateAndFetch(ctx, bson.M{"_id": objID}, bson.M{"$push": bson.M{"comments": comment}})
}

func (r *MongoPostRepository) UpdateComment(ctx context.Context, id, commentID, content string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	cID, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return nil, ErrInvalidID
	}

	return r.updateAndFetch(ctx,
		bson.M{"_id": objID, "comments._id": cID},
		bson.M{"$set": bson.M{"comments.$.content": content, "comments.$.updated_at": time.Now().UTC()}},
	)
}

func (r *MongoPostRepository) DeleteComment(ctx context.Context, id, commentID string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	cID, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return nil, ErrInvalidID
	}

	return r.updateAndFetch(ctx,
		bson.M{"_id": objID, "comments._id": cID},
		bson.M{"$pull": bson.M{"comments": bson.M{"_id": cID}}},
	)
}

func (r *MongoPostRepository) updateAndFetch(ctx context.Context, filter, update bson.M) (*models.Post, error) {
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, after).Decode(&post); err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (r *MongoPostRepository) CountPosts(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *MongoPostRepository) CountPostsByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"author_id": authorID})
}

func (r *MongoPostRepository) CountByMediaType(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$media_type", "none"}}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		MediaType string `bson:"_id"`
		Count     int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.MediaType] = row.Count
	}
	return counts, nil
}

func (r *MongoPostRepository) PostsPerDay(ctx context.Context, since time.Time) ([]models.DailyCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "created_at", Value: bson.D{{Key: "$gte", Value: since}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m-%d"},
				{Key: "date", Value: "$created_at"},
			}}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	days := []models.DailyCount{}
	if err := cursor.All(ctx, &days); err != nil {
		return nil, err
	}
	return days, nil
}

func (r *MongoPostRepository) LikesReceived(ctx context.Context, authorID uint) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "author_id", Value: authorID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$like_count"}}},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

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
