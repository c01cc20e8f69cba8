package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/colmedica/association-api/internal/core/domain"
	"github.com/colmedica/association-api/internal/core/ports"
)

const collectionNews = "news_items"

type NewsRepository struct {
	coll *mongo.Collection
}

func NewNewsRepository(db *mongo.Database) *NewsRepository {
	return &NewsRepository{coll: db.Collection(collectionNews)}
}

type newsDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Title      string             `bson:"title"`
	Excerpt    string             `bson:"excerpt,omitempty"`
	Content    string             `bson:"content,omitempty"`
	ImageURL   string             `bson:"image_url,omitempty"`
	Status     string             `bson:"status"`
	OrderIndex int                `bson:"order_index"`
	Category   string             `bson:"category"`
	AuthorID   string             `bson:"author_id,omitempty"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func (d *newsDoc) toDomain() *domain.NewsItem {
	return &domain.NewsItem{
		ID:         d.ID.Hex(),
		Title:      d.Title,
		Excerpt:    d.Excerpt,
		Content:    d.Content,
		ImageURL:   d.ImageURL,
		Status:     domain.NewsStatus(d.Status),
		OrderIndex: d.OrderIndex,
		Category:   d.Category,
		AuthorID:   d.AuthorID,
		CreatedAt:  d.CreatedAt,
	}
}

func (r *NewsRepository) Create(ctx context.Context, n *domain.NewsItem) (*domain.NewsItem, error) {
	doc := newsDoc{
		Title:      n.Title,
		Excerpt:    n.Excerpt,
		Content:    n.Content,
		ImageURL:   n.ImageURL,
		Status:     string(n.Status),
		OrderIndex: n.OrderIndex,
		Category:   n.Category,
		AuthorID:   n.AuthorID,
		CreatedAt:  n.CreatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert news item: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *NewsRepository) FindByID(ctx context.Context, id string) (*domain.NewsItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNewsNotFound
	}

	var doc newsDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNewsNotFound
		}
		return nil, fmt.Errorf("find news item: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *NewsRepository) List(ctx context.Context, f ports.ListNewsFilter) ([]*domain.NewsItem, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	sort := bson.D{{Key: "order_index", Value: 1}, {Key: "created_at", Value: -1}}
	return r.find(ctx, filter, sort)
}

func (r *NewsRepository) ListAll(ctx context.Context) ([]*domain.NewsItem, error) {
	return r.find(ctx, bson.M{}, bson.D{{Key: "created_at", Value: -1}})
}

func (r *NewsRepository) find(ctx context.Context, filter bson.M, sort bson.D) ([]*domain.NewsItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("list news items: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.NewsItem
	for cur.Next(ctx) {
		var doc newsDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode news item: %w", err)
		}
		out = append(out, doc.toDomain())
	}
	return out, cur.Err()
}

func (r *NewsRepository) SetStatus(ctx context.Context, id string, status domain.NewsStatus) (*domain.NewsItem, error) {
	return r.findOneAndSet(ctx, id, bson.M{"status": string(status)})
}

func (r *NewsRepository) Update(ctx context.Context, id string, u ports.NewsUpdate) (*domain.NewsItem, error) {
	set := bson.M{}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Excerpt != nil {
		set["excerpt"] = *u.Excerpt
	}
	if u.Content != nil {
		set["content"] = *u.Content
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.ImageURL != nil {
		set["image_url"] = *u.ImageURL
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}
	return r.findOneAndSet(ctx, id, set)
}

func (r *NewsRepository) findOneAndSet(ctx context.Context, id string, set bson.M) (*domain.NewsItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNewsNotFound
	}

	var doc newsDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNewsNotFound
		}
		return nil, fmt.Errorf("update news item: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *NewsRepository) FindByOrderIndex(ctx context.Context, index int, excludeID string) (*domain.NewsItem, error) {
	filter := bson.M{"order_index": index}
	if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
		filter["_id"] = bson.M{"$ne": oid}
	}

	var doc newsDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNewsNotFound
		}
		return nil, fmt.Errorf("find news item by order index: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *NewsRepository) SetOrderIndex(ctx context.Context, id string, index int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNewsNotFound
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"order_index": index}})
	if err != nil {
		return fmt.Errorf("set news order index: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNewsNotFound
	}
	return nil
}

// EnsureIndexes creates indexes on the news collection.
func (r *NewsRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "order_index", Value: 1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
