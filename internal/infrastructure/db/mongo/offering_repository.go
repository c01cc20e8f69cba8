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

const collectionOfferings = "offerings"

type OfferingRepository struct {
	coll *mongo.Collection
}

func NewOfferingRepository(db *mongo.Database) *OfferingRepository {
	return &OfferingRepository{coll: db.Collection(collectionOfferings)}
}

type offeringDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Title         string             `bson:"title"`
	Description   string             `bson:"description,omitempty"`
	Content       string             `bson:"content,omitempty"`
	Instructor    string             `bson:"instructor,omitempty"`
	DurationHours int                `bson:"duration_hours,omitempty"`
	Format        string             `bson:"format"`
	Location      string             `bson:"location,omitempty"`

	MaxSeats *int64 `bson:"max_seats,omitempty"`

	PriceMember    float64 `bson:"price_member"`
	PriceNonMember float64 `bson:"price_non_member"`
	PriceYoung     float64 `bson:"price_young"`
	PriceFree      float64 `bson:"price_free"`

	StartDate            *time.Time `bson:"start_date,omitempty"`
	EndDate              *time.Time `bson:"end_date,omitempty"`
	RegistrationDeadline *time.Time `bson:"registration_deadline,omitempty"`

	IsActive  bool      `bson:"is_active"`
	ImageURL  string    `bson:"image_url,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d *offeringDoc) toDomain() *domain.Offering {
	return &domain.Offering{
		ID:                   d.ID.Hex(),
		Title:                d.Title,
		Description:          d.Description,
		Content:              d.Content,
		Instructor:           d.Instructor,
		DurationHours:        d.DurationHours,
		Format:               domain.OfferingFormat(d.Format),
		Location:             d.Location,
		MaxSeats:             d.MaxSeats,
		PriceMember:          d.PriceMember,
		PriceNonMember:       d.PriceNonMember,
		PriceYoung:           d.PriceYoung,
		PriceFree:            d.PriceFree,
		StartDate:            d.StartDate,
		EndDate:              d.EndDate,
		RegistrationDeadline: d.RegistrationDeadline,
		IsActive:             d.IsActive,
		ImageURL:             d.ImageURL,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

func (r *OfferingRepository) Create(ctx context.Context, o *domain.Offering) (*domain.Offering, error) {
	doc := offeringDoc{
		Title:                o.Title,
		Description:          o.Description,
		Content:              o.Content,
		Instructor:           o.Instructor,
		DurationHours:        o.DurationHours,
		Format:               string(o.Format),
		Location:             o.Location,
		MaxSeats:             o.MaxSeats,
		PriceMember:          o.PriceMember,
		PriceNonMember:       o.PriceNonMember,
		PriceYoung:           o.PriceYoung,
		PriceFree:            o.PriceFree,
		StartDate:            o.StartDate,
		EndDate:              o.EndDate,
		RegistrationDeadline: o.RegistrationDeadline,
		IsActive:             o.IsActive,
		ImageURL:             o.ImageURL,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert offering: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *OfferingRepository) FindByID(ctx context.Context, id string) (*domain.Offering, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrOfferingNotFound
	}

	var doc offeringDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOfferingNotFound
		}
		return nil, fmt.Errorf("find offering: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns upcoming active offerings (soonest first, undated ones
// included) or, with Past set, offerings already started (newest first).
func (r *OfferingRepository) List(ctx context.Context, f ports.ListOfferingsFilter) ([]*domain.Offering, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Format != "" {
		filter["format"] = string(f.Format)
	}

	sort := bson.D{{Key: "start_date", Value: 1}}
	if f.Past {
		filter["start_date"] = bson.M{"$lt": f.Now}
		sort = bson.D{{Key: "start_date", Value: -1}}
	} else {
		filter["is_active"] = true
		filter["$or"] = bson.A{
			bson.M{"start_date": bson.M{"$gte": f.Now}},
			bson.M{"start_date": nil},
		}
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Offering
	for cur.Next(ctx) {
		var doc offeringDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode offering: %w", err)
		}
		out = append(out, doc.toDomain())
	}
	return out, cur.Err()
}

func (r *OfferingRepository) Update(ctx context.Context, id string, u ports.OfferingUpdate) (*domain.Offering, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrOfferingNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Content != nil {
		set["content"] = *u.Content
	}
	if u.Instructor != nil {
		set["instructor"] = *u.Instructor
	}
	if u.DurationHours != nil {
		set["duration_hours"] = *u.DurationHours
	}
	if u.Format != nil {
		set["format"] = string(*u.Format)
	}
	if u.Location != nil {
		set["location"] = *u.Location
	}
	if u.ClearMaxSeats {
		unset["max_seats"] = ""
	} else if u.MaxSeats != nil {
		set["max_seats"] = *u.MaxSeats
	}
	if u.PriceMember != nil {
		set["price_member"] = *u.PriceMember
	}
	if u.PriceNonMember != nil {
		set["price_non_member"] = *u.PriceNonMember
	}
	if u.PriceYoung != nil {
		set["price_young"] = *u.PriceYoung
	}
	if u.PriceFree != nil {
		set["price_free"] = *u.PriceFree
	}
	if u.StartDate != nil {
		set["start_date"] = *u.StartDate
	}
	if u.EndDate != nil {
		set["end_date"] = *u.EndDate
	}
	if u.RegistrationDeadline != nil {
		set["registration_deadline"] = *u.RegistrationDeadline
	}
	if u.IsActive != nil {
		set["is_active"] = *u.IsActive
	}
	if u.ImageURL != nil {
		set["image_url"] = *u.ImageURL
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	var doc offeringDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOfferingNotFound
		}
		return nil, fmt.Errorf("update offering: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *OfferingRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrOfferingNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete offering: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrOfferingNotFound
	}
	return nil
}

// EnsureIndexes creates indexes on the offerings collection.
func (r *OfferingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "start_date", Value: 1}}},
		{Keys: bson.D{{Key: "format", Value: 1}, {Key: "is_active", Value: 1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
