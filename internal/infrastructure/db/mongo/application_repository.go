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

const collectionApplications = "membership_applications"

type ApplicationRepository struct {
	coll *mongo.Collection
}

func NewApplicationRepository(db *mongo.Database) *ApplicationRepository {
	return &ApplicationRepository{coll: db.Collection(collectionApplications)}
}

type attachmentDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	FileRef   string             `bson:"file_ref"`
	CreatedAt time.Time          `bson:"created_at"`
}

type applicationDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Name            string             `bson:"name"`
	Email           string             `bson:"email"`
	Website         string             `bson:"website,omitempty"`
	City            string             `bson:"city,omitempty"`
	Country         string             `bson:"country,omitempty"`
	Whatsapp        string             `bson:"whatsapp,omitempty"`
	Phone           string             `bson:"phone,omitempty"`
	Specialization  string             `bson:"specialization,omitempty"`
	University      string             `bson:"university,omitempty"`
	CurrentHospital string             `bson:"current_hospital,omitempty"`
	CurrentPosition string             `bson:"current_position,omitempty"`
	TeachingDegree  string             `bson:"teaching_degree,omitempty"`
	Motivation      string             `bson:"motivation,omitempty"`
	ExperienceYears int                `bson:"experience_years,omitempty"`
	MembershipType  string             `bson:"membership_type"`
	Status          string             `bson:"status"`
	ResolutionNote  string             `bson:"resolution_note,omitempty"`
	DecidedAt       *time.Time         `bson:"decided_at,omitempty"`
	CreatedAt       time.Time          `bson:"created_at"`
	Attachments     []attachmentDoc    `bson:"attachments,omitempty"`
}

func (d *applicationDoc) toDomain() *domain.Application {
	app := &domain.Application{
		ID:              d.ID.Hex(),
		Name:            d.Name,
		Email:           d.Email,
		Website:         d.Website,
		City:            d.City,
		Country:         d.Country,
		Whatsapp:        d.Whatsapp,
		Phone:           d.Phone,
		Specialization:  d.Specialization,
		University:      d.University,
		CurrentHospital: d.CurrentHospital,
		CurrentPosition: d.CurrentPosition,
		TeachingDegree:  d.TeachingDegree,
		Motivation:      d.Motivation,
		ExperienceYears: d.ExperienceYears,
		MembershipType:  domain.MembershipType(d.MembershipType),
		Status:          domain.ApplicationStatus(d.Status),
		ResolutionNote:  d.ResolutionNote,
		DecidedAt:       d.DecidedAt,
		CreatedAt:       d.CreatedAt,
	}
	for _, a := range d.Attachments {
		app.Attachments = append(app.Attachments, domain.Attachment{
			ID:        a.ID.Hex(),
			FileRef:   a.FileRef,
			CreatedAt: a.CreatedAt,
		})
	}
	return app
}

func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) (*domain.Application, error) {
	doc := applicationDoc{
		Name:            app.Name,
		Email:           app.Email,
		Website:         app.Website,
		City:            app.City,
		Country:         app.Country,
		Whatsapp:        app.Whatsapp,
		Phone:           app.Phone,
		Specialization:  app.Specialization,
		University:      app.University,
		CurrentHospital: app.CurrentHospital,
		CurrentPosition: app.CurrentPosition,
		TeachingDegree:  app.TeachingDegree,
		Motivation:      app.Motivation,
		ExperienceYears: app.ExperienceYears,
		MembershipType:  string(app.MembershipType),
		Status:          string(app.Status),
		CreatedAt:       app.CreatedAt,
	}
	for _, a := range app.Attachments {
		doc.Attachments = append(doc.Attachments, attachmentDoc{
			ID:        primitive.NewObjectID(),
			FileRef:   a.FileRef,
			CreatedAt: a.CreatedAt,
		})
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert application: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*domain.Application, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrApplicationNotFound
	}

	var doc applicationDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ApplicationRepository) List(ctx context.Context) ([]*domain.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Application
	for cur.Next(ctx) {
		var doc applicationDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode application: %w", err)
		}
		out = append(out, doc.toDomain())
	}
	return out, cur.Err()
}

// Transition applies a decision only when the application still holds the
// expected source status. A write that matches nothing means another
// decision got there first.
func (r *ApplicationRepository) Transition(ctx context.Context, id string, from domain.ApplicationStatus, d ports.ApplicationDecision) (*domain.Application, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrApplicationNotFound
	}

	var doc applicationDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "status": string(from)},
		bson.M{"$set": bson.M{
			"status":          string(d.Status),
			"membership_type": string(d.MembershipType),
			"resolution_note": d.ResolutionNote,
			"decided_at":      d.DecidedAt,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrApplicationResolved
		}
		return nil, fmt.Errorf("transition application: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates indexes on the applications collection.
func (r *ApplicationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "email", Value: 1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
