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
)

const collectionEnrollments = "enrollments"

type EnrollmentRepository struct {
	coll *mongo.Collection
}

func NewEnrollmentRepository(db *mongo.Database) *EnrollmentRepository {
	return &EnrollmentRepository{coll: db.Collection(collectionEnrollments)}
}

type enrollmentDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	OfferingID string             `bson:"offering_id"`
	AccountID  string             `bson:"account_id,omitempty"`

	Name  string `bson:"name"`
	Email string `bson:"email"`
	Phone string `bson:"phone,omitempty"`

	PaymentStatus  string  `bson:"payment_status"`
	PaymentAmount  float64 `bson:"payment_amount"`
	MembershipType string  `bson:"membership_type,omitempty"`
	IsMember       bool    `bson:"is_member"`

	EnrolledAt  time.Time  `bson:"enrolled_at"`
	PaymentDate *time.Time `bson:"payment_date,omitempty"`
}

func (d *enrollmentDoc) toDomain() *domain.Enrollment {
	return &domain.Enrollment{
		ID:             d.ID.Hex(),
		OfferingID:     d.OfferingID,
		AccountID:      d.AccountID,
		Name:           d.Name,
		Email:          d.Email,
		Phone:          d.Phone,
		PaymentStatus:  domain.EnrollmentPaymentStatus(d.PaymentStatus),
		PaymentAmount:  d.PaymentAmount,
		MembershipType: domain.MembershipType(d.MembershipType),
		IsMember:       d.IsMember,
		EnrolledAt:     d.EnrolledAt,
		PaymentDate:    d.PaymentDate,
	}
}

// activeFilter matches enrollments holding a seat: anything not cancelled.
func activeFilter(offeringID string) bson.M {
	return bson.M{
		"offering_id":    offeringID,
		"payment_status": bson.M{"$ne": string(domain.EnrollmentCancelled)},
	}
}

// Create inserts the enrollment. The partial unique index on
// (offering_id, email) over non-cancelled rows turns a concurrent
// duplicate into domain.ErrDuplicateEnrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, e *domain.Enrollment) (*domain.Enrollment, error) {
	doc := enrollmentDoc{
		OfferingID:     e.OfferingID,
		AccountID:      e.AccountID,
		Name:           e.Name,
		Email:          e.Email,
		Phone:          e.Phone,
		PaymentStatus:  string(e.PaymentStatus),
		PaymentAmount:  e.PaymentAmount,
		MembershipType: string(e.MembershipType),
		IsMember:       e.IsMember,
		EnrolledAt:     e.EnrolledAt,
		PaymentDate:    e.PaymentDate,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateEnrollment
		}
		return nil, fmt.Errorf("insert enrollment: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*domain.Enrollment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrEnrollmentNotFound
	}

	var doc enrollmentDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *EnrollmentRepository) CountActive(ctx context.Context, offeringID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, activeFilter(offeringID))
	if err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return n, nil
}

func (r *EnrollmentRepository) FindActiveByEmail(ctx context.Context, offeringID, email string) (*domain.Enrollment, error) {
	filter := activeFilter(offeringID)
	filter["email"] = email

	var doc enrollmentDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *EnrollmentRepository) ListByOffering(ctx context.Context, offeringID string) ([]*domain.Enrollment, error) {
	return r.list(ctx, bson.M{"offering_id": offeringID})
}

func (r *EnrollmentRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Enrollment, error) {
	return r.list(ctx, bson.M{"account_id": accountID})
}

func (r *EnrollmentRepository) list(ctx context.Context, filter bson.M) ([]*domain.Enrollment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "enrolled_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Enrollment
	for cur.Next(ctx) {
		var doc enrollmentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode enrollment: %w", err)
		}
		out = append(out, doc.toDomain())
	}
	return out, cur.Err()
}

// ConfirmPayment moves pending → paid conditionally; a write matching
// nothing means the enrollment was already paid or cancelled.
func (r *EnrollmentRepository) ConfirmPayment(ctx context.Context, id string, paidAt time.Time) (*domain.Enrollment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrEnrollmentNotFound
	}

	var doc enrollmentDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "payment_status": string(domain.EnrollmentPending)},
		bson.M{"$set": bson.M{
			"payment_status": string(domain.EnrollmentPaid),
			"payment_date":   paidAt,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEnrollmentProcessed
		}
		return nil, fmt.Errorf("confirm enrollment payment: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the enrollment indexes. The partial unique index
// only covers pending and paid rows, so a cancelled enrollment never
// blocks re-enrolling.
func (r *EnrollmentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "offering_id", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"payment_status": bson.M{"$in": bson.A{
						string(domain.EnrollmentPending),
						string(domain.EnrollmentPaid),
					}},
				}),
		},
		{Keys: bson.D{{Key: "account_id", Value: 1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
