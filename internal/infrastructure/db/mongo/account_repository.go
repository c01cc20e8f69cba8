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

const collectionAccounts = "accounts"

type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(collectionAccounts)}
}

type accountDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Email           string             `bson:"email"`
	Name            string             `bson:"name"`
	PasswordHash    string             `bson:"password_hash"`
	Role            string             `bson:"role"`
	MembershipType  string             `bson:"membership_type,omitempty"`
	IsActive        bool               `bson:"is_active"`
	PaymentStatus   string             `bson:"payment_status,omitempty"`
	InitialPassword string             `bson:"initial_password,omitempty"`
	CreatedAt       time.Time          `bson:"created_at"`
}

func (d *accountDoc) toDomain() *domain.Account {
	return &domain.Account{
		ID:              d.ID.Hex(),
		Email:           d.Email,
		Name:            d.Name,
		PasswordHash:    d.PasswordHash,
		Role:            d.Role,
		MembershipType:  domain.MembershipType(d.MembershipType),
		IsActive:        d.IsActive,
		PaymentStatus:   domain.PaymentStatus(d.PaymentStatus),
		InitialPassword: d.InitialPassword,
		CreatedAt:       d.CreatedAt,
	}
}

// Create inserts the account. The unique email index turns a concurrent
// duplicate into domain.ErrAccountExists.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	doc := accountDoc{
		Email:           a.Email,
		Name:            a.Name,
		PasswordHash:    a.PasswordHash,
		Role:            a.Role,
		MembershipType:  string(a.MembershipType),
		IsActive:        a.IsActive,
		PaymentStatus:   string(a.PaymentStatus),
		InitialPassword: a.InitialPassword,
		CreatedAt:       a.CreatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var doc accountDoc
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	var doc accountDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Account
	for cur.Next(ctx) {
		var doc accountDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		out = append(out, doc.toDomain())
	}
	return out, cur.Err()
}

func (r *AccountRepository) Update(ctx context.Context, id string, u ports.AccountUpdate) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	set := bson.M{}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.IsActive != nil {
		set["is_active"] = *u.IsActive
	}
	if u.MembershipType != nil {
		set["membership_type"] = string(*u.MembershipType)
	}
	if u.PaymentStatus != nil {
		set["payment_status"] = string(*u.PaymentStatus)
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	var doc accountDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Account, error) {
	s := status
	return r.Update(ctx, id, ports.AccountUpdate{PaymentStatus: &s})
}

// SetPassword stores the new hash and drops the one-time plaintext
// credential in the same write.
func (r *AccountRepository) SetPassword(ctx context.Context, id, passwordHash string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAccountNotFound
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{
			"$set":   bson.M{"password_hash": passwordHash},
			"$unset": bson.M{"initial_password": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// EnsureIndexes creates the unique email index. This index is what makes
// duplicate account creation race-safe.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
