package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/baechuer/user-service/internal/domain"
)

const UsersCollection = "users"

type UserRepo struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{
		coll: db.Collection(UsersCollection),
		now:  time.Now,
	}
}

// EnsureIndexes creates the unique email index. Safe to call on every start.
func (r *UserRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	if err != nil {
		return domain.ErrStoreUnavailable(err)
	}
	return nil
}

func parseID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, domain.ErrInvalidID()
	}
	return oid, nil
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (domain.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrStoreUnavailable(err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return domain.User{}, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// listFilter translates f into a query document. Search text is matched
// literally and case-insensitively against firstname, lastname and bio.
func listFilter(f domain.UserFilter) bson.M {
	q := bson.M{}
	if f.Search != "" {
		re := bson.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"firstname": re},
			bson.M{"lastname": re},
			bson.M{"bio": re},
		}
	}
	if f.From != nil || f.To != nil {
		created := bson.M{}
		if f.From != nil {
			created["$gte"] = f.From.UTC()
		}
		if f.To != nil {
			created["$lte"] = f.To.UTC()
		}
		q["createdAt"] = created
	}
	return q
}

func (r *UserRepo) List(ctx context.Context, f domain.UserFilter) ([]domain.User, error) {
	cur, err := r.coll.Find(ctx, listFilter(f), options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, domain.ErrStoreUnavailable(err)
	}

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, domain.ErrStoreUnavailable(err)
	}

	out := make([]domain.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	now := r.now().UTC().Truncate(time.Millisecond)
	doc := userDoc{
		ID:           bson.NewObjectID(),
		Firstname:    u.Firstname,
		Lastname:     u.Lastname,
		Email:        u.Email,
		Bio:          u.Bio,
		PasswordHash: u.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		return domain.User{}, domain.ErrStoreUnavailable(err)
	}
	return doc.toDomain(), nil
}

// updateDoc translates upd into an update document.
func updateDoc(upd domain.UserUpdate, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if upd.Firstname != nil {
		set["firstname"] = *upd.Firstname
	}
	if upd.Lastname != nil {
		set["lastname"] = *upd.Lastname
	}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}
	if upd.PasswordHash != nil {
		set["password"] = *upd.PasswordHash
	}

	doc := bson.M{}
	switch {
	case upd.SetReset != nil:
		set["resetPasswordToken"] = upd.SetReset.TokenHash
		set["resetPasswordExpires"] = upd.SetReset.ExpiresAt.UTC()
	case upd.ClearReset:
		doc["$unset"] = bson.M{"resetPasswordToken": "", "resetPasswordExpires": ""}
	}
	doc["$set"] = set
	return doc
}

// UpdateByID applies upd atomically and returns the updated user. With
// ExpectResetHash set, the stored reset token must still match.
func (r *UserRepo) UpdateByID(ctx context.Context, id string, upd domain.UserUpdate) (domain.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return domain.User{}, err
	}

	filter := bson.M{"_id": oid}
	if upd.ExpectResetHash != "" {
		filter["resetPasswordToken"] = upd.ExpectResetHash
	}

	var doc userDoc
	err = r.coll.FindOneAndUpdate(ctx, filter, updateDoc(upd, r.now().UTC()),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrStoreUnavailable(err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepo) DeleteByID(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return domain.ErrStoreUnavailable(err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}
