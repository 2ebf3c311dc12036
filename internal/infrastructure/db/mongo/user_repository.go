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

	"github.com/videotube/account-service/internal/core/domain"
)

const usersCollection = "users"

// UserRepository implements ports.UserRepository on MongoDB.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Username     string               `bson:"username"`
	Email        string               `bson:"email"`
	FullName     string               `bson:"fullName"`
	Avatar       string               `bson:"avatar"`
	CoverImage   string               `bson:"coverImage,omitempty"`
	WatchHistory []primitive.ObjectID `bson:"watchHistory"`
	Password     string               `bson:"password"`
	RefreshToken string               `bson:"refreshToken,omitempty"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	var or bson.A
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if len(or) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"$or": or})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	history, err := toObjectIDs(user.WatchHistory)
	if err != nil {
		return nil, err
	}

	doc := mongoUser{
		ID:           primitive.NewObjectID(),
		Username:     user.Username,
		Email:        user.Email,
		FullName:     user.FullName,
		Avatar:       user.AvatarURL,
		CoverImage:   user.CoverImageURL,
		WatchHistory: history,
		Password:     user.PasswordHash,
		RefreshToken: user.RefreshToken,
		CreatedAt:    user.CreatedAt.UTC(),
		UpdatedAt:    user.UpdatedAt.UTC(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateFields applies $set/$unset in a single findOneAndUpdate and returns
// the document after the write.
func (r *UserRepository) UpdateFields(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.coll.FindOneAndUpdate(ctx, updateFilter(oid, upd), buildUpdate(upd, time.Now().UTC()), opts).Decode(&mu)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, domain.ErrUserNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return mu.toDomain(), nil
}

// EnsureIndexes creates the unique identity indexes on the users collection.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "fullName", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

// updateFilter targets the user by id, plus the stored refresh token when the
// update carries that precondition.
func updateFilter(oid primitive.ObjectID, upd domain.UserUpdate) bson.M {
	filter := bson.M{"_id": oid}
	if upd.ExpectRefreshToken != nil {
		filter["refreshToken"] = *upd.ExpectRefreshToken
	}
	return filter
}

// buildUpdate translates a domain update into a Mongo update document.
// updatedAt is always bumped.
func buildUpdate(upd domain.UserUpdate, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if upd.FullName != nil {
		set["fullName"] = *upd.FullName
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.PasswordHash != nil {
		set["password"] = *upd.PasswordHash
	}
	if upd.AvatarURL != nil {
		set["avatar"] = *upd.AvatarURL
	}
	if upd.CoverImageURL != nil {
		set["coverImage"] = *upd.CoverImageURL
	}

	update := bson.M{}
	switch {
	case upd.ClearRefreshToken:
		update["$unset"] = bson.M{"refreshToken": 1}
	case upd.RefreshToken != nil:
		set["refreshToken"] = *upd.RefreshToken
	}
	update["$set"] = set
	return update
}

func (mu mongoUser) toDomain() *domain.User {
	history := make([]string, 0, len(mu.WatchHistory))
	for _, id := range mu.WatchHistory {
		history = append(history, id.Hex())
	}
	return &domain.User{
		ID:            mu.ID.Hex(),
		Username:      mu.Username,
		Email:         mu.Email,
		FullName:      mu.FullName,
		PasswordHash:  mu.Password,
		AvatarURL:     mu.Avatar,
		CoverImageURL: mu.CoverImage,
		RefreshToken:  mu.RefreshToken,
		WatchHistory:  history,
		CreatedAt:     mu.CreatedAt.UTC(),
		UpdatedAt:     mu.UpdatedAt.UTC(),
	}
}

func toObjectIDs(ids []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("watch history entry %q: %w", id, err)
		}
		out = append(out, oid)
	}
	return out, nil
}
