package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/videotube/account-service/internal/core/domain"
)

func TestBuildUpdate_SetsOnlyGivenFields(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	name := "Alice"
	avatar := "https://cdn/a.png"

	got := buildUpdate(domain.UserUpdate{FullName: &name, AvatarURL: &avatar}, now)

	set, ok := got["$set"].(bson.M)
	if !ok {
		t.Fatalf("expected $set document, got %#v", got)
	}
	if len(set) != 3 || set["fullName"] != "Alice" || set["avatar"] != avatar || set["updatedAt"] != now {
		t.Fatalf("unexpected $set: %#v", set)
	}
	if _, ok := got["$unset"]; ok {
		t.Fatalf("unexpected $unset")
	}
}

func TestBuildUpdate_RefreshToken(t *testing.T) {
	now := time.Now().UTC()
	token := "tkn"

	got := buildUpdate(domain.UserUpdate{RefreshToken: &token}, now)
	if got["$set"].(bson.M)["refreshToken"] != "tkn" {
		t.Fatalf("refresh token not set: %#v", got)
	}

	got = buildUpdate(domain.UserUpdate{RefreshToken: &token, ClearRefreshToken: true}, now)
	if _, ok := got["$set"].(bson.M)["refreshToken"]; ok {
		t.Fatalf("clear must win over set: %#v", got)
	}
	unset, ok := got["$unset"].(bson.M)
	if !ok || unset["refreshToken"] != 1 {
		t.Fatalf("expected $unset of refreshToken, got %#v", got)
	}
}

func TestBuildUpdate_NeverTouchesPasswordUnlessAsked(t *testing.T) {
	email := "a@example.com"
	got := buildUpdate(domain.UserUpdate{Email: &email}, time.Now())
	if _, ok := got["$set"].(bson.M)["password"]; ok {
		t.Fatalf("password must not be written: %#v", got)
	}
}

func TestMongoUser_ToDomain(t *testing.T) {
	oid := primitive.NewObjectID()
	video := primitive.NewObjectID()
	mu := mongoUser{
		ID:           oid,
		Username:     "alice",
		Email:        "alice@example.com",
		FullName:     "Alice",
		Avatar:       "a.png",
		WatchHistory: []primitive.ObjectID{video},
		Password:     "$2a$10$hash",
		RefreshToken: "tkn",
	}

	u := mu.toDomain()
	if u.ID != oid.Hex() || u.PasswordHash != "$2a$10$hash" || u.RefreshToken != "tkn" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if len(u.WatchHistory) != 1 || u.WatchHistory[0] != video.Hex() {
		t.Fatalf("unexpected history: %v", u.WatchHistory)
	}
}

func TestToObjectIDs_RejectsMalformed(t *testing.T) {
	if _, err := toObjectIDs([]string{"nope"}); err == nil {
		t.Fatalf("expected error for malformed id")
	}
	ids, err := toObjectIDs(nil)
	if err != nil || len(ids) != 0 {
		t.Fatalf("expected empty slice, got %v %v", ids, err)
	}
}

func TestUpdateFilter_RefreshPrecondition(t *testing.T) {
	oid := primitive.NewObjectID()

	plain := updateFilter(oid, domain.UserUpdate{})
	if len(plain) != 1 || plain["_id"] != oid {
		t.Fatalf("unexpected filter: %#v", plain)
	}

	expected := "old-refresh"
	next := "new-refresh"
	guarded := updateFilter(oid, domain.UserUpdate{RefreshToken: &next, ExpectRefreshToken: &expected})
	if guarded["_id"] != oid || guarded["refreshToken"] != "old-refresh" {
		t.Fatalf("expected id and token precondition, got %#v", guarded)
	}
}
