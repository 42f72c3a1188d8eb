package mongo

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pribylovaa/go-blog-auth/internal/models"
	"github.com/pribylovaa/go-blog-auth/internal/storage"
)

func activeByID(id uuid.UUID) bson.D {
	return bson.D{{Key: "_id", Value: id.String()}, {Key: "state", Value: string(models.StateActive)}}
}

// CreateUser сохраняет пользователя; e-mail приводится к нижнему регистру.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	const op = "storage.mongo.CreateUser"

	doc := toUserDoc(user)
	doc.Email = strings.ToLower(doc.Email)

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		return mapErr(op, err)
	}

	return nil
}

func (s *Storage) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage.mongo.UserByID"

	var doc userDoc
	if err := s.users.FindOne(ctx, activeByID(id)).Decode(&doc); err != nil {
		return nil, mapErr(op, err)
	}

	return doc.model(), nil
}

func (s *Storage) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.mongo.UserByEmail"

	var doc userDoc
	err := findActive(ctx, op, s.users, bson.D{{Key: "email", Value: strings.ToLower(email)}}, &doc)
	if err != nil {
		return nil, err
	}

	return doc.model(), nil
}

// RegisterFailedLogin выполняет инкремент и блокировку одним конвейерным обновлением,
// поэтому параллельные неудачные входы не теряют попытки.
func (s *Storage) RegisterFailedLogin(ctx context.Context, id uuid.UUID, maxAttempts int) (*models.User, error) {
	const op = "storage.mongo.RegisterFailedLogin"

	pipeline := mongodriver.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "failed_login_attempts", Value: bson.D{{Key: "$min", Value: bson.A{
				bson.D{{Key: "$add", Value: bson.A{"$failed_login_attempts", 1}}},
				maxAttempts,
			}}}},
			{Key: "updated_at", Value: s.now()},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "status", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$gte", Value: bson.A{"$failed_login_attempts", maxAttempts}}},
				string(models.StatusBlocked),
				"$status",
			}}}},
		}}},
	}

	var doc userDoc
	err := s.users.FindOneAndUpdate(ctx, activeByID(id), pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, mapErr(op, err)
	}

	return doc.model(), nil
}

func (s *Storage) ResetFailedLogins(ctx context.Context, id uuid.UUID) error {
	return s.setUserFields(ctx, "storage.mongo.ResetFailedLogins", id, bson.D{
		{Key: "failed_login_attempts", Value: 0},
	})
}

func (s *Storage) BlockUser(ctx context.Context, id uuid.UUID) error {
	return s.setUserFields(ctx, "storage.mongo.BlockUser", id, bson.D{
		{Key: "status", Value: string(models.StatusBlocked)},
	})
}

func (s *Storage) UnblockUser(ctx context.Context, id uuid.UUID) error {
	return s.setUserFields(ctx, "storage.mongo.UnblockUser", id, bson.D{
		{Key: "status", Value: string(models.StatusActive)},
		{Key: "failed_login_attempts", Value: 0},
	})
}

func (s *Storage) SetEmail(ctx context.Context, id uuid.UUID, email string) error {
	return s.setUserFields(ctx, "storage.mongo.SetEmail", id, bson.D{
		{Key: "email", Value: strings.ToLower(email)},
		{Key: "email_verified", Value: true},
	})
}

func (s *Storage) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	return s.setUserFields(ctx, "storage.mongo.MarkEmailVerified", id, bson.D{
		{Key: "email_verified", Value: true},
	})
}

func (s *Storage) UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.User, error) {
	const op = "storage.mongo.UpdateProfile"

	set := bson.D{{Key: "updated_at", Value: s.now()}}
	if upd.FirstName != nil {
		set = append(set, bson.E{Key: "first_name", Value: *upd.FirstName})
	}
	if upd.LastName != nil {
		set = append(set, bson.E{Key: "last_name", Value: *upd.LastName})
	}
	if upd.About != nil {
		set = append(set, bson.E{Key: "about", Value: *upd.About})
	}

	var doc userDoc
	err := s.users.FindOneAndUpdate(ctx, activeByID(id), bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, mapErr(op, err)
	}

	return doc.model(), nil
}

func (s *Storage) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.setUserFields(ctx, "storage.mongo.DeleteUser", id, bson.D{
		{Key: "state", Value: string(models.StateRevoked)},
	})
}

// setUserFields обновляет поля активного пользователя; ErrNotFound, если такого нет.
func (s *Storage) setUserFields(ctx context.Context, op string, id uuid.UUID, set bson.D) error {
	set = append(set, bson.E{Key: "updated_at", Value: s.now()})

	res, err := s.users.UpdateOne(ctx, activeByID(id), bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return mapErr(op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
