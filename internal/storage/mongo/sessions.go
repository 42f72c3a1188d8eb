package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/pribylovaa/go-blog-auth/internal/models"
)

func byUser(userID uuid.UUID) bson.D {
	return bson.D{{Key: "user_id", Value: userID.String()}}
}

// ---- passwords ----

func (s *Storage) ActivePassword(ctx context.Context, userID uuid.UUID) (*models.Password, error) {
	const op = "storage.mongo.ActivePassword"

	var doc secretDoc
	if err := findActive(ctx, op, s.passwords, byUser(userID), &doc); err != nil {
		return nil, err
	}

	return &models.Password{
		ID:        uuid.MustParse(doc.ID),
		UserID:    userID,
		Hash:      doc.Value,
		State:     models.RecordState(doc.State),
		CreatedAt: doc.CreatedAt.UTC(),
		UpdatedAt: doc.UpdatedAt.UTC(),
	}, nil
}

func (s *Storage) SetPassword(ctx context.Context, p *models.Password) error {
	return s.rotate(ctx, "storage.mongo.SetPassword", s.passwords, byUser(p.UserID), secretDoc{
		ID:        p.ID.String(),
		UserID:    p.UserID.String(),
		Value:     p.Hash,
		State:     string(models.StateActive),
		CreatedAt: ms(p.CreatedAt),
		UpdatedAt: ms(p.UpdatedAt),
	})
}

func (s *Storage) RevokePasswords(ctx context.Context, userID uuid.UUID) error {
	if err := s.revokeMany(ctx, s.passwords, byUser(userID)); err != nil {
		return fmt.Errorf("storage.mongo.RevokePasswords: %w", err)
	}

	return nil
}

// ---- access images ----

func (s *Storage) ActiveAccessImage(ctx context.Context, userID uuid.UUID) (*models.AccessImage, error) {
	const op = "storage.mongo.ActiveAccessImage"

	var doc secretDoc
	if err := findActive(ctx, op, s.images, byUser(userID), &doc); err != nil {
		return nil, err
	}

	return &models.AccessImage{
		ID:        uuid.MustParse(doc.ID),
		UserID:    userID,
		Image:     doc.Value,
		State:     models.RecordState(doc.State),
		CreatedAt: doc.CreatedAt.UTC(),
		UpdatedAt: doc.UpdatedAt.UTC(),
	}, nil
}

func (s *Storage) SetAccessImage(ctx context.Context, img *models.AccessImage) error {
	return s.rotate(ctx, "storage.mongo.SetAccessImage", s.images, byUser(img.UserID), secretDoc{
		ID:        img.ID.String(),
		UserID:    img.UserID.String(),
		Value:     img.Image,
		State:     string(models.StateActive),
		CreatedAt: ms(img.CreatedAt),
		UpdatedAt: ms(img.UpdatedAt),
	})
}

func (s *Storage) RevokeAccessImages(ctx context.Context, userID uuid.UUID) error {
	if err := s.revokeMany(ctx, s.images, byUser(userID)); err != nil {
		return fmt.Errorf("storage.mongo.RevokeAccessImages: %w", err)
	}

	return nil
}

// ---- refresh tokens ----

func (s *Storage) SaveRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	const op = "storage.mongo.SaveRefreshToken"

	_, err := s.refresh.InsertOne(ctx, refreshDoc{
		ID:        t.ID.String(),
		UserID:    t.UserID.String(),
		Image:     t.Image,
		Token:     t.Token,
		ExpiresAt: ms(t.ExpiresAt),
		State:     string(models.StateActive),
		CreatedAt: ms(t.CreatedAt),
		UpdatedAt: ms(t.UpdatedAt),
	})
	if err != nil {
		return mapErr(op, err)
	}

	return nil
}

func (s *Storage) RefreshTokenByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const op = "storage.mongo.RefreshTokenByToken"

	var doc refreshDoc
	if err := findActive(ctx, op, s.refresh, bson.D{{Key: "token", Value: token}}, &doc); err != nil {
		return nil, err
	}

	return doc.model(), nil
}

func (s *Storage) ConsumeRefreshToken(ctx context.Context, id uuid.UUID) error {
	return s.consume(ctx, "storage.mongo.ConsumeRefreshToken", s.refresh, id.String())
}

func (s *Storage) RevokeRefreshToken(ctx context.Context, userID uuid.UUID, token string) error {
	filter := bson.D{{Key: "user_id", Value: userID.String()}, {Key: "token", Value: token}}
	if err := s.revokeMany(ctx, s.refresh, filter); err != nil {
		return fmt.Errorf("storage.mongo.RevokeRefreshToken: %w", err)
	}

	return nil
}

func (s *Storage) RevokeRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	if err := s.revokeMany(ctx, s.refresh, byUser(userID)); err != nil {
		return fmt.Errorf("storage.mongo.RevokeRefreshTokens: %w", err)
	}

	return nil
}

// DeleteExpiredTokens дублирует работу TTL-индекса, который срабатывает раз в минуту.
func (s *Storage) DeleteExpiredTokens(ctx context.Context, before time.Time) error {
	const op = "storage.mongo.DeleteExpiredTokens"

	filter := bson.D{{Key: "expires_at", Value: bson.D{{Key: "$lte", Value: before.UTC()}}}}

	if _, err := s.refresh.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("%s: refresh tokens: %w", op, err)
	}

	if _, err := s.codes.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("%s: codes: %w", op, err)
	}

	return nil
}
