package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/pribylovaa/go-blog-auth/internal/models"
)

// ---- codes ----

func (s *Storage) SetCode(ctx context.Context, c *models.Code) error {
	filter := bson.D{{Key: "user_id", Value: c.UserID.String()}, {Key: "purpose", Value: string(c.Purpose)}}

	return s.rotate(ctx, "storage.mongo.SetCode", s.codes, filter, codeDoc{
		ID:        c.ID.String(),
		UserID:    c.UserID.String(),
		Purpose:   string(c.Purpose),
		Code:      c.Code,
		ExpiresAt: ms(c.ExpiresAt),
		State:     string(models.StateActive),
		CreatedAt: ms(c.CreatedAt),
		UpdatedAt: ms(c.UpdatedAt),
	})
}

func (s *Storage) CodeByValue(ctx context.Context, purpose models.CodePurpose, code string) (*models.Code, error) {
	const op = "storage.mongo.CodeByValue"

	var doc codeDoc
	filter := bson.D{{Key: "purpose", Value: string(purpose)}, {Key: "code", Value: code}}
	if err := findActive(ctx, op, s.codes, filter, &doc); err != nil {
		return nil, err
	}

	return doc.model(), nil
}

func (s *Storage) ConsumeCode(ctx context.Context, id uuid.UUID) error {
	return s.consume(ctx, "storage.mongo.ConsumeCode", s.codes, id.String())
}

func (s *Storage) RevokeCodes(ctx context.Context, userID uuid.UUID, purpose models.CodePurpose) error {
	filter := bson.D{{Key: "user_id", Value: userID.String()}, {Key: "purpose", Value: string(purpose)}}
	if err := s.revokeMany(ctx, s.codes, filter); err != nil {
		return fmt.Errorf("storage.mongo.RevokeCodes: %w", err)
	}

	return nil
}

// ---- email changes ----

func (s *Storage) SetEmailChange(ctx context.Context, ch *models.EmailChange) error {
	return s.rotate(ctx, "storage.mongo.SetEmailChange", s.changes, byUser(ch.UserID), emailChangeDoc{
		ID:        ch.ID.String(),
		UserID:    ch.UserID.String(),
		CodeID:    ch.CodeID.String(),
		OldEmail:  ch.OldEmail,
		NewEmail:  ch.NewEmail,
		State:     string(models.StateActive),
		CreatedAt: ms(ch.CreatedAt),
		UpdatedAt: ms(ch.UpdatedAt),
	})
}

func (s *Storage) EmailChangeByCode(ctx context.Context, codeID uuid.UUID) (*models.EmailChange, error) {
	const op = "storage.mongo.EmailChangeByCode"

	var doc emailChangeDoc
	if err := findActive(ctx, op, s.changes, bson.D{{Key: "code_id", Value: codeID.String()}}, &doc); err != nil {
		return nil, err
	}

	return doc.model(), nil
}

func (s *Storage) RevokeEmailChanges(ctx context.Context, userID uuid.UUID) error {
	if err := s.revokeMany(ctx, s.changes, byUser(userID)); err != nil {
		return fmt.Errorf("storage.mongo.RevokeEmailChanges: %w", err)
	}

	return nil
}
