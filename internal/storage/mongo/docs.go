package mongo

import (
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-blog-auth/internal/models"
)

// Документы коллекций. MongoDB хранит время с точностью до миллисекунд.

type userDoc struct {
	ID                  string    `bson:"_id"`
	Email               string    `bson:"email"`
	FirstName           string    `bson:"first_name"`
	LastName            string    `bson:"last_name"`
	About               string    `bson:"about"`
	AvatarLink          string    `bson:"avatar_link"`
	Role                string    `bson:"role"`
	Status              string    `bson:"status"`
	FailedLoginAttempts int       `bson:"failed_login_attempts"`
	EmailVerified       bool      `bson:"email_verified"`
	State               string    `bson:"state"`
	CreatedAt           time.Time `bson:"created_at"`
	UpdatedAt           time.Time `bson:"updated_at"`
}

func toUserDoc(u *models.User) userDoc {
	return userDoc{
		ID:                  u.ID.String(),
		Email:               u.Email,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		About:               u.About,
		AvatarLink:          u.AvatarLink,
		Role:                u.Role,
		Status:              string(u.Status),
		FailedLoginAttempts: u.FailedLoginAttempts,
		EmailVerified:       u.EmailVerified,
		State:               string(u.State),
		CreatedAt:           ms(u.CreatedAt),
		UpdatedAt:           ms(u.UpdatedAt),
	}
}

func (d userDoc) model() *models.User {
	return &models.User{
		ID:                  uuid.MustParse(d.ID),
		Email:               d.Email,
		FirstName:           d.FirstName,
		LastName:            d.LastName,
		About:               d.About,
		AvatarLink:          d.AvatarLink,
		Role:                d.Role,
		Status:              models.AccountStatus(d.Status),
		FailedLoginAttempts: d.FailedLoginAttempts,
		EmailVerified:       d.EmailVerified,
		State:               models.RecordState(d.State),
		CreatedAt:           d.CreatedAt.UTC(),
		UpdatedAt:           d.UpdatedAt.UTC(),
	}
}

// secretDoc — общий вид паролей и access-образов.
type secretDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Value     string    `bson:"value"`
	State     string    `bson:"state"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type refreshDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Image     string    `bson:"image"`
	Token     string    `bson:"token"`
	ExpiresAt time.Time `bson:"expires_at"`
	State     string    `bson:"state"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d refreshDoc) model() *models.RefreshToken {
	return &models.RefreshToken{
		ID:        uuid.MustParse(d.ID),
		UserID:    uuid.MustParse(d.UserID),
		Image:     d.Image,
		Token:     d.Token,
		ExpiresAt: d.ExpiresAt.UTC(),
		State:     models.RecordState(d.State),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type codeDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Purpose   string    `bson:"purpose"`
	Code      string    `bson:"code"`
	ExpiresAt time.Time `bson:"expires_at"`
	State     string    `bson:"state"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d codeDoc) model() *models.Code {
	return &models.Code{
		ID:        uuid.MustParse(d.ID),
		UserID:    uuid.MustParse(d.UserID),
		Purpose:   models.CodePurpose(d.Purpose),
		Code:      d.Code,
		ExpiresAt: d.ExpiresAt.UTC(),
		State:     models.RecordState(d.State),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type emailChangeDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	CodeID    string    `bson:"code_id"`
	OldEmail  string    `bson:"old_email"`
	NewEmail  string    `bson:"new_email"`
	State     string    `bson:"state"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d emailChangeDoc) model() *models.EmailChange {
	return &models.EmailChange{
		ID:        uuid.MustParse(d.ID),
		UserID:    uuid.MustParse(d.UserID),
		CodeID:    uuid.MustParse(d.CodeID),
		OldEmail:  d.OldEmail,
		NewEmail:  d.NewEmail,
		State:     models.RecordState(d.State),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// ms приводит время к UTC с точностью до миллисекунд; нулевое время заменяется текущим.
func ms(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}

	return t.UTC().Truncate(time.Millisecond)
}
