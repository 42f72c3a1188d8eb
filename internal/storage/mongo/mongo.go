// Package mongo — реализация storage.Storage поверх MongoDB.
//
// Идентификаторы хранятся строками UUID. Единственность активных записей
// обеспечивается уникальными частичными индексами (partialFilterExpression
// state=active), поэтому ротация Set* — это «отозвать активную, вставить новую»,
// а конкурентный проигравший получает storage.ErrAlreadyExists.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/pribylovaa/go-blog-auth/internal/models"
	"github.com/pribylovaa/go-blog-auth/internal/storage"
)

const (
	usersCollection        = "users"
	passwordsCollection    = "passwords"
	accessImagesCollection = "access_images"
	refreshCollection      = "refresh_tokens"
	codesCollection        = "codes"
	emailChangesCollection = "email_changes"
	defaultDBName          = "blog_auth"
)

// ttlIndexName — имя TTL-индекса по expires_at в refresh_tokens и codes.
const ttlIndexName = "ttl_expires_at"

// Коды ошибок createIndexes при конфликте с уже существующим индексом.
const (
	codeIndexOptionsConflict  = 85
	codeIndexKeySpecsConflict = 86
)

// Storage — адаптер подключения и коллекций MongoDB.
type Storage struct {
	client    *mongodriver.Client
	db        *mongodriver.Database
	now       func() time.Time
	retention time.Duration

	users     *mongodriver.Collection
	passwords *mongodriver.Collection
	images    *mongodriver.Collection
	refresh   *mongodriver.Collection
	codes     *mongodriver.Collection
	changes   *mongodriver.Collection
}

// Проверка на соответствие интерфейсу Storage.
var _ storage.Storage = (*Storage)(nil)

// New подключается к MongoDB, проверяет соединение и создаёт индексы.
// Имя базы берётся из пути URI (по умолчанию blog_auth).
// retention — сколько истёкшие refresh-сессии и коды живут до физического удаления
// TTL-индексом; retention <= 0 означает storage.DefaultRetention.
func New(ctx context.Context, dbURL string, retention time.Duration) (*Storage, error) {
	const op = "storage.mongo.New"

	if dbURL == "" {
		return nil, fmt.Errorf("%s: empty database url", op)
	}

	if retention <= 0 {
		retention = storage.DefaultRetention
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(dbURL))
	if err != nil {
		return nil, fmt.Errorf("%s: connect: %w", op, err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	db := cli.Database(databaseFromURI(dbURL))

	s := &Storage{
		client:    cli,
		db:        db,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		retention: retention,
		users:     db.Collection(usersCollection),
		passwords: db.Collection(passwordsCollection),
		images:    db.Collection(accessImagesCollection),
		refresh:   db.Collection(refreshCollection),
		codes:     db.Collection(codesCollection),
		changes:   db.Collection(emailChangesCollection),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = s.Close(ctx)
		return nil, err
	}

	return s, nil
}

// Close разрывает соединение с сервером.
func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ensureIndexes создаёт индексы:
//   - users: уникальный e-mail среди активных;
//   - passwords, access_images, email_changes: одна активная запись на пользователя;
//   - refresh_tokens: уникальная строка токена, TTL по expires_at;
//   - codes: один активный код на (user_id, purpose), поиск по (purpose, code), TTL по expires_at.
//
// TTL-индекс удаляет документ через retention после expires_at: до этого
// истёкший код ещё находится и даёт «код истёк», а не «код неверен».
func (s *Storage) ensureIndexes(ctx context.Context) error {
	const op = "storage.mongo.ensureIndexes"

	activeOnly := bson.D{{Key: "state", Value: string(models.StateActive)}}

	oneActivePerUser := func(name string) mongodriver.IndexModel {
		return mongodriver.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName(name).SetUnique(true).SetPartialFilterExpression(activeOnly),
		}
	}

	plan := []struct {
		coll   *mongodriver.Collection
		models []mongodriver.IndexModel
	}{
		{s.users, []mongodriver.IndexModel{{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_active_email").SetUnique(true).SetPartialFilterExpression(activeOnly),
		}}},
		{s.passwords, []mongodriver.IndexModel{oneActivePerUser("uniq_active_password")}},
		{s.images, []mongodriver.IndexModel{oneActivePerUser("uniq_active_access_image")}},
		{s.changes, []mongodriver.IndexModel{
			oneActivePerUser("uniq_active_email_change"),
			{Keys: bson.D{{Key: "code_id", Value: 1}}, Options: options.Index().SetName("code_id")},
		}},
		{s.refresh, []mongodriver.IndexModel{
			{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetName("uniq_token").SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "state", Value: 1}}, Options: options.Index().SetName("user_state")},
		}},
		{s.codes, []mongodriver.IndexModel{
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "purpose", Value: 1}},
				Options: options.Index().SetName("uniq_active_code").SetUnique(true).SetPartialFilterExpression(activeOnly),
			},
			{Keys: bson.D{{Key: "purpose", Value: 1}, {Key: "code", Value: 1}}, Options: options.Index().SetName("purpose_code")},
		}},
	}

	for _, p := range plan {
		if _, err := p.coll.Indexes().CreateMany(ctx, p.models); err != nil {
			return fmt.Errorf("%s: %s: %w", op, p.coll.Name(), err)
		}
	}

	for _, coll := range []*mongodriver.Collection{s.refresh, s.codes} {
		if err := s.ensureTTL(ctx, coll); err != nil {
			return fmt.Errorf("%s: %s: %w", op, coll.Name(), err)
		}
	}

	return nil
}

// ensureTTL создаёт TTL-индекс по expires_at со сроком retention.
// Если индекс уже есть с другим сроком, срок меняется через collMod.
func (s *Storage) ensureTTL(ctx context.Context, coll *mongodriver.Collection) error {
	seconds := int32(s.retention / time.Second)

	_, err := coll.Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetName(ttlIndexName).SetExpireAfterSeconds(seconds),
	})
	if err == nil {
		return nil
	}

	var cmdErr mongodriver.CommandError
	if !errors.As(err, &cmdErr) || (cmdErr.Code != codeIndexOptionsConflict && cmdErr.Code != codeIndexKeySpecsConflict) {
		return err
	}

	return s.db.RunCommand(ctx, bson.D{
		{Key: "collMod", Value: coll.Name()},
		{Key: "index", Value: bson.D{
			{Key: "keyPattern", Value: bson.D{{Key: "expires_at", Value: 1}}},
			{Key: "expireAfterSeconds", Value: seconds},
		}},
	}).Err()
}

// databaseFromURI извлекает имя базы данных из пути URI.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}

	return defaultDBName
}

// mapErr приводит ошибки драйвера к ошибкам storage.
func mapErr(op string, err error) error {
	switch {
	case errors.Is(err, mongodriver.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	case mongodriver.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// rotate переводит активные документы фильтра в revoked и вставляет doc.
func (s *Storage) rotate(ctx context.Context, op string, coll *mongodriver.Collection, filter bson.D, doc any) error {
	if err := s.revokeMany(ctx, coll, filter); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return mapErr(op, err)
	}

	return nil
}

// revokeMany переводит активные документы фильтра в revoked.
func (s *Storage) revokeMany(ctx context.Context, coll *mongodriver.Collection, filter bson.D) error {
	filter = append(filter, bson.E{Key: "state", Value: string(models.StateActive)})

	_, err := coll.UpdateMany(ctx, filter, bson.D{{Key: "$set", Value: bson.D{
		{Key: "state", Value: string(models.StateRevoked)},
		{Key: "updated_at", Value: s.now()},
	}}})

	return err
}

// consume — compare-and-set active -> revoked по _id.
func (s *Storage) consume(ctx context.Context, op string, coll *mongodriver.Collection, id string) error {
	res, err := coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}, {Key: "state", Value: string(models.StateActive)}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "state", Value: string(models.StateRevoked)},
			{Key: "updated_at", Value: s.now()},
		}}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.ModifiedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// findActive декодирует активный документ фильтра в out.
func findActive(ctx context.Context, op string, coll *mongodriver.Collection, filter bson.D, out any) error {
	filter = append(filter, bson.E{Key: "state", Value: string(models.StateActive)})

	if err := coll.FindOne(ctx, filter).Decode(out); err != nil {
		return mapErr(op, err)
	}

	return nil
}
