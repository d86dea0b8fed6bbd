package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookshelf/entity"
)

// MongoUserStore backs UserStore with a mongo collection.
type MongoUserStore struct {
	coll *mongo.Collection
}

func NewMongoUserStore(coll *mongo.Collection) *MongoUserStore {
	return &MongoUserStore{coll: coll}
}

func (s *MongoUserStore) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	err := s.coll.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) Insert(ctx context.Context, user *entity.User) (string, error) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Books == nil {
		user.Books = []string{}
	}
	res, err := s.coll.InsertOne(ctx, user)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *MongoUserStore) All(ctx context.Context) ([]entity.User, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []entity.User{}
	for cursor.Next(ctx) {
		var user entity.User
		if err := cursor.Decode(&user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *MongoUserStore) SetBooks(ctx context.Context, username string, books []string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"books": books}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MongoBookStore backs BookStore with a mongo collection.
type MongoBookStore struct {
	coll *mongo.Collection
}

func NewMongoBookStore(coll *mongo.Collection) *MongoBookStore {
	return &MongoBookStore{coll: coll}
}

func (s *MongoBookStore) List(ctx context.Context, limit int64) ([]entity.Book, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	books := []entity.Book{}
	for cursor.Next(ctx) {
		var book entity.Book
		if err := cursor.Decode(&book); err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

func (s *MongoBookStore) FindByTitle(ctx context.Context, title string) (*entity.Book, error) {
	var book entity.Book
	err := s.coll.FindOne(ctx, bson.M{"title": title}).Decode(&book)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

func (s *MongoBookStore) FindByID(ctx context.Context, id string) (*entity.Book, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var book entity.Book
	err = s.coll.FindOne(ctx, bson.M{"_id": objectID}).Decode(&book)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

func (s *MongoBookStore) Insert(ctx context.Context, in entity.BookInput) (string, error) {
	book := entity.Book{
		ID:              primitive.NewObjectID(),
		Title:           in.Title,
		Author:          in.Author,
		PublicationDate: in.PublicationDate,
		ISBN:            in.ISBN,
		CoverImage:      in.CoverImage,
	}
	res, err := s.coll.InsertOne(ctx, book)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *MongoBookStore) ReplaceByTitle(ctx context.Context, title string, in entity.BookInput) error {
	// $set lists every mutable field so omitted optionals become null
	// rather than surviving from the previous document.
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"title": title},
		bson.M{"$set": bson.M{
			"title":            in.Title,
			"author":           in.Author,
			"publication_date": in.PublicationDate,
			"isbn":             in.ISBN,
			"cover_image":      in.CoverImage,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoBookStore) DeleteByTitle(ctx context.Context, title string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"title": title})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
