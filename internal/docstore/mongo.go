package docstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tattle-made/whatsapp-scraper/internal/model"
)

func msFromUnix(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// mongoDoc is the wire shape of one persisted message. Field names are
// kept snake_case to match the collection the server side of this system
// has always written.
type mongoDoc struct {
	GroupID        string  `bson:"group_id"`
	SourceType     string  `bson:"source_type"`
	SourceLoc      string  `bson:"source_loc"`
	DT             int64   `bson:"dt"`
	SenderID       string  `bson:"sender_id"`
	Content        string  `bson:"content"`
	HasMedia       bool    `bson:"has_media"`
	MediaMimeType  *string `bson:"media_mime_type,omitempty"`
	MediaUploadLoc *string `bson:"media_upload_loc,omitempty"`
	Order          int     `bson:"order"`
	FileIdx        int     `bson:"file_idx"`
	FileDatetime   int64   `bson:"file_datetime"`
}

// MongoStore is the server-mode DocStore backed by a single flat collection
// of message documents, mirroring the original scraper's insert_many model.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{coll: client.Database(database).Collection(collection)}, nil
}

func (s *MongoStore) Existing(ctx context.Context, key model.ConversationKey) ([]model.Message, error) {
	filter := bson.M{
		"group_id":    key.GroupID,
		"source_type": key.SourceType,
		"source_loc":  key.SourceLoc,
	}
	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.M{"order": 1}))
	if err != nil {
		return nil, fmt.Errorf("find existing messages for %+v: %w", key, err)
	}
	defer cur.Close(ctx)

	var out []model.Message
	for cur.Next(ctx) {
		var doc mongoDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode persisted message: %w", err)
		}
		out = append(out, fromMongoDoc(doc))
	}
	return out, cur.Err()
}

func (s *MongoStore) Persist(ctx context.Context, key model.ConversationKey, tail []model.Message) error {
	if len(tail) == 0 {
		return nil
	}
	docs := make([]interface{}, len(tail))
	for i, m := range tail {
		docs[i] = toMongoDoc(m)
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert %d messages for %+v: %w", len(tail), key, err)
	}
	return nil
}

func toMongoDoc(m model.Message) mongoDoc {
	return mongoDoc{
		GroupID:        m.GroupID,
		SourceType:     m.SourceType,
		SourceLoc:      m.SourceLoc,
		DT:             m.DT.UnixMilli(),
		SenderID:       m.SenderID,
		Content:        m.Content,
		HasMedia:       m.HasMedia,
		MediaMimeType:  m.MediaMimeType,
		MediaUploadLoc: m.MediaUploadLoc,
		Order:          m.Order,
		FileIdx:        m.FileIdx,
		FileDatetime:   m.FileDatetime.UnixMilli(),
	}
}

func fromMongoDoc(d mongoDoc) model.Message {
	return model.Message{
		GroupID:        d.GroupID,
		SourceType:     d.SourceType,
		SourceLoc:      d.SourceLoc,
		DT:             msFromUnix(d.DT),
		SenderID:       d.SenderID,
		Content:        d.Content,
		HasMedia:       d.HasMedia,
		MediaMimeType:  d.MediaMimeType,
		MediaUploadLoc: d.MediaUploadLoc,
		Order:          d.Order,
		FileIdx:        d.FileIdx,
		FileDatetime:   msFromUnix(d.FileDatetime),
	}
}
