// internal/repository/mongo/session_store.go
package mongo

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	sessionCollectionName = "workout_sessions"
	videoCollectionName   = "video_uploads"
	counterCollectionName = "counters"
)

// mongoSessionStore implements repository.SessionStore
type mongoSessionStore struct {
	client   *mongo.Client
	sessions *mongo.Collection
	videos   *mongo.Collection
	counters *mongo.Collection

	mu       sync.Mutex
	activeID *int64
}

// NewMongoSessionStore creates a SessionStore backed by MongoDB. Ids are
// integers drawn from the counters collection.
func NewMongoSessionStore(db *mongo.Database) (repository.SessionStore, error) {
	if db == nil {
		return nil, repository.ErrNoConnection
	}
	return &mongoSessionStore{
		client:   db.Client(),
		sessions: db.Collection(sessionCollectionName),
		videos:   db.Collection(videoCollectionName),
		counters: db.Collection(counterCollectionName),
	}, nil
}

// now truncates to the millisecond precision BSON dates keep.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// nextID increments and returns the sequence stored under name.
func (r *mongoSessionStore) nextID(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var counter counterDocument
	err := r.counters.FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": int64(1)}}, opts).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return counter.Seq, nil
}

func (r *mongoSessionStore) CreateWorkoutSession(ctx context.Context, in domain.NewWorkoutSession) (*domain.WorkoutSession, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	id, err := r.nextID(ctx, sessionCollectionName)
	if err != nil {
		return nil, err
	}

	doc := sessionDocument{
		ID:          id,
		PDFFilename: in.PDFFilename,
		SelectedDay: in.SelectedDay,
		Exercises:   domain.CloneExercises(in.Exercises),
		WorkoutData: string(in.WorkoutData),
		CreatedAt:   now(),
	}
	if _, err := r.sessions.InsertOne(ctx, doc); err != nil {
		return nil, err
	}

	r.setActive(id)
	return doc.toDomain(), nil
}

func (r *mongoSessionStore) GetWorkoutSession(ctx context.Context, id int64) (*domain.WorkoutSession, error) {
	var doc sessionDocument
	err := r.sessions.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *mongoSessionStore) UpdateWorkoutSession(ctx context.Context, id int64, update domain.SessionUpdate) (*domain.WorkoutSession, error) {
	if update.IsEmpty() {
		return r.GetWorkoutSession(ctx, id)
	}

	set := bson.M{}
	if update.SelectedDay != nil {
		set["selectedDay"] = *update.SelectedDay
	}
	if update.Exercises != nil {
		set["exercises"] = domain.CloneExercises(*update.Exercises)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc sessionDocument
	err := r.sessions.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// DeleteWorkoutSession also removes the session's videos, like the
// relational store's ON DELETE CASCADE.
func (r *mongoSessionStore) DeleteWorkoutSession(ctx context.Context, id int64) bool {
	result, err := r.sessions.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil || result.DeletedCount == 0 {
		return false
	}
	_, _ = r.videos.DeleteMany(ctx, bson.M{"sessionId": id})

	r.mu.Lock()
	if r.activeID != nil && *r.activeID == id {
		r.activeID = nil
	}
	r.mu.Unlock()
	return true
}

func (r *mongoSessionStore) CreateVideoUpload(ctx context.Context, in domain.NewVideoUpload) (*domain.VideoUpload, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	id, err := r.nextID(ctx, videoCollectionName)
	if err != nil {
		return nil, err
	}
	doc := newVideoDocument(id, in, now())
	if _, err := r.videos.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *mongoSessionStore) GetVideoUpload(ctx context.Context, id int64) (*domain.VideoUpload, error) {
	var doc videoDocument
	err := r.videos.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *mongoSessionStore) GetVideosBySession(ctx context.Context, sessionID int64) ([]domain.VideoUpload, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "uploadedAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.videos.Find(ctx, bson.M{"sessionId": sessionID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []videoDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	videos := make([]domain.VideoUpload, 0, len(docs))
	for i := range docs {
		videos = append(videos, *docs[i].toDomain())
	}
	return videos, nil
}

func (r *mongoSessionStore) DeleteVideoUpload(ctx context.Context, id int64) bool {
	result, err := r.videos.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false
	}
	return result.DeletedCount > 0
}

func (r *mongoSessionStore) GetVideoByFilename(ctx context.Context, filename string) (*domain.VideoUpload, error) {
	var doc videoDocument
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
	err := r.videos.FindOne(ctx, bson.M{"filename": filename}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *mongoSessionStore) UpdateVideoFilename(ctx context.Context, oldFilename, newFilename string) bool {
	opts := options.FindOneAndUpdate().SetSort(bson.D{{Key: "_id", Value: 1}})
	err := r.videos.FindOneAndUpdate(ctx,
		bson.M{"filename": oldFilename},
		bson.M{"$set": bson.M{"filename": newFilename}},
		opts,
	).Err()
	return err == nil
}

// AttachVideo runs in a multi-document transaction, which needs a replica
// set or sharded cluster.
func (r *mongoSessionStore) AttachVideo(ctx context.Context, in domain.NewVideoUpload) (*domain.VideoUpload, *domain.WorkoutSession, error) {
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}

	sess, err := r.client.StartSession()
	if err != nil {
		return nil, nil, fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	type attached struct {
		video   *domain.VideoUpload
		session *domain.WorkoutSession
	}
	result, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var doc sessionDocument
		if err := r.sessions.FindOne(sc, bson.M{"_id": in.SessionID}).Decode(&doc); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, repository.ErrNotFound
			}
			return nil, err
		}

		id, err := r.nextID(sc, videoCollectionName)
		if err != nil {
			return nil, err
		}
		videoDoc := newVideoDocument(id, in, now())
		if _, err := r.videos.InsertOne(sc, videoDoc); err != nil {
			return nil, err
		}
		video := videoDoc.toDomain()

		exercises := domain.CloneExercises(doc.Exercises)
		domain.AttachVideoRef(exercises, video)
		if _, err := r.sessions.UpdateOne(sc, bson.M{"_id": in.SessionID}, bson.M{"$set": bson.M{"exercises": exercises}}); err != nil {
			return nil, err
		}
		doc.Exercises = exercises
		return attached{video: video, session: doc.toDomain()}, nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, repository.ErrNotFound
		}
		return nil, nil, fmt.Errorf("attach video: %w", err)
	}
	out := result.(attached)
	return out.video, out.session, nil
}

func (r *mongoSessionStore) GetCurrentSession(ctx context.Context) (*domain.WorkoutSession, error) {
	r.mu.Lock()
	active := r.activeID
	r.mu.Unlock()

	if active != nil {
		return r.GetWorkoutSession(ctx, *active)
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	var doc sessionDocument
	if err := r.sessions.FindOne(ctx, bson.M{}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	r.setActive(doc.ID)
	return doc.toDomain(), nil
}

func (r *mongoSessionStore) SetCurrentSession(_ context.Context, id int64) error {
	r.setActive(id)
	return nil
}

func (r *mongoSessionStore) ClearCurrentSession(_ context.Context) error {
	r.mu.Lock()
	r.activeID = nil
	r.mu.Unlock()
	return nil
}

// ClearAllData empties both collections; counters are kept.
func (r *mongoSessionStore) ClearAllData(ctx context.Context) error {
	if _, err := r.videos.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear videos: %w", err)
	}
	if _, err := r.sessions.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}
	return r.ClearCurrentSession(ctx)
}

func (r *mongoSessionStore) Backend() repository.Backend {
	return repository.BackendMongo
}

func (r *mongoSessionStore) Close(_ context.Context) error {
	return DisconnectDB(r.client)
}

func (r *mongoSessionStore) setActive(id int64) {
	r.mu.Lock()
	r.activeID = &id
	r.mu.Unlock()
}

// EnsureSessionIndexes creates necessary indexes for the sessions and uploads collections.
func EnsureSessionIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(sessionCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		// Most recent session lookup for the current-session fallback
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index(),
	})
	if err != nil {
		return fmt.Errorf("create indexes for %s: %w", sessionCollectionName, err)
	}

	_, err = db.Collection(videoCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// Videos of a session, newest first
			Keys:    bson.D{{Key: "sessionId", Value: 1}, {Key: "uploadedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			// Rename after trimming
			Keys:    bson.D{{Key: "filename", Value: 1}},
			Options: options.Index(),
		},
	})
	if err != nil {
		return fmt.Errorf("create indexes for %s: %w", videoCollectionName, err)
	}
	return nil
}
