package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	"github.com/webcreatorLuke/roblox-code-bot/internal/ports"
)

// generationDoc is the Firestore document representation of domain.GenerationRecord.
type generationDoc struct {
	ID           string    `firestore:"ID"`
	Prompt       string    `firestore:"Prompt"`
	Artifact     string    `firestore:"Artifact"`
	ArtifactKind string    `firestore:"ArtifactKind"`
	Placement    string    `firestore:"Placement"`
	Category     string    `firestore:"Category"`
	CreatedAt    time.Time `firestore:"CreatedAt"`
}

func toGenerationDoc(r domain.GenerationRecord) *generationDoc {
	return &generationDoc{
		ID:           r.ID,
		Prompt:       r.Prompt,
		Artifact:     r.Artifact,
		ArtifactKind: string(r.ArtifactKind),
		Placement:    r.Placement,
		Category:     string(r.Category),
		CreatedAt:    r.CreatedAt,
	}
}

func fromGenerationDoc(d *generationDoc) domain.GenerationRecord {
	return domain.GenerationRecord{
		ID:           d.ID,
		Prompt:       d.Prompt,
		Artifact:     d.Artifact,
		ArtifactKind: domain.ArtifactKind(d.ArtifactKind),
		Placement:    d.Placement,
		Category:     domain.Category(d.Category),
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

// FirestoreStore persists generations in a Firestore collection.
type FirestoreStore struct {
	client           *firestore.Client
	collectionPrefix string
	now              func() time.Time
}

// FirestoreOption configures a FirestoreStore.
type FirestoreOption func(*FirestoreStore)

// WithCollectionPrefix namespaces the collection, e.g. "dev_" -> "dev_generations".
func WithCollectionPrefix(prefix string) FirestoreOption {
	return func(s *FirestoreStore) { s.collectionPrefix = prefix }
}

// NewFirestore connects to Firestore in projectID.
func NewFirestore(ctx context.Context, projectID string, opts ...FirestoreOption) (*FirestoreStore, error) {
	if projectID == "" {
		return nil, goerr.New("firestore project is required")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("projectID", projectID))
	}

	s := &FirestoreStore{client: client, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *FirestoreStore) collection() string {
	return s.collectionPrefix + "generations"
}

// Create writes a new document keyed by a UUIDv7.
func (s *FirestoreStore) Create(ctx context.Context, gen domain.NewGeneration) (domain.GenerationRecord, error) {
	id, err := newRecordID()
	if err != nil {
		return domain.GenerationRecord{}, err
	}
	record := gen.Record(id, s.now().UTC())

	docRef := s.client.Collection(s.collection()).Doc(id)
	if _, err := docRef.Set(ctx, toGenerationDoc(record)); err != nil {
		return domain.GenerationRecord{}, goerr.Wrap(err, "failed to create generation", goerr.V("id", id))
	}
	return record, nil
}

// List returns up to limit records (0 for all), newest first.
func (s *FirestoreStore) List(ctx context.Context, limit int) ([]domain.GenerationRecord, error) {
	query := s.client.Collection(s.collection()).OrderBy("CreatedAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	records := make([]domain.GenerationRecord, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate generations")
		}

		var d generationDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal generation", goerr.V("docID", doc.Ref.ID))
		}
		records = append(records, fromGenerationDoc(&d))
	}
	return records, nil
}

// Get returns a single record.
func (s *FirestoreStore) Get(ctx context.Context, id string) (domain.GenerationRecord, error) {
	doc, err := s.client.Collection(s.collection()).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.GenerationRecord{}, goerr.Wrap(domain.ErrRecordNotFound, "generation not found", goerr.V("id", id))
		}
		return domain.GenerationRecord{}, goerr.Wrap(err, "failed to get generation", goerr.V("id", id))
	}

	var d generationDoc
	if err := doc.DataTo(&d); err != nil {
		return domain.GenerationRecord{}, goerr.Wrap(err, "failed to unmarshal generation", goerr.V("id", id))
	}
	return fromGenerationDoc(&d), nil
}

// Clear deletes every document in the collection.
func (s *FirestoreStore) Clear(ctx context.Context) error {
	iter := s.client.Collection(s.collection()).Documents(ctx)
	defer iter.Stop()

	bulkWriter := s.client.BulkWriter(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			bulkWriter.End()
			return goerr.Wrap(err, "failed to iterate generations for deletion")
		}
		if _, err := bulkWriter.Delete(doc.Ref); err != nil {
			bulkWriter.End()
			return goerr.Wrap(err, "failed to delete generation", goerr.V("id", doc.Ref.ID))
		}
	}
	bulkWriter.End()
	return nil
}

// Ping reads at most one document to confirm access.
func (s *FirestoreStore) Ping(ctx context.Context) error {
	iter := s.client.Collection(s.collection()).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return goerr.Wrap(err, "firestore ping failed", goerr.V("collection", s.collection()))
	}
	return nil
}

// Close releases the client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

var _ ports.GenerationRepository = (*FirestoreStore)(nil)
