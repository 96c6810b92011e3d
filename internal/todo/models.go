package todo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Record is a todo item as stored in MongoDB. OwnerID is the principal that
// created it; every query predicate pairs it with the record id so records are
// invisible to any other principal.
type Record struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID     string             `bson:"ownerId"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Completed   bool               `bson:"completed"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// Response is the API-facing shape of a Record: hex id, RFC 3339 timestamps.
type Response struct {
	ID          string `json:"id"`
	OwnerID     string `json:"userId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// ToResponse converts the stored record to its API representation.
func (r *Record) ToResponse() Response {
	return Response{
		ID:          r.ID.Hex(),
		OwnerID:     r.OwnerID,
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// UpdateInput carries the fields of a partial update. Nil means "leave
// unchanged"; the validation contract upstream requires at least one field.
type UpdateInput struct {
	Title       *string
	Description *string
	Completed   *bool
}

// Empty reports whether no field is set.
func (u UpdateInput) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Completed == nil
}

// Repository defines the persistence operations for todo records. All
// operations are scoped to an owner; "absent" is reported as (nil, nil) or
// (false, nil), never as an error. Store failures surface as *PersistenceError.
type Repository interface {
	Create(ctx context.Context, ownerID, title, description string) (*Record, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Record, error)
	GetByID(ctx context.Context, id primitive.ObjectID, ownerID string) (*Record, error)
	Update(ctx context.Context, id primitive.ObjectID, ownerID string, in UpdateInput) (*Record, error)
	ToggleCompletion(ctx context.Context, id primitive.ObjectID, ownerID string) (*Record, error)
	Delete(ctx context.Context, id primitive.ObjectID, ownerID string) (bool, error)
	DeleteAllCompleted(ctx context.Context, ownerID string) (int64, error)
}
