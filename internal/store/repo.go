package store

import (
	"context"
	"time"

	"github.com/starford/scholarsync/internal/models"
)

// Store is the persistence surface used by the service layer.
// Consumers should depend on this interface rather than the concrete *DB.
type Store interface {
	CreateUser(ctx context.Context, u models.User) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, email, name string) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error

	ListClasses(ctx context.Context, userID int64) ([]models.Class, error)
	GetClass(ctx context.Context, userID, id int64) (*models.Class, error)
	CreateClass(ctx context.Context, c models.Class) (*models.Class, error)
	UpdateClass(ctx context.Context, c models.Class) (*models.Class, error)
	DeleteClass(ctx context.Context, userID, id int64) error

	ListAlerts(ctx context.Context, userID int64) ([]models.Alert, error)
	GetAlert(ctx context.Context, userID, id int64) (*models.Alert, error)
	CreateAlert(ctx context.Context, a models.Alert) (*models.Alert, error)
	MarkAlertRead(ctx context.Context, userID, id int64) (*models.Alert, error)
	DeleteAlert(ctx context.Context, userID, id int64) error
	HasRecentAlert(ctx context.Context, userID int64, typ, needle string, since time.Time) (bool, error)

	ListEvents(ctx context.Context, userID int64, f EventFilter) ([]models.Event, error)
	ListEventsStartingBetween(ctx context.Context, after, until time.Time) ([]models.Event, error)
	GetEvent(ctx context.Context, userID, id int64) (*models.Event, error)
	CreateEvent(ctx context.Context, e models.Event) (*models.Event, error)
	UpdateEvent(ctx context.Context, userID, id int64, p models.EventPatch) (*models.Event, error)
	DeleteEvent(ctx context.Context, userID, id int64) error

	ListFlashcardSets(ctx context.Context, userID int64) ([]models.FlashcardSet, error)
	GetFlashcardSet(ctx context.Context, userID, id int64) (*models.FlashcardSet, error)
	CreateFlashcardSet(ctx context.Context, s models.FlashcardSet) (*models.FlashcardSet, error)
	UpdateFlashcardSet(ctx context.Context, userID, id int64, title, description string) (*models.FlashcardSet, error)
	DeleteFlashcardSet(ctx context.Context, userID, id int64) error

	ListFlashcards(ctx context.Context, userID, setID int64) ([]models.Flashcard, error)
	GetFlashcard(ctx context.Context, userID, id int64) (*models.Flashcard, error)
	CreateFlashcards(ctx context.Context, cards []models.Flashcard) ([]models.Flashcard, error)
	UpdateFlashcard(ctx context.Context, userID int64, c models.Flashcard) (*models.Flashcard, error)
	DeleteFlashcard(ctx context.Context, userID, id int64) error
	ReviewFlashcard(ctx context.Context, userID, id int64, status string) (*models.Flashcard, error)

	Ping(ctx context.Context) error
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
